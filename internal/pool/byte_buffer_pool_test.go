package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(128)

	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, 128, bb.Cap())
}

func TestByteBuffer_WriteAndBytes(t *testing.T) {
	bb := NewByteBuffer(MessageBufferDefaultSize)

	n, err := bb.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []byte("hello"), bb.Bytes())
}

func TestByteBuffer_Reset(t *testing.T) {
	bb := NewByteBuffer(MessageBufferDefaultSize)
	_, _ = bb.Write([]byte("some data"))
	originalCap := bb.Cap()

	bb.Reset()

	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, originalCap, bb.Cap())
}

func TestByteBuffer_GrowDoesNotReallocateWhenCapacitySuffices(t *testing.T) {
	bb := NewByteBuffer(64)
	bb.Grow(10)

	assert.Equal(t, 64, bb.Cap())
}

func TestByteBuffer_GrowReallocatesWhenNeeded(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.Grow(1000)

	assert.GreaterOrEqual(t, bb.Cap(), 1000)
}

func TestByteBuffer_ExtendOrGrow(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.ExtendOrGrow(10)

	assert.Equal(t, 10, bb.Len())
	assert.GreaterOrEqual(t, bb.Cap(), 10)
}

func TestByteBuffer_SliceAndSetLength(t *testing.T) {
	bb := NewByteBuffer(16)
	bb.SetLength(8)
	s := bb.Slice(2, 6)

	assert.Len(t, s, 4)
}

func TestByteBufferPool_GetPut(t *testing.T) {
	p := NewByteBufferPool(32, 1024)

	bb := p.Get()
	require.NotNil(t, bb)
	_, _ = bb.Write([]byte("payload"))

	p.Put(bb)

	bb2 := p.Get()
	require.NotNil(t, bb2)
	assert.Equal(t, 0, bb2.Len())
}

func TestByteBufferPool_DiscardsOversizedBuffers(t *testing.T) {
	p := NewByteBufferPool(8, 16)

	bb := p.Get()
	bb.Grow(1000)
	p.Put(bb) // over threshold, should be discarded rather than pooled

	bb2 := p.Get()
	require.NotNil(t, bb2)
	assert.Equal(t, 8, bb2.Cap()) // fresh buffer, not the grown one
}

func TestGetBuffer_PutBuffer(t *testing.T) {
	bb := GetBuffer()
	require.NotNil(t, bb)
	_, _ = bb.Write([]byte("x"))
	PutBuffer(bb)
}
