// Package pool provides a reusable, growable byte buffer pooled with
// sync.Pool, backing bitio.Buffer so a per-call encode/decode does not pay
// an allocation for every invocation of the engine.
package pool

import "sync"

// MessageBufferDefaultSize is the default capacity of a ByteBuffer handed
// out by the default pool. Rigid command/telemetry protocols are typically
// well under a kilobyte (headers, a handful of fields, a CRC tail), so the
// default is sized for that rather than for bulk payloads.
const (
	MessageBufferDefaultSize = 256
	MessageBufferMaxThreshold = 1024 * 16 // 16KiB; larger buffers are discarded, not pooled
)

// ByteBuffer is a growable byte slice with amortized growth, used as the
// backing storage for bitio.Buffer.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default size.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset resets the buffer to be empty, but retains the allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// Slice returns a slice of the buffer from start to end.
// Panics if the indices are out of bounds.
func (bb *ByteBuffer) Slice(start, end int) []byte {
	if start < 0 || end < start || end > cap(bb.B) {
		panic("Slice: invalid indices")
	}

	return bb.B[start:end]
}

// SetLength sets the length of the buffer to n.
// Panics if n is negative or greater than the capacity.
func (bb *ByteBuffer) SetLength(n int) {
	if n < 0 || n > cap(bb.B) {
		panic("SetLength: invalid length")
	}
	bb.B = bb.B[:n]
}

// ExtendOrGrow extends the buffer's length by n bytes, growing the
// underlying array first if there is not enough spare capacity.
func (bb *ByteBuffer) ExtendOrGrow(n int) {
	bb.Grow(n)
	bb.B = bb.B[:len(bb.B)+n]
}

// Grow grows the buffer to ensure it can hold requiredBytes more bytes
// without reallocating. If the buffer has sufficient capacity, Grow does
// nothing.
//
// Growth strategy: small buffers grow by MessageBufferDefaultSize to
// minimize reallocations; once a buffer exceeds 4x that size, it grows by
// 25% of current capacity to balance memory usage against reallocation
// cost.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := MessageBufferDefaultSize
	if cap(bb.B) > 4*MessageBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}

	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write appends the contents of data to the buffer, growing it as needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// ByteBufferPool is a pool of ByteBuffers to minimize allocations.
//
// It uses sync.Pool internally to manage the buffers. The pool can be
// configured with a maximum size threshold to avoid retaining overly large
// buffers that could lead to memory bloat.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the
// specified default size.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var defaultPool = NewByteBufferPool(MessageBufferDefaultSize, MessageBufferMaxThreshold)

// GetBuffer retrieves a ByteBuffer from the default pool.
func GetBuffer() *ByteBuffer {
	return defaultPool.Get()
}

// PutBuffer returns a ByteBuffer to the default pool.
func PutBuffer(bb *ByteBuffer) {
	defaultPool.Put(bb)
}
