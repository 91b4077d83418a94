// Package bitio implements the sequential, big-endian-bit-ordered bit
// buffer the engine reads and writes through: MSB-first within every byte,
// independent read and write cursors, byte-alignment padding on write.
//
// The write/read algorithm (MSB-first bit packing, byte-aligned fast case
// falling back to bit-by-bit) is grounded on the bit-level codec of an
// ASN.1 PER implementation, adapted from a buffer-consuming reader to an
// index-addressable one: the padding package's ALIGNMENT computation needs
// to inspect the cumulative bit length of already-written predecessor
// leaves (spec.md §4.7), which a reader that slices consumed bytes away
// cannot support.
package bitio

import (
	"github.com/jelly-lidong/cmd-codec/errs"
	"github.com/jelly-lidong/cmd-codec/internal/pool"
)

// Buffer is a sequential bit-level reader/writer with MSB-first bit
// ordering. Write and read positions are independent bit cursors into the
// same underlying byte storage — a Buffer built for encoding is read back
// from position 0 by routing its ToByteArray() output into NewFromBytes.
// GetWriteBitPosition and GetReadBitPosition report the two cursors without
// moving them.
//
// Buffer is not safe for concurrent use; each encode/decode invocation
// owns exactly one.
type Buffer struct {
	buf         *pool.ByteBuffer
	writeBitPos int
	readBitPos  int
	pooled      bool
}

// New creates an empty Buffer backed by a pooled byte buffer, ready for
// writing.
func New() *Buffer {
	return &Buffer{buf: pool.GetBuffer(), pooled: true}
}

// NewFromBytes creates a Buffer over existing bytes, ready for reading.
// The buffer does not copy data or participate in the internal pool; the
// caller retains ownership of data and must not mutate it while the Buffer
// is in use.
func NewFromBytes(data []byte) *Buffer {
	return &Buffer{
		buf:         &pool.ByteBuffer{B: data},
		writeBitPos: len(data) * 8,
	}
}

// Release returns the Buffer's storage to the internal pool. Only
// meaningful for buffers created with New; a no-op for NewFromBytes
// buffers, since those wrap caller-owned memory.
func (b *Buffer) Release() {
	if b.pooled {
		pool.PutBuffer(b.buf)
		b.buf = nil
	}
}

func bitMask(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}

	return (uint64(1) << uint(n)) - 1
}

// ensureWriteCapacity grows the backing storage so that extraBits more
// bits can be written starting at writeBitPos, zero-filling any newly
// exposed bytes (pooled buffers may carry stale data from a prior use).
func (b *Buffer) ensureWriteCapacity(extraBits int) {
	neededBytes := (b.writeBitPos + extraBits + 7) / 8
	if neededBytes <= len(b.buf.B) {
		return
	}

	old := len(b.buf.B)
	b.buf.ExtendOrGrow(neededBytes - old)
	for i := old; i < len(b.buf.B); i++ {
		b.buf.B[i] = 0
	}
}

func (b *Buffer) writeBitAt(pos int, bit uint8) {
	byteIdx := pos / 8
	bitIdx := uint(7 - pos%8) // MSB first within the byte

	if bit != 0 {
		b.buf.B[byteIdx] |= 1 << bitIdx
	} else {
		b.buf.B[byteIdx] &^= 1 << bitIdx
	}
}

func (b *Buffer) readBitAt(pos int) uint8 {
	byteIdx := pos / 8
	bitIdx := uint(7 - pos%8)

	return (b.buf.B[byteIdx] >> bitIdx) & 1
}

// WriteBit writes a single bit (the least significant bit of value).
func (b *Buffer) WriteBit(bit uint8) {
	b.ensureWriteCapacity(1)
	b.writeBitAt(b.writeBitPos, bit&1)
	b.writeBitPos++
}

// WriteBits writes the least significant n bits of value, most significant
// of those n bits first. n must be in [1, 64].
func (b *Buffer) WriteBits(value uint64, n int) error {
	if n <= 0 || n > 64 {
		return errs.New(errs.KindEncoding, "", "", "", errs.ErrIllegalBitLength)
	}

	value &= bitMask(n)

	b.ensureWriteCapacity(n)
	for i := n - 1; i >= 0; i-- {
		b.writeBitAt(b.writeBitPos, uint8((value>>uint(i))&1))
		b.writeBitPos++
	}

	return nil
}

// AlignToByte pads the remainder of the current byte with zero bits,
// advancing the write cursor to the next byte boundary. A no-op if the
// cursor is already byte-aligned.
func (b *Buffer) AlignToByte() {
	rem := b.writeBitPos % 8
	if rem == 0 {
		return
	}

	pad := 8 - rem
	_ = b.WriteBits(0, pad)
}

// ReadBit reads a single bit.
func (b *Buffer) ReadBit() (uint8, error) {
	v, err := b.ReadBits(1)
	return uint8(v), err
}

// ReadBits reads the next n bits and returns them as an unsigned integer,
// most significant bit first. n must be in [1, 64] and must not exceed
// GetReadableBits().
func (b *Buffer) ReadBits(n int) (uint64, error) {
	if n <= 0 || n > 64 {
		return 0, errs.New(errs.KindDecoding, "", "", "", errs.ErrIllegalBitLength)
	}

	if n > b.GetReadableBits() {
		return 0, errs.New(errs.KindDecoding, "", "", "", errs.ErrInsufficientBits)
	}

	var result uint64
	for i := 0; i < n; i++ {
		result = (result << 1) | uint64(b.readBitAt(b.readBitPos))
		b.readBitPos++
	}

	return result, nil
}

// GetWriteBitPosition returns the current write cursor, in bits.
func (b *Buffer) GetWriteBitPosition() int {
	return b.writeBitPos
}

// GetReadBitPosition returns the current read cursor, in bits.
func (b *Buffer) GetReadBitPosition() int {
	return b.readBitPos
}

// GetReadableBits returns the number of unread bits available: the
// written bit count minus the read cursor.
func (b *Buffer) GetReadableBits() int {
	return b.writeBitPos - b.readBitPos
}

// ToByteArray returns the written bytes, truncating the final partial byte
// only down to ceil(writeBitPos/8) bytes — call AlignToByte first if the
// trailing partial byte must be zero-padded out to a full byte (it always
// is, since ensureWriteCapacity zero-fills newly exposed bytes, but the
// write cursor itself stays mid-byte until AlignToByte advances it).
func (b *Buffer) ToByteArray() []byte {
	n := (b.writeBitPos + 7) / 8
	out := make([]byte, n)
	copy(out, b.buf.B[:n])

	return out
}
