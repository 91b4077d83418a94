package codec

import (
	"github.com/jelly-lidong/cmd-codec/bitio"
	"github.com/jelly-lidong/cmd-codec/endian"
	"github.com/jelly-lidong/cmd-codec/protocol"
)

// engineFor returns the endian.EndianEngine matching a leaf's declared
// EndianType.
func engineFor(e protocol.EndianType) endian.EndianEngine {
	if e == protocol.Little {
		return endian.GetLittleEndianEngine()
	}
	return endian.GetBigEndianEngine()
}

// byteAligned reports whether a field of the given length can be laid out
// as whole endian-ordered bytes at the current cursor position: the cursor
// itself must sit on a byte boundary and length must be a positive multiple
// of 8 (spec.md §4.2 — "if byte-aligned, respect endian; otherwise
// MSB-first bit packing").
func byteAligned(bitPos, length int) bool {
	return length > 0 && length%8 == 0 && bitPos%8 == 0
}

func reverseBytes(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// writeBytesOrdered writes raw (already big-endian-ordered, most
// significant byte first) bytes in the given endian order.
//
// 2/4/8-byte widths route through endian.EndianEngine's PutUint16/32/64,
// the common case for UINT16/32/64 and HEX16/32/64 leaves. Other widths
// (e.g. a 24-bit HEX leaf) have no fixed-size binary.ByteOrder method to
// reuse, so they fall back to a manual byte reversal for Little.
func writeBytesOrdered(w *bitio.Buffer, raw []byte, e protocol.EndianType) error {
	out := raw
	switch len(raw) {
	case 2:
		buf := make([]byte, 2)
		engineFor(e).PutUint16(buf, uint16(bigEndianUint(raw)))
		out = buf
	case 4:
		buf := make([]byte, 4)
		engineFor(e).PutUint32(buf, uint32(bigEndianUint(raw)))
		out = buf
	case 8:
		buf := make([]byte, 8)
		engineFor(e).PutUint64(buf, bigEndianUint(raw))
		out = buf
	default:
		if e == protocol.Little {
			out = append([]byte(nil), raw...)
			reverseBytes(out)
		}
	}

	for _, b := range out {
		if err := w.WriteBits(uint64(b), 8); err != nil {
			return err
		}
	}

	return nil
}

// readBytesOrdered reads n whole bytes and returns them in big-endian
// order (most significant byte first), undoing the given endian order.
func readBytesOrdered(r *bitio.Buffer, n int, e protocol.EndianType) ([]byte, error) {
	raw := make([]byte, n)
	for i := 0; i < n; i++ {
		v, err := r.ReadBits(8)
		if err != nil {
			return nil, err
		}
		raw[i] = byte(v)
	}

	switch n {
	case 2:
		return uintToBigEndianBytes(uint64(engineFor(e).Uint16(raw)), 2), nil
	case 4:
		return uintToBigEndianBytes(uint64(engineFor(e).Uint32(raw)), 4), nil
	case 8:
		return uintToBigEndianBytes(engineFor(e).Uint64(raw), 8), nil
	default:
		if e == protocol.Little {
			reverseBytes(raw)
		}
		return raw, nil
	}
}

// bigEndianUint interprets raw (up to 8 bytes, most significant byte
// first) as an unsigned integer.
func bigEndianUint(raw []byte) uint64 {
	var v uint64
	for _, b := range raw {
		v = v<<8 | uint64(b)
	}
	return v
}

// uintToBigEndianBytes renders v as n bytes, most significant byte first.
func uintToBigEndianBytes(v uint64, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[n-1-i] = byte(v >> uint(i*8))
	}
	return out
}

// writeUintField writes v's low `length` bits, respecting endian only when
// byteAligned; otherwise it falls back to direct MSB-first bit packing.
func writeUintField(w *bitio.Buffer, v uint64, length int, e protocol.EndianType) error {
	if !byteAligned(w.GetWriteBitPosition(), length) {
		return w.WriteBits(v, length)
	}

	nBytes := length / 8
	raw := make([]byte, nBytes)
	for i := 0; i < nBytes; i++ {
		shift := uint((nBytes - 1 - i) * 8)
		raw[i] = byte(v >> shift)
	}

	return writeBytesOrdered(w, raw, e)
}

// readUintField reads `length` bits back into an unsigned integer,
// respecting endian only when byteAligned.
func readUintField(r *bitio.Buffer, length int, e protocol.EndianType) (uint64, error) {
	if !byteAligned(r.GetReadBitPosition(), length) {
		return r.ReadBits(length)
	}

	raw, err := readBytesOrdered(r, length/8, e)
	if err != nil {
		return 0, err
	}

	var v uint64
	for _, b := range raw {
		v = v<<8 | uint64(b)
	}

	return v, nil
}

// writeBytesField writes the low `length` bits of data (sized to
// ceil(length/8) bytes by the caller), respecting endian byte order only
// when byte-aligned and falling back to bit-by-bit MSB-first packing of
// the low `length` bits otherwise (HEX/BIT values may exceed 64 bits, so
// this cannot route through writeUintField).
func writeBytesField(w *bitio.Buffer, data []byte, length int, e protocol.EndianType) error {
	if byteAligned(w.GetWriteBitPosition(), length) {
		return writeBytesOrdered(w, data, e)
	}

	totalBits := len(data) * 8
	skip := totalBits - length
	for i := skip; i < totalBits; i++ {
		byteIdx := i / 8
		bitIdx := uint(7 - i%8)
		w.WriteBit((data[byteIdx] >> bitIdx) & 1)
	}

	return nil
}

// readBytesField reads `length` bits back into ceil(length/8) bytes,
// respecting endian byte order only when byte-aligned.
func readBytesField(r *bitio.Buffer, length int, e protocol.EndianType) ([]byte, error) {
	nBytes := (length + 7) / 8
	if byteAligned(r.GetReadBitPosition(), length) {
		return readBytesOrdered(r, length/8, e)
	}

	out := make([]byte, nBytes)
	totalBits := nBytes * 8
	skip := totalBits - length
	for i := skip; i < totalBits; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			return nil, err
		}
		if bit != 0 {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}

	return out, nil
}
