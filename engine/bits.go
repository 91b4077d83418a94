package engine

import "github.com/jelly-lidong/cmd-codec/bitio"

// appendCachedBits writes the first length bits of data into dst, in
// chunks of at most 56 bits since bitio.Buffer.WriteBits caps n at 64.
// data is a leaf's pass-1 scratch encoding: codec.Encode always writes
// starting at scratch bit position 0, and AlignToByte pads the *trailing*
// bits to the next byte boundary, so the meaningful bits are always
// data's first length bits, never its last.
func appendCachedBits(dst *bitio.Buffer, data []byte, length int) error {
	pos := 0

	remaining := length
	for remaining > 0 {
		chunk := remaining
		if chunk > 56 {
			chunk = 56
		}

		var v uint64
		for i := 0; i < chunk; i++ {
			byteIdx := (pos + i) / 8
			bitIdx := uint(7 - (pos+i)%8)
			v = (v << 1) | uint64((data[byteIdx]>>bitIdx)&1)
		}

		if err := dst.WriteBits(v, chunk); err != nil {
			return err
		}

		pos += chunk
		remaining -= chunk
	}

	return nil
}

// extractBits reads length bits out of data starting at global bit
// position startBit (MSB first within each byte) and packs them into a
// freshly sized ceil(length/8)-byte slice in the same left-aligned,
// trailing-zero-padded layout appendCachedBits expects: bit 0 of the
// result is the MSB of the first byte. Used by Decode to populate a
// leaf's SourceData in the same format Encode's pass 1 produces, so
// decode-time expression functions that inspect node bytes (gatherBytes,
// crc16Of, ...) see the same shape regardless of which direction produced
// it.
func extractBits(data []byte, startBit, length int) []byte {
	nBytes := (length + 7) / 8
	out := make([]byte, nBytes)

	for i := 0; i < length; i++ {
		global := startBit + i
		bit := (data[global/8] >> uint(7-global%8)) & 1
		if bit != 0 {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}

	return out
}
