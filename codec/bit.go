package codec

import (
	"fmt"

	"github.com/jelly-lidong/cmd-codec/bitio"
	"github.com/jelly-lidong/cmd-codec/errs"
	"github.com/jelly-lidong/cmd-codec/internal/hexutil"
	"github.com/jelly-lidong/cmd-codec/protocol"
)

// bitCodec encodes/decodes a BIT leaf bit-for-bit, never respecting endian
// (there is no byte ordering concept for a literal bit string, per
// spec.md §4.2).
type bitCodec struct{}

func (bitCodec) Encode(n *protocol.Node, w *bitio.Buffer) error {
	s, ok := encodeInput(n).(string)
	if !ok {
		return fmt.Errorf("codec: BIT value must be a string")
	}

	bits, err := hexutil.ParseBits(s)
	if err != nil {
		return err
	}

	if len(bits) != n.Length {
		return errs.ErrIllegalBitLength
	}

	for _, b := range bits {
		w.WriteBit(b)
	}

	return nil
}

func (bitCodec) Decode(n *protocol.Node, r *bitio.Buffer) error {
	bits := make([]uint8, n.Length)
	for i := range bits {
		b, err := r.ReadBit()
		if err != nil {
			return err
		}
		bits[i] = b
	}

	n.DecodedValue = hexutil.FormatBits(bits)
	n.TransformedValue = bits

	return nil
}
