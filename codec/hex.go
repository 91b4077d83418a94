package codec

import (
	"fmt"

	"github.com/jelly-lidong/cmd-codec/bitio"
	"github.com/jelly-lidong/cmd-codec/errs"
	"github.com/jelly-lidong/cmd-codec/internal/hexutil"
	"github.com/jelly-lidong/cmd-codec/protocol"
)

type hexCodec struct{}

func (hexCodec) Encode(n *protocol.Node, w *bitio.Buffer) error {
	s, ok := encodeInput(n).(string)
	if !ok {
		return fmt.Errorf("codec: HEX value must be a string")
	}

	raw, err := hexutil.ParseHexBytes(s)
	if err != nil {
		return err
	}

	want := (n.Length + 7) / 8
	if len(raw) > want {
		return errs.ErrValueOutOfRange
	}
	if len(raw) < want {
		padded := make([]byte, want)
		copy(padded[want-len(raw):], raw)
		raw = padded
	}

	return writeBytesField(w, raw, n.Length, n.Endian)
}

func (hexCodec) Decode(n *protocol.Node, r *bitio.Buffer) error {
	raw, err := readBytesField(r, n.Length, n.Endian)
	if err != nil {
		return err
	}

	n.DecodedValue = hexutil.FormatHexBytes(raw)
	n.TransformedValue = raw

	return nil
}
