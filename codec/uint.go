package codec

import (
	"fmt"

	"github.com/jelly-lidong/cmd-codec/bitio"
	"github.com/jelly-lidong/cmd-codec/errs"
	"github.com/jelly-lidong/cmd-codec/internal/hexutil"
	"github.com/jelly-lidong/cmd-codec/protocol"
)

// widthMask returns the bitmask covering the low `length` bits (length in
// [1, 64]).
func widthMask(length int) uint64 {
	if length >= 64 {
		return ^uint64(0)
	}

	return (uint64(1) << uint(length)) - 1
}

// toUint64 coerces an encodeInput value (string, signed/unsigned int, or
// float) to its bit pattern as an unsigned integer.
func toUint64(v any) (uint64, error) {
	switch t := v.(type) {
	case string:
		return hexutil.ParseUint(t)
	case uint64:
		return t, nil
	case int64:
		return uint64(t), nil
	case int:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case nil:
		return 0, fmt.Errorf("codec: nil value")
	default:
		return 0, fmt.Errorf("codec: unsupported value type %T", v)
	}
}

type uintCodec struct{}

func (uintCodec) Encode(n *protocol.Node, w *bitio.Buffer) error {
	v, err := toUint64(encodeInput(n))
	if err != nil {
		return err
	}

	if n.Length < 64 && v > widthMask(n.Length) {
		return errs.ErrValueOutOfRange
	}

	return writeUintField(w, v, n.Length, n.Endian)
}

func (uintCodec) Decode(n *protocol.Node, r *bitio.Buffer) error {
	v, err := readUintField(r, n.Length, n.Endian)
	if err != nil {
		return err
	}

	n.DecodedValue = fmt.Sprintf("%d", v)
	n.TransformedValue = v

	return nil
}
