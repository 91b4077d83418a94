package codec

import (
	"fmt"

	"github.com/jelly-lidong/cmd-codec/bitio"
	"github.com/jelly-lidong/cmd-codec/errs"
	"github.com/jelly-lidong/cmd-codec/internal/hexutil"
	"github.com/jelly-lidong/cmd-codec/protocol"
)

func toInt64(v any) (int64, error) {
	switch t := v.(type) {
	case string:
		return hexutil.ParseInt(t)
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case uint64:
		return int64(t), nil
	case float64:
		return int64(t), nil
	case nil:
		return 0, fmt.Errorf("codec: nil value")
	default:
		return 0, fmt.Errorf("codec: unsupported value type %T", v)
	}
}

type intCodec struct{}

func (intCodec) Encode(n *protocol.Node, w *bitio.Buffer) error {
	v, err := toInt64(encodeInput(n))
	if err != nil {
		return err
	}

	lo, hi := signedRange(n.Length)
	if v < lo || v > hi {
		return errs.ErrValueOutOfRange
	}

	// Two's complement: mask down to the field width before emitting.
	return writeUintField(w, uint64(v)&widthMask(n.Length), n.Length, n.Endian)
}

func (intCodec) Decode(n *protocol.Node, r *bitio.Buffer) error {
	raw, err := readUintField(r, n.Length, n.Endian)
	if err != nil {
		return err
	}

	v := signExtend(raw, n.Length)
	n.DecodedValue = fmt.Sprintf("%d", v)
	n.TransformedValue = v

	return nil
}

func signedRange(length int) (int64, int64) {
	if length >= 64 {
		return -(1 << 63), (1 << 63) - 1
	}

	hi := int64(1)<<uint(length-1) - 1
	lo := -(int64(1) << uint(length-1))

	return lo, hi
}

func signExtend(raw uint64, length int) int64 {
	if length >= 64 {
		return int64(raw)
	}

	signBit := uint64(1) << uint(length-1)
	if raw&signBit != 0 {
		return int64(raw | (^uint64(0) << uint(length)))
	}

	return int64(raw)
}
