package codec

import (
	"fmt"
	"math"
	"strconv"

	"github.com/jelly-lidong/cmd-codec/bitio"
	"github.com/jelly-lidong/cmd-codec/errs"
	"github.com/jelly-lidong/cmd-codec/internal/hexutil"
	"github.com/jelly-lidong/cmd-codec/protocol"
)

type floatCodec struct{}

// parseFloatInput resolves v to a float64 per spec.md §4.2: numeric
// parse first; failing that, for a string, reinterpret it as a
// hex-encoded IEEE 754 bit pattern of the matching width.
func parseFloatInput(v any, length int) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return f, nil
		}

		bits, err := hexutil.ParseUint(t)
		if err != nil {
			return 0, err
		}

		if length == 32 {
			return float64(math.Float32frombits(uint32(bits))), nil
		}

		return math.Float64frombits(bits), nil
	case nil:
		return 0, fmt.Errorf("codec: nil FLOAT value")
	default:
		return 0, fmt.Errorf("codec: unsupported FLOAT value type %T", v)
	}
}

func (floatCodec) Encode(n *protocol.Node, w *bitio.Buffer) error {
	if n.Length != 32 && n.Length != 64 {
		return errs.ErrIllegalBitLength
	}

	f, err := parseFloatInput(encodeInput(n), n.Length)
	if err != nil {
		return err
	}

	var bits uint64
	if n.Length == 32 {
		bits = uint64(math.Float32bits(float32(f)))
	} else {
		bits = math.Float64bits(f)
	}

	return writeUintField(w, bits, n.Length, n.Endian)
}

func (floatCodec) Decode(n *protocol.Node, r *bitio.Buffer) error {
	if n.Length != 32 && n.Length != 64 {
		return errs.ErrIllegalBitLength
	}

	raw, err := readUintField(r, n.Length, n.Endian)
	if err != nil {
		return err
	}

	var f float64
	if n.Length == 32 {
		f = float64(math.Float32frombits(uint32(raw)))
	} else {
		f = math.Float64frombits(raw)
	}

	n.DecodedValue = strconv.FormatFloat(f, 'g', -1, 64)
	n.TransformedValue = f

	return nil
}
