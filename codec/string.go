package codec

import (
	"bytes"
	"fmt"

	"github.com/jelly-lidong/cmd-codec/bitio"
	"github.com/jelly-lidong/cmd-codec/errs"
	"github.com/jelly-lidong/cmd-codec/protocol"
)

// stringCodec encodes/decodes UTF-8 text, the only charset the codec
// supports directly (spec.md §4.2 names a "declared charset (default
// UTF-8)" collaborator, but neither the teacher nor the rest of the
// example pack carries a text-transcoding dependency, so a non-UTF-8
// charset is a configuration error rather than a silently-wrong decode).
type stringCodec struct{}

func (stringCodec) Encode(n *protocol.Node, w *bitio.Buffer) error {
	s, ok := encodeInput(n).(string)
	if !ok {
		return fmt.Errorf("codec: STRING value must be a string")
	}

	if n.Charset != "" && n.Charset != "UTF-8" && n.Charset != "utf-8" {
		return fmt.Errorf("codec: unsupported charset %q", n.Charset)
	}

	want := n.Length / 8
	data := []byte(s)
	if len(data) > want {
		return errs.ErrStringTooLong
	}

	padded := make([]byte, want)
	copy(padded, data)

	for _, b := range padded {
		if err := w.WriteBits(uint64(b), 8); err != nil {
			return err
		}
	}

	return nil
}

func (stringCodec) Decode(n *protocol.Node, r *bitio.Buffer) error {
	nBytes := n.Length / 8
	raw := make([]byte, nBytes)
	for i := 0; i < nBytes; i++ {
		v, err := r.ReadBits(8)
		if err != nil {
			return err
		}
		raw[i] = byte(v)
	}

	n.DecodedValue = string(bytes.TrimRight(raw, "\x00"))
	n.TransformedValue = raw

	return nil
}
