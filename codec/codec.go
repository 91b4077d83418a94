// Package codec implements the per-ValueType encode/decode strategies of
// spec.md §4.2: one codec per protocol.ValueType, routed by the engine on
// every leaf node, plus the shared enum canonicalization step that runs
// around every codec regardless of type.
package codec

import (
	"github.com/jelly-lidong/cmd-codec/bitio"
	"github.com/jelly-lidong/cmd-codec/errs"
	"github.com/jelly-lidong/cmd-codec/internal/hexutil"
	"github.com/jelly-lidong/cmd-codec/protocol"
)

// Codec is the strategy a ValueType implements: encode a node's resolved
// value into the bit buffer, or decode it back out.
type Codec interface {
	Encode(n *protocol.Node, w *bitio.Buffer) error
	Decode(n *protocol.Node, r *bitio.Buffer) error
}

var registry = map[protocol.ValueType]Codec{
	protocol.HEX:    hexCodec{},
	protocol.BIT:    bitCodec{},
	protocol.INT:    intCodec{},
	protocol.UINT:   uintCodec{},
	protocol.FLOAT:  floatCodec{},
	protocol.STRING: stringCodec{},
	protocol.TIME:   uintCodec{}, // TIME is UINT at the codec level, per spec.md §4.2
}

// Lookup returns the codec registered for vt, or (nil, false) if vt is not
// one of the closed set of value types.
func Lookup(vt protocol.ValueType) (Codec, bool) {
	c, ok := registry[vt]
	return c, ok
}

// encodeInput returns the value a leaf should encode: its forward
// expression result if one was computed, falling back to its literal
// configured value otherwise.
func encodeInput(n *protocol.Node) any {
	if n.FwdExprResult != nil {
		return n.FwdExprResult
	}

	return n.Value
}

// Encode dispatches n to its ValueType's codec, enforcing enum
// membership first when enumRanges is non-empty (spec.md §4.2: "Enum
// validation on encode rejects values that match neither any value nor any
// desc in the enum table").
func Encode(n *protocol.Node, w *bitio.Buffer) error {
	c, ok := Lookup(n.ValueType)
	if !ok {
		return errs.New(errs.KindEncoding, "", n.Path, n.ID, errs.ErrIllegalBitLength)
	}

	if len(n.EnumRanges) > 0 {
		canon, ok := canonicalizeEnumInput(encodeInput(n), n.EnumRanges)
		if !ok {
			return errs.New(errs.KindEncoding, "", n.Path, n.ID, errs.ErrIllegalEnumValue)
		}
		n.Value = canon
		n.FwdExprResult = nil
	}

	if err := c.Encode(n, w); err != nil {
		return errs.New(errs.KindEncoding, "", n.Path, n.ID, err)
	}

	return nil
}

// Decode dispatches n to its ValueType's codec, then canonicalizes the
// decoded value against enumRanges when configured.
func Decode(n *protocol.Node, r *bitio.Buffer) error {
	c, ok := Lookup(n.ValueType)
	if !ok {
		return errs.New(errs.KindDecoding, "", n.Path, n.ID, errs.ErrIllegalBitLength)
	}

	if err := c.Decode(n, r); err != nil {
		return errs.New(errs.KindDecoding, "", n.Path, n.ID, err)
	}

	if len(n.EnumRanges) > 0 {
		if canon, ok := canonicalizeEnumDecoded(n.DecodedValue, n.EnumRanges); ok {
			n.DecodedValue = canon
		}
	}

	return nil
}

// canonicalizeEnumInput matches v against every enum range's Value or Desc
// and, on a match, returns the canonical Value string.
func canonicalizeEnumInput(v any, ranges []protocol.EnumRange) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}

	for _, r := range ranges {
		if s == r.Desc || hexutil.HexStringEqual(s, r.Value) {
			return r.Value, true
		}
	}

	return "", false
}

// canonicalizeEnumDecoded matches a decoded value against every enum
// range's Value (hex-string-equal) and returns the canonical Value string.
func canonicalizeEnumDecoded(v any, ranges []protocol.EnumRange) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}

	for _, r := range ranges {
		if hexutil.HexStringEqual(s, r.Value) {
			return r.Value, true
		}
	}

	return "", false
}
