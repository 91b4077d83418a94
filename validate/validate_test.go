package validate

import (
	"testing"

	"github.com/jelly-lidong/cmd-codec/protocol"
	"github.com/stretchr/testify/require"
)

func TestValidate_StructuralLengthMismatch(t *testing.T) {
	a := &protocol.Node{ID: "a", Kind: protocol.KindLeaf, ValueType: protocol.UINT, Length: 8}
	body := &protocol.Node{ID: "body", Kind: protocol.KindBody, Length: 64, Children: []*protocol.Node{a}}
	p := &protocol.Protocol{ID: "p1", Body: body}

	require.Error(t, Validate(p))
}

func TestValidate_StructuralLengthOK(t *testing.T) {
	a := &protocol.Node{ID: "a", Kind: protocol.KindLeaf, ValueType: protocol.UINT, Length: 8}
	b := &protocol.Node{ID: "b", Kind: protocol.KindLeaf, ValueType: protocol.UINT, Length: 8}
	body := &protocol.Node{ID: "body", Kind: protocol.KindBody, Length: 16, Children: []*protocol.Node{a, b}}
	p := &protocol.Protocol{ID: "p2", Body: body}

	require.NoError(t, Validate(p))
}

func TestValidate_SkipsLengthCheckWithPaddingChild(t *testing.T) {
	a := &protocol.Node{ID: "a", Kind: protocol.KindLeaf, ValueType: protocol.UINT, Length: 8}
	pad := &protocol.Node{ID: "pad", Kind: protocol.KindLeaf, Padding: &protocol.PaddingConfig{Kind: protocol.FillContainer, Enabled: true}}
	body := &protocol.Node{ID: "body", Kind: protocol.KindBody, Length: 64, Children: []*protocol.Node{a, pad}}
	p := &protocol.Protocol{ID: "p3", Body: body}

	require.NoError(t, Validate(p))
}

func TestValidate_DuplicateNodeID(t *testing.T) {
	a := &protocol.Node{ID: "dup", Kind: protocol.KindLeaf, ValueType: protocol.UINT, Length: 8}
	b := &protocol.Node{ID: "dup", Kind: protocol.KindLeaf, ValueType: protocol.UINT, Length: 8}
	p := &protocol.Protocol{ID: "p4", Nodes: []*protocol.Node{a, b}}

	require.Error(t, Validate(p))
}

func TestValidate_UnresolvedReference(t *testing.T) {
	a := &protocol.Node{ID: "a", Kind: protocol.KindLeaf, ValueType: protocol.HEX, Length: 16, ForwardExpr: "crc16Of(#missing)"}
	p := &protocol.Protocol{ID: "p5", Nodes: []*protocol.Node{a}}

	require.Error(t, Validate(p))
}

func TestValidate_BadExpressionSyntax(t *testing.T) {
	a := &protocol.Node{ID: "a", Kind: protocol.KindLeaf, ValueType: protocol.UINT, Length: 8, ForwardExpr: "1 + "}
	p := &protocol.Protocol{ID: "p6", Nodes: []*protocol.Node{a}}

	require.Error(t, Validate(p))
}

func TestValidate_IllegalEnumValue(t *testing.T) {
	a := &protocol.Node{
		ID: "a", Kind: protocol.KindLeaf, ValueType: protocol.UINT, Length: 8,
		EnumRanges: []protocol.EnumRange{{Value: "not-hex", Desc: "bad"}},
	}
	p := &protocol.Protocol{ID: "p7", Nodes: []*protocol.Node{a}}

	require.Error(t, Validate(p))
}
