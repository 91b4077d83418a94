package expr

import (
	"testing"

	"github.com/jelly-lidong/cmd-codec/protocol"
	"github.com/stretchr/testify/require"
)

func TestEval_Arithmetic(t *testing.T) {
	v, err := Eval("1 + 2 * 3", &Env{})
	require.NoError(t, err)
	f, _ := v.Float64()
	require.Equal(t, float64(7), f)
}

func TestEval_Precedence(t *testing.T) {
	v, err := Eval("(1 + 2) * 3", &Env{})
	require.NoError(t, err)
	f, _ := v.Float64()
	require.Equal(t, float64(9), f)
}

func TestEval_Ternary(t *testing.T) {
	v, err := Eval("1 == 1 ? 10 : 20", &Env{})
	require.NoError(t, err)
	f, _ := v.Float64()
	require.Equal(t, float64(10), f)
}

func TestEval_LogicalShortCircuit(t *testing.T) {
	v, err := Eval("false && (1/0 == 0)", &Env{})
	require.NoError(t, err)
	require.False(t, v.Truthy())
}

func TestEval_Bitwise(t *testing.T) {
	v, err := Eval("0x0F & 0x03", &Env{})
	require.NoError(t, err)
	f, _ := v.Float64()
	require.Equal(t, float64(3), f)
}

func TestEval_HexLiteral(t *testing.T) {
	v, err := Eval("0xFF", &Env{})
	require.NoError(t, err)
	f, _ := v.Float64()
	require.Equal(t, float64(255), f)
}

func TestEval_IdentLookup(t *testing.T) {
	env := &Env{Vars: map[string]Value{"count": Number(3)}}
	v, err := Eval("count == 3", env)
	require.NoError(t, err)
	require.True(t, v.Truthy())
}

func TestEval_DivisionByZero(t *testing.T) {
	_, err := Eval("1 / 0", &Env{})
	require.Error(t, err)
}

func TestEval_UnknownFunction(t *testing.T) {
	_, err := Eval("bogus(1)", &Env{})
	require.Error(t, err)
}

func TestEval_NodeRefAndChecksumOf(t *testing.T) {
	body := &protocol.Node{ID: "body", Kind: protocol.KindBody, Children: []*protocol.Node{
		{ID: "a", Kind: protocol.KindLeaf, Enabled: true, Order: 0, SourceData: []byte{0x01, 0x02}},
		{ID: "b", Kind: protocol.KindLeaf, Enabled: true, Order: 1, SourceData: []byte{0x03, 0x04}},
	}}
	p := &protocol.Protocol{ID: "p1", Body: body}

	env := &Env{Protocol: p}
	v, err := Eval("checksumOf(#body)", env)
	require.NoError(t, err)
	f, _ := v.Float64()
	require.Equal(t, float64(0x01+0x02+0x03+0x04), f)
}

func TestCRC16_DiffersOnChangedInput(t *testing.T) {
	// Sanity: changing the last byte changes the CRC (not a constant).
	c1 := CRC16([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08})
	c2 := CRC16([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x09})
	require.NotEqual(t, c1, c2)
}

func TestEval_RangeChecksum(t *testing.T) {
	a := &protocol.Node{ID: "a", Kind: protocol.KindLeaf, Order: 0, SourceData: []byte{0x01}}
	b := &protocol.Node{ID: "b", Kind: protocol.KindLeaf, Order: 1, SourceData: []byte{0x02}}
	c := &protocol.Node{ID: "c", Kind: protocol.KindLeaf, Order: 2, SourceData: []byte{0x03}}
	body := &protocol.Node{ID: "body", Kind: protocol.KindBody, Children: []*protocol.Node{a, b, c}}
	p := &protocol.Protocol{ID: "p1", Body: body}

	env := &Env{Protocol: p}
	v, err := Eval("rangeChecksum(#a, #b)", env)
	require.NoError(t, err)
	f, _ := v.Float64()
	require.Equal(t, float64(0x01+0x02), f)
}

func TestEval_When(t *testing.T) {
	n := &protocol.Node{ID: "flag", Value: "1"}
	body := &protocol.Node{ID: "body", Kind: protocol.KindBody, Children: []*protocol.Node{n}}
	p := &protocol.Protocol{ID: "p1", Body: body}

	env := &Env{Protocol: p}
	v, err := Eval("when(#flag, 'value == 1')", env)
	require.NoError(t, err)
	f, _ := v.Float64()
	require.Equal(t, float64(1), f)
}
