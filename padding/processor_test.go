package padding

import (
	"testing"

	"github.com/jelly-lidong/cmd-codec/expr"
	"github.com/jelly-lidong/cmd-codec/protocol"
	"github.com/stretchr/testify/require"
)

func padNode(cfg protocol.PaddingConfig) *protocol.Node {
	cfg.Enabled = true
	return &protocol.Node{ID: "pad", Kind: protocol.KindLeaf, Padding: &cfg}
}

func TestCompute_FixedLength(t *testing.T) {
	n := padNode(protocol.PaddingConfig{Kind: protocol.FixedLength, TargetLength: 32})

	res, err := Compute(n, nil, 16, &expr.Env{})
	require.NoError(t, err)
	require.Equal(t, 16, res.LengthBits)
}

func TestCompute_FixedLength_NeverNegative(t *testing.T) {
	n := padNode(protocol.PaddingConfig{Kind: protocol.FixedLength, TargetLength: 8})

	res, err := Compute(n, nil, 16, &expr.Env{})
	require.NoError(t, err)
	require.Equal(t, 0, res.LengthBits)
}

func TestCompute_Alignment(t *testing.T) {
	n := padNode(protocol.PaddingConfig{Kind: protocol.Alignment, TargetLength: 32})

	res, err := Compute(n, nil, 40, &expr.Env{})
	require.NoError(t, err)
	require.Equal(t, 24, res.LengthBits)
}

func TestCompute_Alignment_AlreadyAligned(t *testing.T) {
	n := padNode(protocol.PaddingConfig{Kind: protocol.Alignment, TargetLength: 32})

	res, err := Compute(n, nil, 64, &expr.Env{})
	require.NoError(t, err)
	require.Equal(t, 0, res.LengthBits)
}

func TestCompute_FillContainer(t *testing.T) {
	pad := padNode(protocol.PaddingConfig{Kind: protocol.FillContainer, AutoCalculateContainerLength: true})
	sibling := &protocol.Node{ID: "a", Kind: protocol.KindLeaf, Enabled: true, Length: 16}
	container := &protocol.Node{ID: "body", Kind: protocol.KindBody, Length: 64, Children: []*protocol.Node{sibling, pad}}

	res, err := Compute(pad, container, 16, &expr.Env{})
	require.NoError(t, err)
	require.Equal(t, 48, res.LengthBits)
}

func TestCompute_Dynamic(t *testing.T) {
	n := padNode(protocol.PaddingConfig{Kind: protocol.Dynamic, LengthExpression: "targetLength - currentLength"})
	n.Padding.TargetLength = 32

	res, err := Compute(n, nil, 8, &expr.Env{})
	require.NoError(t, err)
	require.Equal(t, 24, res.LengthBits)
}

func TestCompute_ClampToMax(t *testing.T) {
	n := padNode(protocol.PaddingConfig{Kind: protocol.FixedLength, TargetLength: 1000, MaxPaddingLength: 16})

	res, err := Compute(n, nil, 0, &expr.Env{})
	require.NoError(t, err)
	require.Equal(t, 16, res.LengthBits)
}

func TestCompute_DisabledByEnableCondition(t *testing.T) {
	n := padNode(protocol.PaddingConfig{Kind: protocol.FixedLength, TargetLength: 32, EnableCondition: "false"})

	res, err := Compute(n, nil, 0, &expr.Env{})
	require.NoError(t, err)
	require.Equal(t, 0, res.LengthBits)
}

func TestFill_RepeatPattern(t *testing.T) {
	n := padNode(protocol.PaddingConfig{Kind: protocol.FixedLength, TargetLength: 40, Pattern: []byte{0xAB}, RepeatPattern: true})

	res, err := Compute(n, nil, 0, &expr.Env{})
	require.NoError(t, err)
	require.Equal(t, []byte{0xAB, 0xAB, 0xAB, 0xAB, 0xAB}, res.Bytes)
}

func TestFill_PatternOnceThenZero(t *testing.T) {
	n := padNode(protocol.PaddingConfig{Kind: protocol.FixedLength, TargetLength: 24, Pattern: []byte{0xFF}, RepeatPattern: false})

	res, err := Compute(n, nil, 0, &expr.Env{})
	require.NoError(t, err)
	require.Equal(t, []byte{0xFF, 0x00, 0x00}, res.Bytes)
}
