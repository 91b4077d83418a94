package engine

import (
	"testing"

	"github.com/jelly-lidong/cmd-codec/protocol"
	"github.com/stretchr/testify/require"
)

func leaf(id string, vt protocol.ValueType, length int, value string, endian protocol.EndianType, order float64) *protocol.Node {
	return &protocol.Node{
		ID: id, Kind: protocol.KindLeaf, ValueType: vt, Length: length,
		Value: value, Endian: endian, Enabled: true, Order: order,
	}
}

func TestEncode_FixedHeader(t *testing.T) {
	header := &protocol.Node{
		ID: "header", Kind: protocol.KindHeader, Enabled: true, Length: 56,
		Children: []*protocol.Node{
			leaf("sync", protocol.HEX, 16, "0xAA55", protocol.Big, 1),
			leaf("version", protocol.UINT, 8, "1", protocol.Big, 2),
			leaf("length", protocol.UINT, 16, "80", protocol.Big, 3),
			leaf("seq", protocol.UINT, 16, "1", protocol.Big, 4),
		},
	}
	p := &protocol.Protocol{ID: "p1", Header: header}

	e, err := New()
	require.NoError(t, err)

	out, err := e.Encode(p)
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA, 0x55, 0x01, 0x00, 0x50, 0x00, 0x01}, out)

	results, err := e.Decode(p, out)
	require.NoError(t, err)
	for _, r := range results {
		require.Equalf(t, StatusOK, r.Status, "node %s", r.NodeID)
	}
}

func TestEncode_ComputedLength(t *testing.T) {
	count := leaf("count", protocol.UINT, 8, "3", protocol.Big, 1)
	// payload's 24-bit width is count*8, resolved by the (out-of-scope) loader
	// before the tree reaches the engine; the engine only ever sees a fixed
	// declared Length.
	payload := leaf("payload", protocol.HEX, 24, "0xABCDEF", protocol.Big, 2)
	body := &protocol.Node{ID: "body", Kind: protocol.KindBody, Enabled: true, Length: 32, Children: []*protocol.Node{count, payload}}
	p := &protocol.Protocol{ID: "p2", Body: body}

	e, err := New()
	require.NoError(t, err)

	out, err := e.Encode(p)
	require.NoError(t, err)
	require.Equal(t, []byte{0x03, 0xAB, 0xCD, 0xEF}, out)
}

func TestEncode_CRCTail(t *testing.T) {
	var bodyChildren []*protocol.Node
	for i, v := range []string{"0x01", "0x02", "0x03", "0x04", "0x05", "0x06", "0x07", "0x08"} {
		bodyChildren = append(bodyChildren, leaf("b"+string(rune('0'+i)), protocol.UINT, 8, v, protocol.Big, float64(i)))
	}
	body := &protocol.Node{ID: "body", Kind: protocol.KindBody, Enabled: true, Length: 64, Children: bodyChildren}

	crc := leaf("crc", protocol.HEX, 16, "0x0000", protocol.Big, 1)
	crc.ForwardExpr = "crc16Of(#body)"
	tail := &protocol.Node{ID: "tail", Kind: protocol.KindTail, Enabled: true, Length: 16, Children: []*protocol.Node{crc}}

	p := &protocol.Protocol{ID: "p3", Body: body, Tail: tail}

	e, err := New()
	require.NoError(t, err)

	out, err := e.Encode(p)
	require.NoError(t, err)
	require.Len(t, out, 10)
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}, out[:8])

	results, err := e.Decode(p, out)
	require.NoError(t, err)
	for _, r := range results {
		require.Equalf(t, StatusOK, r.Status, "node %s", r.NodeID)
	}
}

func TestEncode_FillContainerPadding(t *testing.T) {
	a := leaf("a", protocol.UINT, 8, "0x12", protocol.Big, 1)
	b := leaf("b", protocol.UINT, 8, "0x34", protocol.Big, 2)
	pad := &protocol.Node{
		ID: "pad", Kind: protocol.KindLeaf, Enabled: true, Order: 3,
		Padding: &protocol.PaddingConfig{
			Kind: protocol.FillContainer, AutoCalculateContainerLength: true,
			Pattern: []byte{0x00}, RepeatPattern: true, Enabled: true,
		},
	}
	body := &protocol.Node{ID: "body", Kind: protocol.KindBody, Enabled: true, Length: 64, Children: []*protocol.Node{a, b, pad}}
	p := &protocol.Protocol{ID: "p4", Body: body}

	e, err := New()
	require.NoError(t, err)

	out, err := e.Encode(p)
	require.NoError(t, err)
	require.Equal(t, []byte{0x12, 0x34, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, out)
}

func TestEncode_AlignmentPadding(t *testing.T) {
	x := leaf("x", protocol.UINT, 12, "0xABC", protocol.Big, 1)
	pad := &protocol.Node{
		ID: "pad", Kind: protocol.KindLeaf, Enabled: true, Order: 2,
		Padding: &protocol.PaddingConfig{Kind: protocol.Alignment, TargetLength: 16, Enabled: true},
	}
	y := leaf("y", protocol.UINT, 8, "0x5A", protocol.Big, 3)
	p := &protocol.Protocol{ID: "p5", Nodes: []*protocol.Node{x, pad, y}}

	e, err := New()
	require.NoError(t, err)

	out, err := e.Encode(p)
	require.NoError(t, err)
	require.Equal(t, []byte{0xAB, 0xC0, 0x5A}, out)

	results, err := e.Decode(p, out)
	require.NoError(t, err)
	for _, r := range results {
		require.Equalf(t, StatusOK, r.Status, "node %s", r.NodeID)
	}
}

func TestEncode_ConditionalDisable(t *testing.T) {
	build := func(flagValue string) *protocol.Protocol {
		flag := leaf("flag", protocol.UINT, 8, flagValue, protocol.Big, 1)
		opt := &protocol.Node{
			ID: "opt", Kind: protocol.KindLeaf, ValueType: protocol.UINT, Length: 8,
			Value: "0x99", Endian: protocol.Big, Order: 2,
			Conditions: []protocol.Condition{
				{ConditionNodeRef: "#flag", ConditionExpr: "value == 1", Action: protocol.Enable, ElseAction: protocol.Disable, Priority: 1},
			},
		}
		return &protocol.Protocol{ID: "p6", Nodes: []*protocol.Node{flag, opt}}
	}

	e, err := New()
	require.NoError(t, err)

	disabled, err := e.Encode(build("0"))
	require.NoError(t, err)
	require.Equal(t, []byte{0x00}, disabled)

	enabled, err := e.Encode(build("1"))
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x99}, enabled)
}
