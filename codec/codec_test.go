package codec

import (
	"testing"

	"github.com/jelly-lidong/cmd-codec/bitio"
	"github.com/jelly-lidong/cmd-codec/protocol"
	"github.com/stretchr/testify/require"
)

func TestUintCodec_RoundTrip_Aligned(t *testing.T) {
	n := &protocol.Node{ID: "n", ValueType: protocol.UINT, Length: 16, Endian: protocol.Big, Value: "0x1234"}

	w := bitio.New()
	defer w.Release()
	require.NoError(t, Encode(n, w))

	out := w.ToByteArray()
	require.Equal(t, []byte{0x12, 0x34}, out)

	r := bitio.NewFromBytes(out)
	dec := &protocol.Node{ID: "n", ValueType: protocol.UINT, Length: 16, Endian: protocol.Big}
	require.NoError(t, Decode(dec, r))
	require.Equal(t, "4660", dec.DecodedValue)
}

func TestUintCodec_LittleEndian(t *testing.T) {
	n := &protocol.Node{ID: "n", ValueType: protocol.UINT, Length: 16, Endian: protocol.Little, Value: "0x1234"}

	w := bitio.New()
	defer w.Release()
	require.NoError(t, Encode(n, w))
	require.Equal(t, []byte{0x34, 0x12}, w.ToByteArray())
}

func TestUintCodec_OutOfRange(t *testing.T) {
	n := &protocol.Node{ID: "n", ValueType: protocol.UINT, Length: 4, Value: "20"}

	w := bitio.New()
	defer w.Release()
	require.Error(t, Encode(n, w))
}

func TestIntCodec_NegativeRoundTrip(t *testing.T) {
	n := &protocol.Node{ID: "n", ValueType: protocol.INT, Length: 8, Value: "-2"}

	w := bitio.New()
	defer w.Release()
	require.NoError(t, Encode(n, w))
	require.Equal(t, []byte{0xFE}, w.ToByteArray())

	dec := &protocol.Node{ID: "n", ValueType: protocol.INT, Length: 8}
	require.NoError(t, Decode(dec, bitio.NewFromBytes(w.ToByteArray())))
	require.Equal(t, "-2", dec.DecodedValue)
}

func TestHexCodec_RoundTrip(t *testing.T) {
	n := &protocol.Node{ID: "n", ValueType: protocol.HEX, Length: 24, Value: "0xABCDEF"}

	w := bitio.New()
	defer w.Release()
	require.NoError(t, Encode(n, w))
	require.Equal(t, []byte{0xAB, 0xCD, 0xEF}, w.ToByteArray())

	dec := &protocol.Node{ID: "n", ValueType: protocol.HEX, Length: 24}
	require.NoError(t, Decode(dec, bitio.NewFromBytes(w.ToByteArray())))
	require.Equal(t, "0xabcdef", dec.DecodedValue)
}

func TestBitCodec_RoundTrip(t *testing.T) {
	n := &protocol.Node{ID: "n", ValueType: protocol.BIT, Length: 4, Value: "0b1011"}

	w := bitio.New()
	defer w.Release()
	require.NoError(t, Encode(n, w))

	dec := &protocol.Node{ID: "n", ValueType: protocol.BIT, Length: 4}
	require.NoError(t, Decode(dec, bitio.NewFromBytes(w.ToByteArray())))
	require.Equal(t, "0b1011", dec.DecodedValue)
}

func TestFloatCodec_RoundTrip32(t *testing.T) {
	n := &protocol.Node{ID: "n", ValueType: protocol.FLOAT, Length: 32, Value: "3.5"}

	w := bitio.New()
	defer w.Release()
	require.NoError(t, Encode(n, w))

	dec := &protocol.Node{ID: "n", ValueType: protocol.FLOAT, Length: 32}
	require.NoError(t, Decode(dec, bitio.NewFromBytes(w.ToByteArray())))
	require.Equal(t, "3.5", dec.DecodedValue)
}

func TestStringCodec_NullPadAndTrim(t *testing.T) {
	n := &protocol.Node{ID: "n", ValueType: protocol.STRING, Length: 40, Value: "hi"}

	w := bitio.New()
	defer w.Release()
	require.NoError(t, Encode(n, w))
	require.Equal(t, []byte{'h', 'i', 0, 0, 0}, w.ToByteArray())

	dec := &protocol.Node{ID: "n", ValueType: protocol.STRING, Length: 40}
	require.NoError(t, Decode(dec, bitio.NewFromBytes(w.ToByteArray())))
	require.Equal(t, "hi", dec.DecodedValue)
}

func TestStringCodec_TooLong(t *testing.T) {
	n := &protocol.Node{ID: "n", ValueType: protocol.STRING, Length: 8, Value: "too long"}

	w := bitio.New()
	defer w.Release()
	require.Error(t, Encode(n, w))
}

func TestEnumCanonicalization(t *testing.T) {
	ranges := []protocol.EnumRange{{Value: "0x01", Desc: "ACTIVE"}, {Value: "0x02", Desc: "IDLE"}}
	n := &protocol.Node{ID: "n", ValueType: protocol.UINT, Length: 8, Value: "ACTIVE", EnumRanges: ranges}

	w := bitio.New()
	defer w.Release()
	require.NoError(t, Encode(n, w))
	require.Equal(t, []byte{0x01}, w.ToByteArray())

	dec := &protocol.Node{ID: "n", ValueType: protocol.UINT, Length: 8, EnumRanges: ranges}
	require.NoError(t, Decode(dec, bitio.NewFromBytes(w.ToByteArray())))
	require.Equal(t, "0x01", dec.DecodedValue)
}

func TestEnumRejectsUnknownValue(t *testing.T) {
	ranges := []protocol.EnumRange{{Value: "0x01", Desc: "ACTIVE"}}
	n := &protocol.Node{ID: "n", ValueType: protocol.UINT, Length: 8, Value: "99", EnumRanges: ranges}

	w := bitio.New()
	defer w.Release()
	require.Error(t, Encode(n, w))
}
