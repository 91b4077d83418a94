package expr

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jelly-lidong/cmd-codec/errs"
	"github.com/jelly-lidong/cmd-codec/internal/hash"
	"github.com/jelly-lidong/cmd-codec/protocol"
)

// Fn is a named expression function: it receives its unevaluated argument
// ASTs (so node-inspection functions can read a "#id" reference's literal
// text instead of its resolved value) plus the call's environment.
type Fn func(args []node, env *Env) (Value, error)

var funcRegistry = map[string]Fn{
	"hexSlice":                   fnHexSlice,
	"bytesSlice":                 fnBytesSlice,
	"base64ToHex":                fnBase64ToHex,
	"swapEndian16":               fnSwapEndian16,
	"nodeValue":                  fnNodeValue,
	"nodeOffset":                 fnNodeOffset,
	"nodeEndOffset":              fnNodeEndOffset,
	"alignNode":                  fnAlignNode,
	"paddingForNode":             fnPaddingForNode,
	"indexOfNode":                fnIndexOfNode,
	"listSize":                   fnListSize,
	"isEmpty":                    fnIsEmpty,
	"asInt":                      fnAsInt,
	"asFloat":                    fnAsFloat,
	"asBCD":                      fnAsBCD,
	"encodeNode":                 fnEncodeNode,
	"decodeNode":                 fnDecodeNode,
	"checksumOf":                 fnChecksumOf,
	"xorOf":                      fnXorOf,
	"crc16Of":                    fnCrc16Of,
	"hashOf":                     fnHashOf,
	"when":                       fnWhen,
	"relativeWeekSecond":         fnRelativeWeekSecond,
	"relativeWeekAndSecondDecode": fnRelativeWeekAndSecondDecode,
	"rangeChecksum":              fnRangeChecksum,
	"rangeCrc16":                 fnRangeCrc16,
}

// BetweenFunctions names the "between" range functions of spec.md §4.3:
// both arguments are #id references, and the dependency builder (package
// depgraph) must add an edge from every node declared between them,
// inclusive, rather than just the two named nodes.
var BetweenFunctions = map[string]bool{
	"rangeChecksum": true,
	"rangeCrc16":    true,
}

// Lookup returns the function registered under name.
func Lookup(name string) (Fn, bool) {
	fn, ok := funcRegistry[name]
	return fn, ok
}

func fnHexSlice(args []node, env *Env) (Value, error) {
	hv, err := valArg(args, 0, env)
	if err != nil {
		return Value{}, err
	}
	offV, err := valArg(args, 1, env)
	if err != nil {
		return Value{}, err
	}
	lenV, err := valArg(args, 2, env)
	if err != nil {
		return Value{}, err
	}

	raw, err := hex.DecodeString(trimHexPrefix(hv.AsString()))
	if err != nil {
		return Value{}, err
	}

	off, _ := offV.Int64()
	n, _ := lenV.Int64()
	if off < 0 || n < 0 || int(off+n) > len(raw) {
		return Value{}, errs.ErrValueOutOfRange
	}

	return String("0x" + hex.EncodeToString(raw[off:off+n])), nil
}

func fnBytesSlice(args []node, env *Env) (Value, error) {
	return fnHexSlice(args, env)
}

func fnBase64ToHex(args []node, env *Env) (Value, error) {
	v, err := valArg(args, 0, env)
	if err != nil {
		return Value{}, err
	}

	raw, err := base64.StdEncoding.DecodeString(v.AsString())
	if err != nil {
		return Value{}, err
	}

	return String("0x" + hex.EncodeToString(raw)), nil
}

func fnSwapEndian16(args []node, env *Env) (Value, error) {
	v, err := valArg(args, 0, env)
	if err != nil {
		return Value{}, err
	}

	n, err := v.Int64()
	if err != nil {
		return Value{}, err
	}

	lo := n & 0xFF
	hi := (n >> 8) & 0xFF
	return Number(float64(lo<<8 | hi)), nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

func fnNodeValue(args []node, env *Env) (Value, error) {
	ref, err := refArg(args, 0)
	if err != nil {
		return Value{}, err
	}
	return env.resolveRefValue(ref)
}

func fnNodeOffset(args []node, env *Env) (Value, error) {
	n, err := resolveArgNode(args, env)
	if err != nil {
		return Value{}, err
	}
	return Number(float64(n.StartBitPosition / 8)), nil
}

func fnNodeEndOffset(args []node, env *Env) (Value, error) {
	n, err := resolveArgNode(args, env)
	if err != nil {
		return Value{}, err
	}
	return Number(float64(n.EndBitPosition / 8)), nil
}

func fnAlignNode(args []node, env *Env) (Value, error) {
	n, err := resolveArgNode(args, env)
	if err != nil {
		return Value{}, err
	}
	bv, err := valArg(args, 1, env)
	if err != nil {
		return Value{}, err
	}
	boundary, _ := bv.Int64()
	if boundary <= 0 {
		return Value{}, fmt.Errorf("expr: alignNode boundary must be positive")
	}

	boundaryBits := boundary * 8
	aligned := ((int64(n.EndBitPosition) + boundaryBits - 1) / boundaryBits) * boundaryBits
	return Number(float64(aligned / 8)), nil
}

func fnPaddingForNode(args []node, env *Env) (Value, error) {
	n, err := resolveArgNode(args, env)
	if err != nil {
		return Value{}, err
	}
	bv, err := valArg(args, 1, env)
	if err != nil {
		return Value{}, err
	}
	boundary, _ := bv.Int64()
	if boundary <= 0 {
		return Value{}, fmt.Errorf("expr: paddingForNode boundary must be positive")
	}

	boundaryBits := boundary * 8
	rem := int64(n.EndBitPosition) % boundaryBits
	if rem == 0 {
		return Number(0), nil
	}
	return Number(float64((boundaryBits - rem) / 8)), nil
}

func fnIndexOfNode(args []node, env *Env) (Value, error) {
	groupRef, err := refArg(args, 0)
	if err != nil {
		return Value{}, err
	}
	idRef, err := refArg(args, 1)
	if err != nil {
		return Value{}, err
	}

	group, err := env.ResolveNode(groupRef)
	if err != nil {
		return Value{}, err
	}
	_, targetID := parseRef(idRef)

	for i, c := range protocol.SortSiblings(group.Children) {
		if c.ID == targetID {
			return Number(float64(i)), nil
		}
	}

	return Number(-1), nil
}

func fnListSize(args []node, env *Env) (Value, error) {
	n, err := resolveArgNode(args, env)
	if err != nil {
		return Value{}, err
	}
	return Number(float64(len(n.Children))), nil
}

func fnIsEmpty(args []node, env *Env) (Value, error) {
	n, err := resolveArgNode(args, env)
	if err != nil {
		return Value{}, err
	}

	if len(n.SourceData) > 0 {
		return Boolean(false), nil
	}

	v := nodeValueOf(n)
	return Boolean(v.Kind == KindNil || v.AsString() == ""), nil
}

func resolveArgNode(args []node, env *Env) (*protocol.Node, error) {
	ref, err := refArg(args, 0)
	if err != nil {
		return nil, err
	}
	return env.ResolveNode(ref)
}

func fnAsInt(args []node, env *Env) (Value, error) {
	n, err := resolveArgNode(args, env)
	if err != nil {
		return Value{}, err
	}
	signedV, _ := valArg(args, 1, env)
	offV, _ := valArg(args, 2, env)
	lenV, _ := valArg(args, 3, env)

	signed := signedV.Truthy()
	off, _ := offV.Int64()
	bitLen, _ := lenV.Int64()
	if bitLen <= 0 {
		bitLen = int64(len(n.SourceData) * 8)
	}

	v := extractBits(n.SourceData, int(off), int(bitLen))
	if signed && bitLen < 64 {
		signBit := uint64(1) << uint(bitLen-1)
		if v&signBit != 0 {
			return Number(float64(int64(v | (^uint64(0) << uint(bitLen))))), nil
		}
	}

	return Number(float64(v)), nil
}

func extractBits(data []byte, bitOffset, bitLen int) uint64 {
	var v uint64
	for i := 0; i < bitLen; i++ {
		pos := bitOffset + i
		byteIdx := pos / 8
		if byteIdx >= len(data) {
			break
		}
		bit := (data[byteIdx] >> uint(7-pos%8)) & 1
		v = v<<1 | uint64(bit)
	}
	return v
}

func fnAsFloat(args []node, env *Env) (Value, error) {
	n, err := resolveArgNode(args, env)
	if err != nil {
		return Value{}, err
	}

	v := anyToValue(nodeValueOf(n))
	f, err := v.Float64()
	if err != nil {
		return Value{}, err
	}
	return Number(f), nil
}

func fnAsBCD(args []node, env *Env) (Value, error) {
	n, err := resolveArgNode(args, env)
	if err != nil {
		return Value{}, err
	}

	var out int64
	for _, b := range n.SourceData {
		hi := (b >> 4) & 0x0F
		lo := b & 0x0F
		out = out*100 + int64(hi)*10 + int64(lo)
	}

	return Number(float64(out)), nil
}

func fnEncodeNode(args []node, env *Env) (Value, error) {
	n, err := resolveArgNode(args, env)
	if err != nil {
		return Value{}, err
	}
	return String(nodeValueOf(n).AsString()), nil
}

func fnDecodeNode(args []node, env *Env) (Value, error) {
	n, err := resolveArgNode(args, env)
	if err != nil {
		return Value{}, err
	}
	return String(string(n.SourceData)), nil
}

func fnChecksumOf(args []node, env *Env) (Value, error) {
	n, err := resolveArgNode(args, env)
	if err != nil {
		return Value{}, err
	}

	var sum byte
	for _, b := range gatherBytes(n) {
		sum += b
	}

	return Number(float64(sum)), nil
}

func fnXorOf(args []node, env *Env) (Value, error) {
	n, err := resolveArgNode(args, env)
	if err != nil {
		return Value{}, err
	}

	var x byte
	for _, b := range gatherBytes(n) {
		x ^= b
	}

	return Number(float64(x)), nil
}

func fnCrc16Of(args []node, env *Env) (Value, error) {
	n, err := resolveArgNode(args, env)
	if err != nil {
		return Value{}, err
	}

	return Number(float64(CRC16(gatherBytes(n)))), nil
}

func fnHashOf(args []node, env *Env) (Value, error) {
	n, err := resolveArgNode(args, env)
	if err != nil {
		return Value{}, err
	}
	algoV, err := valArg(args, 1, env)
	if err != nil {
		return Value{}, err
	}

	switch algoV.AsString() {
	case "xxhash", "":
		return Number(float64(hash.ID(string(gatherBytes(n))))), nil
	default:
		return Value{}, fmt.Errorf("expr: unsupported hash algorithm %q", algoV.AsString())
	}
}

func fnWhen(args []node, env *Env) (Value, error) {
	n, err := resolveArgNode(args, env)
	if err != nil {
		return Value{}, err
	}
	exprV, err := valArg(args, 1, env)
	if err != nil {
		return Value{}, err
	}

	sub, err := Parse(exprV.AsString())
	if err != nil {
		return Value{}, err
	}

	subEnv := &Env{Vars: env.Vars, Protocol: env.Protocol, Registry: env.Registry, ScopeNode: n}
	result, err := sub.root.eval(subEnv)
	if err != nil {
		return Value{}, err
	}

	if result.Truthy() {
		return Number(1), nil
	}
	return Number(0), nil
}

// gatherBytes returns n's encoded bytes, concatenating enabled children
// in declaration order when n is a structural container.
func gatherBytes(n *protocol.Node) []byte {
	if !n.Kind.IsStructural() {
		return n.SourceData
	}

	var buf []byte
	for _, c := range protocol.SortSiblings(n.Children) {
		if !c.Enabled {
			continue
		}
		buf = append(buf, gatherBytes(c)...)
	}

	return buf
}

func fnRangeChecksum(args []node, env *Env) (Value, error) {
	raw, err := rangeBytes(args, env)
	if err != nil {
		return Value{}, err
	}

	var sum byte
	for _, b := range raw {
		sum += b
	}
	return Number(float64(sum)), nil
}

func fnRangeCrc16(args []node, env *Env) (Value, error) {
	raw, err := rangeBytes(args, env)
	if err != nil {
		return Value{}, err
	}
	return Number(float64(CRC16(raw))), nil
}

func rangeBytes(args []node, env *Env) ([]byte, error) {
	startRef, err := refArg(args, 0)
	if err != nil {
		return nil, err
	}
	endRef, err := refArg(args, 1)
	if err != nil {
		return nil, err
	}

	if env.Protocol == nil {
		return nil, errs.ErrUnresolvedReference
	}

	_, startID := parseRef(startRef)
	_, endID := parseRef(endRef)

	leaves := env.Protocol.FlattenLeaves()
	si, ei := -1, -1
	for i, l := range leaves {
		if l.ID == startID {
			si = i
		}
		if l.ID == endID {
			ei = i
		}
	}

	if si < 0 || ei < 0 {
		return nil, errs.ErrUnresolvedReference
	}
	if si > ei {
		si, ei = ei, si
	}

	var buf []byte
	for i := si; i <= ei; i++ {
		buf = append(buf, leaves[i].SourceData...)
	}

	return buf, nil
}

// weekSeconds is the number of seconds in a week, used by the
// relative-week time encoding of spec.md §6.
const weekSeconds = 7 * 24 * 3600

func fnRelativeWeekSecond(args []node, env *Env) (Value, error) {
	v, err := valArg(args, 0, env)
	if err != nil {
		return Value{}, err
	}

	t, err := time.Parse(time.RFC3339, v.AsString())
	if err != nil {
		return Value{}, err
	}

	return Number(float64(weekSecondPack(t))), nil
}

// weekSecondPack encodes t into a 6-byte week/second form, returned as a
// uint64 so it fits the UINT codec path: high 16 bits are the number of
// whole weeks since the Unix epoch (1970-01-01 00:00:00 UTC, a Thursday),
// low 32 bits are seconds since the start of that epoch-aligned week. Weeks
// are counted in UTC from the epoch, not from a Monday, not in local time,
// and not relative to a caller-supplied base time.
func weekSecondPack(t time.Time) uint64 {
	unixSec := t.Unix()
	week := unixSec / weekSeconds
	weekStart := week * weekSeconds
	secIntoWeek := unixSec - weekStart

	return uint64(uint16(week))<<32 | uint64(uint32(secIntoWeek))
}

func fnRelativeWeekAndSecondDecode(args []node, env *Env) (Value, error) {
	baseV, err := valArg(args, 0, env)
	if err != nil {
		return Value{}, err
	}
	valueV, err := valArg(args, 1, env)
	if err != nil {
		return Value{}, err
	}

	base, err := baseV.Int64()
	if err != nil {
		return Value{}, err
	}
	packed, err := valueV.Int64()
	if err != nil {
		return Value{}, err
	}

	week := int16(uint64(packed) >> 32)
	secIntoWeek := uint32(uint64(packed) & 0xFFFFFFFF)

	unixSec := base + int64(week)*weekSeconds + int64(secIntoWeek)
	return String(time.Unix(unixSec, 0).UTC().Format(time.RFC3339)), nil
}
