package engine

import (
	"fmt"
	"strconv"

	"github.com/jelly-lidong/cmd-codec/internal/hexutil"
	"github.com/jelly-lidong/cmd-codec/protocol"
)

// compareValues implements the type-specific equality of spec.md §4.9: hex
// strings compare as normalized unsigned integers, bit strings as
// normalized binary text, INT/UINT/TIME numerically, FLOAT within a
// tolerance of 1e-9 when actual is a float64 value and 1e-6 otherwise, and
// STRING exactly. The FLOAT tolerance follows actual's Go type only; the
// field's 32- or 64-bit width is not consulted.
func compareValues(vt protocol.ValueType, expected, actual any) bool {
	if expected == nil {
		return true
	}

	expStr := fmt.Sprintf("%v", expected)
	actStr := fmt.Sprintf("%v", actual)

	switch vt {
	case protocol.HEX:
		return hexutil.HexStringEqual(expStr, actStr)
	case protocol.BIT:
		return normalizeBits(expStr) == normalizeBits(actStr)
	case protocol.INT, protocol.UINT, protocol.TIME:
		ei, eerr := strconv.ParseInt(expStr, 0, 64)
		ai, aerr := strconv.ParseInt(actStr, 0, 64)
		if eerr == nil && aerr == nil {
			return ei == ai
		}
		ef, eferr := strconv.ParseFloat(expStr, 64)
		af, aferr := strconv.ParseFloat(actStr, 64)
		if eferr == nil && aferr == nil {
			return ef == af
		}
		return expStr == actStr
	case protocol.FLOAT:
		ef, eerr := strconv.ParseFloat(expStr, 64)
		af, aerr := strconv.ParseFloat(actStr, 64)
		if eerr != nil || aerr != nil {
			return expStr == actStr
		}
		tol := 1e-6
		if _, ok := actual.(float64); ok {
			tol = 1e-9
		}
		diff := ef - af
		if diff < 0 {
			diff = -diff
		}
		return diff < tol
	case protocol.STRING:
		return expStr == actStr
	default:
		return expStr == actStr
	}
}

func normalizeBits(s string) string {
	if len(s) >= 2 && (s[:2] == "0b" || s[:2] == "0B") {
		s = s[2:]
	}
	for len(s) > 1 && s[0] == '0' {
		s = s[1:]
	}
	return s
}
