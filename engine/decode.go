package engine

import (
	"fmt"

	"github.com/jelly-lidong/cmd-codec/bitio"
	"github.com/jelly-lidong/cmd-codec/codec"
	"github.com/jelly-lidong/cmd-codec/conditional"
	"github.com/jelly-lidong/cmd-codec/errs"
	"github.com/jelly-lidong/cmd-codec/expr"
	"github.com/jelly-lidong/cmd-codec/padding"
	"github.com/jelly-lidong/cmd-codec/protocol"
)

// ValidationStatus classifies one leaf's post-decode comparison outcome.
type ValidationStatus uint8

const (
	// StatusOK means the decoded (or transformed) value matched the
	// leaf's configured expected value, or no expected value was set.
	StatusOK ValidationStatus = iota + 1
	// StatusMismatch means the comparison failed (non-fatal; recorded on
	// LeafResult, does not abort Decode).
	StatusMismatch
	// StatusDisabled means the leaf was disabled and contributed no bits.
	StatusDisabled
)

// LeafResult records one leaf's decode outcome.
type LeafResult struct {
	NodeID           string
	Status           ValidationStatus
	DecodedValue     any
	TransformedValue any
	StartBitPosition int
	EndBitPosition   int
}

// Decode walks p in declaration order, consuming data bit by bit: each
// leaf's width (computed on the fly for padding nodes, exactly as during
// encode) determines how many bits it consumes, its codec decodes the
// slice, and the leaf's decoded bytes are cached as SourceData (the same
// format Encode's pass 1 produces). Any reverse expression is applied.
// Once every leaf has been read, a second pass re-derives the expected
// value of every forward-expression leaf (e.g. a CRC tail's
// crc16Of(#body)) against the now-populated SourceData of the nodes it
// references, instead of comparing against the static pre-encode
// placeholder that expression was never meant to hold at rest (spec.md
// §8 property 1). A mismatch is recorded, not fatal; only structural
// failures (insufficient bits, expression errors) abort the call.
func (e *Engine) Decode(p *protocol.Protocol, data []byte) ([]LeafResult, error) {
	_, parentOf := buildMaps(p)

	buf := bitio.NewFromBytes(data)
	env := &expr.Env{Vars: map[string]expr.Value{}, Protocol: p, Registry: e.registry}
	// cumulative mirrors Encode's: real-leaf bit length only, excluding
	// padding and structural nodes (spec.md §4.7's cumulativeLength).
	cumulative := 0

	var results []LeafResult
	var forwardLeaves []*protocol.Node

	for _, n := range declLeaves(p) {
		if err := conditional.Apply(n, env); err != nil {
			return results, err
		}
		if !n.Enabled {
			results = append(results, LeafResult{NodeID: n.ID, Status: StatusDisabled})
			continue
		}

		scoped := p.ScopedID(n.ID)

		length := n.Length
		if n.IsPadding() {
			res, err := padding.Compute(n, parentOf[scoped], cumulative, env)
			if err != nil {
				return results, err
			}
			n.Length = res.LengthBits
			length = res.LengthBits
		}

		if length <= 0 {
			continue
		}

		n.StartBitPosition = buf.GetReadBitPosition()

		if n.IsPadding() {
			if err := skipBits(buf, length); err != nil {
				return results, errs.New(errs.KindDecoding, p.ID, n.Path, n.ID, err)
			}
			n.EndBitPosition = buf.GetReadBitPosition()
			continue
		}

		if err := codec.Decode(n, buf); err != nil {
			return results, err
		}
		n.EndBitPosition = buf.GetReadBitPosition()
		n.SourceData = extractBits(data, n.StartBitPosition, length)
		cumulative += length

		actual := n.DecodedValue
		if n.ReverseExpr != "" {
			sub := &expr.Env{Vars: env.Vars, Protocol: env.Protocol, Registry: env.Registry, ScopeNode: n}
			result, err := expr.Eval(n.ReverseExpr, sub)
			if err != nil {
				return results, errs.New(errs.KindEvaluation, p.ID, n.Path, n.ID, err)
			}
			n.TransformedValue = result.AsString()
			actual = n.TransformedValue
		}

		results = append(results, LeafResult{
			NodeID:           n.ID,
			DecodedValue:     n.DecodedValue,
			TransformedValue: n.TransformedValue,
			StartBitPosition: n.StartBitPosition,
			EndBitPosition:   n.EndBitPosition,
		})

		if n.ForwardExpr != "" {
			forwardLeaves = append(forwardLeaves, n)
			continue
		}

		idx := len(results) - 1
		status := StatusOK
		if !compareValues(n.ValueType, n.Value, actual) {
			status = StatusMismatch
			n.ValidationError = errs.New(errs.KindValidationMismatch, p.ID, n.Path, n.ID,
				fmt.Errorf("decoded %v, expected %v", actual, n.Value))
		}
		results[idx].Status = status
	}

	indexOfResult := make(map[string]int, len(results))
	for i, r := range results {
		indexOfResult[p.ScopedID(r.NodeID)] = i
	}

	for _, n := range forwardLeaves {
		sub := &expr.Env{Vars: env.Vars, Protocol: env.Protocol, Registry: env.Registry, ScopeNode: n}
		expected, err := expr.Eval(n.ForwardExpr, sub)
		if err != nil {
			return results, errs.New(errs.KindEvaluation, p.ID, n.Path, n.ID, err)
		}
		expectedValue := formatForwardResult(expected, n)

		actual := n.DecodedValue
		if n.ReverseExpr != "" {
			actual = n.TransformedValue
		}

		idx := indexOfResult[p.ScopedID(n.ID)]
		if compareValues(n.ValueType, expectedValue, actual) {
			results[idx].Status = StatusOK
			continue
		}

		results[idx].Status = StatusMismatch
		n.ValidationError = errs.New(errs.KindValidationMismatch, p.ID, n.Path, n.ID,
			fmt.Errorf("decoded %v, expected %v", actual, expectedValue))
	}

	return results, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// skipBits reads and discards length bits, chunked to bitio.Buffer's
// 64-bit-per-call limit.
func skipBits(buf *bitio.Buffer, length int) error {
	remaining := length
	for remaining > 0 {
		chunk := minInt(remaining, 64)
		if _, err := buf.ReadBits(chunk); err != nil {
			return err
		}
		remaining -= chunk
	}
	return nil
}
