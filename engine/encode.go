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
	"github.com/jelly-lidong/cmd-codec/validate"
)

// Encode runs the two-pass encoder of spec.md §4.8 over p, returning the
// assembled wire bytes.
//
// Pass 1 walks the staged schedule (dependency order, with padding nodes
// repositioned next to their anchoring siblings) evaluating every node's
// final encoded bytes into a per-node cache, independent of declaration
// order. Pass 2 walks declaration order and writes each leaf's cached bytes
// into the output buffer, so the wire layout always matches the protocol
// tree regardless of the order evaluation happened in.
func (e *Engine) Encode(p *protocol.Protocol) ([]byte, error) {
	if err := validate.Validate(p); err != nil {
		return nil, err
	}

	nodeByScoped, parentOf := buildMaps(p)

	order, err := schedule(p)
	if err != nil {
		return nil, err
	}

	env := &expr.Env{Vars: map[string]expr.Value{}, Protocol: p, Registry: e.registry}
	cache := make(map[string][]byte, len(order))
	// cumulative is the running bit length of already-processed leaves
	// only, matching padding.Compute's cumulativeLength contract (spec.md
	// §4.7): padding and structural nodes never add to it.
	cumulative := 0

	for _, scoped := range order {
		n := nodeByScoped[scoped]
		if n == nil {
			continue
		}

		if err := conditional.Apply(n, env); err != nil {
			return nil, err
		}
		if !n.Enabled {
			cache[scoped] = nil
			continue
		}

		if n.IsPadding() {
			res, err := padding.Compute(n, parentOf[scoped], cumulative, env)
			if err != nil {
				return nil, err
			}
			n.Length = res.LengthBits
			cache[scoped] = res.Bytes
			continue
		}

		if n.Kind.IsStructural() {
			var buf []byte
			for _, c := range protocol.SortSiblings(n.Children) {
				buf = append(buf, cache[p.ScopedID(c.ID)]...)
			}
			cache[scoped] = buf
			continue
		}

		if n.ForwardExpr != "" {
			sub := &expr.Env{Vars: env.Vars, Protocol: env.Protocol, Registry: env.Registry, ScopeNode: n}
			result, err := expr.Eval(n.ForwardExpr, sub)
			if err != nil {
				return nil, errs.New(errs.KindEvaluation, p.ID, n.Path, n.ID, err)
			}
			n.FwdExprResult = formatForwardResult(result, n)
		}

		scratch := bitio.New()
		if err := codec.Encode(n, scratch); err != nil {
			scratch.Release()
			return nil, err
		}
		scratch.AlignToByte()
		out := scratch.ToByteArray()
		scratch.Release()

		n.SourceData = out
		cache[scoped] = out
		cumulative += n.Length
	}

	final := bitio.New()
	defer final.Release()

	var emit func(n *protocol.Node) error
	emit = func(n *protocol.Node) error {
		if !n.Enabled {
			return nil
		}
		if n.Kind.IsStructural() {
			for _, c := range protocol.SortSiblings(n.Children) {
				if err := emit(c); err != nil {
					return err
				}
			}
			return nil
		}
		if n.Length <= 0 {
			return nil
		}
		return appendCachedBits(final, cache[p.ScopedID(n.ID)], n.Length)
	}

	for _, root := range p.Roots() {
		if err := emit(root); err != nil {
			return nil, err
		}
	}

	final.AlignToByte()
	return final.ToByteArray(), nil
}

// formatForwardResult renders a forward expression's result in the literal
// form the leaf's codec expects: hex/binary string forms for HEX/BIT
// leaves (whose codecs parse those forms specifically, not a decimal
// rendering of the underlying number), AsString otherwise.
func formatForwardResult(v expr.Value, n *protocol.Node) string {
	switch n.ValueType {
	case protocol.HEX:
		i, err := v.Int64()
		if err != nil {
			return v.AsString()
		}
		return fmt.Sprintf("0x%X", uint64(i))
	case protocol.BIT:
		i, err := v.Int64()
		if err != nil {
			return v.AsString()
		}
		width := n.Length
		if width <= 0 {
			width = 1
		}
		return "0b" + fmt.Sprintf("%0*b", width, uint64(i))
	default:
		return v.AsString()
	}
}
