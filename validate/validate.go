// Package validate implements the pre-encode format validator of
// spec.md §4.10: structural length bookkeeping, enum legality, expression
// syntax, node id uniqueness, and reference resolvability, all checked
// before a protocol tree is ever handed to the engine.
package validate

import (
	"fmt"

	"github.com/jelly-lidong/cmd-codec/errs"
	"github.com/jelly-lidong/cmd-codec/expr"
	"github.com/jelly-lidong/cmd-codec/internal/collision"
	"github.com/jelly-lidong/cmd-codec/internal/hexutil"
	"github.com/jelly-lidong/cmd-codec/protocol"
)

// Validate checks p against the format validator's invariants, returning
// the first violation found wrapped in a *errs.CodecError naming the
// offending node.
func Validate(p *protocol.Protocol) error {
	tracker := collision.NewTracker()
	ids := make(map[string]*protocol.Node)

	err := p.Walk(func(n *protocol.Node) error {
		if err := tracker.Track(p.ScopedID(n.ID)); err != nil {
			return errs.New(errs.KindConfiguration, p.ID, n.Path, n.ID, err)
		}
		ids[n.ID] = n

		if n.Kind.IsStructural() {
			if err := checkStructuralLength(p, n); err != nil {
				return err
			}
		}

		for _, r := range n.EnumRanges {
			if _, err := hexutil.ParseUint(r.Value); err != nil {
				return errs.New(errs.KindConfiguration, p.ID, n.Path, n.ID,
					fmt.Errorf("enum value %q is not a legal hex/decimal string: %w", r.Value, err))
			}
		}

		for _, src := range []string{n.ForwardExpr, n.ReverseExpr} {
			if src == "" {
				continue
			}
			if _, err := expr.Parse(src); err != nil {
				return errs.New(errs.KindConfiguration, p.ID, n.Path, n.ID, err)
			}
		}

		if n.Padding != nil && n.Padding.LengthExpression != "" {
			if _, err := expr.Parse(n.Padding.LengthExpression); err != nil {
				return errs.New(errs.KindConfiguration, p.ID, n.Path, n.ID, err)
			}
		}
		if n.Padding != nil && n.Padding.EnableCondition != "" {
			if _, err := expr.Parse(n.Padding.EnableCondition); err != nil {
				return errs.New(errs.KindConfiguration, p.ID, n.Path, n.ID, err)
			}
		}

		for _, cond := range n.Conditions {
			if _, err := expr.Parse(cond.ConditionExpr); err != nil {
				return errs.New(errs.KindConfiguration, p.ID, n.Path, n.ID, err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	return checkReferences(p)
}

// checkStructuralLength verifies a container's declared Length equals the
// sum of its children's declared lengths, when the container's length was
// declared up front (Length > 0). A zero-length container is dynamically
// sized (e.g. by a FILL_CONTAINER descendant) and skips the check; so does
// any container with a padding child, since a padding node's width is
// resolved at encode/decode time specifically to make that sum come out
// even — checking it here would reject the common fill/align case that
// padding exists to handle.
//
// Children conditionally disabled at runtime still count here: enablement
// is resolved by the conditional processor during encode/decode, after
// format validation has already run, so the declared length must account
// for every child's worst case (all enabled) rather than a resolution this
// pass cannot yet see.
func checkStructuralLength(p *protocol.Protocol, n *protocol.Node) error {
	if n.Length <= 0 {
		return nil
	}

	sum := 0
	for _, c := range n.Children {
		if c.IsPadding() {
			return nil
		}
		sum += c.Length
	}

	if sum != n.Length {
		return errs.New(errs.KindConfiguration, p.ID, n.Path, n.ID,
			fmt.Errorf("%w: declared %d bits, children sum to %d", errs.ErrIllegalBitLength, n.Length, sum))
	}

	return nil
}

// checkReferences verifies every "#id"/"#protocolId:id" reference in every
// expression resolves to a node: same-protocol refs must name a node in p,
// cross-protocol refs are accepted unchecked (their target protocol may
// not be registered yet at validation time).
func checkReferences(p *protocol.Protocol) error {
	all := p.FlattenAll()
	ids := make(map[string]bool, len(all))
	for _, n := range all {
		ids[n.ID] = true
	}

	return p.Walk(func(n *protocol.Node) error {
		sources := []string{n.ForwardExpr, n.ReverseExpr}
		if n.Padding != nil {
			sources = append(sources, n.Padding.LengthExpression, n.Padding.EnableCondition)
		}
		for _, cond := range n.Conditions {
			sources = append(sources, cond.ConditionExpr)
			if cond.ConditionNodeRef != "" {
				if err := checkOneRef(p, n, cond.ConditionNodeRef, ids); err != nil {
					return err
				}
			}
		}

		for _, src := range sources {
			if src == "" {
				continue
			}
			refs, err := expr.CollectRefs(src)
			if err != nil {
				return errs.New(errs.KindConfiguration, p.ID, n.Path, n.ID, err)
			}
			for _, ref := range refs {
				if err := checkOneRef(p, n, ref, ids); err != nil {
					return err
				}
			}
		}

		return nil
	})
}

func checkOneRef(p *protocol.Protocol, n *protocol.Node, ref string, ids map[string]bool) error {
	protocolID, nodeID := expr.SplitRef(ref)
	if protocolID != "" {
		return nil // cross-protocol: resolved at evaluation time via the registry
	}
	if !ids[nodeID] {
		return errs.New(errs.KindConfiguration, p.ID, n.Path, n.ID,
			fmt.Errorf("%w: %q", errs.ErrUnresolvedReference, ref))
	}
	return nil
}
