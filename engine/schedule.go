package engine

import (
	"github.com/jelly-lidong/cmd-codec/depgraph"
	"github.com/jelly-lidong/cmd-codec/protocol"
)

// schedule is the ordered scopedID sequence pass 1 evaluates: the
// non-padding dependency topological order, with each padding node
// positionally reinserted (spec.md §4.6). Padding nodes are excluded from
// the base topological sort because their own length computation inspects
// already-scheduled siblings, not declared dependency edges — including
// them in Kahn's algorithm would let the deterministic tie-break place one
// before siblings it must follow.
func schedule(p *protocol.Protocol) ([]string, error) {
	g, err := depgraph.Build(p)
	if err != nil {
		return nil, err
	}

	_, parentOf := buildMaps(p)

	var paddingNodes []*protocol.Node
	for _, n := range declLeaves(p) {
		if n.IsPadding() {
			paddingNodes = append(paddingNodes, n)
		}
	}

	for _, pn := range paddingNodes {
		g.RemoveNode(p.ScopedID(pn.ID))
	}

	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	for _, pn := range paddingNodes {
		scoped := p.ScopedID(pn.ID)
		siblings := siblingsOf(p, pn, parentOf[scoped])
		idx := insertionIndex(pn, siblings, order, p)
		order = insertAt(order, idx, scoped)
	}

	return order, nil
}

// siblingsOf returns the sibling list a padding node anchors against: its
// structural parent's children, or — for a free-standing, top-level
// padding node — the protocol's free node list.
func siblingsOf(p *protocol.Protocol, pn, parent *protocol.Node) []*protocol.Node {
	if parent != nil {
		return parent.Children
	}
	return p.Nodes
}

// insertionIndex picks where a padding node belongs in the base order.
// FILL_CONTAINER and ALIGNMENT anchor next to their declaration-order
// neighbors among siblings: right after the nearest preceding sibling
// already placed in order, or — if pad has none (it is its siblings'
// first declared entry) — right before the nearest following one. Other
// kinds have no positional dependency and are appended at the end.
func insertionIndex(pn *protocol.Node, siblings []*protocol.Node, order []string, p *protocol.Protocol) int {
	switch pn.Padding.Kind {
	case protocol.FillContainer, protocol.Alignment:
		declared := protocol.SortSiblings(siblings)

		pos := -1
		for i, sib := range declared {
			if sib == pn {
				pos = i
				break
			}
		}
		if pos == -1 {
			return len(order)
		}

		for i := pos - 1; i >= 0; i-- {
			if declared[i].IsPadding() {
				continue
			}
			if idx := indexOf(order, p.ScopedID(declared[i].ID)); idx >= 0 {
				return idx + 1
			}
		}
		for i := pos + 1; i < len(declared); i++ {
			if declared[i].IsPadding() {
				continue
			}
			if idx := indexOf(order, p.ScopedID(declared[i].ID)); idx >= 0 {
				return idx
			}
		}

		return len(order)
	default:
		return len(order)
	}
}

func indexOf(order []string, scoped string) int {
	for i, id := range order {
		if id == scoped {
			return i
		}
	}
	return -1
}

func insertAt(order []string, idx int, scoped string) []string {
	out := make([]string, 0, len(order)+1)
	out = append(out, order[:idx]...)
	out = append(out, scoped)
	out = append(out, order[idx:]...)
	return out
}
