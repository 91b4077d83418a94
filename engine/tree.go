package engine

import "github.com/jelly-lidong/cmd-codec/protocol"

// buildMaps walks p once and returns every node keyed by its scoped id,
// plus each node's structural parent (absent for protocol roots).
func buildMaps(p *protocol.Protocol) (byScoped, parentOf map[string]*protocol.Node) {
	byScoped = make(map[string]*protocol.Node)
	parentOf = make(map[string]*protocol.Node)

	var walk func(n, parent *protocol.Node)
	walk = func(n, parent *protocol.Node) {
		scoped := p.ScopedID(n.ID)
		byScoped[scoped] = n
		if parent != nil {
			parentOf[scoped] = parent
		}
		for _, c := range protocol.SortSiblings(n.Children) {
			walk(c, n)
		}
	}
	for _, root := range p.Roots() {
		walk(root, nil)
	}

	return byScoped, parentOf
}

// declLeaves returns every leaf node (including padding leaves, excluding
// structural containers) in declaration order — the order the decoder
// consumes bits in, per spec.md §4.9.
func declLeaves(p *protocol.Protocol) []*protocol.Node {
	var out []*protocol.Node
	_ = p.Walk(func(n *protocol.Node) error {
		if n.Kind == protocol.KindLeaf {
			out = append(out, n)
		}
		return nil
	})
	return out
}
