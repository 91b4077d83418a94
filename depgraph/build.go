package depgraph

import (
	"github.com/jelly-lidong/cmd-codec/expr"
	"github.com/jelly-lidong/cmd-codec/protocol"
)

// Build walks p and produces its dependency graph: structural edges
// (container depends on each child), expression edges (a node depends on
// every same-protocol #id its forward/reverse expression references), and
// range-function edges (a "between" call depends on every leaf declared
// between its two arguments, inclusive, per spec.md §4.4).
//
// Cross-protocol references ("#otherProtocol:id") add no edge here;
// resolution at evaluation time goes through the registry, outside this
// protocol's graph.
func Build(p *protocol.Protocol) (*Graph, error) {
	g := New()
	leaves := p.FlattenLeaves()
	leafIndex := make(map[string]int, len(leaves))
	for i, l := range leaves {
		leafIndex[l.ID] = i
	}

	err := p.Walk(func(n *protocol.Node) error {
		scoped := p.ScopedID(n.ID)
		g.AddNode(scoped)

		for _, c := range n.Children {
			g.AddDependency(scoped, p.ScopedID(c.ID))
		}

		for _, exprSrc := range []string{n.ForwardExpr, n.ReverseExpr} {
			if exprSrc == "" {
				continue
			}

			if err := addExpressionEdges(g, p, scoped, exprSrc, leaves, leafIndex); err != nil {
				return err
			}
		}

		for _, cond := range n.Conditions {
			if cond.ConditionNodeRef != "" {
				protocolID, nodeID := expr.SplitRef(cond.ConditionNodeRef)
				if protocolID == "" {
					g.AddDependency(scoped, p.ScopedID(nodeID))
				}
			}

			if cond.ConditionExpr == "" {
				continue
			}
			if err := addExpressionEdges(g, p, scoped, cond.ConditionExpr, leaves, leafIndex); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return g, nil
}

func addExpressionEdges(g *Graph, p *protocol.Protocol, scoped, source string, leaves []*protocol.Node, leafIndex map[string]int) error {
	refs, err := expr.CollectRefs(source)
	if err != nil {
		return err
	}

	for _, ref := range refs {
		protocolID, nodeID := expr.SplitRef(ref)
		if protocolID != "" {
			continue // cross-protocol: resolved via the registry, not this graph
		}

		g.AddDependency(scoped, p.ScopedID(nodeID))
	}

	pairs, err := expr.CollectBetweenPairs(source)
	if err != nil {
		return err
	}

	for _, pair := range pairs {
		_, startID := expr.SplitRef(pair.Start)
		_, endID := expr.SplitRef(pair.End)

		si, sok := leafIndex[startID]
		ei, eok := leafIndex[endID]
		if !sok || !eok {
			continue
		}
		if si > ei {
			si, ei = ei, si
		}

		for i := si; i <= ei; i++ {
			g.AddDependency(scoped, p.ScopedID(leaves[i].ID))
		}
	}

	return nil
}
