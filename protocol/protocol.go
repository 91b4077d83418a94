package protocol

import "sort"

// Protocol is a complete wire-format tree: an optional Header/Body/Tail and
// an ordered list of free-standing Nodes.
//
// Emission order (declaration order, per the ambiguity noted in spec.md
// §9): Header, then Body (which may itself recursively nest Header/Body/
// Tail/leaves), then Tail, then the free-standing Nodes — resolved here as
// a fixed behavior rather than left ambiguous; see DESIGN.md.
type Protocol struct {
	ID     string
	Name   string
	Header *Node
	Body   *Node
	Tail   *Node
	Nodes  []*Node
}

// SortSiblings returns children ordered by ascending Order, ties broken by
// original declaration order (stable sort over the slice as given).
func SortSiblings(children []*Node) []*Node {
	sorted := make([]*Node, len(children))
	copy(sorted, children)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	return sorted
}

// Roots returns the protocol's top-level sections in declaration order:
// Header, Body, Tail, then the free-standing nodes. Nil sections are
// omitted.
func (p *Protocol) Roots() []*Node {
	roots := make([]*Node, 0, 3+len(p.Nodes))
	if p.Header != nil {
		roots = append(roots, p.Header)
	}
	if p.Body != nil {
		roots = append(roots, p.Body)
	}
	if p.Tail != nil {
		roots = append(roots, p.Tail)
	}
	roots = append(roots, p.Nodes...)

	return roots
}

// Walk invokes visit for every node in the tree in declaration order
// (siblings sorted by Order), depth-first, parent before children. Walk
// stops and returns visit's error as soon as visit returns a non-nil
// error.
func (p *Protocol) Walk(visit func(n *Node) error) error {
	for _, root := range p.Roots() {
		if err := walkNode(root, visit); err != nil {
			return err
		}
	}

	return nil
}

func walkNode(n *Node, visit func(n *Node) error) error {
	if err := visit(n); err != nil {
		return err
	}

	for _, child := range SortSiblings(n.Children) {
		if err := walkNode(child, visit); err != nil {
			return err
		}
	}

	return nil
}

// FlattenLeaves returns every leaf node in the tree, in declaration order.
// Used by the dependency builder to resolve "between" function arguments
// (spec.md §4.3) and by the expr package's range functions to collect the
// leaves between two references.
func (p *Protocol) FlattenLeaves() []*Node {
	var leaves []*Node
	_ = p.Walk(func(n *Node) error {
		if n.Kind == KindLeaf && !n.IsPadding() {
			leaves = append(leaves, n)
		}

		return nil
	})

	return leaves
}

// FlattenAll returns every node in the tree (leaves and structural
// containers, including padding), in declaration order.
func (p *Protocol) FlattenAll() []*Node {
	var all []*Node
	_ = p.Walk(func(n *Node) error {
		all = append(all, n)
		return nil
	})

	return all
}

// ScopedID returns the registry/dependency-graph key for a node id within
// this protocol: "protocolId:nodeId".
func (p *Protocol) ScopedID(nodeID string) string {
	return p.ID + ":" + nodeID
}
