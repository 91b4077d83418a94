package protocol

import "testing"

func leaf(id string, order float64) *Node {
	return &Node{ID: id, Name: id, Kind: KindLeaf, Order: order, Enabled: true}
}

func TestSortSiblings_TiesKeepDeclarationOrder(t *testing.T) {
	a := leaf("a", 1)
	b := leaf("b", 1)
	c := leaf("c", 0)

	sorted := SortSiblings([]*Node{a, b, c})

	if sorted[0].ID != "c" || sorted[1].ID != "a" || sorted[2].ID != "b" {
		t.Fatalf("unexpected order: %v %v %v", sorted[0].ID, sorted[1].ID, sorted[2].ID)
	}
}

func TestRoots_OrderIsHeaderBodyTailNodes(t *testing.T) {
	p := &Protocol{
		ID:     "p1",
		Header: &Node{ID: "h", Kind: KindHeader},
		Body:   &Node{ID: "b", Kind: KindBody},
		Tail:   &Node{ID: "t", Kind: KindTail},
		Nodes:  []*Node{leaf("n1", 0)},
	}

	roots := p.Roots()
	if len(roots) != 4 {
		t.Fatalf("expected 4 roots, got %d", len(roots))
	}
	if roots[0].ID != "h" || roots[1].ID != "b" || roots[2].ID != "t" || roots[3].ID != "n1" {
		t.Fatalf("unexpected root order: %+v", roots)
	}
}

func TestFlattenLeaves_ExcludesStructuralAndPadding(t *testing.T) {
	body := &Node{ID: "body", Kind: KindBody}
	l1 := leaf("a", 0)
	l2 := leaf("b", 1)
	pad := &Node{ID: "pad", Kind: KindLeaf, Order: 2, Padding: &PaddingConfig{Kind: FillContainer}}
	body.Children = []*Node{l1, l2, pad}

	p := &Protocol{ID: "p1", Body: body}

	leaves := p.FlattenLeaves()
	if len(leaves) != 2 {
		t.Fatalf("expected 2 leaves, got %d", len(leaves))
	}
	if leaves[0].ID != "a" || leaves[1].ID != "b" {
		t.Fatalf("unexpected leaves: %+v", leaves)
	}
}

func TestScopedID(t *testing.T) {
	p := &Protocol{ID: "proto1"}
	if got := p.ScopedID("length"); got != "proto1:length" {
		t.Fatalf("got %q", got)
	}
}
