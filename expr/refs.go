package expr

// SplitRef exposes parseRef for callers outside the package (the
// dependency builder needs to tell same-protocol from cross-protocol
// references without re-implementing the "#id" / "#protocolId:id" split).
func SplitRef(ref string) (protocolID, nodeID string) {
	return parseRef(ref)
}

// CollectRefs parses source and returns every "#id"/"#protocolId:id"
// reference appearing anywhere in it (identifier position, function
// argument, either side of an operator) — used by the dependency builder
// to add expression edges (spec.md §4.4).
func CollectRefs(source string) ([]string, error) {
	e, err := Parse(source)
	if err != nil {
		return nil, err
	}

	var refs []string
	collectRefs(e.root, &refs)

	return refs, nil
}

func collectRefs(n node, out *[]string) {
	switch t := n.(type) {
	case nodeRef:
		*out = append(*out, t.ref)
	case unary:
		collectRefs(t.x, out)
	case binary:
		collectRefs(t.l, out)
		collectRefs(t.r, out)
	case ternary:
		collectRefs(t.cond, out)
		collectRefs(t.then, out)
		collectRefs(t.els, out)
	case call:
		for _, a := range t.args {
			collectRefs(a, out)
		}
	}
}

// BetweenPair is one "between" function invocation found in an
// expression: a range function call whose two #id arguments imply a
// dependency on every node declared between them, inclusive.
type BetweenPair struct {
	Start, End string
}

// CollectBetweenPairs parses source and returns every call to a function
// registered in BetweenFunctions, paired with its two #id arguments.
func CollectBetweenPairs(source string) ([]BetweenPair, error) {
	e, err := Parse(source)
	if err != nil {
		return nil, err
	}

	var pairs []BetweenPair
	collectBetween(e.root, &pairs)

	return pairs, nil
}

func collectBetween(n node, out *[]BetweenPair) {
	switch t := n.(type) {
	case unary:
		collectBetween(t.x, out)
	case binary:
		collectBetween(t.l, out)
		collectBetween(t.r, out)
	case ternary:
		collectBetween(t.cond, out)
		collectBetween(t.then, out)
		collectBetween(t.els, out)
	case call:
		if BetweenFunctions[t.name] && len(t.args) == 2 {
			if r1, ok1 := t.args[0].(nodeRef); ok1 {
				if r2, ok2 := t.args[1].(nodeRef); ok2 {
					*out = append(*out, BetweenPair{Start: r1.ref, End: r2.ref})
				}
			}
		}
		for _, a := range t.args {
			collectBetween(a, out)
		}
	}
}
