// Package depgraph implements the per-protocol dependency graph of
// spec.md §4.4: nodes keyed by "protocolId:nodeId", structural and
// expression edges, Kahn's-algorithm topological sort, and cycle
// detection.
package depgraph

import (
	"fmt"
	"sort"

	"github.com/jelly-lidong/cmd-codec/errs"
)

// Graph is a directed dependency graph: an edge from -> to means "from
// must be computed after to".
type Graph struct {
	nodes map[string]bool
	deps  map[string]map[string]bool // scopedID -> set of prerequisite scopedIDs
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]bool),
		deps:  make(map[string]map[string]bool),
	}
}

// AddNode registers scopedID, creating it with no prerequisites if absent.
func (g *Graph) AddNode(scopedID string) {
	g.nodes[scopedID] = true
	if g.deps[scopedID] == nil {
		g.deps[scopedID] = make(map[string]bool)
	}
}

// AddDependency records that from must be computed after to. Both ids are
// registered as nodes if not already present.
func (g *Graph) AddDependency(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	g.deps[from][to] = true
}

// HasNode reports whether scopedID has been registered.
func (g *Graph) HasNode(scopedID string) bool {
	return g.nodes[scopedID]
}

// RemoveNode deletes scopedID and scrubs every edge referencing it, from
// either side. Used by the staged-scheduling builder to exclude padding
// nodes from the base topological order (spec.md §4.6) after the full
// dependency graph — including their structural edges — has already been
// built.
func (g *Graph) RemoveNode(scopedID string) {
	delete(g.nodes, scopedID)
	delete(g.deps, scopedID)
	for _, set := range g.deps {
		delete(set, scopedID)
	}
}

// Dependencies returns the prerequisites of scopedID, sorted for
// deterministic output.
func (g *Graph) Dependencies(scopedID string) []string {
	set := g.deps[scopedID]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)

	return out
}

// TopologicalOrder runs Kahn's algorithm: nodes with no unresolved
// prerequisite are emitted first, in deterministic (sorted) order among
// ties, and removing an emitted node unblocks its dependents. If the
// result is shorter than the node count, the remaining subgraph contains
// a cycle.
func (g *Graph) TopologicalOrder() ([]string, error) {
	inDegree := make(map[string]int, len(g.nodes))
	dependents := make(map[string][]string, len(g.nodes))

	for id := range g.nodes {
		inDegree[id] = len(g.deps[id])
	}
	for id, prereqs := range g.deps {
		for to := range prereqs {
			dependents[to] = append(dependents[to], id)
		}
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	var order []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		var freed []string
		for _, dep := range dependents[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				freed = append(freed, dep)
			}
		}
		sort.Strings(freed)
		queue = append(queue, freed...)
		sort.Strings(queue)
	}

	if len(order) != len(g.nodes) {
		cycle := g.FindCycle()
		return nil, errs.New(errs.KindDependency, "", "", "", fmt.Errorf("%w: %w: %v", errs.ErrIncompleteTopologicalOrder, errs.ErrCyclicDependency, cycle))
	}

	return order, nil
}

// FindCycle returns one cycle's node ids if the graph is not a DAG, or
// nil if it is acyclic. Used both to diagnose TopologicalOrder failures
// and standalone by the format validator.
func (g *Graph) FindCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int, len(g.nodes))
	var path []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = gray
		path = append(path, id)

		deps := g.Dependencies(id)
		for _, to := range deps {
			switch color[to] {
			case white:
				if visit(to) {
					return true
				}
			case gray:
				// Found the back edge; extract the cycle from path.
				for i := len(path) - 1; i >= 0; i-- {
					cycle = append(cycle, path[i])
					if path[i] == to {
						break
					}
				}
				return true
			}
		}

		path = path[:len(path)-1]
		color[id] = black

		return false
	}

	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if color[id] == white {
			if visit(id) {
				return cycle
			}
		}
	}

	return nil
}
