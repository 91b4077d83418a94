// Package registry implements the process-wide protocol registry: a
// protocolId -> nodeId -> *protocol.Node table that lets an expression in
// one protocol reference a node in another ("#otherProtocol:id", spec.md
// §6).
//
// The registry is read concurrently by multiple codec invocations (each
// engine.Engine.Encode/Decode call only reads it to resolve cross-protocol
// references); insertion happens once, at load time, and the caller is
// responsible for serializing concurrent Register calls — same posture as
// spec.md §5. The RWMutex here is cheap insurance for the common case
// where a caller registers protocols during init() from multiple
// goroutines; it does not change the documented contract.
package registry

import (
	"sync"

	"github.com/jelly-lidong/cmd-codec/protocol"
)

// Registry is a process-wide table of protocol id -> node id -> node.
type Registry struct {
	mu   sync.RWMutex
	data map[string]map[string]*protocol.Node
}

// New creates an empty registry. Most callers should use the package-level
// Default registry instead; New exists for tests and for callers that want
// isolated registries per test case.
func New() *Registry {
	return &Registry{
		data: make(map[string]map[string]*protocol.Node),
	}
}

// Register inserts every node of p (including structural containers) into
// the registry under p.ID, overwriting any protocol previously registered
// under the same id.
func (r *Registry) Register(p *protocol.Protocol) {
	nodes := make(map[string]*protocol.Node)
	_ = p.Walk(func(n *protocol.Node) error {
		nodes[n.ID] = n
		return nil
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[p.ID] = nodes
}

// Unregister removes a protocol from the registry.
func (r *Registry) Unregister(protocolID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, protocolID)
}

// Lookup resolves a node by protocol id and node id.
func (r *Registry) Lookup(protocolID, nodeID string) (*protocol.Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	nodes, ok := r.data[protocolID]
	if !ok {
		return nil, false
	}

	n, ok := nodes[nodeID]
	return n, ok
}

// HasProtocol reports whether protocolID has been registered.
func (r *Registry) HasProtocol(protocolID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.data[protocolID]
	return ok
}

// Default is the process-wide registry used by engine.New when no
// engine.WithRegistry option is supplied.
var Default = New()
