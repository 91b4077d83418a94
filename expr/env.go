package expr

import (
	"fmt"
	"strings"

	"github.com/jelly-lidong/cmd-codec/errs"
	"github.com/jelly-lidong/cmd-codec/protocol"
	"github.com/jelly-lidong/cmd-codec/registry"
)

// Env is the evaluation context of a single expression call: free
// identifiers resolve against Vars, "#id"/"#protocolId:id" references
// resolve against Protocol (and, for cross-protocol refs, Registry), and
// ScopeNode binds the "value" variable for the when() conditional helper
// (spec.md §4.3).
type Env struct {
	Vars      map[string]Value
	Protocol  *protocol.Protocol
	Registry  *registry.Registry
	ScopeNode *protocol.Node
}

func (e *Env) lookupVar(name string) (Value, error) {
	if e.ScopeNode != nil && name == "value" {
		return nodeValueOf(e.ScopeNode), nil
	}

	if v, ok := e.Vars[name]; ok {
		return v, nil
	}

	return Value{}, fmt.Errorf("expr: unbound identifier %q", name)
}

// parseRef splits a "#id" or "#protocolId:id" reference into its protocol
// id (empty for a same-protocol reference) and node id.
func parseRef(ref string) (protocolID, nodeID string) {
	ref = strings.TrimPrefix(ref, "#")
	if idx := strings.IndexByte(ref, ':'); idx >= 0 {
		return ref[:idx], ref[idx+1:]
	}

	return "", ref
}

// ResolveNode resolves a "#id"/"#protocolId:id" reference to its node,
// consulting Registry for cross-protocol references.
func (e *Env) ResolveNode(ref string) (*protocol.Node, error) {
	protocolID, nodeID := parseRef(ref)

	if protocolID == "" {
		if e.Protocol == nil {
			return nil, errs.ErrUnresolvedReference
		}
		for _, n := range e.Protocol.FlattenAll() {
			if n.ID == nodeID {
				return n, nil
			}
		}
		return nil, errs.ErrUnresolvedReference
	}

	if e.Registry == nil {
		return nil, errs.ErrUnresolvedReference
	}

	n, ok := e.Registry.Lookup(protocolID, nodeID)
	if !ok {
		return nil, errs.ErrUnresolvedReference
	}

	return n, nil
}

func (e *Env) resolveRefValue(ref string) (Value, error) {
	n, err := e.ResolveNode(ref)
	if err != nil {
		return Value{}, err
	}

	return nodeValueOf(n), nil
}

// nodeValueOf extracts a node's current semantic value: its decoded value
// if one has been populated (decode path), falling back to its configured
// literal (encode path).
func nodeValueOf(n *protocol.Node) Value {
	if n.DecodedValue != nil {
		return anyToValue(n.DecodedValue)
	}

	return anyToValue(n.Value)
}

func anyToValue(v any) Value {
	switch t := v.(type) {
	case nil:
		return Nil()
	case string:
		return String(t)
	case int:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case uint64:
		return Number(float64(t))
	case float64:
		return Number(t)
	case bool:
		return Boolean(t)
	default:
		return String(fmt.Sprintf("%v", t))
	}
}

// refArg returns the literal "#id" text of args[i], for functions whose
// argument identifies a node rather than supplying its value.
func refArg(args []node, i int) (string, error) {
	if i >= len(args) {
		return "", errs.ErrWrongArgCount
	}

	r, ok := args[i].(nodeRef)
	if !ok {
		return "", fmt.Errorf("expr: argument %d must be a #id reference", i)
	}

	return r.ref, nil
}

func valArg(args []node, i int, env *Env) (Value, error) {
	if i >= len(args) {
		return Value{}, errs.ErrWrongArgCount
	}

	return args[i].eval(env)
}
