// Package conditional implements the conditional processor of spec.md
// §4.5: per-node, priority-ordered ENABLE/DISABLE/SET_DEFAULT/CLEAR_VALUE
// rules evaluated against a referenced node's value.
package conditional

import (
	"sort"

	"github.com/jelly-lidong/cmd-codec/expr"
	"github.com/jelly-lidong/cmd-codec/protocol"
)

// typeDefault returns the type-appropriate default literal SET_DEFAULT
// installs when a node's value is nil (spec.md §4.5).
func typeDefault(vt protocol.ValueType) string {
	switch vt {
	case protocol.HEX:
		return "0x00"
	case protocol.BIT:
		return "0b0"
	case protocol.FLOAT:
		return "0.0"
	case protocol.STRING:
		return ""
	default: // UINT, INT, TIME
		return "0"
	}
}

// Apply evaluates n's conditions in ascending priority order against env,
// mutating n.Enabled, n.EnabledReason, and n.Value in place. A DISABLE
// action stops processing further conditions on n, per spec.md §4.5.
func Apply(n *protocol.Node, env *expr.Env) error {
	if len(n.Conditions) == 0 {
		return nil
	}

	conditions := append([]protocol.Condition(nil), n.Conditions...)
	sort.SliceStable(conditions, func(i, j int) bool {
		return conditions[i].Priority < conditions[j].Priority
	})

	for _, cond := range conditions {
		refNode, err := env.ResolveNode(cond.ConditionNodeRef)
		if err != nil {
			return err
		}

		subEnv := &expr.Env{Vars: env.Vars, Protocol: env.Protocol, Registry: env.Registry, ScopeNode: refNode}

		result, err := expr.Eval(cond.ConditionExpr, subEnv)
		if err != nil {
			return err
		}

		action := cond.ElseAction
		if result.Truthy() {
			action = cond.Action
		}

		if applyAction(n, action) {
			break
		}
	}

	return nil
}

// applyAction applies a single resolved action to n, returning true if
// processing of further conditions on n must stop (DISABLE).
func applyAction(n *protocol.Node, action protocol.ConditionAction) bool {
	switch action {
	case protocol.Enable:
		n.Enabled = true
		n.EnabledReason = "condition enabled"
	case protocol.Disable:
		n.Enabled = false
		n.EnabledReason = "condition disabled"
		return true
	case protocol.SetDefault:
		if n.Value == nil {
			n.Value = typeDefault(n.ValueType)
		}
	case protocol.ClearValue:
		n.Value = nil
	}

	return false
}
