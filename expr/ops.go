package expr

import (
	"fmt"

	"github.com/jelly-lidong/cmd-codec/errs"
)

func errUnknownOp(op string) error {
	return fmt.Errorf("expr: unknown operator %q", op)
}

func errUnknownFunction(name string) error {
	return errs.New(errs.KindEvaluation, "", "", "", fmt.Errorf("%w: %s", errs.ErrUnknownFunction, name))
}

// precedence gives the binding power of a binary operator; higher binds
// tighter. Matches the table in SPEC_FULL.md §7:
// ?: < || < && < | < ^ < & < ==/!= < </<=/>/>= < <</>> < +/- < */%/ .
func precedence(op string) int {
	switch op {
	case "||":
		return 1
	case "&&":
		return 2
	case "|":
		return 3
	case "^":
		return 4
	case "&":
		return 5
	case "==", "!=":
		return 6
	case "<", "<=", ">", ">=":
		return 7
	case "<<", ">>":
		return 8
	case "+", "-":
		return 9
	case "*", "/", "%":
		return 10
	default:
		return 0
	}
}

func (n binary) eval(env *Env) (Value, error) {
	l, err := n.l.eval(env)
	if err != nil {
		return Value{}, err
	}

	// Short-circuit logical operators without evaluating the right side.
	switch n.op {
	case "&&":
		if !l.Truthy() {
			return Boolean(false), nil
		}
		r, err := n.r.eval(env)
		if err != nil {
			return Value{}, err
		}
		return Boolean(r.Truthy()), nil
	case "||":
		if l.Truthy() {
			return Boolean(true), nil
		}
		r, err := n.r.eval(env)
		if err != nil {
			return Value{}, err
		}
		return Boolean(r.Truthy()), nil
	}

	r, err := n.r.eval(env)
	if err != nil {
		return Value{}, err
	}

	switch n.op {
	case "==":
		return Boolean(valuesEqual(l, r)), nil
	case "!=":
		return Boolean(!valuesEqual(l, r)), nil
	case "<", "<=", ">", ">=":
		return compareNumeric(n.op, l, r)
	case "&", "|", "^", "<<", ">>":
		li, err := l.Int64()
		if err != nil {
			return Value{}, err
		}
		ri, err := r.Int64()
		if err != nil {
			return Value{}, err
		}
		return Number(float64(bitwise(n.op, li, ri))), nil
	default:
		lf, err := l.Float64()
		if err != nil {
			return Value{}, err
		}
		rf, err := r.Float64()
		if err != nil {
			return Value{}, err
		}
		return arithmetic(n.op, lf, rf)
	}
}

func bitwise(op string, l, r int64) int64 {
	switch op {
	case "&":
		return l & r
	case "|":
		return l | r
	case "^":
		return l ^ r
	case "<<":
		return l << uint(r)
	case ">>":
		return l >> uint(r)
	default:
		return 0
	}
}

func arithmetic(op string, l, r float64) (Value, error) {
	switch op {
	case "+":
		return Number(l + r), nil
	case "-":
		return Number(l - r), nil
	case "*":
		return Number(l * r), nil
	case "/":
		if r == 0 {
			return Value{}, errs.New(errs.KindEvaluation, "", "", "", errs.ErrExpressionEval)
		}
		return Number(l / r), nil
	case "%":
		if r == 0 {
			return Value{}, errs.New(errs.KindEvaluation, "", "", "", errs.ErrExpressionEval)
		}
		return Number(float64(int64(l) % int64(r))), nil
	default:
		return Value{}, errUnknownOp(op)
	}
}

func compareNumeric(op string, l, r Value) (Value, error) {
	lf, err := l.Float64()
	if err != nil {
		return Value{}, err
	}
	rf, err := r.Float64()
	if err != nil {
		return Value{}, err
	}

	switch op {
	case "<":
		return Boolean(lf < rf), nil
	case "<=":
		return Boolean(lf <= rf), nil
	case ">":
		return Boolean(lf > rf), nil
	case ">=":
		return Boolean(lf >= rf), nil
	default:
		return Value{}, errUnknownOp(op)
	}
}

func valuesEqual(l, r Value) bool {
	if l.Kind == KindString || r.Kind == KindString {
		return l.AsString() == r.AsString()
	}

	lf, lerr := l.Float64()
	rf, rerr := r.Float64()
	if lerr == nil && rerr == nil {
		return lf == rf
	}

	return l.AsString() == r.AsString()
}
