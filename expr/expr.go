package expr

// Eval parses and evaluates source against env in one call; most callers
// needing an expression only once should use this rather than Parse plus
// a manual eval call.
func Eval(source string, env *Env) (Value, error) {
	e, err := Parse(source)
	if err != nil {
		return Value{}, err
	}

	return e.Eval(env)
}

// Eval evaluates a previously-parsed expression against env.
func (e *Expr) Eval(env *Env) (Value, error) {
	return e.root.eval(env)
}
