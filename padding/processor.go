// Package padding implements the padding processor of spec.md §4.7: the
// four padding kinds' length computation, clamping, and fill-byte
// generation.
package padding

import (
	"github.com/jelly-lidong/cmd-codec/expr"
	"github.com/jelly-lidong/cmd-codec/protocol"
)

// Result is a computed padding node's outcome: its final bit length and
// the bytes it contributes (sized to ceil(LengthBits/8)).
type Result struct {
	LengthBits int
	Bytes      []byte
}

// Compute derives n's padding length and fill bytes. cumulativeLength is
// the sum of bit lengths of all already-encoded predecessor leaves in the
// schedule, excluding other padding and structural nodes — it serves as
// both ALIGNMENT's "cumulativeLength" and FIXED_LENGTH's "actualDataLength"
// (spec.md §4.7 uses the same already-encoded-predecessor-length concept
// for both, so one running counter serves both kinds).
func Compute(n, container *protocol.Node, cumulativeLength int, env *expr.Env) (Result, error) {
	cfg := n.Padding

	enabled, err := isEnabled(cfg, env)
	if err != nil {
		return Result{}, err
	}
	if !enabled {
		return Result{}, nil
	}

	var lengthBits int
	switch cfg.Kind {
	case protocol.FixedLength:
		lengthBits = cfg.TargetLength - cumulativeLength
		if lengthBits < 0 {
			lengthBits = 0
		}
	case protocol.Alignment:
		if cfg.TargetLength <= 0 {
			lengthBits = 0
			break
		}
		rem := cumulativeLength % cfg.TargetLength
		if rem == 0 {
			lengthBits = 0
		} else {
			lengthBits = cfg.TargetLength - rem
		}
	case protocol.Dynamic:
		lengthBits, err = computeDynamic(n, cfg, cumulativeLength, env)
		if err != nil {
			return Result{}, err
		}
	case protocol.FillContainer:
		if container == nil {
			lengthBits = 0
			break
		}
		lengthBits = computeFillContainer(container, cfg, n)
	}

	lengthBits = clamp(lengthBits, cfg.MinPaddingLength, cfg.MaxPaddingLength)
	if lengthBits <= 0 {
		return Result{LengthBits: 0}, nil
	}

	return Result{LengthBits: lengthBits, Bytes: fill(cfg, lengthBits)}, nil
}

func isEnabled(cfg *protocol.PaddingConfig, env *expr.Env) (bool, error) {
	if !cfg.Enabled {
		return false, nil
	}
	if cfg.EnableCondition == "" {
		return true, nil
	}

	v, err := expr.Eval(cfg.EnableCondition, env)
	if err != nil {
		return false, err
	}

	return v.Truthy(), nil
}

func computeDynamic(n *protocol.Node, cfg *protocol.PaddingConfig, cumulativeLength int, env *expr.Env) (int, error) {
	sub := &expr.Env{
		Vars:      cloneVars(env.Vars),
		Protocol:  env.Protocol,
		Registry:  env.Registry,
		ScopeNode: n,
	}
	sub.Vars["currentLength"] = expr.Number(float64(cumulativeLength))
	sub.Vars["targetLength"] = expr.Number(float64(cfg.TargetLength))

	v, err := expr.Eval(cfg.LengthExpression, sub)
	if err != nil {
		return 0, err
	}

	n64, err := v.Int64()
	if err != nil {
		return 0, err
	}

	return int(n64), nil
}

func cloneVars(vars map[string]expr.Value) map[string]expr.Value {
	out := make(map[string]expr.Value, len(vars)+2)
	for k, v := range vars {
		out[k] = v
	}
	return out
}

// computeFillContainer sums the declared lengths of container's already
// encoded, enabled, non-padding, non-structural children (i.e. every leaf
// child except the padding node itself) and subtracts from the container's
// available length — never consulting the container's own cached bytes,
// since that would cycle (spec.md §4.7).
func computeFillContainer(container *protocol.Node, cfg *protocol.PaddingConfig, self *protocol.Node) int {
	containerLength := container.Length
	if !cfg.AutoCalculateContainerLength {
		containerLength = cfg.ContainerFixedLength
	}

	used := 0
	for _, c := range container.Children {
		if c == self || !c.Enabled || c.IsPadding() || c.Kind.IsStructural() {
			continue
		}
		used += c.Length
	}

	return containerLength - used
}

func clamp(v, min, max int) int {
	if min > 0 && v < min {
		v = min
	}
	if max > 0 && v > max {
		v = max
	}
	return v
}

// fill generates lengthBits worth of fill bytes from cfg's pattern: the
// pattern repeats to fill the span when RepeatPattern is set, otherwise it
// is copied once and the remainder is left implicit-zero.
func fill(cfg *protocol.PaddingConfig, lengthBits int) []byte {
	nBytes := (lengthBits + 7) / 8
	out := make([]byte, nBytes)

	if len(cfg.Pattern) == 0 {
		return out
	}

	if !cfg.RepeatPattern {
		copy(out, cfg.Pattern)
		return out
	}

	for i := range out {
		out[i] = cfg.Pattern[i%len(cfg.Pattern)]
	}

	return out
}
