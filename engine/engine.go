// Package engine implements the codec orchestrator of spec.md §4.8/§4.9:
// the two-pass encoder (dependency-ordered evaluation, then declaration-
// order structural emission) and the declaration-order decoder/validator.
package engine

import (
	"github.com/jelly-lidong/cmd-codec/internal/options"
	"github.com/jelly-lidong/cmd-codec/registry"
)

// Engine encodes and decodes protocol trees. The zero value is not usable;
// construct with New.
type Engine struct {
	registry *registry.Registry
}

// Option configures an Engine at construction time.
type Option = options.Option[*Engine]

// WithRegistry overrides the registry consulted for cross-protocol
// references during expression evaluation. Defaults to registry.Default.
func WithRegistry(r *registry.Registry) Option {
	return options.NoError[*Engine](func(e *Engine) {
		e.registry = r
	})
}

// New builds an Engine, applying opts in order.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{registry: registry.Default}
	if err := options.Apply[*Engine](e, opts...); err != nil {
		return nil, err
	}

	return e, nil
}
