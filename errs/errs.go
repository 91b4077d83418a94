// Package errs defines the error taxonomy shared across the codec engine.
//
// Every fatal failure carries the protocol id, the offending node's debug
// path, and its id, so callers can pinpoint the failure without the engine
// needing to log anything itself — this package (and the engine built on
// it) has no logging dependency; errors are returned, never printed.
//
// Sentinel errors (the exported Err* values) identify the *stable* failure
// cases that callers reasonably branch on with errors.Is. Anything with
// free-form detail (an expression string, a cycle path, a decode offset) is
// carried on a *CodecError instead, still classified by Kind and still
// wrapping the relevant sentinel where one applies.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a CodecError into one of the six failure categories of
// the codec's error handling design.
type Kind uint8

const (
	// KindConfiguration covers malformed protocol trees: duplicate ids,
	// unresolved references, illegal bit lengths, expression syntax
	// failures. Raised by the format validator and dependency builder.
	KindConfiguration Kind = iota + 1
	// KindDependency covers cycles in the non-padding subgraph,
	// unreachable nodes, and missing references at evaluation time.
	KindDependency
	// KindEvaluation covers expression runtime failures: null results,
	// type mismatches, divide-by-zero.
	KindEvaluation
	// KindEncoding covers out-of-range values, wrong IEEE width, string
	// overflow, enum mismatch.
	KindEncoding
	// KindDecoding covers insufficient bits and codec decode failures.
	KindDecoding
	// KindValidationMismatch covers a decoded value differing from the
	// expected value. Unlike every other kind, this one is non-fatal:
	// it is recorded on the leaf's validation result and does not abort
	// the decode call.
	KindValidationMismatch
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindDependency:
		return "dependency"
	case KindEvaluation:
		return "evaluation"
	case KindEncoding:
		return "encoding"
	case KindDecoding:
		return "decoding"
	case KindValidationMismatch:
		return "validation_mismatch"
	default:
		return "unknown"
	}
}

// CodecError is the structured error carried out of every fatal failure in
// the engine, plus the (non-fatal) per-leaf validation mismatch record.
type CodecError struct {
	Kind       Kind
	ProtocolID string
	NodePath   string
	NodeID     string
	Cause      error
}

func (e *CodecError) Error() string {
	path := e.NodePath
	if path == "" {
		path = e.NodeID
	}

	if e.Cause == nil {
		return fmt.Sprintf("%s: %s:%s", e.Kind, e.ProtocolID, path)
	}

	return fmt.Sprintf("%s: %s:%s: %v", e.Kind, e.ProtocolID, path, e.Cause)
}

func (e *CodecError) Unwrap() error {
	return e.Cause
}

// New builds a CodecError of the given kind for the named node, wrapping
// cause. NodePath may be empty when the node has no debug path recorded
// (e.g. an error raised before the tree walk resolves one).
func New(kind Kind, protocolID, nodePath, nodeID string, cause error) *CodecError {
	return &CodecError{
		Kind:       kind,
		ProtocolID: protocolID,
		NodePath:   nodePath,
		NodeID:     nodeID,
		Cause:      cause,
	}
}

// Sentinel errors for the stable, comparable failure cases. Wrap these with
// New (or fmt.Errorf("...: %w", ...)) to attach node/protocol context.
var (
	// ErrDuplicateNodeID is returned when two nodes in the same protocol
	// share an id (format validator, invariant 4 of the data model).
	ErrDuplicateNodeID = errors.New("duplicate node id within protocol")
	// ErrHashCollision is returned when two distinct scoped ids hash to
	// the same internal bucket value in the fast-path duplicate check.
	ErrHashCollision = errors.New("scoped id hash collision")
	// ErrUnresolvedReference is returned when a #id or #protocolId:id
	// reference in an expression does not resolve to a registered node.
	ErrUnresolvedReference = errors.New("unresolved node reference")
	// ErrCyclicDependency is returned when the non-padding dependency
	// subgraph contains a cycle.
	ErrCyclicDependency = errors.New("cyclic dependency")
	// ErrIncompleteTopologicalOrder is returned when Kahn's algorithm
	// terminates before consuming every registered node.
	ErrIncompleteTopologicalOrder = errors.New("incomplete topological order")
	// ErrIllegalBitLength is returned when a structural node's declared
	// length does not equal the sum of its enabled children's lengths,
	// or a leaf's length is invalid for its value type (e.g. FLOAT not
	// 32/64).
	ErrIllegalBitLength = errors.New("illegal bit length")
	// ErrIllegalEnumValue is returned when an encode value matches
	// neither the value nor the desc of any configured enum range.
	ErrIllegalEnumValue = errors.New("value not in enum range")
	// ErrValueOutOfRange is returned when an encode value does not fit
	// in the leaf's declared bit width.
	ErrValueOutOfRange = errors.New("value out of range for declared width")
	// ErrStringTooLong is returned when a STRING value's encoded form
	// exceeds ceil(length/8) bytes.
	ErrStringTooLong = errors.New("string value exceeds field width")
	// ErrInsufficientBits is returned when a decode needs more bits than
	// the bit buffer has left to read.
	ErrInsufficientBits = errors.New("insufficient bits remaining")
	// ErrExpressionSyntax is returned when an expression fails to parse.
	ErrExpressionSyntax = errors.New("expression syntax error")
	// ErrExpressionEval is returned when a parsed expression fails at
	// evaluation time (divide-by-zero, nil operand, type mismatch).
	ErrExpressionEval = errors.New("expression evaluation error")
	// ErrUnknownFunction is returned when an expression calls a function
	// name the engine does not register.
	ErrUnknownFunction = errors.New("unknown expression function")
	// ErrWrongArgCount is returned when an expression function is called
	// with the wrong number of arguments.
	ErrWrongArgCount = errors.New("wrong argument count")
)
