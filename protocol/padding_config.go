package protocol

// PaddingKind selects how a padding node's length is computed. See the
// padding package for the implementation of each kind's semantics.
type PaddingKind uint8

const (
	// FixedLength pads to max(0, targetLength - actualDataLength).
	FixedLength PaddingKind = iota + 1
	// Alignment pads the cumulative bit offset up to the next multiple
	// of targetLength.
	Alignment
	// Dynamic evaluates LengthExpression with currentLength and
	// targetLength bound in the environment and `value` resolving to the
	// padding node's own value; no `node` variable is bound.
	Dynamic
	// FillContainer pads out the remainder of the enclosing container's
	// declared length.
	FillContainer
)

func (k PaddingKind) String() string {
	switch k {
	case FixedLength:
		return "FIXED_LENGTH"
	case Alignment:
		return "ALIGNMENT"
	case Dynamic:
		return "DYNAMIC"
	case FillContainer:
		return "FILL_CONTAINER"
	default:
		return "UNKNOWN"
	}
}

// PaddingConfig configures a padding node's length computation and fill
// pattern.
type PaddingConfig struct {
	Kind PaddingKind

	// TargetLength is the boundary (FixedLength, Alignment) in bits.
	TargetLength int
	// LengthExpression is evaluated for Dynamic padding.
	LengthExpression string
	// AutoCalculateContainerLength, when false, uses ContainerFixedLength
	// instead of the container's declared Length for FillContainer padding.
	AutoCalculateContainerLength bool
	ContainerFixedLength         int

	MinPaddingLength int
	MaxPaddingLength int

	// Pattern is the fill byte pattern; when RepeatPattern is false the
	// whole pattern is written once and the remaining bytes are zero.
	Pattern       []byte
	RepeatPattern bool

	Enabled        bool
	EnableCondition string
}
