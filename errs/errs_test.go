package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodecError_ErrorAndUnwrap(t *testing.T) {
	err := New(KindConfiguration, "proto1", "Body.length", "length", ErrDuplicateNodeID)

	require.ErrorIs(t, err, ErrDuplicateNodeID)
	require.Contains(t, err.Error(), "proto1:Body.length")
	require.Contains(t, err.Error(), "configuration")
}

func TestCodecError_NoNodePathFallsBackToNodeID(t *testing.T) {
	err := New(KindDecoding, "proto1", "", "crc16", ErrInsufficientBits)

	require.Contains(t, err.Error(), "proto1:crc16")
}

func TestCodecError_NilCause(t *testing.T) {
	err := New(KindDependency, "proto1", "Body.x", "x", nil)

	require.False(t, errors.Is(err, ErrCyclicDependency))
	require.Contains(t, err.Error(), "dependency")
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindConfiguration:      "configuration",
		KindDependency:         "dependency",
		KindEvaluation:         "evaluation",
		KindEncoding:           "encoding",
		KindDecoding:           "decoding",
		KindValidationMismatch: "validation_mismatch",
		Kind(99):               "unknown",
	}
	for kind, want := range cases {
		require.Equal(t, want, kind.String())
	}
}
