package collision

import (
	"testing"

	"github.com/jelly-lidong/cmd-codec/errs"
	"github.com/stretchr/testify/require"
)

func TestNewTracker(t *testing.T) {
	tracker := NewTracker()

	require.NotNil(t, tracker)
	require.Equal(t, 0, tracker.Count())
}

func TestTracker_Track_Success(t *testing.T) {
	tracker := NewTracker()

	require.NoError(t, tracker.Track("proto1:header.sync"))
	require.Equal(t, 1, tracker.Count())

	require.NoError(t, tracker.Track("proto1:header.version"))
	require.Equal(t, 2, tracker.Count())
}

func TestTracker_Track_Duplicate(t *testing.T) {
	tracker := NewTracker()

	require.NoError(t, tracker.Track("proto1:header.sync"))

	err := tracker.Track("proto1:header.sync")
	require.ErrorIs(t, err, errs.ErrDuplicateNodeID)
	require.Equal(t, 1, tracker.Count())
}

func TestTracker_Reset(t *testing.T) {
	tracker := NewTracker()

	require.NoError(t, tracker.Track("proto1:a"))
	require.NoError(t, tracker.Track("proto1:b"))
	require.Equal(t, 2, tracker.Count())

	tracker.Reset()

	require.Equal(t, 0, tracker.Count())

	require.NoError(t, tracker.Track("proto1:a"))
	require.Equal(t, 1, tracker.Count())
}

func TestTracker_DistinctProtocolsDoNotCollide(t *testing.T) {
	tracker := NewTracker()

	require.NoError(t, tracker.Track("proto1:x"))
	require.NoError(t, tracker.Track("proto2:x"))
	require.Equal(t, 2, tracker.Count())
}
