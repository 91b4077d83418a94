// Package collision detects duplicate node ids within a protocol.
//
// The format validator (invariant 4 of the protocol data model: at most one
// dependency-graph entry per (id, protocolId) pair) needs to reject a
// duplicate scoped id before the dependency builder ever sees it. Rather
// than compare every new scoped id against every id seen so far, Tracker
// hashes each scoped id with internal/hash and keeps only the hash ->
// scoped-id map, so duplicate detection is O(1) per node instead of O(n).
//
// Adapted from the metric-name collision tracker pattern of a hash-based
// time-series encoder: the same "hash first, verify the rare collision"
// shape, simplified because node ids must be genuinely unique here rather
// than tolerantly merged.
package collision

import (
	"github.com/jelly-lidong/cmd-codec/errs"
	"github.com/jelly-lidong/cmd-codec/internal/hash"
)

// Tracker tracks scoped node ids ("protocolId:nodeId") seen so far and
// reports duplicates.
type Tracker struct {
	seen map[uint64]string // hash(scopedID) -> scopedID
}

// NewTracker creates a new, empty duplicate-id tracker.
func NewTracker() *Tracker {
	return &Tracker{
		seen: make(map[uint64]string),
	}
}

// Track records scopedID and returns an error if it has already been seen.
//
// Returns errs.ErrDuplicateNodeID when the exact same scoped id was tracked
// before, or errs.ErrHashCollision in the (practically unreachable, but
// distinguished rather than silently misreported) case where two distinct
// scoped ids hash to the same bucket.
func (t *Tracker) Track(scopedID string) error {
	h := hash.ID(scopedID)

	if existing, ok := t.seen[h]; ok {
		if existing == scopedID {
			return errs.ErrDuplicateNodeID
		}

		return errs.ErrHashCollision
	}

	t.seen[h] = scopedID

	return nil
}

// Count returns the number of distinct scoped ids tracked so far.
func (t *Tracker) Count() int {
	return len(t.seen)
}

// Reset clears all tracked ids, allowing the tracker to be reused for a new
// protocol validation pass.
func (t *Tracker) Reset() {
	for k := range t.seen {
		delete(t.seen, k)
	}
}
