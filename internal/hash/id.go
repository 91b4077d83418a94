// Package hash provides the fast, non-cryptographic hashing primitive used to
// detect duplicate scoped node ids (internal/collision) and to back the
// "xxhash" algorithm literal of the expr package's hashOf function.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string.
//
// Used by internal/collision to detect duplicate scoped node ids
// ("protocolId:nodeId") in O(1) before falling back to an exact string
// compare, and by the expr package's hashOf(id, "xxhash") function.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}
