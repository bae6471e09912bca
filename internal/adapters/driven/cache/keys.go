// Package cache holds the key scheme shared by SimilarityCache adapters.
//
// Adapters:
//   - memory: in-process TTL map
//   - redis: Redis-backed, degrading to a no-op when unreachable at start
package cache

// VectorKey returns the key for a document vector.
func VectorKey(id string) string {
	return "vector:" + id
}

// SimilarityKey returns the key for a document pair. The pair is ordered
// so that both argument orders yield the same key.
func SimilarityKey(idA, idB string) string {
	if idB < idA {
		idA, idB = idB, idA
	}
	return "similarity:" + idA + ":" + idB
}
