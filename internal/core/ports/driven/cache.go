package driven

import (
	"context"
	"time"
)

// SimilarityCache memoises document vectors and pairwise similarity scores.
//
// Every operation is best-effort. Implementations never return errors:
// when the backing store is unreachable a get is a miss and a put or
// invalidate is a no-op. Pair keys are symmetric, so (a,b) and (b,a)
// address the same entry.
type SimilarityCache interface {
	// GetVector returns the cached vector for a document.
	GetVector(ctx context.Context, id string) ([]float32, bool)

	// PutVector caches a document vector for ttl.
	PutVector(ctx context.Context, id string, vec []float32, ttl time.Duration)

	// InvalidateVector drops a cached vector.
	InvalidateVector(ctx context.Context, id string)

	// GetSimilarity returns the cached score for a document pair.
	GetSimilarity(ctx context.Context, idA, idB string) (float64, bool)

	// PutSimilarity caches a pair score for ttl.
	PutSimilarity(ctx context.Context, idA, idB string, score float64, ttl time.Duration)

	// Available reports whether the backing store is in use.
	Available() bool
}
