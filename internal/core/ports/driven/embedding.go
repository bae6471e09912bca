package driven

import "context"

// EmbeddingService turns text into dense vectors through a model server
// (Ollama or an OpenAI-compatible API). It is optional: without one,
// documents carry no vector and retrieval falls back to text scanning.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	ModelName() string
	// Ping checks reachability with the cheapest request the provider offers.
	Ping(ctx context.Context) error
	Close() error
}

// Vectorizer reduces a whole document to a single fixed-length vector.
type Vectorizer interface {
	// Vectorize returns errors wrapping domain.ErrVectorization.
	Vectorize(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}
