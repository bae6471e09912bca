// Package vectorizer turns a whole document text into one fixed-length
// vector: the text is chunked, each chunk embedded, and the chunk vectors
// mean-pooled.
package vectorizer

import (
	"context"
	"fmt"

	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
	"github.com/custodia-labs/plagscan/internal/core/similarity"
	"github.com/custodia-labs/plagscan/internal/logger"
)

// Ensure Vectorizer implements the interface.
var _ driven.Vectorizer = (*Vectorizer)(nil)

// Defaults for chunking.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultMaxChunks    = 64
)

// Vectorizer embeds documents through an EmbeddingService.
type Vectorizer struct {
	embedder  driven.EmbeddingService
	chunkSize int
	overlap   int
	maxChunks int
}

// Option configures the vectorizer.
type Option func(*Vectorizer)

// WithChunkSize sets the chunk size in runes.
func WithChunkSize(size int) Option {
	return func(v *Vectorizer) {
		if size > 0 {
			v.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in runes.
func WithOverlap(overlap int) Option {
	return func(v *Vectorizer) {
		if overlap >= 0 {
			v.overlap = overlap
		}
	}
}

// WithMaxChunks caps how many chunks of a long text are embedded.
func WithMaxChunks(n int) Option {
	return func(v *Vectorizer) {
		if n > 0 {
			v.maxChunks = n
		}
	}
}

// New creates a vectorizer over embedder.
func New(embedder driven.EmbeddingService, opts ...Option) *Vectorizer {
	v := &Vectorizer{
		embedder:  embedder,
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		maxChunks: DefaultMaxChunks,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.overlap >= v.chunkSize {
		v.overlap = v.chunkSize / 4
	}
	return v
}

// Dimensions returns the embedder's vector size.
func (v *Vectorizer) Dimensions() int {
	return v.embedder.Dimensions()
}

// Vectorize embeds text. Every error wraps domain.ErrVectorization.
func (v *Vectorizer) Vectorize(ctx context.Context, text string) ([]float32, error) {
	chunks := Chunk(text, v.chunkSize, v.overlap)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrVectorization, domain.ErrNoText)
	}
	if len(chunks) > v.maxChunks {
		covered := (v.maxChunks-1)*(v.chunkSize-v.overlap) + v.chunkSize
		logger.Debug("vectorizer: text has %d chunks, embedding the first %d (about %d of %d runes)",
			len(chunks), v.maxChunks, covered, len([]rune(text)))
		chunks = chunks[:v.maxChunks]
	}

	vectors, err := v.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrVectorization, err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks",
			domain.ErrVectorization, len(vectors), len(chunks))
	}

	pooled, err := similarity.MeanPool(vectors)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrVectorization, err)
	}

	if want := v.embedder.Dimensions(); want > 0 && len(pooled) != want {
		return nil, fmt.Errorf("%w: %w: got %d, want %d",
			domain.ErrVectorization, domain.ErrDimensionMismatch, len(pooled), want)
	}
	return pooled, nil
}
