package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates no extractor handles a file type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Analysis input errors. Both wrap ErrInvalidInput.

	// ErrNoText indicates the document has no extracted text.
	ErrNoText = fmt.Errorf("%w: document has no text", ErrInvalidInput)

	// ErrTextTooShort indicates the text is below the minimum analysable length.
	ErrTextTooShort = fmt.Errorf("%w: text too short for analysis", ErrInvalidInput)

	// Pipeline errors.

	// ErrExtraction indicates text could not be extracted from the source file.
	ErrExtraction = errors.New("text extraction failed")

	// ErrVectorization indicates the document vector could not be produced.
	// The pipeline continues without a vector.
	ErrVectorization = errors.New("vectorization failed")

	// ErrDetection indicates the analysis itself failed.
	ErrDetection = errors.New("detection failed")

	// ErrDimensionMismatch indicates two vectors of different length were compared.
	// This signals a model or version mismatch upstream.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// Infrastructure availability.

	// ErrCacheUnavailable indicates the cache backend could not be reached.
	// Cache adapters absorb it and behave as a miss.
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrQueueUnavailable indicates a task could not be handed to the broker.
	ErrQueueUnavailable = errors.New("task queue unavailable")

	// ErrQueueClosed indicates the queue has been shut down.
	ErrQueueClosed = errors.New("task queue closed")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Retrieval falls back to text comparison without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// IsInputError reports whether err is caused by unusable input
// (missing or too-short text, bad arguments).
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsPermanent reports whether retrying err cannot succeed.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrNotFound) || IsInputError(err) || errors.Is(err, ErrUnsupportedType)
}
