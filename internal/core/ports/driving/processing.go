package driving

import (
	"context"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

// ProcessingService drives documents through the processing pipeline.
type ProcessingService interface {
	// Submit enqueues the pipeline for a document, or runs it inline when
	// the queue cannot accept the task.
	Submit(ctx context.Context, documentID string) (*domain.SubmitResult, error)

	// SubmitBatch submits each document in turn.
	SubmitBatch(ctx context.Context, documentIDs []string) ([]domain.SubmitResult, error)

	// Reprocess resets status to queued and clears the last error, then submits.
	Reprocess(ctx context.Context, documentID string) (*domain.SubmitResult, error)
}

// Pipeline runs the processing state machine for one document.
type Pipeline interface {
	// Process runs the pipeline once. It is a no-op for scored documents.
	Process(ctx context.Context, documentID string) error
}

// ReportService aggregates detection results.
type ReportService interface {
	// Report analyses every document and summarises the outcomes.
	Report(ctx context.Context) (*domain.CorpusReport, error)
}
