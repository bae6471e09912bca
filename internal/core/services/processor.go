package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
	"github.com/custodia-labs/plagscan/internal/core/ports/driving"
	"github.com/custodia-labs/plagscan/internal/logger"
)

// Ensure ProcessingService implements the interface.
var _ driving.ProcessingService = (*ProcessingService)(nil)

// ProcessingService submits documents to the task queue. When the queue
// is missing or rejects the task, the pipeline runs inline instead.
type ProcessingService struct {
	docStore driven.DocumentStore
	queue    driven.TaskQueue
	pipeline driving.Pipeline
	now      func() time.Time
}

// NewProcessingService creates a processing service.
// The queue is optional (can be nil).
func NewProcessingService(
	docStore driven.DocumentStore,
	queue driven.TaskQueue,
	pipeline driving.Pipeline,
) *ProcessingService {
	return &ProcessingService{
		docStore: docStore,
		queue:    queue,
		pipeline: pipeline,
		now:      time.Now,
	}
}

// Submit enqueues the pipeline for documentID.
func (s *ProcessingService) Submit(ctx context.Context, documentID string) (*domain.SubmitResult, error) {
	if documentID == "" {
		return nil, fmt.Errorf("%w: document id required", domain.ErrInvalidInput)
	}
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}

	if s.queue != nil {
		task := domain.Task{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			EnqueuedAt: s.now(),
		}
		err := s.queue.Enqueue(ctx, task)
		if err == nil {
			logger.Debug("submit: %s enqueued as task %s", documentID, task.ID)
			return &domain.SubmitResult{
				DocumentID: documentID,
				Mode:       domain.SubmitAsync,
				TaskID:     task.ID,
				Status:     domain.StatusQueued,
			}, nil
		}
		logger.Warn("submit: queue unavailable for %s, processing synchronously: %v", documentID, err)
	}

	return s.runInline(ctx, documentID)
}

// runInline runs the pipeline in the caller's goroutine. Pipeline errors
// are reported on the result, not returned.
func (s *ProcessingService) runInline(ctx context.Context, documentID string) (*domain.SubmitResult, error) {
	result := &domain.SubmitResult{DocumentID: documentID, Mode: domain.SubmitSync}

	if perr := s.pipeline.Process(ctx, documentID); perr != nil {
		result.Err = perr.Error()
	}

	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	result.Status = doc.Status
	return result, nil
}

// SubmitBatch submits each id in order. A failure for one id is recorded
// on its result and does not stop the batch.
func (s *ProcessingService) SubmitBatch(ctx context.Context, documentIDs []string) ([]domain.SubmitResult, error) {
	results := make([]domain.SubmitResult, 0, len(documentIDs))
	for _, id := range documentIDs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := s.Submit(ctx, id)
		if err != nil {
			results = append(results, domain.SubmitResult{DocumentID: id, Err: err.Error()})
			continue
		}
		results = append(results, *res)
	}
	return results, nil
}

// Reprocess clears the last error, resets the status to queued and
// submits again. A scored document keeps its score.
func (s *ProcessingService) Reprocess(ctx context.Context, documentID string) (*domain.SubmitResult, error) {
	_, err := s.docStore.UpdateDocument(ctx, documentID, func(d *domain.Document) error {
		d.Status = domain.StatusQueued
		d.LastError = ""
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("resetting %s: %w", documentID, err)
	}
	return s.Submit(ctx, documentID)
}
