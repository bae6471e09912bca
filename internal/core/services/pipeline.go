package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
	"github.com/custodia-labs/plagscan/internal/core/ports/driving"
	"github.com/custodia-labs/plagscan/internal/logger"
)

// Ensure PipelineService implements the interface.
var _ driving.Pipeline = (*PipelineService)(nil)

// defaultHeartbeat is how often a running pipeline refreshes UpdatedAt.
// It must stay well below pipeline.stale_after.
const defaultHeartbeat = time.Minute

// errNotProcessing stops a heartbeat write once the run has finished.
var errNotProcessing = errors.New("document no longer processing")

// PipelineService moves one document through
// queued -> processing -> completed | failed.
type PipelineService struct {
	docStore      driven.DocumentStore
	textStore     driven.TextStore
	extractor     driven.ExtractorRegistry
	vectorizer    driven.Vectorizer
	cache         driven.SimilarityCache
	detector      driving.Detector
	cacheSettings domain.CacheSettings
	locks         *keyedMutex
	now           func() time.Time
	heartbeat     time.Duration
}

// NewPipelineService creates a pipeline.
// The vectorizer and cache are optional (can be nil).
func NewPipelineService(
	docStore driven.DocumentStore,
	textStore driven.TextStore,
	extractor driven.ExtractorRegistry,
	vectorizer driven.Vectorizer,
	cache driven.SimilarityCache,
	detector driving.Detector,
	cacheSettings domain.CacheSettings,
) *PipelineService {
	return &PipelineService{
		docStore:      docStore,
		textStore:     textStore,
		extractor:     extractor,
		vectorizer:    vectorizer,
		cache:         cache,
		detector:      detector,
		cacheSettings: cacheSettings,
		locks:         newKeyedMutex(),
		now:           time.Now,
		heartbeat:     defaultHeartbeat,
	}
}

// Process runs the pipeline once for documentID. A document that already
// has an originality score is left untouched.
func (p *PipelineService) Process(ctx context.Context, documentID string) error {
	unlock := p.locks.Lock(documentID)
	defer unlock()

	doc, err := p.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.HasScore() {
		logger.Debug("pipeline: %s already scored, skipping", documentID)
		return p.restoreCompleted(ctx, doc)
	}

	logger.Info("pipeline: processing %s (%s)", doc.ID, doc.Name)
	started := p.now()
	if _, err := p.docStore.UpdateDocument(ctx, documentID, func(d *domain.Document) error {
		d.Status = domain.StatusProcessing
		d.StartedAt = &started
		return nil
	}); err != nil {
		return err
	}
	stop := p.keepAlive(ctx, documentID)
	defer stop()

	text, err := p.extractor.Extract(ctx, doc.FilePath)
	if err != nil {
		return p.fail(ctx, documentID, err)
	}
	handle, err := p.textStore.Put(ctx, documentID, text)
	if err != nil {
		return p.fail(ctx, documentID, fmt.Errorf("%w: storing text: %w", domain.ErrExtraction, err))
	}

	vec := p.vectorize(ctx, documentID, text)

	if _, err := p.docStore.UpdateDocument(ctx, documentID, func(d *domain.Document) error {
		d.TextPath = handle
		d.Embedding = vec
		return nil
	}); err != nil {
		return p.fail(ctx, documentID, err)
	}

	verdict, err := p.detector.DetectPlagiarism(ctx, documentID)
	if err != nil {
		return p.fail(ctx, documentID, err)
	}

	completed := p.now()
	if _, err := p.docStore.UpdateDocument(ctx, documentID, func(d *domain.Document) error {
		if d.HasScore() {
			return nil
		}
		originality := verdict.Originality
		d.Originality = &originality
		d.Verdict = verdict
		d.Status = domain.StatusCompleted
		d.CompletedAt = &completed
		d.LastError = ""
		return nil
	}); err != nil {
		return p.fail(ctx, documentID, err)
	}

	logger.Info("pipeline: %s completed, originality %.2f%%", documentID, verdict.Originality)
	return nil
}

// keepAlive refreshes the document's UpdatedAt every p.heartbeat while it
// is processing, so the recover-interrupted sweep only picks up runs whose
// worker has gone away. The returned func stops it and waits.
func (p *PipelineService) keepAlive(ctx context.Context, documentID string) func() {
	if p.heartbeat <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(p.heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				_, err := p.docStore.UpdateDocument(ctx, documentID, func(d *domain.Document) error {
					if d.Status != domain.StatusProcessing {
						return errNotProcessing
					}
					return nil
				})
				if err != nil && !errors.Is(err, errNotProcessing) {
					logger.Debug("pipeline: heartbeat for %s: %v", documentID, err)
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}

// vectorize produces the document vector. Failures are logged and yield nil.
func (p *PipelineService) vectorize(ctx context.Context, documentID, text string) []float32 {
	if p.cache != nil {
		p.cache.InvalidateVector(ctx, documentID)
	}
	if p.vectorizer == nil {
		return nil
	}

	vec, err := p.vectorizer.Vectorize(ctx, text)
	if err != nil {
		logger.Warn("pipeline: vectorization failed for %s, continuing without vector: %v", documentID, err)
		return nil
	}
	if p.cache != nil {
		p.cache.PutVector(ctx, documentID, vec, p.cacheSettings.VectorTTL)
	}
	return vec
}

// fail records cause on the document and returns it.
// An existing score is never touched.
func (p *PipelineService) fail(ctx context.Context, documentID string, cause error) error {
	logger.Warn("pipeline: %s failed: %v", documentID, cause)
	finished := p.now()
	if _, err := p.docStore.UpdateDocument(ctx, documentID, func(d *domain.Document) error {
		d.Status = domain.StatusFailed
		d.LastError = cause.Error()
		d.CompletedAt = &finished
		return nil
	}); err != nil {
		logger.Error("pipeline: recording failure for %s: %v", documentID, err)
	}
	return cause
}

// restoreCompleted puts a scored document back into completed after a
// reprocess request reset its status.
func (p *PipelineService) restoreCompleted(ctx context.Context, doc *domain.Document) error {
	if doc.Status == domain.StatusCompleted {
		return nil
	}
	_, err := p.docStore.UpdateDocument(ctx, doc.ID, func(d *domain.Document) error {
		d.Status = domain.StatusCompleted
		d.LastError = ""
		return nil
	})
	return err
}
