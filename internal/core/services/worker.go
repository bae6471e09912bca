package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
	"github.com/custodia-labs/plagscan/internal/core/ports/driving"
	"github.com/custodia-labs/plagscan/internal/logger"
)

// Ensure WorkerPool implements the interface.
var _ driving.WorkerPool = (*WorkerPool)(nil)

// defaultPollTimeout bounds one blocking dequeue.
const defaultPollTimeout = 2 * time.Second

// WorkerPool consumes tasks from the queue and runs the pipeline for each
// under the retry policy.
type WorkerPool struct {
	queue    driven.TaskQueue
	pipeline driving.Pipeline
	retry    RetryPolicy
	workers  int
	maxTasks int
	poll     time.Duration

	processed atomic.Int64
	failed    atomic.Int64
}

// NewWorkerPool creates a worker pool from pipeline settings.
func NewWorkerPool(
	queue driven.TaskQueue,
	pipeline driving.Pipeline,
	settings domain.PipelineSettings,
) *WorkerPool {
	workers := settings.Workers
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{
		queue:    queue,
		pipeline: pipeline,
		retry:    NewRetryPolicy(settings),
		workers:  workers,
		maxTasks: settings.MaxTasksPerWorker,
		poll:     defaultPollTimeout,
	}
}

// Run starts the workers and blocks until ctx is cancelled or the queue
// is closed. Workers that reach their task limit are replaced.
func (p *WorkerPool) Run(ctx context.Context) error {
	if p.queue == nil || p.pipeline == nil {
		return domain.ErrNotImplemented
	}

	if tracker, ok := p.queue.(driven.ConsumerTracker); ok {
		detach := tracker.AttachConsumer()
		defer detach()
	}

	logger.Info("worker pool: starting %d worker(s)", p.workers)

	var (
		wg      sync.WaitGroup
		closeMu sync.Once
		closed  = make(chan struct{})
	)
	markClosed := func() { closeMu.Do(func() { close(closed) }) }

	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				err := p.work(ctx, i)
				if errors.Is(err, domain.ErrQueueClosed) {
					markClosed()
					return
				}
				if ctx.Err() != nil {
					return
				}
				logger.Debug("worker %d: recycled", i)
			}
		}()
	}

	select {
	case <-ctx.Done():
	case <-closed:
	}
	wg.Wait()

	logger.Info("worker pool: stopped after %d task(s), %d failed", p.processed.Load(), p.failed.Load())
	if ctx.Err() != nil {
		return nil
	}
	return domain.ErrQueueClosed
}

// work handles tasks until the per-worker limit, ctx cancellation or a
// closed queue.
func (p *WorkerPool) work(ctx context.Context, id int) error {
	for handled := 0; p.maxTasks <= 0 || handled < p.maxTasks; {
		if err := ctx.Err(); err != nil {
			return err
		}

		task, err := p.queue.Dequeue(ctx, p.poll)
		if err != nil {
			if errors.Is(err, domain.ErrQueueClosed) || ctx.Err() != nil {
				return err
			}
			logger.Warn("worker %d: dequeue failed: %v", id, err)
			if serr := sleepContext(ctx, p.poll); serr != nil {
				return serr
			}
			continue
		}
		if task == nil {
			continue
		}

		handled++
		p.handle(ctx, id, task)
	}
	return nil
}

// handle runs one task. Cancelling ctx stops retries but not an attempt
// already in flight.
func (p *WorkerPool) handle(ctx context.Context, id int, task *domain.Task) {
	logger.Debug("worker %d: task %s for document %s", id, task.ID, task.DocumentID)
	err := p.retry.Do(ctx, "process "+task.DocumentID, func(ctx context.Context) error {
		return p.pipeline.Process(context.WithoutCancel(ctx), task.DocumentID)
	})
	p.processed.Add(1)
	if err != nil {
		p.failed.Add(1)
		logger.Error("worker %d: %v", id, err)
	}
}

// Processed returns the number of tasks handled so far.
func (p *WorkerPool) Processed() int64 {
	return p.processed.Load()
}

// Failed returns the number of tasks that ended in failure.
func (p *WorkerPool) Failed() int64 {
	return p.failed.Load()
}
