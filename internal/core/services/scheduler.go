package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
	"github.com/custodia-labs/plagscan/internal/core/ports/driving"
	"github.com/custodia-labs/plagscan/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// historyKeep is the number of results retained per task.
const historyKeep = 100

// taskRunner performs one run of a maintenance task and returns how many
// documents it resubmitted.
type taskRunner func(ctx context.Context) (int, error)

// Scheduler runs the built-in maintenance tasks on their intervals.
// Task state survives restarts through the SchedulerStore.
type Scheduler struct {
	config     domain.SchedulerConfig
	store      driven.SchedulerStore
	docStore   driven.DocumentStore
	processing driving.ProcessingService
	staleAfter time.Duration
	tick       time.Duration
	now        func() time.Time
	runners    map[string]taskRunner

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler. Documents untouched for staleAfter
// are considered abandoned by the maintenance tasks.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	docStore driven.DocumentStore,
	processing driving.ProcessingService,
	staleAfter time.Duration,
) *Scheduler {
	s := &Scheduler{
		config:     config,
		store:      store,
		docStore:   docStore,
		processing: processing,
		staleAfter: staleAfter,
		tick:       time.Minute,
		now:        time.Now,
	}
	s.runners = map[string]taskRunner{
		domain.TaskIDRequeueStale:       s.requeueStale,
		domain.TaskIDRecoverInterrupted: s.recoverInterrupted,
	}
	return s
}

// Start registers the tasks and runs due ones every tick until ctx is
// cancelled or Stop is called. A second Start returns immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stop := s.stopCh
	s.mu.Unlock()

	if !s.config.Enabled {
		logger.Debug("scheduler: disabled")
	} else if err := s.registerTasks(ctx); err != nil {
		logger.Warn("scheduler: registering tasks: %v", err)
	}

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		if s.config.Enabled {
			s.runDue(ctx)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		case <-ticker.C:
		}
	}
}

// Stop ends the loop and waits for in-flight runs.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// registerTasks creates or reconfigures the stored state of every
// built-in task.
func (s *Scheduler) registerTasks(ctx context.Context) error {
	now := s.now()
	for _, mt := range domain.MaintenanceTasks() {
		cfg := s.config.GetTaskConfig(mt.ID)

		task, err := s.store.GetTask(ctx, mt.ID)
		if err != nil {
			return err
		}
		if task == nil {
			task = &domain.ScheduledTask{
				ID:       mt.ID,
				Name:     mt.Name,
				Interval: cfg.Interval,
				Enabled:  cfg.Enabled,
				NextRun:  now.Add(cfg.Interval),
			}
		} else {
			task.Reconfigure(cfg, now)
		}

		if err := s.store.SaveTask(ctx, task); err != nil {
			return err
		}
	}
	return nil
}

// runDue starts every stored task that is due.
func (s *Scheduler) runDue(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("scheduler: listing tasks: %v", err)
		return
	}

	now := s.now()
	for i := range tasks {
		if tasks[i].Due(now) {
			s.runTask(ctx, &tasks[i])
		}
	}
}

// runTask executes task in the background and persists the outcome.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	run, ok := s.runners[task.ID]
	if !ok {
		logger.Warn("scheduler: unknown task %s", task.ID)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		result := &domain.TaskResult{TaskID: task.ID, StartedAt: s.now()}
		n, err := run(ctx)
		result.EndedAt = s.now()
		result.ItemsProcessed = n
		result.Success = err == nil
		if err != nil {
			result.Error = err.Error()
			logger.Warn("scheduler: %s failed: %v", task.ID, err)
		}
		task.Record(result)

		if err := s.store.SaveTask(ctx, task); err != nil {
			logger.Warn("scheduler: saving %s: %v", task.ID, err)
		}
		if err := s.store.RecordResult(ctx, result); err != nil {
			logger.Warn("scheduler: recording %s: %v", task.ID, err)
		}
		if err := s.store.PruneHistory(ctx, historyKeep); err != nil {
			logger.Warn("scheduler: pruning history: %v", err)
		}
	}()
}

// requeueStale resubmits documents that have sat in queued longer than
// staleAfter, typically because the broker lost their task.
func (s *Scheduler) requeueStale(ctx context.Context) (int, error) {
	return s.resubmitAbandoned(ctx, domain.StatusQueued, func(ctx context.Context, id string) error {
		// Touching the document keeps the next sweep from resubmitting it.
		if _, err := s.docStore.UpdateDocument(ctx, id, func(*domain.Document) error { return nil }); err != nil {
			return err
		}
		_, err := s.processing.Submit(ctx, id)
		return err
	})
}

// recoverInterrupted resets documents left in processing longer than
// staleAfter, which happens when a worker dies mid-pipeline, and submits
// them again.
func (s *Scheduler) recoverInterrupted(ctx context.Context) (int, error) {
	return s.resubmitAbandoned(ctx, domain.StatusProcessing, func(ctx context.Context, id string) error {
		_, err := s.processing.Reprocess(ctx, id)
		return err
	})
}

// resubmitAbandoned applies resubmit to every document in status that has
// not been updated for staleAfter. Per-document failures are logged and
// skipped.
func (s *Scheduler) resubmitAbandoned(
	ctx context.Context,
	status domain.ProcessingStatus,
	resubmit func(ctx context.Context, id string) error,
) (int, error) {
	if s.docStore == nil || s.processing == nil {
		return 0, nil
	}

	docs, err := s.docStore.ListDocuments(ctx, domain.DocumentFilter{
		Status:        status,
		UpdatedBefore: s.now().Add(-s.staleAfter),
	})
	if err != nil {
		return 0, err
	}

	n := 0
	for i := range docs {
		if err := resubmit(ctx, docs[i].ID); err != nil {
			logger.Warn("scheduler: resubmitting %s document %s: %v", status, docs[i].ID, err)
			continue
		}
		n++
	}
	if n > 0 {
		logger.Info("scheduler: resubmitted %d %s document(s)", n, status)
	}
	return n, nil
}
