// Package memory provides an in-process TaskQueue backed by a buffered channel.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
)

// Ensure Queue implements the interfaces.
var (
	_ driven.TaskQueue       = (*Queue)(nil)
	_ driven.ConsumerTracker = (*Queue)(nil)
)

// DefaultCapacity is the buffer size used when none is given.
const DefaultCapacity = 1024

// Queue delivers each task to exactly one Dequeue caller. Tasks are
// accepted only while a consumer is attached, since nothing outside the
// process can drain the buffer.
type Queue struct {
	mu        sync.RWMutex
	tasks     chan domain.Task
	closed    bool
	consumers int
}

// New creates a queue holding up to capacity pending tasks.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{tasks: make(chan domain.Task, capacity)}
}

// Enqueue adds a task. It fails instead of blocking when the buffer is full.
func (q *Queue) Enqueue(_ context.Context, task domain.Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return fmt.Errorf("%w: %w", domain.ErrQueueUnavailable, domain.ErrQueueClosed)
	}
	if q.consumers == 0 {
		return fmt.Errorf("%w: no consumer attached", domain.ErrQueueUnavailable)
	}
	select {
	case q.tasks <- task:
		return nil
	default:
		return fmt.Errorf("%w: queue full", domain.ErrQueueUnavailable)
	}
}

// AttachConsumer marks the queue as drained by this process until the
// returned func is called.
func (q *Queue) AttachConsumer() func() {
	q.mu.Lock()
	q.consumers++
	q.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			q.mu.Lock()
			q.consumers--
			q.mu.Unlock()
		})
	}
}

// Dequeue waits up to timeout for a task.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*domain.Task, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case task, ok := <-q.tasks:
		if !ok {
			return nil, domain.ErrQueueClosed
		}
		return &task, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int {
	return len(q.tasks)
}

// Close stops accepting tasks. Pending tasks can still be dequeued.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	return nil
}
