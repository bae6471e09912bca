package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

// TaskQueue delivers pipeline tasks to workers. Each task is delivered
// to at most one consumer.
type TaskQueue interface {
	// Enqueue hands a task to the broker.
	// Errors wrap domain.ErrQueueUnavailable.
	Enqueue(ctx context.Context, task domain.Task) error

	// Dequeue waits up to timeout for the next task.
	// Returns nil and no error when the wait times out.
	Dequeue(ctx context.Context, timeout time.Duration) (*domain.Task, error)

	// Close releases broker resources.
	Close() error
}

// ConsumerTracker is implemented by queues that live inside one process
// and so must refuse work while nothing in that process consumes it.
// The worker pool attaches for as long as it runs.
type ConsumerTracker interface {
	AttachConsumer() (detach func())
}
