package driving

import "context"

// Scheduler manages background maintenance tasks such as resubmitting
// documents stuck in the queue.
type Scheduler interface {
	// Start begins running scheduled tasks.
	// Blocks until context is cancelled or an error occurs.
	Start(ctx context.Context) error

	// Stop gracefully stops all running tasks.
	Stop() error
}

// WorkerPool consumes pipeline tasks from the queue.
type WorkerPool interface {
	// Run starts the workers and blocks until ctx is cancelled.
	Run(ctx context.Context) error
}
