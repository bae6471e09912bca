package driven

import (
	"context"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

// SchedulerStore keeps maintenance task state across restarts so a task
// that ran shortly before shutdown is not repeated immediately.
type SchedulerStore interface {
	// GetTask returns (nil, nil) for an unknown id.
	GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error)
	ListTasks(ctx context.Context) ([]domain.ScheduledTask, error)
	// SaveTask upserts by task id.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error
	// DeleteTask drops the task and its run history.
	DeleteTask(ctx context.Context, taskID string) error

	RecordResult(ctx context.Context, result *domain.TaskResult) error
	// GetTaskHistory returns up to limit runs, newest first.
	GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)
	// PruneHistory trims each task's history to its newest keep runs.
	PruneHistory(ctx context.Context, keep int) error
}
