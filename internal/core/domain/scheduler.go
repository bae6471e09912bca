package domain

import "time"

// Built-in maintenance task IDs.
const (
	TaskIDRequeueStale       = "requeue-stale"
	TaskIDRecoverInterrupted = "recover-interrupted"
)

// MaintenanceTask describes a built-in task. ConfigKey names its table
// under [scheduler] in the config file.
type MaintenanceTask struct {
	ID        string
	Name      string
	ConfigKey string
	Interval  time.Duration
}

// MaintenanceTasks returns the built-in tasks in the order they run.
func MaintenanceTasks() []MaintenanceTask {
	return []MaintenanceTask{
		{
			// Queued documents whose broker task was lost.
			ID:        TaskIDRequeueStale,
			Name:      "Requeue Stale Documents",
			ConfigKey: "requeue_stale",
			Interval:  10 * time.Minute,
		},
		{
			// Documents left in processing by a worker that died mid-run.
			ID:        TaskIDRecoverInterrupted,
			Name:      "Recover Interrupted Documents",
			ConfigKey: "recover_interrupted",
			Interval:  30 * time.Minute,
		},
	}
}

// ScheduledTask is the persisted state of a recurring task.
type ScheduledTask struct {
	ID          string
	Name        string
	Interval    time.Duration
	Enabled     bool
	LastRun     time.Time
	NextRun     time.Time
	LastSuccess time.Time
	LastError   string
}

// Due reports whether an enabled task should run at now.
// A task that never ran is always due.
func (t *ScheduledTask) Due(now time.Time) bool {
	return t.Enabled && !t.NextRun.After(now)
}

// Reconfigure applies cfg. Changing the interval restarts the countdown.
func (t *ScheduledTask) Reconfigure(cfg TaskConfig, now time.Time) {
	if t.Interval != cfg.Interval {
		t.Interval = cfg.Interval
		t.NextRun = now.Add(cfg.Interval)
	}
	t.Enabled = cfg.Enabled
}

// Record folds a finished run into the task and schedules the next one
// an interval after it ended.
func (t *ScheduledTask) Record(r *TaskResult) {
	t.LastRun = r.StartedAt
	t.NextRun = r.EndedAt.Add(t.Interval)
	if r.Success {
		t.LastSuccess = r.EndedAt
		t.LastError = ""
		return
	}
	t.LastError = r.Error
}

// TaskResult is one run of a task. ItemsProcessed counts the documents
// the run resubmitted.
type TaskResult struct {
	TaskID         string
	StartedAt      time.Time
	EndedAt        time.Time
	Success        bool
	Error          string
	ItemsProcessed int
}

// Duration returns how long the run took.
func (r *TaskResult) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// SchedulerConfig switches the scheduler and its tasks on and off.
type SchedulerConfig struct {
	Enabled     bool
	TaskConfigs map[string]TaskConfig
}

// TaskConfig configures one task.
type TaskConfig struct {
	Enabled  bool
	Interval time.Duration
}

// GetTaskConfig returns the configuration for taskID, or the zero value
// (disabled) when it has none.
func (c *SchedulerConfig) GetTaskConfig(taskID string) TaskConfig {
	return c.TaskConfigs[taskID]
}

// DefaultSchedulerConfig enables every built-in task at its default interval.
func DefaultSchedulerConfig() SchedulerConfig {
	cfg := SchedulerConfig{Enabled: true, TaskConfigs: make(map[string]TaskConfig)}
	for _, t := range MaintenanceTasks() {
		cfg.TaskConfigs[t.ID] = TaskConfig{Enabled: true, Interval: t.Interval}
	}
	return cfg
}
