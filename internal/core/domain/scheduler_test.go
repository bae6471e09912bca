package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSchedulerConfig(t *testing.T) {
	config := DefaultSchedulerConfig()

	assert.True(t, config.Enabled)
	assert.Len(t, config.TaskConfigs, len(MaintenanceTasks()))
	assert.Equal(t, TaskConfig{Enabled: true, Interval: 10 * time.Minute}, config.TaskConfigs[TaskIDRequeueStale])
	assert.Equal(t, TaskConfig{Enabled: true, Interval: 30 * time.Minute}, config.TaskConfigs[TaskIDRecoverInterrupted])
}

func TestMaintenanceTasks_UniqueKeys(t *testing.T) {
	ids := map[string]bool{}
	keys := map[string]bool{}
	for _, task := range MaintenanceTasks() {
		assert.False(t, ids[task.ID], "duplicate id %s", task.ID)
		assert.False(t, keys[task.ConfigKey], "duplicate key %s", task.ConfigKey)
		assert.Positive(t, task.Interval)
		ids[task.ID] = true
		keys[task.ConfigKey] = true
	}
}

func TestSchedulerConfig_GetTaskConfig(t *testing.T) {
	config := DefaultSchedulerConfig()
	assert.True(t, config.GetTaskConfig(TaskIDRequeueStale).Enabled)
	assert.Equal(t, TaskConfig{}, config.GetTaskConfig("unknown-task"))

	var empty SchedulerConfig
	assert.Equal(t, TaskConfig{}, empty.GetTaskConfig(TaskIDRequeueStale))
}

func TestScheduledTask_Due(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		task ScheduledTask
		want bool
	}{
		{"never ran", ScheduledTask{Enabled: true}, true},
		{"next run passed", ScheduledTask{Enabled: true, NextRun: now.Add(-time.Second)}, true},
		{"next run is now", ScheduledTask{Enabled: true, NextRun: now}, true},
		{"next run ahead", ScheduledTask{Enabled: true, NextRun: now.Add(time.Second)}, false},
		{"disabled", ScheduledTask{NextRun: now.Add(-time.Hour)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.Due(now))
		})
	}
}

func TestScheduledTask_Reconfigure(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	next := now.Add(5 * time.Minute)
	task := ScheduledTask{Interval: time.Hour, NextRun: next, Enabled: true}

	task.Reconfigure(TaskConfig{Enabled: false, Interval: time.Hour}, now)
	assert.False(t, task.Enabled)
	assert.Equal(t, next, task.NextRun)

	task.Reconfigure(TaskConfig{Enabled: true, Interval: 2 * time.Hour}, now)
	assert.True(t, task.Enabled)
	assert.Equal(t, 2*time.Hour, task.Interval)
	assert.Equal(t, now.Add(2*time.Hour), task.NextRun)
}

func TestScheduledTask_Record(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Second)
	task := ScheduledTask{Interval: time.Minute}

	failed := &TaskResult{StartedAt: start, EndedAt: end, Error: "store closed"}
	task.Record(failed)
	assert.Equal(t, start, task.LastRun)
	assert.Equal(t, end.Add(time.Minute), task.NextRun)
	assert.Equal(t, "store closed", task.LastError)
	assert.True(t, task.LastSuccess.IsZero())
	assert.Equal(t, 3*time.Second, failed.Duration())

	task.Record(&TaskResult{StartedAt: end, EndedAt: end, Success: true})
	assert.Empty(t, task.LastError)
	assert.Equal(t, end, task.LastSuccess)
}
