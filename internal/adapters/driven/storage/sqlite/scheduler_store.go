package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
)

// schedulerStore persists maintenance task state and run history in the
// scheduled_tasks and task_results tables.
type schedulerStore struct {
	store *Store
}

var _ driven.SchedulerStore = (*schedulerStore)(nil)

const (
	taskColumns   = "id, name, interval_seconds, last_run, next_run, last_error, last_success, enabled"
	resultColumns = "task_id, started_at, ended_at, success, error, items_processed"

	upsertTaskSQL = `INSERT INTO scheduled_tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name             = excluded.name,
			interval_seconds = excluded.interval_seconds,
			last_run         = excluded.last_run,
			next_run         = excluded.next_run,
			last_error       = excluded.last_error,
			last_success     = excluded.last_success,
			enabled          = excluded.enabled`

	// pruneSQL ranks each task's results newest first and drops the tail.
	pruneSQL = `DELETE FROM task_results WHERE id IN (
		SELECT id FROM (
			SELECT id, ROW_NUMBER() OVER (
				PARTITION BY task_id ORDER BY started_at DESC, id DESC
			) AS rank
			FROM task_results
		) WHERE rank > ?
	)`
)

// GetTask returns nil, nil for an unknown task.
func (s *schedulerStore) GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM scheduled_tasks WHERE id = ?`, taskID)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return task, err
}

// ListTasks returns every task ordered by ID.
func (s *schedulerStore) ListTasks(ctx context.Context) ([]domain.ScheduledTask, error) {
	rows, err := s.store.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM scheduled_tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing scheduled tasks: %w", err)
	}
	return collectRows(rows, scanTask)
}

// SaveTask inserts or replaces a task.
func (s *schedulerStore) SaveTask(ctx context.Context, task *domain.ScheduledTask) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidInput
	}
	return s.exec(ctx, "saving scheduled task", upsertTaskSQL,
		task.ID, task.Name, int64(task.Interval/time.Second),
		timeToMillis(task.LastRun), timeToMillis(task.NextRun),
		nullString(task.LastError), timeToMillis(task.LastSuccess),
		boolToInt(task.Enabled))
}

// DeleteTask removes a task together with its history.
func (s *schedulerStore) DeleteTask(ctx context.Context, taskID string) error {
	s.store.writeMu.Lock()
	defer s.store.writeMu.Unlock()

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("deleting scheduled task: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, q := range []string{
		`DELETE FROM task_results WHERE task_id = ?`,
		`DELETE FROM scheduled_tasks WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, taskID); err != nil {
			return fmt.Errorf("deleting scheduled task: %w", err)
		}
	}
	return tx.Commit()
}

// RecordResult appends a run to the history.
func (s *schedulerStore) RecordResult(ctx context.Context, result *domain.TaskResult) error {
	if result == nil || result.TaskID == "" {
		return domain.ErrInvalidInput
	}
	return s.exec(ctx, "recording task result",
		`INSERT INTO task_results (`+resultColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		result.TaskID, result.StartedAt.UnixMilli(), result.EndedAt.UnixMilli(),
		boolToInt(result.Success), nullString(result.Error), result.ItemsProcessed)
}

// GetTaskHistory returns up to limit runs of a task, newest first.
func (s *schedulerStore) GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	rows, err := s.store.db.QueryContext(ctx, `SELECT `+resultColumns+` FROM task_results
		WHERE task_id = ? ORDER BY started_at DESC, id DESC LIMIT ?`, taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying task history: %w", err)
	}
	return collectRows(rows, scanResult)
}

// PruneHistory keeps the newest keep runs of each task.
func (s *schedulerStore) PruneHistory(ctx context.Context, keep int) error {
	return s.exec(ctx, "pruning task history", pruneSQL, keep)
}

func (s *schedulerStore) exec(ctx context.Context, what, query string, args ...any) error {
	s.store.writeMu.Lock()
	defer s.store.writeMu.Unlock()
	if _, err := s.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

// collectRows scans every row with scan and closes rows.
func collectRows[T any](rows *sql.Rows, scan func(scanner) (*T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	return out, nil
}

// scanTask returns sql.ErrNoRows unwrapped so GetTask can detect it.
func scanTask(row scanner) (*domain.ScheduledTask, error) {
	var (
		t                             domain.ScheduledTask
		interval                      int64
		lastRun, nextRun, lastSuccess sql.NullInt64
		lastError                     sql.NullString
		enabled                       int
	)
	err := row.Scan(&t.ID, &t.Name, &interval, &lastRun, &nextRun, &lastError, &lastSuccess, &enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning scheduled task: %w", err)
	}

	t.Interval = time.Duration(interval) * time.Second
	t.LastRun = millisToTime(lastRun)
	t.NextRun = millisToTime(nextRun)
	t.LastSuccess = millisToTime(lastSuccess)
	t.LastError = lastError.String
	t.Enabled = enabled == 1
	return &t, nil
}

func scanResult(row scanner) (*domain.TaskResult, error) {
	var (
		r              domain.TaskResult
		started, ended int64
		success        int
		errMsg         sql.NullString
	)
	if err := row.Scan(&r.TaskID, &started, &ended, &success, &errMsg, &r.ItemsProcessed); err != nil {
		return nil, fmt.Errorf("scanning task result: %w", err)
	}
	r.StartedAt = time.UnixMilli(started).UTC()
	r.EndedAt = time.UnixMilli(ended).UTC()
	r.Success = success == 1
	r.Error = errMsg.String
	return &r, nil
}
