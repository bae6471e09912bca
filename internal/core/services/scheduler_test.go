package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
	"github.com/custodia-labs/plagscan/internal/core/ports/driving"
)

var (
	_ driven.SchedulerStore     = (*fakeSchedulerStore)(nil)
	_ driving.ProcessingService = (*recordingProcessing)(nil)
)

// fakeSchedulerStore keeps task state in maps.
type fakeSchedulerStore struct {
	mu      sync.Mutex
	tasks   map[string]domain.ScheduledTask
	history []domain.TaskResult
	listErr error
}

func newFakeSchedulerStore() *fakeSchedulerStore {
	return &fakeSchedulerStore{tasks: make(map[string]domain.ScheduledTask)}
}

func (m *fakeSchedulerStore) GetTask(_ context.Context, id string) (*domain.ScheduledTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *fakeSchedulerStore) ListTasks(context.Context) ([]domain.ScheduledTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.ScheduledTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *fakeSchedulerStore) SaveTask(_ context.Context, t *domain.ScheduledTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t.ID] = *t
	return nil
}

func (m *fakeSchedulerStore) DeleteTask(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, id)
	return nil
}

func (m *fakeSchedulerStore) RecordResult(_ context.Context, r *domain.TaskResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, *r)
	return nil
}

func (m *fakeSchedulerStore) GetTaskHistory(_ context.Context, id string, limit int) ([]domain.TaskResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.TaskResult
	for _, r := range m.history {
		if r.TaskID == id {
			out = append(out, r)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (m *fakeSchedulerStore) PruneHistory(context.Context, int) error {
	return nil
}

// recordingProcessing records which documents were submitted and how.
type recordingProcessing struct {
	mu          sync.Mutex
	submitted   []string
	reprocessed []string
	err         error
}

func (m *recordingProcessing) Submit(_ context.Context, id string) (*domain.SubmitResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.submitted = append(m.submitted, id)
	return &domain.SubmitResult{DocumentID: id, Mode: domain.SubmitAsync}, nil
}

func (m *recordingProcessing) SubmitBatch(ctx context.Context, ids []string) ([]domain.SubmitResult, error) {
	out := make([]domain.SubmitResult, 0, len(ids))
	for _, id := range ids {
		if r, err := m.Submit(ctx, id); err == nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *recordingProcessing) Reprocess(_ context.Context, id string) (*domain.SubmitResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.reprocessed = append(m.reprocessed, id)
	return &domain.SubmitResult{DocumentID: id, Mode: domain.SubmitAsync}, nil
}

func (m *recordingProcessing) calls() (submitted, reprocessed []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.submitted...), append([]string(nil), m.reprocessed...)
}

// abandonedFixture stores documents an hour old in every status, plus a
// fresh queued and a fresh processing document.
func abandonedFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	old := time.Now().Add(-time.Hour)
	for _, doc := range []*domain.Document{
		{ID: "old-queued", Status: domain.StatusQueued, CreatedAt: old, UpdatedAt: old},
		{ID: "old-processing", Status: domain.StatusProcessing, CreatedAt: old, UpdatedAt: old},
		{ID: "old-completed", Status: domain.StatusCompleted, CreatedAt: old, UpdatedAt: old},
		{ID: "old-failed", Status: domain.StatusFailed, CreatedAt: old, UpdatedAt: old},
		{ID: "new-queued", Status: domain.StatusQueued},
		{ID: "new-processing", Status: domain.StatusProcessing},
	} {
		require.NoError(t, f.docs.SaveDocument(context.Background(), doc))
	}
	return f
}

func newTestScheduler(store driven.SchedulerStore, docs driven.DocumentStore, p driving.ProcessingService) *Scheduler {
	return NewScheduler(domain.DefaultSchedulerConfig(), store, docs, p, 15*time.Minute)
}

func TestScheduler_StartStop(t *testing.T) {
	s := newTestScheduler(newFakeSchedulerStore(), nil, nil)

	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()

	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.running
	}, time.Second, 5*time.Millisecond)

	assert.NoError(t, s.Start(context.Background()), "second start is a no-op")
	require.NoError(t, s.Stop())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestScheduler_StartReturnsOnCancel(t *testing.T) {
	s := newTestScheduler(newFakeSchedulerStore(), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Start(ctx), context.Canceled)
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	assert.NoError(t, newTestScheduler(newFakeSchedulerStore(), nil, nil).Stop())
}

func TestScheduler_RegisterTasks(t *testing.T) {
	store := newFakeSchedulerStore()
	s := newTestScheduler(store, nil, nil)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.registerTasks(ctx))

	tasks, err := store.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Recover Interrupted Documents", tasks[0].Name)
	assert.Equal(t, now.Add(30*time.Minute), tasks[0].NextRun)
	assert.Equal(t, "Requeue Stale Documents", tasks[1].Name)
	assert.Equal(t, now.Add(10*time.Minute), tasks[1].NextRun)

	s.config.TaskConfigs[domain.TaskIDRequeueStale] = domain.TaskConfig{Enabled: false, Interval: time.Hour}
	require.NoError(t, s.registerTasks(ctx))

	task, err := store.GetTask(ctx, domain.TaskIDRequeueStale)
	require.NoError(t, err)
	assert.False(t, task.Enabled)
	assert.Equal(t, time.Hour, task.Interval)
	assert.Equal(t, now.Add(time.Hour), task.NextRun)
}

func TestScheduler_RequeueStale(t *testing.T) {
	f := abandonedFixture(t)
	p := &recordingProcessing{}
	s := newTestScheduler(newFakeSchedulerStore(), f.docs, p)
	ctx := context.Background()

	n, err := s.requeueStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	submitted, reprocessed := p.calls()
	assert.Equal(t, []string{"old-queued"}, submitted)
	assert.Empty(t, reprocessed)

	// The touched document is no longer stale.
	n, err = s.requeueStale(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestScheduler_RecoverInterrupted(t *testing.T) {
	f := abandonedFixture(t)
	p := &recordingProcessing{}
	s := newTestScheduler(newFakeSchedulerStore(), f.docs, p)

	n, err := s.recoverInterrupted(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	submitted, reprocessed := p.calls()
	assert.Empty(t, submitted)
	assert.Equal(t, []string{"old-processing"}, reprocessed)
}

func TestScheduler_ResubmitFailuresAreSkipped(t *testing.T) {
	f := abandonedFixture(t)
	s := newTestScheduler(newFakeSchedulerStore(), f.docs, &recordingProcessing{err: domain.ErrQueueUnavailable})

	n, err := s.requeueStale(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.recoverInterrupted(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestScheduler_NilDependencies(t *testing.T) {
	s := newTestScheduler(newFakeSchedulerStore(), nil, nil)

	n, err := s.requeueStale(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestScheduler_RunDue(t *testing.T) {
	f := abandonedFixture(t)
	store := newFakeSchedulerStore()
	p := &recordingProcessing{}
	s := newTestScheduler(store, f.docs, p)
	ctx := context.Background()

	past := time.Now().Add(-time.Minute)
	require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{
		ID: domain.TaskIDRequeueStale, Interval: time.Hour, NextRun: past, Enabled: true,
	}))
	require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{
		ID: domain.TaskIDRecoverInterrupted, Interval: time.Hour, NextRun: past, Enabled: false,
	}))

	s.runDue(ctx)
	s.wg.Wait()

	submitted, reprocessed := p.calls()
	assert.Equal(t, []string{"old-queued"}, submitted)
	assert.Empty(t, reprocessed, "disabled task must not run")

	history, err := store.GetTaskHistory(ctx, domain.TaskIDRequeueStale, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].Success)
	assert.Equal(t, 1, history[0].ItemsProcessed)

	task, err := store.GetTask(ctx, domain.TaskIDRequeueStale)
	require.NoError(t, err)
	assert.True(t, task.NextRun.After(time.Now()))
	assert.False(t, task.LastSuccess.IsZero())
}

func TestScheduler_RunTask_RecordsFailure(t *testing.T) {
	store := newFakeSchedulerStore()
	s := newTestScheduler(store, nil, nil)
	s.runners[domain.TaskIDRequeueStale] = func(context.Context) (int, error) {
		return 0, errors.New("store closed")
	}
	ctx := context.Background()

	s.runTask(ctx, &domain.ScheduledTask{ID: domain.TaskIDRequeueStale, Interval: time.Minute, Enabled: true})
	s.wg.Wait()

	task, err := store.GetTask(ctx, domain.TaskIDRequeueStale)
	require.NoError(t, err)
	assert.Equal(t, "store closed", task.LastError)

	history, err := store.GetTaskHistory(ctx, domain.TaskIDRequeueStale, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].Success)
}

func TestScheduler_RunTask_UnknownTask(t *testing.T) {
	store := newFakeSchedulerStore()
	s := newTestScheduler(store, nil, nil)

	s.runTask(context.Background(), &domain.ScheduledTask{ID: "unknown-task", Enabled: true})
	s.wg.Wait()

	history, err := store.GetTaskHistory(context.Background(), "unknown-task", 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestScheduler_RunDue_ListError(t *testing.T) {
	store := newFakeSchedulerStore()
	store.listErr = errors.New("locked")
	s := newTestScheduler(store, nil, nil)

	s.runDue(context.Background())
	s.wg.Wait()

	assert.Empty(t, store.history)
}
