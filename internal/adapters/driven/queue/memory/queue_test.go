package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

// attached returns a queue with one consumer attached for the test.
func attached(t *testing.T, capacity int) *Queue {
	t.Helper()
	q := New(capacity)
	t.Cleanup(q.AttachConsumer())
	return q
}

func TestQueue_EnqueueDequeue(t *testing.T) {
	q := attached(t, 4)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, domain.Task{ID: "t1", DocumentID: "doc-1"}))
	require.NoError(t, q.Enqueue(ctx, domain.Task{ID: "t2", DocumentID: "doc-2"}))
	assert.Equal(t, 2, q.Len())

	task, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "t1", task.ID)
}

func TestQueue_DequeueTimeout(t *testing.T) {
	q := New(1)
	task, err := q.Dequeue(context.Background(), 10*time.Millisecond)
	assert.NoError(t, err)
	assert.Nil(t, task)
}

func TestQueue_DequeueCancelled(t *testing.T) {
	q := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Dequeue(ctx, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQueue_Full(t *testing.T) {
	q := attached(t, 1)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, domain.Task{ID: "t1"}))
	err := q.Enqueue(ctx, domain.Task{ID: "t2"})
	assert.ErrorIs(t, err, domain.ErrQueueUnavailable)
}

func TestQueue_Close(t *testing.T) {
	q := attached(t, 2)
	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, domain.Task{ID: "t1"}))
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())

	err := q.Enqueue(ctx, domain.Task{ID: "t2"})
	assert.ErrorIs(t, err, domain.ErrQueueUnavailable)
	assert.ErrorIs(t, err, domain.ErrQueueClosed)

	task, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "t1", task.ID)

	_, err = q.Dequeue(ctx, time.Second)
	assert.ErrorIs(t, err, domain.ErrQueueClosed)
}

func TestQueue_SingleDelivery(t *testing.T) {
	q := attached(t, 100)
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		require.NoError(t, q.Enqueue(ctx, domain.Task{ID: string(rune('a' + i%26)), DocumentID: "doc"}))
	}

	var mu sync.Mutex
	count := 0
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				task, err := q.Dequeue(ctx, 20*time.Millisecond)
				if err != nil || task == nil {
					return
				}
				mu.Lock()
				count++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, count)
}

func TestQueue_RejectsWithoutConsumer(t *testing.T) {
	q := New(4)

	err := q.Enqueue(context.Background(), domain.Task{ID: "t1"})
	assert.ErrorIs(t, err, domain.ErrQueueUnavailable)
	assert.Equal(t, 0, q.Len())
}

func TestQueue_DetachStopsAccepting(t *testing.T) {
	q := New(4)
	ctx := context.Background()

	detach := q.AttachConsumer()
	require.NoError(t, q.Enqueue(ctx, domain.Task{ID: "t1"}))

	detach()
	detach()
	err := q.Enqueue(ctx, domain.Task{ID: "t2"})
	assert.ErrorIs(t, err, domain.ErrQueueUnavailable)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_CountsConsumers(t *testing.T) {
	q := New(4)
	ctx := context.Background()

	first := q.AttachConsumer()
	second := q.AttachConsumer()
	first()

	assert.NoError(t, q.Enqueue(ctx, domain.Task{ID: "t1"}))
	second()
	assert.Error(t, q.Enqueue(ctx, domain.Task{ID: "t2"}))
}
