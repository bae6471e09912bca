// Package redis provides a TaskQueue on a Redis list.
// Producers RPUSH JSON-encoded tasks and workers BLPOP them, so each
// task reaches exactly one worker.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
)

// Ensure Queue implements the interface.
var _ driven.TaskQueue = (*Queue)(nil)

// Default configuration values.
const (
	DefaultAddr    = "localhost:6379"
	DefaultName    = "plagiarism"
	DefaultTimeout = time.Second
)

// Config holds broker connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int

	// Name is the list key, prefixed with "queue:".
	Name string

	// Timeout bounds dial and write operations.
	Timeout time.Duration
}

// Queue is a Redis list used as a work queue.
type Queue struct {
	client *goredis.Client
	key    string
}

// New connects to the broker and verifies it responds.
func New(ctx context.Context, cfg Config) (*Queue, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrQueueUnavailable, err)
	}

	return &Queue{client: client, key: "queue:" + cfg.Name}, nil
}

// Enqueue appends a task to the list.
func (q *Queue) Enqueue(ctx context.Context, task domain.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encoding task: %w", err)
	}
	if err := q.client.RPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrQueueUnavailable, err)
	}
	return nil
}

// Dequeue blocks up to timeout for the next task.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*domain.Task, error) {
	result, err := q.client.BLPop(ctx, timeout, q.key).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrQueueUnavailable, err)
	}
	// BLPOP returns [key, value].
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPOP reply of length %d", len(result))
	}

	var task domain.Task
	if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
		return nil, fmt.Errorf("decoding task: %w", err)
	}
	return &task, nil
}

// Len returns the number of pending tasks.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

// Close releases the connection pool.
func (q *Queue) Close() error {
	return q.client.Close()
}
