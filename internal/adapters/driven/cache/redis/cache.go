// Package redis provides a Redis-backed SimilarityCache.
//
// Connectivity is checked once at construction. If the ping fails the
// cache stays unavailable for the life of the process and every call is
// a miss or a no-op; it never reconnects per call.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/plagscan/internal/adapters/driven/cache"
	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
	"github.com/custodia-labs/plagscan/internal/logger"
)

// Ensure Cache implements the interface.
var _ driven.SimilarityCache = (*Cache)(nil)

// Default configuration values.
const (
	DefaultAddr    = "localhost:6379"
	DefaultTimeout = time.Second
)

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int

	// Timeout bounds dial, read and write operations.
	Timeout time.Duration
}

// Cache stores vectors as JSON and pair scores as decimal strings.
type Cache struct {
	client    *goredis.Client
	available bool
	err       error
}

// New connects to Redis and pings it once.
// It never fails: an unreachable server yields an unavailable cache.
func New(ctx context.Context, cfg Config) *Cache {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
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
		MaxRetries:   -1,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		logger.Warn("cache: redis at %s unreachable, caching disabled: %v", cfg.Addr, err)
		return &Cache{err: fmt.Errorf("%w: %w", domain.ErrCacheUnavailable, err)}
	}

	logger.Debug("cache: connected to redis at %s", cfg.Addr)
	return &Cache{client: client, available: true}
}

// Available reports whether the startup ping succeeded.
func (c *Cache) Available() bool {
	return c.available
}

// Err returns the startup ping failure, if any.
func (c *Cache) Err() error {
	return c.err
}

// GetVector returns the cached vector for a document.
func (c *Cache) GetVector(ctx context.Context, id string) ([]float32, bool) {
	if !c.available {
		return nil, false
	}
	data, err := c.client.Get(ctx, cache.VectorKey(id)).Bytes()
	if err != nil {
		c.absorb("get vector", err)
		return nil, false
	}
	var vec []float32
	if err := json.Unmarshal(data, &vec); err != nil || len(vec) == 0 {
		logger.Debug("cache: discarding malformed vector for %s", id)
		return nil, false
	}
	return vec, true
}

// PutVector caches a document vector.
func (c *Cache) PutVector(ctx context.Context, id string, vec []float32, ttl time.Duration) {
	if !c.available || len(vec) == 0 || ttl <= 0 {
		return
	}
	data, err := json.Marshal(vec)
	if err != nil {
		return
	}
	c.absorb("put vector", c.client.Set(ctx, cache.VectorKey(id), data, ttl).Err())
}

// InvalidateVector drops a cached vector.
func (c *Cache) InvalidateVector(ctx context.Context, id string) {
	if !c.available {
		return
	}
	c.absorb("invalidate vector", c.client.Del(ctx, cache.VectorKey(id)).Err())
}

// GetSimilarity returns the cached score for a pair.
func (c *Cache) GetSimilarity(ctx context.Context, idA, idB string) (float64, bool) {
	if !c.available {
		return 0, false
	}
	raw, err := c.client.Get(ctx, cache.SimilarityKey(idA, idB)).Result()
	if err != nil {
		c.absorb("get similarity", err)
		return 0, false
	}
	score, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return score, true
}

// PutSimilarity caches a pair score.
func (c *Cache) PutSimilarity(ctx context.Context, idA, idB string, score float64, ttl time.Duration) {
	if !c.available || ttl <= 0 {
		return
	}
	value := strconv.FormatFloat(score, 'g', -1, 64)
	c.absorb("put similarity", c.client.Set(ctx, cache.SimilarityKey(idA, idB), value, ttl).Err())
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// absorb logs a failed operation. Misses are not failures.
func (c *Cache) absorb(op string, err error) {
	if err == nil || errors.Is(err, goredis.Nil) {
		return
	}
	logger.Debug("cache: %s: %v", op, err)
}
