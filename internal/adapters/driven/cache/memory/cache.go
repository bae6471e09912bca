// Package memory provides an in-process SimilarityCache.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/plagscan/internal/adapters/driven/cache"
	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.SimilarityCache = (*Cache)(nil)

type entry struct {
	vector    []float32
	score     float64
	expiresAt time.Time
}

// Cache is a TTL map. Expired entries are treated as absent and dropped
// lazily on access or by Sweep.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (c *Cache) get(key string) (entry, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return entry{}, false
	}
	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return entry{}, false
	}
	return e, true
}

func (c *Cache) put(key string, e entry, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	e.expiresAt = c.now().Add(ttl)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = e
}

// GetVector returns the cached vector for a document.
func (c *Cache) GetVector(_ context.Context, id string) ([]float32, bool) {
	e, ok := c.get(cache.VectorKey(id))
	if !ok || e.vector == nil {
		return nil, false
	}
	return append([]float32(nil), e.vector...), true
}

// PutVector caches a document vector.
func (c *Cache) PutVector(_ context.Context, id string, vec []float32, ttl time.Duration) {
	if len(vec) == 0 {
		return
	}
	c.put(cache.VectorKey(id), entry{vector: append([]float32(nil), vec...)}, ttl)
}

// InvalidateVector drops a cached vector.
func (c *Cache) InvalidateVector(_ context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cache.VectorKey(id))
}

// GetSimilarity returns the cached score for a pair.
func (c *Cache) GetSimilarity(_ context.Context, idA, idB string) (float64, bool) {
	e, ok := c.get(cache.SimilarityKey(idA, idB))
	if !ok {
		return 0, false
	}
	return e.score, true
}

// PutSimilarity caches a pair score.
func (c *Cache) PutSimilarity(_ context.Context, idA, idB string, score float64, ttl time.Duration) {
	c.put(cache.SimilarityKey(idA, idB), entry{score: score}, ttl)
}

// Available always returns true.
func (c *Cache) Available() bool {
	return true
}

// Sweep removes expired entries and returns how many were dropped.
func (c *Cache) Sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
