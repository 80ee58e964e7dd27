// Package cache keeps recently resolved series so repeated requests do not
// hit rate-limited upstreams.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"findata/internal/model"
)

// Cache stores resolved series by key. Implementations treat backend
// failures as misses.
type Cache interface {
	Get(ctx context.Context, key string) (model.ResolvedSeries, bool)
	Set(ctx context.Context, key string, s model.ResolvedSeries)
}

// Key builds the cache key for a symbol and lookback.
func Key(symbol string, lookbackDays int) string {
	return fmt.Sprintf("findata:series:%s:%d", symbol, lookbackDays)
}

// entry stores a cached series with expiry.
type entry struct {
	expiresAt time.Time
	series    model.ResolvedSeries
}

// Memory caches series in process for a TTL.
type Memory struct {
	TTL      time.Duration
	MaxItems int
	Now      func() time.Time

	mu    sync.RWMutex
	items map[string]entry
}

func NewMemory(ttl time.Duration, maxItems int) *Memory {
	return &Memory{TTL: ttl, MaxItems: maxItems, Now: time.Now, items: make(map[string]entry)}
}

func (c *Memory) Get(_ context.Context, key string) (model.ResolvedSeries, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.items[key]
	if !ok || !c.Now().Before(e.expiresAt) {
		return model.ResolvedSeries{}, false
	}
	return e.series, true
}

func (c *Memory) Set(_ context.Context, key string, s model.ResolvedSeries) {
	if c.TTL <= 0 {
		return
	}
	now := c.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry{expiresAt: now.Add(c.TTL), series: s}

	// best-effort cap: drop expired entries first, then arbitrary ones
	if c.MaxItems > 0 && len(c.items) > c.MaxItems {
		for k, v := range c.items {
			if !now.Before(v.expiresAt) {
				delete(c.items, k)
			}
		}
		for k := range c.items {
			if len(c.items) <= c.MaxItems {
				break
			}
			if k != key {
				delete(c.items, k)
			}
		}
	}
}

// Len reports the number of stored entries, expired or not.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
