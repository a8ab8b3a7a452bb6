package engine

import (
	"context"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/singleflight"
)

// Cache memoizes the last successful load of a Source.
// A zero TTL never expires; the only way to refresh is Invalidate.
type Cache struct {
	src Source
	ttl time.Duration
	now func() time.Time

	mu    sync.RWMutex
	data  *Dataset
	group singleflight.Group
}

func NewCache(src Source, ttl time.Duration) *Cache {
	return &Cache{src: src, ttl: ttl, now: time.Now}
}

func (c *Cache) fresh() *Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data == nil {
		return nil
	}
	if c.ttl > 0 && c.now().Sub(c.data.LoadedAt) >= c.ttl {
		return nil
	}
	return c.data
}

// Get returns the cached Dataset, loading it when missing or expired.
// Concurrent misses share one load. Failed loads are not cached.
func (c *Cache) Get(ctx context.Context) (*Dataset, error) {
	if ds := c.fresh(); ds != nil {
		return ds, nil
	}

	// The shared load outlives any single caller; each caller still stops
	// waiting when its own ctx ends.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan("dataset", func() (interface{}, error) {
		if ds := c.fresh(); ds != nil {
			return ds, nil
		}
		ds, err := c.src.Load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.data = ds
		c.mu.Unlock()
		return ds, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		log.Debug("cache: joined in-flight load")
	}
	return res.Val.(*Dataset), nil
}

func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.data = nil
	c.mu.Unlock()
}

// LoadedAt reports when the cached Dataset was fetched; ok is false when nothing is cached.
func (c *Cache) LoadedAt() (t time.Time, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data == nil {
		return time.Time{}, false
	}
	return c.data.LoadedAt, true
}
