// Package sensors mediates every hardware sensor read through a
// freshness-windowed cache.
package sensors

import (
	"context"
	"fmt"
	"sync"
	"time"

	"greenhouse/internal/clock"
	"greenhouse/internal/logger"
	"greenhouse/internal/metrics"
)

// Freshness thresholds per sensor family.
const (
	ControllerFreshness = 50 * time.Second
	SoilFreshness       = 2 * time.Second
)

// ReadFunc performs one physical read of a whole sensor bundle.
type ReadFunc[T any] func(ctx context.Context) (T, error)

// Cache serializes physical reads of one sensor family and reuses the last
// bundle while it is younger than the threshold. Safe for concurrent use.
type Cache[T any] struct {
	name      string
	read      ReadFunc[T]
	clock     clock.Clock
	threshold time.Duration
	log       *logger.Logger
	metrics   *metrics.Metrics

	mu       sync.Mutex
	lastTime time.Time
	last     T
	valid    bool
}

func NewCache[T any](name string, read ReadFunc[T], c clock.Clock, threshold time.Duration, log *logger.Logger, m *metrics.Metrics) *Cache[T] {
	return &Cache[T]{
		name:      name,
		read:      read,
		clock:     c,
		threshold: threshold,
		log:       logger.OrNop(log),
		metrics:   m,
	}
}

// Read returns a bundle no older than the threshold. A failed physical read
// leaves the previous entry untouched and returns the error.
func (c *Cache[T]) Read(ctx context.Context) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if c.valid && now.Sub(c.lastTime) < c.threshold {
		c.log.Debugw("sensor_cache_hit", "sensor", c.name, "age", now.Sub(c.lastTime), "value", c.last)
		c.metrics.CacheRead(c.name, metrics.ResultHit)
		return c.last, nil
	}

	v, err := c.read(ctx)
	if err != nil {
		c.metrics.CacheRead(c.name, metrics.ResultError)
		var zero T
		return zero, fmt.Errorf("read %s: %w", c.name, err)
	}
	c.lastTime = now
	c.last = v
	c.valid = true
	c.log.Debugw("sensor_cache_refresh", "sensor", c.name, "value", v)
	c.metrics.CacheRead(c.name, metrics.ResultMiss)
	return v, nil
}
