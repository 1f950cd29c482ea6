// Package cache memoizes derived leaderboard and stats values and
// invalidates them precisely when score-affecting writes land.
package cache

import (
	"context"
	"time"

	"github.com/touchline/pickscore/pkg/logger"
	"github.com/touchline/pickscore/pkg/metrics"
)

// DefaultTTL bounds how long a derived value may serve without
// recomputation even if no invalidation reaches it.
const DefaultTTL = 5 * time.Minute

// Cache is the minimal client surface the coordinator needs. Implementations
// must be safe for concurrent use. A nil Cache disables memoization
// entirely; the coordinator then computes every read directly.
type Cache interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the given keys in a single round trip. Missing keys
	// are not an error.
	Delete(ctx context.Context, keys ...string) error
}

// ComputeFunc produces the serialized value for a key on a cache miss.
type ComputeFunc func(ctx context.Context) ([]byte, error)

// Option applies a configuration option to the Coordinator.
type Option func(*Coordinator)

// WithTTL overrides the default entry TTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Coordinator) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger sets a custom logger for the coordinator.
func WithLogger(log logger.Logger) Option {
	return func(c *Coordinator) {
		if log != nil {
			c.log = log
		}
	}
}

// Coordinator implements the read-through protocol over an injected Cache.
type Coordinator struct {
	cache Cache
	ttl   time.Duration
	log   logger.Logger
}

// NewCoordinator wraps a cache client; cache may be nil for the no-cache
// fallback path.
func NewCoordinator(cache Cache, opts ...Option) *Coordinator {
	c := &Coordinator{
		cache: cache,
		ttl:   DefaultTTL,
		log:   logger.Get().Named("cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrCompute serves the cached value on a hit without invoking compute.
// On a miss it computes, stores best-effort, and returns the fresh value.
// Cache unavailability degrades to direct computation; it never fails the
// read path.
func (c *Coordinator) GetOrCompute(ctx context.Context, key string, compute ComputeFunc) ([]byte, error) {
	if c.cache == nil {
		return compute(ctx)
	}

	val, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warn(ctx, "cache get failed, computing directly",
			logger.String("key", key), logger.Error(err))
	} else if ok {
		metrics.RecordCacheHit()
		return val, nil
	}
	metrics.RecordCacheMiss()

	val, err = compute(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, val, c.ttl); err != nil {
		c.log.Warn(ctx, "cache set failed",
			logger.String("key", key), logger.Error(err))
	}
	return val, nil
}

// Invalidate deletes the keys unconditionally in one batch. Callers issue
// this synchronously inside the operation that mutated scores; an error
// here must surface to the caller, because serving stale results after a
// write is a correctness bug.
func (c *Coordinator) Invalidate(ctx context.Context, keys []string) error {
	if c.cache == nil || len(keys) == 0 {
		return nil
	}
	if err := c.cache.Delete(ctx, keys...); err != nil {
		return err
	}
	metrics.RecordCacheInvalidation(len(keys))
	return nil
}
