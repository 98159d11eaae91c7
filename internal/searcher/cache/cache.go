// Package cache memoises ranked search results. Results live in an
// in-process LRU and, when Redis is configured, in a shared Redis tier. Any
// library mutation invalidates both.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/resilience"
)

const keyPrefix = "search:"

// Remote is the shared cache tier. *pkgredis.Client satisfies it.
type Remote interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

type Options struct {
	// LocalSize is the LRU capacity; zero disables the in-process tier.
	LocalSize int
	Remote    Remote
	TTL       time.Duration
	Metrics   *metrics.Metrics
}

type QueryCache struct {
	local   *lru.Cache[string, []ranker.ScoredDoc]
	remote  Remote
	breaker *resilience.CircuitBreaker
	ttl     time.Duration
	metrics *metrics.Metrics
	group   singleflight.Group
	// epoch is part of every key. Bumping it orphans results computed
	// before an invalidation, including ones still in flight.
	epoch  atomic.Int64
	hits   atomic.Int64
	misses atomic.Int64
	logger *slog.Logger
}

func New(opts Options) (*QueryCache, error) {
	c := &QueryCache{
		remote:  opts.Remote,
		ttl:     opts.TTL,
		metrics: opts.Metrics,
		breaker: resilience.NewCircuitBreaker("search-cache-redis", resilience.CircuitBreakerConfig{
			FailureThreshold: 3,
			ResetTimeout:     15 * time.Second,
		}),
		logger: slog.Default().With("component", "query-cache"),
	}
	if opts.LocalSize > 0 {
		local, err := lru.New[string, []ranker.ScoredDoc](opts.LocalSize)
		if err != nil {
			return nil, fmt.Errorf("creating local search cache: %w", err)
		}
		c.local = local
	}
	c.epoch.Store(time.Now().UnixNano())
	return c, nil
}

// Get looks query up in the local tier, then the remote one.
func (c *QueryCache) Get(ctx context.Context, query string, k int) ([]ranker.ScoredDoc, bool) {
	key := c.buildKey(query, k)
	if c.local != nil {
		if results, ok := c.local.Get(key); ok {
			c.recordHit()
			return results, true
		}
	}
	if c.remote != nil {
		var data string
		err := c.breaker.Execute(func() error {
			var err error
			data, err = c.remote.Get(ctx, key)
			if pkgredis.IsNilError(err) {
				return nil
			}
			return err
		})
		switch {
		case err != nil:
			c.logger.Debug("remote cache get failed", "key", key, "error", err)
		case data != "":
			var results []ranker.ScoredDoc
			if err := json.Unmarshal([]byte(data), &results); err != nil {
				c.logger.Error("cache unmarshal failed", "key", key, "error", err)
				break
			}
			if c.local != nil {
				c.local.Add(key, results)
			}
			c.recordHit()
			return results, true
		}
	}
	c.recordMiss()
	return nil, false
}

func (c *QueryCache) Set(ctx context.Context, query string, k int, results []ranker.ScoredDoc) {
	c.set(ctx, c.buildKey(query, k), results)
}

func (c *QueryCache) set(ctx context.Context, key string, results []ranker.ScoredDoc) {
	if c.local != nil {
		c.local.Add(key, results)
	}
	if c.remote == nil {
		return
	}
	data, err := json.Marshal(results)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.breaker.Execute(func() error {
		return c.remote.Set(ctx, key, data, c.ttl)
	}); err != nil {
		c.logger.Debug("remote cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached results for (query, k) or computes them
// once, sharing the computation between concurrent callers. The bool
// reports a cache hit.
func (c *QueryCache) GetOrCompute(ctx context.Context, query string, k int, compute func() []ranker.ScoredDoc) ([]ranker.ScoredDoc, bool) {
	if results, ok := c.Get(ctx, query, k); ok {
		return results, true
	}
	key := c.buildKey(query, k)
	val, _, _ := c.group.Do(key, func() (any, error) {
		results := compute()
		c.set(ctx, key, results)
		return results, nil
	})
	return val.([]ranker.ScoredDoc), false
}

// Invalidate drops every cached result.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	c.epoch.Add(1)
	if c.local != nil {
		c.local.Purge()
	}
	if c.remote == nil {
		return nil
	}
	var deleted int64
	err := c.breaker.Execute(func() error {
		var err error
		deleted, err = c.remote.FlushByPattern(ctx, keyPrefix+"*")
		return err
	})
	if err != nil {
		return fmt.Errorf("invalidating remote cache: %w", err)
	}
	c.logger.Debug("cache invalidated", "keys_deleted", deleted)
	return nil
}

// DocumentInserted invalidates the cache after a library insert.
func (c *QueryCache) DocumentInserted(document.ID, document.Document) {
	c.invalidateAfterMutation()
}

// DocumentRemoved invalidates the cache after a library removal.
func (c *QueryCache) DocumentRemoved(document.ID, document.Document) {
	c.invalidateAfterMutation()
}

func (c *QueryCache) invalidateAfterMutation() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Invalidate(ctx); err != nil {
		// Old-epoch keys are never read again and expire by TTL.
		c.logger.Warn("cache invalidation incomplete", "error", err)
	}
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) recordHit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// buildKey folds ASCII case, which never changes the grams a query yields.
func (c *QueryCache) buildKey(query string, k int) string {
	raw := fmt.Sprintf("%s\x00k=%d", foldASCII(query), k)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%d:%x", keyPrefix, c.epoch.Load(), hash[:16])
}

func foldASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
