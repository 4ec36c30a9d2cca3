// Package cache fronts AND queries with a Redis-backed cache keyed by the
// sorted term list, collapsing concurrent identical misses with
// singleflight. The index never mutates while the server runs, so a cache
// with no invalidation path beyond a TTL is correct.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/adithya-search/boolsearch/pkg/config"
	pkgredis "github.com/adithya-search/boolsearch/pkg/redis"
	"github.com/adithya-search/boolsearch/pkg/resilience"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "and_query:"

// QueryCache caches AND-query results keyed by their normalized term list.
type QueryCache struct {
	client  *pkgredis.Client
	cfg     config.RedisConfig
	breaker *resilience.CircuitBreaker
	group   singleflight.Group
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New wraps client with a circuit breaker guarding cache reads: when the
// breaker is open, Get reports a miss instead of blocking the caller, which
// falls back to computing the query directly against the index.
func New(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client:  client,
		cfg:     cfg,
		breaker: resilience.NewCircuitBreaker("query-cache", resilience.CircuitBreakerConfig{}),
		logger:  slog.Default().With("component", "query-cache"),
	}
}

// Get looks up a cached result for terms. The second return value reports
// whether the lookup was a cache hit.
func (c *QueryCache) Get(ctx context.Context, terms []string) ([]string, bool) {
	key := c.buildKey(terms)

	var data string
	err := c.breaker.Execute(func() error {
		var getErr error
		data, getErr = c.client.Get(ctx, key)
		return getErr
	})
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Debug("cache get failed, treating as miss", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}

	var docs []string
	if err := json.Unmarshal([]byte(data), &docs); err != nil {
		c.logger.Warn("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "terms", terms, "key", key)
	return docs, true
}

// Set stores the result for terms with the configured TTL.
func (c *QueryCache) Set(ctx context.Context, terms []string, docs []string) {
	key := c.buildKey(terms)
	data, err := json.Marshal(docs)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Debug("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result for terms, or runs computeFn once
// per key (across concurrent callers) and caches its result.
func (c *QueryCache) GetOrCompute(ctx context.Context, terms []string, computeFn func() []string) ([]string, bool) {
	if docs, ok := c.Get(ctx, terms); ok {
		return docs, true
	}
	key := c.buildKey(terms)
	val, _, _ := c.group.Do(key, func() (interface{}, error) {
		if docs, ok := c.Get(ctx, terms); ok {
			return docs, nil
		}
		docs := computeFn()
		c.Set(ctx, terms, docs)
		return docs, nil
	})
	return val.([]string), false
}

// Invalidate removes every cached AND-query result.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns cumulative hit/miss counts.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// BreakerState reports the current state of the breaker guarding cache
// reads (0=closed, 1=open, 2=half-open), for exporting as a gauge.
func (c *QueryCache) BreakerState() resilience.State {
	return c.breaker.GetState()
}

func (c *QueryCache) buildKey(terms []string) string {
	normalized := normalizeTerms(terms)
	hash := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

// normalizeTerms sorts and joins terms so that queries differing only in
// term order share a cache entry.
func normalizeTerms(terms []string) string {
	sorted := make([]string, len(terms))
	copy(sorted, terms)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
