package gitignore

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the default number of verdicts kept by a CachedEvaluator.
const DefaultCacheSize = 4096

type cacheKey struct {
	generation uint64
	path       string
	isDir      bool
}

// CachedEvaluator memoizes verdicts in a bounded LRU cache.
// Entries are keyed by RuleSet generation, so swapping in a recompiled
// RuleSet never serves verdicts computed against the old one.
type CachedEvaluator struct {
	ev     *Evaluator
	cache  *lru.Cache[cacheKey, MatchResult]
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCachedEvaluator wraps ev with a cache of the given size.
func NewCachedEvaluator(ev *Evaluator, size int) (*CachedEvaluator, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[cacheKey, MatchResult](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create verdict cache: %w", err)
	}
	return &CachedEvaluator{ev: ev, cache: cache}, nil
}

// Evaluate returns the cached verdict or computes and caches it.
// Invalid queries are never cached.
func (c *CachedEvaluator) Evaluate(rs *RuleSet, q MatchQuery) (MatchResult, error) {
	key := cacheKey{generation: rs.Generation(), path: NormalizePath(q.Path), isDir: q.IsDir}
	if res, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		return res, nil
	}
	c.misses.Add(1)

	res, err := c.ev.Evaluate(rs, q)
	if err != nil {
		return res, err
	}
	c.cache.Add(key, res)
	return res, nil
}

// IsIgnored reports whether path is ignored by rs.
func (c *CachedEvaluator) IsIgnored(rs *RuleSet, path string, isDir bool) (bool, error) {
	res, err := c.Evaluate(rs, MatchQuery{Path: path, IsDir: isDir})
	return res.Ignored, err
}

// Stats returns cache hit and miss counts.
func (c *CachedEvaluator) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of cached verdicts.
func (c *CachedEvaluator) Len() int {
	return c.cache.Len()
}

// Purge drops every cached verdict.
func (c *CachedEvaluator) Purge() {
	c.cache.Purge()
}
