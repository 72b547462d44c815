// Package scache is the bounded, TTL-evicting cache of converted schemas,
// keyed by schema fingerprint.
package scache

import (
	"time"

	"github.com/dgraph-io/ristretto"
	"go.uber.org/atomic"

	"skema/lib/columnar"
)

// Cache bounds the number of retained schemas and expires entries a TTL
// after their last access, not their last write: a hit re-arms the entry's
// TTL, so a hot entry survives indefinitely while an idle one expires even
// below the ceiling. Over-ceiling victims are picked by ristretto's sampled
// frequency policy, which approximates a recency tiebreak rather than
// tracking exact LRU order. Safe for concurrent use.
type Cache struct {
	cache *ristretto.Cache
	ttl   time.Duration

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
	size      atomic.Int64
}

// New creates a cache holding at most maxEntries schemas, each expiring ttl
// after its last access.
// https://pkg.go.dev/github.com/dgraph-io/ristretto#Config
func New(maxEntries int64, ttl time.Duration) (*Cache, error) {
	c := &Cache{ttl: ttl}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * maxEntries,
		MaxCost:     maxEntries,
		BufferItems: 64,
		Metrics:     true,
		OnEvict: func(item *ristretto.Item) {
			c.evictions.Inc()
			c.size.Dec()
		},
		// A candidate rejected by the admission policy was never stored but
		// Set already counted it; balance the size gauge here.
		OnReject: func(item *ristretto.Item) {
			c.size.Dec()
		},
	})
	if err != nil {
		return nil, err
	}
	c.cache = cache
	return c, nil
}

// Get returns the cached schema for a fingerprint and re-arms its TTL.
func (c *Cache) Get(fingerprint string) (columnar.Schema, bool) {
	v, ok := c.cache.Get(fingerprint)
	if !ok {
		c.misses.Inc()
		return columnar.Schema{}, false
	}
	c.hits.Inc()
	// Re-set with the same value to measure the TTL from this access.
	c.cache.SetWithTTL(fingerprint, v, 1, c.ttl)
	return v.(columnar.Schema), true
}

// Set stores a schema under its fingerprint. Admission is asynchronous; a
// dropped set is not an error, the caller already holds the schema.
func (c *Cache) Set(fingerprint string, s columnar.Schema) bool {
	_, existed := c.cache.Get(fingerprint)
	if !c.cache.SetWithTTL(fingerprint, s, 1, c.ttl) {
		return false
	}
	if !existed {
		c.size.Inc()
	}
	return true
}

// Del removes the entry for a fingerprint, if present.
func (c *Cache) Del(fingerprint string) {
	if _, existed := c.cache.Get(fingerprint); existed {
		c.size.Dec()
	}
	c.cache.Del(fingerprint)
}

// Wait blocks until buffered sets have been applied. Used by callers that
// need read-your-write visibility, mostly tests.
func (c *Cache) Wait() {
	c.cache.Wait()
}

// Close releases the underlying cache.
func (c *Cache) Close() {
	c.cache.Close()
}

// Stats is a point-in-time snapshot of cache effectiveness. Size is a
// best-effort gauge; sets and evictions apply asynchronously.
type Stats struct {
	Size          int64
	HitCount      int64
	MissCount     int64
	EvictionCount int64
	HitRate       float64
}

func (c *Cache) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	rate := 0.0
	if hits+misses > 0 {
		rate = float64(hits) / float64(hits+misses)
	}
	size := c.size.Load()
	if size < 0 {
		size = 0
	}
	return Stats{
		Size:          size,
		HitCount:      hits,
		MissCount:     misses,
		EvictionCount: c.evictions.Load(),
		HitRate:       rate,
	}
}
