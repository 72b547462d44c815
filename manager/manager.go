// Package manager orchestrates schema conversion and compatibility checking
// behind the fingerprint-keyed schema cache.
package manager

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"skema/lib/columnar"
	"skema/lib/compat"
	"skema/lib/schema"
	"skema/scache"
)

// Args configure the manager. Limits are injected here, never hard-coded.
type Args struct {
	CacheMaxEntries int64         `arg:"--schema-cache-entries,env:SCHEMA_CACHE_ENTRIES" default:"1000" json:"schema_cache_entries,omitempty"`
	CacheTTL        time.Duration `arg:"--schema-cache-ttl,env:SCHEMA_CACHE_TTL" default:"15m" json:"schema_cache_ttl,omitempty"`
}

// Manager owns the cache for the lifetime of the process. All methods are
// safe for concurrent use; conversion is pure, so two goroutines racing on
// the same uncached fingerprint may both convert, with one entry retained.
type Manager struct {
	cache  *scache.Cache
	logger *zap.Logger
}

func CreateFromArgs(args *Args) (*Manager, error) {
	return New(args.CacheMaxEntries, args.CacheTTL, zap.L())
}

func New(maxEntries int64, ttl time.Duration, logger *zap.Logger) (*Manager, error) {
	if maxEntries <= 0 {
		return nil, fmt.Errorf("cache max entries must be positive, got %d", maxEntries)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %v", ttl)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, err := scache.New(maxEntries, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema cache: %w", err)
	}
	return &Manager{cache: cache, logger: logger}, nil
}

// GetOrCreateSchema returns the converted columnar schema for a source
// schema, computing and caching it on first sight of the fingerprint.
func (m *Manager) GetOrCreateSchema(source schema.Node) (columnar.Schema, error) {
	if source == nil {
		return columnar.Schema{}, schema.ErrRootNotRecord
	}
	fp := schema.Fingerprint(source)
	if cached, ok := m.cache.Get(fp); ok {
		return cached, nil
	}
	converted, err := columnar.Convert(source)
	if err != nil {
		return columnar.Schema{}, err
	}
	m.cache.Set(fp, converted)
	m.logger.Debug("converted schema",
		zap.String("fingerprint", fp),
		zap.Int("fields", converted.Len()),
	)
	return converted, nil
}

// InvalidateSchema drops the cache entry for a source schema's fingerprint.
// No-op when absent; safe to race with in-flight gets, which simply
// recompute.
func (m *Manager) InvalidateSchema(source schema.Node) {
	if source == nil {
		return
	}
	m.cache.Del(schema.Fingerprint(source))
}

// CheckCompatibility reports whether new may replace old under the policy.
// Does not consult or mutate the cache.
func (m *Manager) CheckCompatibility(old, new schema.Node, policy compat.Policy) compat.Result {
	return compat.Check(old, new, policy)
}

// IsCompatible is the boolean shorthand of CheckCompatibility.
func (m *Manager) IsCompatible(old, new schema.Node, policy compat.Policy) bool {
	return m.CheckCompatibility(old, new, policy).Compatible
}

// CacheStats snapshots the cache counters for observability.
func (m *Manager) CacheStats() scache.Stats {
	return m.cache.Stats()
}

// Cache exposes the underlying cache for metrics publication.
func (m *Manager) Cache() *scache.Cache {
	return m.cache
}

// Flush waits for buffered cache writes to apply. Tests use it to observe
// a just-stored entry deterministically.
func (m *Manager) Flush() {
	m.cache.Wait()
}

// Close releases the cache. The manager must not be used afterwards.
func (m *Manager) Close() {
	m.cache.Close()
}
