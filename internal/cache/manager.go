package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/electwix/querycache/internal/logging"
)

// Default configuration values applied by New for zero-valued options.
const (
	DefaultMaxEntries = 1000
	DefaultMaxSize    = 100 * 1024 * 1024
	DefaultTTL        = 5 * time.Minute
)

// Options configures a Manager. Values are fixed for the lifetime of the
// instance. Out-of-range values are used as given; the cache favors
// availability over validation.
type Options struct {
	// MaxEntries bounds the entry count. Defaults to 1000.
	MaxEntries int
	// MaxSize bounds the aggregate estimated size in bytes. Defaults to
	// 100 MiB.
	MaxSize int64
	// TTL is the entry time-to-live. Defaults to 5 minutes; negative
	// values disable expiry.
	TTL time.Duration
	// Policy selects the eviction strategy. Defaults to PolicyLRU.
	Policy Policy
	// DisableStats turns off statistics tracking. Enabled by default.
	DisableStats bool
	// KeyFunc overrides the default key generator for the lifetime of
	// the instance.
	KeyFunc KeyFunc
	// Logger receives warm-up and invalidation diagnostics. Defaults to
	// a no-op logger.
	Logger logging.Logger
}

// Manager composes the key generator, entry store, eviction engine and
// statistics tracker into the cache contract the query layer consumes.
//
// All methods are safe for concurrent use: one mutex guards the store and
// the eviction engine together, since their invariants span both.
type Manager struct {
	mu     sync.Mutex
	store  *Store
	engine *Engine
	stats  *Tracker
	keyFn  KeyFunc
	log    logging.Logger
	id     string
}

// FetchFunc produces a payload for a cache miss. Its error is propagated
// to the caller unchanged; nothing is cached on failure.
type FetchFunc func(ctx context.Context) (any, error)

// WarmupItem is one proactive population request.
type WarmupItem struct {
	Query  string
	Params []any
	Fetch  FetchFunc
}

// New creates a Manager with defaults applied for zero-valued options.
func New(opts Options) *Manager {
	if opts.MaxEntries == 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.MaxSize == 0 {
		opts.MaxSize = DefaultMaxSize
	}
	if opts.TTL == 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Policy == "" {
		opts.Policy = PolicyLRU
	}
	if opts.KeyFunc == nil {
		opts.KeyFunc = DefaultKey
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}

	id := uuid.NewString()
	store := NewStore()
	stats := NewTracker(!opts.DisableStats)
	return &Manager{
		store:  store,
		engine: NewEngine(store, stats, opts.MaxEntries, opts.MaxSize, opts.TTL, opts.Policy),
		stats:  stats,
		keyFn:  opts.KeyFunc,
		log:    opts.Logger.With("cache_id", id),
		id:     id,
	}
}

// ID returns the instance identifier used in log attribution.
func (m *Manager) ID() string {
	return m.id
}

// Get returns the cached payload for (query, params) if a live entry
// exists. A hit refreshes the entry's ledger position and access
// bookkeeping; a miss, including an expired-but-unswept entry, is
// recorded as such.
func (m *Manager) Get(query string, params []any) (any, bool) {
	key := m.keyFn(query, params)

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.store.Get(key)
	if !ok || m.engine.IsExpired(e) {
		m.stats.RecordMiss()
		return nil, false
	}

	m.store.Touch(key)
	e.LastAccessed = time.Now()
	e.Hits++
	m.stats.RecordHit()
	return e.Data, true
}

// GetOrFetch returns the cached payload, invoking fetch to fill the cache
// on a miss. A fetch error is returned unchanged and nothing is stored.
func (m *Manager) GetOrFetch(ctx context.Context, query string, params []any, fetch FetchFunc) (any, error) {
	if payload, ok := m.Get(query, params); ok {
		return payload, nil
	}

	payload, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	m.Set(query, params, payload, nil)
	return payload, nil
}

// Set stores a payload for (query, params), evicting as needed to admit
// it. Admission is best-effort: when nothing evictable remains the
// configured bounds may be exceeded.
func (m *Manager) Set(query string, params []any, payload any, metadata map[string]any) {
	key := m.keyFn(query, params)
	size := EstimateSize(payload)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.engine.EvictIfNeeded(size)

	// Replacing an existing entry releases its recorded size first.
	if old, ok := m.store.Get(key); ok {
		m.engine.UpdateSize(-old.Size)
	}

	now := time.Now()
	m.store.Set(key, &Entry{
		Data:         payload,
		Query:        query,
		Timestamp:    now,
		LastAccessed: now,
		Size:         size,
		Metadata:     metadata,
	})
	m.engine.UpdateSize(size)
	m.stats.UpdateSize(m.engine.Size(), m.store.Len())
}

// Has reports whether a live entry exists for (query, params). An expired
// entry is reported absent but is not evicted here; this is a pure read.
func (m *Manager) Has(query string, params []any) bool {
	key := m.keyFn(query, params)

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.store.Get(key)
	return ok && !m.engine.IsExpired(e)
}

// Delete removes the entry for (query, params), reporting whether it
// existed.
func (m *Manager) Delete(query string, params []any) bool {
	key := m.keyFn(query, params)

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.store.Get(key)
	if !ok {
		return false
	}
	m.store.Delete(key)
	m.engine.UpdateSize(-e.Size)
	m.stats.UpdateSize(m.engine.Size(), m.store.Len())
	return true
}

// Clear empties the store and resets the size gauges. Cumulative hit and
// miss history survives; use ResetStats to zero it.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store.Clear()
	m.engine.Reset()
	m.stats.UpdateSize(0, 0)
}

// Invalidate removes every entry whose original query text contains
// pattern as a substring and returns the number removed.
func (m *Manager) Invalidate(pattern string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var victims []string
	m.store.Range(func(key string, e *Entry) bool {
		if strings.Contains(e.Query, pattern) {
			victims = append(victims, key)
		}
		return true
	})

	for _, key := range victims {
		if e, ok := m.store.Get(key); ok {
			m.store.Delete(key)
			m.engine.UpdateSize(-e.Size)
		}
	}
	if len(victims) > 0 {
		m.stats.UpdateSize(m.engine.Size(), m.store.Len())
		m.log.Debug("cache invalidated", "pattern", pattern, "removed", len(victims))
	}
	return len(victims)
}

// WarmUp populates the cache by invoking each item's fetch in order. A
// failed item is logged and skipped; it never aborts the remaining items.
func (m *Manager) WarmUp(ctx context.Context, items []WarmupItem) {
	for _, item := range items {
		payload, err := item.Fetch(ctx)
		if err != nil {
			m.log.Warn("warm-up item failed", "query", item.Query, "error", err)
			continue
		}
		m.Set(item.Query, item.Params, payload, nil)
	}
}

// Stats returns a copy of the current statistics.
func (m *Manager) Stats() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats.Snapshot()
}

// ResetStats zeroes all counters and gauges.
func (m *Manager) ResetStats() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Reset()
}

// ExportStats serializes the statistics counters and gauges for
// continuity across manager instances. Entry payloads are never
// persisted.
func (m *Manager) ExportStats() map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats.Export()
}

// ImportStats merges previously exported statistics over the current
// state.
func (m *Manager) ImportStats(fields map[string]float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Import(fields)
}

// Len returns the current entry count.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Len()
}
