package cache

import "time"

// Policy selects the eviction strategy used under capacity pressure.
type Policy string

const (
	// PolicyLRU evicts the least recently touched entry, skipping
	// entries the expiry sweep will remove anyway.
	PolicyLRU Policy = "lru"
	// PolicyLFU evicts the entry with the fewest hits, ties broken by
	// oldest ledger position.
	PolicyLFU Policy = "lfu"
	// PolicyFIFO evicts the oldest-inserted entry unconditionally.
	PolicyFIFO Policy = "fifo"
)

// Engine decides when capacity is exceeded and which entry goes. It keeps
// its own aggregate size counter, separate from the store, which is
// agnostic of its byte footprint.
//
// Eviction never fails: when nothing evictable remains the configured
// bounds may be exceeded, favoring availability over strict enforcement.
type Engine struct {
	store *Store
	stats *Tracker

	maxEntries int
	maxSize    int64
	ttl        time.Duration
	policy     Policy

	size int64
}

// NewEngine creates an eviction engine over store, reporting evictions to
// stats. A ttl of zero or less disables expiry.
func NewEngine(store *Store, stats *Tracker, maxEntries int, maxSize int64, ttl time.Duration, policy Policy) *Engine {
	return &Engine{
		store:      store,
		stats:      stats,
		maxEntries: maxEntries,
		maxSize:    maxSize,
		ttl:        ttl,
		policy:     policy,
	}
}

// Size returns the aggregate estimated size of all live entries.
func (g *Engine) Size() int64 {
	return g.size
}

// IsExpired reports whether the entry has outlived the configured TTL.
func (g *Engine) IsExpired(e *Entry) bool {
	if g.ttl <= 0 {
		return false
	}
	return time.Since(e.Timestamp) > g.ttl
}

// ShouldEvict reports whether admitting an entry of candidateSize bytes
// would exceed either the size or the entry-count bound.
func (g *Engine) ShouldEvict(candidateSize int64) bool {
	return g.size+candidateSize > g.maxSize || g.store.Len() >= g.maxEntries
}

// EvictIfNeeded runs the two-phase admission check that precedes every
// insertion: an unconditional expiry sweep, then policy evictions one at
// a time until capacity is satisfied or the store is empty.
func (g *Engine) EvictIfNeeded(candidateSize int64) {
	for _, key := range g.store.AccessOrder() {
		if e, ok := g.store.Get(key); ok && g.IsExpired(e) {
			g.EvictEntry(key)
		}
	}

	for g.ShouldEvict(candidateSize) {
		if !g.EvictOne() {
			return
		}
	}
}

// EvictOne removes exactly one entry according to the active policy.
// Returns false when the store is empty. An unrecognized policy behaves
// like FIFO.
func (g *Engine) EvictOne() bool {
	key, ok := g.selectVictim()
	if !ok {
		return false
	}
	g.EvictEntry(key)
	return true
}

func (g *Engine) selectVictim() (string, bool) {
	order := g.store.AccessOrder()
	if len(order) == 0 {
		return "", false
	}

	switch g.policy {
	case PolicyLRU:
		// Oldest non-expired entry; expired ones are dead weight the
		// sweep removes for free.
		for _, key := range order {
			if e, ok := g.store.Get(key); ok && !g.IsExpired(e) {
				return key, true
			}
		}
		return order[0], true
	case PolicyLFU:
		victim := order[0]
		minHits := int64(-1)
		for _, key := range order {
			e, ok := g.store.Get(key)
			if !ok {
				continue
			}
			if minHits < 0 || e.Hits < minHits {
				minHits = e.Hits
				victim = key
			}
		}
		return victim, true
	default:
		// PolicyFIFO and anything unrecognized.
		return order[0], true
	}
}

// EvictEntry removes one named entry, decrementing the aggregate size by
// the entry's recorded size (never a re-estimate) and counting the
// eviction.
func (g *Engine) EvictEntry(key string) {
	e, ok := g.store.Get(key)
	if !ok {
		return
	}
	g.store.Delete(key)
	g.size -= e.Size
	g.stats.RecordEviction()
}

// UpdateSize adjusts the aggregate size tracker by delta bytes.
func (g *Engine) UpdateSize(delta int64) {
	g.size += delta
}

// Reset zeroes the aggregate size tracker. Used alongside a store Clear.
func (g *Engine) Reset() {
	g.size = 0
}
