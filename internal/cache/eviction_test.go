package cache

import (
	"testing"
	"time"
)

func newEvictionFixture(maxEntries int, maxSize int64, ttl time.Duration, policy Policy) (*Store, *Tracker, *Engine) {
	store := NewStore()
	stats := NewTracker(true)
	engine := NewEngine(store, stats, maxEntries, maxSize, ttl, policy)
	return store, stats, engine
}

// addEntry inserts an entry the way Manager.Set does: store plus aggregate
// size bookkeeping.
func addEntry(store *Store, engine *Engine, key string, size int64, hits int64, age time.Duration) {
	now := time.Now()
	store.Set(key, &Entry{
		Data:         key,
		Query:        key,
		Timestamp:    now.Add(-age),
		LastAccessed: now.Add(-age),
		Hits:         hits,
		Size:         size,
	})
	engine.UpdateSize(size)
}

func TestEngine_IsExpired(t *testing.T) {
	_, _, engine := newEvictionFixture(10, 1<<20, 50*time.Millisecond, PolicyLRU)

	fresh := &Entry{Timestamp: time.Now()}
	if engine.IsExpired(fresh) {
		t.Error("fresh entry reported expired")
	}

	stale := &Entry{Timestamp: time.Now().Add(-51 * time.Millisecond)}
	if !engine.IsExpired(stale) {
		t.Error("stale entry reported live")
	}
}

func TestEngine_IsExpired_DisabledTTL(t *testing.T) {
	_, _, engine := newEvictionFixture(10, 1<<20, -1, PolicyLRU)

	old := &Entry{Timestamp: time.Now().Add(-24 * time.Hour)}
	if engine.IsExpired(old) {
		t.Error("expiry should be disabled for non-positive TTL")
	}
}

func TestEngine_ShouldEvict(t *testing.T) {
	store, _, engine := newEvictionFixture(2, 100, time.Hour, PolicyLRU)

	if engine.ShouldEvict(50) {
		t.Error("empty cache should admit a fitting candidate")
	}

	addEntry(store, engine, "a", 60, 0, 0)
	if !engine.ShouldEvict(50) {
		t.Error("candidate exceeding max size should trigger eviction")
	}

	addEntry(store, engine, "b", 10, 0, 0)
	if !engine.ShouldEvict(1) {
		t.Error("at max entry count, any insertion should trigger eviction")
	}
}

func TestEngine_ExpirySweepRunsWithoutPressure(t *testing.T) {
	store, stats, engine := newEvictionFixture(100, 1<<20, 10*time.Millisecond, PolicyLRU)

	addEntry(store, engine, "stale", 10, 0, 20*time.Millisecond)
	addEntry(store, engine, "fresh", 10, 0, 0)

	// Far below capacity: only the sweep should act.
	engine.EvictIfNeeded(10)

	if store.Has("stale") {
		t.Error("expired entry survived the sweep")
	}
	if !store.Has("fresh") {
		t.Error("live entry was evicted without pressure")
	}
	if got := engine.Size(); got != 10 {
		t.Errorf("aggregate size = %d, want 10", got)
	}
	if got := stats.Snapshot().Evictions; got != 1 {
		t.Errorf("evictions = %d, want 1", got)
	}
}

func TestEngine_LRUSkipsExpired(t *testing.T) {
	store, _, engine := newEvictionFixture(100, 1<<20, time.Minute, PolicyLRU)

	addEntry(store, engine, "expired-oldest", 10, 0, 2*time.Minute)
	addEntry(store, engine, "live-old", 10, 0, time.Second)
	addEntry(store, engine, "live-new", 10, 0, 0)

	if !engine.EvictOne() {
		t.Fatal("EvictOne() = false, want true")
	}
	if store.Has("live-old") {
		t.Error("LRU should evict the oldest live entry")
	}
	if !store.Has("expired-oldest") {
		t.Error("LRU should skip entries the sweep will remove")
	}
}

func TestEngine_LFUEvictsLeastHit(t *testing.T) {
	store, _, engine := newEvictionFixture(100, 1<<20, time.Hour, PolicyLFU)

	addEntry(store, engine, "a", 10, 2, 0)
	addEntry(store, engine, "b", 10, 0, 0)
	addEntry(store, engine, "c", 10, 1, 0)

	if !engine.EvictOne() {
		t.Fatal("EvictOne() = false, want true")
	}
	if store.Has("b") {
		t.Error("LFU should evict the entry with the fewest hits")
	}
}

func TestEngine_LFUTieBreaksOldest(t *testing.T) {
	store, _, engine := newEvictionFixture(100, 1<<20, time.Hour, PolicyLFU)

	addEntry(store, engine, "old", 10, 1, 0)
	addEntry(store, engine, "new", 10, 1, 0)

	engine.EvictOne()
	if store.Has("old") {
		t.Error("ties should break to the oldest ledger position")
	}
	if !store.Has("new") {
		t.Error("newer tied entry should survive")
	}
}

func TestEngine_FIFOIgnoresAccess(t *testing.T) {
	store, _, engine := newEvictionFixture(100, 1<<20, time.Minute, PolicyFIFO)

	addEntry(store, engine, "expired-oldest", 10, 5, 2*time.Minute)
	addEntry(store, engine, "fresh", 10, 0, 0)

	engine.EvictOne()
	// FIFO takes the ledger head unconditionally, expired or not.
	if store.Has("expired-oldest") {
		t.Error("FIFO should evict the oldest entry unconditionally")
	}
}

func TestEngine_UnknownPolicyFallsBackToFIFO(t *testing.T) {
	store, _, engine := newEvictionFixture(100, 1<<20, time.Hour, Policy("bogus"))

	addEntry(store, engine, "first", 10, 9, 0)
	addEntry(store, engine, "second", 10, 0, 0)

	engine.EvictOne()
	if store.Has("first") {
		t.Error("unknown policy should behave like insertion order")
	}
}

func TestEngine_EvictOneEmptyStore(t *testing.T) {
	_, _, engine := newEvictionFixture(10, 100, time.Hour, PolicyLRU)

	if engine.EvictOne() {
		t.Error("EvictOne() on empty store = true, want false")
	}
}

func TestEngine_CapacityLoopStopsWhenSatisfied(t *testing.T) {
	store, _, engine := newEvictionFixture(100, 100, time.Hour, PolicyLRU)

	addEntry(store, engine, "a", 40, 0, 0)
	addEntry(store, engine, "b", 40, 0, 0)
	addEntry(store, engine, "c", 40, 0, 0)

	engine.EvictIfNeeded(40)

	// 120 + 40 > 100: evict until 40 fits. Two evictions leave one entry.
	if got := store.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}
	if store.Has("a") || store.Has("b") {
		t.Error("oldest entries should be evicted first")
	}
	if got := engine.Size(); got != 40 {
		t.Errorf("aggregate size = %d, want 40", got)
	}
}

func TestEngine_OversizedCandidateIsBestEffort(t *testing.T) {
	store, _, engine := newEvictionFixture(100, 100, time.Hour, PolicyLRU)

	addEntry(store, engine, "a", 40, 0, 0)

	// A candidate larger than the whole size limit drains the store, then
	// the loop gives up silently.
	engine.EvictIfNeeded(500)

	if got := store.Len(); got != 0 {
		t.Fatalf("Len() = %d, want 0", got)
	}
	if got := engine.Size(); got != 0 {
		t.Errorf("aggregate size = %d, want 0", got)
	}
}

func TestEngine_EvictEntryUsesRecordedSize(t *testing.T) {
	store, stats, engine := newEvictionFixture(100, 1<<20, time.Hour, PolicyLRU)

	addEntry(store, engine, "a", 77, 0, 0)
	engine.EvictEntry("a")

	if got := engine.Size(); got != 0 {
		t.Errorf("aggregate size = %d, want 0", got)
	}
	if got := stats.Snapshot().Evictions; got != 1 {
		t.Errorf("evictions = %d, want 1", got)
	}

	// Unknown keys are ignored.
	engine.EvictEntry("missing")
	if got := engine.Size(); got != 0 {
		t.Errorf("aggregate size after no-op = %d, want 0", got)
	}
}

func TestEngine_Reset(t *testing.T) {
	store, _, engine := newEvictionFixture(100, 1<<20, time.Hour, PolicyLRU)

	addEntry(store, engine, "a", 50, 0, 0)
	engine.Reset()

	if got := engine.Size(); got != 0 {
		t.Errorf("Size() after Reset = %d, want 0", got)
	}
}
