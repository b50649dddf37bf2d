package cache

// Snapshot is a point-in-time copy of the cache statistics. Hits, misses,
// evictions and total queries are cumulative; entry count and total size
// are gauges.
type Snapshot struct {
	Hits         int64   `json:"hits"`
	Misses       int64   `json:"misses"`
	Evictions    int64   `json:"evictions"`
	TotalQueries int64   `json:"totalQueries"`
	HitRate      float64 `json:"hitRate"`
	EntryCount   int     `json:"entryCount"`
	TotalSize    int64   `json:"totalSize"`
}

// Tracker accumulates cache statistics. When disabled every method is a
// no-op and Snapshot returns zeros. Tracker does no locking of its own;
// Manager serializes access.
type Tracker struct {
	enabled bool
	snap    Snapshot
}

// NewTracker creates a tracker; a disabled tracker records nothing.
func NewTracker(enabled bool) *Tracker {
	return &Tracker{enabled: enabled}
}

// RecordHit counts one lookup that found a live entry.
func (t *Tracker) RecordHit() {
	if !t.enabled {
		return
	}
	t.snap.Hits++
	t.snap.TotalQueries++
	t.recalcHitRate()
}

// RecordMiss counts one lookup that found nothing.
func (t *Tracker) RecordMiss() {
	if !t.enabled {
		return
	}
	t.snap.Misses++
	t.snap.TotalQueries++
	t.recalcHitRate()
}

// RecordEviction counts one forced removal. Total queries is unaffected.
func (t *Tracker) RecordEviction() {
	if !t.enabled {
		return
	}
	t.snap.Evictions++
}

// UpdateSize sets the point-in-time gauges.
func (t *Tracker) UpdateSize(totalSize int64, entryCount int) {
	if !t.enabled {
		return
	}
	t.snap.TotalSize = totalSize
	t.snap.EntryCount = entryCount
}

// Snapshot returns a copy of the current statistics, never a live
// reference.
func (t *Tracker) Snapshot() Snapshot {
	return t.snap
}

// Reset zeroes all counters and gauges.
func (t *Tracker) Reset() {
	t.snap = Snapshot{}
}

// Export serializes the counters and gauges as a flat field-value map,
// suitable for persisting statistics across manager instances.
func (t *Tracker) Export() map[string]float64 {
	return map[string]float64{
		"hits":         float64(t.snap.Hits),
		"misses":       float64(t.snap.Misses),
		"evictions":    float64(t.snap.Evictions),
		"totalQueries": float64(t.snap.TotalQueries),
		"hitRate":      t.snap.HitRate,
		"entryCount":   float64(t.snap.EntryCount),
		"totalSize":    float64(t.snap.TotalSize),
	}
}

// Import merges the provided fields over the current state, then
// recomputes the hit rate. Fields absent from the map keep their current
// values.
func (t *Tracker) Import(fields map[string]float64) {
	if v, ok := fields["hits"]; ok {
		t.snap.Hits = int64(v)
	}
	if v, ok := fields["misses"]; ok {
		t.snap.Misses = int64(v)
	}
	if v, ok := fields["evictions"]; ok {
		t.snap.Evictions = int64(v)
	}
	if v, ok := fields["totalQueries"]; ok {
		t.snap.TotalQueries = int64(v)
	}
	if v, ok := fields["entryCount"]; ok {
		t.snap.EntryCount = int(v)
	}
	if v, ok := fields["totalSize"]; ok {
		t.snap.TotalSize = int64(v)
	}
	t.recalcHitRate()
}

func (t *Tracker) recalcHitRate() {
	if t.snap.TotalQueries == 0 {
		t.snap.HitRate = 0
		return
	}
	t.snap.HitRate = float64(t.snap.Hits) / float64(t.snap.TotalQueries)
}
