package cache

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTracker_HitRate(t *testing.T) {
	tr := NewTracker(true)

	if got := tr.Snapshot().HitRate; got != 0 {
		t.Fatalf("hit rate with no queries = %v, want 0", got)
	}

	for i := 0; i < 3; i++ {
		tr.RecordHit()
	}
	tr.RecordMiss()

	snap := tr.Snapshot()
	if snap.Hits != 3 || snap.Misses != 1 || snap.TotalQueries != 4 {
		t.Fatalf("counters = %+v, want 3 hits, 1 miss, 4 total", snap)
	}
	if got, want := snap.HitRate, 0.75; got != want {
		t.Fatalf("hit rate = %v, want %v", got, want)
	}
}

func TestTracker_EvictionsDoNotCountQueries(t *testing.T) {
	tr := NewTracker(true)
	tr.RecordEviction()
	tr.RecordEviction()

	snap := tr.Snapshot()
	if snap.Evictions != 2 {
		t.Errorf("evictions = %d, want 2", snap.Evictions)
	}
	if snap.TotalQueries != 0 {
		t.Errorf("totalQueries = %d, want 0", snap.TotalQueries)
	}
}

func TestTracker_Gauges(t *testing.T) {
	tr := NewTracker(true)
	tr.UpdateSize(2048, 7)

	snap := tr.Snapshot()
	if snap.TotalSize != 2048 || snap.EntryCount != 7 {
		t.Fatalf("gauges = %+v, want totalSize 2048, entryCount 7", snap)
	}
}

func TestTracker_SnapshotIsCopy(t *testing.T) {
	tr := NewTracker(true)
	tr.RecordHit()

	snap := tr.Snapshot()
	snap.Hits = 99

	if got := tr.Snapshot().Hits; got != 1 {
		t.Fatalf("tracker mutated through snapshot copy: hits = %d", got)
	}
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker(true)
	tr.RecordHit()
	tr.RecordMiss()
	tr.RecordEviction()
	tr.UpdateSize(100, 1)

	tr.Reset()

	if diff := cmp.Diff(Snapshot{}, tr.Snapshot()); diff != "" {
		t.Fatalf("snapshot after Reset (-want +got):\n%s", diff)
	}
}

func TestTracker_ExportImportRoundTrip(t *testing.T) {
	tr := NewTracker(true)
	tr.RecordHit()
	tr.RecordHit()
	tr.RecordMiss()
	tr.RecordEviction()
	tr.UpdateSize(512, 2)

	exported := tr.Export()

	restored := NewTracker(true)
	restored.Import(exported)

	if diff := cmp.Diff(tr.Snapshot(), restored.Snapshot()); diff != "" {
		t.Fatalf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestTracker_ImportPartialMerge(t *testing.T) {
	tr := NewTracker(true)
	tr.RecordHit()
	tr.RecordMiss()

	// Only hits provided: misses keep their value, hit rate recomputed.
	tr.Import(map[string]float64{"hits": 3, "totalQueries": 4})

	snap := tr.Snapshot()
	if snap.Hits != 3 {
		t.Errorf("hits = %d, want 3", snap.Hits)
	}
	if snap.Misses != 1 {
		t.Errorf("misses = %d, want 1", snap.Misses)
	}
	if got, want := snap.HitRate, 0.75; got != want {
		t.Errorf("hit rate = %v, want %v", got, want)
	}
}

func TestTracker_Disabled(t *testing.T) {
	tr := NewTracker(false)
	tr.RecordHit()
	tr.RecordMiss()
	tr.RecordEviction()
	tr.UpdateSize(100, 1)

	if diff := cmp.Diff(Snapshot{}, tr.Snapshot()); diff != "" {
		t.Fatalf("disabled tracker recorded state (-want +got):\n%s", diff)
	}
}
