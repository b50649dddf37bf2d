package cache

import (
	"encoding/json"
	"time"
)

// Size estimation constants. The estimate serializes the payload to text
// and assumes a two-byte character width, mirroring wide in-memory string
// representations, plus a flat per-entry bookkeeping overhead.
const (
	bytesPerChar  = 2
	entryOverhead = 100
)

// Entry is one cached query result plus its bookkeeping metadata.
// Entries are owned exclusively by the Store; callers only ever receive
// the payload, never a handle they can use to mutate store internals.
type Entry struct {
	// Data is the materialized result payload.
	Data any
	// Query is the original query text, retained for pattern
	// invalidation.
	Query string
	// Timestamp is the creation time; TTL expiry is measured from it.
	Timestamp time.Time
	// LastAccessed is updated on every read hit.
	LastAccessed time.Time
	// Hits counts reads since creation.
	Hits int64
	// Size is the estimated byte footprint computed at insertion time.
	Size int64
	// Metadata carries free-form side information (column descriptors
	// and the like). The cache itself never interprets it.
	Metadata map[string]any
}

// EstimateSize returns a heuristic byte estimate for a payload. This is
// an admission-control approximation, not a memory measurement: shared
// substructure and compact numeric encodings are not accounted for.
// Payloads that cannot be serialized count only the fixed overhead.
func EstimateSize(payload any) int64 {
	data, err := json.Marshal(payload)
	if err != nil {
		return entryOverhead
	}
	return int64(len(data))*bytesPerChar + entryOverhead
}
