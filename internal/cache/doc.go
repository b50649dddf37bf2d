// Package cache implements the query-result cache that sits between a
// query executor and its database.
//
// The cache package is built from four pieces: a key generator that maps
// (query, params) pairs to string keys, an entry store that keeps entries
// in access order, an eviction engine that enforces entry/size/TTL bounds,
// and a statistics tracker. Manager composes them into the contract the
// query layer consumes.
//
// Usage:
//
//	mgr := cache.New(cache.Options{MaxEntries: 500, TTL: time.Minute})
//	if rows, ok := mgr.Get(query, params); ok {
//	    // cache hit
//	}
//	mgr.Set(query, params, rows, nil)
package cache
