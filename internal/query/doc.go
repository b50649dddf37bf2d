// Package query runs SQL statements through a result cache.
//
// The Executor is the cache's collaborator: it decides which statements
// are cacheable (a textual read-only gate), materializes rows into
// cache-friendly payloads, and fires annotation-driven invalidation after
// writes. Database access goes through the Runner interface, with
// implementations for database/sql and pgx.
package query
