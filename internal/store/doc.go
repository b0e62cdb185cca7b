// Package store persists subjects, their days, sleep intervals, and raw data
// points.
//
// The Store wraps database/sql with two dialects: SQLite (modernc.org/sqlite,
// one database per subject directory) and PostgreSQL (lib/pq, one shared
// database). Schemas are embedded per dialect and guarded by a schema_version
// row; schema changes bump schemaVersion and require re-ingesting subjects.
//
// Timestamps are stored as naive UTC wall-clock text alongside their UTC
// offsets in seconds, the same two-field representation used by
// internal/sleep. Records are created once by CreateSubject and afterwards
// updated in place. Manual sleep intervals are the only rows ever deleted.
//
// Lookups that match nothing return an error wrapping ErrNotFound so callers
// can fall back to ingestion instead of failing.
package store
