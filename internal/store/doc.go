// Package store persists content items and automation settings in SQLite and
// exposes helpers for driving the content lifecycle.
//
// The Store manages database connections, schema initialization, stats
// queries, stuck-item recovery, and status transitions that mirror the
// articles lifecycle enum. A partial unique index on the content hash keeps
// the posted corpus free of duplicates even under concurrent writers, so
// MarkPosted is the single gate through which an item becomes posted.
//
// The database is the system of record; Export writes a human-readable JSON
// snapshot of the corpora for inspection and backup. Schema changes bump the
// version in schema.go; users clear the database to adopt the new schema.
//
// Treat this package as the single source of truth for lifecycle semantics;
// when you add new statuses or metadata fields, update schema.sql and bump
// schemaVersion.
package store
