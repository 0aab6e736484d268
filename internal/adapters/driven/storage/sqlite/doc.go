// Package sqlite provides the SQLite-backed run history store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. The store keeps one row
// per batch run plus one row per attempted record, so past runs can be listed
// and inspected after the fact.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files, and each up migration records its own version in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.qbsync/data/history.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
