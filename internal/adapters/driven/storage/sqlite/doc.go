// Package sqlite provides a SQLite-based implementation of the document
// and scheduler stores.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements two store interfaces
// through a single database connection:
//
//   - DocumentStore: documents, processing state, vectors and verdicts
//   - SchedulerStore: scheduled task state and run history
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Timestamps are stored as Unix milliseconds, vectors as little-endian float32
// blobs and verdicts as JSON.
//
// # Data Location
//
// By default, the database is stored at ~/.plagscan/data/plagscan.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. Read-modify-write updates
// are serialised within the process; SQLite in WAL mode handles the rest.
package sqlite
