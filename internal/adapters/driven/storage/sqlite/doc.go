// Package sqlite provides a unified SQLite-based implementation of the local store ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - RecordStore: Per-resource mirror of server collections
//   - OperationQueue: Pending mutation intents (pending_operations)
//   - SettingsStore: Flat key-value local state (settings)
//   - IDMapStore: Local id to server id mappings (id_mappings)
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Every resource shares the records table, partitioned by its resource column.
//
// # Data Location
//
// By default, the database is stored at ~/.swapsync/data/swapsync.db
//
// # Thread Safety
//
// All operations are thread-safe. Each write runs in its own transaction; SQLite
// in WAL mode provides the locking.
package sqlite
