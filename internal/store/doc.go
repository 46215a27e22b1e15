// Package store executes compiled filters against SQLite.
//
// Each schema entity maps to one table (EnsureSchema creates it). Rows are
// plain maps keyed by field name; Insert fills in missing ids and the
// discriminator, Find compiles a filter.Builder through queryir and
// querysql and scans the matching rows.
//
// # Column types
//
//   - string: TEXT
//   - int:    INTEGER
//   - bool:   INTEGER (0/1), returned as bool
//
// Non-nullable fields are NOT NULL. The primary key is TEXT and defaults
// to a UUIDv7 so ids sort by creation time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// A Store holds a single connection and is safe for concurrent use through
// database/sql.
package store
