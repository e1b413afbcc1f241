// Package migration provides a file-based schema migration engine for
// relational databases.
//
// The engine applies ordered SQL change-sets to a database exactly once,
// records which change-sets have run in a ledger table, and tolerates
// partial prior application without corrupting state. It supports:
//
//   - Quote- and comment-aware splitting of migration files into statements
//   - One transaction per migration with rollback on fatal errors
//   - Per-statement tolerance of "already exists" class schema conflicts
//   - Idempotent bookkeeping via an insert-or-ignore ledger table
//   - Pluggable dialects (SQLite, MySQL) for DDL and error classification
//
// Migration files live in a single directory and are applied in
// lexicographic filename order, so names should carry a sortable prefix
// such as a date or zero-padded sequence (e.g. "2025-01-07-001-add-users.sql").
// The full filename is the migration's identity in the ledger.
//
// Example usage:
//
//	result, err := migration.Run(ctx, db, "./migrations", migration.SQLiteDialect(), logger)
//	if err != nil {
//		log.Fatalf("migration failed: %v", err)
//	}
package migration
