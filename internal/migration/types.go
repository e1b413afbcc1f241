package migration

import (
	"context"
	"database/sql"
	"time"
)

// Source represents one migration change-set discovered at the source location
type Source struct {
	Name string // Identity of the migration, the bare filename (e.g. "2025-01-07-001-add-users.sql")
	Path string // Filesystem path used to read the migration's SQL text
}

// AppliedMigration represents one ledger record for a migration that has run
type AppliedMigration struct {
	Name      string    // Migration name as recorded in the ledger
	AppliedAt time.Time // When the migration was first successfully processed
}

// ApplyResult describes the outcome of applying a single migration
type ApplyResult struct {
	Name      string                    // Migration that was applied
	Executed  int                       // Statements that executed successfully
	Tolerated []TolerableSchemaConflict // Statements skipped because the change already took effect
	Duration  time.Duration             // Wall time spent inside the transaction
}

// RunResult summarizes one full migration run
type RunResult struct {
	RunID     string        // Unique identifier attached to all log lines of this run
	Applied   []string      // Migrations applied during this run, in order
	Skipped   []string      // Migrations skipped because the ledger already records them
	Executed  int           // Total statements executed across all applied migrations
	Tolerated int           // Total statements skipped as tolerable conflicts
	Duration  time.Duration // Wall time of the whole run
}

// Status reports the ledger state alongside the pending work
type Status struct {
	Applied []AppliedMigration // Ledger records ordered by application time
	Pending []string           // Source names not yet recorded, in apply order
}

// Executor is the subset of database/sql needed to write ledger records.
// Both *sql.Tx and *sql.DB satisfy it, which lets MarkApplied run inside
// the applier's transaction.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Ledger maintains the durable record of which migrations have been applied
type Ledger interface {
	// EnsureTable idempotently creates the tracking table if it is absent
	EnsureTable(ctx context.Context) error

	// AppliedNames returns the set of migration names currently recorded
	AppliedNames(ctx context.Context) (map[string]bool, error)

	// AppliedRecords returns all ledger records ordered by application time
	AppliedRecords(ctx context.Context) ([]AppliedMigration, error)

	// MarkApplied records name using insert-or-ignore semantics; a record
	// that already exists is a no-op, not an error. The write goes through
	// exec so it can share the applier's transaction.
	MarkApplied(ctx context.Context, exec Executor, name string) error
}

// Applier executes one migration's statements as a unit
type Applier interface {
	// Apply runs the statements inside a single transaction on a dedicated
	// connection, tolerating already-exists class failures per statement
	// and marking the migration applied on completion.
	Apply(ctx context.Context, name string, statements []string) (*ApplyResult, error)
}

// SourceStore discovers migration sources and reads their contents
type SourceStore interface {
	// List returns the available sources in no particular order. A source
	// location that does not exist yields zero sources and no error.
	List() ([]Source, error)

	// Read returns the raw SQL text of one source
	Read(src Source) (string, error)
}

// Dialect adapts the engine to one database engine's SQL forms and error
// vocabulary. The tolerable-error predicate is deliberately pluggable:
// the "already exists" classification is tied to each engine's own error
// codes and messages.
type Dialect interface {
	// Name identifies the dialect ("sqlite", "mysql")
	Name() string

	// CreateLedgerSQL returns the idempotent DDL creating the ledger table
	CreateLedgerSQL(table string) string

	// InsertIgnoreSQL returns the insert statement for recording a name,
	// ignoring duplicate-key conflicts
	InsertIgnoreSQL(table string) string

	// IsTolerable reports whether a statement execution error means the
	// requested change already took effect (duplicate column, table
	// already exists, duplicate key name, drop of an absent field or key)
	IsTolerable(err error) bool
}
