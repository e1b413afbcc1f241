package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// LedgerTable is the name of the tracking table recording applied migrations
const LedgerTable = "schema_migrations"

// SQLLedger is the database-backed Ledger implementation. Reads go through
// the injected *sql.DB; MarkApplied writes through whatever Executor the
// caller supplies, which lets the applier record a migration inside its own
// transaction.
type SQLLedger struct {
	db      *sql.DB
	dialect Dialect
	table   string
}

// NewLedger creates a Ledger over db using the dialect's SQL forms
func NewLedger(db *sql.DB, dialect Dialect) *SQLLedger {
	return &SQLLedger{
		db:      db,
		dialect: dialect,
		table:   LedgerTable,
	}
}

// EnsureTable idempotently creates the tracking table if it is absent.
// Safe to call on every run.
func (l *SQLLedger) EnsureTable(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, l.dialect.CreateLedgerSQL(l.table)); err != nil {
		return NewStorageError("ensure ledger table", err)
	}
	return nil
}

// AppliedNames returns the set of migration names currently recorded
func (l *SQLLedger) AppliedNames(ctx context.Context) (map[string]bool, error) {
	rows, err := l.db.QueryContext(ctx, "SELECT name FROM "+l.table+" ORDER BY applied_at ASC")
	if err != nil {
		return nil, NewStorageError("query applied names", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, NewStorageError("scan applied name", err)
		}
		applied[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("iterate applied names", err)
	}
	return applied, nil
}

// AppliedRecords returns all ledger records ordered by application time
func (l *SQLLedger) AppliedRecords(ctx context.Context) ([]AppliedMigration, error) {
	rows, err := l.db.QueryContext(ctx, "SELECT name, applied_at FROM "+l.table+" ORDER BY applied_at ASC, name ASC")
	if err != nil {
		return nil, NewStorageError("query applied records", err)
	}
	defer rows.Close()

	var records []AppliedMigration
	for rows.Next() {
		var (
			rec AppliedMigration
			raw any
		)
		if err := rows.Scan(&rec.Name, &raw); err != nil {
			return nil, NewStorageError("scan applied record", err)
		}
		rec.AppliedAt, err = parseTimestamp(raw)
		if err != nil {
			return nil, NewStorageError("parse applied_at", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("iterate applied records", err)
	}
	return records, nil
}

// MarkApplied records name with insert-or-ignore semantics: a record that
// already exists is a no-op, not an error. This makes repeated runs over a
// partially migrated database safe. exec is typically the applier's open
// transaction.
func (l *SQLLedger) MarkApplied(ctx context.Context, exec Executor, name string) error {
	if _, err := exec.ExecContext(ctx, l.dialect.InsertIgnoreSQL(l.table), name); err != nil {
		return NewStorageError("mark migration applied", err)
	}
	return nil
}

// timestampLayouts covers the applied_at representations of the supported
// engines: SQLite's CURRENT_TIMESTAMP text, RFC 3339 variants, and the
// space-separated datetime MySQL returns without parseTime.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// parseTimestamp normalizes the driver-specific applied_at value. Drivers
// differ here: some return time.Time directly, others raw text or bytes.
func parseTimestamp(v any) (time.Time, error) {
	switch ts := v.(type) {
	case time.Time:
		return ts, nil
	case string:
		return parseTimestampString(ts)
	case []byte:
		return parseTimestampString(string(ts))
	default:
		return time.Time{}, fmt.Errorf("unsupported applied_at type %T", v)
	}
}

func parseTimestampString(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported applied_at value %q", s)
}
