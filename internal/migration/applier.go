package migration

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"
)

// SQLApplier executes one migration's statements inside a single transaction
// on a dedicated connection.
type SQLApplier struct {
	db      *sql.DB
	ledger  Ledger
	dialect Dialect
	logger  *slog.Logger
}

// NewApplier creates an Applier bound to db. Statement failures are
// classified by the dialect's tolerable-error predicate. A nil logger
// falls back to slog.Default.
func NewApplier(db *sql.DB, ledger Ledger, dialect Dialect, logger *slog.Logger) *SQLApplier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLApplier{
		db:      db,
		ledger:  ledger,
		dialect: dialect,
		logger:  logger,
	}
}

// Apply runs the statements in order inside one transaction. Statements
// whose failure the dialect classifies as tolerable (the change already
// took effect) are logged and skipped; any other failure rolls the whole
// transaction back and surfaces as a MigrationFailure. When every statement
// has been executed or tolerated, the migration is marked applied through
// the same transaction and the transaction commits.
//
// A migration is marked applied even when some or all of its statements
// were tolerated skips.
func (a *SQLApplier) Apply(ctx context.Context, name string, statements []string) (*ApplyResult, error) {
	start := time.Now()

	conn, err := a.db.Conn(ctx)
	if err != nil {
		return nil, NewStorageError("acquire connection", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, NewStorageError("begin transaction", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			a.logger.Error("transaction rollback failed", "migration", name, "error", err)
		}
	}()

	result := &ApplyResult{Name: name}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			if a.dialect.IsTolerable(err) {
				result.Tolerated = append(result.Tolerated, TolerableSchemaConflict{
					Name:      name,
					Statement: stmt,
					Err:       err,
				})
				a.logger.Warn("skipping statement, change already applied",
					"migration", name,
					"statement", truncate(stmt, 120),
					"error", truncate(err.Error(), 200))
				continue
			}
			return nil, NewMigrationFailure(name, stmt, err)
		}
		result.Executed++
	}

	if err := a.ledger.MarkApplied(ctx, tx, name); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, NewStorageError("commit transaction", err)
	}
	committed = true

	result.Duration = time.Since(start)
	return result, nil
}
