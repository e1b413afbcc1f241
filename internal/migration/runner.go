package migration

import (
	"context"
	"database/sql"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Runner orchestrates one full migration pass: it ensures the ledger exists,
// filters out already-applied sources, and drives the applier across the
// remainder in lexicographic name order, halting on the first fatal failure.
type Runner struct {
	store   SourceStore
	ledger  Ledger
	applier Applier
	logger  *slog.Logger
}

// NewRunner wires a Runner from its collaborators. A nil logger falls back
// to slog.Default.
func NewRunner(store SourceStore, ledger Ledger, applier Applier, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		store:   store,
		ledger:  ledger,
		applier: applier,
		logger:  logger,
	}
}

// Run applies all currently unapplied migrations in order. The applied set
// is read once at the start of the run; each migration is applied in its own
// transaction. The run stops at the first fatal failure, leaving earlier
// migrations committed and recorded. Every log line of a run carries its
// RunID.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{RunID: uuid.NewString()}
	logger := r.logger.With("run_id", result.RunID)
	start := time.Now()

	if err := r.ledger.EnsureTable(ctx); err != nil {
		return nil, err
	}
	applied, err := r.ledger.AppliedNames(ctx)
	if err != nil {
		return nil, err
	}

	sources, err := r.store.List()
	if err != nil {
		return nil, err
	}
	sort.Slice(sources, func(i, j int) bool {
		return sources[i].Name < sources[j].Name
	})

	logger.Info("starting migration run",
		"sources", len(sources),
		"already_applied", len(applied))

	for _, src := range sources {
		if applied[src.Name] {
			result.Skipped = append(result.Skipped, src.Name)
			logger.Debug("migration already applied", "migration", src.Name)
			continue
		}

		text, err := r.store.Read(src)
		if err != nil {
			logger.Error("failed to read migration", "migration", src.Name, "error", err)
			return nil, err
		}

		res, err := r.applier.Apply(ctx, src.Name, SplitStatements(text))
		if err != nil {
			logger.Error("migration failed", "migration", src.Name, "error", err)
			return nil, err
		}

		result.Applied = append(result.Applied, src.Name)
		result.Executed += res.Executed
		result.Tolerated += len(res.Tolerated)
		logger.Info("applied migration",
			"migration", src.Name,
			"statements", res.Executed,
			"tolerated", len(res.Tolerated),
			"duration", res.Duration)
	}

	result.Duration = time.Since(start)
	logger.Info("migration run complete",
		"applied", len(result.Applied),
		"skipped", len(result.Skipped),
		"statements", result.Executed,
		"tolerated", result.Tolerated,
		"duration", result.Duration)
	return result, nil
}

// Status reports the ledger records and the pending source names in apply
// order. It mutates nothing beyond ensuring the ledger table exists.
func (r *Runner) Status(ctx context.Context) (*Status, error) {
	if err := r.ledger.EnsureTable(ctx); err != nil {
		return nil, err
	}
	records, err := r.ledger.AppliedRecords(ctx)
	if err != nil {
		return nil, err
	}

	applied := make(map[string]bool, len(records))
	for _, rec := range records {
		applied[rec.Name] = true
	}

	sources, err := r.store.List()
	if err != nil {
		return nil, err
	}

	var pending []string
	for _, src := range sources {
		if !applied[src.Name] {
			pending = append(pending, src.Name)
		}
	}
	sort.Strings(pending)

	return &Status{Applied: records, Pending: pending}, nil
}

// Run performs a complete migration pass against db using the .sql files in
// dir. It is the package's high-level entry point, wiring the directory
// source store, the ledger, and the applier for the given dialect.
func Run(ctx context.Context, db *sql.DB, dir string, dialect Dialect, logger *slog.Logger) (*RunResult, error) {
	ledger := NewLedger(db, dialect)
	applier := NewApplier(db, ledger, dialect, logger)
	return NewRunner(NewDirSource(dir), ledger, applier, logger).Run(ctx)
}
