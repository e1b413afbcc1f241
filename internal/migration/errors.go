package migration

import (
	"errors"
	"fmt"
)

// Sentinel errors for matching failure categories with errors.Is
var (
	// ErrMigrationFailed indicates that a migration statement failed fatally
	ErrMigrationFailed = errors.New("migration execution failed")

	// ErrStorageUnavailable indicates that the ledger or target database
	// cannot be reached or a ledger operation failed
	ErrStorageUnavailable = errors.New("migration storage unavailable")

	// ErrSourceUnreadable indicates that a migration source could not be
	// listed or read
	ErrSourceUnreadable = errors.New("migration source unreadable")
)

// StorageError wraps failures of the ledger or the target database that are
// unrelated to migration content (connectivity, permissions, transaction
// management). StorageError is always fatal for the run.
type StorageError struct {
	Operation string // Operation being performed (ensure table, begin transaction, ...)
	Err       error  // Underlying error
}

// Error implements the error interface
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is matches the ErrStorageUnavailable sentinel
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

// NewStorageError creates a new StorageError with context
func NewStorageError(operation string, err error) *StorageError {
	return &StorageError{
		Operation: operation,
		Err:       err,
	}
}

// TolerableSchemaConflict describes a statement failure meaning the requested
// change already took effect: duplicate column, table already exists,
// duplicate key name, or removal of an already absent field or key. It never
// propagates out of the applier; it is logged and reported in ApplyResult.
type TolerableSchemaConflict struct {
	Name      string // Migration the statement belongs to
	Statement string // The skipped statement
	Err       error  // Underlying engine error
}

// Error implements the error interface
func (e TolerableSchemaConflict) Error() string {
	return fmt.Sprintf("tolerable schema conflict in %s on statement %q: %v", e.Name, truncate(e.Statement, 120), e.Err)
}

// Unwrap returns the underlying error
func (e TolerableSchemaConflict) Unwrap() error {
	return e.Err
}

// MigrationFailure wraps a fatal statement execution error. The enclosing
// transaction is rolled back, the migration is not marked applied, and the
// run halts without attempting later migrations.
type MigrationFailure struct {
	Name      string // Migration that failed
	Statement string // The statement that raised the error
	Err       error  // Underlying engine error
}

// Error implements the error interface
func (e *MigrationFailure) Error() string {
	return fmt.Sprintf("migration %s failed on statement %q: %v", e.Name, truncate(e.Statement, 120), e.Err)
}

// Unwrap returns the underlying error
func (e *MigrationFailure) Unwrap() error {
	return e.Err
}

// Is matches the ErrMigrationFailed sentinel
func (e *MigrationFailure) Is(target error) bool {
	return target == ErrMigrationFailed
}

// NewMigrationFailure creates a new MigrationFailure with context
func NewMigrationFailure(name, statement string, err error) *MigrationFailure {
	return &MigrationFailure{
		Name:      name,
		Statement: statement,
		Err:       err,
	}
}

// SourceReadError wraps filesystem failures while listing or reading
// migration sources. Fatal for the run in which it occurs.
type SourceReadError struct {
	Path      string // File or directory path
	Operation string // Source operation (list, read)
	Err       error  // Underlying error
}

// Error implements the error interface
func (e *SourceReadError) Error() string {
	return fmt.Sprintf("source error during %s of %s: %v", e.Operation, e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *SourceReadError) Unwrap() error {
	return e.Err
}

// Is matches the ErrSourceUnreadable sentinel
func (e *SourceReadError) Is(target error) bool {
	return target == ErrSourceUnreadable
}

// NewSourceReadError creates a new SourceReadError
func NewSourceReadError(path, operation string, err error) *SourceReadError {
	return &SourceReadError{
		Path:      path,
		Operation: operation,
		Err:       err,
	}
}

// truncate bounds statement and error text in log and error output.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
