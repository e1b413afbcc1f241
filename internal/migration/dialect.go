package migration

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// SQLiteDialect returns the Dialect for SQLite targets
func SQLiteDialect() Dialect {
	return sqliteDialect{}
}

// MySQLDialect returns the Dialect for MySQL targets
func MySQLDialect() Dialect {
	return mysqlDialect{}
}

// DialectByName resolves a configured driver name to its Dialect
func DialectByName(name string) (Dialect, error) {
	switch name {
	case "sqlite":
		return sqliteDialect{}, nil
	case "mysql":
		return mysqlDialect{}, nil
	default:
		return nil, fmt.Errorf("unknown dialect %q (supported: sqlite, mysql)", name)
	}
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string {
	return "sqlite"
}

func (sqliteDialect) CreateLedgerSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	name TEXT PRIMARY KEY,
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, table)
}

func (sqliteDialect) InsertIgnoreSQL(table string) string {
	return fmt.Sprintf("INSERT OR IGNORE INTO %s (name) VALUES (?)", table)
}

// Message fragments SQLite reports for changes that already took effect.
// The driver surfaces SQLite errors as plain text, so classification is
// by case-insensitive substring.
var sqliteTolerable = []string{
	"duplicate column name", // ALTER TABLE ADD COLUMN of an existing column
	"already exists",        // CREATE TABLE / CREATE INDEX of an existing object
	"no such column",        // ALTER TABLE DROP COLUMN of an absent column
	"no such index",         // DROP INDEX of an absent index
}

func (sqliteDialect) IsTolerable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, fragment := range sqliteTolerable {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string {
	return "mysql"
}

// The 191 character key fits within InnoDB's 767 byte index limit under
// utf8mb4.
func (mysqlDialect) CreateLedgerSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	name VARCHAR(191) PRIMARY KEY,
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, table)
}

func (mysqlDialect) InsertIgnoreSQL(table string) string {
	return fmt.Sprintf("INSERT IGNORE INTO %s (name) VALUES (?)", table)
}

// MySQL server error numbers for changes that already took effect
const (
	mysqlErrTableExists   = 1050 // ER_TABLE_EXISTS_ERROR
	mysqlErrDupColumn     = 1060 // ER_DUP_FIELDNAME
	mysqlErrDupKeyName    = 1061 // ER_DUP_KEYNAME
	mysqlErrCantDropField = 1091 // ER_CANT_DROP_FIELD_OR_KEY
)

func (mysqlDialect) IsTolerable(err error) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}
	switch mysqlErr.Number {
	case mysqlErrTableExists, mysqlErrDupColumn, mysqlErrDupKeyName, mysqlErrCantDropField:
		return true
	}
	return false
}
