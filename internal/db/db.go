// Package db opens and configures database handles for the supported
// drivers.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/example/schema-migrator/internal/config"
)

const pingTimeout = 10 * time.Second

// Open builds a pooled database handle for cfg, verifying connectivity with
// a ping before returning.
func Open(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	var (
		driver string
		dsn    string
		err    error
	)
	switch cfg.Driver {
	case "sqlite":
		driver, dsn = "sqlite", sqliteDSN(cfg.DSN, cfg.SQLite)
	case "mysql":
		driver = "mysql"
		dsn, err = mysqlDSN(cfg.DSN)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}

	handle, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", cfg.Driver, err)
	}

	if cfg.Pool.MaxOpenConns > 0 {
		handle.SetMaxOpenConns(cfg.Pool.MaxOpenConns)
	}
	if cfg.Pool.MaxIdleConns > 0 {
		handle.SetMaxIdleConns(cfg.Pool.MaxIdleConns)
	}
	if cfg.Pool.ConnMaxLifetime.Duration > 0 {
		handle.SetConnMaxLifetime(cfg.Pool.ConnMaxLifetime.Duration)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := handle.PingContext(pingCtx); err != nil {
		handle.Close()
		return nil, fmt.Errorf("pinging %s database: %w", cfg.Driver, err)
	}
	return handle, nil
}

// sqliteDSN appends the configured pragmas as query parameters so every
// pooled connection picks them up.
func sqliteDSN(dsn string, cfg config.SQLiteConfig) string {
	pragmas := make([]string, 0, 3)
	if cfg.JournalMode != "" {
		pragmas = append(pragmas, fmt.Sprintf("_pragma=journal_mode(%s)", cfg.JournalMode))
	}
	if cfg.BusyTimeoutMS > 0 {
		pragmas = append(pragmas, fmt.Sprintf("_pragma=busy_timeout(%d)", cfg.BusyTimeoutMS))
	}
	if cfg.ForeignKeys {
		pragmas = append(pragmas, "_pragma=foreign_keys(1)")
	}
	if len(pragmas) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(pragmas, "&")
}

// mysqlDSN normalizes the DSN so timestamp columns scan as time.Time.
func mysqlDSN(dsn string) (string, error) {
	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parsing mysql dsn: %w", err)
	}
	parsed.ParseTime = true
	return parsed.FormatDSN(), nil
}
