// Package config loads the migrate tool's settings from an optional TOML
// file merged with MIGRATE_* environment overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds everything the tool needs to reach a database and find its
// migration sources. Precedence per field: TOML > environment > default.
type Config struct {
	Driver    string       `toml:"driver"`
	DSN       string       `toml:"dsn"`
	Dir       string       `toml:"dir"`
	LogLevel  string       `toml:"log_level"`
	LogFormat string       `toml:"log_format"`
	SQLite    SQLiteConfig `toml:"sqlite"`
	Pool      PoolConfig   `toml:"pool"`
}

// SQLiteConfig tunes the pragmas appended to sqlite DSNs.
type SQLiteConfig struct {
	JournalMode   string `toml:"journal_mode"`
	BusyTimeoutMS int    `toml:"busy_timeout_ms"`
	ForeignKeys   bool   `toml:"foreign_keys"`
}

// PoolConfig tunes the database/sql connection pool.
type PoolConfig struct {
	MaxOpenConns    int      `toml:"max_open_conns"`
	MaxIdleConns    int      `toml:"max_idle_conns"`
	ConnMaxLifetime Duration `toml:"conn_max_lifetime"`
}

// Duration wraps time.Duration so TOML values like "30m" decode directly.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Load reads the TOML file at path (skipped when path is empty), then
// applies environment overrides and defaults. Call Validate once any
// command-line overrides have been layered on top.
func Load(path string) (*Config, error) {
	var cfg Config
	var md toml.MetaData
	if path != "" {
		var err error
		md, err = toml.DecodeFile(path, &cfg)
		if err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}

		// Unknown keys are usually typos.
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			slog.Warn("unknown keys in config file", "keys", strings.Join(keys, ", "))
		}
	}

	strDefault(&cfg.Driver, "MIGRATE_DRIVER", "sqlite")
	strDefault(&cfg.DSN, "MIGRATE_DSN", "")
	strDefault(&cfg.Dir, "MIGRATE_DIR", "./migrations")
	strDefault(&cfg.LogLevel, "MIGRATE_LOG_LEVEL", "info")
	strDefault(&cfg.LogFormat, "MIGRATE_LOG_FORMAT", "text")

	if cfg.SQLite.JournalMode == "" {
		cfg.SQLite.JournalMode = "WAL"
	}
	if !md.IsDefined("sqlite", "busy_timeout_ms") {
		cfg.SQLite.BusyTimeoutMS = 5000
	}
	if !md.IsDefined("sqlite", "foreign_keys") {
		cfg.SQLite.ForeignKeys = true
	}
	if !md.IsDefined("pool", "max_open_conns") {
		cfg.Pool.MaxOpenConns = 5
	}
	if !md.IsDefined("pool", "max_idle_conns") {
		cfg.Pool.MaxIdleConns = 2
	}
	if !md.IsDefined("pool", "conn_max_lifetime") {
		cfg.Pool.ConnMaxLifetime = Duration{Duration: 30 * time.Minute}
	}

	return &cfg, nil
}

// Validate checks the merged configuration, reporting every problem at once.
func (c *Config) Validate() error {
	invalid := make([]string, 0, 2)

	switch c.Driver {
	case "sqlite", "mysql":
	default:
		invalid = append(invalid, fmt.Sprintf("driver %q (want sqlite or mysql)", c.Driver))
	}
	if strings.TrimSpace(c.DSN) == "" {
		invalid = append(invalid, "dsn must not be empty")
	}
	if strings.TrimSpace(c.Dir) == "" {
		invalid = append(invalid, "dir must not be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		invalid = append(invalid, fmt.Sprintf("log_level %q (want debug, info, warn or error)", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		invalid = append(invalid, fmt.Sprintf("log_format %q (want text or json)", c.LogFormat))
	}
	if c.SQLite.BusyTimeoutMS < 0 {
		invalid = append(invalid, fmt.Sprintf("sqlite.busy_timeout_ms %d (must not be negative)", c.SQLite.BusyTimeoutMS))
	}
	if c.Pool.MaxOpenConns <= 0 {
		invalid = append(invalid, fmt.Sprintf("pool.max_open_conns %d (must be positive)", c.Pool.MaxOpenConns))
	}
	if c.Pool.MaxIdleConns <= 0 {
		invalid = append(invalid, fmt.Sprintf("pool.max_idle_conns %d (must be positive)", c.Pool.MaxIdleConns))
	}
	if c.Pool.ConnMaxLifetime.Duration < 0 {
		invalid = append(invalid, "pool.conn_max_lifetime must not be negative")
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(invalid, "; "))
	}
	return nil
}

// strDefault fills *dst from envKey if *dst is empty (not set in TOML),
// then falls back to def.
func strDefault(dst *string, envKey, def string) {
	if *dst == "" {
		*dst = os.Getenv(envKey)
	}
	if *dst == "" {
		*dst = def
	}
}
