// Package cli wires the migrate command tree: flag handling, configuration
// loading, and the logger every subcommand shares.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/example/schema-migrator/internal/config"
	"github.com/example/schema-migrator/internal/logging"
)

// Version is the build version string, overridden at build time via
// -ldflags "-X .../internal/cli.Version=v1.2.3".
var Version = "dev"

type options struct {
	configPath string
	driver     string
	dsn        string
	dir        string
	logLevel   string
	logFormat  string

	cfg *config.Config
}

// New builds the root migrate command with all subcommands attached.
func New() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL schema migrations",
		Long: `migrate applies plain .sql migration files to a database, tracking
applied files in a ledger table so each file runs exactly once.

Files are applied in lexicographic filename order; name them so that
order matches intent, e.g. 2025-01-31-001-create-users.sql.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Only commands that touch the database need configuration.
			switch cmd.Name() {
			case "up", "status":
				return o.complete(cmd)
			}
			return nil
		},
	}

	addGlobalFlags(root.PersistentFlags(), o)
	root.AddCommand(newUpCommand(o), newStatusCommand(o), newVersionCommand())
	return root
}

func addGlobalFlags(fs *pflag.FlagSet, o *options) {
	fs.StringVarP(&o.configPath, "config", "c", "", "path to a TOML config file")
	fs.StringVar(&o.driver, "driver", "", "database driver (sqlite or mysql)")
	fs.StringVar(&o.dsn, "dsn", "", "database DSN")
	fs.StringVar(&o.dir, "dir", "", "directory containing .sql migration files")
	fs.StringVar(&o.logLevel, "log-level", "", "log level (debug, info, warn or error)")
	fs.StringVar(&o.logFormat, "log-format", "", "log format (text or json)")
}

// complete merges config file, environment and flags, validates the result,
// and attaches the configured logger to the command context.
func (o *options) complete(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	if o.driver != "" {
		cfg.Driver = o.driver
	}
	if o.dsn != "" {
		cfg.DSN = o.dsn
	}
	if o.dir != "" {
		cfg.Dir = o.dir
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.logFormat != "" {
		cfg.LogFormat = o.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	cmd.SetContext(logging.ContextWithLogger(cmd.Context(), logger))
	return nil
}
