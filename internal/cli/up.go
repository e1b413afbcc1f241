package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/schema-migrator/internal/db"
	"github.com/example/schema-migrator/internal/logging"
	"github.com/example/schema-migrator/internal/migration"
)

func newUpCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := logging.FromContext(ctx)

			dialect, err := migration.DialectByName(o.cfg.Driver)
			if err != nil {
				return err
			}

			handle, err := db.Open(ctx, o.cfg)
			if err != nil {
				return err
			}
			defer handle.Close()

			result, err := migration.Run(ctx, handle, o.cfg.Dir, dialect, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "applied %d migration(s), skipped %d, executed %d statement(s) in %s\n",
				len(result.Applied), len(result.Skipped), result.Executed,
				result.Duration.Round(time.Millisecond))
			if result.Tolerated > 0 {
				fmt.Fprintf(out, "tolerated %d already-applied statement(s)\n", result.Tolerated)
			}
			return nil
		},
	}
}
