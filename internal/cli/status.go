package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/schema-migrator/internal/db"
	"github.com/example/schema-migrator/internal/logging"
	"github.com/example/schema-migrator/internal/migration"
)

func newStatusCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
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

			ledger := migration.NewLedger(handle, dialect)
			applier := migration.NewApplier(handle, ledger, dialect, logger)
			runner := migration.NewRunner(migration.NewDirSource(o.cfg.Dir), ledger, applier, logger)

			status, err := runner.Status(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(status.Applied) == 0 && len(status.Pending) == 0 {
				fmt.Fprintln(out, "no migrations found")
				return nil
			}

			fmt.Fprintf(out, "applied (%d):\n", len(status.Applied))
			for _, rec := range status.Applied {
				fmt.Fprintf(out, "  %s  %s\n", rec.Name, rec.AppliedAt.Format(time.DateTime))
			}
			fmt.Fprintf(out, "pending (%d):\n", len(status.Pending))
			for _, name := range status.Pending {
				fmt.Fprintf(out, "  %s\n", name)
			}
			return nil
		},
	}
}
