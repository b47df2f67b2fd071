package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SscSPs/rental_ledger/pkg/database"
)

func newMigrateCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate up|down",
		Short:     "Apply all pending migrations, or roll back the latest one",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(database.MigrateUp), string(database.MigrateDown)},
		RunE: func(cmd *cobra.Command, args []string) error {
			changed, err := database.Migrate(e.cfg.DatabaseURL, e.cfg.MigrationsPath, database.MigrationDirection(args[0]), e.logger)
			if err != nil {
				return err
			}
			if !changed {
				fmt.Fprintln(cmd.OutOrStdout(), "no change")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s\n", args[0])
			return nil
		},
	}
	return cmd
}
