package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	portssvc "github.com/SscSPs/rental_ledger/internal/core/ports/services"
	"github.com/SscSPs/rental_ledger/internal/dto"
	"github.com/SscSPs/rental_ledger/internal/utils/chartfile"
)

func newAccountsCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage the chart of accounts",
	}
	cmd.AddCommand(newAccountsImportCommand(e), newAccountsBackfillCommand(e))
	return cmd
}

func newAccountsImportCommand(e *env) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create accounts from a CSV or YAML chart file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("opening chart file: %w", err)
			}
			defer f.Close()

			accounts, err := chartfile.ReadAccounts(filepath.Base(file), f)
			if err != nil {
				return fmt.Errorf("reading chart file: %w", err)
			}
			return e.withServices(cmd.Context(), func(svc *portssvc.ServiceContainer) error {
				created, err := svc.Account.ImportAccounts(cmd.Context(), accounts, cliUserID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d accounts\n", created, len(accounts))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "chart file (.csv, .yaml or .yml)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newAccountsBackfillCommand(e *env) *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "backfill-parents",
		Short: "Derive missing parent links from the code prefix convention",
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withServices(cmd.Context(), func(svc *portssvc.ServiceContainer) error {
				changes, err := svc.Account.BackfillParentsFromPrefix(cmd.Context(), apply, cliUserID)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), dto.ParentChangesResponse{Applied: apply, Changes: changes})
			})
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "write the changes instead of only listing them")

	return cmd
}
