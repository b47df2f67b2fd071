package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	portssvc "github.com/SscSPs/rental_ledger/internal/core/ports/services"
	"github.com/SscSPs/rental_ledger/internal/core/services"
	"github.com/SscSPs/rental_ledger/internal/platform/config"
	"github.com/SscSPs/rental_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/rental_ledger/pkg/database"
)

// cliUserID is recorded as the author of changes made from the command line.
const cliUserID = "ledgerctl"

// env carries what every subcommand needs once the config is loaded.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	e := &env{}
	rootCmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Administer the rental ledger",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			level := new(slog.LevelVar)
			if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
				return fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
			}
			e.cfg = cfg
			e.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			return nil
		},
	}

	rootCmd.AddCommand(
		newMigrateCommand(e),
		newAccountsCommand(e),
		newBalanceCommand(e),
		newReportCommand(e),
		newIntegrityCommand(e),
	)

	return rootCmd
}

// withServices opens a pool, runs fn against the service layer and closes the pool.
func (e *env) withServices(ctx context.Context, fn func(*portssvc.ServiceContainer) error) error {
	pool, err := database.NewPgxPool(ctx, e.cfg.DatabaseURL, true)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.ClosePgxPool(pool)
	return fn(services.NewServiceContainer(e.cfg, pgsql.NewRepositoryProvider(pool)))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
