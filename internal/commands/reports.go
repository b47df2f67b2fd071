package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/SscSPs/rental_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/rental_ledger/internal/core/ports/services"
	"github.com/SscSPs/rental_ledger/internal/dto"
)

// reportFlags are shared by the commands that read balances.
type reportFlags struct {
	asOf        string
	from        string
	to          string
	basis       string
	residenceID string
}

func (f *reportFlags) bindAsOf(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.asOf, "as-of", "", "report date (YYYY-MM-DD), defaults to today")
	f.bindCommon(cmd)
}

func (f *reportFlags) bindPeriod(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "end date (YYYY-MM-DD), inclusive")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	f.bindCommon(cmd)
}

func (f *reportFlags) bindCommon(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.basis, "basis", string(domain.BasisAccrual), "cash or accrual")
	cmd.Flags().StringVar(&f.residenceID, "residence", "", "restrict to one residence")
}

func (f *reportFlags) query() dto.ReportQuery {
	return dto.ReportQuery{AsOf: f.asOf, From: f.from, To: f.to, Basis: f.basis, ResidenceID: f.residenceID}
}

func newBalanceCommand(e *env) *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "balance CODE",
		Short: "Show the rolled-up balance of one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := flags.query()
			basis, err := domain.ParseBasis(q.Basis)
			if err != nil {
				return err
			}
			asOf, err := q.AsOfDate(time.Now())
			if err != nil {
				return err
			}
			from, err := dto.ParseOptionalDate("from", q.From)
			if err != nil {
				return err
			}
			return e.withServices(cmd.Context(), func(svc *portssvc.ServiceContainer) error {
				bal, err := svc.Balance.GetBalance(cmd.Context(), domain.BalanceQuery{
					AccountCode: args[0],
					From:        from,
					AsOf:        asOf,
					Basis:       basis,
					ResidenceID: q.ResidenceID,
				})
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), dto.ToAccountBalanceResponse(bal, e.cfg.Currency))
			})
		},
	}

	flags.bindAsOf(cmd)
	cmd.Flags().StringVar(&flags.from, "from", "", "only activity on or after this date")

	return cmd
}

func newReportCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print financial statements as JSON",
	}
	cmd.AddCommand(newBalanceSheetCommand(e), newIncomeStatementCommand(e))
	return cmd
}

func newBalanceSheetCommand(e *env) *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "balance-sheet",
		Short: "Assets, liabilities and equity as of a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := flags.query()
			basis, err := domain.ParseBasis(q.Basis)
			if err != nil {
				return err
			}
			asOf, err := q.AsOfDate(time.Now())
			if err != nil {
				return err
			}
			return e.withServices(cmd.Context(), func(svc *portssvc.ServiceContainer) error {
				bs, err := svc.Reporting.BalanceSheet(cmd.Context(), asOf, basis, q.ResidenceID)
				if err != nil {
					return err
				}
				if !bs.Balanced {
					e.logger.Warn("Balance sheet does not balance", slog.String("difference", bs.Difference.String()))
				}
				return writeJSON(cmd.OutOrStdout(), dto.ToBalanceSheetResponse(bs, e.cfg.Currency))
			})
		},
	}

	flags.bindAsOf(cmd)

	return cmd
}

func newIncomeStatementCommand(e *env) *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "income-statement",
		Short: "Revenue and expenses over a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := flags.query()
			basis, err := domain.ParseBasis(q.Basis)
			if err != nil {
				return err
			}
			from, to, err := q.Period()
			if err != nil {
				return err
			}
			return e.withServices(cmd.Context(), func(svc *portssvc.ServiceContainer) error {
				is, err := svc.Reporting.IncomeStatement(cmd.Context(), from, to, basis, q.ResidenceID)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), dto.ToIncomeStatementResponse(is, e.cfg.Currency))
			})
		},
	}

	flags.bindPeriod(cmd)

	return cmd
}

func newIntegrityCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "integrity",
		Short: "Scan the ledger for unbalanced or inconsistent entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withServices(cmd.Context(), func(svc *portssvc.ServiceContainer) error {
				report, err := svc.Integrity.Scan(cmd.Context())
				if err != nil {
					return err
				}
				if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
				if len(report.Warnings) > 0 {
					return fmt.Errorf("%d integrity warnings", len(report.Warnings))
				}
				return nil
			})
		},
	}
}
