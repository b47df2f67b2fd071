package services

import (
	portsrepo "github.com/SscSPs/rental_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/rental_ledger/internal/core/ports/services"
	"github.com/SscSPs/rental_ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Balance service first: the chart and the ledger both flush its cache.
	container.Balance = NewBalanceService(
		repos.AccountRepo,
		repos.ReportingRepo,
		WithBalanceCacheSize(cfg.BalanceCacheSize),
		WithBalanceEpsilon(cfg.BalanceEpsilon),
		WithBalancePrefixFallback(cfg.PrefixRollup),
	)

	container.Account = NewAccountService(
		repos.AccountRepo,
		WithPrefixFallback(cfg.PrefixRollup),
		WithChartInvalidator(container.Balance),
	)

	container.Ledger = NewLedgerService(
		repos.LedgerRepo,
		repos.AccountRepo,
		WithDirectory(repos.DirectoryRepo),
		WithBalanceInvalidator(container.Balance),
		WithPostingEpsilon(cfg.BalanceEpsilon),
	)

	container.Reporting = NewReportingService(
		container.Balance,
		repos.ReportingRepo,
		WithReportingEpsilon(cfg.BalanceEpsilon),
	)

	container.DrillDown = NewDrillDownService(
		repos.AccountRepo,
		repos.ReportingRepo,
		repos.LedgerRepo,
		repos.DirectoryRepo,
		WithDrillDownPrefixFallback(cfg.PrefixRollup),
	)

	container.Integrity = NewIntegrityService(repos.IntegrityRepo, cfg.BalanceEpsilon)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade = (*accountService)(nil)
	_ portssvc.LedgerSvcFacade  = (*ledgerService)(nil)
	_ portssvc.BalanceSvc       = (*balanceService)(nil)
)
