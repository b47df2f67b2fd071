package pgsql

import (
	portsrepo "github.com/SscSPs/rental_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:   newPgxAccountRepository(dbPool),
		LedgerRepo:    newPgxLedgerRepository(dbPool),
		ReportingRepo: newReportingRepository(dbPool),
		IntegrityRepo: newIntegrityRepository(dbPool),
		DirectoryRepo: newPgxDirectoryRepository(dbPool),
	}
}
