package services

import (
	"context"

	"github.com/SscSPs/rental_ledger/internal/core/domain"
	"github.com/SscSPs/rental_ledger/internal/dto"
)

// AccountReaderSvc defines read operations on the chart of accounts
type AccountReaderSvc interface {
	// GetAccount retrieves a single account by code
	GetAccount(ctx context.Context, code string) (*domain.Account, error)

	// ListAccounts lists the chart ordered by code
	ListAccounts(ctx context.Context, includeInactive bool) ([]domain.Account, error)

	// GetChart returns an indexed snapshot of the whole chart
	GetChart(ctx context.Context) (*domain.Chart, error)
}

// AccountWriterSvc defines write operations on the chart of accounts
type AccountWriterSvc interface {
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)
	UpdateAccount(ctx context.Context, code string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount marks an account inactive. Accounts are never deleted.
	DeactivateAccount(ctx context.Context, code string, userID string) error

	// ImportAccounts creates accounts in parent-first order and skips codes that already exist.
	ImportAccounts(ctx context.Context, accounts []domain.Account, userID string) (int, error)

	// BackfillParentsFromPrefix derives explicit parent links from the legacy
	// code-prefix convention. Nothing is written unless apply is set.
	BackfillParentsFromPrefix(ctx context.Context, apply bool, userID string) ([]domain.ParentChange, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
