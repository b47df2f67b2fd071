package repositories

import (
	"context"

	"github.com/SscSPs/rental_ledger/internal/core/domain"
)

// AccountReader defines read operations for the chart of accounts
type AccountReader interface {
	// FindAccountByCode retrieves one account. Returns apperrors.ErrNotFound when absent.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByCodes retrieves the accounts that exist among codes, keyed by code.
	FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)

	// ListAccounts returns the chart ordered by code.
	ListAccounts(ctx context.Context, includeInactive bool) ([]domain.Account, error)

	// CountLinesForAccount returns how many posted lines reference code.
	CountLinesForAccount(ctx context.Context, code string) (int64, error)
}

// AccountWriter defines write operations for the chart of accounts
type AccountWriter interface {
	// SaveAccount inserts a new account. Returns apperrors.ErrDuplicate on code collision.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount overwrites the mutable columns of an existing account.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// SetParentCodes applies parent assignments in a single transaction.
	SetParentCodes(ctx context.Context, changes []domain.ParentChange, userID string) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
