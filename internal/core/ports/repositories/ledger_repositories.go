package repositories

import (
	"context"

	"github.com/SscSPs/rental_ledger/internal/core/domain"
)

// EntryReader defines read operations for ledger entries
type EntryReader interface {
	// FindEntryByID retrieves an entry with its lines. Returns apperrors.ErrNotFound when absent.
	FindEntryByID(ctx context.Context, entryID string) (*domain.TransactionEntry, error)

	// FindEntryByIdempotencyKey retrieves the entry recorded under key.
	FindEntryByIdempotencyKey(ctx context.Context, key string) (*domain.TransactionEntry, error)

	// ListEntries returns a page of entries newest first, and a token for the next page.
	ListEntries(ctx context.Context, filter domain.EntryFilter, limit int, nextToken *string) ([]domain.TransactionEntry, *string, error)
}

// EntryWriter defines the single write path of the ledger
type EntryWriter interface {
	// SaveEntry atomically inserts the transaction header (if new), the entry
	// and its lines, and applies the counterparty balance adjustment. When
	// the entry's idempotency key already exists nothing is written and a
	// *apperrors.DuplicatePostingError carrying the existing entry id is returned.
	SaveEntry(ctx context.Context, txn domain.Transaction, entry domain.TransactionEntry, adj *domain.CounterpartyAdjustment) error
}

// LedgerRepositoryFacade combines all ledger-related repository interfaces
type LedgerRepositoryFacade interface {
	EntryReader
	EntryWriter
}
