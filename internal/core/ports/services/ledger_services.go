package services

import (
	"context"

	"github.com/SscSPs/rental_ledger/internal/core/domain"
	"github.com/SscSPs/rental_ledger/internal/dto"
)

// PostingSvc is the only writer of the ledger
type PostingSvc interface {
	// Post validates and records an entry. A posting whose idempotency key
	// already exists is not an error: the existing entry is returned with
	// Duplicate set.
	Post(ctx context.Context, req domain.PostingRequest, userID string) (*domain.PostResult, error)

	// Reverse records an offsetting adjustment entry for entryID.
	Reverse(ctx context.Context, entryID string, reason string, userID string) (*domain.PostResult, error)
}

// LedgerReaderSvc defines read operations on posted entries
type LedgerReaderSvc interface {
	GetEntry(ctx context.Context, entryID string) (*domain.TransactionEntry, error)
	GetEntryBySource(ctx context.Context, source domain.EntrySource, ref domain.SourceRef, reference string) (*domain.TransactionEntry, error)
	ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}

// LedgerSvcFacade combines all ledger-related service interfaces
type LedgerSvcFacade interface {
	PostingSvc
	LedgerReaderSvc
}
