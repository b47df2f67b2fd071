package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/rental_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReportingRepository defines the aggregate reads reports are built from.
// Implementations never write.
type ReportingRepository interface {
	// SumByAccount returns raw debit and credit totals per account for the
	// lines selected by filter.
	SumByAccount(ctx context.Context, filter domain.LedgerFilter) ([]domain.AccountTotals, error)

	// CashCounterpartTotals aggregates the non-cash lines of cash-affecting
	// entries dated within [from, to].
	CashCounterpartTotals(ctx context.Context, from, to time.Time, residenceID string) ([]domain.CounterpartTotals, error)

	// ListLines returns the lines posted to codes in (date, created_at, line_no) order.
	ListLines(ctx context.Context, codes []string, filter domain.LedgerFilter, sources []domain.EntrySource) ([]domain.LedgerLine, error)
}

// IntegrityRepository exposes the checks run by the integrity scanner.
type IntegrityRepository interface {
	// FindEntryTotalMismatches returns entries whose stored totals or line
	// sums disagree by more than tolerance.
	FindEntryTotalMismatches(ctx context.Context, tolerance decimal.Decimal) ([]domain.EntryTotalsCheck, error)

	// LedgerTotals returns the entry count and grand line totals.
	LedgerTotals(ctx context.Context) (int, domain.AccountTotals, error)
}
