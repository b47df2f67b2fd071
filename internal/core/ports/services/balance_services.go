package services

import (
	"context"
	"time"

	"github.com/SscSPs/rental_ledger/internal/core/domain"
)

// BalanceSvc computes rolled-up account balances
type BalanceSvc interface {
	// GetBalance returns the balance of one account including its active descendants
	GetBalance(ctx context.Context, q domain.BalanceQuery) (*domain.AccountBalance, error)

	// Snapshot aggregates every account for filter and returns a rollup view
	Snapshot(ctx context.Context, filter domain.LedgerFilter) (*domain.BalanceSnapshot, error)

	// Reconcile explains the gap between accrual net income and cash movement over [from, to]
	Reconcile(ctx context.Context, from, to time.Time, residenceID string) (*domain.Reconciliation, error)

	// InvalidateFrom drops cached balances as of date or later
	InvalidateFrom(date time.Time)

	// InvalidateAll drops every cached balance
	InvalidateAll()
}
