package services

import (
	"context"
	"time"

	"github.com/SscSPs/rental_ledger/internal/core/domain"
)

// ReportingService defines operations for generating financial reports
type ReportingService interface {
	// BalanceSheet generates a balance sheet as of a specific date
	BalanceSheet(ctx context.Context, asOf time.Time, basis domain.Basis, residenceID string) (*domain.BalanceSheet, error)

	// IncomeStatement generates an income statement for an inclusive period
	IncomeStatement(ctx context.Context, from, to time.Time, basis domain.Basis, residenceID string) (*domain.IncomeStatement, error)

	// CashFlow generates a cash-flow statement from cash-affecting entries only
	CashFlow(ctx context.Context, from, to time.Time, residenceID string) (*domain.CashFlow, error)

	// MonthlyBalanceSheets returns one balance sheet per month end of year
	MonthlyBalanceSheets(ctx context.Context, year int, basis domain.Basis, residenceID string) ([]domain.BalanceSheet, error)

	// MonthlyIncomeStatements returns one income statement per month of year
	MonthlyIncomeStatements(ctx context.Context, year int, basis domain.Basis, residenceID string) ([]domain.IncomeStatement, error)

	// MonthlyCashFlows returns one cash-flow statement per month of year
	MonthlyCashFlows(ctx context.Context, year int, residenceID string) ([]domain.CashFlow, error)

	// TrialBalance lists raw debit and credit totals per account
	TrialBalance(ctx context.Context, asOf time.Time, basis domain.Basis, residenceID string) ([]domain.TrialBalanceRow, error)
}

// DrillDownSvc resolves the entries behind a report figure
type DrillDownSvc interface {
	DrillDown(ctx context.Context, q domain.DrillDownQuery) (*domain.DrillDownResult, error)
}

// IntegritySvc scans the ledger for historical inconsistencies
type IntegritySvc interface {
	Scan(ctx context.Context) (*domain.IntegrityReport, error)
}
