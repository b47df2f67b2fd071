package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/rental_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/rental_ledger/internal/core/ports/services"
	"github.com/SscSPs/rental_ledger/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccount(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) ListAccounts(ctx context.Context, includeInactive bool) ([]domain.Account, error) {
	args := m.Called(ctx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) GetChart(ctx context.Context) (*domain.Chart, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chart), args.Error(1)
}
func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) UpdateAccount(ctx context.Context, code string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, code, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) DeactivateAccount(ctx context.Context, code string, userID string) error {
	args := m.Called(ctx, code, userID)
	return args.Error(0)
}
func (m *MockAccountService) ImportAccounts(ctx context.Context, accounts []domain.Account, userID string) (int, error) {
	args := m.Called(ctx, accounts, userID)
	return args.Int(0), args.Error(1)
}
func (m *MockAccountService) BackfillParentsFromPrefix(ctx context.Context, apply bool, userID string) ([]domain.ParentChange, error) {
	args := m.Called(ctx, apply, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ParentChange), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock BalanceService ---
type MockBalanceService struct {
	mock.Mock
}

func (m *MockBalanceService) GetBalance(ctx context.Context, q domain.BalanceQuery) (*domain.AccountBalance, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountBalance), args.Error(1)
}
func (m *MockBalanceService) Snapshot(ctx context.Context, filter domain.LedgerFilter) (*domain.BalanceSnapshot, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceSnapshot), args.Error(1)
}
func (m *MockBalanceService) Reconcile(ctx context.Context, from, to time.Time, residenceID string) (*domain.Reconciliation, error) {
	args := m.Called(ctx, from, to, residenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reconciliation), args.Error(1)
}
func (m *MockBalanceService) InvalidateFrom(date time.Time) { m.Called(date) }
func (m *MockBalanceService) InvalidateAll()                { m.Called() }

var _ portssvc.BalanceSvc = (*MockBalanceService)(nil)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Post(ctx context.Context, req domain.PostingRequest, userID string) (*domain.PostResult, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostResult), args.Error(1)
}
func (m *MockLedgerService) Reverse(ctx context.Context, entryID string, reason string, userID string) (*domain.PostResult, error) {
	args := m.Called(ctx, entryID, reason, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostResult), args.Error(1)
}
func (m *MockLedgerService) GetEntry(ctx context.Context, entryID string) (*domain.TransactionEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionEntry), args.Error(1)
}
func (m *MockLedgerService) GetEntryBySource(ctx context.Context, source domain.EntrySource, ref domain.SourceRef, reference string) (*domain.TransactionEntry, error) {
	args := m.Called(ctx, source, ref, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionEntry), args.Error(1)
}
func (m *MockLedgerService) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListEntriesResponse), args.Error(1)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) BalanceSheet(ctx context.Context, asOf time.Time, basis domain.Basis, residenceID string) (*domain.BalanceSheet, error) {
	args := m.Called(ctx, asOf, basis, residenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceSheet), args.Error(1)
}
func (m *MockReportingService) IncomeStatement(ctx context.Context, from, to time.Time, basis domain.Basis, residenceID string) (*domain.IncomeStatement, error) {
	args := m.Called(ctx, from, to, basis, residenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IncomeStatement), args.Error(1)
}
func (m *MockReportingService) CashFlow(ctx context.Context, from, to time.Time, residenceID string) (*domain.CashFlow, error) {
	args := m.Called(ctx, from, to, residenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashFlow), args.Error(1)
}
func (m *MockReportingService) MonthlyBalanceSheets(ctx context.Context, year int, basis domain.Basis, residenceID string) ([]domain.BalanceSheet, error) {
	args := m.Called(ctx, year, basis, residenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BalanceSheet), args.Error(1)
}
func (m *MockReportingService) MonthlyIncomeStatements(ctx context.Context, year int, basis domain.Basis, residenceID string) ([]domain.IncomeStatement, error) {
	args := m.Called(ctx, year, basis, residenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IncomeStatement), args.Error(1)
}
func (m *MockReportingService) MonthlyCashFlows(ctx context.Context, year int, residenceID string) ([]domain.CashFlow, error) {
	args := m.Called(ctx, year, residenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CashFlow), args.Error(1)
}
func (m *MockReportingService) TrialBalance(ctx context.Context, asOf time.Time, basis domain.Basis, residenceID string) ([]domain.TrialBalanceRow, error) {
	args := m.Called(ctx, asOf, basis, residenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrialBalanceRow), args.Error(1)
}

var _ portssvc.ReportingService = (*MockReportingService)(nil)

// --- Mock DrillDownService ---
type MockDrillDownService struct {
	mock.Mock
}

func (m *MockDrillDownService) DrillDown(ctx context.Context, q domain.DrillDownQuery) (*domain.DrillDownResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DrillDownResult), args.Error(1)
}

var _ portssvc.DrillDownSvc = (*MockDrillDownService)(nil)

// --- Mock IntegrityService ---
type MockIntegrityService struct {
	mock.Mock
}

func (m *MockIntegrityService) Scan(ctx context.Context) (*domain.IntegrityReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IntegrityReport), args.Error(1)
}

var _ portssvc.IntegritySvc = (*MockIntegrityService)(nil)
