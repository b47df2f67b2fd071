package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/rental_ledger/internal/apperrors"
	"github.com/SscSPs/rental_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/rental_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/rental_ledger/internal/core/ports/services"
	"github.com/SscSPs/rental_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// balanceService computes balances straight from ledger lines. It never
// reads a stored running balance.
type balanceService struct {
	BaseService
	accountRepo    portsrepo.AccountReader
	reportingRepo  portsrepo.ReportingRepository
	cache          *balanceCache
	epsilon        decimal.Decimal
	prefixFallback bool
}

// BalanceServiceOption is a functional option for configuring the balance service
type BalanceServiceOption func(*balanceService)

// WithBalanceCacheSize sets the number of memoized balances. Zero disables caching.
func WithBalanceCacheSize(size int) BalanceServiceOption {
	return func(s *balanceService) {
		s.cache = newBalanceCache(size)
	}
}

// WithBalanceEpsilon sets the tolerance used by reconciliation.
func WithBalanceEpsilon(eps decimal.Decimal) BalanceServiceOption {
	return func(s *balanceService) {
		s.epsilon = eps
	}
}

// WithBalancePrefixFallback enables the legacy code-prefix parent convention.
func WithBalancePrefixFallback(enabled bool) BalanceServiceOption {
	return func(s *balanceService) {
		s.prefixFallback = enabled
	}
}

// NewBalanceService creates a new balance service
func NewBalanceService(accountRepo portsrepo.AccountReader, reportingRepo portsrepo.ReportingRepository, options ...BalanceServiceOption) portssvc.BalanceSvc {
	svc := &balanceService{
		accountRepo:   accountRepo,
		reportingRepo: reportingRepo,
		epsilon:       accounting.DefaultEpsilon,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.BalanceSvc = (*balanceService)(nil)

func normalizeBasis(b domain.Basis) (domain.Basis, error) {
	return domain.ParseBasis(string(b))
}

func validateRange(from *time.Time, to time.Time) error {
	if to.IsZero() {
		return &apperrors.InvalidPeriodError{Reason: "end date is required"}
	}
	if from != nil && from.After(to) {
		return &apperrors.InvalidPeriodError{Reason: "from is after to"}
	}
	return nil
}

func (s *balanceService) GetBalance(ctx context.Context, q domain.BalanceQuery) (*domain.AccountBalance, error) {
	basis, err := normalizeBasis(q.Basis)
	if err != nil {
		return nil, err
	}
	q.Basis = basis
	q.AsOf = domain.DateOnly(q.AsOf)
	if q.From != nil {
		from := domain.DateOnly(*q.From)
		q.From = &from
	}
	if err := validateRange(q.From, q.AsOf); err != nil {
		return nil, err
	}

	if cached, ok := s.cache.get(q); ok {
		s.LogDebug(ctx, "Balance cache hit", slog.String("account_code", q.AccountCode))
		return &cached, nil
	}
	gen := s.cache.generation()

	chart, err := loadChart(ctx, s.accountRepo, s.prefixFallback)
	if err != nil {
		s.LogError(ctx, err, "Failed to load chart for balance")
		return nil, err
	}
	if _, ok := chart.Lookup(q.AccountCode); !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", q.AccountCode))
	}

	filter := domain.LedgerFilter{
		From:         q.From,
		To:           q.AsOf,
		Basis:        q.Basis,
		ResidenceID:  q.ResidenceID,
		AccountCodes: chart.Subtree(q.AccountCode),
	}
	totals, err := s.reportingRepo.SumByAccount(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum ledger lines", slog.String("account_code", q.AccountCode))
		return nil, err
	}

	balance := domain.NewBalanceSnapshot(chart, filter, totals).Balance(q.AccountCode)
	if !s.cache.put(q, balance, gen) {
		s.LogDebug(ctx, "Balance changed while computing; not cached", slog.String("account_code", q.AccountCode))
	}
	return &balance, nil
}

func (s *balanceService) Snapshot(ctx context.Context, filter domain.LedgerFilter) (*domain.BalanceSnapshot, error) {
	basis, err := normalizeBasis(filter.Basis)
	if err != nil {
		return nil, err
	}
	filter.Basis = basis
	filter.To = domain.DateOnly(filter.To)
	if filter.From != nil {
		from := domain.DateOnly(*filter.From)
		filter.From = &from
	}
	if err := validateRange(filter.From, filter.To); err != nil {
		return nil, err
	}

	chart, err := loadChart(ctx, s.accountRepo, s.prefixFallback)
	if err != nil {
		s.LogError(ctx, err, "Failed to load chart for snapshot")
		return nil, err
	}
	totals, err := s.reportingRepo.SumByAccount(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum ledger lines for snapshot")
		return nil, err
	}
	return domain.NewBalanceSnapshot(chart, filter, totals), nil
}

func (s *balanceService) Reconcile(ctx context.Context, from, to time.Time, residenceID string) (*domain.Reconciliation, error) {
	from, to = domain.DateOnly(from), domain.DateOnly(to)
	if err := validateRange(&from, to); err != nil {
		return nil, err
	}

	accrual, err := s.Snapshot(ctx, domain.LedgerFilter{From: &from, To: to, Basis: domain.BasisAccrual, ResidenceID: residenceID})
	if err != nil {
		return nil, err
	}
	cash, err := s.Snapshot(ctx, domain.LedgerFilter{From: &from, To: to, Basis: domain.BasisCash, ResidenceID: residenceID})
	if err != nil {
		return nil, err
	}
	chart := accrual.Chart

	rec := &domain.Reconciliation{
		From:              from,
		To:                to,
		ResidenceID:       residenceID,
		AccrualNetIncome:  accrual.SumRoots(domain.Income).Sub(accrual.SumRoots(domain.Expense)),
		CashNetIncome:     cash.SumRoots(domain.Income).Sub(cash.SumRoots(domain.Expense)),
		CashNetFlow:       accrual.SumCodes(chart.CodesWithRole(domain.RoleCash)),
		ReceivablesChange: accrual.SumCodes(chart.CodesWithRole(domain.RoleReceivable)),
		PayablesChange:    accrual.SumCodes(chart.CodesWithRole(domain.RolePayable)),
	}
	rec.Difference = rec.AccrualNetIncome.Sub(rec.CashNetFlow)
	rec.Explained = rec.ReceivablesChange.Sub(rec.PayablesChange)
	rec.Unexplained = rec.Difference.Sub(rec.Explained)
	rec.Balanced = rec.Unexplained.Abs().LessThanOrEqual(s.epsilon)

	if !rec.Balanced {
		s.LogWarn(ctx, "Cash/accrual reconciliation has an unexplained difference",
			slog.String("unexplained", rec.Unexplained.StringFixed(2)),
			slog.String("from", from.Format(time.DateOnly)),
			slog.String("to", to.Format(time.DateOnly)))
	}
	return rec, nil
}

func (s *balanceService) InvalidateFrom(date time.Time) {
	s.cache.invalidateFrom(date)
}

func (s *balanceService) InvalidateAll() {
	s.cache.purge()
}

// isNotFound reports whether err means a record is absent.
func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
