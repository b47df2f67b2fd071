package services

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/rental_ledger/internal/apperrors"
	"github.com/SscSPs/rental_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/rental_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/rental_ledger/internal/core/ports/services"
	"github.com/SscSPs/rental_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// reportingService builds statements on top of balance snapshots.
type reportingService struct {
	BaseService
	balanceSvc    portssvc.BalanceSvc
	reportingRepo portsrepo.ReportingRepository
	epsilon       decimal.Decimal
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportingEpsilon sets the tolerance of the balance sheet identity.
func WithReportingEpsilon(eps decimal.Decimal) ReportingServiceOption {
	return func(s *reportingService) {
		s.epsilon = eps
	}
}

// NewReportingService creates a new reporting service
func NewReportingService(balanceSvc portssvc.BalanceSvc, reportingRepo portsrepo.ReportingRepository, options ...ReportingServiceOption) portssvc.ReportingService {
	svc := &reportingService{
		balanceSvc:    balanceSvc,
		reportingRepo: reportingRepo,
		epsilon:       accounting.DefaultEpsilon,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ReportingService = (*reportingService)(nil)

func toReportLine(b domain.AccountBalance, chart *domain.Chart) domain.ReportLine {
	acct, _ := chart.Lookup(b.AccountCode)
	line := domain.ReportLine{
		AccountCode: b.AccountCode,
		Name:        b.Name,
		Category:    acct.Category,
		Amount:      b.Net,
	}
	for _, child := range b.Children {
		line.Children = append(line.Children, toReportLine(child, chart))
	}
	return line
}

// section rolls every root of type t up into one statement section. Inactive
// roots appear only while they still carry activity.
func section(snap *domain.BalanceSnapshot, t domain.AccountType) domain.ReportSection {
	sec := domain.ReportSection{Type: t, Lines: []domain.ReportLine{}, Total: decimal.Zero}
	for _, root := range snap.Chart.Roots(t) {
		b := snap.Balance(root.Code)
		if !root.IsActive && b.IsEmpty() {
			continue
		}
		line := toReportLine(b, snap.Chart)
		sec.Lines = append(sec.Lines, line)
		sec.Total = sec.Total.Add(line.Amount)
	}
	return sec
}

func (s *reportingService) BalanceSheet(ctx context.Context, asOf time.Time, basis domain.Basis, residenceID string) (*domain.BalanceSheet, error) {
	snap, err := s.balanceSvc.Snapshot(ctx, domain.LedgerFilter{To: asOf, Basis: basis, ResidenceID: residenceID})
	if err != nil {
		return nil, err
	}

	bs := &domain.BalanceSheet{
		AsOf:        snap.Filter.To,
		Basis:       snap.Filter.Basis,
		ResidenceID: residenceID,
		Assets:      section(snap, domain.Asset),
		Liabilities: section(snap, domain.Liability),
		Equity:      section(snap, domain.Equity),
	}

	earnings := snap.SumRoots(domain.Income).Sub(snap.SumRoots(domain.Expense))
	bs.Equity.Lines = append(bs.Equity.Lines, domain.ReportLine{
		AccountCode: domain.CurrentEarningsCode,
		Name:        "Current Earnings",
		Amount:      earnings,
	})
	bs.Equity.Total = bs.Equity.Total.Add(earnings)

	bs.TotalLiabilitiesAndEquity = bs.Liabilities.Total.Add(bs.Equity.Total)
	bs.Difference = bs.Assets.Total.Sub(bs.TotalLiabilitiesAndEquity)
	bs.Balanced = bs.Difference.Abs().LessThanOrEqual(s.epsilon)
	if !bs.Balanced {
		s.LogWarn(ctx, "Balance sheet is unbalanced",
			slog.String("as_of", bs.AsOf.Format(time.DateOnly)),
			slog.String("basis", string(bs.Basis)),
			slog.String("difference", bs.Difference.StringFixed(2)))
	}
	return bs, nil
}

func (s *reportingService) IncomeStatement(ctx context.Context, from, to time.Time, basis domain.Basis, residenceID string) (*domain.IncomeStatement, error) {
	snap, err := s.balanceSvc.Snapshot(ctx, domain.LedgerFilter{From: &from, To: to, Basis: basis, ResidenceID: residenceID})
	if err != nil {
		return nil, err
	}
	is := &domain.IncomeStatement{
		From:        *snap.Filter.From,
		To:          snap.Filter.To,
		Basis:       snap.Filter.Basis,
		ResidenceID: residenceID,
		Income:      section(snap, domain.Income),
		Expenses:    section(snap, domain.Expense),
	}
	is.NetIncome = is.Income.Total.Sub(is.Expenses.Total)
	return is, nil
}

func (s *reportingService) CashFlow(ctx context.Context, from, to time.Time, residenceID string) (*domain.CashFlow, error) {
	from, to = domain.DateOnly(from), domain.DateOnly(to)
	if err := validateRange(&from, to); err != nil {
		return nil, err
	}

	opening, err := s.balanceSvc.Snapshot(ctx, domain.LedgerFilter{To: from.AddDate(0, 0, -1), Basis: domain.BasisCash, ResidenceID: residenceID})
	if err != nil {
		return nil, err
	}
	chart := opening.Chart

	counterparts, err := s.reportingRepo.CashCounterpartTotals(ctx, from, to, residenceID)
	if err != nil {
		s.LogError(ctx, err, "Failed to aggregate cash counterparts")
		return nil, err
	}
	sort.Slice(counterparts, func(i, j int) bool { return counterparts[i].AccountCode < counterparts[j].AccountCode })

	cf := &domain.CashFlow{
		From:         from,
		To:           to,
		ResidenceID:  residenceID,
		OpeningCash:  opening.SumCodes(chart.CodesWithRole(domain.RoleCash)),
		Inflows:      []domain.CashFlowLine{},
		Outflows:     []domain.CashFlowLine{},
		TotalInflow:  decimal.Zero,
		TotalOutflow: decimal.Zero,
	}
	for _, c := range counterparts {
		acct, _ := chart.Lookup(c.AccountCode)
		if c.Inflow.IsPositive() {
			cf.Inflows = append(cf.Inflows, domain.CashFlowLine{AccountCode: c.AccountCode, Name: acct.Name, Type: acct.Type, Amount: c.Inflow})
			cf.TotalInflow = cf.TotalInflow.Add(c.Inflow)
		}
		if c.Outflow.IsPositive() {
			cf.Outflows = append(cf.Outflows, domain.CashFlowLine{AccountCode: c.AccountCode, Name: acct.Name, Type: acct.Type, Amount: c.Outflow})
			cf.TotalOutflow = cf.TotalOutflow.Add(c.Outflow)
		}
	}
	cf.NetChange = cf.TotalInflow.Sub(cf.TotalOutflow)
	cf.ClosingCash = cf.OpeningCash.Add(cf.NetChange)
	return cf, nil
}

func validateYear(year int) error {
	if year < 1900 || year > 9999 {
		return &apperrors.InvalidPeriodError{Reason: "year out of range"}
	}
	return nil
}

func (s *reportingService) MonthlyBalanceSheets(ctx context.Context, year int, basis domain.Basis, residenceID string) ([]domain.BalanceSheet, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	out := make([]domain.BalanceSheet, 0, 12)
	for _, p := range domain.MonthsOf(year) {
		bs, err := s.BalanceSheet(ctx, p.To, basis, residenceID)
		if err != nil {
			return nil, err
		}
		out = append(out, *bs)
	}
	return out, nil
}

func (s *reportingService) MonthlyIncomeStatements(ctx context.Context, year int, basis domain.Basis, residenceID string) ([]domain.IncomeStatement, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	out := make([]domain.IncomeStatement, 0, 12)
	for _, p := range domain.MonthsOf(year) {
		is, err := s.IncomeStatement(ctx, p.From, p.To, basis, residenceID)
		if err != nil {
			return nil, err
		}
		out = append(out, *is)
	}
	return out, nil
}

func (s *reportingService) MonthlyCashFlows(ctx context.Context, year int, residenceID string) ([]domain.CashFlow, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	out := make([]domain.CashFlow, 0, 12)
	for _, p := range domain.MonthsOf(year) {
		cf, err := s.CashFlow(ctx, p.From, p.To, residenceID)
		if err != nil {
			return nil, err
		}
		out = append(out, *cf)
	}
	return out, nil
}

func (s *reportingService) TrialBalance(ctx context.Context, asOf time.Time, basis domain.Basis, residenceID string) ([]domain.TrialBalanceRow, error) {
	snap, err := s.balanceSvc.Snapshot(ctx, domain.LedgerFilter{To: asOf, Basis: basis, ResidenceID: residenceID})
	if err != nil {
		return nil, err
	}
	rows := []domain.TrialBalanceRow{}
	for _, acct := range snap.Chart.Accounts() {
		own := snap.Own(acct.Code)
		if own.Debit.IsZero() && own.Credit.IsZero() {
			continue
		}
		rows = append(rows, domain.TrialBalanceRow{
			AccountCode: acct.Code,
			AccountName: acct.Name,
			AccountType: acct.Type,
			Debit:       own.Debit,
			Credit:      own.Credit,
		})
	}
	return rows, nil
}
