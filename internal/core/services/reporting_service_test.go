package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/rental_ledger/internal/apperrors"
	"github.com/SscSPs/rental_ledger/internal/core/domain"
	"github.com/SscSPs/rental_ledger/internal/core/services"
	"github.com/stretchr/testify/suite"
)

type ReportingServiceTestSuite struct {
	suite.Suite
	h   *ledgerHarness
	ctx context.Context
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.h = newLedgerHarness()
	suite.ctx = context.Background()
}

// postRentCycle records the January accrual and its February settlement.
func (suite *ReportingServiceTestSuite) postRentCycle() {
	suite.h.mustPost(suite.T(), rentAccrual("300"))
	suite.h.mustPost(suite.T(), rentPayment("300"))
}

func (suite *ReportingServiceTestSuite) TestAccrualThenPaymentScenario() {
	suite.postRentCycle()

	jan, err := suite.h.reporting.IncomeStatement(suite.ctx, day("2025-01-01"), day("2025-01-31"), domain.BasisAccrual, "")
	suite.Require().NoError(err)
	assertDec(suite.T(), "300", jan.Income.Total)
	assertDec(suite.T(), "300", jan.NetIncome)

	janCash, err := suite.h.reporting.CashFlow(suite.ctx, day("2025-01-01"), day("2025-01-31"), "")
	suite.Require().NoError(err)
	assertDec(suite.T(), "0", janCash.TotalInflow)
	assertDec(suite.T(), "0", janCash.NetChange)

	febCash, err := suite.h.reporting.CashFlow(suite.ctx, day("2025-02-01"), day("2025-02-28"), "")
	suite.Require().NoError(err)
	assertDec(suite.T(), "300", febCash.TotalInflow)
	suite.Require().Len(febCash.Inflows, 1)
	suite.Equal("1100", febCash.Inflows[0].AccountCode)
	assertDec(suite.T(), "0", febCash.OpeningCash)
	assertDec(suite.T(), "300", febCash.ClosingCash)

	feb, err := suite.h.reporting.IncomeStatement(suite.ctx, day("2025-02-01"), day("2025-02-28"), domain.BasisAccrual, "")
	suite.Require().NoError(err)
	assertDec(suite.T(), "0", feb.Income.Total)

	ar, err := suite.h.balance.GetBalance(suite.ctx, domain.BalanceQuery{AccountCode: "1100", AsOf: day("2025-02-06"), Basis: domain.BasisAccrual})
	suite.Require().NoError(err)
	assertDec(suite.T(), "0", ar.Net)
}

func (suite *ReportingServiceTestSuite) TestBalanceSheetIdentity() {
	suite.postRentCycle()
	suite.h.mustPost(suite.T(), domain.PostingRequest{
		Source:       domain.SourceExpenseApproval,
		SourceRef:    domain.ExpenseRef{ExpenseID: "e-1"},
		Counterparty: domain.VendorRef{VendorID: "v-acme"},
		Date:         day("2025-02-10"),
		Description:  "Burst pipe repair",
		Lines:        []domain.PostingLine{debit("5000-01", "120"), credit("2000", "120")},
	})

	for _, basis := range []domain.Basis{domain.BasisAccrual, domain.BasisCash} {
		for _, asOf := range []string{"2024-12-31", "2025-01-15", "2025-02-28"} {
			bs, err := suite.h.reporting.BalanceSheet(suite.ctx, day(asOf), basis, "")
			suite.Require().NoError(err)
			suite.True(bs.Balanced, "%s %s difference %s", basis, asOf, bs.Difference)
			assertDec(suite.T(), bs.Assets.Total.String(), bs.TotalLiabilitiesAndEquity)
		}
	}

	bs, err := suite.h.reporting.BalanceSheet(suite.ctx, day("2025-02-28"), domain.BasisAccrual, "")
	suite.Require().NoError(err)
	assertDec(suite.T(), "300", bs.Assets.Total)
	assertDec(suite.T(), "120", bs.Liabilities.Total)
	last := bs.Equity.Lines[len(bs.Equity.Lines)-1]
	suite.Equal(domain.CurrentEarningsCode, last.AccountCode)
	assertDec(suite.T(), "180", last.Amount)

	// 1000-01 rolls into 1000 through the prefix convention.
	suite.Equal("1000", bs.Assets.Lines[0].AccountCode)
	assertDec(suite.T(), "300", bs.Assets.Lines[0].Amount)
	suite.Require().Len(bs.Assets.Lines[0].Children, 1)
	suite.Equal("1000-01", bs.Assets.Lines[0].Children[0].AccountCode)
}

func (suite *ReportingServiceTestSuite) TestRollupAdditivityAcrossDeactivation() {
	suite.h.mustPost(suite.T(), domain.PostingRequest{
		Source: domain.SourceManual, Date: day("2025-01-05"), Description: "Float",
		Lines: []domain.PostingLine{debit("1000", "10"), debit("1000-01", "40"), credit("3000", "50")},
	})

	parent, err := suite.h.balance.GetBalance(suite.ctx, domain.BalanceQuery{AccountCode: "1000", AsOf: day("2025-01-31")})
	suite.Require().NoError(err)
	assertDec(suite.T(), "10", parent.Own)
	assertDec(suite.T(), "50", parent.Net)
	suite.Require().Len(parent.Children, 1)
	assertDec(suite.T(), parent.Own.Add(parent.Children[0].Net).String(), parent.Net)

	suite.Require().NoError(suite.h.account.DeactivateAccount(suite.ctx, "1000-01", testUser))
	after, err := suite.h.balance.GetBalance(suite.ctx, domain.BalanceQuery{AccountCode: "1000", AsOf: day("2025-01-31")})
	suite.Require().NoError(err)
	assertDec(suite.T(), "50", after.Net)
	suite.Require().Len(after.Children, 1)
	suite.Equal("1000-01", after.Children[0].AccountCode)
}

func (suite *ReportingServiceTestSuite) TestDeactivatedAccountKeepsBalanceSheetBalanced() {
	suite.postRentCycle()
	asOf := day("2025-02-28")

	before, err := suite.h.reporting.BalanceSheet(suite.ctx, asOf, domain.BasisAccrual, "")
	suite.Require().NoError(err)
	suite.True(before.Balanced)

	suite.Require().NoError(suite.h.account.DeactivateAccount(suite.ctx, "1000-01", testUser))
	suite.Require().NoError(suite.h.account.DeactivateAccount(suite.ctx, "1000", testUser))

	after, err := suite.h.reporting.BalanceSheet(suite.ctx, asOf, domain.BasisAccrual, "")
	suite.Require().NoError(err)
	suite.True(after.Balanced, "difference %s", after.Difference)
	assertDec(suite.T(), before.Assets.Total.String(), after.Assets.Total)
	for _, line := range after.Assets.Lines {
		suite.NotEqual("9999", line.AccountCode, "inactive accounts without activity stay hidden")
	}

	cf, err := suite.h.reporting.CashFlow(suite.ctx, day("2025-01-01"), asOf, "")
	suite.Require().NoError(err)
	assertDec(suite.T(), "300", cf.ClosingCash)
}

func (suite *ReportingServiceTestSuite) TestBalanceCacheInvalidatedByPosting() {
	suite.h.mustPost(suite.T(), rentAccrual("300"))
	q := domain.BalanceQuery{AccountCode: "1100", AsOf: day("2025-01-31")}

	first, err := suite.h.balance.GetBalance(suite.ctx, q)
	suite.Require().NoError(err)
	assertDec(suite.T(), "300", first.Net)
	calls := suite.h.store.sumCalls

	_, err = suite.h.balance.GetBalance(suite.ctx, q)
	suite.Require().NoError(err)
	suite.Equal(calls, suite.h.store.sumCalls, "second read should be served from cache")

	late := rentAccrual("100")
	late.Reference = "RENT-late-fee"
	late.Date = day("2025-01-15")
	suite.h.mustPost(suite.T(), late)

	after, err := suite.h.balance.GetBalance(suite.ctx, q)
	suite.Require().NoError(err)
	assertDec(suite.T(), "400", after.Net)
}

// sumHookStore runs afterSum once, after totals are read and before they are
// returned.
type sumHookStore struct {
	*fakeStore
	afterSum func()
}

func (s *sumHookStore) SumByAccount(ctx context.Context, filter domain.LedgerFilter) ([]domain.AccountTotals, error) {
	totals, err := s.fakeStore.SumByAccount(ctx, filter)
	if hook := s.afterSum; hook != nil {
		s.afterSum = nil
		hook()
	}
	return totals, err
}

func (suite *ReportingServiceTestSuite) TestBalanceNotCachedWhenPostingLandsMidQuery() {
	hooked := &sumHookStore{fakeStore: suite.h.store}
	balance := services.NewBalanceService(suite.h.store, hooked, services.WithBalanceCacheSize(16))
	ledger := services.NewLedgerService(suite.h.store, suite.h.store,
		services.WithDirectory(suite.h.store),
		services.WithBalanceInvalidator(balance),
		services.WithIDGenerator(&seqIDs{}),
		services.WithLedgerClock(fixedClock))
	hooked.afterSum = func() {
		_, err := ledger.Post(suite.ctx, rentAccrual("300"), testUser)
		suite.Require().NoError(err)
	}

	q := domain.BalanceQuery{AccountCode: "1100", AsOf: day("2025-01-31")}
	stale, err := balance.GetBalance(suite.ctx, q)
	suite.Require().NoError(err)
	assertDec(suite.T(), "0", stale.Net)

	fresh, err := balance.GetBalance(suite.ctx, q)
	suite.Require().NoError(err)
	assertDec(suite.T(), "300", fresh.Net)
}

func (suite *ReportingServiceTestSuite) TestCashBasisExcludesNonCashEntries() {
	suite.postRentCycle()
	suite.h.mustPost(suite.T(), domain.PostingRequest{
		Source: domain.SourcePayment, Reference: "walk-in-1", Date: day("2025-02-12"),
		Description: "Parking fee received from visitor",
		Lines:       []domain.PostingLine{debit("1000-01", "25"), credit("4000", "25")},
	})

	accrual, err := suite.h.reporting.IncomeStatement(suite.ctx, day("2025-01-01"), day("2025-02-28"), domain.BasisAccrual, "")
	suite.Require().NoError(err)
	cash, err := suite.h.reporting.IncomeStatement(suite.ctx, day("2025-01-01"), day("2025-02-28"), domain.BasisCash, "")
	suite.Require().NoError(err)
	assertDec(suite.T(), "325", accrual.Income.Total)
	assertDec(suite.T(), "25", cash.Income.Total)
}

func (suite *ReportingServiceTestSuite) TestReconciliation() {
	suite.postRentCycle()

	jan, err := suite.h.balance.Reconcile(suite.ctx, day("2025-01-01"), day("2025-01-31"), "")
	suite.Require().NoError(err)
	assertDec(suite.T(), "300", jan.AccrualNetIncome)
	assertDec(suite.T(), "0", jan.CashNetFlow)
	assertDec(suite.T(), "300", jan.Difference)
	assertDec(suite.T(), "300", jan.ReceivablesChange)
	assertDec(suite.T(), "0", jan.Unexplained)
	suite.True(jan.Balanced)

	feb, err := suite.h.balance.Reconcile(suite.ctx, day("2025-02-01"), day("2025-02-28"), "")
	suite.Require().NoError(err)
	assertDec(suite.T(), "0", feb.AccrualNetIncome)
	assertDec(suite.T(), "300", feb.CashNetFlow)
	assertDec(suite.T(), "-300", feb.ReceivablesChange)
	suite.True(feb.Balanced)
}

func (suite *ReportingServiceTestSuite) TestEmptyResidence() {
	suite.postRentCycle()

	bs, err := suite.h.reporting.BalanceSheet(suite.ctx, day("2025-02-28"), domain.BasisAccrual, "no-such-residence")
	suite.Require().NoError(err)
	suite.True(bs.Balanced)
	assertDec(suite.T(), "0", bs.Assets.Total)
	suite.NotEmpty(bs.Assets.Lines, "empty residences keep the report shape")

	cf, err := suite.h.reporting.CashFlow(suite.ctx, day("2025-02-01"), day("2025-02-28"), "no-such-residence")
	suite.Require().NoError(err)
	suite.Empty(cf.Inflows)
}

func (suite *ReportingServiceTestSuite) TestMonthlyReports() {
	suite.postRentCycle()

	sheets, err := suite.h.reporting.MonthlyBalanceSheets(suite.ctx, 2025, domain.BasisAccrual, "")
	suite.Require().NoError(err)
	suite.Require().Len(sheets, 12)
	suite.Equal(day("2025-01-31"), sheets[0].AsOf)
	suite.Equal(day("2025-02-28"), sheets[1].AsOf)
	for _, s := range sheets {
		suite.True(s.Balanced)
	}

	statements, err := suite.h.reporting.MonthlyIncomeStatements(suite.ctx, 2025, domain.BasisAccrual, "")
	suite.Require().NoError(err)
	suite.Require().Len(statements, 12)
	assertDec(suite.T(), "300", statements[0].NetIncome)
	assertDec(suite.T(), "0", statements[1].NetIncome)

	flows, err := suite.h.reporting.MonthlyCashFlows(suite.ctx, 2025, "")
	suite.Require().NoError(err)
	suite.Require().Len(flows, 12)
	assertDec(suite.T(), "300", flows[1].NetChange)
	assertDec(suite.T(), "300", flows[2].OpeningCash)

	_, err = suite.h.reporting.MonthlyCashFlows(suite.ctx, 0, "")
	var period *apperrors.InvalidPeriodError
	suite.True(errors.As(err, &period))
}

func (suite *ReportingServiceTestSuite) TestTrialBalance() {
	suite.postRentCycle()

	rows, err := suite.h.reporting.TrialBalance(suite.ctx, day("2025-02-28"), domain.BasisAccrual, "")
	suite.Require().NoError(err)
	suite.Require().Len(rows, 3)
	suite.Equal("1000-01", rows[0].AccountCode)
	suite.Equal("1100", rows[1].AccountCode)
	assertDec(suite.T(), "300", rows[1].Debit)
	assertDec(suite.T(), "300", rows[1].Credit)
}

func (suite *ReportingServiceTestSuite) TestInvalidBasisAndPeriod() {
	_, err := suite.h.reporting.BalanceSheet(suite.ctx, day("2025-01-31"), "modified-cash", "")
	var basisErr *apperrors.InvalidBasisError
	suite.True(errors.As(err, &basisErr))

	_, err = suite.h.reporting.IncomeStatement(suite.ctx, day("2025-02-01"), day("2025-01-01"), domain.BasisAccrual, "")
	var period *apperrors.InvalidPeriodError
	suite.True(errors.As(err, &period))

	_, err = suite.h.balance.Reconcile(suite.ctx, day("2025-02-01"), day("2025-01-01"), "")
	suite.True(errors.Is(err, apperrors.ErrValidation))

	_, err = suite.h.balance.GetBalance(suite.ctx, domain.BalanceQuery{AccountCode: "7777", AsOf: day("2025-01-01")})
	suite.True(errors.Is(err, apperrors.ErrNotFound))
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
