package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/rental_ledger/internal/apperrors"
	"github.com/SscSPs/rental_ledger/internal/core/domain"
	"github.com/stretchr/testify/suite"
)

type DrillDownServiceTestSuite struct {
	suite.Suite
	h   *ledgerHarness
	ctx context.Context
}

func (suite *DrillDownServiceTestSuite) SetupTest() {
	suite.h = newLedgerHarness()
	suite.ctx = context.Background()
}

func (suite *DrillDownServiceTestSuite) TestBalanceSheetAccount_RunningBalanceAndResolution() {
	suite.h.mustPost(suite.T(), rentAccrual("300"))
	suite.h.mustPost(suite.T(), rentPayment("300"))

	from := day("2025-02-01")
	res, err := suite.h.drill.DrillDown(suite.ctx, domain.DrillDownQuery{AccountCode: "1100", From: &from, To: day("2025-02-28")})
	suite.Require().NoError(err)
	suite.Equal(domain.ModeBalanceSheet, res.Mode)
	suite.Nil(res.From, "balance-sheet drill-downs ignore from")
	suite.Require().Len(res.Lines, 2)

	accrual := res.Lines[0]
	suite.Equal("Alice Tenant", accrual.Counterparty)
	suite.Equal(domain.KindDebtor, accrual.CounterpartyKind)
	suite.Equal("Maple House", accrual.ResidenceName)
	assertDec(suite.T(), "300", accrual.RunningBalance)

	payment := res.Lines[1]
	suite.Equal("Alice's Parent", payment.Counterparty)
	suite.Equal(domain.KindPayer, payment.CounterpartyKind)
	suite.Equal(domain.ModelPayment, payment.SourceModel)
	suite.Equal("p-1", payment.SourceID)
	assertDec(suite.T(), "0", payment.RunningBalance)

	assertDec(suite.T(), "0", res.Net)
	suite.Empty(res.Warnings)
}

func (suite *DrillDownServiceTestSuite) TestIncomeStatementAccount_RequiresFrom() {
	_, err := suite.h.drill.DrillDown(suite.ctx, domain.DrillDownQuery{AccountCode: "4000", To: day("2025-01-31")})
	var period *apperrors.InvalidPeriodError
	suite.True(errors.As(err, &period))

	_, err = suite.h.drill.DrillDown(suite.ctx, domain.DrillDownQuery{AccountCode: "nope", To: day("2025-01-31")})
	suite.True(errors.Is(err, apperrors.ErrNotFound))
}

func (suite *DrillDownServiceTestSuite) TestChildSubtotalsAndDegradedResolution() {
	suite.h.mustPost(suite.T(), domain.PostingRequest{
		Source:      domain.SourceExpensePayment,
		SourceRef:   domain.ExpenseRef{ExpenseID: "e-1"},
		Date:        day("2025-01-20"),
		Description: "Burst pipe repair",
		Lines:       []domain.PostingLine{debit("5000-01", "120"), credit("1000-01", "120")},
	})
	suite.h.mustPost(suite.T(), domain.PostingRequest{
		Source:      domain.SourceManual,
		Reference:   "M-7",
		Date:        day("2025-01-22"),
		Description: "Hardware store run paid to Corner Hardware (receipt 12)",
		Lines:       []domain.PostingLine{debit("5000", "30"), credit("1000-01", "30")},
	})
	suite.h.mustPost(suite.T(), domain.PostingRequest{
		Source:      domain.SourceManual,
		Reference:   "M-8",
		Date:        day("2025-01-25"),
		Description: "Misc adjustment",
		Lines:       []domain.PostingLine{debit("5000", "5"), credit("1000-01", "5")},
	})

	from := day("2025-01-01")
	res, err := suite.h.drill.DrillDown(suite.ctx, domain.DrillDownQuery{AccountCode: "5000", From: &from, To: day("2025-01-31")})
	suite.Require().NoError(err)
	suite.Equal(domain.ModeIncomeStatement, res.Mode)
	suite.Require().Len(res.Lines, 3)

	suite.Equal("ACME Plumbing", res.Lines[0].Counterparty)
	suite.Equal(domain.KindVendor, res.Lines[0].CounterpartyKind)
	suite.Equal("Corner Hardware", res.Lines[1].Counterparty)
	suite.Equal(domain.CounterpartyUnknown, res.Lines[2].Counterparty)
	suite.Equal(domain.WarningResolutionDegraded, res.Lines[2].Warning)
	suite.Equal([]string{domain.WarningResolutionDegraded}, res.Warnings)
	assertDec(suite.T(), "155", res.Net)
	assertDec(suite.T(), "155", res.Lines[2].RunningBalance)

	suite.Require().Len(res.ChildSubtotals, 2)
	suite.Equal("5000", res.ChildSubtotals[0].AccountCode)
	assertDec(suite.T(), "35", res.ChildSubtotals[0].Net)
	suite.Equal(2, res.ChildSubtotals[0].LineCount)
	suite.Equal("5000-01", res.ChildSubtotals[1].AccountCode)
	assertDec(suite.T(), "120", res.ChildSubtotals[1].Net)
}

func (suite *DrillDownServiceTestSuite) TestDeactivatedChildStillDrillsDown() {
	suite.h.mustPost(suite.T(), rentAccrual("300"))
	suite.h.mustPost(suite.T(), rentPayment("300"))
	suite.Require().NoError(suite.h.account.DeactivateAccount(suite.ctx, "1000-01", testUser))

	res, err := suite.h.drill.DrillDown(suite.ctx, domain.DrillDownQuery{AccountCode: "1000", To: day("2025-02-28")})
	suite.Require().NoError(err)
	suite.Require().Len(res.Lines, 1)
	suite.Equal("1000-01", res.Lines[0].AccountCode)
	assertDec(suite.T(), "300", res.Net)

	suite.Require().Len(res.ChildSubtotals, 2)
	suite.Equal("1000-01", res.ChildSubtotals[1].AccountCode)
	assertDec(suite.T(), "300", res.ChildSubtotals[1].Net)
}

func (suite *DrillDownServiceTestSuite) TestReversalResolvesThroughOriginal() {
	original := suite.h.mustPost(suite.T(), rentPayment("300"))
	_, err := suite.h.ledger.Reverse(suite.ctx, original.EntryID, "bounced", testUser)
	suite.Require().NoError(err)

	res, err := suite.h.drill.DrillDown(suite.ctx, domain.DrillDownQuery{AccountCode: "1000-01", To: day("2025-03-31")})
	suite.Require().NoError(err)
	suite.Require().Len(res.Lines, 2)
	suite.Equal(domain.ModelEntry, res.Lines[1].SourceModel)
	suite.Equal("Alice's Parent", res.Lines[1].Counterparty)
	assertDec(suite.T(), "0", res.Lines[1].RunningBalance)
}

func (suite *DrillDownServiceTestSuite) TestSourceFilter() {
	suite.h.mustPost(suite.T(), rentAccrual("300"))
	suite.h.mustPost(suite.T(), rentPayment("300"))

	res, err := suite.h.drill.DrillDown(suite.ctx, domain.DrillDownQuery{
		AccountCode: "1100",
		To:          day("2025-02-28"),
		Sources:     []domain.EntrySource{domain.SourcePayment},
	})
	suite.Require().NoError(err)
	suite.Require().Len(res.Lines, 1)
	suite.Equal(domain.SourcePayment, res.Lines[0].Source)
}

func TestDrillDownServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DrillDownServiceTestSuite))
}
