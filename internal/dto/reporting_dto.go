package dto

import (
	"time"

	"github.com/SscSPs/rental_ledger/internal/apperrors"
	"github.com/SscSPs/rental_ledger/internal/core/domain"
	"github.com/SscSPs/rental_ledger/internal/utils"
	"github.com/shopspring/decimal"
)

// ReportQuery carries the query parameters shared by report endpoints.
type ReportQuery struct {
	AsOf        string `form:"asOf"`
	From        string `form:"from"`
	To          string `form:"to"`
	Year        int    `form:"year" binding:"omitempty,min=1900,max=9999"`
	Basis       string `form:"basis" binding:"omitempty,basis"`
	ResidenceID string `form:"residenceId"`
	Sources     string `form:"sources"`
}

// Period parses From/To as a required inclusive range.
func (q ReportQuery) Period() (time.Time, time.Time, error) {
	if q.From == "" || q.To == "" {
		return time.Time{}, time.Time{}, &apperrors.InvalidPeriodError{Reason: "from and to are required"}
	}
	from, err := ParseDate("from", q.From)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := ParseDate("to", q.To)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, &apperrors.InvalidPeriodError{Reason: "from is after to"}
	}
	return from, to, nil
}

// AsOfDate parses AsOf, defaulting to today.
func (q ReportQuery) AsOfDate(now time.Time) (time.Time, error) {
	if q.AsOf == "" {
		return domain.DateOnly(now), nil
	}
	return ParseDate("asOf", q.AsOf)
}

// ReportLineResponse is a statement line with display formatting.
type ReportLineResponse struct {
	AccountCode string               `json:"accountCode"`
	Name        string               `json:"name"`
	Category    string               `json:"category,omitempty"`
	Amount      decimal.Decimal      `json:"amount"`
	Display     string               `json:"display"`
	Children    []ReportLineResponse `json:"children,omitempty"`
}

// ReportSectionResponse is a statement section.
type ReportSectionResponse struct {
	Type         string               `json:"type"`
	Lines        []ReportLineResponse `json:"lines"`
	Total        decimal.Decimal      `json:"total"`
	TotalDisplay string               `json:"totalDisplay"`
}

// BalanceSheetResponse represents the balance sheet report response
type BalanceSheetResponse struct {
	AsOf                      string                `json:"asOf"`
	Basis                     string                `json:"basis"`
	ResidenceID               string                `json:"residenceID,omitempty"`
	Currency                  string                `json:"currency"`
	Assets                    ReportSectionResponse `json:"assets"`
	Liabilities               ReportSectionResponse `json:"liabilities"`
	Equity                    ReportSectionResponse `json:"equity"`
	TotalLiabilitiesAndEquity decimal.Decimal       `json:"totalLiabilitiesAndEquity"`
	Difference                decimal.Decimal       `json:"difference"`
	Balanced                  bool                  `json:"balanced"`
	Unbalanced                bool                  `json:"unbalanced"`
}

// IncomeStatementResponse represents the income statement report response
type IncomeStatementResponse struct {
	From             string                `json:"from"`
	To               string                `json:"to"`
	Basis            string                `json:"basis"`
	ResidenceID      string                `json:"residenceID,omitempty"`
	Currency         string                `json:"currency"`
	Income           ReportSectionResponse `json:"income"`
	Expenses         ReportSectionResponse `json:"expenses"`
	NetIncome        decimal.Decimal       `json:"netIncome"`
	NetIncomeDisplay string                `json:"netIncomeDisplay"`
}

// CashFlowLineResponse is one counterpart account of a cash-flow statement.
type CashFlowLineResponse struct {
	AccountCode string          `json:"accountCode"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Display     string          `json:"display"`
}

// CashFlowResponse represents the cash-flow report response
type CashFlowResponse struct {
	From         string                 `json:"from"`
	To           string                 `json:"to"`
	ResidenceID  string                 `json:"residenceID,omitempty"`
	Currency     string                 `json:"currency"`
	OpeningCash  decimal.Decimal        `json:"openingCash"`
	Inflows      []CashFlowLineResponse `json:"inflows"`
	Outflows     []CashFlowLineResponse `json:"outflows"`
	TotalInflow  decimal.Decimal        `json:"totalInflow"`
	TotalOutflow decimal.Decimal        `json:"totalOutflow"`
	NetChange    decimal.Decimal        `json:"netChange"`
	ClosingCash  decimal.Decimal        `json:"closingCash"`
}

// MonthlyBalanceSheetsResponse wraps twelve month-end balance sheets.
type MonthlyBalanceSheetsResponse struct {
	Year   int                    `json:"year"`
	Months []BalanceSheetResponse `json:"months"`
}

// MonthlyIncomeStatementsResponse wraps twelve monthly income statements.
type MonthlyIncomeStatementsResponse struct {
	Year   int                       `json:"year"`
	Months []IncomeStatementResponse `json:"months"`
}

// MonthlyCashFlowsResponse wraps twelve monthly cash-flow statements.
type MonthlyCashFlowsResponse struct {
	Year   int                `json:"year"`
	Months []CashFlowResponse `json:"months"`
}

// TrialBalanceRowResponse represents a row in the trial balance report response
type TrialBalanceRowResponse struct {
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType string          `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalanceResponse represents the trial balance report response
type TrialBalanceResponse struct {
	AsOf   string                    `json:"asOf"`
	Basis  string                    `json:"basis"`
	Rows   []TrialBalanceRowResponse `json:"rows"`
	Totals struct {
		Debit  decimal.Decimal `json:"debit"`
		Credit decimal.Decimal `json:"credit"`
	} `json:"totals"`
}

func toReportLines(lines []domain.ReportLine, currency string) []ReportLineResponse {
	out := make([]ReportLineResponse, len(lines))
	for i, l := range lines {
		out[i] = ReportLineResponse{
			AccountCode: l.AccountCode,
			Name:        l.Name,
			Category:    l.Category,
			Amount:      l.Amount,
			Display:     utils.FormatAmount(l.Amount, currency),
			Children:    toReportLines(l.Children, currency),
		}
	}
	return out
}

func toReportSection(s domain.ReportSection, currency string) ReportSectionResponse {
	return ReportSectionResponse{
		Type:         string(s.Type),
		Lines:        toReportLines(s.Lines, currency),
		Total:        s.Total,
		TotalDisplay: utils.FormatAmount(s.Total, currency),
	}
}

// ToBalanceSheetResponse converts a domain balance sheet.
func ToBalanceSheetResponse(bs *domain.BalanceSheet, currency string) BalanceSheetResponse {
	return BalanceSheetResponse{
		AsOf:                      bs.AsOf.Format(DateFormat),
		Basis:                     string(bs.Basis),
		ResidenceID:               bs.ResidenceID,
		Currency:                  currency,
		Assets:                    toReportSection(bs.Assets, currency),
		Liabilities:               toReportSection(bs.Liabilities, currency),
		Equity:                    toReportSection(bs.Equity, currency),
		TotalLiabilitiesAndEquity: bs.TotalLiabilitiesAndEquity,
		Difference:                bs.Difference,
		Balanced:                  bs.Balanced,
		Unbalanced:                !bs.Balanced,
	}
}

// ToIncomeStatementResponse converts a domain income statement.
func ToIncomeStatementResponse(is *domain.IncomeStatement, currency string) IncomeStatementResponse {
	return IncomeStatementResponse{
		From:             is.From.Format(DateFormat),
		To:               is.To.Format(DateFormat),
		Basis:            string(is.Basis),
		ResidenceID:      is.ResidenceID,
		Currency:         currency,
		Income:           toReportSection(is.Income, currency),
		Expenses:         toReportSection(is.Expenses, currency),
		NetIncome:        is.NetIncome,
		NetIncomeDisplay: utils.FormatAmount(is.NetIncome, currency),
	}
}

func toCashFlowLines(lines []domain.CashFlowLine, currency string) []CashFlowLineResponse {
	out := make([]CashFlowLineResponse, len(lines))
	for i, l := range lines {
		out[i] = CashFlowLineResponse{
			AccountCode: l.AccountCode,
			Name:        l.Name,
			Type:        string(l.Type),
			Amount:      l.Amount,
			Display:     utils.FormatAmount(l.Amount, currency),
		}
	}
	return out
}

// ToCashFlowResponse converts a domain cash-flow statement.
func ToCashFlowResponse(cf *domain.CashFlow, currency string) CashFlowResponse {
	return CashFlowResponse{
		From:         cf.From.Format(DateFormat),
		To:           cf.To.Format(DateFormat),
		ResidenceID:  cf.ResidenceID,
		Currency:     currency,
		OpeningCash:  cf.OpeningCash,
		Inflows:      toCashFlowLines(cf.Inflows, currency),
		Outflows:     toCashFlowLines(cf.Outflows, currency),
		TotalInflow:  cf.TotalInflow,
		TotalOutflow: cf.TotalOutflow,
		NetChange:    cf.NetChange,
		ClosingCash:  cf.ClosingCash,
	}
}

// ToTrialBalanceResponse converts domain trial balance rows to a DTO response
func ToTrialBalanceResponse(rows []domain.TrialBalanceRow, asOf time.Time, basis domain.Basis) TrialBalanceResponse {
	response := TrialBalanceResponse{
		AsOf:  asOf.Format(DateFormat),
		Basis: string(basis),
		Rows:  make([]TrialBalanceRowResponse, len(rows)),
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for i, row := range rows {
		response.Rows[i] = TrialBalanceRowResponse{
			AccountCode: row.AccountCode,
			AccountName: row.AccountName,
			AccountType: string(row.AccountType),
			Debit:       row.Debit,
			Credit:      row.Credit,
		}
		totalDebit = totalDebit.Add(row.Debit)
		totalCredit = totalCredit.Add(row.Credit)
	}
	response.Totals.Debit = totalDebit
	response.Totals.Credit = totalCredit
	return response
}

// AccountBalanceResponse is an account balance with a display string.
type AccountBalanceResponse struct {
	domain.AccountBalance
	Currency string `json:"currency"`
	Display  string `json:"display"`
}

// ToAccountBalanceResponse converts a domain balance.
func ToAccountBalanceResponse(b *domain.AccountBalance, currency string) AccountBalanceResponse {
	return AccountBalanceResponse{AccountBalance: *b, Currency: currency, Display: utils.FormatAmount(b.Net, currency)}
}
