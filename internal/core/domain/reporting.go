package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrentEarningsCode labels the synthetic equity line that carries
// cumulative income minus expenses on the balance sheet.
const CurrentEarningsCode = "CURRENT_EARNINGS"

// ReportLine is one account on a statement with its rolled-up amount.
type ReportLine struct {
	AccountCode string          `json:"accountCode"`
	Name        string          `json:"name"`
	Category    string          `json:"category,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Children    []ReportLine    `json:"children,omitempty"`
}

// ReportSection groups the root accounts of one type.
type ReportSection struct {
	Type  AccountType     `json:"type"`
	Lines []ReportLine    `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// BalanceSheet is assets, liabilities and equity as of a date. Balanced is
// false when Assets != Liabilities + Equity beyond the tolerance.
type BalanceSheet struct {
	AsOf                      time.Time       `json:"asOf"`
	Basis                     Basis           `json:"basis"`
	ResidenceID               string          `json:"residenceID,omitempty"`
	Assets                    ReportSection   `json:"assets"`
	Liabilities               ReportSection   `json:"liabilities"`
	Equity                    ReportSection   `json:"equity"`
	TotalLiabilitiesAndEquity decimal.Decimal `json:"totalLiabilitiesAndEquity"`
	Difference                decimal.Decimal `json:"difference"`
	Balanced                  bool            `json:"balanced"`
}

// IncomeStatement covers an inclusive date range.
type IncomeStatement struct {
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	Basis       Basis           `json:"basis"`
	ResidenceID string          `json:"residenceID,omitempty"`
	Income      ReportSection   `json:"income"`
	Expenses    ReportSection   `json:"expenses"`
	NetIncome   decimal.Decimal `json:"netIncome"`
}

// CashFlowLine is the cash moved against one counterpart account.
type CashFlowLine struct {
	AccountCode string          `json:"accountCode"`
	Name        string          `json:"name"`
	Type        AccountType     `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
}

// CounterpartTotals aggregates the non-cash side of cash-affecting entries.
// Inflow is the credits to the account, Outflow the debits.
type CounterpartTotals struct {
	AccountCode string
	Inflow      decimal.Decimal
	Outflow     decimal.Decimal
}

// CashFlow is built from cash-basis entries only.
type CashFlow struct {
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	ResidenceID  string          `json:"residenceID,omitempty"`
	OpeningCash  decimal.Decimal `json:"openingCash"`
	Inflows      []CashFlowLine  `json:"inflows"`
	Outflows     []CashFlowLine  `json:"outflows"`
	TotalInflow  decimal.Decimal `json:"totalInflow"`
	TotalOutflow decimal.Decimal `json:"totalOutflow"`
	NetChange    decimal.Decimal `json:"netChange"`
	ClosingCash  decimal.Decimal `json:"closingCash"`
}

// TrialBalanceRow represents a single row in a trial balance report.
type TrialBalanceRow struct {
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// Period is an inclusive date range.
type Period struct {
	From time.Time
	To   time.Time
}

// MonthsOf returns the twelve calendar-month periods of year.
func MonthsOf(year int) []Period {
	out := make([]Period, 0, 12)
	for m := time.January; m <= time.December; m++ {
		start := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
		out = append(out, Period{From: start, To: start.AddDate(0, 1, -1)})
	}
	return out
}
