package domain

import (
	"strings"
	"time"

	"github.com/SscSPs/rental_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Basis selects which entries a computation includes.
type Basis string

const (
	BasisCash    Basis = "cash"
	BasisAccrual Basis = "accrual"
)

// ParseBasis validates s. An empty string defaults to accrual.
func ParseBasis(s string) (Basis, error) {
	switch Basis(strings.ToLower(strings.TrimSpace(s))) {
	case "", BasisAccrual:
		return BasisAccrual, nil
	case BasisCash:
		return BasisCash, nil
	}
	return "", &apperrors.InvalidBasisError{Basis: s}
}

// LedgerFilter selects posted lines for aggregation. From is inclusive and
// optional; To is inclusive.
type LedgerFilter struct {
	From         *time.Time
	To           time.Time
	Basis        Basis
	ResidenceID  string
	AccountCodes []string
}

// AccountTotals are the raw debit and credit sums posted to one account.
type AccountTotals struct {
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// BalanceQuery asks for an account balance.
type BalanceQuery struct {
	AccountCode string
	From        *time.Time
	AsOf        time.Time
	Basis       Basis
	ResidenceID string
}

// AccountBalance is an account's rolled-up balance. Debit and Credit include
// the active descendants; Net follows the account type's sign convention.
type AccountBalance struct {
	AccountCode string           `json:"accountCode"`
	Name        string           `json:"name"`
	Type        AccountType      `json:"type"`
	From        *time.Time       `json:"from,omitempty"`
	AsOf        time.Time        `json:"asOf"`
	Basis       Basis            `json:"basis"`
	Debit       decimal.Decimal  `json:"debit"`
	Credit      decimal.Decimal  `json:"credit"`
	Net         decimal.Decimal  `json:"net"`
	Own         decimal.Decimal  `json:"own"`
	Children    []AccountBalance `json:"children,omitempty"`
}

// Reconciliation explains the gap between accrual net income and the net
// movement of cash over the same period.
type Reconciliation struct {
	From              time.Time       `json:"from"`
	To                time.Time       `json:"to"`
	ResidenceID       string          `json:"residenceID,omitempty"`
	AccrualNetIncome  decimal.Decimal `json:"accrualNetIncome"`
	CashNetIncome     decimal.Decimal `json:"cashNetIncome"`
	CashNetFlow       decimal.Decimal `json:"cashNetFlow"`
	Difference        decimal.Decimal `json:"difference"`
	ReceivablesChange decimal.Decimal `json:"receivablesChange"`
	PayablesChange    decimal.Decimal `json:"payablesChange"`
	Explained         decimal.Decimal `json:"explained"`
	Unexplained       decimal.Decimal `json:"unexplained"`
	Balanced          bool            `json:"balanced"`
}

// BalanceSnapshot is a chart plus the raw totals of one aggregation. Rollups
// are computed on demand: a parent's balance is its own totals plus the
// rolled-up balances of its active children.
type BalanceSnapshot struct {
	Chart  *Chart
	Filter LedgerFilter
	totals map[string]AccountTotals
}

// NewBalanceSnapshot indexes totals by account code.
func NewBalanceSnapshot(chart *Chart, filter LedgerFilter, totals []AccountTotals) *BalanceSnapshot {
	idx := make(map[string]AccountTotals, len(totals))
	for _, t := range totals {
		cur := idx[t.AccountCode]
		cur.AccountCode = t.AccountCode
		cur.Debit = cur.Debit.Add(t.Debit)
		cur.Credit = cur.Credit.Add(t.Credit)
		idx[t.AccountCode] = cur
	}
	return &BalanceSnapshot{Chart: chart, Filter: filter, totals: idx}
}

// Own returns the totals posted directly to code.
func (s *BalanceSnapshot) Own(code string) AccountTotals {
	t, ok := s.totals[code]
	if !ok {
		return AccountTotals{AccountCode: code, Debit: decimal.Zero, Credit: decimal.Zero}
	}
	return t
}

// Balance returns the rolled-up balance of code with a child breakdown.
func (s *BalanceSnapshot) Balance(code string) AccountBalance {
	return s.balance(code, make(map[string]bool))
}

// Net is shorthand for Balance(code).Net.
func (s *BalanceSnapshot) Net(code string) decimal.Decimal {
	return s.Balance(code).Net
}

func (s *BalanceSnapshot) balance(code string, seen map[string]bool) AccountBalance {
	acct, _ := s.Chart.Lookup(code)
	own := s.Own(code)
	b := AccountBalance{
		AccountCode: code,
		Name:        acct.Name,
		Type:        acct.Type,
		From:        s.Filter.From,
		AsOf:        s.Filter.To,
		Basis:       s.Filter.Basis,
		Debit:       own.Debit,
		Credit:      own.Credit,
		Own:         acct.Type.Signed(own.Debit, own.Credit),
	}
	seen[code] = true
	for _, child := range s.Chart.Children(code, true) {
		if seen[child.Code] {
			continue
		}
		cb := s.balance(child.Code, seen)
		if !child.IsActive && cb.IsEmpty() {
			continue
		}
		b.Debit = b.Debit.Add(cb.Debit)
		b.Credit = b.Credit.Add(cb.Credit)
		b.Children = append(b.Children, cb)
	}
	b.Net = acct.Type.Signed(b.Debit, b.Credit)
	return b
}

// IsEmpty reports whether no activity was rolled into b.
func (b AccountBalance) IsEmpty() bool {
	return b.Debit.IsZero() && b.Credit.IsZero()
}

// SumRoots adds the rolled-up net balances of every root of type t.
func (s *BalanceSnapshot) SumRoots(t AccountType) decimal.Decimal {
	total := decimal.Zero
	for _, root := range s.Chart.Roots(t) {
		total = total.Add(s.Net(root.Code))
	}
	return total
}

// SumCodes adds the own net balances of codes using each account's type.
func (s *BalanceSnapshot) SumCodes(codes []string) decimal.Decimal {
	total := decimal.Zero
	for _, code := range codes {
		acct, ok := s.Chart.Lookup(code)
		if !ok {
			continue
		}
		own := s.Own(code)
		total = total.Add(acct.Type.Signed(own.Debit, own.Credit))
	}
	return total
}
