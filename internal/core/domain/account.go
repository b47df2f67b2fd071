package domain

import "github.com/shopspring/decimal"

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// AccountTypes lists every valid type in statement order.
var AccountTypes = []AccountType{Asset, Liability, Equity, Income, Expense}

// IsValid reports whether t is one of the five account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Income, Expense:
		return true
	}
	return false
}

// IsDebitNormal reports whether a debit increases the balance of this type.
func (t AccountType) IsDebitNormal() bool {
	return t == Asset || t == Expense
}

// Signed applies the sign convention of t to raw totals: debit - credit for
// debit-normal types, credit - debit otherwise.
func (t AccountType) Signed(debit, credit decimal.Decimal) decimal.Decimal {
	if t.IsDebitNormal() {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// IsBalanceSheet reports whether the type belongs on the balance sheet
// (as opposed to the income statement).
func (t AccountType) IsBalanceSheet() bool {
	return t == Asset || t == Liability || t == Equity
}

// AccountRole is a supplemental classification used by cash-basis
// classification, cash-flow and reconciliation.
type AccountRole string

const (
	RoleNone       AccountRole = ""
	RoleCash       AccountRole = "CASH"
	RoleReceivable AccountRole = "RECEIVABLE"
	RolePayable    AccountRole = "PAYABLE"
)

// IsValid reports whether r is a known role.
func (r AccountRole) IsValid() bool {
	switch r {
	case RoleNone, RoleCash, RoleReceivable, RolePayable:
		return true
	}
	return false
}

// Account represents a node of the chart of accounts.
type Account struct {
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Type        AccountType `json:"type"`
	Category    string      `json:"category"`
	ParentCode  string      `json:"parentCode"`
	Role        AccountRole `json:"role"`
	Description string      `json:"description"`
	IsActive    bool        `json:"isActive"`
	AuditFields
}
