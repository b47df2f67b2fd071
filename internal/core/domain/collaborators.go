package domain

import "github.com/shopspring/decimal"

// The records below belong to neighbouring modules. The ledger only reads
// them to name counterparts and moves the denormalized balances.

// Payment is a receipt from a tenant or other payer.
type Payment struct {
	PaymentID   string
	PayerName   string
	DebtorID    string
	ResidenceID string
	Amount      decimal.Decimal
}

// ExpenseRecord is a cost approved against a residence.
type ExpenseRecord struct {
	ExpenseID   string
	VendorID    string
	VendorName  string
	ResidenceID string
	Description string
}

// Debtor is a tenant or student who owes rent.
type Debtor struct {
	DebtorID    string
	Name        string
	ResidenceID string
	Balance     decimal.Decimal
}

// Vendor is a supplier the operation owes money to.
type Vendor struct {
	VendorID string
	Name     string
	Balance  decimal.Decimal
}

// Residence is a rental property.
type Residence struct {
	ResidenceID string
	Name        string
}
