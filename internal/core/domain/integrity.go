package domain

import "github.com/shopspring/decimal"

// IntegrityKind classifies an integrity warning.
type IntegrityKind string

const (
	IntegrityUnbalancedEntry IntegrityKind = "UNBALANCED_ENTRY"
	IntegrityTotalsMismatch  IntegrityKind = "TOTALS_MISMATCH"
	IntegrityLedgerImbalance IntegrityKind = "LEDGER_IMBALANCE"
)

// EntryTotalsCheck compares an entry's stored totals against its lines.
type EntryTotalsCheck struct {
	EntryID      string
	StoredDebit  decimal.Decimal
	StoredCredit decimal.Decimal
	LineDebit    decimal.Decimal
	LineCredit   decimal.Decimal
}

// IntegrityWarning describes a historical inconsistency. Warnings are
// reported, never corrected automatically.
type IntegrityWarning struct {
	Kind    IntegrityKind   `json:"kind"`
	EntryID string          `json:"entryID,omitempty"`
	Message string          `json:"message"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
}

// IntegrityReport is the outcome of a full ledger scan.
type IntegrityReport struct {
	CheckedEntries int                `json:"checkedEntries"`
	LedgerDebit    decimal.Decimal    `json:"ledgerDebit"`
	LedgerCredit   decimal.Decimal    `json:"ledgerCredit"`
	Balanced       bool               `json:"balanced"`
	Warnings       []IntegrityWarning `json:"warnings"`
}
