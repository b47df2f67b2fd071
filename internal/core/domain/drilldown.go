package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// DrillDownMode selects the date semantics of a drill-down.
type DrillDownMode string

const (
	// ModeBalanceSheet includes every line dated on or before To.
	ModeBalanceSheet DrillDownMode = "balance_sheet"
	// ModeIncomeStatement includes lines dated within [From, To].
	ModeIncomeStatement DrillDownMode = "income_statement"
)

// WarningResolutionDegraded marks a line whose counterpart could not be named.
const WarningResolutionDegraded = "RESOLUTION_DEGRADED"

// CounterpartyUnknown is used when no resolver step produced a name.
const CounterpartyUnknown = "Unknown"

// CounterpartyKind says what the resolved name refers to.
type CounterpartyKind string

const (
	KindPayer   CounterpartyKind = "payer"
	KindDebtor  CounterpartyKind = "debtor"
	KindVendor  CounterpartyKind = "vendor"
	KindUnknown CounterpartyKind = "unknown"
)

// DrillDownQuery selects the lines behind a report figure.
type DrillDownQuery struct {
	AccountCode string
	From        *time.Time
	To          time.Time
	Basis       Basis
	ResidenceID string
	Sources     []EntrySource
}

// LedgerLine is a posted line joined with its entry header.
type LedgerLine struct {
	EntryID       string
	TransactionID string
	Date          time.Time
	CreatedAt     time.Time
	LineNo        int
	AccountCode   string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
	LineMemo      string
	Description   string
	Reference     string
	Source        EntrySource
	SourceRef     SourceRef
	Counterparty  SourceRef
	Metadata      Metadata
	ResidenceID   string
}

// DrillDownLine is one resolved line with its running balance.
type DrillDownLine struct {
	EntryID          string           `json:"entryID"`
	TransactionID    string           `json:"transactionID"`
	Date             time.Time        `json:"date"`
	AccountCode      string           `json:"accountCode"`
	AccountName      string           `json:"accountName"`
	Debit            decimal.Decimal  `json:"debit"`
	Credit           decimal.Decimal  `json:"credit"`
	Description      string           `json:"description"`
	Reference        string           `json:"reference,omitempty"`
	Source           EntrySource      `json:"source"`
	SourceModel      SourceModel      `json:"sourceModel,omitempty"`
	SourceID         string           `json:"sourceID,omitempty"`
	Counterparty     string           `json:"counterparty"`
	CounterpartyKind CounterpartyKind `json:"counterpartyKind"`
	ResidenceID      string           `json:"residenceID,omitempty"`
	ResidenceName    string           `json:"residenceName,omitempty"`
	RunningBalance   decimal.Decimal  `json:"runningBalance"`
	Warning          string           `json:"warning,omitempty"`
}

// ChildSubtotal aggregates drill-down lines per account in the subtree.
type ChildSubtotal struct {
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Net         decimal.Decimal `json:"net"`
	LineCount   int             `json:"lineCount"`
}

// DrillDownResult is the itemized provenance of an account figure.
type DrillDownResult struct {
	Account        Account         `json:"account"`
	Mode           DrillDownMode   `json:"mode"`
	From           *time.Time      `json:"from,omitempty"`
	To             time.Time       `json:"to"`
	Basis          Basis           `json:"basis"`
	Lines          []DrillDownLine `json:"lines"`
	ChildSubtotals []ChildSubtotal `json:"childSubtotals"`
	TotalDebit     decimal.Decimal `json:"totalDebit"`
	TotalCredit    decimal.Decimal `json:"totalCredit"`
	Net            decimal.Decimal `json:"net"`
	Warnings       []string        `json:"warnings,omitempty"`
}

// MarshalMetadata encodes m for a jsonb column.
func MarshalMetadata(m Metadata) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}
