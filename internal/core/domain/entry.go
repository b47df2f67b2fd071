package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntrySource identifies the workflow that produced an entry.
type EntrySource string

const (
	SourcePayment             EntrySource = "payment"
	SourceExpensePayment      EntrySource = "expense_payment"
	SourceExpenseApproval     EntrySource = "expense_approval"
	SourceMaintenanceApproval EntrySource = "maintenance_approval"
	SourceRentalAccrual       EntrySource = "rental_accrual"
	SourceVendorPayment       EntrySource = "vendor_payment"
	SourceManual              EntrySource = "manual"
	SourceAdjustment          EntrySource = "adjustment"
	SourceOpeningBalance      EntrySource = "opening_balance"
)

// IsValid reports whether s is a known source.
func (s EntrySource) IsValid() bool {
	switch s {
	case SourcePayment, SourceExpensePayment, SourceExpenseApproval, SourceMaintenanceApproval,
		SourceRentalAccrual, SourceVendorPayment, SourceManual, SourceAdjustment, SourceOpeningBalance:
		return true
	}
	return false
}

// EntryStatus is derived on read; stored rows are never updated.
type EntryStatus string

const (
	StatusPosted   EntryStatus = "posted"
	StatusReversed EntryStatus = "reversed"
)

// Metadata carries free-form posting context such as residenceId or studentName.
type Metadata map[string]string

// Well-known metadata keys.
const (
	MetaResidenceID  = "residenceId"
	MetaStudentID    = "studentId"
	MetaStudentName  = "studentName"
	MetaDebtorName   = "debtorName"
	MetaVendorName   = "vendorName"
	MetaPayerName    = "payerName"
	MetaAccrualMonth = "accrualMonth"
	MetaAccrualYear  = "accrualYear"
	MetaReason       = "reason"
)

// EntryLine is a single debit or credit against one account.
type EntryLine struct {
	LineNo      int             `json:"lineNo"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

// TransactionEntry is a balanced set of lines recorded against a Transaction.
type TransactionEntry struct {
	EntryID           string          `json:"entryID"`
	TransactionID     string          `json:"transactionID"`
	Date              time.Time       `json:"date"`
	Description       string          `json:"description"`
	Reference         string          `json:"reference"`
	Lines             []EntryLine     `json:"lines"`
	TotalDebit        decimal.Decimal `json:"totalDebit"`
	TotalCredit       decimal.Decimal `json:"totalCredit"`
	Source            EntrySource     `json:"source"`
	SourceRef         SourceRef       `json:"-"`
	Counterparty      SourceRef       `json:"-"`
	Status            EntryStatus     `json:"status"`
	Metadata          Metadata        `json:"metadata,omitempty"`
	ResidenceID       string          `json:"residenceID,omitempty"`
	CountsTowardCash  bool            `json:"countsTowardCash"`
	IdempotencyKey    string          `json:"-"`
	ReversalOfEntryID string          `json:"reversalOfEntryID,omitempty"`
	ReversedByEntryID string          `json:"reversedByEntryID,omitempty"`
	CreatedBy         string          `json:"createdBy"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// IdempotencyKeyFor derives the dedupe key of a posting. Keys are built from
// the source plus the source record id, falling back to the caller's
// reference. Postings with neither are not deduplicated and return "".
func IdempotencyKeyFor(source EntrySource, ref SourceRef, reference string) string {
	if ref != nil && ref.ID() != "" {
		return string(source) + ":" + string(ref.Model()) + ":" + ref.ID()
	}
	if reference != "" {
		return string(source) + ":ref:" + reference
	}
	return ""
}

// PostingLine is a candidate line supplied to the posting engine.
type PostingLine struct {
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// PostingRequest is everything the posting engine needs to record one entry.
type PostingRequest struct {
	Source          EntrySource
	SourceRef       SourceRef
	Counterparty    SourceRef
	Reference       string
	Date            time.Time
	Description     string
	TransactionType TransactionType
	TransactionID   string
	ResidenceID     string
	Lines           []PostingLine
	Metadata        Metadata
}

// PostResult is returned by the posting engine. Duplicate is set when an entry
// with the same idempotency key already existed and Entry is that entry.
type PostResult struct {
	Entry     TransactionEntry `json:"entry"`
	Duplicate bool             `json:"duplicate"`
}

// CounterpartyAdjustment moves the denormalized balance on a debtor or vendor.
type CounterpartyAdjustment struct {
	Ref   SourceRef
	Delta decimal.Decimal
}

// EntryFilter narrows ListEntries.
type EntryFilter struct {
	From        *time.Time
	To          *time.Time
	Source      EntrySource
	AccountCode string
	ResidenceID string
}
