package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies the business event behind a set of entries.
type TransactionType string

const (
	TxnApproval   TransactionType = "approval"
	TxnPayment    TransactionType = "payment"
	TxnAdjustment TransactionType = "adjustment"
	TxnAccrual    TransactionType = "accrual"
	TxnOther      TransactionType = "other"
)

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	switch t {
	case TxnApproval, TxnPayment, TxnAdjustment, TxnAccrual, TxnOther:
		return true
	}
	return false
}

// Transaction is the business-event header that one or more entries hang off.
type Transaction struct {
	TransactionID string          `json:"transactionID"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Type          TransactionType `json:"type"`
	Reference     string          `json:"reference"`
	ResidenceID   string          `json:"residenceID,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedBy     string          `json:"createdBy"`
	CreatedAt     time.Time       `json:"createdAt"`
}
