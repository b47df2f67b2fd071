package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a row of ledger_transactions.
type Transaction struct {
	TransactionID   string          `db:"transaction_id"`
	TransactionDate time.Time       `db:"transaction_date"`
	Description     string          `db:"description"`
	TransactionType string          `db:"transaction_type"`
	Reference       sql.NullString  `db:"reference"`
	ResidenceID     sql.NullString  `db:"residence_id"`
	Amount          decimal.Decimal `db:"amount"`
	CreatedAt       time.Time       `db:"created_at"`
	CreatedBy       string          `db:"created_by"`
}

// TransactionEntry is a row of transaction_entries.
type TransactionEntry struct {
	EntryID           string          `db:"entry_id"`
	TransactionID     string          `db:"transaction_id"`
	EntryDate         time.Time       `db:"entry_date"`
	Description       string          `db:"description"`
	Reference         sql.NullString  `db:"reference"`
	TotalDebit        decimal.Decimal `db:"total_debit"`
	TotalCredit       decimal.Decimal `db:"total_credit"`
	Source            string          `db:"source"`
	SourceModel       sql.NullString  `db:"source_model"`
	SourceID          sql.NullString  `db:"source_id"`
	CounterpartyModel sql.NullString  `db:"counterparty_model"`
	CounterpartyID    sql.NullString  `db:"counterparty_id"`
	Metadata          []byte          `db:"metadata"`
	ResidenceID       sql.NullString  `db:"residence_id"`
	CountsTowardCash  bool            `db:"counts_toward_cash"`
	IdempotencyKey    sql.NullString  `db:"idempotency_key"`
	ReversalOfEntryID sql.NullString  `db:"reversal_of_entry_id"`
	ReversedByEntryID sql.NullString  `db:"reversed_by_entry_id"`
	CreatedAt         time.Time       `db:"created_at"`
	CreatedBy         string          `db:"created_by"`
}

// EntryLine is a row of transaction_entry_lines.
type EntryLine struct {
	EntryID     string          `db:"entry_id"`
	LineNo      int             `db:"line_no"`
	AccountCode string          `db:"account_code"`
	AccountName string          `db:"account_name"`
	AccountType string          `db:"account_type"`
	Debit       decimal.Decimal `db:"debit"`
	Credit      decimal.Decimal `db:"credit"`
	Description string          `db:"description"`
}
