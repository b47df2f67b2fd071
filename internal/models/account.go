package models

import (
	"database/sql"
	"time"
)

// AuditFields mirrors the audit columns shared by the ledger tables.
type AuditFields struct {
	CreatedAt     time.Time `db:"created_at"`
	CreatedBy     string    `db:"created_by"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
	LastUpdatedBy string    `db:"last_updated_by"`
}

// Account is a row of the accounts table.
type Account struct {
	Code        string         `db:"code"`
	Name        string         `db:"name"`
	AccountType string         `db:"account_type"`
	Category    string         `db:"category"`
	ParentCode  sql.NullString `db:"parent_code"`
	Role        sql.NullString `db:"role"`
	Description string         `db:"description"`
	IsActive    bool           `db:"is_active"`
	AuditFields
}
