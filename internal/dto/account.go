package dto

import (
	"time"

	"github.com/SscSPs/rental_ledger/internal/core/domain"
)

// CreateAccountRequest defines the data needed to add an account to the chart.
type CreateAccountRequest struct {
	Code        string `json:"code" binding:"required,max=64"`
	Name        string `json:"name" binding:"required,max=255"`
	Type        string `json:"type" binding:"required,oneof=ASSET LIABILITY EQUITY INCOME EXPENSE"`
	Category    string `json:"category" binding:"max=255"`
	ParentCode  string `json:"parentCode" binding:"max=64"`
	Role        string `json:"role" binding:"omitempty,oneof=CASH RECEIVABLE PAYABLE"`
	Description string `json:"description"`
}

// UpdateAccountRequest carries the mutable account fields. Nil fields are left unchanged.
type UpdateAccountRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Type        *string `json:"type" binding:"omitempty,oneof=ASSET LIABILITY EQUITY INCOME EXPENSE"`
	Category    *string `json:"category" binding:"omitempty,max=255"`
	ParentCode  *string `json:"parentCode" binding:"omitempty,max=64"`
	Role        *string `json:"role" binding:"omitempty,oneof=NONE CASH RECEIVABLE PAYABLE"`
	Description *string `json:"description"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Category      string    `json:"category,omitempty"`
	ParentCode    string    `json:"parentCode,omitempty"`
	Role          string    `json:"role,omitempty"`
	Description   string    `json:"description,omitempty"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// ListAccountsResponse wraps a list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ParentChangesResponse lists parent assignments proposed or applied by a backfill.
type ParentChangesResponse struct {
	Applied bool                  `json:"applied"`
	Changes []domain.ParentChange `json:"changes"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		Code:          a.Code,
		Name:          a.Name,
		Type:          string(a.Type),
		Category:      a.Category,
		ParentCode:    a.ParentCode,
		Role:          string(a.Role),
		Description:   a.Description,
		IsActive:      a.IsActive,
		CreatedAt:     a.CreatedAt,
		CreatedBy:     a.CreatedBy,
		LastUpdatedAt: a.LastUpdatedAt,
		LastUpdatedBy: a.LastUpdatedBy,
	}
}

// ToListAccountsResponse converts a slice of accounts.
func ToListAccountsResponse(accounts []domain.Account) ListAccountsResponse {
	resp := ListAccountsResponse{Accounts: make([]AccountResponse, len(accounts))}
	for i := range accounts {
		resp.Accounts[i] = ToAccountResponse(&accounts[i])
	}
	return resp
}
