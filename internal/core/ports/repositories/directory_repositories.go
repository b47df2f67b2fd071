package repositories

import (
	"context"

	"github.com/SscSPs/rental_ledger/internal/core/domain"
)

// DirectoryReader looks up the collaborator records entries point at.
// Every method returns apperrors.ErrNotFound when the record is absent.
type DirectoryReader interface {
	FindPayment(ctx context.Context, paymentID string) (*domain.Payment, error)
	FindExpense(ctx context.Context, expenseID string) (*domain.ExpenseRecord, error)
	FindDebtor(ctx context.Context, debtorID string) (*domain.Debtor, error)
	FindVendor(ctx context.Context, vendorID string) (*domain.Vendor, error)
	FindResidence(ctx context.Context, residenceID string) (*domain.Residence, error)
}
