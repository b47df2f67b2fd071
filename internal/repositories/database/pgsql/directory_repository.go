package pgsql

import (
	"context"
	"database/sql"

	"github.com/SscSPs/rental_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/rental_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/rental_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxDirectoryRepository reads the payment, expense, debtor, vendor and
// residence records owned by the surrounding property-management modules.
type PgxDirectoryRepository struct {
	BaseRepository
}

func newPgxDirectoryRepository(pool *pgxpool.Pool) portsrepo.DirectoryReader {
	return &PgxDirectoryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DirectoryReader = (*PgxDirectoryRepository)(nil)

// FindPayment retrieves a payment by id.
func (r *PgxDirectoryRepository) FindPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	var (
		p                     domain.Payment
		debtorID, residenceID sql.NullString
	)
	err := r.Pool.QueryRow(ctx, `
		SELECT payment_id, payer_name, debtor_id, residence_id, amount
		FROM payments WHERE payment_id = $1;`, paymentID).
		Scan(&p.PaymentID, &p.PayerName, &debtorID, &residenceID, &p.Amount)
	if err != nil {
		return nil, notFoundOr(err, "payment "+paymentID)
	}
	p.DebtorID = mapping.StringOrEmpty(debtorID)
	p.ResidenceID = mapping.StringOrEmpty(residenceID)
	return &p, nil
}

// FindExpense retrieves an expense with its vendor's name.
func (r *PgxDirectoryRepository) FindExpense(ctx context.Context, expenseID string) (*domain.ExpenseRecord, error) {
	var (
		e                               domain.ExpenseRecord
		vendorID, vendorName, residence sql.NullString
	)
	err := r.Pool.QueryRow(ctx, `
		SELECT x.expense_id, x.vendor_id, v.name, x.residence_id, x.description
		FROM expenses x
		LEFT JOIN vendors v ON v.vendor_id = x.vendor_id
		WHERE x.expense_id = $1;`, expenseID).
		Scan(&e.ExpenseID, &vendorID, &vendorName, &residence, &e.Description)
	if err != nil {
		return nil, notFoundOr(err, "expense "+expenseID)
	}
	e.VendorID = mapping.StringOrEmpty(vendorID)
	e.VendorName = mapping.StringOrEmpty(vendorName)
	e.ResidenceID = mapping.StringOrEmpty(residence)
	return &e, nil
}

// FindDebtor retrieves a debtor with its denormalized balance.
func (r *PgxDirectoryRepository) FindDebtor(ctx context.Context, debtorID string) (*domain.Debtor, error) {
	var (
		d         domain.Debtor
		residence sql.NullString
	)
	err := r.Pool.QueryRow(ctx, `
		SELECT debtor_id, name, residence_id, balance
		FROM debtors WHERE debtor_id = $1;`, debtorID).
		Scan(&d.DebtorID, &d.Name, &residence, &d.Balance)
	if err != nil {
		return nil, notFoundOr(err, "debtor "+debtorID)
	}
	d.ResidenceID = mapping.StringOrEmpty(residence)
	return &d, nil
}

// FindVendor retrieves a vendor with its denormalized balance.
func (r *PgxDirectoryRepository) FindVendor(ctx context.Context, vendorID string) (*domain.Vendor, error) {
	var v domain.Vendor
	err := r.Pool.QueryRow(ctx, `SELECT vendor_id, name, balance FROM vendors WHERE vendor_id = $1;`, vendorID).
		Scan(&v.VendorID, &v.Name, &v.Balance)
	if err != nil {
		return nil, notFoundOr(err, "vendor "+vendorID)
	}
	return &v, nil
}

// FindResidence retrieves a residence by id.
func (r *PgxDirectoryRepository) FindResidence(ctx context.Context, residenceID string) (*domain.Residence, error) {
	var res domain.Residence
	err := r.Pool.QueryRow(ctx, `SELECT residence_id, name FROM residences WHERE residence_id = $1;`, residenceID).
		Scan(&res.ResidenceID, &res.Name)
	if err != nil {
		return nil, notFoundOr(err, "residence "+residenceID)
	}
	return &res, nil
}
