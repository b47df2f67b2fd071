package domain

import "fmt"

// SourceModel names the kind of record a posting originated from.
type SourceModel string

const (
	ModelPayment SourceModel = "Payment"
	ModelExpense SourceModel = "Expense"
	ModelDebtor  SourceModel = "Debtor"
	ModelVendor  SourceModel = "Vendor"
	ModelEntry   SourceModel = "TransactionEntry"
)

// SourceRef points at the originating record of an entry. The set of
// implementations is closed; switch on the concrete type to dispatch.
type SourceRef interface {
	Model() SourceModel
	ID() string
	sourceRef()
}

// PaymentRef references a received payment.
type PaymentRef struct{ PaymentID string }

// ExpenseRef references an approved or paid expense.
type ExpenseRef struct{ ExpenseID string }

// DebtorRef references a debtor (tenant / student) master record.
type DebtorRef struct{ DebtorID string }

// VendorRef references a vendor master record.
type VendorRef struct{ VendorID string }

// EntryRef references another ledger entry, used by adjustments.
type EntryRef struct{ EntryID string }

func (PaymentRef) Model() SourceModel { return ModelPayment }
func (ExpenseRef) Model() SourceModel { return ModelExpense }
func (DebtorRef) Model() SourceModel  { return ModelDebtor }
func (VendorRef) Model() SourceModel  { return ModelVendor }
func (EntryRef) Model() SourceModel   { return ModelEntry }

func (r PaymentRef) ID() string { return r.PaymentID }
func (r ExpenseRef) ID() string { return r.ExpenseID }
func (r DebtorRef) ID() string  { return r.DebtorID }
func (r VendorRef) ID() string  { return r.VendorID }
func (r EntryRef) ID() string   { return r.EntryID }

func (PaymentRef) sourceRef() {}
func (ExpenseRef) sourceRef() {}
func (DebtorRef) sourceRef()  {}
func (VendorRef) sourceRef()  {}
func (EntryRef) sourceRef()   {}

// NewSourceRef rebuilds a SourceRef from its persisted (model, id) pair.
// An empty model yields a nil ref.
func NewSourceRef(model SourceModel, id string) (SourceRef, error) {
	if model == "" {
		return nil, nil
	}
	if id == "" {
		return nil, fmt.Errorf("source reference %s has no id", model)
	}
	switch model {
	case ModelPayment:
		return PaymentRef{PaymentID: id}, nil
	case ModelExpense:
		return ExpenseRef{ExpenseID: id}, nil
	case ModelDebtor:
		return DebtorRef{DebtorID: id}, nil
	case ModelVendor:
		return VendorRef{VendorID: id}, nil
	case ModelEntry:
		return EntryRef{EntryID: id}, nil
	}
	return nil, fmt.Errorf("unknown source model %q", model)
}

// SplitSourceRef returns the persisted (model, id) pair of ref, or empty strings.
func SplitSourceRef(ref SourceRef) (SourceModel, string) {
	if ref == nil {
		return "", ""
	}
	return ref.Model(), ref.ID()
}
