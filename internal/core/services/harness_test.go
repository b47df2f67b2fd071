package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/rental_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/rental_ledger/internal/core/ports/services"
	"github.com/SscSPs/rental_ledger/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

const testUser = "user-1"

// ledgerHarness wires every service against one fakeStore.
type ledgerHarness struct {
	store     *fakeStore
	account   portssvc.AccountSvcFacade
	ledger    portssvc.LedgerSvcFacade
	balance   portssvc.BalanceSvc
	reporting portssvc.ReportingService
	drill     portssvc.DrillDownSvc
	integrity portssvc.IntegritySvc
}

func fixedClock() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

func newLedgerHarness() *ledgerHarness {
	store := newFakeStore(rentalChart()...)
	store.debtors["d-alice"] = &domain.Debtor{DebtorID: "d-alice", Name: "Alice Tenant", Balance: decimal.Zero}
	store.vendors["v-acme"] = &domain.Vendor{VendorID: "v-acme", Name: "ACME Plumbing", Balance: decimal.Zero}
	store.payments["p-1"] = domain.Payment{PaymentID: "p-1", PayerName: "Alice's Parent", DebtorID: "d-alice"}
	store.expenses["e-1"] = domain.ExpenseRecord{ExpenseID: "e-1", VendorID: "v-acme"}
	store.residences["r-1"] = domain.Residence{ResidenceID: "r-1", Name: "Maple House"}

	h := &ledgerHarness{store: store}
	h.balance = services.NewBalanceService(store, store,
		services.WithBalanceCacheSize(64),
		services.WithBalancePrefixFallback(true))
	h.account = services.NewAccountService(store,
		services.WithPrefixFallback(true),
		services.WithChartInvalidator(h.balance),
		services.WithAccountClock(fixedClock))
	h.ledger = services.NewLedgerService(store, store,
		services.WithDirectory(store),
		services.WithBalanceInvalidator(h.balance),
		services.WithIDGenerator(&seqIDs{}),
		services.WithLedgerClock(fixedClock))
	h.reporting = services.NewReportingService(h.balance, store)
	h.drill = services.NewDrillDownService(store, store, store, store, services.WithDrillDownPrefixFallback(true))
	h.integrity = services.NewIntegrityService(store, decimal.Zero)
	return h
}

// rentAccrual is the January rent charge for Alice.
func rentAccrual(amount string) domain.PostingRequest {
	return domain.PostingRequest{
		Source:          domain.SourceRentalAccrual,
		Reference:       "RENT-2025-01-alice",
		Counterparty:    domain.DebtorRef{DebtorID: "d-alice"},
		Date:            day("2025-01-01"),
		Description:     "January rent",
		TransactionType: domain.TxnAccrual,
		ResidenceID:     "r-1",
		Lines:           []domain.PostingLine{debit("1100", amount), credit("4000", amount)},
		Metadata:        domain.Metadata{domain.MetaStudentName: "Alice Tenant", domain.MetaAccrualMonth: "1", domain.MetaAccrualYear: "2025"},
	}
}

// rentPayment settles the accrual through the bank.
func rentPayment(amount string) domain.PostingRequest {
	return domain.PostingRequest{
		Source:          domain.SourcePayment,
		SourceRef:       domain.PaymentRef{PaymentID: "p-1"},
		Counterparty:    domain.DebtorRef{DebtorID: "d-alice"},
		Date:            day("2025-02-05"),
		Description:     "Rent payment",
		TransactionType: domain.TxnPayment,
		ResidenceID:     "r-1",
		Lines:           []domain.PostingLine{debit("1000-01", amount), credit("1100", amount)},
	}
}

func (h *ledgerHarness) mustPost(t *testing.T, req domain.PostingRequest) domain.TransactionEntry {
	t.Helper()
	res, err := h.ledger.Post(context.Background(), req, testUser)
	if err != nil {
		t.Fatalf("post %s failed: %v", req.Description, err)
	}
	return res.Entry
}

func assertDec(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Equal(t, dec(expected).StringFixed(2), actual.StringFixed(2), msgAndArgs...)
}
