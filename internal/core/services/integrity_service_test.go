package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/rental_ledger/internal/core/domain"
	"github.com/SscSPs/rental_ledger/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockIntegrityRepository struct {
	mock.Mock
}

func (m *MockIntegrityRepository) FindEntryTotalMismatches(ctx context.Context, tolerance decimal.Decimal) ([]domain.EntryTotalsCheck, error) {
	args := m.Called(ctx, tolerance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EntryTotalsCheck), args.Error(1)
}

func (m *MockIntegrityRepository) LedgerTotals(ctx context.Context) (int, domain.AccountTotals, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Get(1).(domain.AccountTotals), args.Error(2)
}

func TestIntegrityScan_CleanLedger(t *testing.T) {
	h := newLedgerHarness()
	h.mustPost(t, rentAccrual("300"))
	h.mustPost(t, rentPayment("300"))

	report, err := h.integrity.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.CheckedEntries)
	assert.True(t, report.Balanced)
	assert.Empty(t, report.Warnings)
	assertDec(t, "600", report.LedgerDebit)
}

func TestIntegrityScan_ReportsHistoricalDamageWithoutFixingIt(t *testing.T) {
	h := newLedgerHarness()
	h.mustPost(t, rentAccrual("300"))

	// A legacy row whose lines drifted and whose header totals were never recomputed.
	h.store.entries = append(h.store.entries, domain.TransactionEntry{
		EntryID:     "legacy-1",
		Date:        day("2024-06-01"),
		TotalDebit:  dec("100"),
		TotalCredit: dec("100"),
		Lines: []domain.EntryLine{
			{LineNo: 1, AccountCode: "1100", Debit: dec("100"), Credit: decimal.Zero},
			{LineNo: 2, AccountCode: "4000", Debit: decimal.Zero, Credit: dec("90")},
		},
	})

	report, err := h.integrity.Scan(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Balanced)

	kinds := map[domain.IntegrityKind]int{}
	for _, w := range report.Warnings {
		kinds[w.Kind]++
	}
	assert.Equal(t, 1, kinds[domain.IntegrityUnbalancedEntry])
	assert.Equal(t, 1, kinds[domain.IntegrityTotalsMismatch])
	assert.Equal(t, 1, kinds[domain.IntegrityLedgerImbalance])

	// The scan never rewrites the damaged entry.
	assertDec(t, "90", h.store.entries[1].Lines[1].Credit)
}

func TestIntegrityScan_RepositoryError(t *testing.T) {
	repo := new(MockIntegrityRepository)
	boom := errors.New("connection reset")
	repo.On("FindEntryTotalMismatches", mock.Anything, mock.Anything).Return(nil, boom).Once()

	_, err := services.NewIntegrityService(repo, dec("0.01")).Scan(context.Background())

	assert.ErrorIs(t, err, boom)
	repo.AssertExpectations(t)
}
