package accounting_test

import (
	"errors"
	"testing"

	"github.com/SscSPs/rental_ledger/internal/apperrors"
	"github.com/SscSPs/rental_ledger/internal/core/domain"
	"github.com/SscSPs/rental_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestValidateEntryBalance(t *testing.T) {
	lines := []domain.PostingLine{
		{AccountCode: "1000", Debit: d("100.00")},
		{AccountCode: "4000", Credit: d("99.995")},
	}
	debit, credit, err := accounting.ValidateEntryBalance(lines, accounting.DefaultEpsilon)
	require.NoError(t, err)
	assert.True(t, d("100").Equal(debit))
	assert.True(t, d("99.995").Equal(credit))

	lines[1].Credit = d("90")
	_, _, err = accounting.ValidateEntryBalance(lines, accounting.DefaultEpsilon)
	var unbalanced *apperrors.UnbalancedEntryError
	require.True(t, errors.As(err, &unbalanced))
	assert.True(t, d("10").Equal(unbalanced.Difference()))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestValidateLines(t *testing.T) {
	ok := []domain.PostingLine{
		{AccountCode: "1000", Debit: d("1")},
		{AccountCode: "4000", Credit: d("1")},
	}
	assert.NoError(t, accounting.ValidateLines(ok))

	assert.ErrorIs(t, accounting.ValidateLines(ok[:1]), apperrors.ErrValidation)

	both := []domain.PostingLine{
		{AccountCode: "1000", Debit: d("1"), Credit: d("1")},
		{AccountCode: "4000", Credit: d("1")},
	}
	assert.ErrorIs(t, accounting.ValidateLines(both), apperrors.ErrValidation)

	neither := []domain.PostingLine{
		{AccountCode: "1000"},
		{AccountCode: "4000", Credit: d("1")},
	}
	assert.ErrorIs(t, accounting.ValidateLines(neither), apperrors.ErrValidation)
}
