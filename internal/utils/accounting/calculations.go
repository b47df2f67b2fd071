package accounting

import (
	"fmt"

	"github.com/SscSPs/rental_ledger/internal/apperrors"
	"github.com/SscSPs/rental_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DefaultEpsilon is the largest debit/credit gap still treated as balanced.
var DefaultEpsilon = decimal.NewFromFloat(0.01)

// WithinEpsilon reports whether a and b differ by no more than epsilon.
func WithinEpsilon(a, b, epsilon decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(epsilon)
}

// ValidateLines checks the shape of candidate lines: at least two, each with
// exactly one strictly positive side.
func ValidateLines(lines []domain.PostingLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: entry must have at least two lines", apperrors.ErrValidation)
	}
	for i, l := range lines {
		if l.AccountCode == "" {
			return fmt.Errorf("%w: line %d has no account code", apperrors.ErrValidation, i+1)
		}
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return fmt.Errorf("%w: line %d has a negative amount", apperrors.ErrValidation, i+1)
		}
		if l.Debit.IsPositive() == l.Credit.IsPositive() {
			return fmt.Errorf("%w: line %d must carry exactly one of debit or credit", apperrors.ErrValidation, i+1)
		}
	}
	return nil
}

// SumLines returns total debits and credits.
func SumLines(lines []domain.PostingLine) (decimal.Decimal, decimal.Decimal) {
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// ValidateEntryBalance sums lines and returns an UnbalancedEntryError when the
// totals differ by more than epsilon.
func ValidateEntryBalance(lines []domain.PostingLine, epsilon decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	debit, credit := SumLines(lines)
	if !WithinEpsilon(debit, credit, epsilon) {
		return debit, credit, &apperrors.UnbalancedEntryError{TotalDebit: debit, TotalCredit: credit}
	}
	return debit, credit, nil
}
