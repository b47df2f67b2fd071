package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the caller may not perform the operation.
var ErrForbidden = errors.New("forbidden")

// ErrConflict indicates the operation conflicts with the current state of the resource.
var ErrConflict = errors.New("conflict")

// ErrInternal is used for unexpected infrastructure failures.
var ErrInternal = errors.New("internal error")

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	switch e.Code {
	case 400:
		return ErrValidation
	case 404:
		return ErrNotFound
	case 409:
		return ErrConflict
	}
	return ErrInternal
}

// NewAppError wraps err with a status code and message.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError returns an AppError wrapping ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// UnbalancedEntryError is returned when a candidate entry's debits and credits differ
// by more than the balance tolerance.
type UnbalancedEntryError struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("entry is unbalanced: debits %s, credits %s (difference %s)",
		e.TotalDebit.StringFixed(2), e.TotalCredit.StringFixed(2), e.Difference().StringFixed(2))
}

// Difference returns debits minus credits.
func (e *UnbalancedEntryError) Difference() decimal.Decimal {
	return e.TotalDebit.Sub(e.TotalCredit)
}

func (e *UnbalancedEntryError) Unwrap() error { return ErrValidation }

// UnknownAccountError is returned when a line references a code that is missing
// from the chart or has been deactivated.
type UnknownAccountError struct {
	Code     string
	Inactive bool
}

func (e *UnknownAccountError) Error() string {
	if e.Inactive {
		return fmt.Sprintf("account %s is inactive", e.Code)
	}
	return fmt.Sprintf("account %s does not exist", e.Code)
}

func (e *UnknownAccountError) Unwrap() error { return ErrValidation }

// DuplicatePostingError reports that a posting with the same idempotency key already
// exists. Callers treat it as success and use ExistingEntryID.
type DuplicatePostingError struct {
	Source          string
	SourceID        string
	ExistingEntryID string
}

func (e *DuplicatePostingError) Error() string {
	return fmt.Sprintf("posting for %s/%s already exists as entry %s", e.Source, e.SourceID, e.ExistingEntryID)
}

func (e *DuplicatePostingError) Unwrap() error { return ErrDuplicate }

// InvalidBasisError is returned for an accounting basis other than cash or accrual.
type InvalidBasisError struct {
	Basis string
}

func (e *InvalidBasisError) Error() string {
	return fmt.Sprintf("invalid basis %q: must be cash or accrual", e.Basis)
}

func (e *InvalidBasisError) Unwrap() error { return ErrValidation }

// InvalidPeriodError is returned for malformed reporting periods.
type InvalidPeriodError struct {
	Reason string
}

func (e *InvalidPeriodError) Error() string {
	return "invalid period: " + e.Reason
}

func (e *InvalidPeriodError) Unwrap() error { return ErrValidation }
