package dto

import (
	"fmt"
	"time"

	"github.com/SscSPs/rental_ledger/internal/apperrors"
)

// DateFormat is the wire format of every date in requests and responses.
const DateFormat = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string as a UTC date.
func ParseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a date in YYYY-MM-DD format", apperrors.ErrValidation, field)
	}
	return t, nil
}

// ParseOptionalDate is ParseDate that maps "" to nil.
func ParseOptionalDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := ParseDate(field, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatOptionalDate formats t or returns "" for nil.
func FormatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateFormat)
}
