// Package chartfile reads and writes chart-of-accounts seed files.
package chartfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/SscSPs/rental_ledger/internal/core/domain"
)

const (
	numFields   = 8
	colCode     = 0
	colName     = 1
	colType     = 2
	colCategory = 3
	colParent   = 4
	colRole     = 5
	colDesc     = 6
	colActive   = 7
)

var csvHeader = []string{"code", "name", "type", "category", "parent_code", "role", "description", "is_active"}

// ReadAccountsCSV reads a chart-of-accounts CSV with a header row.
func ReadAccountsCSV(r io.Reader) ([]domain.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var accounts []domain.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccountsCSV writes accounts with a header row.
func WriteAccountsCSV(w io.Writer, accounts []domain.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct domain.Account) []string {
	row := make([]string, numFields)
	row[colCode] = acct.Code
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	row[colCategory] = acct.Category
	row[colParent] = acct.ParentCode
	row[colRole] = string(acct.Role)
	row[colDesc] = acct.Description
	row[colActive] = strconv.FormatBool(acct.IsActive)
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (domain.Account, error) {
	if len(record) != numFields {
		return domain.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	active := true
	if s := strings.TrimSpace(record[colActive]); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return domain.Account{}, fmt.Errorf("parsing is_active %q: %w", s, err)
		}
		active = v
	}

	acct := domain.Account{
		Code:        strings.TrimSpace(record[colCode]),
		Name:        record[colName],
		Type:        domain.AccountType(strings.ToUpper(strings.TrimSpace(record[colType]))),
		Category:    record[colCategory],
		ParentCode:  strings.TrimSpace(record[colParent]),
		Role:        domain.AccountRole(strings.ToUpper(strings.TrimSpace(record[colRole]))),
		Description: record[colDesc],
		IsActive:    active,
	}
	return acct, validate(acct)
}

func validate(acct domain.Account) error {
	if acct.Code == "" {
		return fmt.Errorf("account code is required")
	}
	if !acct.Type.IsValid() {
		return fmt.Errorf("account %s: invalid type %q", acct.Code, acct.Type)
	}
	if !acct.Role.IsValid() {
		return fmt.Errorf("account %s: invalid role %q", acct.Code, acct.Role)
	}
	return nil
}
