package chartfile_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/SscSPs/rental_ledger/internal/core/domain"
	"github.com/SscSPs/rental_ledger/internal/utils/chartfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAccountsCSV(t *testing.T) {
	in := `code,name,type,category,parent_code,role,description,is_active
1000,Cash,asset,Current Assets,,cash,,true
1100,Accounts Receivable,ASSET,Current Assets,,RECEIVABLE,,
4000,Rental Income,INCOME,Revenue,,,,false
`
	accounts, err := chartfile.ReadAccountsCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, domain.Asset, accounts[0].Type)
	assert.Equal(t, domain.RoleCash, accounts[0].Role)
	assert.True(t, accounts[1].IsActive)
	assert.False(t, accounts[2].IsActive)
}

func TestReadAccountsCSV_InvalidType(t *testing.T) {
	in := "code,name,type,category,parent_code,role,description,is_active\n1000,Cash,MONEY,,,,,\n"
	_, err := chartfile.ReadAccountsCSV(strings.NewReader(in))
	assert.ErrorContains(t, err, "row 2")
}

func TestWriteThenReadCSV(t *testing.T) {
	accounts := []domain.Account{
		{Code: "2000", Name: "Accounts Payable", Type: domain.Liability, Role: domain.RolePayable, IsActive: true},
		{Code: "2000-01", Name: "Plumbing Co", Type: domain.Liability, ParentCode: "2000", IsActive: true},
	}
	var buf bytes.Buffer
	require.NoError(t, chartfile.WriteAccountsCSV(&buf, accounts))

	got, err := chartfile.ReadAccountsCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, accounts, got)
}

func TestReadAccountsYAML_Nested(t *testing.T) {
	in := `
accounts:
  - code: "5000"
    name: Maintenance
    type: expense
    category: Operating Expenses
    children:
      - code: "5000-01"
        name: Plumbing
      - code: "5000-02"
        name: Electrical
        inactive: true
`
	accounts, err := chartfile.ReadAccounts("chart.yaml", strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "5000", accounts[1].ParentCode)
	assert.Equal(t, domain.Expense, accounts[1].Type)
	assert.Equal(t, "Operating Expenses", accounts[2].Category)
	assert.False(t, accounts[2].IsActive)
}

func TestReadAccounts_UnsupportedExtension(t *testing.T) {
	_, err := chartfile.ReadAccounts("chart.json", strings.NewReader("{}"))
	assert.ErrorContains(t, err, "unsupported")
}

func TestSortParentsFirst(t *testing.T) {
	in := []domain.Account{
		{Code: "5000-01-A", ParentCode: "5000-01"},
		{Code: "5000-01", ParentCode: "5000"},
		{Code: "5000"},
	}
	out := chartfile.SortParentsFirst(in)
	codes := []string{out[0].Code, out[1].Code, out[2].Code}
	assert.Equal(t, []string{"5000", "5000-01", "5000-01-A"}, codes)
}
