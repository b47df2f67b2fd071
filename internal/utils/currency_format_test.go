package utils_test

import (
	"testing"

	"github.com/SscSPs/rental_ledger/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$1,234.50", utils.FormatAmount(decimal.RequireFromString("1234.5"), "USD"))
	assert.Equal(t, "-$10.00", utils.FormatAmount(decimal.RequireFromString("-10"), "USD"))
	assert.Equal(t, "12.35", utils.FormatAmount(decimal.RequireFromString("12.345"), "XXX-NOT-A-CODE"))
}
