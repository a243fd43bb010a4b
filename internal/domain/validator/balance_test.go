package validator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

func line(day int, amount, balance string) *transaction.BankTransaction {
	tx := transaction.NewBankTransaction(time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC),
		decimal.RequireFromString(amount), "LINE", transaction.TypeDebit)
	if balance != "" {
		tx.Balance = decimal.NewNullDecimal(decimal.RequireFromString(balance))
	}
	return tx
}

func TestValidateRunningBalance_OldestFirst(t *testing.T) {
	// Arrange
	txs := []*transaction.BankTransaction{
		line(1, "-10.00", "90.00"),
		line(2, "-5.50", "84.50"),
		line(3, "100.00", "184.50"),
	}

	// Act
	result := ValidateRunningBalance(txs)

	// Assert
	assert.True(t, result.Valid)
	assert.Equal(t, 2, result.Checked)
	assert.Equal(t, -1, result.Row)
	assert.Empty(t, result.Reason)
}

func TestValidateRunningBalance_NewestFirst(t *testing.T) {
	txs := []*transaction.BankTransaction{
		line(3, "100.00", "184.50"),
		line(2, "-5.50", "84.50"),
		line(1, "-10.00", "90.00"),
	}

	result := ValidateRunningBalance(txs)

	assert.True(t, result.Valid)
}

func TestValidateRunningBalance_MissingLine(t *testing.T) {
	// Arrange: a -20.00 line between day 1 and day 2 was dropped
	txs := []*transaction.BankTransaction{
		line(1, "-10.00", "90.00"),
		line(2, "-5.50", "64.50"),
		line(3, "100.00", "164.50"),
	}

	// Act
	result := ValidateRunningBalance(txs)

	// Assert
	require.False(t, result.Valid)
	assert.Equal(t, 1, result.Row)
	assert.True(t, result.Expected.Equal(decimal.RequireFromString("84.50")))
	assert.True(t, result.Actual.Equal(decimal.RequireFromString("64.50")))
	assert.True(t, result.Difference.Equal(decimal.RequireFromString("-20")))
	assert.Contains(t, result.Reason, "2025-06-02")
	assert.Contains(t, result.Reason, "expected 84.50")
}

func TestValidateRunningBalance_SkipsLinesWithoutBalance(t *testing.T) {
	txs := []*transaction.BankTransaction{
		line(1, "-10.00", "90.00"),
		line(1, "-1.00", ""),
		line(2, "-5.00", "85.00"),
	}

	result := ValidateRunningBalance(txs)

	assert.True(t, result.Valid)
	assert.Equal(t, 1, result.Checked)
}

func TestValidateRunningBalance_TooFewBalances(t *testing.T) {
	tests := []struct {
		name string
		txs  []*transaction.BankTransaction
	}{
		{"empty", nil},
		{"no balances", []*transaction.BankTransaction{line(1, "-1", ""), line(2, "-2", "")}},
		{"one balance", []*transaction.BankTransaction{line(1, "-1", "10"), line(2, "-2", "")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateRunningBalance(tt.txs)

			assert.True(t, result.Valid)
			assert.Zero(t, result.Checked)
		})
	}
}
