// Package validator checks statements before they are reconciled.
//
// The balance validator walks a bank statement's running balance column
// and reports the first line where the balance does not follow from the
// line before it. A break usually means a row is missing from the export
// or was exported twice.
package validator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

// BalanceValidation contains the result of checking a running balance.
type BalanceValidation struct {
	// Valid is true if every balance follows from the previous one
	Valid bool

	// Checked is the number of consecutive pairs compared
	Checked int

	// Row is the 0-based index of the first line that breaks the chain,
	// or -1 when valid
	Row int

	// Expected is the balance the broken line should have carried
	Expected decimal.Decimal

	// Actual is the balance the broken line carried
	Actual decimal.Decimal

	// Difference is Actual minus Expected
	Difference decimal.Decimal

	// Reason explains why validation failed (empty if valid)
	Reason string
}

// ValidateRunningBalance checks that each line's balance equals the
// previous balance plus the line's amount.
//
// Statements are exported both oldest-first and newest-first, so both
// directions are tried and the one with fewer breaks is reported. Lines
// without a balance are skipped. Fewer than two balances is trivially valid.
func ValidateRunningBalance(txs []*transaction.BankTransaction) *BalanceValidation {
	var withBalance []int
	for i, tx := range txs {
		if tx.Balance.Valid {
			withBalance = append(withBalance, i)
		}
	}
	if len(withBalance) < 2 {
		return &BalanceValidation{Valid: true, Row: -1}
	}

	forward, forwardBreaks := walk(txs, withBalance, false)
	reverse, reverseBreaks := walk(txs, withBalance, true)
	if reverseBreaks < forwardBreaks {
		return reverse
	}
	return forward
}

// walk compares each balanced line with the previous balanced line. With
// newestFirst set, the previous line in time is the next one in the file.
func walk(txs []*transaction.BankTransaction, idx []int, newestFirst bool) (*BalanceValidation, int) {
	result := &BalanceValidation{Valid: true, Row: -1}
	breaks := 0

	for k := 1; k < len(idx); k++ {
		prev, cur := txs[idx[k-1]], txs[idx[k]]
		row := idx[k]
		if newestFirst {
			prev, cur = cur, prev
			row = idx[k-1]
		}

		expected := prev.Balance.Decimal.Add(cur.Amount)
		result.Checked++
		if expected.Equal(cur.Balance.Decimal) {
			continue
		}

		breaks++
		if !result.Valid {
			continue
		}
		diff := cur.Balance.Decimal.Sub(expected)
		result.Valid = false
		result.Row = row
		result.Expected = expected
		result.Actual = cur.Balance.Decimal
		result.Difference = diff
		result.Reason = fmt.Sprintf("balance on %s (%s) is %s, expected %s: a line may be missing or duplicated",
			cur.PostedOn.Format("2006-01-02"), cur.Details, cur.Balance.Decimal.StringFixed(2), expected.StringFixed(2))
	}
	return result, breaks
}
