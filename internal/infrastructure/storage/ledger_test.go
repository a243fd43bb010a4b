package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

func TestStorage_ReplaceLedger(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	first := []LedgerRow{
		{EntryID: "a", Date: "2025-06-01", Amount: "-4.20", Memo: "Coffee", Status: transaction.StatusPending},
		{EntryID: "b", Date: "2025-06-02", Amount: "1500.00", Memo: "Salary", Status: transaction.StatusReconciled},
	}
	require.NoError(t, store.ReplaceLedger(ctx, first))

	second := []LedgerRow{
		{EntryID: "c", Date: "2025-06-03", Amount: "-9.99", Memo: "Books", Category: "Leisure", Notes: "gift"},
	}
	require.NoError(t, store.ReplaceLedger(ctx, second))

	rows, err := store.LoadLedger(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "c", rows[0].EntryID)
	assert.Equal(t, "Leisure", rows[0].Category)
	assert.Equal(t, "gift", rows[0].Notes)
	assert.Equal(t, 0, rows[0].Position)
}

func TestStorage_ReplaceLedger_FailureKeepsPreviousLedger(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	require.NoError(t, store.ReplaceLedger(ctx, []LedgerRow{{EntryID: "keep", Date: "2025-06-01", Amount: "1.00"}}))

	// Duplicate entry IDs violate the UNIQUE constraint
	err := store.ReplaceLedger(ctx, []LedgerRow{
		{EntryID: "dup", Date: "2025-06-01", Amount: "1.00"},
		{EntryID: "dup", Date: "2025-06-01", Amount: "2.00"},
	})
	require.Error(t, err)

	rows, err := store.LoadLedger(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "keep", rows[0].EntryID)
}

func TestLedgerSink_WritesTargets(t *testing.T) {
	// Arrange
	store := newTestStorage(t)
	ctx := context.Background()
	date := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)

	matched := transaction.NewLedgerEntry(date, decimal.RequireFromString("-12.5"), "Groceries")
	matched.Category = "Food"
	matched.Reconcile()
	added := transaction.NewLedgerEntry(date, decimal.RequireFromString("-42"), "WATER CO")
	added.Type = transaction.TypeDirectDebit
	added.Notes = transaction.UnmatchedFromThirdParty

	sink := NewLedgerSink(store)

	// Act
	err := sink.Write(ctx, []transaction.Target{matched, added})

	// Assert
	require.NoError(t, err)
	entries, err := store.LoadLedgerEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, matched.ID(), entries[0].ID())
	assert.True(t, entries[0].MainAmount().Equal(decimal.RequireFromString("-12.50")))
	assert.Equal(t, date, entries[0].Date())
	assert.Equal(t, "Food", entries[0].Category)
	assert.True(t, entries[0].IsReconciled())

	assert.Equal(t, "WATER CO", entries[1].Description())
	assert.Equal(t, transaction.TypeDirectDebit, entries[1].Type)
	assert.Equal(t, transaction.UnmatchedFromThirdParty, entries[1].Notes)
	assert.False(t, entries[1].IsReconciled())
}

type failingLedgerRepo struct{ LedgerRepository }

func (failingLedgerRepo) ReplaceLedger(context.Context, []LedgerRow) error {
	return errors.New("read-only database")
}

func TestLedgerSink_PropagatesError(t *testing.T) {
	sink := NewLedgerSink(failingLedgerRepo{})

	err := sink.Write(context.Background(), nil)

	assert.EqualError(t, err, "read-only database")
}

func TestLoadLedgerEntries_InvalidAmount(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	require.NoError(t, store.ReplaceLedger(ctx, []LedgerRow{{EntryID: "x", Date: "2025-06-01", Amount: "twelve"}}))

	_, err := store.LoadLedgerEntries(ctx)

	assert.ErrorContains(t, err, "invalid amount")
}
