package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

const layout = "2006-01-02"

func day(d int) time.Time {
	return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.50", "12.5"},
		{"-4.20", "-4.2"},
		{"1,234.00", "1234"},
		{"£9.99", "9.99"},
		{"-$5", "-5"},
		{"(12.00)", "-12"},
		{" 3 ", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)

			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}

	_, err := ParseAmount("")
	assert.Error(t, err)
	_, err = ParseAmount("twelve")
	assert.Error(t, err)
}

func TestReadBankStatement(t *testing.T) {
	input := "Date,Details,Amount,Type\n" +
		"2025-06-01,TESCO STORES,-12.40,deb\n" +
		"\n" +
		"2025-06-03,SALARY ACME,\"1,500.00\",CR\n"

	txs, err := ReadBankStatement(strings.NewReader(input), layout)

	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, day(1), txs[0].Date())
	assert.Equal(t, "TESCO STORES", txs[0].Description())
	assert.True(t, txs[0].MainAmount().Equal(decimal.RequireFromString("-12.40")))
	assert.Equal(t, transaction.TypeDebit, txs[0].TransactionType())
	assert.True(t, txs[1].MainAmount().Equal(decimal.RequireFromString("1500")))
	assert.NotEqual(t, txs[0].ID(), txs[1].ID())
}

func TestReadBankStatement_TypeIsOptional(t *testing.T) {
	txs, err := ReadBankStatement(strings.NewReader("amount,date,description\n-1.00,2025-06-02,BUS\n"), layout)

	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Empty(t, txs[0].TransactionType())
	assert.Equal(t, "BUS", txs[0].Description())
}

func TestReadBankStatement_Balance(t *testing.T) {
	input := "date,amount,description,balance\n" +
		"2025-06-01,-1.00,BUS,\"1,099.00\"\n" +
		"2025-06-02,-2.00,TRAIN,\n"

	txs, err := ReadBankStatement(strings.NewReader(input), layout)

	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.True(t, txs[0].Balance.Valid)
	assert.True(t, txs[0].Balance.Decimal.Equal(decimal.RequireFromString("1099")))
	assert.False(t, txs[1].Balance.Valid)

	_, err = ReadBankStatement(strings.NewReader("date,amount,description,balance\n2025-06-01,-1.00,BUS,n/a\n"), layout)
	assert.ErrorContains(t, err, "line 2: invalid balance")
}

func TestReadBankStatement_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"missing amount column", "date,description\n2025-06-01,X\n", "amount"},
		{"bad date", "date,amount,description\n01/06/2025,1.00,X\n", "line 2: invalid date"},
		{"bad amount", "date,amount,description\n2025-06-01,1.00,X\n2025-06-02,abc,Y\n", "line 3: invalid amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadBankStatement(strings.NewReader(tt.input), layout)

			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestReadBankStatement_Empty(t *testing.T) {
	txs, err := ReadBankStatement(strings.NewReader(""), layout)

	assert.NoError(t, err)
	assert.Empty(t, txs)
}

func TestReadCardStatement(t *testing.T) {
	input := "date,description,amount,reference\n" +
		"06/01/2025,AMAZON,25.00,REF1\n" +
		"06/04/2025,AMAZON REFUND,-25.00,REF2\n"

	txs, err := ReadCardStatement(strings.NewReader(input), "01/02/2006")

	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.True(t, txs[0].MainAmount().Equal(decimal.RequireFromString("-25")), "charges are money out")
	assert.Equal(t, transaction.TypeCard, txs[0].TransactionType())
	assert.Equal(t, "REF1", txs[0].Reference)
	assert.Equal(t, transaction.TypeCredit, txs[1].TransactionType())
	assert.Equal(t, day(4), txs[1].Date())
}

func TestReadSourceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.csv")
	require.NoError(t, os.WriteFile(path, []byte("date,amount,description\n2025-06-01,9.00,GYM\n"), 0644))

	bank, err := ReadSourceFile(path, "bank", layout)
	require.NoError(t, err)
	card, err := ReadSourceFile(path, "card", layout)
	require.NoError(t, err)

	require.Len(t, bank, 1)
	require.Len(t, card, 1)
	assert.True(t, bank[0].MainAmount().Equal(decimal.RequireFromString("9")))
	assert.True(t, card[0].MainAmount().Equal(decimal.RequireFromString("-9")))

	_, err = ReadSourceFile(path, "ofx", layout)
	assert.Error(t, err)
	_, err = ReadSourceFile(filepath.Join(t.TempDir(), "missing.csv"), "bank", layout)
	assert.Error(t, err)
}

func TestReadLedger(t *testing.T) {
	input := "date,amount,memo,type,category,notes,status,id\n" +
		"2025-06-01,-12.40,Groceries,DEB,Food,,reconciled,abc\n" +
		"2025-06-02,-3.00,Coffee,,,,,\n"

	entries, err := ReadLedger(strings.NewReader(input), layout)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "abc", entries[0].EntryID)
	assert.Equal(t, "Food", entries[0].Category)
	assert.True(t, entries[0].IsReconciled())
	assert.NotEmpty(t, entries[1].EntryID, "missing ids are generated")
	assert.Equal(t, transaction.StatusPending, entries[1].Status)
}

func TestReadLedger_UnknownStatus(t *testing.T) {
	_, err := ReadLedger(strings.NewReader("date,amount,memo,status\n2025-06-01,1,X,void\n"), layout)

	assert.ErrorIs(t, err, ErrInvalidRow)
	assert.ErrorContains(t, err, "unknown status")
}

func TestReadLedger_MissingMemo(t *testing.T) {
	_, err := ReadLedger(strings.NewReader("date,amount\n2025-06-01,1\n"), layout)

	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestLedgerWriter_RoundTrip(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

	groceries := transaction.NewLedgerEntry(day(1), decimal.RequireFromString("-12.4"), "Groceries, weekly")
	groceries.Category = "Food"
	groceries.Reconcile()
	added := transaction.LedgerFactory{}.CreateFromMatch(day(2), decimal.RequireFromString("-20"), transaction.TypeDirectDebit,
		"WATER CO", transaction.UnmatchedFromThirdParty, nil)

	writer := NewLedgerWriter(path, layout)

	// Act
	err := writer.Write(context.Background(), []transaction.Target{groceries, added})
	require.NoError(t, err)
	entries, err := ReadLedgerFile(path, layout)

	// Assert
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, groceries.EntryID, entries[0].EntryID)
	assert.Equal(t, "Groceries, weekly", entries[0].Memo)
	assert.True(t, entries[0].Amount.Equal(decimal.RequireFromString("-12.40")))
	assert.True(t, entries[0].IsReconciled())
	assert.Equal(t, transaction.TypeDirectDebit, entries[1].Type)
	assert.Equal(t, transaction.UnmatchedFromThirdParty, entries[1].Notes)
	assert.Equal(t, transaction.StatusPending, entries[1].Status)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestLedgerWriter_CancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewLedgerWriter(path, layout).Write(ctx, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, path)
}

func TestLedgerWriter_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "ledger.csv")

	err := NewLedgerWriter(path, layout).Write(context.Background(), nil)

	assert.Error(t, err)
}
