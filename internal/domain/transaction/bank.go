package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bank statement type codes
const (
	TypeDebit         = "DEB"
	TypeCredit        = "CR"
	TypeDirectDebit   = "DD"
	TypeStandingOrder = "SO"
	TypeTransfer      = "TFR"
	TypeCard          = "CARD"
)

// BankTransaction is one line of a bank statement
type BankTransaction struct {
	TxID     string
	PostedOn time.Time
	Amount   decimal.Decimal // signed: negative = money out
	Details  string
	Type     string
	Balance  decimal.NullDecimal // running balance after this line, when the statement has one
}

// Compile-time check that BankTransaction implements Source
var _ Source = (*BankTransaction)(nil)

// NewBankTransaction creates a bank statement line with a fresh ID
func NewBankTransaction(date time.Time, amount decimal.Decimal, details, txType string) *BankTransaction {
	return &BankTransaction{
		TxID:     uuid.NewString(),
		PostedOn: DateOnly(date),
		Amount:   amount,
		Details:  details,
		Type:     txType,
	}
}

func (b *BankTransaction) ID() string                  { return b.TxID }
func (b *BankTransaction) Date() time.Time             { return b.PostedOn }
func (b *BankTransaction) MainAmount() decimal.Decimal { return b.Amount }
func (b *BankTransaction) Description() string         { return b.Details }
func (b *BankTransaction) TransactionType() string     { return b.Type }
