package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CardTransaction is one line of a credit-card statement.
// Card statements report spend as a positive charge; MainAmount flips the
// sign so a purchase lines up with a negative ledger amount.
type CardTransaction struct {
	TxID      string
	PostedOn  time.Time
	Charge    decimal.Decimal
	Details   string
	Reference string
}

var _ Source = (*CardTransaction)(nil)

// NewCardTransaction creates a card statement line with a fresh ID
func NewCardTransaction(date time.Time, charge decimal.Decimal, details, reference string) *CardTransaction {
	return &CardTransaction{
		TxID:      uuid.NewString(),
		PostedOn:  DateOnly(date),
		Charge:    charge,
		Details:   details,
		Reference: reference,
	}
}

func (c *CardTransaction) ID() string                  { return c.TxID }
func (c *CardTransaction) Date() time.Time             { return c.PostedOn }
func (c *CardTransaction) MainAmount() decimal.Decimal { return c.Charge.Neg() }
func (c *CardTransaction) Description() string         { return c.Details }

// TransactionType reports refunds (negative charges) as credits
func (c *CardTransaction) TransactionType() string {
	if c.Charge.IsNegative() {
		return TypeCredit
	}
	return TypeCard
}
