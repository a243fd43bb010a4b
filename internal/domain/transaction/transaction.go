// Package transaction defines the records that take part in a
// reconciliation: source records imported from a third-party statement and
// target records held in the owned ledger.
//
// Concrete statement formats (bank, credit card) implement Source; the
// ledger implements Target. Neither side carries match state: pairing is
// tracked by the reconciler's match table, keyed by ID().
package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is the capability set shared by both sides of a reconciliation
type Record interface {
	ID() string
	Date() time.Time
	MainAmount() decimal.Decimal
	Description() string
}

// Source is a record from the authoritative third-party feed
type Source interface {
	Record
	TransactionType() string
}

// Target is a record in the owned ledger
type Target interface {
	Record
	SetMainAmount(amount decimal.Decimal)
	SetDescription(description string)
	Reconcile()
	Unreconcile()
	IsReconciled() bool
}

// TargetFactory creates ledger records for source records that never found
// a partner
type TargetFactory interface {
	CreateFromMatch(
		date time.Time,
		amount decimal.Decimal,
		txType string,
		description string,
		extraInfo string,
		source Source,
	) Target
}

// DateOnly truncates t to midnight UTC of its calendar day
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
