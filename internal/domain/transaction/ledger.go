package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger entry statuses
const (
	StatusPending    = "pending"
	StatusReconciled = "reconciled"
)

// UnmatchedFromThirdParty tags ledger entries synthesized from source records
// that were never paired
const UnmatchedFromThirdParty = "unmatched from third party"

// LedgerEntry is a record in the user-maintained ledger
type LedgerEntry struct {
	EntryID  string
	PostedOn time.Time
	Amount   decimal.Decimal
	Memo     string
	Type     string
	Category string
	Notes    string
	Status   string
}

var _ Target = (*LedgerEntry)(nil)

// NewLedgerEntry creates a pending ledger entry with a fresh ID
func NewLedgerEntry(date time.Time, amount decimal.Decimal, memo string) *LedgerEntry {
	return &LedgerEntry{
		EntryID:  uuid.NewString(),
		PostedOn: DateOnly(date),
		Amount:   amount,
		Memo:     memo,
		Status:   StatusPending,
	}
}

func (l *LedgerEntry) ID() string                  { return l.EntryID }
func (l *LedgerEntry) Date() time.Time             { return l.PostedOn }
func (l *LedgerEntry) MainAmount() decimal.Decimal { return l.Amount }
func (l *LedgerEntry) Description() string         { return l.Memo }

func (l *LedgerEntry) SetMainAmount(amount decimal.Decimal) { l.Amount = amount }
func (l *LedgerEntry) SetDescription(description string)    { l.Memo = description }

// Reconcile marks the entry as accounted for. Calling it twice is harmless.
func (l *LedgerEntry) Reconcile() { l.Status = StatusReconciled }

// Unreconcile returns the entry to pending
func (l *LedgerEntry) Unreconcile() { l.Status = StatusPending }

func (l *LedgerEntry) IsReconciled() bool { return l.Status == StatusReconciled }

// CategoryGuesser suggests a ledger category for a description
type CategoryGuesser interface {
	Category(description string) (string, bool)
}

// LedgerFactory builds LedgerEntry values for unmatched source records.
// When Categories is set, new entries get a suggested category.
type LedgerFactory struct {
	Categories CategoryGuesser
}

var _ TargetFactory = LedgerFactory{}

// CreateFromMatch synthesizes a ledger entry mirroring a source record
func (f LedgerFactory) CreateFromMatch(
	date time.Time,
	amount decimal.Decimal,
	txType string,
	description string,
	extraInfo string,
	source Source,
) Target {
	entry := NewLedgerEntry(date, amount, description)
	entry.Type = txType
	entry.Notes = extraInfo
	if source != nil && source.ID() != "" {
		entry.Notes = extraInfo + " (" + source.ID() + ")"
	}
	if f.Categories != nil {
		if category, ok := f.Categories.Category(description); ok {
			entry.Category = category
		}
	}
	return entry
}

// LedgerEntryFrom returns t as a ledger entry. Other Target implementations
// are copied into a new entry carrying only the common fields.
func LedgerEntryFrom(t Target) *LedgerEntry {
	if e, ok := t.(*LedgerEntry); ok {
		return e
	}
	e := &LedgerEntry{
		EntryID:  t.ID(),
		PostedOn: t.Date(),
		Amount:   t.MainAmount(),
		Memo:     t.Description(),
		Status:   StatusPending,
	}
	if t.IsReconciled() {
		e.Status = StatusReconciled
	}
	return e
}
