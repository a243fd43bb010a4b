package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

const ledgerDateLayout = "2006-01-02"

// ReplaceLedger swaps the stored ledger for entries in one transaction.
// On error the previous ledger is left intact.
func (s *Storage) ReplaceLedger(ctx context.Context, entries []LedgerRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin ledger transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_entries`); err != nil {
		return fmt.Errorf("failed to clear ledger: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ledger_entries (position, entry_id, date, amount, memo, type, category, notes, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare ledger insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, i, e.EntryID, e.Date, e.Amount, e.Memo, e.Type, e.Category, e.Notes, e.Status); err != nil {
			return fmt.Errorf("failed to insert ledger entry %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// LoadLedger returns the stored ledger in position order
func (s *Storage) LoadLedger(ctx context.Context) ([]LedgerRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, entry_id, date, amount, memo, type, category, notes, status
		FROM ledger_entries
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []LedgerRow
	for rows.Next() {
		var e LedgerRow
		if err := rows.Scan(&e.Position, &e.EntryID, &e.Date, &e.Amount, &e.Memo, &e.Type, &e.Category, &e.Notes, &e.Status); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LoadLedgerEntries returns the stored ledger as domain entries
func (s *Storage) LoadLedgerEntries(ctx context.Context) ([]*transaction.LedgerEntry, error) {
	rows, err := s.LoadLedger(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]*transaction.LedgerEntry, 0, len(rows))
	for _, r := range rows {
		e, err := r.toEntry()
		if err != nil {
			return nil, fmt.Errorf("ledger position %d: %w", r.Position, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r LedgerRow) toEntry() (*transaction.LedgerEntry, error) {
	date, err := time.Parse(ledgerDateLayout, r.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", r.Date, err)
	}
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", r.Amount, err)
	}
	return &transaction.LedgerEntry{
		EntryID:  r.EntryID,
		PostedOn: date,
		Amount:   amount,
		Memo:     r.Memo,
		Type:     r.Type,
		Category: r.Category,
		Notes:    r.Notes,
		Status:   r.Status,
	}, nil
}

// LedgerRowFrom converts a ledger target into its stored form
func LedgerRowFrom(t transaction.Target) LedgerRow {
	e := transaction.LedgerEntryFrom(t)
	row := LedgerRow{
		EntryID:  e.EntryID,
		Date:     e.PostedOn.Format(ledgerDateLayout),
		Amount:   e.Amount.StringFixed(2),
		Memo:     e.Memo,
		Type:     e.Type,
		Category: e.Category,
		Notes:    e.Notes,
		Status:   e.Status,
	}
	if row.Status == "" {
		row.Status = transaction.StatusPending
	}
	return row
}

// LedgerSink writes a finalized ledger to the database
type LedgerSink struct {
	repo LedgerRepository
}

// NewLedgerSink creates a sink over repo
func NewLedgerSink(repo LedgerRepository) *LedgerSink {
	return &LedgerSink{repo: repo}
}

// Write replaces the stored ledger with targets
func (s *LedgerSink) Write(ctx context.Context, targets []transaction.Target) error {
	rows := make([]LedgerRow, len(targets))
	for i, t := range targets {
		rows[i] = LedgerRowFrom(t)
	}
	return s.repo.ReplaceLedger(ctx, rows)
}
