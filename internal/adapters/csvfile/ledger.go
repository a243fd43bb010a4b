package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eshaffer321/statement-reconciler/internal/domain/reconciler"
	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

// LedgerColumns is the column order written for a ledger
var LedgerColumns = []string{"date", "amount", "memo", "type", "category", "notes", "status", "id"}

// LedgerColumnIndex holds the positions of ledger columns in a header
type LedgerColumnIndex struct {
	header Header
	date   int
	amount int
	memo   int
}

// NewLedgerColumnIndex checks that h carries the required ledger columns
func NewLedgerColumnIndex(h Header) (*LedgerColumnIndex, error) {
	idx := &LedgerColumnIndex{header: h}
	var err error
	if idx.date, err = h.Require("date"); err != nil {
		return nil, err
	}
	if idx.amount, err = h.Require("amount"); err != nil {
		return nil, err
	}
	if idx.memo, err = h.Require("memo", "description"); err != nil {
		return nil, err
	}
	return idx, nil
}

func (idx *LedgerColumnIndex) optional(row []string, name string) string {
	i, ok := idx.header[name]
	return field(row, i, ok)
}

// ParseRow builds a ledger entry from one row. A missing id gets a fresh
// one; a missing status means pending.
func (idx *LedgerColumnIndex) ParseRow(row []string, line int, dateLayout string) (*transaction.LedgerEntry, error) {
	date, err := time.Parse(dateLayout, field(row, idx.date, true))
	if err != nil {
		return nil, rowError(line, "invalid date %q", field(row, idx.date, true))
	}
	amount, err := ParseAmount(field(row, idx.amount, true))
	if err != nil {
		return nil, rowError(line, "%v", err)
	}

	entry := &transaction.LedgerEntry{
		EntryID:  idx.optional(row, "id"),
		PostedOn: transaction.DateOnly(date),
		Amount:   amount,
		Memo:     field(row, idx.memo, true),
		Type:     idx.optional(row, "type"),
		Category: idx.optional(row, "category"),
		Notes:    idx.optional(row, "notes"),
		Status:   strings.ToLower(idx.optional(row, "status")),
	}
	if entry.EntryID == "" {
		entry.EntryID = uuid.NewString()
	}
	switch entry.Status {
	case transaction.StatusReconciled:
	case "", transaction.StatusPending:
		entry.Status = transaction.StatusPending
	default:
		return nil, rowError(line, "unknown status %q", entry.Status)
	}
	return entry, nil
}

// FormatLedgerRow renders t in LedgerColumns order
func FormatLedgerRow(t transaction.Target, dateLayout string) []string {
	e := transaction.LedgerEntryFrom(t)
	status := e.Status
	if status == "" {
		status = transaction.StatusPending
	}
	return []string{
		e.PostedOn.Format(dateLayout),
		e.Amount.StringFixed(2),
		e.Memo,
		e.Type,
		e.Category,
		e.Notes,
		status,
		e.EntryID,
	}
}

// ReadLedger parses a ledger CSV. Required columns: date, amount, memo.
// Optional: type, category, notes, status, id.
func ReadLedger(r io.Reader, dateLayout string) ([]*transaction.LedgerEntry, error) {
	var idx *LedgerColumnIndex
	var out []*transaction.LedgerEntry

	err := readRows(r,
		func(h Header) (err error) {
			idx, err = NewLedgerColumnIndex(h)
			return err
		},
		func(row []string, line int) error {
			entry, err := idx.ParseRow(row, line, dateLayout)
			if err != nil {
				return err
			}
			out = append(out, entry)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadLedgerFile opens path and reads it as a ledger
func ReadLedgerFile(path, dateLayout string) ([]*transaction.LedgerEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	entries, err := ReadLedger(f, dateLayout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// WriteLedger writes targets as CSV with a LedgerColumns header
func WriteLedger(w io.Writer, targets []transaction.Target, dateLayout string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(LedgerColumns); err != nil {
		return err
	}
	for _, t := range targets {
		if err := writer.Write(FormatLedgerRow(t, dateLayout)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// LedgerWriter is a reconciler.Sink that writes the ledger to a CSV file.
// The file is replaced atomically: a failed write leaves the old one intact.
type LedgerWriter struct {
	Path       string
	DateLayout string
}

var _ reconciler.Sink = (*LedgerWriter)(nil)

// NewLedgerWriter creates a writer for path
func NewLedgerWriter(path, dateLayout string) *LedgerWriter {
	return &LedgerWriter{Path: path, DateLayout: dateLayout}
}

// Write replaces the file at Path with targets
func (w *LedgerWriter) Write(ctx context.Context, targets []transaction.Target) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(w.Path), filepath.Base(w.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := WriteLedger(tmp, targets, w.DateLayout); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.Path); err != nil {
		return fmt.Errorf("failed to replace ledger %s: %w", w.Path, err)
	}
	return nil
}
