// Package spreadsheet reads and writes the ledger as an XLSX workbook.
// The layout matches the CSV ledger: one header row, then one entry per row.
package spreadsheet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/eshaffer321/statement-reconciler/internal/adapters/csvfile"
	"github.com/eshaffer321/statement-reconciler/internal/domain/reconciler"
	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

// SheetName is the sheet the ledger is written to. Reading falls back to
// the first sheet when it is missing.
const SheetName = "Ledger"

// ReadLedger loads ledger entries from the workbook at path
func ReadLedger(path, dateLayout string) ([]*transaction.LedgerEntry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sheet := SheetName
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	idx, err := csvfile.NewLedgerColumnIndex(csvfile.NewHeader(rows[0]))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var entries []*transaction.LedgerEntry
	for i, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		entry, err := idx.ParseRow(row, i+2, dateLayout)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		entry.Amount = entry.Amount.Round(2)
		entries = append(entries, entry)
	}
	return entries, nil
}

// Writer is a reconciler.Sink that saves the ledger as a workbook
type Writer struct {
	Path       string
	DateLayout string
}

var _ reconciler.Sink = (*Writer)(nil)

// NewWriter creates a workbook writer for path
func NewWriter(path, dateLayout string) *Writer {
	return &Writer{Path: path, DateLayout: dateLayout}
}

// Write replaces the workbook at Path with targets
func (w *Writer) Write(ctx context.Context, targets []transaction.Target) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := w.build(targets)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	tmp, err := os.CreateTemp(filepath.Dir(w.Path), filepath.Base(w.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp workbook: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := f.Write(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.Path); err != nil {
		return fmt.Errorf("failed to replace workbook %s: %w", w.Path, err)
	}
	return nil
}

// amountCell returns amount as a number so the sheet can sum it, or as a
// fixed two-decimal string when a float64 cannot hold it exactly
func amountCell(amount decimal.Decimal) interface{} {
	cents := amount.Round(2)
	f := cents.InexactFloat64()
	if decimal.NewFromFloat(f).Equal(cents) {
		return f
	}
	return cents.StringFixed(2)
}

func (w *Writer) build(targets []transaction.Target) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(csvfile.LedgerColumns))
	for i, col := range csvfile.LedgerColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, t := range targets {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		values := csvfile.FormatLedgerRow(t, w.DateLayout)
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = v
		}
		row[1] = amountCell(t.MainAmount())

		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	return f, nil
}
