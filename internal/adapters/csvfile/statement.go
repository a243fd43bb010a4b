package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

// Column aliases accepted in statement files
var (
	dateColumns        = []string{"date", "posting date", "posted", "transaction date"}
	amountColumns      = []string{"amount", "value"}
	descriptionColumns = []string{"description", "details", "memo", "narrative", "payee"}
	typeColumns        = []string{"type", "transaction type"}
	referenceColumns   = []string{"reference", "ref"}
	balanceColumns     = []string{"balance", "running balance"}
)

// rowFunc handles one data row; line is the 1-based line in the file
type rowFunc func(row []string, line int) error

// readRows reads the header with csv and hands each data row to fn.
// An empty file yields no rows and no error.
func readRows(r io.Reader, onHeader func(Header) error, fn rowFunc) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	if err := onHeader(NewHeader(header)); err != nil {
		return err
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV record: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if blank(row) {
			continue
		}
		if err := fn(row, line); err != nil {
			return err
		}
	}
}

func blank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// statementColumns holds the positions shared by bank and card statements
type statementColumns struct {
	date, amount, description int
	extra                     int
	hasExtra                  bool
}

func statementHeader(h Header, extraAliases []string) (statementColumns, error) {
	var cols statementColumns
	var err error
	if cols.date, err = h.Require(dateColumns...); err != nil {
		return cols, err
	}
	if cols.amount, err = h.Require(amountColumns...); err != nil {
		return cols, err
	}
	if cols.description, err = h.Require(descriptionColumns...); err != nil {
		return cols, err
	}
	cols.extra, cols.hasExtra = h.Lookup(extraAliases...)
	return cols, nil
}

// ReadBankStatement parses a bank statement. Columns: date, amount (signed,
// negative is money out), description, and optionally type and balance.
func ReadBankStatement(r io.Reader, dateLayout string) ([]*transaction.BankTransaction, error) {
	var cols statementColumns
	var balance int
	var hasBalance bool
	var out []*transaction.BankTransaction

	err := readRows(r,
		func(h Header) (err error) {
			balance, hasBalance = h.Lookup(balanceColumns...)
			cols, err = statementHeader(h, typeColumns)
			return err
		},
		func(row []string, line int) error {
			date, err := time.Parse(dateLayout, field(row, cols.date, true))
			if err != nil {
				return rowError(line, "invalid date %q", field(row, cols.date, true))
			}
			amount, err := ParseAmount(field(row, cols.amount, true))
			if err != nil {
				return rowError(line, "%v", err)
			}
			txType := strings.ToUpper(field(row, cols.extra, cols.hasExtra))
			tx := transaction.NewBankTransaction(date, amount, field(row, cols.description, true), txType)
			if b := field(row, balance, hasBalance); b != "" {
				value, err := ParseAmount(b)
				if err != nil {
					return rowError(line, "invalid balance %q", b)
				}
				tx.Balance = decimal.NewNullDecimal(value)
			}
			out = append(out, tx)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadCardStatement parses a credit-card statement. Columns: date, amount
// (positive is a charge), description, and optionally reference.
func ReadCardStatement(r io.Reader, dateLayout string) ([]*transaction.CardTransaction, error) {
	var cols statementColumns
	var out []*transaction.CardTransaction

	err := readRows(r,
		func(h Header) (err error) {
			cols, err = statementHeader(h, referenceColumns)
			return err
		},
		func(row []string, line int) error {
			date, err := time.Parse(dateLayout, field(row, cols.date, true))
			if err != nil {
				return rowError(line, "invalid date %q", field(row, cols.date, true))
			}
			charge, err := ParseAmount(field(row, cols.amount, true))
			if err != nil {
				return rowError(line, "%v", err)
			}
			out = append(out, transaction.NewCardTransaction(date, charge, field(row, cols.description, true), field(row, cols.extra, cols.hasExtra)))
			return nil
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadSourceFile opens path and reads it as a bank or card statement
func ReadSourceFile(path, format, dateLayout string) ([]transaction.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open statement %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var sources []transaction.Source
	switch format {
	case "card":
		txs, err := ReadCardStatement(f, dateLayout)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, tx := range txs {
			sources = append(sources, tx)
		}
	case "bank", "":
		txs, err := ReadBankStatement(f, dateLayout)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, tx := range txs {
			sources = append(sources, tx)
		}
	default:
		return nil, fmt.Errorf("unknown statement format %q", format)
	}
	return sources, nil
}
