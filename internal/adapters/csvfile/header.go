// Package csvfile loads bank statements, card statements and the ledger
// from CSV files, and writes the finalized ledger back.
//
// Files are header-driven: column order does not matter and header names
// are matched case-insensitively. Dates use the configured layout; amounts
// may carry a currency symbol, thousands separators or accounting-style
// parentheses for negatives.
package csvfile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrMissingColumn means a required header is absent
	ErrMissingColumn = errors.New("missing column")
	// ErrInvalidRow means a row could not be parsed
	ErrInvalidRow = errors.New("invalid row")
)

// Header maps lowercase column names to their position
type Header map[string]int

// NewHeader indexes a header row
func NewHeader(row []string) Header {
	h := make(Header, len(row))
	for i, col := range row {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}
	return h
}

// Lookup returns the position of the first alias present in the header
func (h Header) Lookup(aliases ...string) (int, bool) {
	for _, a := range aliases {
		if i, ok := h[a]; ok {
			return i, true
		}
	}
	return 0, false
}

// Require returns the position of a column that must be present
func (h Header) Require(aliases ...string) (int, error) {
	if i, ok := h.Lookup(aliases...); ok {
		return i, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(aliases, " or "))
}

// field returns the trimmed value at i, or "" for short rows and absent columns
func field(row []string, i int, present bool) string {
	if !present || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ParseAmount parses "1,234.50", "-£12.00", "$5" or "(12.00)"
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		negative = true
		clean = clean[1 : len(clean)-1]
	}
	clean = strings.NewReplacer(",", "", "£", "", "$", "", "€", "", " ", "").Replace(clean)
	if clean == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	amount, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

func rowError(line int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrInvalidRow, line, fmt.Sprintf(format, args...))
}
