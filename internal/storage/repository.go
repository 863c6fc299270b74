package storage

import (
	"context"
	"errors"

	"github.com/content-optimizer/internal/models"
)

var (
	// ErrTabNotFound is returned when reading or writing a tab that was never created
	ErrTabNotFound = errors.New("tab not found")
	// ErrColumnNotFound is returned by UpdateCell for a column missing from the header
	ErrColumnNotFound = errors.New("column not found")
	// ErrRowOutOfRange is returned by UpdateCell for row numbers below 2
	ErrRowOutOfRange = errors.New("row out of range")
)

// RowStore is a spreadsheet-like store of named tabs. Row 1 of every tab is
// its header and data rows are addressed by 1-based row number.
type RowStore interface {
	// EnsureTab creates the tab with the given header if absent. For an
	// existing tab, header names it lacks are appended as trailing columns.
	EnsureTab(ctx context.Context, tab string, header []string) error

	// ReadAll returns the header and every data row in order
	ReadAll(ctx context.Context, tab string) (*models.Table, error)

	AppendRow(ctx context.Context, tab string, values []interface{}) error

	// UpdateCell writes one cell addressed by row number and header name
	UpdateCell(ctx context.Context, tab string, row int, column string, value interface{}) error

	// ResetTab replaces the whole tab with header and rows in a single
	// write, creating the tab if absent. On SQLite a failure leaves the old
	// contents in place.
	ResetTab(ctx context.Context, tab string, header []string, rows [][]interface{}) error

	Close() error
}

// MissingColumns returns the names in want that are not in header, in want order
func MissingColumns(header, want []string) []string {
	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[h] = struct{}{}
	}

	var missing []string
	for _, w := range want {
		if _, ok := have[w]; ok {
			continue
		}
		have[w] = struct{}{}
		missing = append(missing, w)
	}
	return missing
}

// BuildTable converts raw positional rows into a Table. The first raw row is
// the header; data rows are numbered from 2.
func BuildTable(name string, raw [][]string) *models.Table {
	table := &models.Table{Name: name}
	if len(raw) == 0 {
		return table
	}

	table.Header = raw[0]
	for i, values := range raw[1:] {
		table.Rows = append(table.Rows, models.NewRow(i+2, table.Header, values))
	}
	return table
}
