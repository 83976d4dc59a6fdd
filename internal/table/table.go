// Package table defines the narrow persisted-table contract the timesheet
// stores are built on, and its backends: an in-memory table, an .xlsx
// workbook and a SQLite database.
//
// A table is an ordered list of string rows. The first row is the header
// and is never returned by Rows or removed by Delete.
package table

import (
	"context"
	"errors"
)

// ErrTooWide is returned when a row has more columns than a backend stores.
var ErrTooWide = errors.New("row has too many columns")

// Where selects rows by exact column values, keyed by column index.
// Missing trailing cells compare equal to "". An empty Where matches every
// data row.
type Where map[int]string

// Match reports whether row satisfies w.
func (w Where) Match(row []string) bool {
	for col, want := range w {
		got := ""
		if col < len(row) {
			got = row[col]
		}
		if got != want {
			return false
		}
	}
	return true
}

// Table is a persisted table of string rows.
type Table interface {
	// Header returns the first row, or nil when the table has no rows. A
	// blank first row comes back as an empty, non-nil slice.
	Header(ctx context.Context) ([]string, error)
	// Reset removes every row, then writes header as the first row.
	Reset(ctx context.Context, header []string) error
	// Rows returns the data rows matching where, in stored order.
	Rows(ctx context.Context, where Where) ([][]string, error)
	// Append adds rows at the end of the table. On an empty table the
	// first appended row becomes the header.
	Append(ctx context.Context, rows ...[]string) error
	// Delete removes every data row matching where and returns how many
	// were removed.
	Delete(ctx context.Context, where Where) (int, error)
}

// Replacer is implemented by backends that can delete and append in one
// atomic step.
type Replacer interface {
	Replace(ctx context.Context, where Where, rows ...[]string) (int, error)
}

func cloneRow(row []string) []string {
	return append([]string(nil), row...)
}

// headerRow copies a stored first row, keeping a blank one non-nil.
func headerRow(row []string) []string {
	return append([]string{}, row...)
}
