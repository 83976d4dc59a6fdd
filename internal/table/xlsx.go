package table

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/xuri/excelize/v2"
)

// Workbook is an .xlsx file whose sheets are tables. Every mutation is
// written back to disk before it returns.
type Workbook struct {
	mu   sync.Mutex
	path string
	file *excelize.File
}

// OpenWorkbook opens the workbook at path, creating an empty one when the
// file does not exist yet.
func OpenWorkbook(path string) (*Workbook, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating workbook directory: %w", err)
		}
		wb := &Workbook{path: path, file: excelize.NewFile()}
		if err := wb.save(); err != nil {
			return nil, err
		}
		return wb, nil
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	return &Workbook{path: path, file: f}, nil
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// Sheet returns the table stored on the named sheet, adding the sheet when
// it is missing. Cells in the numeric columns are written as numbers when
// they hold a canonical decimal; every other cell is written as text.
func (w *Workbook) Sheet(name string, numeric ...int) (*XLSXSheet, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx, err := w.file.GetSheetIndex(name)
	if err != nil {
		return nil, fmt.Errorf("looking up sheet %q: %w", name, err)
	}
	if idx < 0 {
		if _, err := w.file.NewSheet(name); err != nil {
			return nil, fmt.Errorf("adding sheet %q: %w", name, err)
		}
		if err := w.save(); err != nil {
			return nil, err
		}
	}
	sheet := &XLSXSheet{wb: w, name: name, numeric: map[int]bool{}}
	for _, col := range numeric {
		sheet.numeric[col] = true
	}
	return sheet, nil
}

// save writes the workbook to a temp file and renames it into place.
func (w *Workbook) save() error {
	tmp, err := os.CreateTemp(filepath.Dir(w.path), ".tsh-*.xlsx.tmp")
	if err != nil {
		return fmt.Errorf("workbook error creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if err := w.file.Write(tmp); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("workbook error writing %s: %w", w.path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("workbook error closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, w.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("workbook error renaming temp file: %w", err)
	}
	return nil
}

// XLSXSheet is one sheet of a Workbook.
type XLSXSheet struct {
	wb      *Workbook
	name    string
	numeric map[int]bool
}

func (s *XLSXSheet) all() ([][]string, error) {
	rows, err := s.wb.file.GetRows(s.name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", s.name, err)
	}
	return rows, nil
}

func (s *XLSXSheet) Header(_ context.Context) ([]string, error) {
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()
	rows, err := s.all()
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return headerRow(rows[0]), nil
}

func (s *XLSXSheet) Reset(_ context.Context, header []string) error {
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()
	rows, err := s.all()
	if err != nil {
		return err
	}
	for i := len(rows); i >= 1; i-- {
		if err := s.wb.file.RemoveRow(s.name, i); err != nil {
			return fmt.Errorf("clearing sheet %q: %w", s.name, err)
		}
	}
	if err := s.writeRow(1, header); err != nil {
		return err
	}
	return s.wb.save()
}

func (s *XLSXSheet) Rows(_ context.Context, where Where) ([][]string, error) {
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()
	rows, err := s.all()
	if err != nil {
		return nil, err
	}
	var out [][]string
	for i := 1; i < len(rows); i++ {
		if len(rows[i]) == 0 {
			continue
		}
		if where.Match(rows[i]) {
			out = append(out, cloneRow(rows[i]))
		}
	}
	return out, nil
}

func (s *XLSXSheet) Append(_ context.Context, rows ...[]string) error {
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()
	if err := s.append(rows); err != nil {
		return err
	}
	return s.wb.save()
}

func (s *XLSXSheet) Delete(_ context.Context, where Where) (int, error) {
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()
	n, err := s.delete(where)
	if err != nil || n == 0 {
		return n, err
	}
	return n, s.wb.save()
}

// Replace deletes the rows matching where and appends rows, writing the
// workbook once.
func (s *XLSXSheet) Replace(_ context.Context, where Where, rows ...[]string) (int, error) {
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()
	n, err := s.delete(where)
	if err != nil {
		return n, err
	}
	if err := s.append(rows); err != nil {
		return n, err
	}
	return n, s.wb.save()
}

func (s *XLSXSheet) append(rows [][]string) error {
	existing, err := s.all()
	if err != nil {
		return err
	}
	next := len(existing) + 1
	for _, r := range rows {
		if err := s.writeRow(next, r); err != nil {
			return err
		}
		next++
	}
	return nil
}

// delete scans bottom-up so row numbers above the cursor stay valid.
func (s *XLSXSheet) delete(where Where) (int, error) {
	rows, err := s.all()
	if err != nil {
		return 0, err
	}
	n := 0
	for i := len(rows) - 1; i >= 1; i-- {
		if len(rows[i]) == 0 || !where.Match(rows[i]) {
			continue
		}
		if err := s.wb.file.RemoveRow(s.name, i+1); err != nil {
			return n, fmt.Errorf("removing row %d of sheet %q: %w", i+1, s.name, err)
		}
		n++
	}
	return n, nil
}

func (s *XLSXSheet) writeRow(row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		if s.numeric[i] {
			cells[i] = cellValue(v)
		} else {
			cells[i] = v
		}
	}
	if err := s.wb.file.SetSheetRow(s.name, cell, &cells); err != nil {
		return fmt.Errorf("writing row %d of sheet %q: %w", row, s.name, err)
	}
	return nil
}

// cellValue stores a canonical decimal string as a number so the column
// stays numeric in spreadsheet tools.
func cellValue(v string) interface{} {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || strconv.FormatFloat(f, 'f', -1, 64) != v {
		return v
	}
	return f
}
