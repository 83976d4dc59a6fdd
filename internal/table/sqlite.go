package table

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// MaxSQLiteColumns is the widest row the SQLite backend stores.
const MaxSQLiteColumns = 10

const cellColumns = "width, c0, c1, c2, c3, c4, c5, c6, c7, c8, c9"

// OpenSQLite opens (or creates) the database at path and applies the
// schema migrations. path may be ":memory:".
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises
	// writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// SQLite stores one named table inside the sheet_rows table.
type SQLite struct {
	db    *sql.DB
	sheet string
}

// NewSQLite returns the table called sheet in db. The schema must already
// be migrated (see OpenSQLite).
func NewSQLite(db *sql.DB, sheet string) *SQLite {
	return &SQLite{db: db, sheet: sheet}
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLite) Header(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+cellColumns+" FROM sheet_rows WHERE sheet = ? AND is_header = 1 LIMIT 1", s.sheet)
	if err != nil {
		return nil, fmt.Errorf("reading header of %q: %w", s.sheet, err)
	}
	out, err := scanRows(rows)
	if err != nil || len(out) == 0 {
		return nil, err
	}
	return headerRow(out[0]), nil
}

func (s *SQLite) Reset(ctx context.Context, header []string) error {
	return s.inTx(ctx, func(q queryer) error {
		if _, err := q.ExecContext(ctx, "DELETE FROM sheet_rows WHERE sheet = ?", s.sheet); err != nil {
			return fmt.Errorf("clearing %q: %w", s.sheet, err)
		}
		return s.insert(ctx, q, true, header)
	})
}

func (s *SQLite) Rows(ctx context.Context, where Where) ([][]string, error) {
	cond, args, err := s.conditions(where)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+cellColumns+" FROM sheet_rows WHERE "+cond+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("querying %q: %w", s.sheet, err)
	}
	return scanRows(rows)
}

func (s *SQLite) Append(ctx context.Context, rows ...[]string) error {
	return s.inTx(ctx, func(q queryer) error {
		return s.appendRows(ctx, q, rows)
	})
}

func (s *SQLite) Delete(ctx context.Context, where Where) (int, error) {
	return s.deleteRows(ctx, s.db, where)
}

// Replace deletes and appends inside one transaction.
func (s *SQLite) Replace(ctx context.Context, where Where, rows ...[]string) (int, error) {
	var n int
	err := s.inTx(ctx, func(q queryer) error {
		var err error
		if n, err = s.deleteRows(ctx, q, where); err != nil {
			return err
		}
		return s.appendRows(ctx, q, rows)
	})
	return n, err
}

func (s *SQLite) appendRows(ctx context.Context, q queryer, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	var count int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM sheet_rows WHERE sheet = ?", s.sheet).Scan(&count); err != nil {
		return fmt.Errorf("counting rows of %q: %w", s.sheet, err)
	}
	for i, r := range rows {
		if err := s.insert(ctx, q, count == 0 && i == 0, r); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) deleteRows(ctx context.Context, q queryer, where Where) (int, error) {
	cond, args, err := s.conditions(where)
	if err != nil {
		return 0, err
	}
	res, err := q.ExecContext(ctx, "DELETE FROM sheet_rows WHERE "+cond, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting from %q: %w", s.sheet, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error getting rows affected: %w", err)
	}
	return int(n), nil
}

func (s *SQLite) insert(ctx context.Context, q queryer, header bool, row []string) error {
	if len(row) > MaxSQLiteColumns {
		return fmt.Errorf("%w: %d > %d", ErrTooWide, len(row), MaxSQLiteColumns)
	}
	args := make([]any, 0, MaxSQLiteColumns+3)
	isHeader := 0
	if header {
		isHeader = 1
	}
	args = append(args, s.sheet, isHeader, len(row))
	for i := 0; i < MaxSQLiteColumns; i++ {
		v := ""
		if i < len(row) {
			v = row[i]
		}
		args = append(args, v)
	}
	_, err := q.ExecContext(ctx,
		"INSERT INTO sheet_rows (sheet, is_header, "+cellColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		args...)
	if err != nil {
		return fmt.Errorf("inserting into %q: %w", s.sheet, err)
	}
	return nil
}

// conditions builds the WHERE clause for data rows of this sheet. Column
// names come from validated indexes only.
func (s *SQLite) conditions(where Where) (string, []any, error) {
	parts := []string{"sheet = ?", "is_header = 0"}
	args := []any{s.sheet}
	for col := 0; col < MaxSQLiteColumns; col++ {
		v, ok := where[col]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("c%d = ?", col))
		args = append(args, v)
	}
	for col := range where {
		if col < 0 || col >= MaxSQLiteColumns {
			return "", nil, fmt.Errorf("%w: column %d", ErrTooWide, col)
		}
	}
	return strings.Join(parts, " AND "), args, nil
}

func (s *SQLite) inTx(ctx context.Context, fn func(q queryer) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func scanRows(rows *sql.Rows) ([][]string, error) {
	defer rows.Close()
	var out [][]string
	for rows.Next() {
		var width int
		var c [MaxSQLiteColumns]string
		if err := rows.Scan(&width, &c[0], &c[1], &c[2], &c[3], &c[4], &c[5], &c[6], &c[7], &c[8], &c[9]); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if width > MaxSQLiteColumns {
			width = MaxSQLiteColumns
		}
		out = append(out, append([]string(nil), c[:width]...))
	}
	return out, rows.Err()
}
