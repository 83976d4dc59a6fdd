package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Tiliavir/tsh/internal/model"
	"github.com/Tiliavir/tsh/internal/table"
)

// Backend names accepted by Open.
const (
	BackendXLSX   = "xlsx"
	BackendSQLite = "sqlite"
)

// OpenOptions selects and configures the persisted tables.
type OpenOptions struct {
	Backend         string
	Path            string
	JobsSheet       string
	WeeksSheet      string
	ResetOnMismatch bool
	Logger          *log.Logger
}

// Store bundles the week store and job registry over one backend.
type Store struct {
	Weeks    *WeekStore
	Jobs     *JobRegistry
	Location string
	close    func() error
}

// Close releases the backend.
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// DefaultPath returns the default data file for backend inside base.
func DefaultPath(base, backend string) string {
	if backend == BackendSQLite {
		return filepath.Join(base, "timesheet.db")
	}
	return filepath.Join(base, "timesheet.xlsx")
}

// Open opens the configured backend and prepares both tables.
func Open(ctx context.Context, opts OpenOptions) (*Store, error) {
	var (
		jobs, weeks table.Table
		closer      func() error
	)
	switch strings.ToLower(opts.Backend) {
	case "", BackendXLSX:
		wb, err := table.OpenWorkbook(opts.Path)
		if err != nil {
			return nil, unavailable("opening workbook", err)
		}
		closer = wb.Close
		js, err := wb.Sheet(opts.JobsSheet)
		if err != nil {
			return nil, errors.Join(unavailable("opening jobs sheet", err), wb.Close())
		}
		ws, err := wb.Sheet(opts.WeeksSheet, model.ColHours)
		if err != nil {
			return nil, errors.Join(unavailable("opening weeks sheet", err), wb.Close())
		}
		jobs, weeks = js, ws
	case BackendSQLite:
		if opts.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(opts.Path), 0o700); err != nil {
				return nil, unavailable("creating database directory", err)
			}
		}
		db, err := table.OpenSQLite(ctx, opts.Path)
		if err != nil {
			return nil, unavailable("opening database", err)
		}
		closer = db.Close
		jobs, weeks = table.NewSQLite(db, opts.JobsSheet), table.NewSQLite(db, opts.WeeksSheet)
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want %s or %s)", opts.Backend, BackendXLSX, BackendSQLite)
	}

	return newStore(ctx, jobs, weeks, closer, opts)
}

// OpenTables builds a Store over already-open tables.
func OpenTables(ctx context.Context, jobs, weeks table.Table, opts OpenOptions) (*Store, error) {
	return newStore(ctx, jobs, weeks, nil, opts)
}

func newStore(ctx context.Context, jobs, weeks table.Table, closer func() error, opts OpenOptions) (*Store, error) {
	ws, err := NewWeekStore(ctx, weeks, Options{ResetOnMismatch: opts.ResetOnMismatch, Logger: opts.Logger})
	if err != nil {
		if closer != nil {
			err = errors.Join(err, closer())
		}
		return nil, err
	}
	return &Store{
		Weeks:    ws,
		Jobs:     NewJobRegistry(jobs, ws),
		Location: opts.Path,
		close:    closer,
	}, nil
}
