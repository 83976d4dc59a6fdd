package table

import (
	"context"
	"sync"
)

// Memory is a slice-backed Table. It scans linearly and deletes in reverse
// order, like a spreadsheet would.
type Memory struct {
	mu   sync.Mutex
	rows [][]string
}

// NewMemory returns a Memory table holding the given rows (header first).
func NewMemory(rows ...[]string) *Memory {
	m := &Memory{}
	for _, r := range rows {
		m.rows = append(m.rows, cloneRow(r))
	}
	return m
}

func (m *Memory) Header(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.rows) == 0 {
		return nil, nil
	}
	return headerRow(m.rows[0]), nil
}

func (m *Memory) Reset(_ context.Context, header []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = [][]string{cloneRow(header)}
	return nil
}

func (m *Memory) Rows(_ context.Context, where Where) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out [][]string
	for i := 1; i < len(m.rows); i++ {
		if where.Match(m.rows[i]) {
			out = append(out, cloneRow(m.rows[i]))
		}
	}
	return out, nil
}

func (m *Memory) Append(_ context.Context, rows ...[]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		m.rows = append(m.rows, cloneRow(r))
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, where Where) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for i := len(m.rows) - 1; i >= 1; i-- {
		if where.Match(m.rows[i]) {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			n++
		}
	}
	return n, nil
}

// Len returns the number of rows including the header.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}
