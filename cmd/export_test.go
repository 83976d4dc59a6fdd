package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Tiliavir/tsh/internal/model"
	"github.com/Tiliavir/tsh/internal/timecalc"
)

func TestCsvEscape(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"with space", "with space"},
		{"with,comma", `"with,comma"`},
		{`with"quote`, `"with""quote"`},
		{"with\nnewline", "\"with\nnewline\""},
		{"with\rreturn", "\"with\rreturn\""},
		{"", ""},
	}
	for _, tt := range tests {
		got := csvEscape(tt.input)
		if got != tt.want {
			t.Errorf("csvEscape(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// sampleWeek is the week of Monday 2026-02-23 with a full Monday.
func sampleWeek(job string) *model.WeekRecord {
	week := timecalc.ResolveWeek(time.Date(2026, 2, 25, 0, 0, 0, 0, time.UTC), model.MondayStart)
	rec := week.Blank(job)
	rec.Days[0].ClockIn = "09:00 AM"
	rec.Days[0].BreakStart = "12:00 PM"
	rec.Days[0].BreakEnd = "12:30 PM"
	rec.Days[0].ClockOut = "05:30 PM"
	timecalc.Recompute(rec)
	return rec
}

func TestPrintCSV(t *testing.T) {
	var buf bytes.Buffer
	printCSV(&buf, sampleWeek("Bar, Pub"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, strings.Join(model.WeeksHeader, ","), lines[0])
	assert.Equal(t, `"Bar, Pub",Monday to Sunday,2026-02-23,Monday,2026-02-23,09:00 AM,12:00 PM,12:30 PM,05:30 PM,8.00`, lines[1])
	assert.Equal(t, `"Bar, Pub",Monday to Sunday,2026-02-23,Sunday,2026-03-01,,,,,0.00`, lines[7])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeXLSX(&buf, sampleWeek("Acme")))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Week 2026-02-23")
	require.NoError(t, err)
	require.Len(t, rows, 9)
	assert.Equal(t, model.WeeksHeader, rows[0])
	assert.Equal(t, "Monday", rows[1][model.ColDay])
	assert.Equal(t, "09:00 AM", rows[1][model.ColClockIn])
	assert.Equal(t, "8", rows[1][model.ColHours])
	assert.Equal(t, "Total", rows[8][model.ColHours-1])
	assert.Equal(t, "8", rows[8][model.ColHours])
}

type failingWriter struct{}

var errDiskFull = errors.New("disk full")

func (failingWriter) Write([]byte) (int, error) { return 0, errDiskFull }

func TestWriteExportReportsWriteErrors(t *testing.T) {
	rec := sampleWeek("Acme")
	results := timecalc.Recompute(rec)
	for _, format := range []string{"json", "md", "xlsx"} {
		t.Run(format, func(t *testing.T) {
			err := writeExport(failingWriter{}, format, rec, results, timecalc.PolicyZero)
			assert.ErrorIs(t, err, errDiskFull)
		})
	}
}
