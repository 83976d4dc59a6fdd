package model

import (
	"errors"
	"math"
	"strings"
	"time"
)

// DateLayout is the layout used for every persisted calendar date.
const DateLayout = "2006-01-02"

// ErrEmptyJobName is returned when a job name is blank after trimming.
var ErrEmptyJobName = errors.New("job name must not be empty")

// NormalizeJobName trims surrounding whitespace from a new job name.
func NormalizeJobName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyJobName
	}
	return name, nil
}

// DayEntry is one row of a weekly timesheet. The four time fields hold the
// raw 12-hour strings as typed ("09:00 AM") or are empty.
type DayEntry struct {
	Day        string    `json:"day"`
	Date       time.Time `json:"date"`
	ClockIn    string    `json:"clock_in"`
	BreakStart string    `json:"break_start"`
	BreakEnd   string    `json:"break_end"`
	ClockOut   string    `json:"clock_out"`
	Hours      float64   `json:"hours"`
}

// DateString returns the entry date as YYYY-MM-DD.
func (d DayEntry) DateString() string {
	return d.Date.Format(DateLayout)
}

// WeekRecord is a full week for one identity. The fixed-size array keeps
// the seven rows index-aligned with the convention's day labels.
type WeekRecord struct {
	Identity WeekIdentity `json:"identity"`
	Days     [7]DayEntry  `json:"days"`
}

// Total returns the sum of all daily hours rounded to two decimals.
func (w *WeekRecord) Total() float64 {
	var sum float64
	for _, d := range w.Days {
		sum += d.Hours
	}
	return math.Round(sum*100) / 100
}

// Day returns the index of the row with the given label (case-insensitive),
// or -1.
func (w *WeekRecord) Day(label string) int {
	for i, d := range w.Days {
		if strings.EqualFold(d.Day, label) {
			return i
		}
	}
	return -1
}

// DayOf returns the index of the row whose date falls on t, or -1.
func (w *WeekRecord) DayOf(t time.Time) int {
	want := t.Format(DateLayout)
	for i, d := range w.Days {
		if d.DateString() == want {
			return i
		}
	}
	return -1
}
