package timecalc

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrEmptyClock = errors.New("empty time")
	ErrBadClock   = errors.New("not a 12-hour time like 09:00 AM")
)

// ClockLayout is the canonical stored form of a time of day.
const ClockLayout = "03:04 PM"

var parseLayouts = []string{"3:04 PM", "3:04PM"}

// Status classifies the outcome of an hours computation.
type Status int

const (
	StatusOK Status = iota
	// StatusIncomplete means clock-in or clock-out is empty.
	StatusIncomplete
	// StatusParseFailure means clock-in or clock-out could not be parsed.
	StatusParseFailure
)

func (s Status) String() string {
	switch s {
	case StatusIncomplete:
		return "incomplete"
	case StatusParseFailure:
		return "invalid"
	}
	return "ok"
}

// Result is the outcome of computing one day's hours. Hours is always
// usable: it is 0 for incomplete or unparseable rows.
type Result struct {
	Hours  float64
	Status Status
	Reason string
	// BreakIgnored is set when break data was present but not applied
	// (only one side filled in, or a side failed to parse).
	BreakIgnored bool
}

// Policy decides how a parse failure is shown to the user. Both policies
// store 0 hours.
type Policy int

const (
	PolicyZero Policy = iota
	PolicyFlag
)

// ParsePolicy maps the config value ("zero", "flag") to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zero":
		return PolicyZero, nil
	case "flag":
		return PolicyFlag, nil
	}
	return PolicyZero, fmt.Errorf("unknown invalid-entry policy %q (want zero or flag)", s)
}

// Display renders the hours of r under policy p.
func (p Policy) Display(r Result) string {
	if p == PolicyFlag && r.Status == StatusParseFailure {
		return "invalid"
	}
	return fmt.Sprintf("%.2f", r.Hours)
}

// ParseClock parses a 12-hour time of day ("9:00 am", "09:00 PM") on the
// given calendar date.
func ParseClock(date time.Time, s string) (time.Time, error) {
	s = strings.ToUpper(strings.Join(strings.Fields(s), " "))
	if s == "" {
		return time.Time{}, ErrEmptyClock
	}
	// Hours run 1-12; time.Parse would also take 0.
	if h, _, ok := strings.Cut(s, ":"); ok && h != "" && strings.Trim(h, "0") == "" {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	for _, layout := range parseLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadClock, s)
}

// FormatClock renders t in the stored 12-hour form.
func FormatClock(t time.Time) string {
	return t.Format(ClockLayout)
}

// NormalizeClock returns s in canonical form if it parses, otherwise s
// unchanged. Empty input stays empty.
func NormalizeClock(s string) string {
	t, err := ParseClock(time.Time{}, s)
	if err != nil {
		return strings.TrimSpace(s)
	}
	return FormatClock(t)
}

// span returns b-a, moving b to the next day when it is earlier than a.
func span(a, b time.Time) time.Duration {
	if b.Before(a) {
		b = b.AddDate(0, 0, 1)
	}
	return b.Sub(a)
}

// Compute returns the worked hours for one day's raw time fields.
// It never panics; any internal failure degrades to 0 hours.
func Compute(date time.Time, clockIn, breakStart, breakEnd, clockOut string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Status: StatusParseFailure, Reason: fmt.Sprint(r)}
		}
	}()

	if strings.TrimSpace(clockIn) == "" || strings.TrimSpace(clockOut) == "" {
		return Result{Status: StatusIncomplete}
	}
	in, err := ParseClock(date, clockIn)
	if err != nil {
		return Result{Status: StatusParseFailure, Reason: "clock in: " + err.Error()}
	}
	out, err := ParseClock(date, clockOut)
	if err != nil {
		return Result{Status: StatusParseFailure, Reason: "clock out: " + err.Error()}
	}

	worked := span(in, out)

	hasStart := strings.TrimSpace(breakStart) != ""
	hasEnd := strings.TrimSpace(breakEnd) != ""
	switch {
	case hasStart && hasEnd:
		b1, err1 := ParseClock(date, breakStart)
		b2, err2 := ParseClock(date, breakEnd)
		if err1 == nil && err2 == nil {
			worked -= span(b1, b2)
		} else {
			res.BreakIgnored = true
		}
	case hasStart || hasEnd:
		res.BreakIgnored = true
	}

	res.Status = StatusOK
	res.Hours = RoundHours(worked.Hours())
	return res
}

// ComputeHours is Compute reduced to its hour value.
func ComputeHours(date time.Time, clockIn, breakStart, breakEnd, clockOut string) float64 {
	return Compute(date, clockIn, breakStart, breakEnd, clockOut).Hours
}
