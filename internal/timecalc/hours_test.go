package timecalc_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Tiliavir/tsh/internal/timecalc"
)

var day = time.Date(2026, 2, 25, 0, 0, 0, 0, time.UTC)

func TestComputeHours(t *testing.T) {
	tests := []struct {
		name                string
		in, bStart, bEnd, o string
		want                float64
	}{
		{"same day no break", "09:00 AM", "", "", "05:00 PM", 8},
		{"quarter hours", "08:15 AM", "", "", "12:30 PM", 4.25},
		{"rounded to two decimals", "09:00 AM", "", "", "09:20 AM", 0.33},
		{"overnight", "11:00 PM", "", "", "07:00 AM", 8},
		{"break subtracted", "09:00 AM", "12:00 PM", "12:30 PM", "05:00 PM", 7.5},
		{"overnight break", "10:00 PM", "11:45 PM", "12:15 AM", "06:00 AM", 7.5},
		{"only break start", "09:00 AM", "12:00 PM", "", "05:00 PM", 8},
		{"only break end", "09:00 AM", "", "12:30 PM", "05:00 PM", 8},
		{"unparseable break", "09:00 AM", "noon", "12:30 PM", "05:00 PM", 8},
		{"missing clock in", "", "12:00 PM", "12:30 PM", "05:00 PM", 0},
		{"missing clock out", "09:00 AM", "", "", "", 0},
		{"bad clock in", "9 o'clock", "", "", "05:00 PM", 0},
		{"24h clock rejected", "09:00", "", "", "17:00", 0},
		{"break longer than shift", "09:00 AM", "08:00 AM", "06:00 PM", "10:00 AM", 0},
		{"equal in and out", "09:00 AM", "", "", "09:00 AM", 0},
		{"lower case and single digit hour", "9:00 am", "", "", "5:30 pm", 8.5},
		{"no space before meridiem", "9:00AM", "", "", "5:00PM", 8},
		{"noon and midnight", "12:00 PM", "", "", "12:00 AM", 12},
		{"zero hour rejected", "00:30 AM", "", "", "08:30 AM", 0},
		{"single zero hour rejected", "09:00 AM", "", "", "0:00 PM", 0},
		{"zero hour break ignored", "09:00 AM", "00:15 PM", "12:45 PM", "05:00 PM", 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := timecalc.ComputeHours(day, tt.in, tt.bStart, tt.bEnd, tt.o)
			if got != tt.want {
				t.Errorf("ComputeHours(%q, %q, %q, %q) = %v, want %v",
					tt.in, tt.bStart, tt.bEnd, tt.o, got, tt.want)
			}
			if got < 0 {
				t.Errorf("hours must never be negative, got %v", got)
			}
		})
	}
}

func TestComputeStatus(t *testing.T) {
	r := timecalc.Compute(day, "", "", "", "05:00 PM")
	if r.Status != timecalc.StatusIncomplete {
		t.Errorf("status = %v, want incomplete", r.Status)
	}

	r = timecalc.Compute(day, "25:00 AM", "", "", "05:00 PM")
	if r.Status != timecalc.StatusParseFailure || r.Hours != 0 {
		t.Errorf("got %+v, want parse failure with 0 hours", r)
	}
	if r.Reason == "" {
		t.Error("expected a reason for the parse failure")
	}

	r = timecalc.Compute(day, "00:30 AM", "", "", "08:30 AM")
	if r.Status != timecalc.StatusParseFailure || r.Hours != 0 {
		t.Errorf("hour 0: got %+v, want parse failure with 0 hours", r)
	}

	r = timecalc.Compute(day, "09:00 AM", "12:00 PM", "", "05:00 PM")
	if r.Status != timecalc.StatusOK || !r.BreakIgnored {
		t.Errorf("got %+v, want ok with break ignored", r)
	}

	r = timecalc.Compute(day, "09:00 AM", "12:00 PM", "12:30 PM", "05:00 PM")
	if r.BreakIgnored {
		t.Error("complete break must not be reported as ignored")
	}
}

func TestPolicyDisplay(t *testing.T) {
	bad := timecalc.Compute(day, "x", "", "", "05:00 PM")
	ok := timecalc.Compute(day, "09:00 AM", "", "", "05:00 PM")

	if got := timecalc.PolicyZero.Display(bad); got != "0.00" {
		t.Errorf("PolicyZero.Display(bad) = %q", got)
	}
	if got := timecalc.PolicyFlag.Display(bad); got != "invalid" {
		t.Errorf("PolicyFlag.Display(bad) = %q", got)
	}
	if got := timecalc.PolicyFlag.Display(ok); got != "8.00" {
		t.Errorf("PolicyFlag.Display(ok) = %q", got)
	}

	if p, err := timecalc.ParsePolicy("FLAG"); err != nil || p != timecalc.PolicyFlag {
		t.Errorf("ParsePolicy(FLAG) = %v, %v", p, err)
	}
	if _, err := timecalc.ParsePolicy("loud"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestParseClock(t *testing.T) {
	got, err := timecalc.ParseClock(day, " 07:05   pm ")
	if err != nil {
		t.Fatalf("ParseClock: %v", err)
	}
	want := time.Date(2026, 2, 25, 19, 5, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseClock = %v, want %v", got, want)
	}

	if _, err := timecalc.ParseClock(day, ""); !errors.Is(err, timecalc.ErrEmptyClock) {
		t.Errorf("empty input: err = %v, want ErrEmptyClock", err)
	}
	for _, in := range []string{"00:30 AM", "0:00 PM", "000:10 am"} {
		if _, err := timecalc.ParseClock(day, in); !errors.Is(err, timecalc.ErrBadClock) {
			t.Errorf("ParseClock(%q): err = %v, want ErrBadClock", in, err)
		}
	}
	if _, err := timecalc.ParseClock(day, "later"); !errors.Is(err, timecalc.ErrBadClock) {
		t.Errorf("bad input: err = %v, want ErrBadClock", err)
	}
}

func TestNormalizeClock(t *testing.T) {
	tests := []struct{ in, want string }{
		{"9:00 am", "09:00 AM"},
		{"12:30pm", "12:30 PM"},
		{"", ""},
		{" soon ", "soon"},
		{"00:30 AM", "00:30 AM"},
	}
	for _, tt := range tests {
		if got := timecalc.NormalizeClock(tt.in); got != tt.want {
			t.Errorf("NormalizeClock(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
