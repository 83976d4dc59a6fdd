package timecalc_test

import (
	"testing"
	"time"

	"github.com/Tiliavir/tsh/internal/model"
	"github.com/Tiliavir/tsh/internal/timecalc"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveWeek(t *testing.T) {
	tests := []struct {
		name      string
		anchor    time.Time
		conv      model.Convention
		wantStart time.Time
		wantFirst string
	}{
		// 2026-02-25 is a Wednesday.
		{"monday start from wednesday", date(2026, 2, 25), model.MondayStart, date(2026, 2, 23), "Monday"},
		{"monday start from monday", date(2026, 2, 23), model.MondayStart, date(2026, 2, 23), "Monday"},
		{"monday start from sunday", date(2026, 3, 1), model.MondayStart, date(2026, 2, 23), "Monday"},
		{"saturday start from sunday", date(2026, 3, 1), model.SaturdayStart, date(2026, 2, 28), "Saturday"},
		{"saturday start from saturday", date(2026, 2, 28), model.SaturdayStart, date(2026, 2, 28), "Saturday"},
		{"saturday start from friday", date(2026, 2, 27), model.SaturdayStart, date(2026, 2, 21), "Saturday"},
		{"across year end", date(2026, 1, 1), model.MondayStart, date(2025, 12, 29), "Monday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := timecalc.ResolveWeek(tt.anchor.Add(15*time.Hour), tt.conv)
			if !w.Start.Equal(tt.wantStart) {
				t.Errorf("Start = %s, want %s", w.Start.Format(model.DateLayout), tt.wantStart.Format(model.DateLayout))
			}
			if w.Days[0].Label != tt.wantFirst {
				t.Errorf("first label = %q, want %q", w.Days[0].Label, tt.wantFirst)
			}
			labels := tt.conv.Days()
			for i, d := range w.Days {
				if !d.Date.Equal(tt.wantStart.AddDate(0, 0, i)) {
					t.Errorf("day %d date = %s", i, d.Date.Format(model.DateLayout))
				}
				if d.Label != labels[i] {
					t.Errorf("day %d label = %q, want %q", i, d.Label, labels[i])
				}
				if d.Date.Weekday().String() != d.Label {
					t.Errorf("day %d: %s falls on %s", i, d.Label, d.Date.Weekday())
				}
			}
		})
	}
}

func TestResolveWeekDeterministic(t *testing.T) {
	a := timecalc.ResolveWeek(date(2026, 5, 13), model.SaturdayStart)
	b := timecalc.ResolveWeek(date(2026, 5, 13), model.SaturdayStart)
	if a != b {
		t.Errorf("ResolveWeek is not deterministic: %+v vs %+v", a, b)
	}
}

func TestWeekBlankAndRecompute(t *testing.T) {
	w := timecalc.ResolveWeek(date(2026, 2, 25), model.MondayStart)
	rec := w.Blank("Cafe")

	if rec.Identity.Job != "Cafe" || !rec.Identity.Start.Equal(w.Start) {
		t.Fatalf("unexpected identity %+v", rec.Identity)
	}
	for i, d := range rec.Days {
		if d.ClockIn != "" || d.Hours != 0 {
			t.Errorf("row %d is not blank: %+v", i, d)
		}
	}

	rec.Days[0].ClockIn = "09:00 AM"
	rec.Days[0].ClockOut = "05:00 PM"
	rec.Days[1].ClockIn = "bad"
	rec.Days[1].ClockOut = "05:00 PM"
	res := timecalc.Recompute(rec)

	if rec.Days[0].Hours != 8 {
		t.Errorf("row 0 hours = %v, want 8", rec.Days[0].Hours)
	}
	if res[1].Status != timecalc.StatusParseFailure {
		t.Errorf("row 1 status = %v, want invalid", res[1].Status)
	}
	if rec.Total() != 8 {
		t.Errorf("Total = %v, want 8", rec.Total())
	}
}
