package timecalc

import (
	"time"

	"github.com/Tiliavir/tsh/internal/model"
)

// WeekDay pairs a day label with its calendar date.
type WeekDay struct {
	Label string
	Date  time.Time
}

// Week is the canonical layout of one week under a convention.
type Week struct {
	Convention model.Convention
	Start      time.Time
	Days       [7]WeekDay
}

// ResolveWeek returns the week containing anchor under convention c.
func ResolveWeek(anchor time.Time, c model.Convention) Week {
	day := CalendarDate(anchor)
	start := day.AddDate(0, 0, -c.Offset(day.Weekday()))

	w := Week{Convention: c, Start: start}
	labels := c.Days()
	for i := range w.Days {
		w.Days[i] = WeekDay{Label: labels[i], Date: start.AddDate(0, 0, i)}
	}
	return w
}

// Identity returns the week identity for job.
func (w Week) Identity(job string) model.WeekIdentity {
	return model.WeekIdentity{Job: job, Convention: w.Convention, Start: w.Start}
}

// Blank returns an empty record for job with all hours at zero.
func (w Week) Blank(job string) *model.WeekRecord {
	rec := &model.WeekRecord{Identity: w.Identity(job)}
	for i, d := range w.Days {
		rec.Days[i] = model.DayEntry{Day: d.Label, Date: d.Date}
	}
	return rec
}

// Recompute refreshes the hours of every row of rec and returns the
// per-row results.
func Recompute(rec *model.WeekRecord) [7]Result {
	var out [7]Result
	for i := range rec.Days {
		d := &rec.Days[i]
		out[i] = Compute(d.Date, d.ClockIn, d.BreakStart, d.BreakEnd, d.ClockOut)
		d.Hours = out[i].Hours
	}
	return out
}
