package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tsh/internal/model"
	"github.com/Tiliavir/tsh/internal/timecalc"
)

var stampSave bool

// clock is the wall clock used by the stamp commands.
var clock = time.Now

var inCmd = &cobra.Command{
	Use:   "in",
	Short: "Clock in now",
	Args:  cobra.NoArgs,
	RunE:  runIn,
}

var breakCmd = &cobra.Command{
	Use:   "break",
	Short: "Start the break now, or end it if it is running",
	Args:  cobra.NoArgs,
	RunE:  runBreak,
}

func init() {
	for _, c := range []*cobra.Command{inCmd, breakCmd, outCmd} {
		c.Flags().BoolVar(&stampSave, "save", false, "Save the week right away instead of keeping a draft")
	}
}

// stampTarget is the row a clock stamp is written to.
type stampTarget struct {
	rec *model.WeekRecord
	row int
}

// openDay opens the week holding day for the selected job and returns its
// row for day.
func (a *app) openDay(ctx context.Context, day time.Time) (stampTarget, error) {
	job, err := a.job(ctx)
	if err != nil {
		return stampTarget{}, err
	}
	conv, err := a.convention()
	if err != nil {
		return stampTarget{}, err
	}
	week := timecalc.ResolveWeek(day, conv)
	rec, _, err := a.drafts.Open(ctx, a.store.Weeks, week, job)
	if err != nil {
		return stampTarget{}, storageError(err)
	}
	row := rec.DayOf(day)
	if row < 0 {
		return stampTarget{}, fmt.Errorf("week of %s has no row for %s", rec.Identity.StartString(), day.Format(model.DateLayout))
	}
	return stampTarget{rec: rec, row: row}, nil
}

// commitStamp recomputes and holds the draft, saving it when --save is set.
func (a *app) commitStamp(ctx context.Context, rec *model.WeekRecord) error {
	if _, err := a.keepDraft(rec); err != nil {
		return err
	}
	if !stampSave {
		fmt.Fprintln(a.out, "Run 'tsh week save' to store the week.")
		return nil
	}
	if err := a.store.Weeks.Save(ctx, rec); err != nil {
		return storageError(err)
	}
	if err := a.drafts.Drop(rec.Identity); err != nil {
		return storageError(err)
	}
	fmt.Fprintf(a.out, "Saved week of %s.\n", rec.Identity.StartString())
	return nil
}

func runIn(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	now := clock()
	t, err := a.openDay(cmd.Context(), timecalc.CalendarDate(now))
	if err != nil {
		return err
	}
	d := &t.rec.Days[t.row]
	if d.ClockIn != "" {
		return userError("already clocked in at %s on %s; use 'tsh week set' to change it", d.ClockIn, d.Day)
	}
	d.ClockIn = timecalc.FormatClock(now)

	fmt.Fprintf(a.out, "Clocked in for %q at %s.\n", t.rec.Identity.Job, d.ClockIn)
	return a.commitStamp(cmd.Context(), t.rec)
}

func runBreak(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	now := clock()
	t, err := a.openDay(cmd.Context(), timecalc.CalendarDate(now))
	if err != nil {
		return err
	}
	d := &t.rec.Days[t.row]
	stamp := timecalc.FormatClock(now)
	switch {
	case d.ClockIn == "":
		return userError("not clocked in today; run 'tsh in' first")
	case d.BreakStart == "":
		d.BreakStart = stamp
		fmt.Fprintf(a.out, "Break started at %s.\n", stamp)
	case d.BreakEnd == "":
		d.BreakEnd = stamp
		start, err := timecalc.ParseClock(d.Date, d.BreakStart)
		if err != nil {
			fmt.Fprintf(a.out, "Break ended at %s.\n", stamp)
			break
		}
		end, _ := timecalc.ParseClock(d.Date, stamp)
		if end.Before(start) {
			end = end.AddDate(0, 0, 1)
		}
		fmt.Fprintf(a.out, "Break ended at %s after %s.\n", stamp, formatElapsed(int64(end.Sub(start).Seconds())))
	default:
		return userError("today's break is already recorded (%s to %s); use 'tsh week set' to change it", d.BreakStart, d.BreakEnd)
	}
	return a.commitStamp(cmd.Context(), t.rec)
}
