package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tsh/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the selected job, today's times and the week total",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if flagJob == "" && a.state.ActiveJob == "" {
		fmt.Fprintln(a.out, "No job selected. Run 'tsh job use <name>'.")
		return nil
	}
	now := clock()
	t, err := a.openDay(cmd.Context(), timecalc.CalendarDate(now))
	if err != nil {
		return err
	}
	rec := t.rec
	results := timecalc.Recompute(rec)
	d := rec.Days[t.row]

	fmt.Fprintf(a.out, "Job: %s\n", rec.Identity.Job)
	fmt.Fprintf(a.out, "Week: %s, starting %s\n", rec.Identity.Convention.Label(), rec.Identity.StartString())

	switch {
	case d.ClockIn == "":
		fmt.Fprintln(a.out, "Not clocked in today.")
	case d.ClockOut == "":
		fmt.Fprintln(a.out, "Clocked in:")
		fmt.Fprintf(a.out, "  Since: %s\n", d.ClockIn)
		if in, err := timecalc.ParseClock(d.Date, d.ClockIn); err == nil {
			// Wall-clock times have no zone; compare against local now.
			local := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), now.Second(), 0, time.UTC)
			if elapsed := local.Sub(in); elapsed >= 0 {
				fmt.Fprintf(a.out, "  Elapsed: %s\n", timecalc.FormatDurationHHMMSS(int64(elapsed.Seconds())))
			}
		}
		if d.BreakStart != "" && d.BreakEnd == "" {
			fmt.Fprintf(a.out, "  On break since %s\n", d.BreakStart)
		}
	default:
		fmt.Fprintf(a.out, "Today: %s to %s, %s hours.\n", d.ClockIn, d.ClockOut, a.cfg.Policy().Display(results[t.row]))
	}
	fmt.Fprintf(a.out, "Week total: %s.\n", timecalc.FormatHours(rec.Total()))
	return nil
}
