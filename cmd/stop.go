package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tsh/internal/timecalc"
)

var outCmd = &cobra.Command{
	Use:   "out",
	Short: "Clock out now",
	Long: `Clock out now. If today has no clock-in but yesterday's shift is still
open, the shift is closed on yesterday's row (overnight shift).`,
	Args: cobra.NoArgs,
	RunE: runOut,
}

func runOut(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	now := clock()
	today := timecalc.CalendarDate(now)
	t, err := a.openDay(cmd.Context(), today)
	if err != nil {
		return err
	}
	d := &t.rec.Days[t.row]
	if d.ClockIn == "" {
		// Overnight: the open shift belongs to yesterday, possibly in the
		// previous week.
		y, err := a.openDay(cmd.Context(), today.AddDate(0, 0, -1))
		if err != nil {
			return err
		}
		yd := &y.rec.Days[y.row]
		if yd.ClockIn == "" || yd.ClockOut != "" {
			return userError("not clocked in; run 'tsh in' first")
		}
		t, d = y, yd
	}
	if d.ClockOut != "" {
		return userError("already clocked out at %s on %s; use 'tsh week set' to change it", d.ClockOut, d.Day)
	}
	d.ClockOut = timecalc.FormatClock(now)

	res := timecalc.Compute(d.Date, d.ClockIn, d.BreakStart, d.BreakEnd, d.ClockOut)
	fmt.Fprintf(a.out, "Clocked out of %q at %s. Worked: %s\n",
		t.rec.Identity.Job, d.ClockOut, formatElapsed(int64(res.Hours*3600)))
	return a.commitStamp(cmd.Context(), t.rec)
}

func formatElapsed(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
