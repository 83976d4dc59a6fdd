package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tsh/internal/session"
	"github.com/Tiliavir/tsh/internal/timecalc"
)

var (
	setIn         string
	setBreakStart string
	setBreakEnd   string
	setOut        string
	weekDeleteYes bool
)

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show and edit the weekly timesheet",
}

var weekShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the week being edited",
	Args:  cobra.NoArgs,
	RunE:  runWeekShow,
}

var weekSetCmd = &cobra.Command{
	Use:   "set <day>",
	Short: "Set the times of one day (e.g. tsh week set mon --in \"09:00 AM\" --out \"05:30 PM\")",
	Long: `Set the times of one day of the week being edited.
Times are 12-hour with AM/PM ("09:00 AM", "5:30pm"). Pass an empty string
to clear a field. Changes are held as a draft until 'tsh week save'.`,
	Args: cobra.ExactArgs(1),
	RunE: runWeekSet,
}

var weekSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the week, replacing any stored copy",
	Args:  cobra.NoArgs,
	RunE:  runWeekSave,
}

var weekDiscardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Throw away unsaved changes to the week",
	Args:  cobra.NoArgs,
	RunE:  runWeekDiscard,
}

var weekDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the stored week",
	Args:  cobra.NoArgs,
	RunE:  runWeekDelete,
}

func init() {
	f := weekSetCmd.Flags()
	f.StringVar(&setIn, "in", "", "Clock-in time")
	f.StringVar(&setBreakStart, "break-start", "", "Break start time")
	f.StringVar(&setBreakEnd, "break-end", "", "Break end time")
	f.StringVar(&setOut, "out", "", "Clock-out time")
	weekDeleteCmd.Flags().BoolVarP(&weekDeleteYes, "yes", "y", false, "Do not ask for confirmation")

	weekCmd.AddCommand(weekShowCmd)
	weekCmd.AddCommand(weekSetCmd)
	weekCmd.AddCommand(weekSaveCmd)
	weekCmd.AddCommand(weekDiscardCmd)
	weekCmd.AddCommand(weekDeleteCmd)
}

func runWeekShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, origin, err := a.openWeek(cmd.Context())
	if err != nil {
		return err
	}
	results := timecalc.Recompute(rec)
	fmt.Fprintln(a.out, weekTitle(rec, origin))
	fmt.Fprintln(a.out, renderWeek(rec, results, a.cfg.Policy(), timecalc.Today()))
	fmt.Fprintln(a.out, weekTotal(rec))
	return nil
}

func runWeekSet(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, _, err := a.openWeek(cmd.Context())
	if err != nil {
		return err
	}
	i, err := dayIndex(rec, args[0])
	if err != nil {
		return userError("%v", err)
	}

	fields := []struct {
		flag string
		val  string
		dst  *string
	}{
		{"in", setIn, &rec.Days[i].ClockIn},
		{"break-start", setBreakStart, &rec.Days[i].BreakStart},
		{"break-end", setBreakEnd, &rec.Days[i].BreakEnd},
		{"out", setOut, &rec.Days[i].ClockOut},
	}
	changed := false
	for _, f := range fields {
		if cmd.Flags().Changed(f.flag) {
			*f.dst = timecalc.NormalizeClock(f.val)
			changed = true
		}
	}
	if !changed {
		return userError("nothing to set: pass at least one of --in, --break-start, --break-end, --out")
	}

	results, err := a.keepDraft(rec)
	if err != nil {
		return err
	}
	d := rec.Days[i]
	fmt.Fprintf(a.out, "%s %s: %s hours (unsaved). Week total %.2f h.\n",
		d.Day, d.DateString(), a.cfg.Policy().Display(results[i]), rec.Total())
	return nil
}

func runWeekSave(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, origin, err := a.openWeek(cmd.Context())
	if err != nil {
		return err
	}
	if origin == session.OriginStore {
		fmt.Fprintln(a.out, "No unsaved changes.")
		return nil
	}
	timecalc.Recompute(rec)
	if err := a.store.Weeks.Save(cmd.Context(), rec); err != nil {
		return storageError(err)
	}
	if err := a.drafts.Drop(rec.Identity); err != nil {
		return storageError(err)
	}
	a.log.Debug("saved week", "week", rec.Identity, "total", rec.Total())
	fmt.Fprintf(a.out, "Saved week of %s for %q. Total %.2f h.\n", rec.Identity.StartString(), rec.Identity.Job, rec.Total())
	return nil
}

func runWeekDiscard(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	job, week, err := a.target(cmd.Context())
	if err != nil {
		return err
	}
	id := week.Identity(job)
	if _, ok, err := a.drafts.Get(id); err != nil {
		return storageError(err)
	} else if !ok {
		fmt.Fprintln(a.out, "No unsaved changes.")
		return nil
	}
	if err := a.drafts.Drop(id); err != nil {
		return storageError(err)
	}
	fmt.Fprintf(a.out, "Discarded unsaved changes to the week of %s.\n", id.StartString())
	return nil
}

func runWeekDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	job, week, err := a.target(cmd.Context())
	if err != nil {
		return err
	}
	id := week.Identity(job)
	if !weekDeleteYes {
		ok, err := confirm(a.in, a.out, fmt.Sprintf("Delete the stored week of %s (%s) for %q?", id.StartString(), id.Convention.Label(), job))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.out, "Cancelled.")
			return nil
		}
	}

	n, err := a.store.Weeks.Delete(cmd.Context(), id)
	if err != nil {
		return storageError(err)
	}
	if err := a.drafts.Drop(id); err != nil {
		return storageError(err)
	}
	if n == 0 {
		fmt.Fprintln(a.out, "Nothing stored for that week.")
		return nil
	}
	fmt.Fprintf(a.out, "Deleted the week of %s (%d rows).\n", id.StartString(), n)
	return nil
}
