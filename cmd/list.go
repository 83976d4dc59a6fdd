package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tsh/internal/model"
	"github.com/Tiliavir/tsh/internal/session"
	"github.com/Tiliavir/tsh/internal/timecalc"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List weeks with unsaved changes",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ids, err := a.drafts.List()
	if err != nil {
		return storageError(err)
	}
	var recs []*model.WeekRecord
	for _, id := range ids {
		rec, ok, err := a.drafts.Get(id)
		if err != nil {
			a.log.Warn("skipping unreadable draft", "week", id, "err", err)
			continue
		}
		if ok {
			recs = append(recs, rec)
		}
	}
	printDrafts(a, recs)
	return nil
}

// printDrafts groups drafts by job and prints one line per week.
func printDrafts(a *app, recs []*model.WeekRecord) {
	if len(recs) == 0 {
		fmt.Fprintln(a.out, "No unsaved weeks.")
		return
	}

	var currentJob string
	for _, rec := range recs {
		id := rec.Identity
		if id.Job != currentJob {
			fmt.Fprintln(a.out, id.Job)
			currentJob = id.Job
		}
		timecalc.Recompute(rec)
		fmt.Fprintf(a.out, "  %s  %-18s  %s  %s\n",
			id.StartString(), id.Convention.Label(), timecalc.FormatHours(rec.Total()),
			styles.muted.Render("["+session.OriginDraft.String()+"]"))
	}
}
