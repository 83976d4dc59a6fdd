package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tsh/internal/storage"
	"github.com/Tiliavir/tsh/internal/timecalc"
)

var reportFormat string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show every stored week with its total (all jobs unless --job)",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
}

func runReport(cmd *cobra.Command, args []string) error {
	switch reportFormat {
	case "md", "csv", "json":
	default:
		return userError("unknown format %q: want md, csv or json", reportFormat)
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	job := ""
	if flagJob != "" {
		if job, err = a.job(cmd.Context()); err != nil {
			return err
		}
	}
	weeks, err := a.store.Weeks.List(cmd.Context(), job)
	if err != nil {
		return storageError(err)
	}
	for _, w := range weeks {
		if w.Rows != 7 {
			a.log.Warn("stored week is incomplete", "week", w.Identity, "rows", w.Rows)
		}
	}
	return writeReport(a.out, reportFormat, weeks)
}

type reportWeek struct {
	Job        string  `json:"job"`
	Convention string  `json:"convention"`
	WeekStart  string  `json:"week_start"`
	Hours      float64 `json:"hours"`
}

type reportDoc struct {
	Weeks      []reportWeek `json:"weeks"`
	TotalHours float64      `json:"total_hours"`
}

// writeReport prints weeks, sorted by job then start, in format.
func writeReport(w io.Writer, format string, weeks []storage.WeekSummary) error {
	var grandTotal float64
	for _, s := range weeks {
		grandTotal += s.Total
	}
	grandTotal = timecalc.RoundHours(grandTotal)

	switch format {
	case "csv":
		fmt.Fprintln(w, "job,convention,week_start,hours")
		for _, s := range weeks {
			fmt.Fprintf(w, "%s,%s,%s,%.2f\n",
				csvEscape(s.Identity.Job), csvEscape(s.Identity.Convention.Label()), s.Identity.StartString(), s.Total)
		}
	case "json":
		doc := reportDoc{Weeks: []reportWeek{}, TotalHours: grandTotal}
		for _, s := range weeks {
			doc.Weeks = append(doc.Weeks, reportWeek{
				Job:        s.Identity.Job,
				Convention: s.Identity.Convention.Label(),
				WeekStart:  s.Identity.StartString(),
				Hours:      s.Total,
			})
		}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
	default: // md
		if len(weeks) == 0 {
			fmt.Fprintln(w, "No saved weeks.")
			return nil
		}
		var currentJob string
		var jobTotal float64
		flush := func() {
			if currentJob != "" {
				fmt.Fprintf(w, "  %-30s%s\n", "Subtotal", timecalc.FormatHours(jobTotal))
			}
		}
		for _, s := range weeks {
			if s.Identity.Job != currentJob {
				flush()
				if currentJob != "" {
					fmt.Fprintln(w)
				}
				fmt.Fprintln(w, s.Identity.Job)
				currentJob, jobTotal = s.Identity.Job, 0
			}
			jobTotal += s.Total
			fmt.Fprintf(w, "  %s  %-20s%s\n", s.Identity.StartString(), s.Identity.Convention.Label(), timecalc.FormatHours(s.Total))
		}
		flush()
		fmt.Fprintln(w, "--------------------------------")
		fmt.Fprintf(w, "%-32s%s\n", "Total", timecalc.FormatHours(grandTotal))
	}
	return nil
}
