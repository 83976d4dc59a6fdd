package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/Tiliavir/tsh/internal/model"
	"github.com/Tiliavir/tsh/internal/session"
	"github.com/Tiliavir/tsh/internal/timecalc"
)

var styles = struct {
	title   lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
	today   lipgloss.Style
	invalid lipgloss.Style
	border  lipgloss.Style
	muted   lipgloss.Style
}{
	title:   lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true),
	header:  lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true).Padding(0, 1),
	cell:    lipgloss.NewStyle().Padding(0, 1),
	today:   lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true).Padding(0, 1),
	invalid: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Padding(0, 1),
	border:  lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")),
	muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Italic(true),
}

var gridHeaders = []string{"Day", "Date", "In", "Break start", "Break end", "Out", "Hours"}

const hoursCol = 6

// renderWeek draws the seven rows of rec as a table. Today's row is
// highlighted, unreadable times are marked red.
func renderWeek(rec *model.WeekRecord, results [7]timecalc.Result, policy timecalc.Policy, today time.Time) string {
	todayRow := -2
	for i, d := range rec.Days {
		if timecalc.SameDay(d.Date, today) {
			todayRow = i
		}
	}
	t := ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.border).
		Headers(gridHeaders...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == ltable.HeaderRow:
				return styles.header
			case col == hoursCol && row < len(results) && results[row].Status == timecalc.StatusParseFailure:
				return styles.invalid
			case row == todayRow:
				return styles.today
			}
			return styles.cell
		})
	for i, d := range rec.Days {
		t.Row(d.Day, d.DateString(), d.ClockIn, d.BreakStart, d.BreakEnd, d.ClockOut, policy.Display(results[i]))
	}
	return t.String()
}

// weekTitle is the line printed above a grid.
func weekTitle(rec *model.WeekRecord, origin session.Origin) string {
	id := rec.Identity
	end := id.Start.AddDate(0, 0, 6)
	return fmt.Sprintf("%s · %s · %s to %s (%s) %s",
		styles.title.Render(id.Job),
		id.Convention.Label(),
		id.StartString(),
		end.Format(model.DateLayout),
		timecalc.ISOWeekLabel(id.Start),
		styles.muted.Render("["+origin.String()+"]"),
	)
}

// weekTotal is the line printed below a grid.
func weekTotal(rec *model.WeekRecord) string {
	total := rec.Total()
	return fmt.Sprintf("Total: %.2f h (%s)", total, timecalc.FormatHours(total))
}

// dayIndex finds the row named by arg: a day label, its first three
// letters, or a YYYY-MM-DD date inside the week.
func dayIndex(rec *model.WeekRecord, arg string) (int, error) {
	arg = strings.TrimSpace(arg)
	if i := rec.Day(arg); i >= 0 {
		return i, nil
	}
	if len(arg) >= 3 {
		for i, d := range rec.Days {
			if strings.HasPrefix(strings.ToLower(d.Day), strings.ToLower(arg)) {
				return i, nil
			}
		}
	}
	if d, err := time.Parse(model.DateLayout, arg); err == nil {
		if i := rec.DayOf(d); i >= 0 {
			return i, nil
		}
		return -1, fmt.Errorf("%s is not in the week starting %s", arg, rec.Identity.StartString())
	}
	return -1, fmt.Errorf("unknown day %q: use a day name (%s) or a date", arg, strings.Join(dayLabels(rec), ", "))
}

func dayLabels(rec *model.WeekRecord) []string {
	labels := make([]string, len(rec.Days))
	for i, d := range rec.Days {
		labels[i] = d.Day
	}
	return labels
}
