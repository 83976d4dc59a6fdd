package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/Tiliavir/tsh/internal/model"
	"github.com/Tiliavir/tsh/internal/timecalc"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the week being edited (stdout, or --output file)",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, md, xlsx")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to this file instead of stdout (required for xlsx)")
}

func runExport(cmd *cobra.Command, args []string) error {
	switch exportFormat {
	case "csv", "json", "md":
	case "xlsx":
		if exportOutput == "" {
			return userError("xlsx export needs --output <file.xlsx>")
		}
	default:
		return userError("unknown format %q: want csv, json, md or xlsx", exportFormat)
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, _, err := a.openWeek(cmd.Context())
	if err != nil {
		return err
	}
	results := timecalc.Recompute(rec)

	if exportOutput == "" {
		return writeExport(a.out, exportFormat, rec, results, a.cfg.Policy())
	}
	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("creating %s: %w", exportOutput, err)
	}
	if err := writeExport(f, exportFormat, rec, results, a.cfg.Policy()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", exportOutput, err)
	}
	fmt.Fprintf(a.out, "Exported the week of %s to %s.\n", rec.Identity.StartString(), exportOutput)
	return nil
}

func writeExport(w io.Writer, format string, rec *model.WeekRecord, results [7]timecalc.Result, policy timecalc.Policy) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "md":
		if _, err := fmt.Fprintln(w, renderWeek(rec, results, policy, timecalc.Today())); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w, weekTotal(rec))
		return err
	case "xlsx":
		return writeXLSX(w, rec)
	default: // csv
		printCSV(w, rec)
		return nil
	}
}

// weekRows flattens rec into rows in the persisted weeks layout.
func weekRows(rec *model.WeekRecord) [][]string {
	rows := make([][]string, 0, len(rec.Days))
	for _, d := range rec.Days {
		rows = append(rows, []string{
			rec.Identity.Job,
			rec.Identity.Convention.Label(),
			rec.Identity.StartString(),
			d.Day,
			d.DateString(),
			d.ClockIn,
			d.BreakStart,
			d.BreakEnd,
			d.ClockOut,
			strconv.FormatFloat(d.Hours, 'f', 2, 64),
		})
	}
	return rows
}

func printCSV(w io.Writer, rec *model.WeekRecord) {
	writeCSVRow(w, model.WeeksHeader)
	for _, r := range weekRows(rec) {
		writeCSVRow(w, r)
	}
}

func writeCSVRow(w io.Writer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			fmt.Fprint(w, ",")
		}
		fmt.Fprint(w, csvEscape(f))
	}
	fmt.Fprintln(w)
}

// writeXLSX writes rec as a one-sheet workbook with a styled header and a
// total row.
func writeXLSX(w io.Writer, rec *model.WeekRecord) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing workbook: %w", cerr)
		}
	}()

	sheet := "Week " + rec.Identity.StartString()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	header := make([]interface{}, len(model.WeeksHeader))
	for i, h := range model.WeeksHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	last := colName(len(model.WeeksHeader) - 1)
	if err := f.SetCellStyle(sheet, "A1", cell(last, 1), headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, r := range weekRows(rec) {
		values := make([]interface{}, len(r))
		for j, v := range r {
			values[j] = v
		}
		values[model.ColHours] = rec.Days[i].Hours
		if err := f.SetSheetRow(sheet, cell("A", i+2), &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	totalRow := len(rec.Days) + 2
	f.SetCellValue(sheet, cell(colName(model.ColHours-1), totalRow), "Total")
	f.SetCellValue(sheet, cell(colName(model.ColHours), totalRow), rec.Total())

	f.SetColWidth(sheet, "A", "C", 18)
	f.SetColWidth(sheet, "D", last, 12)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	needsQuote := false
	for _, c := range s {
		if c == ',' || c == '"' || c == '\n' || c == '\r' {
			needsQuote = true
			break
		}
	}
	if !needsQuote {
		return s
	}
	// Escape internal double quotes by doubling them.
	escaped := ""
	for _, c := range s {
		if c == '"' {
			escaped += "\""
		}
		escaped += string(c)
	}
	return `"` + escaped + `"`
}
