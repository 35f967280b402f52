package formatting

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	strutil "allure-reporter/pkg/strings"
)

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(f.options.writer())
	t.SetStyle(table.StyleRounded)
	return t
}

// FormatReport renders one row per scenario and a totals footer
func (f *TableFormatter) FormatReport(report Report) error {
	if len(report.Scenarios) == 0 {
		_, err := fmt.Fprintf(f.options.writer(), "%s %s\n",
			text.FgYellow.Sprint("📋"), text.FgYellow.Sprintf("No results found in %s", report.Dir))
		return err
	}

	t := f.createTable()
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("SCENARIO"),
		text.FgHiCyan.Sprint("STATUS"),
		text.FgHiCyan.Sprint("ATTEMPTS"),
		text.FgHiCyan.Sprint("DURATION"),
		text.FgHiCyan.Sprint("LABELS"),
		text.FgHiCyan.Sprint("MESSAGE"),
	})

	for _, row := range report.Scenarios {
		t.AppendRow(table.Row{
			row.Name,
			colorStatus(row.Status),
			strings.Join(row.Attempts, ","),
			row.Duration.Round(time.Millisecond),
			strings.Join(row.Labels, " "),
			strutil.Truncate(strutil.SingleLine(row.Message), strutil.DefaultMessageMaxLen),
		})
	}

	if !f.options.Quiet {
		t.AppendFooter(table.Row{
			fmt.Sprintf("%d scenarios", len(report.Scenarios)),
			countsLine(report),
			fmt.Sprintf("%d records", report.Records),
			report.Duration.Round(time.Millisecond),
			"",
			"",
		})
	}

	t.Render()
	return nil
}

func colorStatus(status string) string {
	switch status {
	case "passed":
		return text.FgGreen.Sprint(status)
	case "failed":
		return text.FgRed.Sprint(status)
	case "broken":
		return text.FgHiRed.Sprint(status)
	case "skipped":
		return text.FgYellow.Sprint(status)
	default:
		return text.FgHiBlack.Sprint(status)
	}
}
