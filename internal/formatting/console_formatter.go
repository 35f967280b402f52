package formatting

import (
	"fmt"
	"strings"
)

// ConsoleFormatter provides simple console output formatting
type ConsoleFormatter struct {
	options Options
}

// FormatReport prints one line per scenario followed by the totals
func (f *ConsoleFormatter) FormatReport(report Report) error {
	w := f.options.writer()
	if len(report.Scenarios) == 0 {
		_, err := fmt.Fprintf(w, "No results found in %s\n", report.Dir)
		return err
	}

	var lines []string
	if !f.options.Quiet {
		lines = append(lines, fmt.Sprintf("Results in %s (%d scenarios, %d records):", report.Dir, len(report.Scenarios), report.Records))
	}
	for i, row := range report.Scenarios {
		line := fmt.Sprintf("  %d. %-8s %s", i+1, row.Status, row.Name)
		if len(row.Attempts) > 1 {
			line += fmt.Sprintf(" [%s]", strings.Join(row.Attempts, " -> "))
		}
		lines = append(lines, line)
	}
	lines = append(lines, countsLine(report))

	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

func countsLine(report Report) string {
	var parts []string
	for _, status := range report.Statuses() {
		parts = append(parts, fmt.Sprintf("%s: %d", status, report.Counts[status]))
	}
	line := strings.Join(parts, ", ")
	if report.Rescheduled > 0 {
		line += fmt.Sprintf(" (%d rerun)", report.Rescheduled)
	}
	return line
}
