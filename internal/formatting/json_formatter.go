package formatting

import (
	"fmt"
)

// JSONFormatter provides structured JSON output formatting
type JSONFormatter struct {
	options Options
}

// FormatReport writes the report as indented JSON
func (f *JSONFormatter) FormatReport(report Report) error {
	_, err := fmt.Fprintln(f.options.writer(), PrettyJSON(report))
	return err
}
