package formatting

import (
	"fmt"

	"sigs.k8s.io/yaml"
)

// YAMLFormatter provides YAML output formatting. Field names follow the
// JSON tags of the report types.
type YAMLFormatter struct {
	options Options
}

// FormatReport writes the report as YAML
func (f *YAMLFormatter) FormatReport(report Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to format YAML: %w", err)
	}
	_, err = f.options.writer().Write(data)
	return err
}
