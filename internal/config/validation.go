package config

import (
	"fmt"
	"strings"
)

// ParseLabelSelector splits a name=value selector. The name is trimmed and
// must not be empty; the value may be empty.
func ParseLabelSelector(selector string) (Label, error) {
	name, value, ok := strings.Cut(selector, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return Label{}, fmt.Errorf("label selector %q must have the form name=value", selector)
	}
	return Label{Name: name, Value: strings.TrimSpace(value)}, nil
}

// Validate checks the configuration and returns every problem found as a
// ConfigurationErrorCollection, or nil.
func (r Reporter) Validate() error {
	var errs ConfigurationErrorCollection

	if strings.TrimSpace(r.ReportDir) == "" {
		errs.AddValidation("report_dir", "must not be empty",
			"set report_dir to a writable directory, e.g. "+DefaultReportDir)
	}

	if r.Reruns < 0 {
		errs.AddValidation("reruns", fmt.Sprintf("must be >= 0, got %d", r.Reruns))
	}
	if r.RerunsDelay < 0 {
		errs.AddValidation("reruns_delay", fmt.Sprintf("must be >= 0, got %s", r.RerunsDelay))
	}
	if r.RerunsDelay > 0 && r.Reruns <= 0 {
		errs.AddValidation("reruns_delay", "requires reruns to be greater than 0",
			"set reruns or remove reruns_delay")
	}

	for i, label := range r.Labels {
		if strings.TrimSpace(label.Name) == "" {
			errs.AddValidation(fmt.Sprintf("labels[%d].name", i), "is required")
		}
	}

	for i, selector := range r.LabelFilter {
		if _, err := ParseLabelSelector(selector); err != nil {
			errs.AddValidation(fmt.Sprintf("label_filter[%d]", i), err.Error(),
				"use the form name=value, e.g. feature=Checkout")
		}
	}

	for key := range r.Environment {
		if strings.TrimSpace(key) == "" {
			errs.AddValidation("environment", "keys must not be empty")
			break
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// Selectors returns the parsed label filter. Invalid entries are skipped;
// call Validate first to report them.
func (r Reporter) Selectors() []Label {
	selectors := make([]Label, 0, len(r.LabelFilter))
	for _, s := range r.LabelFilter {
		label, err := ParseLabelSelector(s)
		if err != nil {
			continue
		}
		selectors = append(selectors, label)
	}
	return selectors
}
