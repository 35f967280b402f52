package formatting

import (
	"sort"
	"time"

	"allure-reporter/internal/allure"
	"allure-reporter/internal/rerun"
)

// Report summarizes a results directory.
type Report struct {
	Dir string `json:"dir"`
	// Records is the number of result files, rerun attempts included
	Records   int            `json:"records"`
	Scenarios []ScenarioRow  `json:"scenarios"`
	Counts    map[string]int `json:"counts"`
	// Rescheduled counts scenarios with more than one record
	Rescheduled int           `json:"rescheduled"`
	Duration    time.Duration `json:"duration"`
}

// ScenarioRow is one scenario with its attempts folded together.
type ScenarioRow struct {
	Name     string   `json:"name"`
	FullName string   `json:"fullName,omitempty"`
	Status   string   `json:"status"`
	Attempts []string `json:"attempts"`
	// Message is the failure message of the last attempt
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
	Labels   []string      `json:"labels,omitempty"`
}

// LoadReport reads every result file in dir and builds a report.
func LoadReport(dir string) (Report, error) {
	results, err := allure.ReadResults(dir)
	if err != nil {
		return Report{}, err
	}
	report := BuildReport(results)
	report.Dir = dir
	return report, nil
}

// BuildReport folds results sharing a history id into one row. Rows keep
// the order of their first record; the status follows the rerun
// aggregation rule.
func BuildReport(results []allure.TestResult) Report {
	report := Report{Records: len(results), Counts: make(map[string]int)}

	index := make(map[string]int)
	var first, last int64
	for _, r := range results {
		key := r.HistoryID
		if key == "" {
			key = r.UUID
		}
		i, ok := index[key]
		if !ok {
			i = len(report.Scenarios)
			index[key] = i
			report.Scenarios = append(report.Scenarios, ScenarioRow{
				Name:     r.Name,
				FullName: r.FullName,
				Labels:   labelStrings(r.Labels),
			})
		}

		row := &report.Scenarios[i]
		row.Attempts = append(row.Attempts, string(r.Status))
		row.Duration += time.Duration(r.Stop-r.Start) * time.Millisecond
		row.Message = ""
		if r.StatusDetails != nil {
			row.Message = r.StatusDetails.Message
		}

		if first == 0 || (r.Start != 0 && r.Start < first) {
			first = r.Start
		}
		if r.Stop > last {
			last = r.Stop
		}
	}

	for i := range report.Scenarios {
		row := &report.Scenarios[i]
		row.Status = rerun.Aggregate(row.Attempts)
		report.Counts[row.Status]++
		if len(row.Attempts) > 1 {
			report.Rescheduled++
		}
	}
	if last > first {
		report.Duration = time.Duration(last-first) * time.Millisecond
	}
	return report
}

// Statuses returns the statuses present in the report in display order.
func (r Report) Statuses() []string {
	return rerun.SortedStatuses(r.Counts)
}

// Failed reports whether any scenario ended in a non-passing, non-skipped
// status.
func (r Report) Failed() bool {
	for status, n := range r.Counts {
		if n > 0 && status != string(allure.StatusPassed) && status != string(allure.StatusSkipped) {
			return true
		}
	}
	return false
}

func labelStrings(labels []allure.Label) []string {
	var out []string
	for _, l := range labels {
		switch l.Name {
		case allure.LabelEpic, allure.LabelFeature, allure.LabelStory, allure.LabelTag, allure.LabelSeverity, allure.LabelOwner:
			out = append(out, l.Name+"="+l.Value)
		}
	}
	sort.Strings(out)
	return out
}
