package runner

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"allure-reporter/internal/rerun"
)

func TestConsoleReporter(t *testing.T) {
	var out strings.Builder
	r := NewConsoleReporter(&out, true)

	scenario := Scenario{Name: "login"}
	r.ReportStart(Configuration{Rerun: rerun.Policy{Reruns: 2}}, 1)
	r.ReportScenarioStart(scenario, 1)
	r.ReportStepResult(StepResult{
		Step:     Step{ID: "post", Description: "post credentials"},
		Command:  "curl -X POST /login",
		Result:   ResultFailed,
		Error:    "exit code 7, expected 0",
		Stderr:   "connection refused\n",
		Duration: 1500 * time.Millisecond,
	})
	r.ReportScenarioStart(scenario, 2)
	r.ReportScenarioResult(ScenarioResult{
		Scenario: scenario,
		Result:   ResultFailed,
		Error:    "exit code 7, expected 0",
		Attempts: []Result{ResultFailed, ResultFailed, ResultFailed},
	})
	r.ReportSuiteResult(SuiteResult{
		TotalScenarios:       1,
		FailedScenarios:      1,
		RescheduledScenarios: 1,
		Reruns:               2,
	})

	got := out.String()
	assert.Contains(t, got, "Running 1 scenario(s) with up to 2 rerun(s)")
	assert.Contains(t, got, "post credentials (1.5s)")
	assert.Contains(t, got, "command: curl -X POST /login")
	assert.Contains(t, got, "        connection refused")
	assert.Contains(t, got, "login (attempt 2)")
	assert.Contains(t, got, "login [3 attempts]")
	assert.Contains(t, got, "total: 1")
	assert.Contains(t, got, "rerun 1 scenario(s), 2 time(s)")
}

func TestConsoleReporter_QuietSteps(t *testing.T) {
	var out strings.Builder
	r := NewConsoleReporter(&out, false)

	r.ReportScenarioStart(Scenario{Name: "x"}, 1)
	r.ReportStepResult(StepResult{Step: Step{ID: "s"}, Result: ResultFailed, Error: "boom"})
	assert.Empty(t, out.String())
}
