package runner

import (
	"time"

	"allure-reporter/internal/collector"
	"allure-reporter/internal/config"
	"allure-reporter/internal/rerun"
)

// Result represents the outcome of a step or scenario execution
type Result string

const (
	// ResultPassed indicates every expectation held
	ResultPassed Result = "PASSED"
	// ResultFailed indicates an expectation did not hold
	ResultFailed Result = "FAILED"
	// ResultSkipped indicates the scenario was not executed
	ResultSkipped Result = "SKIPPED"
	// ResultError indicates the step could not be executed at all
	ResultError Result = "ERROR"
)

// Configuration controls a single runner invocation
type Configuration struct {
	// Rerun is the policy applied to failed scenarios
	Rerun rerun.Policy
	// Scenario restricts execution to scenarios whose name contains this value
	Scenario string
	// Selectors restricts execution to scenarios carrying every label
	Selectors []config.Label
	// FailFast stops execution after the first failed scenario
	FailFast bool
	// Verbose enables step output in the console reporter
	Verbose bool
}

// Scenario defines a single YAML scenario
type Scenario struct {
	// ID overrides the scenario identity; defaults to the file path
	ID string `yaml:"id,omitempty"`
	// Name is the display name
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// Tags become tag labels on the report
	Tags       []string              `yaml:"tags,omitempty"`
	Labels     []collector.Label     `yaml:"labels,omitempty"`
	Parameters []collector.Parameter `yaml:"parameters,omitempty"`
	Links      []collector.Link      `yaml:"links,omitempty"`
	// Env is added to the environment of every step command
	Env map[string]string `yaml:"env,omitempty"`
	// Steps define the execution steps
	Steps []Step `yaml:"steps"`
	// Cleanup steps always run after Steps
	Cleanup []Step        `yaml:"cleanup,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
	// Skip marks the scenario as skipped without running it
	Skip       bool   `yaml:"skip,omitempty"`
	SkipReason string `yaml:"skip_reason,omitempty"`

	// Path is the file the scenario was loaded from, relative to the load root
	Path string `yaml:"-"`
}

// Identity returns the scenario id used in notifications.
func (s Scenario) Identity() string {
	switch {
	case s.ID != "":
		return s.ID
	case s.Path != "":
		return s.Path
	default:
		return s.Name
	}
}

// Step is a single shell command within a scenario
type Step struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description,omitempty"`
	// Run is the command passed to the shell; it is rendered as a template first
	Run string `yaml:"run"`
	// Store saves the trimmed stdout under this name for later steps
	Store    string      `yaml:"store,omitempty"`
	Expected Expectation `yaml:"expected,omitempty"`
	// AttachOutput controls stdout/stderr attachments; defaults to true
	AttachOutput *bool                 `yaml:"attach_output,omitempty"`
	Timeout      time.Duration         `yaml:"timeout,omitempty"`
	Parameters   []collector.Parameter `yaml:"parameters,omitempty"`
}

// Title returns the step title shown in the report.
func (s Step) Title() string {
	if s.Description != "" {
		return s.Description
	}
	return s.ID
}

func (s Step) attachOutput() bool {
	return s.AttachOutput == nil || *s.AttachOutput
}

// Expectation defines what a step result must satisfy
type Expectation struct {
	// ExitCode defaults to 0 when unset
	ExitCode    *int     `yaml:"exit_code,omitempty"`
	Contains    []string `yaml:"contains,omitempty"`
	NotContains []string `yaml:"not_contains,omitempty"`
}

// StepResult captures one step execution
type StepResult struct {
	Step     Step
	Command  string
	Result   Result
	Error    string
	ExitCode int
	Stdout   string
	Stderr   string
	Cleanup  bool

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// ScenarioResult captures the aggregated outcome of all attempts
type ScenarioResult struct {
	Scenario    Scenario
	Result      Result
	Error       string
	StepResults []StepResult
	// Attempts lists each attempt's result in execution order
	Attempts []Result

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// SuiteResult summarizes a runner invocation
type SuiteResult struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	TotalScenarios   int
	PassedScenarios  int
	FailedScenarios  int
	SkippedScenarios int
	ErrorScenarios   int
	ScenarioResults  []ScenarioResult

	// RescheduledScenarios counts scenarios that were rerun at least once
	RescheduledScenarios int
	// Reruns counts additional attempts across all scenarios
	Reruns int
}

// Succeeded reports whether no scenario failed.
func (s SuiteResult) Succeeded() bool {
	return s.FailedScenarios == 0 && s.ErrorScenarios == 0
}

// Reporter receives progress updates while scenarios run
type Reporter interface {
	// ReportStart is called before any scenario runs
	ReportStart(cfg Configuration, total int)
	// ReportScenarioStart is called at the start of every attempt
	ReportScenarioStart(scenario Scenario, attempt int)
	// ReportStepResult is called after every step, cleanup steps included
	ReportStepResult(result StepResult)
	// ReportScenarioResult is called once per scenario with the aggregated result
	ReportScenarioResult(result ScenarioResult)
	// ReportSuiteResult is called once at the end
	ReportSuiteResult(result SuiteResult)
}
