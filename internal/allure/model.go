package allure

import "time"

// Status is the outcome of a test or step as understood by Allure.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusBroken  Status = "broken"
	StatusSkipped Status = "skipped"
	StatusUnknown Status = "unknown"
)

// Stage is the lifecycle stage of a result. The reporter only writes
// finished results.
type Stage string

const (
	StageScheduled   Stage = "scheduled"
	StageRunning     Stage = "running"
	StageFinished    Stage = "finished"
	StagePending     Stage = "pending"
	StageInterrupted Stage = "interrupted"
)

// Well-known label names.
const (
	LabelEpic        = "epic"
	LabelFeature     = "feature"
	LabelStory       = "story"
	LabelTag         = "tag"
	LabelSeverity    = "severity"
	LabelOwner       = "owner"
	LabelSuite       = "suite"
	LabelParentSuite = "parentSuite"
	LabelSubSuite    = "subSuite"
	LabelPackage     = "package"
	LabelFramework   = "framework"
	LabelHost        = "host"
	LabelThread      = "thread"
	LabelLanguage    = "language"
	LabelProjectName = "project_name"
)

// Parameter display modes.
const (
	ParameterModeDefault = "default"
	ParameterModeMasked  = "masked"
	ParameterModeHidden  = "hidden"
)

// TestResult is the content of a <uuid>-result.json file.
type TestResult struct {
	UUID          string         `json:"uuid"`
	HistoryID     string         `json:"historyId,omitempty"`
	TestCaseID    string         `json:"testCaseId,omitempty"`
	FullName      string         `json:"fullName,omitempty"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Status        Status         `json:"status,omitempty"`
	StatusDetails *StatusDetails `json:"statusDetails,omitempty"`
	Stage         Stage          `json:"stage,omitempty"`
	Start         int64          `json:"start,omitempty"`
	Stop          int64          `json:"stop,omitempty"`
	Steps         []StepResult   `json:"steps"`
	Attachments   []Attachment   `json:"attachments"`
	Parameters    []Parameter    `json:"parameters"`
	Labels        []Label        `json:"labels"`
	Links         []Link         `json:"links"`
}

// StepResult is a (possibly nested) step inside a TestResult.
type StepResult struct {
	Name          string         `json:"name"`
	Status        Status         `json:"status,omitempty"`
	StatusDetails *StatusDetails `json:"statusDetails,omitempty"`
	Stage         Stage          `json:"stage,omitempty"`
	Start         int64          `json:"start,omitempty"`
	Stop          int64          `json:"stop,omitempty"`
	Steps         []StepResult   `json:"steps"`
	Attachments   []Attachment   `json:"attachments"`
	Parameters    []Parameter    `json:"parameters"`
}

// StatusDetails carries the failure message and trace.
type StatusDetails struct {
	Known   bool   `json:"known,omitempty"`
	Muted   bool   `json:"muted,omitempty"`
	Flaky   bool   `json:"flaky,omitempty"`
	Message string `json:"message,omitempty"`
	Trace   string `json:"trace,omitempty"`
}

// Attachment references a payload file written next to the result.
type Attachment struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Type   string `json:"type,omitempty"`
}

type Label struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Parameter struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Excluded bool   `json:"excluded,omitempty"`
	Mode     string `json:"mode,omitempty"`
}

type Link struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url"`
	Type string `json:"type,omitempty"`
}

// TestResultContainer is the content of a <uuid>-container.json file.
type TestResultContainer struct {
	UUID     string   `json:"uuid"`
	Name     string   `json:"name,omitempty"`
	Children []string `json:"children"`
	Start    int64    `json:"start,omitempty"`
	Stop     int64    `json:"stop,omitempty"`
}

// Executor describes the system that produced the results (executor.json).
type Executor struct {
	Name       string `json:"name,omitempty"`
	Type       string `json:"type,omitempty"`
	BuildName  string `json:"buildName,omitempty"`
	BuildOrder int64  `json:"buildOrder,omitempty"`
	BuildURL   string `json:"buildUrl,omitempty"`
	ReportURL  string `json:"reportUrl,omitempty"`
}

// Millis converts t to Allure's epoch-milliseconds representation.
// The zero time maps to zero so that omitempty drops it.
func Millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
