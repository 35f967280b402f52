package collector

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Kind identifies the payload of a Notification.
type Kind string

const (
	KindRunStart      Kind = "run_start"
	KindScenarioStart Kind = "scenario_start"
	KindStepStart     Kind = "step_start"
	KindStepEnd       Kind = "step_end"
	KindAttach        Kind = "attach"
	KindScenarioEnd   Kind = "scenario_end"
	KindRunEnd        Kind = "run_end"
)

// ScenarioStatus is the outcome of one scenario attempt as reported by the host.
type ScenarioStatus string

const (
	ScenarioPassed      ScenarioStatus = "passed"
	ScenarioFailed      ScenarioStatus = "failed"
	ScenarioSkipped     ScenarioStatus = "skipped"
	ScenarioRescheduled ScenarioStatus = "rescheduled"
)

// StepStatus is the outcome of a step.
type StepStatus string

const (
	StepPassed  StepStatus = "passed"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
	StepBroken  StepStatus = "broken"
)

// ErrorInfo describes the error that ended a step or scenario.
type ErrorInfo struct {
	// Type is the error type name, e.g. "AssertionError" or "*fs.PathError".
	Type    string `json:"type,omitempty"`
	Message string `json:"message,omitempty"`
	Trace   string `json:"trace,omitempty"`
	// Line is the failing source line, if known.
	Line string `json:"line,omitempty"`
}

// Parameter is a named value shown on a scenario or step.
type Parameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	// Mode is "default", "masked" or "hidden".
	Mode string `json:"mode,omitempty"`
}

// Link is an external reference shown on a scenario.
type Link struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url"`
	Type string `json:"type,omitempty"`
}

// RunStart opens a run.
type RunStart struct {
	Time time.Time `json:"time,omitempty"`
	// Framework overrides the framework label for this run.
	Framework string `json:"framework,omitempty"`
}

// RunEnd closes a run.
type RunEnd struct {
	Time time.Time `json:"time,omitempty"`
	// Interrupted is set when the host aborted the run early.
	Interrupted bool `json:"interrupted,omitempty"`
}

// ScenarioStart opens one scenario attempt.
type ScenarioStart struct {
	// ID is the scenario's unique, fully qualified identifier. Parametrized
	// instances have distinct ids.
	ID string `json:"id"`
	// Name is the display name (subject).
	Name        string      `json:"name"`
	Path        string      `json:"path,omitempty"`
	Description string      `json:"description,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	Labels      []Label     `json:"labels,omitempty"`
	Parameters  []Parameter `json:"parameters,omitempty"`
	Links       []Link      `json:"links,omitempty"`
	Time        time.Time   `json:"time,omitempty"`
}

// ScenarioEnd closes the scenario attempt opened last, or the one named by ID.
type ScenarioEnd struct {
	ID     string         `json:"id,omitempty"`
	Status ScenarioStatus `json:"status"`
	Error  *ErrorInfo     `json:"error,omitempty"`
	// Scope holds the scenario's variables, dumped as an attachment when
	// attach_scope is enabled.
	Scope map[string]any `json:"scope,omitempty"`
	Time  time.Time      `json:"time,omitempty"`
}

// StepStart opens a step inside the current scenario or step.
type StepStart struct {
	Title      string      `json:"title"`
	Parameters []Parameter `json:"parameters,omitempty"`
	Time       time.Time   `json:"time,omitempty"`
}

// StepEnd closes the innermost open step.
type StepEnd struct {
	Status StepStatus `json:"status"`
	Error  *ErrorInfo `json:"error,omitempty"`
	Time   time.Time  `json:"time,omitempty"`
}

// Notification is a single lifecycle message. Exactly one payload field,
// the one matching Kind, is set.
//
// On the wire a notification is a JSON object whose "kind" member selects
// the payload; the payload's own members sit next to it:
//
//	{"kind":"step_start","title":"open the login page"}
type Notification struct {
	Kind Kind

	RunStart      *RunStart
	ScenarioStart *ScenarioStart
	StepStart     *StepStart
	StepEnd       *StepEnd
	Attach        *Attachment
	ScenarioEnd   *ScenarioEnd
	RunEnd        *RunEnd
}

func (n Notification) payload() (any, error) {
	var p any
	switch n.Kind {
	case KindRunStart:
		p = n.RunStart
	case KindScenarioStart:
		p = n.ScenarioStart
	case KindStepStart:
		p = n.StepStart
	case KindStepEnd:
		p = n.StepEnd
	case KindAttach:
		p = n.Attach
	case KindScenarioEnd:
		p = n.ScenarioEnd
	case KindRunEnd:
		p = n.RunEnd
	default:
		return nil, fmt.Errorf("unknown notification kind %q", n.Kind)
	}
	return p, nil
}

// MarshalJSON encodes the notification as a flat object with a "kind" member.
func (n Notification) MarshalJSON() ([]byte, error) {
	p, err := n.payload()
	if err != nil {
		return nil, err
	}
	kind, err := json.Marshal(n.Kind)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	if bytes.Equal(body, []byte("null")) || bytes.Equal(body, []byte("{}")) {
		return []byte(`{"kind":` + string(kind) + `}`), nil
	}

	var buf bytes.Buffer
	buf.WriteString(`{"kind":`)
	buf.Write(kind)
	buf.WriteByte(',')
	buf.Write(body[1:])
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat notification object.
func (n *Notification) UnmarshalJSON(data []byte) error {
	var head struct {
		Kind Kind `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	out := Notification{Kind: head.Kind}
	var target any
	switch head.Kind {
	case KindRunStart:
		out.RunStart = &RunStart{}
		target = out.RunStart
	case KindScenarioStart:
		out.ScenarioStart = &ScenarioStart{}
		target = out.ScenarioStart
	case KindStepStart:
		out.StepStart = &StepStart{}
		target = out.StepStart
	case KindStepEnd:
		out.StepEnd = &StepEnd{}
		target = out.StepEnd
	case KindAttach:
		out.Attach = &Attachment{}
		target = out.Attach
	case KindScenarioEnd:
		out.ScenarioEnd = &ScenarioEnd{}
		target = out.ScenarioEnd
	case KindRunEnd:
		out.RunEnd = &RunEnd{}
		target = out.RunEnd
	default:
		*n = out
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decoding %s notification: %w", head.Kind, err)
	}
	*n = out
	return nil
}
