package collector

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"allure-reporter/internal/allure"
	"allure-reporter/internal/config"
	"allure-reporter/internal/rerun"
	"allure-reporter/pkg/logging"
)

const (
	subsystem = "Collector"

	defaultSuite  = "scenarios"
	containerName = "run"

	notFinishedMessage = "scenario was not finished"
	interruptedMessage = "scenario was interrupted by a new attempt"
)

// Summary describes a finished run.
type Summary struct {
	Scenarios int `json:"scenarios"`
	Results   int `json:"results"`

	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Broken  int `json:"broken"`
	Skipped int `json:"skipped"`
	Unknown int `json:"unknown"`

	Rescheduled  int    `json:"rescheduled"`
	Reruns       int    `json:"reruns"`
	RerunMessage string `json:"rerun_message,omitempty"`

	Warnings int           `json:"warnings"`
	Duration time.Duration `json:"duration"`
}

// Option configures a Collector.
type Option func(*Collector)

// WithClock replaces time.Now, used for notifications without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// WithIDGenerator replaces the uuid generator used for result, container and
// attachment file names.
func WithIDGenerator(gen func() string) Option {
	return func(c *Collector) { c.newID = gen }
}

type stepFrame struct {
	result  allure.StepResult
	pending []Attachment
}

type scenarioState struct {
	start   ScenarioStart
	startAt time.Time
	ignored bool

	frames  []*stepFrame
	steps   []allure.StepResult
	pending []Attachment
	flushed []string
	lastErr *allure.StatusDetails
}

type writtenRecord struct {
	uuid    string
	sources []string
}

// deferredRecord is a rescheduled attempt held back while retries are not
// reported. It is written at run end unless a later attempt replaces it.
type deferredRecord struct {
	result  *allure.TestResult
	sources []string
}

type outcome struct {
	status      allure.Status
	rescheduled bool
	err         *ErrorInfo
	scope       map[string]any
	at          time.Time
}

// Collector turns lifecycle notifications into Allure result files.
type Collector struct {
	cfg       config.Reporter
	writer    allure.ResultWriter
	selectors []config.Label
	now       func() time.Time
	newID     func() string

	started   bool
	runStart  time.Time
	framework string

	open     map[string]*scenarioState
	order    []string
	written  map[string][]writtenRecord
	deferred map[string]deferredRecord
	held     []string
	children []string
	tracker  *rerun.Tracker
	warned   map[string]bool
	warnings []error
	last     Summary
}

// New creates a collector writing through w. The configuration is copied
// and not re-read afterwards.
func New(cfg config.Reporter, w allure.ResultWriter, opts ...Option) *Collector {
	c := &Collector{
		cfg:       cfg,
		writer:    w,
		selectors: cfg.Selectors(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.reset()
	return c
}

func (c *Collector) reset() {
	c.open = make(map[string]*scenarioState)
	c.order = nil
	c.written = make(map[string][]writtenRecord)
	c.deferred = make(map[string]deferredRecord)
	c.held = nil
	c.children = nil
	c.tracker = rerun.NewTracker()
	c.warned = make(map[string]bool)
	c.warnings = nil
}

// Tracker exposes the rerun bookkeeping of the current run.
func (c *Collector) Tracker() *rerun.Tracker {
	return c.tracker
}

// Running reports whether a run has started and not yet ended.
func (c *Collector) Running() bool {
	return c.started
}

// LastSummary returns the summary of the most recent finished run.
func (c *Collector) LastSummary() Summary {
	return c.last
}

// Warnings returns the warnings surfaced during the current run.
func (c *Collector) Warnings() []error {
	return append([]error(nil), c.warnings...)
}

func (c *Collector) warn(err error) {
	c.warnings = append(c.warnings, err)
	logging.Warn(subsystem, "%s", err)
}

func (c *Collector) timestamp(t time.Time) time.Time {
	if t.IsZero() {
		return c.now()
	}
	return t
}

// Handle dispatches a notification to the matching operation. Unknown kinds
// are logged and ignored.
func (c *Collector) Handle(n Notification) error {
	missing := func() error {
		return fmt.Errorf("%s notification without payload", n.Kind)
	}
	switch n.Kind {
	case KindRunStart:
		if n.RunStart == nil {
			return missing()
		}
		return c.OnRunStart(*n.RunStart)
	case KindScenarioStart:
		if n.ScenarioStart == nil {
			return missing()
		}
		return c.OnScenarioStart(*n.ScenarioStart)
	case KindStepStart:
		if n.StepStart == nil {
			return missing()
		}
		c.OnStepStart(*n.StepStart)
	case KindStepEnd:
		if n.StepEnd == nil {
			return missing()
		}
		c.OnStepEnd(*n.StepEnd)
	case KindAttach:
		if n.Attach == nil {
			return missing()
		}
		c.Attach(*n.Attach)
	case KindScenarioEnd:
		if n.ScenarioEnd == nil {
			return missing()
		}
		return c.OnScenarioEnd(*n.ScenarioEnd)
	case KindRunEnd:
		if n.RunEnd == nil {
			return missing()
		}
		_, err := c.OnRunEnd(*n.RunEnd)
		return err
	default:
		logging.Warn(subsystem, "Ignoring notification of unknown kind %q", n.Kind)
	}
	return nil
}

// OnRunStart prepares the results directory and resets per-run state. A run
// that is still open is ended as interrupted first, and the directory is not
// cleaned again so its records survive.
func (c *Collector) OnRunStart(rs RunStart) error {
	clean := c.cfg.CleanReportDir
	if c.started {
		logging.Warn(subsystem, "Run start received while a run is open, ending the open run as interrupted")
		if _, err := c.OnRunEnd(RunEnd{Time: rs.Time, Interrupted: true}); err != nil {
			logging.Error(subsystem, err, "Failed to finish the interrupted run")
		}
		clean = false
	}
	c.reset()
	c.runStart = c.timestamp(rs.Time)
	c.framework = rs.Framework
	if c.framework == "" {
		c.framework = c.cfg.Framework
	}
	if c.framework == "" {
		c.framework = config.DefaultFramework
	}

	dir := c.writer.Dir()
	if err := c.writer.Prepare(clean); err != nil {
		return config.NewIOError(dir, "cannot prepare report directory", err)
	}
	if len(c.cfg.Environment) > 0 {
		if err := c.writer.WriteEnvironment(c.cfg.Environment); err != nil {
			return config.NewIOError(dir, "cannot write environment.properties", err)
		}
	}
	if e := c.cfg.Executor; e != nil {
		executor := &allure.Executor{
			Name:       e.Name,
			Type:       e.Type,
			BuildName:  e.BuildName,
			BuildOrder: e.BuildOrder,
			BuildURL:   e.BuildURL,
			ReportURL:  e.ReportURL,
		}
		if err := c.writer.WriteExecutor(executor); err != nil {
			return config.NewIOError(dir, "cannot write executor.json", err)
		}
	}

	c.started = true
	logging.Info(subsystem, "Writing Allure results to %s", dir)
	return nil
}

func (c *Collector) ensureRun() error {
	if c.started {
		return nil
	}
	logging.Warn(subsystem, "Notification received before run start, starting run implicitly")
	return c.OnRunStart(RunStart{})
}

func (c *Collector) current() *scenarioState {
	if len(c.order) == 0 {
		return nil
	}
	return c.open[c.order[len(c.order)-1]]
}

func (c *Collector) detach(id string) {
	delete(c.open, id)
	for i, open := range c.order {
		if open == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// OnScenarioStart opens a scenario attempt. Scenarios that do not carry
// every configured label selector are ignored together with all their
// notifications.
func (c *Collector) OnScenarioStart(s ScenarioStart) error {
	if s.ID == "" {
		return errors.New("scenario start without id")
	}
	if err := c.ensureRun(); err != nil {
		return err
	}

	if prev, ok := c.open[s.ID]; ok {
		c.detach(s.ID)
		switch {
		case prev.ignored:
		case c.cfg.ReportRetries:
			logging.Info(subsystem, "Scenario %s restarted while open, closing previous attempt as broken", s.ID)
			err := c.finalize(prev, outcome{
				status: allure.StatusBroken,
				err:    &ErrorInfo{Type: "Interrupted", Message: interruptedMessage},
				at:     c.timestamp(s.Time),
			})
			if err != nil {
				return err
			}
		default:
			c.warn(&DuplicateScenarioError{ID: s.ID, Overwritten: true})
			c.discard(prev)
		}
	}

	st := &scenarioState{start: s, startAt: c.timestamp(s.Time)}
	if !SelectorsMatch(c.selectors, s.Labels) {
		st.ignored = true
		logging.Debug(subsystem, "Scenario %s does not match the label filter, ignoring", s.ID)
	}
	c.open[s.ID] = st
	c.order = append(c.order, s.ID)
	return nil
}

// OnStepStart opens a step nested in the innermost open step, if any.
func (c *Collector) OnStepStart(s StepStart) {
	st := c.current()
	if st == nil {
		logging.Warn(subsystem, "Step %q started outside of a scenario, ignoring", s.Title)
		return
	}
	if st.ignored {
		return
	}
	st.frames = append(st.frames, &stepFrame{
		result: allure.StepResult{
			Name:        s.Title,
			Stage:       allure.StageRunning,
			Start:       allure.Millis(c.timestamp(s.Time)),
			Steps:       []allure.StepResult{},
			Attachments: []allure.Attachment{},
			Parameters:  convertParameters(s.Parameters),
		},
	})
}

// OnStepEnd closes the innermost open step and flushes its attachments.
func (c *Collector) OnStepEnd(e StepEnd) {
	st := c.current()
	if st == nil || (!st.ignored && len(st.frames) == 0) {
		logging.Warn(subsystem, "Step end without an open step, ignoring")
		return
	}
	if st.ignored {
		return
	}
	c.closeStep(st, stepStatus(e.Status), e.Error, c.timestamp(e.Time))
}

func (c *Collector) closeStep(st *scenarioState, status allure.Status, errInfo *ErrorInfo, at time.Time) {
	frame := st.frames[len(st.frames)-1]
	st.frames = st.frames[:len(st.frames)-1]

	frame.result.Status = status
	frame.result.Stage = allure.StageFinished
	frame.result.Stop = allure.Millis(at)
	if details := statusDetails(errInfo); details != nil {
		frame.result.StatusDetails = details
		st.lastErr = details
	}
	frame.result.Attachments = append(frame.result.Attachments, c.flush(st, frame.pending)...)

	if len(st.frames) > 0 {
		parent := st.frames[len(st.frames)-1]
		parent.result.Steps = append(parent.result.Steps, frame.result)
		return
	}
	st.steps = append(st.steps, frame.result)
}

// Attach buffers an attachment on the innermost open step, or on the
// scenario when no step is open. Unsupported attachments are logged and
// skipped.
func (c *Collector) Attach(a Attachment) {
	st := c.current()
	if st == nil {
		logging.Warn(subsystem, "Attachment %q outside of a scenario, ignoring", a.Name)
		return
	}
	if st.ignored {
		return
	}
	if !c.cfg.AttachArtifacts {
		logging.Debug(subsystem, "Dropping attachment %q, attach_artifacts is disabled", a.Name)
		return
	}
	if err := a.validate(); err != nil {
		logging.Warn(subsystem, "Skipping attachment %q: %s", a.Name, err)
		return
	}
	if n := len(st.frames); n > 0 {
		st.frames[n-1].pending = append(st.frames[n-1].pending, a)
		return
	}
	st.pending = append(st.pending, a)
}

func (c *Collector) flush(st *scenarioState, pending []Attachment) []allure.Attachment {
	out := make([]allure.Attachment, 0, len(pending))
	for _, a := range pending {
		ref, err := a.flush(c.writer, c.newID())
		if err != nil {
			logging.Warn(subsystem, "Skipping attachment %q: %s", a.Name, err)
			continue
		}
		st.flushed = append(st.flushed, ref.Source)
		out = append(out, ref)
	}
	return out
}

func (c *Collector) discard(st *scenarioState) {
	c.removeSources(st.flushed)
}

func (c *Collector) removeSources(sources []string) {
	for _, source := range sources {
		if err := c.writer.Remove(source); err != nil {
			logging.Warn(subsystem, "Cannot remove attachment %s: %s", source, err)
		}
	}
}

// OnScenarioEnd closes the scenario attempt named by e.ID, or the one opened
// last, and writes its record according to the rerun policy.
func (c *Collector) OnScenarioEnd(e ScenarioEnd) error {
	var st *scenarioState
	if e.ID != "" {
		st = c.open[e.ID]
	} else {
		st = c.current()
	}
	if st == nil {
		logging.Warn(subsystem, "Scenario end without an open scenario, ignoring")
		return nil
	}
	c.detach(st.start.ID)
	if st.ignored {
		return nil
	}

	o := outcome{err: e.Error, scope: e.Scope, at: c.timestamp(e.Time)}
	switch e.Status {
	case ScenarioPassed:
		o.status = allure.StatusPassed
	case ScenarioFailed:
		o.status = allure.StatusFailed
	case ScenarioSkipped:
		o.status = allure.StatusSkipped
	case ScenarioRescheduled:
		o.rescheduled = true
		o.status = allure.StatusUnknown
		if e.Error != nil {
			o.status = allure.StatusFailed
		}
	default:
		logging.Warn(subsystem, "Scenario %s ended with unknown status %q", st.start.ID, e.Status)
		o.status = allure.StatusUnknown
	}
	return c.finalize(st, o)
}

func (c *Collector) warnRetryUnsupported(id string) {
	if c.warned[id] {
		return
	}
	c.warned[id] = true
	c.warn(&RetryUnsupportedError{ID: id})
}

func (c *Collector) finalize(st *scenarioState, o outcome) error {
	id := st.start.ID
	for len(st.frames) > 0 {
		c.closeStep(st, allure.StatusBroken, nil, o.at)
	}
	c.tracker.Record(id, string(o.status))

	if !c.cfg.ReportRetries {
		if held, ok := c.deferred[id]; ok {
			delete(c.deferred, id)
			c.removeSources(held.sources)
		}
		if o.rescheduled || len(c.written[id]) > 0 {
			c.warnRetryUnsupported(id)
		}
	}

	result := &allure.TestResult{
		UUID:        c.newID(),
		FullName:    id,
		Name:        st.start.Name,
		Description: st.start.Description,
		Status:      o.status,
		Stage:       allure.StageFinished,
		Start:       allure.Millis(st.startAt),
		Stop:        allure.Millis(o.at),
		Steps:       st.steps,
		Parameters:  convertParameters(st.start.Parameters),
		Labels:      c.labels(st.start),
		Links:       convertLinks(st.start.Links),
	}
	if result.Name == "" {
		result.Name = id
	}
	result.HistoryID = HistoryID(c.cfg.ProjectName, id)
	result.TestCaseID = result.HistoryID

	result.StatusDetails = statusDetails(o.err)
	if result.StatusDetails == nil && o.status != allure.StatusPassed && o.status != allure.StatusSkipped {
		result.StatusDetails = st.lastErr
	}

	result.Attachments = c.flush(st, st.pending)
	if c.cfg.AttachScope && o.status != allure.StatusSkipped {
		scope := TextAttachment("Scope", formatScope(o.scope), "text/plain")
		result.Attachments = append(result.Attachments, c.flush(st, []Attachment{scope})...)
	}

	if result.Steps == nil {
		result.Steps = []allure.StepResult{}
	}

	if o.rescheduled && !c.cfg.ReportRetries {
		result.Status = allure.StatusFailed
		c.deferred[id] = deferredRecord{result: result, sources: st.flushed}
		c.held = append(c.held, id)
		return nil
	}
	return c.write(id, result, st.flushed)
}

// write stores a result and, when retries are not reported, removes the
// records of earlier attempts once the new one is on disk.
func (c *Collector) write(id string, result *allure.TestResult, sources []string) error {
	if err := c.writer.WriteResult(result); err != nil {
		c.removeSources(sources)
		return fmt.Errorf("writing result for scenario %s: %w", id, err)
	}
	if prior := c.written[id]; len(prior) > 0 && !c.cfg.ReportRetries {
		c.removeRecords(prior)
		delete(c.written, id)
	}
	c.written[id] = append(c.written[id], writtenRecord{uuid: result.UUID, sources: sources})
	c.children = append(c.children, result.UUID)
	logging.Debug(subsystem, "Wrote %s result for %s", result.Status, id)
	return nil
}

func (c *Collector) removeRecords(records []writtenRecord) {
	for _, r := range records {
		if err := c.writer.Remove(allure.ResultFileName(r.uuid)); err != nil {
			logging.Warn(subsystem, "Cannot remove result %s: %s", r.uuid, err)
		}
		for _, source := range r.sources {
			if err := c.writer.Remove(source); err != nil {
				logging.Warn(subsystem, "Cannot remove attachment %s: %s", source, err)
			}
		}
		for i, child := range c.children {
			if child == r.uuid {
				c.children = append(c.children[:i], c.children[i+1:]...)
				break
			}
		}
	}
}

func (c *Collector) labels(s ScenarioStart) []allure.Label {
	set := newLabelSet()
	set.add(allure.LabelFramework, c.framework)
	if pkg := packageName(s.Path); pkg != "" {
		set.add(allure.LabelPackage, pkg)
	}
	set.add(allure.LabelSuite, defaultSuite)
	if c.cfg.ProjectName != "" {
		set.add(allure.LabelProjectName, c.cfg.ProjectName)
	}
	for _, l := range c.cfg.Labels {
		if !set.addKnown(l.Name, l.Value) {
			logging.Debug(subsystem, "Ignoring configured label with unknown kind %q", l.Name)
		}
	}
	if c.cfg.AttachTags {
		for _, tag := range s.Tags {
			set.add(allure.LabelTag, tag)
		}
	}
	for _, l := range s.Labels {
		if !set.addKnown(l.Name, l.Value) {
			logging.Debug(subsystem, "Ignoring label with unknown kind %q on %s", l.Name, s.ID)
		}
	}
	return set.labels
}

// OnRunEnd closes every scenario left open as broken, writes the run
// container and returns the run summary.
func (c *Collector) OnRunEnd(e RunEnd) (Summary, error) {
	if !c.started {
		logging.Warn(subsystem, "Run end without run start, ignoring")
		return Summary{}, nil
	}
	end := c.timestamp(e.Time)

	var errs []error
	for _, id := range append([]string(nil), c.order...) {
		st := c.open[id]
		c.detach(id)
		if st.ignored {
			continue
		}
		logging.Warn(subsystem, "Scenario %s was not finished, reporting it as broken", id)
		err := c.finalize(st, outcome{
			status: allure.StatusBroken,
			err:    &ErrorInfo{Type: "Interrupted", Message: notFinishedMessage},
			at:     end,
		})
		if err != nil {
			errs = append(errs, err)
		}
	}

	for _, id := range c.held {
		held, ok := c.deferred[id]
		if !ok {
			continue
		}
		delete(c.deferred, id)
		logging.Warn(subsystem, "Scenario %s was rescheduled but not rerun, keeping the failed attempt", id)
		if err := c.write(id, held.result, held.sources); err != nil {
			errs = append(errs, err)
		}
	}
	c.held = nil

	container := &allure.TestResultContainer{
		UUID:     c.newID(),
		Name:     containerName,
		Children: append([]string{}, c.children...),
		Start:    allure.Millis(c.runStart),
		Stop:     allure.Millis(end),
	}
	if err := c.writer.WriteContainer(container); err != nil {
		errs = append(errs, fmt.Errorf("writing run container: %w", err))
	}

	summary := c.summarize(end)
	if summary.Rescheduled > 0 {
		logging.Info(subsystem, "%s", summary.RerunMessage)
	}
	if e.Interrupted {
		logging.Warn(subsystem, "Run was interrupted")
	}
	logging.Info(subsystem, "Run finished: %d scenario(s), %d result(s), %d passed, %d failed, %d broken, %d skipped",
		summary.Scenarios, summary.Results, summary.Passed, summary.Failed, summary.Broken, summary.Skipped)

	c.started = false
	c.last = summary
	return summary, errors.Join(errs...)
}

func (c *Collector) summarize(end time.Time) Summary {
	s := Summary{
		Scenarios:   len(c.tracker.IDs()),
		Results:     len(c.children),
		Rescheduled: c.tracker.Rescheduled(),
		Reruns:      c.tracker.Times(),
		Warnings:    len(c.warnings),
		Duration:    end.Sub(c.runStart),
	}
	if s.Rescheduled > 0 {
		s.RerunMessage = c.tracker.SummaryMessage(c.cfg.RerunsDelay)
	}
	for status, n := range c.tracker.Counts() {
		switch allure.Status(status) {
		case allure.StatusPassed:
			s.Passed += n
		case allure.StatusFailed:
			s.Failed += n
		case allure.StatusBroken:
			s.Broken += n
		case allure.StatusSkipped:
			s.Skipped += n
		default:
			s.Unknown += n
		}
	}
	return s
}

func stepStatus(s StepStatus) allure.Status {
	switch s {
	case StepPassed:
		return allure.StatusPassed
	case StepFailed:
		return allure.StatusFailed
	case StepSkipped:
		return allure.StatusSkipped
	case StepBroken:
		return allure.StatusBroken
	default:
		return allure.StatusUnknown
	}
}

func convertParameters(params []Parameter) []allure.Parameter {
	out := make([]allure.Parameter, 0, len(params))
	for _, p := range params {
		ap := allure.Parameter{Name: p.Name, Value: p.Value}
		switch p.Mode {
		case allure.ParameterModeMasked:
			ap.Value = "***"
			ap.Mode = p.Mode
		case allure.ParameterModeHidden:
			ap.Excluded = true
			ap.Mode = p.Mode
		}
		out = append(out, ap)
	}
	return out
}

func convertLinks(links []Link) []allure.Link {
	out := make([]allure.Link, 0, len(links))
	for _, l := range links {
		out = append(out, allure.Link{Name: l.Name, URL: l.URL, Type: l.Type})
	}
	return out
}
