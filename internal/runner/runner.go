package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"allure-reporter/internal/collector"
	"allure-reporter/internal/rerun"
	"allure-reporter/internal/stream"
	"allure-reporter/pkg/logging"
)

// Error types carried by failed steps.
const (
	ErrorTypeExpectation = "ExpectationError"
	ErrorTypeExec        = "ExecError"
	ErrorTypeTemplate    = "TemplateError"
	ErrorTypeTimeout     = "TimeoutError"
)

// DefaultShell runs every step command as `<shell> -c <run>`.
const DefaultShell = "sh"

// Option configures a Runner.
type Option func(*Runner)

// WithShell overrides the shell used to run step commands.
func WithShell(shell string) Option {
	return func(r *Runner) { r.shell = shell }
}

// WithWorkDir sets the working directory of step commands.
func WithWorkDir(dir string) Option {
	return func(r *Runner) { r.workDir = dir }
}

// WithFramework sets the framework name announced on run start.
func WithFramework(name string) Option {
	return func(r *Runner) { r.framework = name }
}

// Runner executes scenarios and emits lifecycle notifications for each
// attempt, scenario and step to a handler, typically a collector.
type Runner struct {
	handler   stream.Handler
	reporter  Reporter
	shell     string
	workDir   string
	framework string
	now       func() time.Time
}

// New creates a runner. A nil reporter discards progress output.
func New(h stream.Handler, reporter Reporter, opts ...Option) *Runner {
	if reporter == nil {
		reporter = NewQuietReporter()
	}
	r := &Runner{
		handler:  h,
		reporter: reporter,
		shell:    DefaultShell,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) emit(n collector.Notification) error {
	if err := r.handler.Handle(n); err != nil {
		return fmt.Errorf("handling %s notification: %w", n.Kind, err)
	}
	return nil
}

// Run executes the selected scenarios sequentially. The returned error is
// non-nil only when the handler rejects a notification or the rerun policy
// is invalid; scenario failures are reported through the suite result.
func (r *Runner) Run(ctx context.Context, cfg Configuration, scenarios []Scenario) (*SuiteResult, error) {
	if err := cfg.Rerun.Validate(); err != nil {
		return nil, err
	}

	selected := FilterScenarios(scenarios, cfg)
	result := &SuiteResult{
		StartTime:       r.now(),
		TotalScenarios:  len(selected),
		ScenarioResults: make([]ScenarioResult, 0, len(selected)),
	}

	r.reporter.ReportStart(cfg, len(selected))
	if err := r.emit(collector.Notification{
		Kind:     collector.KindRunStart,
		RunStart: &collector.RunStart{Time: result.StartTime, Framework: r.framework},
	}); err != nil {
		return nil, err
	}

	interrupted := false
	for _, scenario := range selected {
		if ctx.Err() != nil {
			interrupted = true
			break
		}
		scenarioResult, err := r.runScenario(ctx, scenario, cfg.Rerun)
		if err != nil {
			return nil, err
		}
		result.ScenarioResults = append(result.ScenarioResults, scenarioResult)
		updateCounters(result, scenarioResult)
		r.reporter.ReportScenarioResult(scenarioResult)

		if cfg.FailFast && (scenarioResult.Result == ResultFailed || scenarioResult.Result == ResultError) {
			break
		}
	}
	if ctx.Err() != nil {
		interrupted = true
	}

	result.EndTime = r.now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	if err := r.emit(collector.Notification{
		Kind:   collector.KindRunEnd,
		RunEnd: &collector.RunEnd{Time: result.EndTime, Interrupted: interrupted},
	}); err != nil {
		return nil, err
	}

	r.reporter.ReportSuiteResult(*result)
	return result, nil
}

// runScenario runs the first attempt and, when it fails and the policy
// allows it, the configured number of reruns.
func (r *Runner) runScenario(ctx context.Context, scenario Scenario, policy rerun.Policy) (ScenarioResult, error) {
	result := ScenarioResult{Scenario: scenario, StartTime: r.now()}

	var first string
	var statuses []string
	for attempt := 1; ; attempt++ {
		a := r.runAttempt(ctx, scenario, attempt)
		status := string(scenarioStatus(a.Result))
		if attempt == 1 {
			first = status
		}
		again := policy.ShouldRerun(attempt, first)

		end := r.scenarioEnd(scenario, a)
		if again && attempt == 1 {
			end.Status = collector.ScenarioRescheduled
		}
		if err := r.emit(collector.Notification{Kind: collector.KindScenarioEnd, ScenarioEnd: end}); err != nil {
			return result, err
		}

		statuses = append(statuses, status)
		result.Attempts = append(result.Attempts, a.Result)
		result.StepResults = a.StepResults
		result.Error = a.Error

		if !again {
			break
		}
		logging.Info(subsystem, "Rerunning scenario %s (attempt %d of %d)", scenario.Identity(), attempt+1, policy.Reruns+1)
		if !policy.Wait(ctx.Done()) {
			break
		}
	}

	result.Result = aggregateResult(result.Attempts, rerun.Aggregate(statuses))
	if result.Result == ResultPassed {
		result.Error = ""
	}
	result.EndTime = r.now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	return result, nil
}

// attempt is the outcome of a single scenario execution.
type attempt struct {
	Result      Result
	Error       string
	ErrorInfo   *collector.ErrorInfo
	StepResults []StepResult
	Scope       map[string]any
}

func (r *Runner) runAttempt(ctx context.Context, scenario Scenario, n int) attempt {
	r.reporter.ReportScenarioStart(scenario, n)
	start := &collector.ScenarioStart{
		ID:          scenario.Identity(),
		Name:        scenario.Name,
		Path:        scenario.Path,
		Description: scenario.Description,
		Tags:        scenario.Tags,
		Labels:      scenario.Labels,
		Parameters:  scenario.Parameters,
		Links:       scenario.Links,
		Time:        r.now(),
	}
	out := attempt{Result: ResultPassed}
	if err := r.emit(collector.Notification{Kind: collector.KindScenarioStart, ScenarioStart: start}); err != nil {
		logging.Warn(subsystem, "Scenario start for %s was rejected: %v", start.ID, err)
	}

	if scenario.Skip {
		out.Result = ResultSkipped
		if scenario.SkipReason != "" {
			out.ErrorInfo = &collector.ErrorInfo{Type: "Skipped", Message: scenario.SkipReason}
		}
		return out
	}

	scenarioCtx := ctx
	if scenario.Timeout > 0 {
		var cancel context.CancelFunc
		scenarioCtx, cancel = context.WithTimeout(ctx, scenario.Timeout)
		defer cancel()
	}

	sc := NewScenarioContext()
	processor := NewTemplateProcessor(sc, scenario, n)
	env := commandEnv(scenario.Env)

	for _, step := range scenario.Steps {
		sr, info := r.runStep(scenarioCtx, step, processor, sc, env, false)
		out.StepResults = append(out.StepResults, sr)
		r.reporter.ReportStepResult(sr)
		if sr.Result != ResultPassed {
			out.Result = sr.Result
			out.Error = sr.Error
			out.ErrorInfo = info
			break
		}
	}

	// Cleanup runs even when the scenario timed out.
	cleanupCtx := scenarioCtx
	if scenarioCtx.Err() != nil {
		cleanupCtx = context.WithoutCancel(ctx)
	}
	for _, step := range scenario.Cleanup {
		sr, info := r.runStep(cleanupCtx, step, processor, sc, env, true)
		out.StepResults = append(out.StepResults, sr)
		r.reporter.ReportStepResult(sr)
		if sr.Result != ResultPassed && out.Result == ResultPassed {
			out.Result = sr.Result
			out.Error = sr.Error
			out.ErrorInfo = info
		}
	}

	out.Scope = sc.GetAllStoredResults()
	return out
}

func (r *Runner) scenarioEnd(scenario Scenario, a attempt) *collector.ScenarioEnd {
	end := &collector.ScenarioEnd{
		ID:     scenario.Identity(),
		Status: scenarioStatus(a.Result),
		Scope:  a.Scope,
		Time:   r.now(),
	}
	if a.Result != ResultPassed {
		end.Error = a.ErrorInfo
	}
	return end
}

// runStep renders and executes one step, emitting step start, output
// attachments and step end.
func (r *Runner) runStep(ctx context.Context, step Step, processor *TemplateProcessor, sc *ScenarioContext, env []string, cleanup bool) (StepResult, *collector.ErrorInfo) {
	result := StepResult{Step: step, Cleanup: cleanup, StartTime: r.now(), Result: ResultPassed}

	title := step.Title()
	if cleanup {
		title = "cleanup: " + title
	}
	r.emitStep(collector.Notification{
		Kind:      collector.KindStepStart,
		StepStart: &collector.StepStart{Title: title, Parameters: step.Parameters, Time: result.StartTime},
	})

	info := r.executeStep(ctx, step, processor, sc, env, &result)

	result.EndTime = r.now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	if step.attachOutput() {
		if result.Stdout != "" {
			r.attach(collector.TextAttachment("stdout", result.Stdout, ""))
		}
		if result.Stderr != "" {
			r.attach(collector.TextAttachment("stderr", result.Stderr, ""))
		}
	}

	r.emitStep(collector.Notification{
		Kind:    collector.KindStepEnd,
		StepEnd: &collector.StepEnd{Status: stepStatus(result.Result), Error: info, Time: result.EndTime},
	})
	return result, info
}

func (r *Runner) emitStep(n collector.Notification) {
	if err := r.emit(n); err != nil {
		logging.Warn(subsystem, "Step notification rejected: %v", err)
	}
}

func (r *Runner) attach(a collector.Attachment) {
	r.emitStep(collector.Notification{Kind: collector.KindAttach, Attach: &a})
}

func (r *Runner) executeStep(ctx context.Context, step Step, processor *TemplateProcessor, sc *ScenarioContext, env []string, result *StepResult) *collector.ErrorInfo {
	command, err := processor.Render(step.ID, step.Run)
	if err != nil {
		result.Result = ResultError
		result.Error = fmt.Sprintf("template resolution failed: %v", err)
		return &collector.ErrorInfo{Type: ErrorTypeTemplate, Message: result.Error, Line: step.Run}
	}
	result.Command = command

	stepCtx := ctx
	if step.Timeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, step.Timeout)
		defer cancel()
	}

	stdout, stderr, code, err := r.execute(stepCtx, command, env)
	result.Stdout = stdout
	result.Stderr = stderr
	result.ExitCode = code

	if stepCtx.Err() != nil {
		result.Result = ResultError
		result.Error = fmt.Sprintf("command timed out: %v", stepCtx.Err())
		return &collector.ErrorInfo{Type: ErrorTypeTimeout, Message: result.Error, Trace: stderr, Line: command}
	}
	if err != nil {
		result.Result = ResultError
		result.Error = fmt.Sprintf("command failed to start: %v", err)
		return &collector.ErrorInfo{Type: ErrorTypeExec, Message: result.Error, Line: command}
	}

	if step.Store != "" {
		sc.StoreResult(step.Store, strings.TrimSpace(stdout))
	}

	if msg := checkExpectations(step.Expected, stdout, code); msg != "" {
		result.Result = ResultFailed
		result.Error = msg
		return &collector.ErrorInfo{Type: ErrorTypeExpectation, Message: msg, Trace: stderr, Line: command}
	}
	return nil
}

// execute runs command through the shell and returns its output. A non-zero
// exit status is reported through the exit code, not the error.
func (r *Runner) execute(ctx context.Context, command string, env []string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, r.shell, "-c", command)
	cmd.Dir = r.workDir
	cmd.Env = env
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.String(), stderr.String(), exitErr.ExitCode(), nil
	}
	if err != nil {
		return stdout.String(), stderr.String(), -1, err
	}
	return stdout.String(), stderr.String(), 0, nil
}

func checkExpectations(expected Expectation, stdout string, code int) string {
	want := 0
	if expected.ExitCode != nil {
		want = *expected.ExitCode
	}
	if code != want {
		return fmt.Sprintf("exit code %d, expected %d", code, want)
	}
	for _, s := range expected.Contains {
		if !strings.Contains(stdout, s) {
			return fmt.Sprintf("output does not contain %q", s)
		}
	}
	for _, s := range expected.NotContains {
		if strings.Contains(stdout, s) {
			return fmt.Sprintf("output contains %q", s)
		}
	}
	return ""
}

func commandEnv(extra map[string]string) []string {
	env := os.Environ()
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}

func scenarioStatus(r Result) collector.ScenarioStatus {
	switch r {
	case ResultPassed:
		return collector.ScenarioPassed
	case ResultSkipped:
		return collector.ScenarioSkipped
	default:
		return collector.ScenarioFailed
	}
}

func stepStatus(r Result) collector.StepStatus {
	switch r {
	case ResultPassed:
		return collector.StepPassed
	case ResultFailed:
		return collector.StepFailed
	case ResultSkipped:
		return collector.StepSkipped
	default:
		return collector.StepBroken
	}
}

// aggregateResult maps the aggregated collector status back onto a runner
// result, keeping ResultError when the last attempt could not execute.
func aggregateResult(attempts []Result, status string) Result {
	switch status {
	case rerun.StatusPassed:
		return ResultPassed
	case string(collector.ScenarioSkipped):
		return ResultSkipped
	}
	if last := attempts[len(attempts)-1]; last == ResultError {
		return ResultError
	}
	return ResultFailed
}

func updateCounters(suite *SuiteResult, result ScenarioResult) {
	switch result.Result {
	case ResultPassed:
		suite.PassedScenarios++
	case ResultFailed:
		suite.FailedScenarios++
	case ResultSkipped:
		suite.SkippedScenarios++
	case ResultError:
		suite.ErrorScenarios++
	}
	if n := len(result.Attempts); n > 1 {
		suite.RescheduledScenarios++
		suite.Reruns += n - 1
	}
}
