package runner

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"

	strutil "allure-reporter/pkg/strings"
)

// ConsoleReporter prints scenario progress in a human readable form.
type ConsoleReporter struct {
	out     io.Writer
	verbose bool
}

// NewConsoleReporter creates a reporter writing to out. Verbose mode adds
// per-step lines and command output of failed steps.
func NewConsoleReporter(out io.Writer, verbose bool) *ConsoleReporter {
	return &ConsoleReporter{out: out, verbose: verbose}
}

func (r *ConsoleReporter) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

func (r *ConsoleReporter) ReportStart(cfg Configuration, total int) {
	r.printf("Running %d scenario(s)", total)
	if cfg.Rerun.Enabled() {
		r.printf(" with up to %d rerun(s)", cfg.Rerun.Reruns)
	}
	r.printf("\n")
}

func (r *ConsoleReporter) ReportScenarioStart(scenario Scenario, attempt int) {
	if attempt > 1 {
		r.printf("%s %s (attempt %d)\n", text.FgYellow.Sprint("↻"), scenario.Name, attempt)
		return
	}
	if r.verbose {
		r.printf("%s %s\n", text.FgCyan.Sprint("▶"), scenario.Name)
	}
}

func (r *ConsoleReporter) ReportStepResult(result StepResult) {
	if !r.verbose {
		return
	}
	name := result.Step.Title()
	if result.Cleanup {
		name = "cleanup: " + name
	}
	r.printf("    %s %s (%v)\n", resultSymbol(result.Result), name, result.Duration.Round(time.Millisecond))
	if result.Result == ResultPassed {
		return
	}
	if result.Error != "" {
		r.printf("      %s\n", text.FgRed.Sprint(result.Error))
	}
	if result.Command != "" {
		r.printf("      command: %s\n", result.Command)
	}
	if s := strings.TrimSpace(result.Stderr); s != "" {
		r.printf("      stderr:\n%s\n", strutil.Indent(strutil.Truncate(s, 2000), "        "))
	}
}

func (r *ConsoleReporter) ReportScenarioResult(result ScenarioResult) {
	r.printf("%s %s", resultSymbol(result.Result), result.Scenario.Name)
	if n := len(result.Attempts); n > 1 {
		r.printf(" [%d attempts]", n)
	}
	r.printf(" (%v)\n", result.Duration.Round(time.Millisecond))
	if result.Result != ResultPassed && result.Result != ResultSkipped && result.Error != "" {
		r.printf("    %s\n", text.FgRed.Sprint(result.Error))
	}
}

func (r *ConsoleReporter) ReportSuiteResult(result SuiteResult) {
	r.printf("\n%s in %v\n", text.Bold.Sprint("Suite complete"), result.Duration.Round(time.Millisecond))
	r.printf("  %s %d", text.FgGreen.Sprint("passed:"), result.PassedScenarios)
	if result.FailedScenarios > 0 {
		r.printf("  %s %d", text.FgRed.Sprint("failed:"), result.FailedScenarios)
	}
	if result.ErrorScenarios > 0 {
		r.printf("  %s %d", text.FgHiRed.Sprint("errors:"), result.ErrorScenarios)
	}
	if result.SkippedScenarios > 0 {
		r.printf("  %s %d", text.FgYellow.Sprint("skipped:"), result.SkippedScenarios)
	}
	r.printf("  total: %d\n", result.TotalScenarios)
	if result.Reruns > 0 {
		r.printf("  rerun %d scenario(s), %d time(s)\n", result.RescheduledScenarios, result.Reruns)
	}
}

func resultSymbol(result Result) string {
	switch result {
	case ResultPassed:
		return text.FgGreen.Sprint("✔")
	case ResultFailed:
		return text.FgRed.Sprint("✗")
	case ResultError:
		return text.FgHiRed.Sprint("!")
	case ResultSkipped:
		return text.FgYellow.Sprint("○")
	default:
		return "?"
	}
}

// NewQuietReporter returns a reporter that prints nothing
func NewQuietReporter() Reporter {
	return quietReporter{}
}

type quietReporter struct{}

func (quietReporter) ReportStart(Configuration, int) {}
func (quietReporter) ReportScenarioStart(Scenario, int) {}
func (quietReporter) ReportStepResult(StepResult) {}
func (quietReporter) ReportScenarioResult(ScenarioResult) {}
func (quietReporter) ReportSuiteResult(SuiteResult) {}
