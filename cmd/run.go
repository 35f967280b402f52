package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"allure-reporter/internal/allure"
	"allure-reporter/internal/collector"
	"allure-reporter/internal/config"
	"allure-reporter/internal/rerun"
	"allure-reporter/internal/runner"
	"allure-reporter/internal/stream"
)

const defaultScenarioPath = "scenarios"

type runOptions struct {
	reporter reporterFlags
	scenario string
	failFast bool
	verbose  bool
	record   string
	shell    string
	timeout  time.Duration
}

func newRunCmd(global *globalOptions) *cobra.Command {
	opts := &runOptions{reporter: reporterFlags{withRerunFlags: true}}
	cmd := &cobra.Command{
		Use:   "run [path]",
		Short: "Run YAML scenarios and write Allure results",
		Long: `Run executes YAML scenarios from a file or directory (default: scenarios)
and writes an Allure results directory.

Each step runs as "sh -c <run>". The run command is rendered as a Go template
with the sprig functions; outputs stored by earlier steps are available by
name, together with .scenario, .attempt and .params.

Failed scenarios are rerun --reruns times. With retry reporting enabled every
attempt becomes its own result, all sharing one history id.

Example usage:
  allure-reporter run                            # Run ./scenarios
  allure-reporter run tests/smoke --verbose      # Show step output
  allure-reporter run --reruns 2 --reruns-delay 1s
  allure-reporter run --label feature=checkout   # Only matching scenarios
  allure-reporter run --record events.jsonl      # Also save the notification stream`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultScenarioPath
			if len(args) == 1 {
				path = args[0]
			}
			return runScenarios(cmd, global, opts, path)
		},
	}

	opts.reporter.register(cmd)
	cmd.Flags().StringVar(&opts.scenario, "scenario", "", "Run only scenarios whose name contains this value")
	cmd.Flags().BoolVar(&opts.failFast, "fail-fast", false, "Stop after the first failed scenario")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print every step and the output of failed steps")
	cmd.Flags().StringVar(&opts.record, "record", "", "Also write the notification stream to this file (JSON lines)")
	cmd.Flags().StringVar(&opts.shell, "shell", runner.DefaultShell, "Shell used to run step commands")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Overall execution timeout (0 disables it)")
	return cmd
}

func runScenarios(cmd *cobra.Command, global *globalOptions, opts *runOptions, path string) error {
	cfg, err := loadReporterConfig(cmd, global, &opts.reporter)
	if err != nil {
		return err
	}

	scenarios, err := runner.LoadScenarios(path)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	c := collector.New(cfg, allure.NewFileWriter(cfg.ReportDir))
	var handler stream.Handler = c
	if opts.record != "" {
		f, err := os.Create(opts.record)
		if err != nil {
			return fmt.Errorf("failed to create record file: %w", err)
		}
		defer f.Close()
		handler = stream.Tee(c, stream.NewEncoder(f))
	}

	r := runner.New(handler, runner.NewConsoleReporter(cmd.OutOrStdout(), opts.verbose),
		runner.WithShell(opts.shell),
		runner.WithFramework(cfg.Framework),
	)

	suite, err := r.Run(ctx, runner.Configuration{
		Rerun:     rerun.Policy{Reruns: cfg.Reruns, Delay: cfg.RerunsDelay},
		Scenario:  opts.scenario,
		Selectors: cfg.Selectors(),
		FailFast:  opts.failFast,
		Verbose:   opts.verbose,
	}, scenarios)
	if err != nil {
		return err
	}

	printCollectorSummary(cmd.OutOrStdout(), cfg, c.LastSummary())

	if !suite.Succeeded() {
		return &TestsFailedError{
			Failed: suite.FailedScenarios + suite.ErrorScenarios,
			Total:  suite.TotalScenarios,
		}
	}
	return nil
}

func printCollectorSummary(w io.Writer, cfg config.Reporter, s collector.Summary) {
	fmt.Fprintf(w, "Allure results written to %s (%d result file(s))\n", cfg.ReportDir, s.Results)
	if s.RerunMessage != "" {
		fmt.Fprintf(w, "%s\n", s.RerunMessage)
	}
	if s.Warnings > 0 {
		fmt.Fprintf(w, "%d warning(s) were reported while collecting results\n", s.Warnings)
	}
}
