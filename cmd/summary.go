package cmd

import (
	"github.com/spf13/cobra"

	"allure-reporter/internal/config"
	"allure-reporter/internal/formatting"
)

type summaryOptions struct {
	output   string
	quiet    bool
	exitCode bool
}

func newSummaryCmd(global *globalOptions) *cobra.Command {
	opts := &summaryOptions{}
	cmd := &cobra.Command{
		Use:   "summary [dir]",
		Short: "Summarize an Allure results directory",
		Long: `Summary reads every result file of a results directory and prints one row per
scenario. Rerun attempts sharing a history id are folded into one row whose
status is passed when any attempt passed.

The directory defaults to report_dir from the configuration file.

Example usage:
  allure-reporter summary
  allure-reporter summary allure_reports -o json
  allure-reporter summary --exit-code        # Exit with 3 when scenarios failed`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return summarize(cmd, global, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", string(formatting.FormatTable), "Output format (table, console, json, yaml)")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress headers and totals")
	cmd.Flags().BoolVar(&opts.exitCode, "exit-code", false, "Exit with a non-zero code when any scenario did not pass")
	_ = cmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "console", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func summarize(cmd *cobra.Command, global *globalOptions, opts *summaryOptions, args []string) error {
	format, err := formatting.ParseOutputFormat(opts.output)
	if err != nil {
		return err
	}

	dir := ""
	if len(args) == 1 {
		dir = args[0]
	} else {
		cfg, err := config.LoadConfig(global.configPath)
		if err != nil {
			return err
		}
		dir = cfg.ReportDir
	}

	report, err := formatting.LoadReport(dir)
	if err != nil {
		return err
	}

	f := formatting.NewFormatter(formatting.Options{Format: format, Quiet: opts.quiet, Out: cmd.OutOrStdout()})
	if err := f.FormatReport(report); err != nil {
		return err
	}

	if opts.exitCode && report.Failed() {
		failed := 0
		for status, n := range report.Counts {
			if status != "passed" && status != "skipped" {
				failed += n
			}
		}
		return &TestsFailedError{Failed: failed, Total: len(report.Scenarios)}
	}
	return nil
}
