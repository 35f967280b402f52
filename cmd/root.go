package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"allure-reporter/internal/config"
	"allure-reporter/pkg/logging"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfigError indicates an invalid configuration or an unusable report directory.
	ExitCodeConfigError = 2
	// ExitCodeTestsFailed indicates that scenarios ran but some of them failed.
	ExitCodeTestsFailed = 3
)

// TestsFailedError is returned when a run or a summarized results directory
// contains failed scenarios.
type TestsFailedError struct {
	Failed int
	Total  int
}

func (e *TestsFailedError) Error() string {
	return fmt.Sprintf("%d of %d scenario(s) failed", e.Failed, e.Total)
}

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
}

var version = "dev"

// rootCmd is the command tree used by Execute.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:   "allure-reporter",
		Short: "Write Allure result files from test lifecycle notifications",
		Long: `allure-reporter turns test lifecycle notifications (run, scenario, step and
attachment events) into an Allure 2 results directory.

Notifications come from one of two hosts:
  run      executes YAML scenarios whose steps are shell commands
  replay   reads a JSON-lines notification stream from a file or stdin

The summary command renders an existing results directory.`,
		// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
		SilenceUsage: true,
		// Errors are printed by Execute so configuration errors can show their details.
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			logging.InitForCLI(level, cmd.ErrOrStderr())
			return nil
		},
	}
	cmd.Version = version
	cmd.SetVersionTemplate(`{{printf "allure-reporter version %s\n" .Version}}`)

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultConfigFile, "Reporter configuration file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newReplayCmd(opts))
	cmd.AddCommand(newSummaryCmd(opts))
	return cmd
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), errorReport(err))
		os.Exit(getExitCode(err))
	}
}

// errorReport renders err for the terminal. Configuration errors include
// their context and suggestions.
func errorReport(err error) string {
	var cfgErr *config.ConfigurationError
	if errors.As(err, &cfgErr) {
		return cfgErr.DetailedError()
	}

	var cfgErrs config.ConfigurationErrorCollection
	if errors.As(err, &cfgErrs) {
		return cfgErrs.Summary()
	}

	return "Error: " + err.Error()
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	var failed *TestsFailedError
	if errors.As(err, &failed) {
		return ExitCodeTestsFailed
	}

	var cfgErr *config.ConfigurationError
	if errors.As(err, &cfgErr) {
		return ExitCodeConfigError
	}

	var cfgErrs config.ConfigurationErrorCollection
	if errors.As(err, &cfgErrs) {
		return ExitCodeConfigError
	}

	return ExitCodeError
}
