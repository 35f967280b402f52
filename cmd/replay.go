package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"allure-reporter/internal/allure"
	"allure-reporter/internal/collector"
	"allure-reporter/internal/stream"
)

type replayOptions struct {
	reporter     reporterFlags
	follow       bool
	pollInterval time.Duration
	quiet        bool
}

func newReplayCmd(global *globalOptions) *cobra.Command {
	opts := &replayOptions{}
	cmd := &cobra.Command{
		Use:   "replay [file|-]",
		Short: "Write Allure results from a JSON-lines notification stream",
		Long: `Replay reads lifecycle notifications, one JSON object per line, and writes
the Allure results they describe. Without an argument, or with "-", the stream
is read from stdin.

Every line carries a "kind" (run_start, scenario_start, step_start, step_end,
attach, scenario_end, run_end) next to the fields of that notification:

  {"kind":"run_start"}
  {"kind":"scenario_start","id":"login","name":"user logs in"}
  {"kind":"step_start","title":"open page"}
  {"kind":"attach","content":"memory","name":"log","text":"ok"}
  {"kind":"step_end","status":"passed"}
  {"kind":"scenario_end","status":"passed"}
  {"kind":"run_end"}

With --follow the file is tailed as it grows until a run_end notification
arrives or the command is interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := "-"
			if len(args) == 1 {
				source = args[0]
			}
			return replayStream(cmd, global, opts, source)
		},
	}

	opts.reporter.register(cmd)
	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Tail the file until run_end is received")
	cmd.Flags().DurationVar(&opts.pollInterval, "poll-interval", stream.DefaultPollInterval, "Fallback poll interval while following")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Do not show a progress spinner while following")
	return cmd
}

func replayStream(cmd *cobra.Command, global *globalOptions, opts *replayOptions, source string) error {
	cfg, err := loadReporterConfig(cmd, global, &opts.reporter)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := collector.New(cfg, allure.NewFileWriter(cfg.ReportDir))

	var n int
	switch {
	case opts.follow:
		if source == "-" {
			return fmt.Errorf("--follow requires a file argument")
		}
		n, err = followStream(ctx, cmd.ErrOrStderr(), c, source, opts)
	case source == "-":
		n, err = stream.Replay(ctx, cmd.InOrStdin(), c)
	default:
		f, openErr := os.Open(source)
		if openErr != nil {
			return fmt.Errorf("failed to open notification stream: %w", openErr)
		}
		defer f.Close()
		n, err = stream.Replay(ctx, f, c)
	}

	// A stream that stops before run_end still gets its container written.
	if c.Running() {
		if _, endErr := c.OnRunEnd(collector.RunEnd{Interrupted: true}); endErr != nil && err == nil {
			err = endErr
		}
	}
	if err != nil {
		return fmt.Errorf("replay stopped after %d notification(s): %w", n, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Replayed %d notification(s)\n", n)
	printCollectorSummary(cmd.OutOrStdout(), cfg, c.LastSummary())
	return nil
}

func followStream(ctx context.Context, out io.Writer, h stream.Handler, path string, opts *replayOptions) (int, error) {
	followOpts := stream.FollowOptions{PollInterval: opts.pollInterval}

	if !opts.quiet {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
		s.Suffix = fmt.Sprintf(" Following %s...", path)
		followOpts.OnNotification = func(n int) {
			s.Lock()
			s.Suffix = fmt.Sprintf(" Following %s (%d notifications)...", path, n)
			s.Unlock()
		}
		s.Start()
		defer s.Stop()
	}

	return stream.Follow(ctx, path, h, followOpts)
}
