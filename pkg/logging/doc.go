// Package logging provides the subsystem-tagged logger used throughout
// allure-reporter.
//
// It is a thin layer over Go's slog package: every entry carries a
// "subsystem" attribute naming the component that produced it, and level
// filtering happens in the slog handler.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Collector", "Writing results to %s", dir)
//	logging.Debug("Stream", "Decoded %s notification", kind)
//	logging.Warn("Collector", "Scenario %s was rerun but retries are not reported", id)
//	logging.Error("Writer", err, "Failed to write attachment %s", name)
//
// # Subsystems
//
//   - **Collector**: scenario/step bookkeeping and result mapping
//   - **Writer**: Allure results directory I/O
//   - **Rerun**: rerun accounting
//   - **Stream**: notification stream decoding and following
//   - **Runner**: YAML scenario execution
//   - **Config**: configuration loading and validation
//
// When the package is used as a library without calling InitForCLI, warnings
// and errors still reach stderr so that surfaced warnings are never lost.
package logging
