package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"allure-reporter/internal/config"
)

// execute runs a fresh command tree with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// noConfig returns a --config flag pointing at a file that does not exist,
// so the defaults apply.
func noConfig(t *testing.T) []string {
	return []string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}
}

func TestSetVersion(t *testing.T) {
	original := GetVersion()
	defer SetVersion(original)

	SetVersion("1.2.3-test")
	assert.Equal(t, "1.2.3-test", rootCmd.Version)
	assert.Equal(t, "1.2.3-test", GetVersion())
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "allure-reporter", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.True(t, cmd.SilenceUsage)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"run", "replay", "summary", "version"})
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("allure-reporter version %s\n", GetVersion()), out)
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "version", "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown log level "loud"`)
}

func TestGetExitCode(t *testing.T) {
	var collection config.ConfigurationErrorCollection
	collection.AddValidation("reruns", "must not be negative")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"generic", errors.New("boom"), ExitCodeError},
		{"tests failed", fmt.Errorf("run: %w", &TestsFailedError{Failed: 1, Total: 2}), ExitCodeTestsFailed},
		{"io error", config.NewIOError("/tmp/x", "cannot create", errors.New("denied")), ExitCodeConfigError},
		{"validation", fmt.Errorf("invalid configuration: %w", collection), ExitCodeConfigError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getExitCode(tt.err))
		})
	}
}

func TestTestsFailedError(t *testing.T) {
	err := &TestsFailedError{Failed: 2, Total: 5}
	assert.Equal(t, "2 of 5 scenario(s) failed", err.Error())
}

func TestErrorReport(t *testing.T) {
	var collection config.ConfigurationErrorCollection
	collection.AddValidation("reruns_delay", "requires reruns to be greater than 0", "set reruns or remove reruns_delay")

	report := errorReport(fmt.Errorf("invalid configuration in allure.yaml: %w", collection))
	assert.Contains(t, report, "Configuration Error Summary (1 total errors):")
	assert.Contains(t, report, "hint: set reruns or remove reruns_delay")

	report = errorReport(config.NewIOError("/tmp/out", "cannot prepare report directory", errors.New("denied")))
	assert.Contains(t, report, "Configuration Error (io)")
	assert.Contains(t, report, "File: /tmp/out")

	assert.Equal(t, "Error: boom", errorReport(errors.New("boom")))
}

func TestRunRejectsInvalidFlagCombination(t *testing.T) {
	args := append(noConfig(t), "run", t.TempDir(), "--reruns-delay", "1s")
	_, err := execute(t, args...)
	require.Error(t, err)

	var collection config.ConfigurationErrorCollection
	require.True(t, errors.As(err, &collection))
	assert.Equal(t, ExitCodeConfigError, getExitCode(err))
}
