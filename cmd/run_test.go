package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"allure-reporter/internal/allure"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestRunCommand(t *testing.T) {
	base := t.TempDir()
	scenarios := filepath.Join(base, "scenarios")
	reportDir := filepath.Join(base, "results")
	record := filepath.Join(base, "events.jsonl")

	writeFile(t, filepath.Join(scenarios, "users", "create.yaml"), `
name: create user
labels:
  - name: feature
    value: users
steps:
  - id: create
    run: echo 42
    store: id
  - id: check
    run: echo "user {{ .id }}"
    expected:
      contains: ["user 42"]
`)

	args := append(noConfig(t), "run", scenarios,
		"--report-dir", reportDir,
		"--project-name", "demo",
		"--record", record,
	)
	out, err := execute(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Allure results written to "+reportDir+" (1 result file(s))")

	results, err := allure.ReadResults(reportDir)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, allure.StatusPassed, results[0].Status)
	assert.Equal(t, "users/create.yaml", results[0].FullName)
	assert.Contains(t, results[0].Labels, allure.Label{Name: "project_name", Value: "demo"})

	data, err := os.ReadFile(record)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Contains(t, lines[0], `"kind":"run_start"`)
	assert.Contains(t, lines[len(lines)-1], `"kind":"run_end"`)
}

func TestRunCommand_FailuresAndReruns(t *testing.T) {
	base := t.TempDir()
	scenarios := filepath.Join(base, "scenarios")
	reportDir := filepath.Join(base, "results")
	writeFile(t, filepath.Join(scenarios, "fail.yaml"), "name: always fails\nsteps:\n  - id: s\n    run: exit 1\n")

	args := append(noConfig(t), "run", scenarios, "--report-dir", reportDir, "--reruns", "1")
	out, err := execute(t, args...)
	require.Error(t, err)

	var failed *TestsFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, 1, failed.Failed)
	assert.Equal(t, ExitCodeTestsFailed, getExitCode(err))
	assert.Contains(t, out, "rerun 1 scenario, 1 time")

	results, err := allure.ReadResults(reportDir)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRunCommand_ConfigFileAndValidation(t *testing.T) {
	base := t.TempDir()
	scenarios := filepath.Join(base, "scenarios")
	writeFile(t, filepath.Join(scenarios, "ok.yaml"), "name: ok\nsteps:\n  - id: s\n    run: \"true\"\n")

	cfgPath := filepath.Join(base, "allure.yaml")
	reportDir := filepath.Join(base, "from-config")
	writeFile(t, cfgPath, "report_dir: "+reportDir+"\nreruns_delay: 1s\nreruns: 1\n")

	_, err := execute(t, "--config", cfgPath, "run", scenarios)
	require.NoError(t, err)
	_, err = os.Stat(reportDir)
	require.NoError(t, err, "report_dir from the config file is used")

	_, err = execute(t, "--config", cfgPath, "run", scenarios, "--reruns", "0")
	require.Error(t, err, "a delay without reruns is rejected")
	assert.Equal(t, ExitCodeConfigError, getExitCode(err))
}

func TestRunCommand_MissingScenarios(t *testing.T) {
	args := append(noConfig(t), "run", filepath.Join(t.TempDir(), "none"))
	_, err := execute(t, args...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestRunCommand_LabelFilter(t *testing.T) {
	base := t.TempDir()
	scenarios := filepath.Join(base, "scenarios")
	reportDir := filepath.Join(base, "results")
	writeFile(t, filepath.Join(scenarios, "a.yaml"), "name: a\nlabels:\n  - name: feature\n    value: a\nsteps:\n  - id: s\n    run: \"true\"\n")
	writeFile(t, filepath.Join(scenarios, "b.yaml"), "name: b\nlabels:\n  - name: feature\n    value: b\nsteps:\n  - id: s\n    run: exit 1\n")

	args := append(noConfig(t), "run", scenarios, "--report-dir", reportDir, "--label", "feature=a")
	_, err := execute(t, args...)
	require.NoError(t, err, "the failing scenario is filtered out")

	results, err := allure.ReadResults(reportDir)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Name)
}
