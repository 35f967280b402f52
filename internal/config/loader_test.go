package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "allure.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "./allure_reports", cfg.ReportDir)
	assert.True(t, cfg.CleanReportDir)
	assert.True(t, cfg.AttachArtifacts)
	assert.True(t, cfg.AttachTags)
	assert.False(t, cfg.AttachScope)
	assert.True(t, cfg.ReportRetries)
	assert.Empty(t, cfg.ProjectName)
	assert.Empty(t, cfg.Labels)
	assert.Empty(t, cfg.LabelFilter)
	assert.Zero(t, cfg.Reruns)
	assert.Zero(t, cfg.RerunsDelay)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
report_dir: out/results
clean_report_dir: false
project_name: payments
labels:
  - name: epic
    value: Checkout
label_filter:
  - feature=Refunds
attach_tags: false
reruns: 2
reruns_delay: 1500ms
environment:
  os: linux
executor:
  name: CI
  build_order: 7
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "out/results", cfg.ReportDir)
	assert.False(t, cfg.CleanReportDir)
	assert.Equal(t, "payments", cfg.ProjectName)
	assert.Equal(t, []Label{{Name: "epic", Value: "Checkout"}}, cfg.Labels)
	assert.Equal(t, []string{"feature=Refunds"}, cfg.LabelFilter)
	assert.False(t, cfg.AttachTags)
	assert.True(t, cfg.AttachArtifacts, "unset keys keep their default")
	assert.Equal(t, 2, cfg.Reruns)
	assert.Equal(t, 1500*time.Millisecond, cfg.RerunsDelay)
	assert.Equal(t, map[string]string{"os": "linux"}, cfg.Environment)
	require.NotNil(t, cfg.Executor)
	assert.Equal(t, "CI", cfg.Executor.Name)
	assert.Equal(t, int64(7), cfg.Executor.BuildOrder)
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := writeConfig(t, "report_dir: [unterminated\n")

	_, err := LoadConfig(path)
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, ErrorTypeParse, cfgErr.ErrorType)
	assert.Equal(t, path, cfgErr.FilePath)
	assert.NotNil(t, cfgErr.Unwrap())
}

func TestLoadAndValidate_RejectsInvalid(t *testing.T) {
	path := writeConfig(t, "reruns: -1\n")

	_, err := LoadAndValidate(path)
	require.Error(t, err)

	var collection ConfigurationErrorCollection
	require.True(t, errors.As(err, &collection))
	require.Equal(t, 1, collection.Count())
	assert.Equal(t, "reruns", collection.Errors[0].Field)
}

func TestLoadAndValidate_AppliesOverridesBeforeValidation(t *testing.T) {
	path := writeConfig(t, "reruns: -1\nproject_name: file\n")

	cfg, err := LoadAndValidate(path, func(r *Reporter) { r.Reruns = 2 }, func(r *Reporter) { r.ProjectName = "flag" })
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Reruns)
	assert.Equal(t, "flag", cfg.ProjectName)
}
