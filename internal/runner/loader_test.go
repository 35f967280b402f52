package runner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"allure-reporter/internal/collector"
	"allure-reporter/internal/config"
)

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validScenario = `
name: create user
description: creates a user
tags: [smoke]
labels:
  - name: feature
    value: users
parameters:
  - name: role
    value: admin
timeout: 30s
steps:
  - id: create
    description: create the user
    run: echo 42
    store: user_id
    timeout: 5s
    expected:
      exit_code: 0
      contains: ["42"]
      not_contains: ["error"]
cleanup:
  - id: remove
    run: "true"
    attach_output: false
`

func TestLoadScenarios_Directory(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "users/create.yaml", validScenario)
	writeScenario(t, dir, "health.yml", "name: health\nsteps:\n  - id: ping\n    run: \"true\"\n")
	writeScenario(t, dir, "README.md", "not a scenario")

	scenarios, err := LoadScenarios(dir)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)

	assert.Equal(t, "health", scenarios[0].Name)
	assert.Equal(t, "health.yml", scenarios[0].Path)

	s := scenarios[1]
	assert.Equal(t, "users/create.yaml", s.Path)
	assert.Equal(t, "users/create.yaml", s.Identity())
	assert.Equal(t, []string{"smoke"}, s.Tags)
	assert.Equal(t, []collector.Label{{Name: "feature", Value: "users"}}, s.Labels)
	assert.Equal(t, []collector.Parameter{{Name: "role", Value: "admin"}}, s.Parameters)
	assert.Equal(t, 30*time.Second, s.Timeout)

	require.Len(t, s.Steps, 1)
	step := s.Steps[0]
	assert.Equal(t, "create the user", step.Title())
	assert.Equal(t, "user_id", step.Store)
	assert.Equal(t, 5*time.Second, step.Timeout)
	require.NotNil(t, step.Expected.ExitCode)
	assert.Equal(t, 0, *step.Expected.ExitCode)
	assert.Equal(t, []string{"42"}, step.Expected.Contains)
	assert.Equal(t, []string{"error"}, step.Expected.NotContains)
	assert.True(t, step.attachOutput())

	require.Len(t, s.Cleanup, 1)
	assert.False(t, s.Cleanup[0].attachOutput())
}

func TestLoadScenarios_SingleFile(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "one.yaml", validScenario)

	scenarios, err := LoadScenarios(path)
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	assert.Equal(t, "one.yaml", scenarios[0].Path)
}

func TestLoadScenarios_Errors(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		_, err := LoadScenarios(filepath.Join(t.TempDir(), "nope"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeScenario(t, dir, "bad.yaml", "name: [unterminated")
		_, err := LoadScenarios(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse")
	})

	t.Run("duplicate ids", func(t *testing.T) {
		dir := t.TempDir()
		writeScenario(t, dir, "a.yaml", "id: same\nname: a\nsteps:\n  - id: s\n    run: \"true\"\n")
		writeScenario(t, dir, "b.yaml", "id: same\nname: b\nsteps:\n  - id: s\n    run: \"true\"\n")
		_, err := LoadScenarios(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `scenario id "same"`)
	})
}

func TestValidateScenario(t *testing.T) {
	step := Step{ID: "s", Run: "true"}
	tests := []struct {
		name     string
		scenario Scenario
		wantErr  string
	}{
		{"valid", Scenario{Name: "ok", Steps: []Step{step}}, ""},
		{"skipped without steps", Scenario{Name: "later", Skip: true}, ""},
		{"missing name", Scenario{Steps: []Step{step}}, "scenario name is required"},
		{"no steps", Scenario{Name: "empty"}, "at least one step"},
		{"negative timeout", Scenario{Name: "t", Timeout: -time.Second, Steps: []Step{step}}, "timeout must not be negative"},
		{"unknown label", Scenario{Name: "l", Labels: []collector.Label{{Name: "priority", Value: "1"}}, Steps: []Step{step}}, `unknown label kind "priority"`},
		{"missing step id", Scenario{Name: "s", Steps: []Step{{Run: "true"}}}, "id is required"},
		{"missing run", Scenario{Name: "s", Steps: []Step{{ID: "a"}}}, "run is required"},
		{"duplicate step id", Scenario{Name: "s", Steps: []Step{step}, Cleanup: []Step{step}}, `duplicate step id "s"`},
		{"reserved store", Scenario{Name: "s", Steps: []Step{{ID: "a", Run: "true", Store: "attempt"}}}, "reserved"},
		{"bad parameter mode", Scenario{Name: "s", Parameters: []collector.Parameter{{Name: "p", Mode: "secret"}}, Steps: []Step{step}}, `unknown mode "secret"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScenario(tt.scenario)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFilterScenarios(t *testing.T) {
	scenarios := []Scenario{
		{Name: "Create user", Labels: []collector.Label{collector.Feature("users")}},
		{Name: "Delete user", Labels: []collector.Label{collector.Feature("users"), collector.Story("cleanup")}},
		{Name: "Refund order", Labels: []collector.Label{collector.Feature("billing")}},
	}

	names := func(ss []Scenario) []string {
		var out []string
		for _, s := range ss {
			out = append(out, s.Name)
		}
		return out
	}

	assert.Len(t, FilterScenarios(scenarios, Configuration{}), 3)
	assert.Equal(t, []string{"Create user", "Delete user"}, names(FilterScenarios(scenarios, Configuration{Scenario: "USER"})))
	assert.Equal(t, []string{"Delete user"}, names(FilterScenarios(scenarios, Configuration{
		Selectors: []config.Label{{Name: "feature", Value: "users"}, {Name: "story", Value: "cleanup"}},
	})))
	assert.Empty(t, FilterScenarios(scenarios, Configuration{Selectors: []config.Label{{Name: "feature", Value: "search"}}}))
}
