package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"allure-reporter/internal/collector"
)

func TestScenarioContext(t *testing.T) {
	sc := NewScenarioContext()
	sc.StoreResult("token", "abc")

	v, ok := sc.GetStoredResult("token")
	require.True(t, ok)
	assert.Equal(t, "abc", v)

	_, ok = sc.GetStoredResult("missing")
	assert.False(t, ok)

	all := sc.GetAllStoredResults()
	all["token"] = "changed"
	v, _ = sc.GetStoredResult("token")
	assert.Equal(t, "abc", v, "GetAllStoredResults returns a copy")
}

func TestTemplateProcessor_Render(t *testing.T) {
	sc := NewScenarioContext()
	sc.StoreResult("user_id", "42")
	scenario := Scenario{
		Name:       "lookup",
		Parameters: []collector.Parameter{{Name: "region", Value: "eu"}},
	}
	p := NewTemplateProcessor(sc, scenario, 2)

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain command", "echo hi", "echo hi", false},
		{"stored value", "curl /users/{{ .user_id }}", "curl /users/42", false},
		{"scenario and attempt", "{{ .scenario }}#{{ .attempt }}", "lookup#2", false},
		{"parameters", "{{ .params.region }}", "eu", false},
		{"sprig functions", `{{ .user_id | quote }} {{ "a,b" | splitList "," | join "+" }}`, `"42" a+b`, false},
		{"shell syntax untouched", "echo ${HOME:-x}", "echo ${HOME:-x}", false},
		{"missing value", "{{ .nope }}", "", true},
		{"parse error", "{{ .user_id ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Render("step", tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
