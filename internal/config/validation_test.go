package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporterValidate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(r *Reporter)
		wantFields []string
	}{
		{
			name:   "defaults are valid",
			mutate: func(r *Reporter) {},
		},
		{
			name:       "empty report dir",
			mutate:     func(r *Reporter) { r.ReportDir = " " },
			wantFields: []string{"report_dir"},
		},
		{
			name:       "negative reruns",
			mutate:     func(r *Reporter) { r.Reruns = -1 },
			wantFields: []string{"reruns"},
		},
		{
			name:       "negative delay",
			mutate:     func(r *Reporter) { r.Reruns = 1; r.RerunsDelay = -time.Second },
			wantFields: []string{"reruns_delay"},
		},
		{
			name:       "delay without reruns",
			mutate:     func(r *Reporter) { r.RerunsDelay = time.Second },
			wantFields: []string{"reruns_delay"},
		},
		{
			name:   "delay with reruns",
			mutate: func(r *Reporter) { r.Reruns = 2; r.RerunsDelay = time.Second },
		},
		{
			name:       "bad label filter",
			mutate:     func(r *Reporter) { r.LabelFilter = []string{"feature=Refunds", "oops"} },
			wantFields: []string{"label_filter[1]"},
		},
		{
			name:       "unnamed label",
			mutate:     func(r *Reporter) { r.Labels = []Label{{Value: "x"}} },
			wantFields: []string{"labels[0].name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var collection ConfigurationErrorCollection
			require.True(t, errors.As(err, &collection))
			var fields []string
			for _, e := range collection.Errors {
				fields = append(fields, e.Field)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestParseLabelSelector(t *testing.T) {
	label, err := ParseLabelSelector(" Feature = Refunds ")
	require.NoError(t, err)
	assert.Equal(t, Label{Name: "Feature", Value: "Refunds"}, label)

	label, err = ParseLabelSelector("tag=")
	require.NoError(t, err)
	assert.Equal(t, Label{Name: "tag"}, label)

	_, err = ParseLabelSelector("=value")
	assert.Error(t, err)
	_, err = ParseLabelSelector("novalue")
	assert.Error(t, err)
}

func TestSelectorsSkipsInvalid(t *testing.T) {
	cfg := Default()
	cfg.LabelFilter = []string{"a=1", "broken", "b=2"}
	assert.Equal(t, []Label{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}}, cfg.Selectors())
}

func TestConfigurationError(t *testing.T) {
	cause := errors.New("permission denied")
	err := NewIOError("/tmp/out", "cannot create report directory", cause)

	assert.Equal(t, "[io] /tmp/out: cannot create report directory: permission denied", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.DetailedError(), "File: /tmp/out")

	var collection ConfigurationErrorCollection
	assert.Equal(t, "no configuration errors", collection.Error())
	collection.AddValidation("reruns", "must be >= 0", "use 0 to disable reruns")
	assert.Equal(t, "[validation] reruns: must be >= 0", collection.Error())
	collection.AddValidation("report_dir", "must not be empty")
	assert.Contains(t, collection.Error(), "2 configuration errors")
	assert.Contains(t, collection.Summary(), "hint: use 0 to disable reruns")
}
