package rerun

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name     string
		statuses []string
		want     string
	}{
		{"single pass", []string{"passed"}, "passed"},
		{"pass after failures", []string{"failed", "failed", "passed"}, "passed"},
		{"pass then fail", []string{"passed", "failed"}, "passed"},
		{"all failed", []string{"failed", "failed"}, "failed"},
		{"failed and skipped", []string{"failed", "skipped"}, "failed"},
		{"neither passed nor failed", []string{"skipped", "broken"}, "broken"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Aggregate(tt.statuses))
		})
	}
}

func TestTracker(t *testing.T) {
	tr := NewTracker()

	assert.Equal(t, 1, tr.Record("a", StatusFailed))
	assert.Equal(t, 2, tr.Record("a", StatusFailed))
	assert.Equal(t, 3, tr.Record("a", StatusPassed))
	assert.Equal(t, 1, tr.Record("b", StatusPassed))

	assert.Equal(t, []string{"failed", "failed", "passed"}, tr.Attempts("a"))
	assert.Equal(t, []string{"a", "b"}, tr.IDs())
	assert.True(t, tr.Seen("b"))
	assert.False(t, tr.Seen("c"))

	final, ok := tr.Final("a")
	require.True(t, ok)
	assert.Equal(t, StatusPassed, final)

	_, ok = tr.Final("c")
	assert.False(t, ok)

	assert.Equal(t, 1, tr.Rescheduled())
	assert.Equal(t, 2, tr.Times())
	assert.Equal(t, map[string]int{"passed": 2}, tr.Counts())
}

func TestTracker_AttemptsIsACopy(t *testing.T) {
	tr := NewTracker()
	tr.Record("a", StatusFailed)
	attempts := tr.Attempts("a")
	attempts[0] = "mutated"
	assert.Equal(t, []string{"failed"}, tr.Attempts("a"))
}

func TestSummaryMessage(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, "rerun 0 scenarios, 0 times", tr.SummaryMessage(0))

	tr.Record("a", StatusFailed)
	tr.Record("a", StatusFailed)
	assert.Equal(t, "rerun 1 scenario, 1 time", tr.SummaryMessage(0))

	tr.Record("b", StatusFailed)
	tr.Record("b", StatusPassed)
	tr.Record("b", StatusPassed)
	assert.Equal(t, "rerun 2 scenarios, 3 times, with delay 1.0s", tr.SummaryMessage(time.Second))
	assert.Equal(t, "rerun 2 scenarios, 3 times, with delay 0.25s", tr.SummaryMessage(250*time.Millisecond))
}

func TestSortedStatuses(t *testing.T) {
	assert.Equal(t, []string{"failed", "passed", "skipped"},
		SortedStatuses(map[string]int{"skipped": 1, "passed": 3, "failed": 2}))
}
