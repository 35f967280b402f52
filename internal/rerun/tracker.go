package rerun

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Scenario statuses understood by the aggregation rule. Any other status is
// kept as-is.
const (
	StatusPassed = "passed"
	StatusFailed = "failed"
)

// Tracker records attempts per scenario id. It is not safe for concurrent use.
type Tracker struct {
	order    []string
	attempts map[string][]string
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{attempts: make(map[string][]string)}
}

// Record appends one attempt with the given status and returns the attempt
// number, starting at 1.
func (t *Tracker) Record(id, status string) int {
	if _, ok := t.attempts[id]; !ok {
		t.order = append(t.order, id)
	}
	t.attempts[id] = append(t.attempts[id], status)
	return len(t.attempts[id])
}

// Attempts returns the statuses recorded for id, in order.
func (t *Tracker) Attempts(id string) []string {
	return append([]string(nil), t.attempts[id]...)
}

// Seen reports whether id has at least one recorded attempt.
func (t *Tracker) Seen(id string) bool {
	return len(t.attempts[id]) > 0
}

// Final returns the aggregated status for id.
func (t *Tracker) Final(id string) (string, bool) {
	attempts := t.attempts[id]
	if len(attempts) == 0 {
		return "", false
	}
	return Aggregate(attempts), true
}

// IDs returns every recorded id in first-seen order.
func (t *Tracker) IDs() []string {
	return append([]string(nil), t.order...)
}

// Rescheduled returns the number of scenarios that ran more than once.
func (t *Tracker) Rescheduled() int {
	n := 0
	for _, attempts := range t.attempts {
		if len(attempts) > 1 {
			n++
		}
	}
	return n
}

// Times returns the total number of extra attempts.
func (t *Tracker) Times() int {
	n := 0
	for _, attempts := range t.attempts {
		n += len(attempts) - 1
	}
	return n
}

// Counts returns the number of scenarios per final status.
func (t *Tracker) Counts() map[string]int {
	counts := make(map[string]int)
	for _, attempts := range t.attempts {
		counts[Aggregate(attempts)]++
	}
	return counts
}

// SummaryMessage renders the rerun summary, e.g.
// "rerun 1 scenario, 2 times, with delay 0.5s". The delay part is omitted
// when delay is zero.
func (t *Tracker) SummaryMessage(delay time.Duration) string {
	reran, times := t.Rescheduled(), t.Times()
	msg := fmt.Sprintf("rerun %d scenario%s, %d time%s", reran, plural(reran), times, plural(times))
	if delay > 0 {
		msg += fmt.Sprintf(", with delay %ss", formatSeconds(delay))
	}
	return msg
}

// Aggregate applies the "passed if any attempt passed" rule to a non-empty
// list of statuses.
func Aggregate(statuses []string) string {
	if len(statuses) == 0 {
		return ""
	}
	failed := false
	for _, s := range statuses {
		switch s {
		case StatusPassed:
			return StatusPassed
		case StatusFailed:
			failed = true
		}
	}
	if failed {
		return StatusFailed
	}
	return statuses[len(statuses)-1]
}

// SortedStatuses returns the keys of counts in a stable order.
func SortedStatuses(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func formatSeconds(d time.Duration) string {
	s := strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
