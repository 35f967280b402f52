package rerun

import (
	"errors"
	"fmt"
	"time"
)

// Policy controls rescheduling of failed scenarios.
type Policy struct {
	// Reruns is how many extra attempts a failed scenario gets.
	Reruns int
	// Delay is the pause before each extra attempt.
	Delay time.Duration
}

// Validate checks the policy bounds.
func (p Policy) Validate() error {
	var errs []error
	if p.Reruns < 0 {
		errs = append(errs, fmt.Errorf("reruns must be >= 0, got %d", p.Reruns))
	}
	if p.Delay < 0 {
		errs = append(errs, fmt.Errorf("reruns delay must be >= 0, got %s", p.Delay))
	}
	if p.Delay > 0 && p.Reruns < 1 {
		errs = append(errs, errors.New("reruns delay must be used with reruns > 0"))
	}
	return errors.Join(errs...)
}

// Enabled reports whether failed scenarios are rescheduled at all.
func (p Policy) Enabled() bool {
	return p.Reruns > 0
}

// ShouldRerun reports whether another attempt is due after completed
// attempts, given the status of the first attempt. A scenario whose first
// attempt failed is rerun exactly Reruns times, whatever the later attempts
// return.
func (p Policy) ShouldRerun(completed int, firstStatus string) bool {
	if !p.Enabled() || firstStatus != StatusFailed {
		return false
	}
	return completed >= 1 && completed <= p.Reruns
}

// Wait blocks for the configured delay or until done is closed. It returns
// false when interrupted.
func (p Policy) Wait(done <-chan struct{}) bool {
	if p.Delay <= 0 {
		return true
	}
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-done:
		return false
	}
}
