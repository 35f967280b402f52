package collector

import "fmt"

// DuplicateScenarioError is raised when a scenario starts while an attempt
// with the same id is still open. It is resolved by the rerun policy and
// never returned to the host.
type DuplicateScenarioError struct {
	ID string
	// Overwritten is set when the open attempt was discarded rather than
	// written as an interrupted retry.
	Overwritten bool
}

func (e *DuplicateScenarioError) Error() string {
	if e.Overwritten {
		return fmt.Sprintf("scenario %q started again before it ended; the open attempt was overwritten", e.ID)
	}
	return fmt.Sprintf("scenario %q started again before it ended; the open attempt was closed as broken", e.ID)
}

// RetryUnsupportedError warns that a scenario was rerun while retry
// reporting is disabled, so only its latest attempt is kept.
type RetryUnsupportedError struct {
	ID string
}

func (e *RetryUnsupportedError) Error() string {
	return fmt.Sprintf("scenario %q was rerun but retry reporting is disabled; only the latest attempt is kept", e.ID)
}
