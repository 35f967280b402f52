// Package rerun keeps track of scenarios executed more than once in a run.
//
// The Tracker records every attempt per scenario id and derives the final
// status using the "passed if any attempt passed" rule: a scenario is
// reported as passed when at least one attempt passed, as failed when no
// attempt passed but at least one failed, and otherwise with the status of
// its last attempt.
//
// Policy describes how a host runner reschedules failed scenarios.
package rerun
