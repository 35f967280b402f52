// Package allure models the Allure 2 results format and writes it to disk.
//
// An Allure results directory is a flat set of files that the Allure
// command line tool turns into an HTML report:
//
//   - <uuid>-result.json: one TestResult per executed scenario attempt
//   - <uuid>-container.json: a TestResultContainer grouping results
//   - <uuid>-attachment.<ext>: raw attachment payloads referenced by source
//   - environment.properties and executor.json: optional run metadata
//
// The schema is owned by Allure; this package only mirrors the fields the
// reporter fills. FileWriter is the only ResultWriter implementation and is
// safe to use from a single goroutine.
package allure
