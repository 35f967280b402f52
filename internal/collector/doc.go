// Package collector maps test lifecycle notifications onto Allure results.
//
// A Collector is driven by a host test framework, one notification at a
// time and in program order:
//
//	run_start
//	  scenario_start
//	    step_start
//	      attach
//	    step_end
//	  scenario_end
//	run_end
//
// Entities are created on their start notification and serialized when
// their scope closes: a step end flushes the attachments buffered on that
// step, a scenario end writes the <uuid>-result.json record, and the run end
// writes the <uuid>-container.json listing every record of the run.
//
// Scenarios executed more than once in a run (reruns) are handled according
// to config.Reporter.ReportRetries. When retries are reported every attempt
// becomes its own record and all attempts share one testCaseId and
// historyId, so Allure groups them as retries of the same test. When retries
// are not reported only the latest attempt is kept and a
// RetryUnsupportedError warning is surfaced once per scenario.
//
// The collector never panics into the host and never aborts a run on
// attachment or label problems: these are logged and skipped. Warnings that
// the user should see are collected and available from Warnings.
//
// The Collector is not safe for concurrent use.
package collector
