// Package runner executes YAML scenarios whose steps are shell commands.
//
// Each step's run command is rendered with text/template and the sprig
// function set, executed as `sh -c`, and checked against its expectations.
// Every attempt, step and output capture is emitted as a lifecycle
// notification to a stream.Handler, which is normally an Allure collector.
//
// A minimal scenario:
//
//	name: create user
//	labels:
//	  - name: feature
//	    value: users
//	steps:
//	  - id: create
//	    run: echo 42
//	    store: user_id
//	  - id: fetch
//	    run: echo "user {{ .user_id }}"
//	    expected:
//	      contains: ["user 42"]
//
// Failed scenarios are rerun according to a rerun.Policy. The first attempt
// of a rerun scenario is reported as rescheduled.
package runner
