// Package config loads and validates the reporter configuration.
//
// Configuration is read from a single YAML file (allure.yaml by default)
// layered over built-in defaults; command line flags may override individual
// fields afterwards. The resulting Reporter value is treated as immutable
// once it has been handed to the collector.
//
// # File Format
//
//	report_dir: ./allure_reports
//	clean_report_dir: true
//	project_name: payments
//	labels:
//	  - name: epic
//	    value: Checkout
//	label_filter:
//	  - feature=Refunds
//	attach_scope: false
//	attach_artifacts: true
//	attach_tags: true
//	report_retries: true
//	reruns: 2
//	reruns_delay: 1s
//	environment:
//	  os: linux
//	executor:
//	  name: GitHub Actions
//	  build_name: "#42"
//
// Missing files are not an error: the defaults are returned. Malformed files
// and invalid values are reported as ConfigurationError values.
package config
