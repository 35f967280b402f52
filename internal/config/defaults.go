package config

const (
	// DefaultReportDir is where results are written when nothing else is configured.
	DefaultReportDir = "./allure_reports"

	// DefaultFramework is the framework label used when neither the host nor the config names one.
	DefaultFramework = "allure-reporter"

	// DefaultConfigFile is the file looked up by the CLI when --config is not given.
	DefaultConfigFile = "allure.yaml"
)

// Default returns the default reporter configuration.
func Default() Reporter {
	return Reporter{
		ReportDir:       DefaultReportDir,
		CleanReportDir:  true,
		Framework:       DefaultFramework,
		AttachScope:     false,
		AttachArtifacts: true,
		AttachTags:      true,
		ReportRetries:   true,
	}
}
