package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"allure-reporter/internal/config"
)

// reporterFlags are the configuration overrides shared by run and replay.
// A flag only overrides the file value when it was set explicitly.
type reporterFlags struct {
	reportDir      string
	projectName    string
	noClean        bool
	attachScope    bool
	noArtifacts    bool
	noTags         bool
	noRetries      bool
	labelFilter    []string
	reruns         int
	rerunsDelay    time.Duration
	environment    map[string]string
	withRerunFlags bool
}

func (f *reporterFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.reportDir, "report-dir", config.DefaultReportDir, "Directory to write Allure results to")
	fs.StringVar(&f.projectName, "project-name", "", "Project name used in history ids and the project_name label")
	fs.BoolVar(&f.noClean, "no-clean", false, "Keep files from previous runs in the report directory")
	fs.BoolVar(&f.attachScope, "attach-scope", false, "Attach the scenario scope to every non-skipped result")
	fs.BoolVar(&f.noArtifacts, "no-attachments", false, "Drop all attachments")
	fs.BoolVar(&f.noTags, "no-tags", false, "Do not turn scenario tags into tag labels")
	fs.BoolVar(&f.noRetries, "no-report-retries", false, "Keep only the latest attempt of rerun scenarios")
	fs.StringArrayVar(&f.labelFilter, "label", nil, "Only report scenarios carrying this label (name=value, repeatable)")
	fs.StringToStringVar(&f.environment, "env", nil, "Entries for environment.properties (key=value, repeatable)")
	if f.withRerunFlags {
		fs.IntVar(&f.reruns, "reruns", 0, "Number of times a failed scenario is rerun")
		fs.DurationVar(&f.rerunsDelay, "reruns-delay", 0, "Delay between reruns (requires --reruns)")
	}
}

func (f *reporterFlags) apply(cmd *cobra.Command, cfg *config.Reporter) {
	changed := cmd.Flags().Changed
	if changed("report-dir") {
		cfg.ReportDir = f.reportDir
	}
	if changed("project-name") {
		cfg.ProjectName = f.projectName
	}
	if changed("no-clean") {
		cfg.CleanReportDir = !f.noClean
	}
	if changed("attach-scope") {
		cfg.AttachScope = f.attachScope
	}
	if changed("no-attachments") {
		cfg.AttachArtifacts = !f.noArtifacts
	}
	if changed("no-tags") {
		cfg.AttachTags = !f.noTags
	}
	if changed("no-report-retries") {
		cfg.ReportRetries = !f.noRetries
	}
	if changed("label") {
		cfg.LabelFilter = append([]string(nil), f.labelFilter...)
	}
	if changed("env") {
		if cfg.Environment == nil {
			cfg.Environment = make(map[string]string, len(f.environment))
		}
		for k, v := range f.environment {
			cfg.Environment[k] = v
		}
	}
	if f.withRerunFlags {
		if changed("reruns") {
			cfg.Reruns = f.reruns
		}
		if changed("reruns-delay") {
			cfg.RerunsDelay = f.rerunsDelay
		}
	}
}

// loadReporterConfig loads the configuration file, applies flag overrides
// and validates the result.
func loadReporterConfig(cmd *cobra.Command, opts *globalOptions, flags *reporterFlags) (config.Reporter, error) {
	return config.LoadAndValidate(opts.configPath, func(cfg *config.Reporter) {
		flags.apply(cmd, cfg)
	})
}
