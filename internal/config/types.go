package config

import "time"

// Label is a name/value pair attached to every scenario of a run.
type Label struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value" json:"value"`
}

// Executor describes the CI system producing the results.
type Executor struct {
	Name       string `yaml:"name,omitempty"`
	Type       string `yaml:"type,omitempty"`
	BuildName  string `yaml:"build_name,omitempty"`
	BuildOrder int64  `yaml:"build_order,omitempty"`
	BuildURL   string `yaml:"build_url,omitempty"`
	ReportURL  string `yaml:"report_url,omitempty"`
}

// Reporter is the complete reporter configuration.
type Reporter struct {
	// ReportDir is the Allure results directory.
	ReportDir string `yaml:"report_dir"`
	// CleanReportDir removes the previous contents of ReportDir at run start.
	CleanReportDir bool `yaml:"clean_report_dir"`
	// ProjectName adds a project_name label and prefixes the history id.
	ProjectName string `yaml:"project_name,omitempty"`
	// Framework is the value of the framework label when the host does not name itself.
	Framework string `yaml:"framework,omitempty"`
	// Labels are added to every scenario.
	Labels []Label `yaml:"labels,omitempty"`
	// LabelFilter restricts reporting to scenarios carrying all of these name=value labels.
	LabelFilter []string `yaml:"label_filter,omitempty"`

	AttachScope     bool `yaml:"attach_scope"`
	AttachArtifacts bool `yaml:"attach_artifacts"`
	AttachTags      bool `yaml:"attach_tags"`

	// ReportRetries emits one record per attempt of a rerun scenario. When
	// false only the latest attempt is kept.
	ReportRetries bool `yaml:"report_retries"`

	// Reruns is how many times the scenario runner retries a failed scenario.
	Reruns int `yaml:"reruns"`
	// RerunsDelay is the pause before each rerun.
	RerunsDelay time.Duration `yaml:"reruns_delay"`

	Environment map[string]string `yaml:"environment,omitempty"`
	Executor    *Executor         `yaml:"executor,omitempty"`
}
