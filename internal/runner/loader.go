package runner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"allure-reporter/internal/allure"
	"allure-reporter/internal/collector"
	"allure-reporter/pkg/logging"
)

const subsystem = "Runner"

// LoadScenarios loads scenarios from a YAML file or from every YAML file
// below a directory. Paths recorded on the scenarios are relative to root.
func LoadScenarios(root string) ([]Scenario, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("scenario path does not exist: %s", root)
		}
		return nil, fmt.Errorf("failed to stat scenario path: %w", err)
	}

	if !info.IsDir() {
		scenario, err := loadScenarioFile(root, filepath.Base(root))
		if err != nil {
			return nil, err
		}
		return []Scenario{scenario}, nil
	}

	var scenarios []Scenario
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAML(path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		scenario, err := loadScenarioFile(path, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		scenarios = append(scenarios, scenario)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load scenarios from %s: %w", root, err)
	}

	if err := checkUniqueIDs(scenarios); err != nil {
		return nil, err
	}

	logging.Debug(subsystem, "Loaded %d scenarios from %s", len(scenarios), root)
	return scenarios, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func loadScenarioFile(path, rel string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("failed to read scenario file %s: %w", path, err)
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return Scenario{}, fmt.Errorf("failed to parse scenario file %s: %w", path, err)
	}
	scenario.Path = rel

	if err := ValidateScenario(scenario); err != nil {
		return Scenario{}, fmt.Errorf("invalid scenario in %s: %w", path, err)
	}
	return scenario, nil
}

// ValidateScenario checks the required fields of a scenario and its steps.
func ValidateScenario(s Scenario) error {
	var errs []error
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, errors.New("scenario name is required"))
	}
	if len(s.Steps) == 0 && !s.Skip {
		errs = append(errs, errors.New("scenario must define at least one step"))
	}
	if s.Timeout < 0 {
		errs = append(errs, errors.New("scenario timeout must not be negative"))
	}
	for _, l := range s.Labels {
		if _, ok := collector.ParseLabelKind(l.Name); !ok {
			errs = append(errs, fmt.Errorf("unknown label kind %q", l.Name))
		}
	}
	errs = append(errs, validateParameters("scenario", s.Parameters)...)

	seen := make(map[string]bool)
	for i, step := range append(append([]Step{}, s.Steps...), s.Cleanup...) {
		if err := validateStep(step); err != nil {
			errs = append(errs, fmt.Errorf("step %d: %w", i+1, err))
			continue
		}
		if seen[step.ID] {
			errs = append(errs, fmt.Errorf("duplicate step id %q", step.ID))
		}
		seen[step.ID] = true
	}
	return errors.Join(errs...)
}

func validateStep(step Step) error {
	var errs []error
	if step.ID == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if strings.TrimSpace(step.Run) == "" {
		errs = append(errs, errors.New("run is required"))
	}
	if step.Timeout < 0 {
		errs = append(errs, errors.New("timeout must not be negative"))
	}
	switch step.Store {
	case "scenario", "attempt", "params":
		errs = append(errs, fmt.Errorf("store name %q is reserved", step.Store))
	}
	errs = append(errs, validateParameters("step", step.Parameters)...)
	return errors.Join(errs...)
}

func validateParameters(owner string, params []collector.Parameter) []error {
	var errs []error
	for _, p := range params {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("%s parameter name is required", owner))
		}
		switch p.Mode {
		case "", allure.ParameterModeDefault, allure.ParameterModeMasked, allure.ParameterModeHidden:
		default:
			errs = append(errs, fmt.Errorf("%s parameter %q has unknown mode %q", owner, p.Name, p.Mode))
		}
	}
	return errs
}

func checkUniqueIDs(scenarios []Scenario) error {
	seen := make(map[string]string, len(scenarios))
	for _, s := range scenarios {
		id := s.Identity()
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("scenario id %q is used by both %s and %s", id, prev, s.Path)
		}
		seen[id] = s.Path
	}
	return nil
}

// FilterScenarios returns the scenarios selected by cfg.
func FilterScenarios(scenarios []Scenario, cfg Configuration) []Scenario {
	var filtered []Scenario
	name := strings.ToLower(cfg.Scenario)
	for _, s := range scenarios {
		if name != "" && !strings.Contains(strings.ToLower(s.Name), name) {
			continue
		}
		if !collector.SelectorsMatch(cfg.Selectors, s.Labels) {
			continue
		}
		filtered = append(filtered, s)
	}
	return filtered
}
