package config

import (
	"errors"
	"fmt"
	"os"

	"allure-reporter/pkg/logging"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads the configuration file at path over the defaults. A
// missing file yields the defaults.
func LoadConfig(path string) (Reporter, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("Config", "No config file found at %s, using defaults", path)
			return config, nil
		}
		return Reporter{}, NewIOError(path, "cannot read config file", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		cfgErr := &ConfigurationError{
			FilePath:  path,
			ErrorType: ErrorTypeParse,
			Message:   "malformed YAML",
			Cause:     err,
		}
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			cfgErr.Details = fmt.Sprintf("%d field(s) could not be decoded", len(typeErr.Errors))
		}
		return Reporter{}, cfgErr
	}

	logging.Info("Config", "Loaded configuration from %s", path)
	return config, nil
}

// LoadAndValidate loads the configuration, applies overrides in order and
// validates the result.
func LoadAndValidate(path string, overrides ...func(*Reporter)) (Reporter, error) {
	config, err := LoadConfig(path)
	if err != nil {
		return Reporter{}, err
	}
	for _, override := range overrides {
		override(&config)
	}
	if err := config.Validate(); err != nil {
		return Reporter{}, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return config, nil
}
