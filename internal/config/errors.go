package config

import (
	"fmt"
	"strings"
)

// Error types used in ConfigurationError.ErrorType.
const (
	ErrorTypeIO         = "io"
	ErrorTypeParse      = "parse"
	ErrorTypeValidation = "validation"
)

// ConfigurationError represents a structured error raised while loading,
// validating or applying the reporter configuration.
type ConfigurationError struct {
	FilePath    string   `json:"filePath,omitempty"`    // File that caused the error, if any
	Field       string   `json:"field,omitempty"`       // Offending configuration key
	ErrorType   string   `json:"errorType"`             // io, parse or validation
	Message     string   `json:"message"`               // Human-readable error message
	Details     string   `json:"details,omitempty"`     // Additional details about the error
	Suggestions []string `json:"suggestions,omitempty"` // Actionable suggestions to fix the error
	Cause       error    `json:"-"`
}

// Error implements the error interface
func (ce ConfigurationError) Error() string {
	subject := ce.Field
	if subject == "" {
		subject = ce.FilePath
	}
	msg := ce.Message
	if ce.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, ce.Cause)
	}
	if subject == "" {
		return fmt.Sprintf("[%s] %s", ce.ErrorType, msg)
	}
	return fmt.Sprintf("[%s] %s: %s", ce.ErrorType, subject, msg)
}

// Unwrap returns the underlying cause.
func (ce ConfigurationError) Unwrap() error {
	return ce.Cause
}

// DetailedError returns a detailed error message with all context
func (ce ConfigurationError) DetailedError() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Configuration Error (%s)", ce.ErrorType))
	if ce.FilePath != "" {
		parts = append(parts, fmt.Sprintf("  File: %s", ce.FilePath))
	}
	if ce.Field != "" {
		parts = append(parts, fmt.Sprintf("  Field: %s", ce.Field))
	}

	parts = append(parts, fmt.Sprintf("  Error: %s", ce.Message))

	if ce.Cause != nil {
		parts = append(parts, fmt.Sprintf("  Cause: %v", ce.Cause))
	}
	if ce.Details != "" {
		parts = append(parts, fmt.Sprintf("  Details: %s", ce.Details))
	}

	if len(ce.Suggestions) > 0 {
		parts = append(parts, "  Suggestions:")
		for _, suggestion := range ce.Suggestions {
			parts = append(parts, fmt.Sprintf("    - %s", suggestion))
		}
	}

	return strings.Join(parts, "\n")
}

// ConfigurationErrorCollection holds multiple configuration errors
type ConfigurationErrorCollection struct {
	Errors []ConfigurationError `json:"errors"`
}

// Error implements the error interface for the collection
func (cec ConfigurationErrorCollection) Error() string {
	if len(cec.Errors) == 0 {
		return "no configuration errors"
	}

	if len(cec.Errors) == 1 {
		return cec.Errors[0].Error()
	}

	return fmt.Sprintf("%d configuration errors: %s (and %d more)",
		len(cec.Errors), cec.Errors[0].Error(), len(cec.Errors)-1)
}

// HasErrors returns true if there are any errors in the collection
func (cec *ConfigurationErrorCollection) HasErrors() bool {
	return len(cec.Errors) > 0
}

// Count returns the number of errors in the collection
func (cec *ConfigurationErrorCollection) Count() int {
	return len(cec.Errors)
}

// Add adds a new error to the collection
func (cec *ConfigurationErrorCollection) Add(err ConfigurationError) {
	cec.Errors = append(cec.Errors, err)
}

// AddValidation adds a validation error for a single field.
func (cec *ConfigurationErrorCollection) AddValidation(field, message string, suggestions ...string) {
	cec.Add(ConfigurationError{
		Field:       field,
		ErrorType:   ErrorTypeValidation,
		Message:     message,
		Suggestions: suggestions,
	})
}

// Summary returns every error on its own line.
func (cec *ConfigurationErrorCollection) Summary() string {
	if len(cec.Errors) == 0 {
		return "No configuration errors"
	}

	parts := []string{fmt.Sprintf("Configuration Error Summary (%d total errors):", len(cec.Errors))}
	for _, err := range cec.Errors {
		parts = append(parts, "  - "+err.Error())
		for _, suggestion := range err.Suggestions {
			parts = append(parts, "      hint: "+suggestion)
		}
	}
	return strings.Join(parts, "\n")
}

// NewIOError wraps a filesystem failure affecting path.
func NewIOError(path, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		FilePath:  path,
		ErrorType: ErrorTypeIO,
		Message:   message,
		Cause:     cause,
	}
}
