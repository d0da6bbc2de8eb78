package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "release.remote")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidPresets returns the supported commit conventions
func ValidPresets() []string {
	return []string{"angular", "conventionalcommits"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateRelease()...)
	errors = append(errors, c.validateWorkspace()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateRelease() []ValidationError {
	var errors []ValidationError

	if c.Release.Push && strings.TrimSpace(c.Release.Remote) == "" {
		errors = append(errors, ValidationError{
			Field:   "release.remote",
			Value:   c.Release.Remote,
			Message: "must be set when release.push is enabled",
		})
	}
	if c.Release.Push && strings.TrimSpace(c.Release.BaseBranch) == "" {
		errors = append(errors, ValidationError{
			Field:   "release.base_branch",
			Value:   c.Release.BaseBranch,
			Message: "must be set when release.push is enabled",
		})
	}
	if strings.ContainsAny(c.Release.Remote, " \t\n") {
		errors = append(errors, ValidationError{
			Field:   "release.remote",
			Value:   c.Release.Remote,
			Message: "must not contain whitespace",
		})
	}
	if c.Release.Preset != "" && !slices.Contains(ValidPresets(), c.Release.Preset) {
		errors = append(errors, ValidationError{
			Field:   "release.preset",
			Value:   c.Release.Preset,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidPresets(), ", ")),
		})
	}
	if strings.TrimSpace(c.Release.CommitMessageFormat) == "" {
		errors = append(errors, ValidationError{
			Field:   "release.commit_message_format",
			Value:   c.Release.CommitMessageFormat,
			Message: "must not be empty",
		})
	}

	return errors
}

func (c *Config) validateWorkspace() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Workspace.File) == "" {
		errors = append(errors, ValidationError{
			Field:   "workspace.file",
			Value:   c.Workspace.File,
			Message: "must not be empty",
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}
