package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "monitor.poll_interval_ms")
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

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateMonitor()...)
	errors = append(errors, c.validateClassifier()...)
	errors = append(errors, c.validateCompletion()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateMonitor validates the MonitorConfig
func (c *Config) validateMonitor() []ValidationError {
	var errors []ValidationError

	if c.Monitor.PollIntervalMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "monitor.poll_interval_ms",
			Value:   c.Monitor.PollIntervalMs,
			Message: "must be positive",
		})
	}
	if c.Monitor.CaptureLines <= 0 {
		errors = append(errors, ValidationError{
			Field:   "monitor.capture_lines",
			Value:   c.Monitor.CaptureLines,
			Message: "must be positive",
		})
	}
	if c.Monitor.SilenceThresholdMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "monitor.silence_threshold_ms",
			Value:   c.Monitor.SilenceThresholdMs,
			Message: "must be positive",
		})
	}
	if c.Monitor.CaptureTimeoutMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "monitor.capture_timeout_ms",
			Value:   c.Monitor.CaptureTimeoutMs,
			Message: "must be positive",
		})
	}
	if c.Monitor.HistoryLines < 0 {
		errors = append(errors, ValidationError{
			Field:   "monitor.history_lines",
			Value:   c.Monitor.HistoryLines,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateClassifier validates the ClassifierConfig
func (c *Config) validateClassifier() []ValidationError {
	var errors []ValidationError

	if c.Classifier.WindowLines <= 0 {
		errors = append(errors, ValidationError{
			Field:   "classifier.window_lines",
			Value:   c.Classifier.WindowLines,
			Message: "must be positive",
		})
	}
	if c.Classifier.MenuLines <= 0 {
		errors = append(errors, ValidationError{
			Field:   "classifier.menu_lines",
			Value:   c.Classifier.MenuLines,
			Message: "must be positive",
		})
	}
	if c.Classifier.IdleLines <= 0 {
		errors = append(errors, ValidationError{
			Field:   "classifier.idle_lines",
			Value:   c.Classifier.IdleLines,
			Message: "must be positive",
		})
	}
	if c.Classifier.MinConfidence < 0 || c.Classifier.MinConfidence > 1 {
		errors = append(errors, ValidationError{
			Field:   "classifier.min_confidence",
			Value:   c.Classifier.MinConfidence,
			Message: "must be between 0 and 1",
		})
	}

	for field, v := range map[string]float64{
		"classifier.confidence.permission": c.Classifier.Confidence.Permission,
		"classifier.confidence.question":   c.Classifier.Confidence.Question,
		"classifier.confidence.error":      c.Classifier.Confidence.Error,
		"classifier.confidence.tool_use":   c.Classifier.Confidence.ToolUse,
		"classifier.confidence.working":    c.Classifier.Confidence.Working,
		"classifier.confidence.complete":   c.Classifier.Confidence.Complete,
		"classifier.confidence.idle":       c.Classifier.Confidence.Idle,
		"classifier.confidence.idle_soft":  c.Classifier.Confidence.IdleSoft,
	} {
		if v < 0 || v > 1 {
			errors = append(errors, ValidationError{
				Field:   field,
				Value:   v,
				Message: "must be between 0 and 1",
			})
		}
	}

	return errors
}

// validateCompletion validates the CompletionConfig
func (c *Config) validateCompletion() []ValidationError {
	var errors []ValidationError

	if c.Completion.SettleBufferMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "completion.settle_buffer_ms",
			Value:   c.Completion.SettleBufferMs,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
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
