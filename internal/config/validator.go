package config

import (
	"fmt"
	"strings"

	"gcmeter/internal/events"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors struct {
	Errors []*ValidationError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Add adds an error to the collection.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, &ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are any errors.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// Validate validates the run configuration, including event names against
// the catalog. Returns nil if valid, or a ValidationErrors containing every
// violation.
func (c *Config) Validate() error {
	errs := &ValidationErrors{}

	if len(c.Events) == 0 {
		errs.Add("events", "at least one event is required")
	}
	for _, name := range c.Events {
		if _, err := events.Lookup(name); err != nil {
			errs.Add("events", err.Error())
		}
	}

	// Zero means unset; ApplyDefaults fills it in.
	if c.Samples < 0 {
		errs.Add("samples", fmt.Sprintf("must not be negative, got %d", c.Samples))
	}

	switch c.Workload.Kind {
	case "", "sleep", "spin", "alloc":
	default:
		errs.Add("workload.kind", fmt.Sprintf("unknown workload kind %q", c.Workload.Kind))
	}
	if c.Workload.Duration < 0 {
		errs.Add("workload.duration", "must not be negative")
	}
	if c.Workload.AllocBytes < 0 {
		errs.Add("workload.allocBytes", "must not be negative")
	}
	if c.Workload.AllocCount < 0 {
		errs.Add("workload.allocCount", "must not be negative")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
