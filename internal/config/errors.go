package config

import "fmt"

// ConfigurationError reports a malformed configuration option. It is fatal:
// extraction must not start with a configuration that produced one.
type ConfigurationError struct {
	// Field is the snake_case option name, or the file path when the whole
	// document could not be parsed.
	Field string

	// Value is the offending value, if one was decoded.
	Value interface{}

	// Reason describes the constraint that was violated.
	Reason string

	// Err is the underlying decode error, if any.
	Err error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("invalid configuration option %q", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf(" (value %v)", e.Value)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func newError(field string, value interface{}, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Value: value, Reason: reason}
}
