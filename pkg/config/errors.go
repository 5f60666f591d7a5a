package config

import "fmt"

// ParseError indicates the bytes are not a configuration document.
type ParseError struct {
	Err error
}

// Error implements error.
func (e *ParseError) Error() string {
	return "parse config: " + e.Err.Error()
}

// Unwrap returns the underlying decoding error.
func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError indicates well-formed JSON with invalid semantics.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements error.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid config: " + e.Reason
	}
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
