package domain

import (
	"errors"
	"fmt"
)

// Base error types (sentinel errors).
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrProjection    = errors.New("projection failed")
	ErrMissingOrigin = errors.New("project origin not configured")
	ErrUnsupported   = errors.New("unsupported operation")
)

// Specific errors.
var (
	ErrNoCoordinates     = fmt.Errorf("record has no coordinates: %w", ErrInvalidInput)
	ErrDifferentGrids    = fmt.Errorf("coordinates in different UTM grids: %w", ErrInvalidInput)
	ErrUnknownBackend    = fmt.Errorf("projection backend: %w", ErrUnsupported)
	ErrUnknownConvention = fmt.Errorf("frame convention: %w", ErrUnsupported)
)

// ValidationError represents a coordinate that failed a range or sanity check.
type ValidationError struct {
	Field      string      // Field that failed validation
	Value      interface{} // The invalid value
	Constraint string      // The constraint that was violated
	Message    string      // Human-readable message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v, constraint: %s)",
		e.Field, e.Message, e.Value, e.Constraint)
}

// Unwrap returns the underlying error type.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// ProjectionError represents a failed cartographic transform.
type ProjectionError struct {
	Operation string      // to_utm or to_geographic
	Input     interface{} // The offending input value
	Zone      int         // Target or source zone, 0 if unknown
	Err       error       // Underlying error
}

// Error implements the error interface.
func (e *ProjectionError) Error() string {
	if e.Zone != 0 {
		return fmt.Sprintf("projection error during %s in zone %d for %v: %v",
			e.Operation, e.Zone, e.Input, e.Err)
	}
	return fmt.Sprintf("projection error during %s for %v: %v", e.Operation, e.Input, e.Err)
}

// Unwrap returns ErrProjection and the underlying error.
func (e *ProjectionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrProjection}
	}
	return []error{ErrProjection, e.Err}
}

// MissingOriginError is returned by local-frame conversions without an origin.
type MissingOriginError struct {
	Operation string
}

// Error implements the error interface.
func (e *MissingOriginError) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, ErrMissingOrigin)
}

// Unwrap returns ErrMissingOrigin.
func (e *MissingOriginError) Unwrap() error {
	return ErrMissingOrigin
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string // Configuration field
	Message string // Error message
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error type.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidInput
}
