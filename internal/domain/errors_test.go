package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := &ValidationError{
		Field:      "longitude",
		Value:      200.0,
		Constraint: "[-180, 180]",
		Message:    "longitude must be between -180 and 180",
	}

	// Test Error() output
	got := err.Error()
	if !strings.Contains(got, "longitude") || !strings.Contains(got, "200") {
		t.Errorf("Error() = %q, want field and value", got)
	}

	// Test Unwrap()
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError should unwrap to ErrInvalidInput")
	}
}

func TestProjectionError(t *testing.T) {
	underlying := errors.New("backend exploded")

	tests := []struct {
		name     string
		err      *ProjectionError
		contains string
	}{
		{
			name:     "with zone",
			err:      &ProjectionError{Operation: "to_utm", Input: GeoCoordinate{}, Zone: 30, Err: underlying},
			contains: "zone 30",
		},
		{
			name:     "without zone",
			err:      &ProjectionError{Operation: "to_geographic", Input: "x", Err: underlying},
			contains: "to_geographic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.err.Error(), tt.contains) {
				t.Errorf("Error() = %q, want it to contain %q", tt.err.Error(), tt.contains)
			}
			if !errors.Is(tt.err, ErrProjection) {
				t.Error("ProjectionError should unwrap to ErrProjection")
			}
			if !errors.Is(tt.err, underlying) {
				t.Error("ProjectionError should unwrap to the underlying error")
			}
		})
	}

	// a validation failure stays visible through the projection error
	wrapped := &ProjectionError{Operation: "to_utm", Err: &ValidationError{Field: "zone"}}
	if !errors.Is(wrapped, ErrInvalidInput) {
		t.Error("ProjectionError should expose ErrInvalidInput of its cause")
	}
	if !errors.Is(&ProjectionError{Operation: "to_utm"}, ErrProjection) {
		t.Error("ProjectionError without cause should unwrap to ErrProjection")
	}
}

func TestMissingOriginError(t *testing.T) {
	err := &MissingOriginError{Operation: "geo_to_local_approx"}

	if got := err.Error(); got != "geo_to_local_approx: project origin not configured" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, ErrMissingOrigin) {
		t.Error("MissingOriginError should unwrap to ErrMissingOrigin")
	}
	if errors.Is(err, ErrInvalidInput) {
		t.Error("MissingOriginError is not an input error")
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{
		Field:   "frame.convention",
		Message: "unknown convention",
	}

	got := err.Error()
	if !strings.Contains(got, "frame.convention") {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ConfigError should unwrap to ErrInvalidInput")
	}
}

func TestDerivedErrors(t *testing.T) {
	tests := []struct {
		err    error
		target error
	}{
		{ErrNoCoordinates, ErrInvalidInput},
		{ErrDifferentGrids, ErrInvalidInput},
		{ErrUnknownBackend, ErrUnsupported},
		{ErrUnknownConvention, ErrUnsupported},
	}

	for _, tt := range tests {
		if !errors.Is(tt.err, tt.target) {
			t.Errorf("%v should wrap %v", tt.err, tt.target)
		}
	}
}
