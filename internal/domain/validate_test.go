package domain

import (
	"errors"
	"math"
	"testing"
)

func TestIsValidUTM(t *testing.T) {
	tests := []struct {
		name     string
		easting  float64
		northing float64
		zone     int
		expected bool
	}{
		{"typical", 316700, 4156890, 30, true},
		{"lower bounds", 0, 0, 1, true},
		{"upper bounds", 1_000_000, 10_000_000, 60, true},
		{"negative easting", -0.001, 0, 30, false},
		{"easting too large", 1_000_000.001, 0, 30, false},
		{"northing too large", 0, 10_000_000.001, 30, false},
		{"zone 0", 500000, 0, 0, false},
		{"zone 61", 500000, 0, 61, false},
		{"NaN easting", math.NaN(), 0, 30, false},
		{"infinite northing", 0, math.Inf(1), 30, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidUTM(tt.easting, tt.northing, tt.zone); got != tt.expected {
				t.Errorf("IsValidUTM(%v, %v, %d) = %v, want %v", tt.easting, tt.northing, tt.zone, got, tt.expected)
			}
		})
	}
}

func TestIsValidGeo(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
		expected bool
	}{
		{"Écija", 37.5425, -5.0825, true},
		{"corners", -90, 180, true},
		{"other corners", 90, -180, true},
		{"latitude too large", 90.0000001, 0, false},
		{"longitude too small", 0, -180.0000001, false},
		{"NaN latitude", math.NaN(), 0, false},
		{"NaN longitude", 0, math.NaN(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidGeo(tt.lat, tt.lng); got != tt.expected {
				t.Errorf("IsValidGeo(%v, %v) = %v, want %v", tt.lat, tt.lng, got, tt.expected)
			}
		})
	}
}

func TestValidatorsAgreeWithTypes(t *testing.T) {
	for _, lat := range []float64{-91, -90, 0, 90, 91} {
		for _, lng := range []float64{-181, -180, 0, 180, 181} {
			typed := (GeoCoordinate{Latitude: lat, Longitude: lng}).Validate() == nil
			if IsValidGeo(lat, lng) != typed {
				t.Errorf("IsValidGeo(%v, %v) disagrees with GeoCoordinate.Validate", lat, lng)
			}
		}
	}
}

func TestValidateZone(t *testing.T) {
	for zone := MinZone; zone <= MaxZone; zone++ {
		if err := ValidateZone(zone); err != nil {
			t.Fatalf("ValidateZone(%d) error = %v", zone, err)
		}
	}
	for _, zone := range []int{-1, 0, 61, 100} {
		err := ValidateZone(zone)
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.Field != "zone" {
			t.Errorf("ValidateZone(%d) error = %v, want zone ValidationError", zone, err)
		}
	}
}
