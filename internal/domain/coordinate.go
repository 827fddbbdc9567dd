// Package domain contains the coordinate value objects and error taxonomy.
package domain

import (
	"fmt"
	"math"
)

// Hemisphere identifies the UTM hemisphere.
type Hemisphere string

// Hemisphere values.
const (
	North Hemisphere = "N"
	South Hemisphere = "S"
)

// IsValid returns true for N or S.
func (h Hemisphere) IsValid() bool {
	return h == North || h == South
}

// HemisphereOf returns the hemisphere of a latitude. Zero is north.
func HemisphereOf(latitude float64) Hemisphere {
	if latitude >= 0 {
		return North
	}
	return South
}

// Datum names.
const (
	DatumWGS84  = "WGS84"
	DatumETRS89 = "ETRS89"
)

// GeoCoordinate is a WGS84 geographic position in decimal degrees.
type GeoCoordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewGeoCoordinate creates a validated geographic coordinate.
func NewGeoCoordinate(lat, lng float64) (GeoCoordinate, error) {
	c := GeoCoordinate{Latitude: lat, Longitude: lng}
	if err := c.Validate(); err != nil {
		return GeoCoordinate{}, err
	}
	return c, nil
}

// Validate checks that both fields are finite and in range.
func (c GeoCoordinate) Validate() error {
	if !isFinite(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return &ValidationError{
			Field:      "latitude",
			Value:      c.Latitude,
			Constraint: "[-90, 90]",
			Message:    "latitude must be a finite value between -90 and 90",
		}
	}
	if !isFinite(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return &ValidationError{
			Field:      "longitude",
			Value:      c.Longitude,
			Constraint: "[-180, 180]",
			Message:    "longitude must be a finite value between -180 and 180",
		}
	}
	return nil
}

// String returns a display representation of the coordinate.
func (c GeoCoordinate) String() string {
	return fmt.Sprintf("(%f, %f)", c.Latitude, c.Longitude)
}

// UTMCoordinate is a projected position inside one UTM zone.
type UTMCoordinate struct {
	Easting    float64    `json:"easting"`
	Northing   float64    `json:"northing"`
	Zone       int        `json:"zone"`
	Hemisphere Hemisphere `json:"hemisphere"`
	Datum      string     `json:"datum"`
}

// Validate checks easting, northing, zone and hemisphere.
func (c UTMCoordinate) Validate() error {
	if !isFinite(c.Easting) || c.Easting < MinEasting || c.Easting > MaxEasting {
		return &ValidationError{
			Field:      "easting",
			Value:      c.Easting,
			Constraint: "[0, 1000000]",
			Message:    "easting must be between 0 and 1000000 meters",
		}
	}
	if !isFinite(c.Northing) || c.Northing < MinNorthing || c.Northing > MaxNorthing {
		return &ValidationError{
			Field:      "northing",
			Value:      c.Northing,
			Constraint: "[0, 10000000]",
			Message:    "northing must be between 0 and 10000000 meters",
		}
	}
	if err := ValidateZone(c.Zone); err != nil {
		return err
	}
	if !c.Hemisphere.IsValid() {
		return &ValidationError{
			Field:      "hemisphere",
			Value:      string(c.Hemisphere),
			Constraint: "N|S",
			Message:    "hemisphere must be N or S",
		}
	}
	return nil
}

// SameGrid returns true if both coordinates share zone, hemisphere and datum.
func (c UTMCoordinate) SameGrid(o UTMCoordinate) bool {
	return c.Zone == o.Zone && c.Hemisphere == o.Hemisphere && c.Datum == o.Datum
}

// String returns a display representation of the coordinate.
func (c UTMCoordinate) String() string {
	return fmt.Sprintf("%s %d%s %.2f %.2f", c.Datum, c.Zone, c.Hemisphere, c.Easting, c.Northing)
}

// ProjectOrigin anchors a project-local frame.
type ProjectOrigin struct {
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	RotationDegrees float64 `json:"rotation_degrees"`
}

// NewProjectOrigin creates a validated origin with its rotation normalized into [0, 360).
func NewProjectOrigin(lat, lng, rotation float64) (*ProjectOrigin, error) {
	if err := (GeoCoordinate{Latitude: lat, Longitude: lng}).Validate(); err != nil {
		return nil, err
	}
	if !isFinite(rotation) {
		return nil, &ValidationError{
			Field:      "rotation",
			Value:      rotation,
			Constraint: "finite",
			Message:    "rotation must be a finite number of degrees",
		}
	}
	return &ProjectOrigin{
		Latitude:        lat,
		Longitude:       lng,
		RotationDegrees: NormalizeDegrees(rotation),
	}, nil
}

// Geo returns the origin position.
func (o ProjectOrigin) Geo() GeoCoordinate {
	return GeoCoordinate{Latitude: o.Latitude, Longitude: o.Longitude}
}

// Rotated returns a copy of the origin turned by delta degrees.
func (o ProjectOrigin) Rotated(delta float64) ProjectOrigin {
	o.RotationDegrees = NormalizeDegrees(o.RotationDegrees + delta)
	return o
}

// LocalCoordinate is an offset from a ProjectOrigin in the project frame.
type LocalCoordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Validate checks that all components are finite.
func (l LocalCoordinate) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"x", l.X}, {"y", l.Y}, {"z", l.Z}} {
		if !isFinite(f.v) {
			return &ValidationError{
				Field:      f.name,
				Value:      f.v,
				Constraint: "finite",
				Message:    "local coordinate components must be finite",
			}
		}
	}
	return nil
}

// String returns a display representation of the coordinate.
func (l LocalCoordinate) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", l.X, l.Y, l.Z)
}

// NormalizeDegrees maps any finite angle into [0, 360).
func NormalizeDegrees(a float64) float64 {
	n := math.Mod(math.Mod(a, 360)+360, 360)
	if n == 360 {
		// tiny negative inputs round up to a full turn
		return 0
	}
	return n
}

// Extent represents a spatial bounding box.
type Extent struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// IsValid checks if the extent has valid dimensions.
func (e Extent) IsValid() bool {
	return e.MinX <= e.MaxX && e.MinY <= e.MaxY
}

// Width returns the width of the extent.
func (e Extent) Width() float64 {
	return math.Abs(e.MaxX - e.MinX)
}

// Height returns the height of the extent.
func (e Extent) Height() float64 {
	return math.Abs(e.MaxY - e.MinY)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
