package application

import (
	"fmt"
	"math"

	"github.com/jobrunner/georef/internal/domain"
)

// Convention selects how degree offsets are scaled into the project frame.
//
// The two conventions are NOT interchangeable. ConventionApprox multiplies degree
// offsets by a fixed 100000 and is what the map editor uses when photos are placed or
// dragged by hand. ConventionMeters converts offsets to meters (111320 m per degree of
// latitude, longitude shortened by cos(origin latitude)) and is what GPS placement uses.
// A point converted with one convention and read back with the other lands in the
// wrong place, so every caller must name the convention it stores.
type Convention string

// Frame conventions.
const (
	ConventionApprox Convention = "approx"
	ConventionMeters Convention = "meters"
)

// ParseConvention parses a convention name.
func ParseConvention(s string) (Convention, error) {
	switch Convention(s) {
	case ConventionApprox, ConventionMeters:
		return Convention(s), nil
	}
	return "", fmt.Errorf("%q: %w", s, domain.ErrUnknownConvention)
}

// Frame scale constants.
const (
	ApproxUnitsPerDegree    = 100000.0
	MetersPerDegreeLatitude = 111320.0
)

// FrameTransformer converts between geographic coordinates and a project-local frame.
//
// Rotation: a positive origin rotation turns the local +x axis clockwise from
// geographic east, so with east/north offsets dE, dN and rotation θ
//
//	x = dE·cos θ − dN·sin θ
//	y = dE·sin θ + dN·cos θ
//
// and the inverse applies −θ. A point due east of the origin lands on +y when θ = 90.
type FrameTransformer struct{}

// NewFrameTransformer creates a frame transformer.
func NewFrameTransformer() *FrameTransformer {
	return &FrameTransformer{}
}

// GeoToLocal dispatches on conv.
func (t *FrameTransformer) GeoToLocal(conv Convention, geo domain.GeoCoordinate, origin *domain.ProjectOrigin, z float64) (domain.LocalCoordinate, error) {
	switch conv {
	case ConventionApprox:
		return t.GeoToLocalApprox(geo, origin, z)
	case ConventionMeters:
		return t.GeoToLocalMeters(geo, origin, z)
	}
	return domain.LocalCoordinate{}, fmt.Errorf("%q: %w", conv, domain.ErrUnknownConvention)
}

// LocalToGeo dispatches on conv.
func (t *FrameTransformer) LocalToGeo(conv Convention, local domain.LocalCoordinate, origin *domain.ProjectOrigin) (domain.GeoCoordinate, error) {
	switch conv {
	case ConventionApprox:
		return t.LocalToGeoApprox(local, origin)
	case ConventionMeters:
		return t.LocalToGeoMeters(local, origin)
	}
	return domain.GeoCoordinate{}, fmt.Errorf("%q: %w", conv, domain.ErrUnknownConvention)
}

// GeoToLocalApprox converts with the fixed 100000 units per degree scale.
func (t *FrameTransformer) GeoToLocalApprox(geo domain.GeoCoordinate, origin *domain.ProjectOrigin, z float64) (domain.LocalCoordinate, error) {
	return t.toLocal("geo_to_local_approx", geo, origin, z, approxScale)
}

// LocalToGeoApprox is the exact inverse of GeoToLocalApprox.
func (t *FrameTransformer) LocalToGeoApprox(local domain.LocalCoordinate, origin *domain.ProjectOrigin) (domain.GeoCoordinate, error) {
	return t.toGeo("local_to_geo_approx", local, origin, approxScale)
}

// GeoToLocalMeters converts to meters with the cosine-corrected longitude scale.
func (t *FrameTransformer) GeoToLocalMeters(geo domain.GeoCoordinate, origin *domain.ProjectOrigin, z float64) (domain.LocalCoordinate, error) {
	return t.toLocal("geo_to_local_meters", geo, origin, z, metersScale)
}

// LocalToGeoMeters is the exact inverse of GeoToLocalMeters.
func (t *FrameTransformer) LocalToGeoMeters(local domain.LocalCoordinate, origin *domain.ProjectOrigin) (domain.GeoCoordinate, error) {
	return t.toGeo("local_to_geo_meters", local, origin, metersScale)
}

// scaleFunc returns units per degree of longitude (east) and latitude (north).
type scaleFunc func(origin *domain.ProjectOrigin) (east, north float64)

func approxScale(_ *domain.ProjectOrigin) (float64, float64) {
	return ApproxUnitsPerDegree, ApproxUnitsPerDegree
}

func metersScale(origin *domain.ProjectOrigin) (float64, float64) {
	return MetersPerDegreeLatitude * math.Cos(origin.Latitude*math.Pi/180), MetersPerDegreeLatitude
}

func (t *FrameTransformer) toLocal(op string, geo domain.GeoCoordinate, origin *domain.ProjectOrigin, z float64, scale scaleFunc) (domain.LocalCoordinate, error) {
	if origin == nil {
		return domain.LocalCoordinate{}, &domain.MissingOriginError{Operation: op}
	}
	if err := checkOrigin(origin); err != nil {
		return domain.LocalCoordinate{}, err
	}
	if err := geo.Validate(); err != nil {
		return domain.LocalCoordinate{}, err
	}
	if !finite(z) {
		return domain.LocalCoordinate{}, &domain.ValidationError{Field: "z", Value: z, Constraint: "finite", Message: "elevation must be finite"}
	}

	sx, sy := scale(origin)
	if math.Abs(sx) < 1e-9 {
		return domain.LocalCoordinate{}, &domain.ValidationError{
			Field:      "origin.latitude",
			Value:      origin.Latitude,
			Constraint: "(-90, 90)",
			Message:    "longitude scale vanishes at the poles",
		}
	}
	dE := (geo.Longitude - origin.Longitude) * sx
	dN := (geo.Latitude - origin.Latitude) * sy

	x, y := rotate(dE, dN, origin.RotationDegrees)
	return domain.LocalCoordinate{X: x, Y: y, Z: z}, nil
}

func (t *FrameTransformer) toGeo(op string, local domain.LocalCoordinate, origin *domain.ProjectOrigin, scale scaleFunc) (domain.GeoCoordinate, error) {
	if origin == nil {
		return domain.GeoCoordinate{}, &domain.MissingOriginError{Operation: op}
	}
	if err := checkOrigin(origin); err != nil {
		return domain.GeoCoordinate{}, err
	}
	if err := local.Validate(); err != nil {
		return domain.GeoCoordinate{}, err
	}

	sx, sy := scale(origin)
	if math.Abs(sx) < 1e-9 {
		return domain.GeoCoordinate{}, &domain.ValidationError{
			Field:      "origin.latitude",
			Value:      origin.Latitude,
			Constraint: "(-90, 90)",
			Message:    "longitude scale vanishes at the poles",
		}
	}
	dE, dN := rotate(local.X, local.Y, -origin.RotationDegrees)

	geo := domain.GeoCoordinate{
		Latitude:  origin.Latitude + dN/sy,
		Longitude: origin.Longitude + dE/sx,
	}
	if err := geo.Validate(); err != nil {
		return domain.GeoCoordinate{}, err
	}
	return geo, nil
}

// rotate applies x' = x·cos θ − y·sin θ, y' = x·sin θ + y·cos θ.
func rotate(x, y, degrees float64) (float64, float64) {
	rad := domain.NormalizeDegrees(degrees) * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return x*cos - y*sin, x*sin + y*cos
}

func checkOrigin(origin *domain.ProjectOrigin) error {
	if err := origin.Geo().Validate(); err != nil {
		return err
	}
	if !finite(origin.RotationDegrees) {
		return &domain.ValidationError{
			Field:      "origin.rotation",
			Value:      origin.RotationDegrees,
			Constraint: "finite",
			Message:    "rotation must be a finite number of degrees",
		}
	}
	return nil
}
