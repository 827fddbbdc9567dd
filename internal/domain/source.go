package domain

import (
	"regexp"
	"strconv"
)

// SourceKind tags the variant of a CoordinateSource.
type SourceKind string

// Source kinds, in ingestion priority order.
const (
	SourceLocal  SourceKind = "project"
	SourceLegacy SourceKind = "legacy"
	SourceGeo    SourceKind = "geo"
	SourceUTM    SourceKind = "utm"
)

// CoordinateSource is the position a record was ingested with.
// The set of implementations is closed: LocalSource, LegacySource, GeoSource and UTMSource.
type CoordinateSource interface {
	Kind() SourceKind
	sealed()
}

// LocalSource carries authoritative project-frame coordinates.
type LocalSource struct {
	Local LocalCoordinate
}

// LegacySource carries planar values that older panorama records stored in their
// latitude/longitude fields. They are approx-scale project coordinates, not degrees.
type LegacySource struct {
	X, Y, Z float64
}

// GeoSource carries a geographic position.
type GeoSource struct {
	Geo GeoCoordinate
}

// UTMSource carries a projected position, typically from a survey import.
type UTMSource struct {
	UTM UTMCoordinate
}

// Kind implements CoordinateSource.
func (LocalSource) Kind() SourceKind { return SourceLocal }

// Kind implements CoordinateSource.
func (LegacySource) Kind() SourceKind { return SourceLegacy }

// Kind implements CoordinateSource.
func (GeoSource) Kind() SourceKind { return SourceGeo }

// Kind implements CoordinateSource.
func (UTMSource) Kind() SourceKind { return SourceUTM }

func (LocalSource) sealed()  {}
func (LegacySource) sealed() {}
func (GeoSource) sealed()    {}
func (UTMSource) sealed()    {}

// AsLocal returns the legacy values as a project-frame coordinate.
func (s LegacySource) AsLocal() LocalCoordinate {
	return LocalCoordinate{X: s.X, Y: s.Y, Z: s.Z}
}

// RawRecord is a photo or object record as delivered by the backend. Any subset of the
// coordinate fields may be set.
type RawRecord struct {
	Name        string
	Type        string
	Description string

	ProjectX *float64
	ProjectY *float64
	ProjectZ *float64

	Latitude  *float64
	Longitude *float64

	GeoLatitude  *float64
	GeoLongitude *float64

	UTMEasting    *float64
	UTMNorthing   *float64
	UTMZone       *int
	UTMHemisphere Hemisphere
	UTMDatum      string
}

var legacyZPattern = regexp.MustCompile(`z:([-\d.]+)`)

// DetectSource picks the coordinate source of a record once, with the priority
// project > legacy > geo > utm. The chosen source is validated.
func DetectSource(r RawRecord) (CoordinateSource, error) {
	switch {
	case r.ProjectX != nil && r.ProjectY != nil:
		l := LocalCoordinate{X: *r.ProjectX, Y: *r.ProjectY}
		if r.ProjectZ != nil {
			l.Z = *r.ProjectZ
		}
		if err := l.Validate(); err != nil {
			return nil, err
		}
		return LocalSource{Local: l}, nil

	case r.Latitude != nil && r.Longitude != nil:
		s := LegacySource{X: *r.Latitude, Y: *r.Longitude, Z: legacyZ(r.Description)}
		if err := s.AsLocal().Validate(); err != nil {
			return nil, err
		}
		return s, nil

	case r.GeoLatitude != nil && r.GeoLongitude != nil:
		g, err := NewGeoCoordinate(*r.GeoLatitude, *r.GeoLongitude)
		if err != nil {
			return nil, err
		}
		return GeoSource{Geo: g}, nil

	case r.UTMEasting != nil && r.UTMNorthing != nil && r.UTMZone != nil:
		u := UTMCoordinate{
			Easting:    *r.UTMEasting,
			Northing:   *r.UTMNorthing,
			Zone:       *r.UTMZone,
			Hemisphere: r.UTMHemisphere,
			Datum:      r.UTMDatum,
		}
		if u.Hemisphere == "" {
			u.Hemisphere = North
		}
		if err := u.Validate(); err != nil {
			return nil, err
		}
		return UTMSource{UTM: u}, nil
	}

	return nil, ErrNoCoordinates
}

// legacyZ extracts the height that legacy records keep as "z:<value>" in their description.
func legacyZ(description string) float64 {
	m := legacyZPattern.FindStringSubmatch(description)
	if m == nil {
		return 0
	}
	z, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return z
}
