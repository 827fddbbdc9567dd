package application

import (
	"fmt"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/jobrunner/georef/internal/domain"
)

// EarthRadiusMeters is the mean radius used for geodesic distances.
const EarthRadiusMeters = 6371000.0

// DistanceUTM returns the planar grid distance in meters between two UTM coordinates
// of the same zone, hemisphere and datum.
func DistanceUTM(a, b domain.UTMCoordinate) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	if !a.SameGrid(b) {
		return 0, fmt.Errorf("%d%s %s vs %d%s %s: %w",
			a.Zone, a.Hemisphere, a.Datum, b.Zone, b.Hemisphere, b.Datum, domain.ErrDifferentGrids)
	}
	return planar.Distance(orb.Point{a.Easting, a.Northing}, orb.Point{b.Easting, b.Northing}), nil
}

// DistanceGeo returns the great-circle distance in meters between two coordinates.
func DistanceGeo(a, b domain.GeoCoordinate) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	pa := s2.PointFromLatLng(s2.LatLngFromDegrees(a.Latitude, a.Longitude))
	pb := s2.PointFromLatLng(s2.LatLngFromDegrees(b.Latitude, b.Longitude))
	return s2.ChordAngleBetweenPoints(pa, pb).Angle().Radians() * EarthRadiusMeters, nil
}
