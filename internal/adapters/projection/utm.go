package projection

import (
	"context"
	"fmt"
	"math"

	"github.com/im7mortal/UTM"

	"github.com/jobrunner/georef/internal/domain"
)

// GRS80 differs from WGS84 by about 1.6e-11 in flattening, well below this.
const flatteningTolerance = 1e-8

// Latitude band covered by the library.
const (
	utmLibMinLatitude = -80.0
	utmLibMaxLatitude = 84.0
)

// UTMLib projects with github.com/im7mortal/UTM. The library only knows the WGS84
// ellipsoid and always picks the zone itself (including the Norway and Svalbard
// exceptions), so other ellipsoids and zones it would not choose are rejected.
//
// Supported range: latitudes in [-80, 84] and longitudes in [-180, 180). Longitude 180
// belongs to zone 60 here but the library places it in a zone 61 it cannot invert;
// use the kruger backend there.
type UTMLib struct{}

// NewUTM creates the im7mortal/UTM backend.
func NewUTM() *UTMLib {
	return &UTMLib{}
}

// Name implements output.Projector.
func (p *UTMLib) Name() string {
	return BackendUTM
}

// Forward implements output.Projector.
func (p *UTMLib) Forward(ctx context.Context, geo domain.GeoCoordinate, def domain.ZoneDefinition) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	if err := checkWGS84(def); err != nil {
		return 0, 0, err
	}

	if geo.Latitude < utmLibMinLatitude || geo.Latitude > utmLibMaxLatitude {
		return 0, 0, fmt.Errorf("latitude %v outside [%v, %v]: %w", geo.Latitude, utmLibMinLatitude, utmLibMaxLatitude, domain.ErrUnsupported)
	}
	if geo.Longitude >= 180 {
		return 0, 0, fmt.Errorf("longitude %v at the antimeridian: %w", geo.Longitude, domain.ErrUnsupported)
	}

	easting, northing, zone, _, err := UTM.FromLatLon(geo.Latitude, geo.Longitude, geo.Latitude >= 0)
	if err != nil {
		return 0, 0, err
	}
	if zone != def.Zone {
		return 0, 0, fmt.Errorf("library selected zone %d for zone %s: %w", zone, def.UTMZone(), domain.ErrUnsupported)
	}
	return easting, northing, nil
}

// Inverse implements output.Projector.
func (p *UTMLib) Inverse(ctx context.Context, easting, northing float64, def domain.ZoneDefinition) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	if err := checkWGS84(def); err != nil {
		return 0, 0, err
	}

	// any letter from N upwards selects the northern hemisphere
	letter := "N"
	if def.Hemisphere == domain.South {
		letter = "M"
	}
	lat, lng, err := UTM.ToLatLon(easting, northing, def.Zone, letter)
	if err != nil {
		return 0, 0, err
	}
	return lat, lng, nil
}

func checkWGS84(def domain.ZoneDefinition) error {
	e := def.Ellipsoid
	w := domain.WGS84Ellipsoid
	if e.SemiMajorAxis != w.SemiMajorAxis || math.Abs(1/e.InvFlattening-1/w.InvFlattening) > flatteningTolerance {
		return fmt.Errorf("ellipsoid %q: %w", e.Name, domain.ErrUnsupported)
	}
	return nil
}
