package application

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jobrunner/georef/internal/domain"
	"github.com/jobrunner/georef/internal/ports/input"
	"github.com/jobrunner/georef/internal/ports/output"
)

// Operation names used in errors and metrics.
const (
	OpToUTM        = "to_utm"
	OpToGeographic = "to_geographic"
)

// Rounding applied to projector results.
const (
	utmDecimals = 2 // centimeters
	geoDecimals = 6 // about 0.11 m at the equator
)

// GeodeticProjector converts between WGS84 and UTM through a pluggable backend.
type GeodeticProjector struct {
	resolver *ZoneResolver
	backend  output.Projector
	metrics  output.MetricsCollector
}

var _ input.Projector = (*GeodeticProjector)(nil)

// NewGeodeticProjector creates a new projector.
func NewGeodeticProjector(resolver *ZoneResolver, backend output.Projector, metrics output.MetricsCollector) *GeodeticProjector {
	if metrics == nil {
		metrics = &output.NoOpMetrics{}
	}
	return &GeodeticProjector{
		resolver: resolver,
		backend:  backend,
		metrics:  metrics,
	}
}

// Backend returns the name of the projection backend.
func (p *GeodeticProjector) Backend() string {
	return p.backend.Name()
}

// ToUTM projects geo into UTM. A zoneOverride of 0 selects the zone of the longitude;
// the hemisphere always follows the latitude sign.
func (p *GeodeticProjector) ToUTM(ctx context.Context, geo domain.GeoCoordinate, zoneOverride int) (domain.UTMCoordinate, error) {
	start := time.Now()
	utm, err := p.toUTM(ctx, geo, zoneOverride)
	p.metrics.IncConversions(OpToUTM, err == nil)
	p.metrics.ObserveConversionDuration(OpToUTM, time.Since(start))
	return utm, err
}

func (p *GeodeticProjector) toUTM(ctx context.Context, geo domain.GeoCoordinate, zoneOverride int) (domain.UTMCoordinate, error) {
	if err := geo.Validate(); err != nil {
		return domain.UTMCoordinate{}, &domain.ProjectionError{Operation: OpToUTM, Input: geo, Zone: zoneOverride, Err: err}
	}

	zone, err := p.resolver.ResolveZone(geo)
	if err != nil {
		return domain.UTMCoordinate{}, &domain.ProjectionError{Operation: OpToUTM, Input: geo, Err: err}
	}
	if zoneOverride != 0 {
		zone.Number = zoneOverride
	}

	def, err := p.resolver.Definition(zone)
	if err != nil {
		return domain.UTMCoordinate{}, &domain.ProjectionError{Operation: OpToUTM, Input: geo, Zone: zone.Number, Err: err}
	}

	easting, northing, err := p.backend.Forward(ctx, geo, def)
	if err != nil {
		return domain.UTMCoordinate{}, &domain.ProjectionError{
			Operation: OpToUTM,
			Input:     geo,
			Zone:      def.Zone,
			Err:       fmt.Errorf("%s backend: %w", p.backend.Name(), err),
		}
	}
	if !finite(easting) || !finite(northing) {
		return domain.UTMCoordinate{}, &domain.ProjectionError{
			Operation: OpToUTM,
			Input:     geo,
			Zone:      def.Zone,
			Err:       fmt.Errorf("%s backend returned non-finite result (%v, %v)", p.backend.Name(), easting, northing),
		}
	}

	utm := domain.UTMCoordinate{
		Easting:    round(easting, utmDecimals),
		Northing:   round(northing, utmDecimals),
		Zone:       def.Zone,
		Hemisphere: def.Hemisphere,
		Datum:      def.Datum,
	}
	if err := utm.Validate(); err != nil {
		// typically a zone override far from the coordinate
		return domain.UTMCoordinate{}, &domain.ProjectionError{Operation: OpToUTM, Input: geo, Zone: def.Zone, Err: err}
	}
	return utm, nil
}

// ToGeographic converts a UTM coordinate back to WGS84. The grid is taken from the
// resolver's table for the zone; the Datum field of utm is informative only.
func (p *GeodeticProjector) ToGeographic(ctx context.Context, utm domain.UTMCoordinate) (domain.GeoCoordinate, error) {
	start := time.Now()
	geo, err := p.toGeographic(ctx, utm)
	p.metrics.IncConversions(OpToGeographic, err == nil)
	p.metrics.ObserveConversionDuration(OpToGeographic, time.Since(start))
	return geo, err
}

func (p *GeodeticProjector) toGeographic(ctx context.Context, utm domain.UTMCoordinate) (domain.GeoCoordinate, error) {
	if utm.Hemisphere == "" {
		utm.Hemisphere = domain.North
	}
	if err := utm.Validate(); err != nil {
		return domain.GeoCoordinate{}, &domain.ProjectionError{Operation: OpToGeographic, Input: utm, Zone: utm.Zone, Err: err}
	}

	def, err := p.resolver.Definition(domain.UTMZone{Number: utm.Zone, Hemisphere: utm.Hemisphere})
	if err != nil {
		return domain.GeoCoordinate{}, &domain.ProjectionError{Operation: OpToGeographic, Input: utm, Zone: utm.Zone, Err: err}
	}

	lat, lng, err := p.backend.Inverse(ctx, utm.Easting, utm.Northing, def)
	if err != nil {
		return domain.GeoCoordinate{}, &domain.ProjectionError{
			Operation: OpToGeographic,
			Input:     utm,
			Zone:      utm.Zone,
			Err:       fmt.Errorf("%s backend: %w", p.backend.Name(), err),
		}
	}

	geo := domain.GeoCoordinate{Latitude: round(lat, geoDecimals), Longitude: round(lng, geoDecimals)}
	if err := geo.Validate(); err != nil {
		return domain.GeoCoordinate{}, &domain.ProjectionError{
			Operation: OpToGeographic,
			Input:     utm,
			Zone:      utm.Zone,
			Err:       fmt.Errorf("%s backend returned invalid result: %w", p.backend.Name(), err),
		}
	}
	return geo, nil
}

func round(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
