// Package input defines the primary/driving ports of the application.
package input

import (
	"context"

	"github.com/jobrunner/georef/internal/domain"
)

// Projector defines the primary port for WGS84/UTM conversion.
type Projector interface {
	// ToUTM projects a coordinate; zoneOverride 0 resolves the zone from the longitude.
	ToUTM(ctx context.Context, geo domain.GeoCoordinate, zoneOverride int) (domain.UTMCoordinate, error)

	// ToGeographic converts a UTM coordinate back to WGS84.
	ToGeographic(ctx context.Context, utm domain.UTMCoordinate) (domain.GeoCoordinate, error)
}

// ZoneResolver defines the primary port for zone lookups.
type ZoneResolver interface {
	// ResolveZone returns the UTM zone a coordinate falls in.
	ResolveZone(geo domain.GeoCoordinate) (domain.UTMZone, error)

	// Definition returns the grid definition of a zone.
	Definition(zone domain.UTMZone) (domain.ZoneDefinition, error)

	// Regions returns the zones with a regional datum.
	Regions() []domain.DatumOverride
}

// Placer defines the primary port for resolving records into all coordinate systems.
type Placer interface {
	// Place derives every coordinate system reachable from src.
	Place(ctx context.Context, src domain.CoordinateSource, origin *domain.ProjectOrigin) domain.Placement

	// PlaceRecord detects the source of a raw record and places it.
	PlaceRecord(ctx context.Context, r domain.RawRecord, origin *domain.ProjectOrigin) domain.Placement
}

// BatchConverter defines the primary port for converting many records.
type BatchConverter interface {
	// ConvertAll places records in order.
	ConvertAll(ctx context.Context, records []domain.RawRecord) ([]domain.Placement, error)
}
