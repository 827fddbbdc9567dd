package application

import (
	"math"
	"sort"

	"github.com/jobrunner/georef/internal/domain"
	"github.com/jobrunner/georef/internal/ports/input"
)

// ZoneResolver derives UTM zones from geographic coordinates and maps them to grid
// definitions. The override table is fixed at construction and never mutated, so a
// resolver is safe for concurrent use.
type ZoneResolver struct {
	overrides map[int]domain.DatumOverride
}

var _ input.ZoneResolver = (*ZoneResolver)(nil)

// NewZoneResolver creates a resolver. Later overrides for the same zone replace earlier ones.
func NewZoneResolver(overrides ...domain.DatumOverride) (*ZoneResolver, error) {
	table := make(map[int]domain.DatumOverride, len(overrides))
	for _, o := range overrides {
		if err := o.Validate(); err != nil {
			return nil, err
		}
		table[o.Zone] = o
	}
	return &ZoneResolver{overrides: table}, nil
}

// NewDefaultZoneResolver creates a resolver with the built-in ETRS89 table.
func NewDefaultZoneResolver() *ZoneResolver {
	r, _ := NewZoneResolver(domain.SpainOverrides()...)
	return r
}

// ResolveZone returns the standard UTM zone and hemisphere of a coordinate.
// Polar and Scandinavian exceptions are not applied.
func (r *ZoneResolver) ResolveZone(geo domain.GeoCoordinate) (domain.UTMZone, error) {
	if err := geo.Validate(); err != nil {
		return domain.UTMZone{}, err
	}
	return domain.UTMZone{
		Number:     ZoneNumber(geo.Longitude),
		Hemisphere: domain.HemisphereOf(geo.Latitude),
	}, nil
}

// Definition returns the override grid for the zone if present, else the generic WGS84 grid.
func (r *ZoneResolver) Definition(zone domain.UTMZone) (domain.ZoneDefinition, error) {
	if err := zone.Validate(); err != nil {
		return domain.ZoneDefinition{}, err
	}
	if o, ok := r.overrides[zone.Number]; ok {
		return o.Define(zone.Hemisphere), nil
	}
	return domain.GenericDefinition(zone.Number, zone.Hemisphere), nil
}

// Resolve returns the grid definition a coordinate falls in.
func (r *ZoneResolver) Resolve(geo domain.GeoCoordinate) (domain.ZoneDefinition, error) {
	zone, err := r.ResolveZone(geo)
	if err != nil {
		return domain.ZoneDefinition{}, err
	}
	return r.Definition(zone)
}

// DatumFor returns the datum name used for a zone.
func (r *ZoneResolver) DatumFor(zone int) string {
	if o, ok := r.overrides[zone]; ok {
		return o.Datum
	}
	return domain.DatumWGS84
}

// Regions returns the override table ordered by zone.
func (r *ZoneResolver) Regions() []domain.DatumOverride {
	regions := make([]domain.DatumOverride, 0, len(r.overrides))
	for _, o := range r.overrides {
		regions = append(regions, o)
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].Zone < regions[j].Zone })
	return regions
}

// ZoneNumber computes floor((lng+180)/6)+1 clamped to [1, 60].
func ZoneNumber(longitude float64) int {
	zone := int(math.Floor((longitude+180)/6)) + 1
	if zone < domain.MinZone {
		return domain.MinZone
	}
	if zone > domain.MaxZone {
		return domain.MaxZone
	}
	return zone
}
