package application

import (
	"errors"
	"testing"

	"github.com/jobrunner/georef/internal/domain"
)

func TestZoneNumber(t *testing.T) {
	tests := []struct {
		lng      float64
		expected int
	}{
		{-180, 1},
		{-177.5, 1},
		{-174, 2},
		{-5.0825, 30},
		{-3, 30},
		{0, 31},
		{3, 31},
		{147, 55},
		{179.999, 60},
		{180, 60},
	}

	for _, tt := range tests {
		if got := ZoneNumber(tt.lng); got != tt.expected {
			t.Errorf("ZoneNumber(%v) = %d, want %d", tt.lng, got, tt.expected)
		}
	}
}

func TestZoneNumberMonotonic(t *testing.T) {
	for k := 0; k < 60; k++ {
		lng := -180 + float64(k)*6
		if got := ZoneNumber(lng); got != k+1 {
			t.Errorf("ZoneNumber(%v) = %d, want %d", lng, got, k+1)
		}
		if got := ZoneNumber(lng + 5.999); got != k+1 {
			t.Errorf("ZoneNumber(%v) = %d, want %d", lng+5.999, got, k+1)
		}
	}
}

func TestResolveZone(t *testing.T) {
	r := NewDefaultZoneResolver()

	tests := []struct {
		name     string
		geo      domain.GeoCoordinate
		expected domain.UTMZone
	}{
		{"Écija", domain.GeoCoordinate{Latitude: 37.5425, Longitude: -5.0825}, domain.UTMZone{Number: 30, Hemisphere: domain.North}},
		{"equator is north", domain.GeoCoordinate{Latitude: 0, Longitude: 10}, domain.UTMZone{Number: 32, Hemisphere: domain.North}},
		{"just south", domain.GeoCoordinate{Latitude: -0.000001, Longitude: 10}, domain.UTMZone{Number: 32, Hemisphere: domain.South}},
		{"Hobart", domain.GeoCoordinate{Latitude: -42.88, Longitude: 147.33}, domain.UTMZone{Number: 55, Hemisphere: domain.South}},
		{"antimeridian", domain.GeoCoordinate{Latitude: 10, Longitude: 180}, domain.UTMZone{Number: 60, Hemisphere: domain.North}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ResolveZone(tt.geo)
			if err != nil {
				t.Fatalf("ResolveZone() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("ResolveZone() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestResolveZoneInvalid(t *testing.T) {
	r := NewDefaultZoneResolver()

	for _, geo := range []domain.GeoCoordinate{
		{Latitude: 91, Longitude: 0},
		{Latitude: 0, Longitude: -180.5},
		{Latitude: nanValue(), Longitude: 0},
	} {
		_, err := r.ResolveZone(geo)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("ResolveZone(%v) error = %v, want ErrInvalidInput", geo, err)
		}
	}
}

func TestDefinition(t *testing.T) {
	r := NewDefaultZoneResolver()

	tests := []struct {
		name  string
		zone  domain.UTMZone
		datum string
		srid  int
	}{
		{"ETRS89 north", domain.UTMZone{Number: 30, Hemisphere: domain.North}, domain.DatumETRS89, 25830},
		{"ETRS89 canaries", domain.UTMZone{Number: 28, Hemisphere: domain.North}, domain.DatumETRS89, 25828},
		{"ETRS89 south has no code", domain.UTMZone{Number: 30, Hemisphere: domain.South}, domain.DatumETRS89, 0},
		{"generic north", domain.UTMZone{Number: 33, Hemisphere: domain.North}, domain.DatumWGS84, 32633},
		{"generic south", domain.UTMZone{Number: 55, Hemisphere: domain.South}, domain.DatumWGS84, 32755},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := r.Definition(tt.zone)
			if err != nil {
				t.Fatalf("Definition() error = %v", err)
			}
			if def.Datum != tt.datum {
				t.Errorf("Datum = %q, want %q", def.Datum, tt.datum)
			}
			if def.SRID != tt.srid {
				t.Errorf("SRID = %d, want %d", def.SRID, tt.srid)
			}
			if def.UTMZone() != tt.zone {
				t.Errorf("UTMZone() = %v, want %v", def.UTMZone(), tt.zone)
			}
		})
	}
}

func TestDefinitionInvalid(t *testing.T) {
	r := NewDefaultZoneResolver()

	for _, zone := range []domain.UTMZone{
		{Number: 0, Hemisphere: domain.North},
		{Number: 61, Hemisphere: domain.North},
		{Number: 30, Hemisphere: "X"},
	} {
		if _, err := r.Definition(zone); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("Definition(%v) error = %v, want ErrInvalidInput", zone, err)
		}
	}
}

func TestResolveEcija(t *testing.T) {
	def, err := NewDefaultZoneResolver().Resolve(domain.GeoCoordinate{Latitude: 37.5425, Longitude: -5.0825})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if def.Zone != 30 || def.Datum != domain.DatumETRS89 || def.SRID != 25830 {
		t.Errorf("Resolve() = %+v", def)
	}
	if def.CentralMeridian() != -3 {
		t.Errorf("CentralMeridian() = %v, want -3", def.CentralMeridian())
	}
	if def.Region == "" {
		t.Error("override zones should carry a region label")
	}
}

func TestNewZoneResolver(t *testing.T) {
	t.Run("empty table", func(t *testing.T) {
		r, err := NewZoneResolver()
		if err != nil {
			t.Fatalf("NewZoneResolver() error = %v", err)
		}
		if got := r.DatumFor(30); got != domain.DatumWGS84 {
			t.Errorf("DatumFor(30) = %q, want WGS84", got)
		}
		if len(r.Regions()) != 0 {
			t.Errorf("Regions() = %v, want empty", r.Regions())
		}
	})

	t.Run("later override wins", func(t *testing.T) {
		r, err := NewZoneResolver(
			domain.DatumOverride{Zone: 30, Datum: "A", Ellipsoid: domain.GRS80Ellipsoid},
			domain.DatumOverride{Zone: 30, Datum: "B", Ellipsoid: domain.GRS80Ellipsoid},
		)
		if err != nil {
			t.Fatalf("NewZoneResolver() error = %v", err)
		}
		if got := r.DatumFor(30); got != "B" {
			t.Errorf("DatumFor(30) = %q, want B", got)
		}
	})

	t.Run("invalid override", func(t *testing.T) {
		_, err := NewZoneResolver(domain.DatumOverride{Zone: 70, Datum: "X", Ellipsoid: domain.GRS80Ellipsoid})
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("NewZoneResolver() error = %v, want ErrInvalidInput", err)
		}
	})
}

func TestRegionsOrdered(t *testing.T) {
	regions := NewDefaultZoneResolver().Regions()
	if len(regions) != 4 {
		t.Fatalf("len(Regions()) = %d, want 4", len(regions))
	}
	for i, zone := range []int{28, 29, 30, 31} {
		if regions[i].Zone != zone {
			t.Errorf("Regions()[%d].Zone = %d, want %d", i, regions[i].Zone, zone)
		}
	}
}
