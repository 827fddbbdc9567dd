package domain

import "fmt"

// Ellipsoid holds the reference ellipsoid of a datum.
type Ellipsoid struct {
	Name          string  `yaml:"name" json:"name"`
	SemiMajorAxis float64 `yaml:"semi_major_axis" json:"semi_major_axis"`
	InvFlattening float64 `yaml:"inverse_flattening" json:"inverse_flattening"`
}

// Reference ellipsoids.
var (
	WGS84Ellipsoid = Ellipsoid{Name: "WGS84", SemiMajorAxis: 6378137, InvFlattening: 298.257223563}
	GRS80Ellipsoid = Ellipsoid{Name: "GRS80", SemiMajorAxis: 6378137, InvFlattening: 298.257222101}
)

// SRID bases for UTM grids.
const (
	SRIDWGS84         = 4326
	SRIDBaseWGS84UTMN = 32600
	SRIDBaseWGS84UTMS = 32700
	SRIDBaseETRS89UTM = 25800
)

// UTMZone is a zone number with its hemisphere.
type UTMZone struct {
	Number     int        `json:"zone"`
	Hemisphere Hemisphere `json:"hemisphere"`
}

// String returns the zone as "30N".
func (z UTMZone) String() string {
	return fmt.Sprintf("%d%s", z.Number, z.Hemisphere)
}

// Validate checks zone number and hemisphere.
func (z UTMZone) Validate() error {
	if err := ValidateZone(z.Number); err != nil {
		return err
	}
	if !z.Hemisphere.IsValid() {
		return &ValidationError{
			Field:      "hemisphere",
			Value:      string(z.Hemisphere),
			Constraint: "N|S",
			Message:    "hemisphere must be N or S",
		}
	}
	return nil
}

// ZoneDefinition is the complete description of a UTM grid for one zone and hemisphere.
type ZoneDefinition struct {
	Zone       int
	Hemisphere Hemisphere
	Datum      string
	Ellipsoid  Ellipsoid
	Proj       string // proj4 definition string
	SRID       int    // EPSG code
	Region     string // human-readable area, empty for generic zones
}

// CentralMeridian returns the central meridian of the zone in degrees.
func (d ZoneDefinition) CentralMeridian() float64 {
	return float64(d.Zone*6 - 183)
}

// FalseNorthing returns the false northing of the hemisphere.
func (d ZoneDefinition) FalseNorthing() float64 {
	if d.Hemisphere == South {
		return 10_000_000
	}
	return 0
}

// UTMZone returns the zone and hemisphere of the definition.
func (d ZoneDefinition) UTMZone() UTMZone {
	return UTMZone{Number: d.Zone, Hemisphere: d.Hemisphere}
}

// DatumOverride replaces the generic WGS84 grid of one zone with a regional datum.
type DatumOverride struct {
	Zone      int       `yaml:"zone" json:"zone"`
	Datum     string    `yaml:"datum" json:"datum"`
	Ellipsoid Ellipsoid `yaml:"ellipsoid" json:"ellipsoid"`
	SRIDBase  int       `yaml:"srid_base" json:"srid_base"`
	Region    string    `yaml:"region" json:"region"`
}

// Validate checks that the override is usable.
func (o DatumOverride) Validate() error {
	if err := ValidateZone(o.Zone); err != nil {
		return err
	}
	if o.Datum == "" {
		return &ValidationError{Field: "datum", Value: o.Datum, Constraint: "non-empty", Message: "datum name is required"}
	}
	if o.Ellipsoid.SemiMajorAxis <= 0 || o.Ellipsoid.InvFlattening <= 0 {
		return &ValidationError{
			Field:      "ellipsoid",
			Value:      o.Ellipsoid,
			Constraint: "positive axis and inverse flattening",
			Message:    "ellipsoid parameters must be positive",
		}
	}
	return nil
}

// Define builds the zone definition of the override for a hemisphere.
func (o DatumOverride) Define(h Hemisphere) ZoneDefinition {
	south := ""
	if h == South {
		south = " +south"
	}
	// regional EPSG grids only exist north of the equator
	srid := 0
	if o.SRIDBase > 0 && h == North {
		srid = o.SRIDBase + o.Zone
	}
	ellps := fmt.Sprintf("+a=%g +rf=%g", o.Ellipsoid.SemiMajorAxis, o.Ellipsoid.InvFlattening)
	if o.Ellipsoid.Name != "" {
		ellps = "+ellps=" + o.Ellipsoid.Name
	}
	return ZoneDefinition{
		Zone:       o.Zone,
		Hemisphere: h,
		Datum:      o.Datum,
		Ellipsoid:  o.Ellipsoid,
		Proj: fmt.Sprintf("+proj=utm +zone=%d%s %s +towgs84=0,0,0,0,0,0,0 +units=m +no_defs",
			o.Zone, south, ellps),
		SRID:   srid,
		Region: o.Region,
	}
}

// GenericDefinition returns the WGS84 UTM grid of a zone and hemisphere.
func GenericDefinition(zone int, h Hemisphere) ZoneDefinition {
	south := ""
	base := SRIDBaseWGS84UTMN
	if h == South {
		south = " +south"
		base = SRIDBaseWGS84UTMS
	}
	return ZoneDefinition{
		Zone:       zone,
		Hemisphere: h,
		Datum:      DatumWGS84,
		Ellipsoid:  WGS84Ellipsoid,
		Proj:       fmt.Sprintf("+proj=utm +zone=%d%s +datum=WGS84 +units=m +no_defs", zone, south),
		SRID:       base + zone,
	}
}

// SpainOverrides returns the ETRS89 grids used for the Iberian peninsula and the Canaries.
func SpainOverrides() []DatumOverride {
	regions := map[int]string{
		28: "Western Canary Islands",
		29: "Galicia, Asturias, western León",
		30: "Central Spain (Madrid, Écija, Toledo)",
		31: "Catalonia, Valencia, Balearic Islands",
	}
	overrides := make([]DatumOverride, 0, len(regions))
	for zone := 28; zone <= 31; zone++ {
		overrides = append(overrides, DatumOverride{
			Zone:      zone,
			Datum:     DatumETRS89,
			Ellipsoid: GRS80Ellipsoid,
			SRIDBase:  SRIDBaseETRS89UTM,
			Region:    regions[zone],
		})
	}
	return overrides
}
