package application

import (
	"fmt"
	"math"

	"github.com/jobrunner/georef/internal/domain"
)

// Default display precisions.
const (
	DefaultUTMPrecision   = 2
	DefaultGeoPrecision   = 6
	DefaultLocalPrecision = 3
)

// FormatUTM renders a UTM coordinate as "ETRS89 / UTM zone 30N: 316700.25E, 4156890.10N".
// A negative precision selects DefaultUTMPrecision. Display only.
func FormatUTM(c domain.UTMCoordinate, precision int) string {
	if precision < 0 {
		precision = DefaultUTMPrecision
	}
	datum := c.Datum
	if datum == "" {
		datum = domain.DatumWGS84
	}
	return fmt.Sprintf("%s / UTM zone %d%s: %.*fE, %.*fN",
		datum, c.Zone, c.Hemisphere, precision, c.Easting, precision, c.Northing)
}

// FormatGeo renders latitude and longitude with hemisphere suffixes, e.g.
// "37.542500°N, 5.082500°W". A negative precision selects DefaultGeoPrecision.
func FormatGeo(lat, lng float64, precision int) string {
	if precision < 0 {
		precision = DefaultGeoPrecision
	}
	latDir := "N"
	if lat < 0 {
		latDir = "S"
	}
	lngDir := "E"
	if lng < 0 {
		lngDir = "W"
	}
	return fmt.Sprintf("%.*f°%s, %.*f°%s",
		precision, math.Abs(lat), latDir, precision, math.Abs(lng), lngDir)
}

// FormatLocal renders a project-frame coordinate. A negative precision selects
// DefaultLocalPrecision.
func FormatLocal(l domain.LocalCoordinate, precision int) string {
	if precision < 0 {
		precision = DefaultLocalPrecision
	}
	return fmt.Sprintf("x=%.*f y=%.*f z=%.*f", precision, l.X, precision, l.Y, precision, l.Z)
}
