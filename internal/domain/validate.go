package domain

// UTM range limits.
const (
	MinEasting  = 0.0
	MaxEasting  = 1_000_000.0
	MinNorthing = 0.0
	MaxNorthing = 10_000_000.0
	MinZone     = 1
	MaxZone     = 60
)

// IsValidUTM reports whether easting, northing and zone are inside the UTM grid.
// NaN never validates.
func IsValidUTM(easting, northing float64, zone int) bool {
	return easting >= MinEasting && easting <= MaxEasting &&
		northing >= MinNorthing && northing <= MaxNorthing &&
		zone >= MinZone && zone <= MaxZone
}

// IsValidGeo reports whether latitude and longitude are inside the WGS84 ranges.
// NaN never validates.
func IsValidGeo(latitude, longitude float64) bool {
	return latitude >= -90 && latitude <= 90 &&
		longitude >= -180 && longitude <= 180
}

// ValidateZone returns a ValidationError for zones outside [1, 60].
func ValidateZone(zone int) error {
	if zone < MinZone || zone > MaxZone {
		return &ValidationError{
			Field:      "zone",
			Value:      zone,
			Constraint: "[1, 60]",
			Message:    "UTM zone must be between 1 and 60",
		}
	}
	return nil
}
