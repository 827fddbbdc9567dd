// Package output defines the secondary/driven ports of the application.
package output

import (
	"context"

	"github.com/jobrunner/georef/internal/domain"
)

// Projector defines the secondary port for Transverse Mercator computations.
// Implementations receive validated input and a fully resolved zone definition,
// and return raw (unrounded) values.
type Projector interface {
	// Forward projects a geographic coordinate into the grid described by def.
	Forward(ctx context.Context, geo domain.GeoCoordinate, def domain.ZoneDefinition) (easting, northing float64, err error)

	// Inverse converts grid coordinates of def back to latitude and longitude.
	Inverse(ctx context.Context, easting, northing float64, def domain.ZoneDefinition) (latitude, longitude float64, err error)

	// Name returns the backend identifier used in logs and metrics.
	Name() string
}
