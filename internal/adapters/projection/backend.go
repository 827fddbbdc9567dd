package projection

import (
	"fmt"
	"math"

	"github.com/jobrunner/georef/internal/domain"
	"github.com/jobrunner/georef/internal/ports/output"
)

// Backend names.
const (
	BackendKruger     = "kruger"
	BackendUTM        = "utm"
	BackendSpatiaLite = "spatialite"
)

// Options configures backend construction.
type Options struct {
	// SpatiaLiteLibrary is the mod_spatialite path; empty probes the usual locations.
	SpatiaLiteLibrary string
}

// New creates the named backend. Backends holding resources implement io.Closer.
func New(name string, opts Options) (output.Projector, error) {
	switch name {
	case BackendKruger, "":
		return NewKruger(), nil
	case BackendUTM:
		return NewUTM(), nil
	case BackendSpatiaLite:
		return NewSpatiaLite(opts.SpatiaLiteLibrary)
	}
	return nil, fmt.Errorf("%q: %w", name, domain.ErrUnknownBackend)
}

// Names returns all backend names.
func Names() []string {
	return []string{BackendKruger, BackendUTM, BackendSpatiaLite}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
