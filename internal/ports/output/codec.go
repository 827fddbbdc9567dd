package output

import (
	"io"

	"github.com/jobrunner/georef/internal/domain"
)

// RecordDecoder defines the secondary port for reading coordinate files.
type RecordDecoder interface {
	// Decode reads all records from r.
	Decode(r io.Reader) ([]domain.RawRecord, error)
}

// PlacementEncoder defines the secondary port for writing converted coordinates.
type PlacementEncoder interface {
	// Encode writes all placements to w.
	Encode(w io.Writer, placements []domain.Placement) error

	// Extension returns the file extension including the dot.
	Extension() string
}
