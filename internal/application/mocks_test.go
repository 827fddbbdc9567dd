package application

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/jobrunner/georef/internal/domain"
	"github.com/jobrunner/georef/internal/ports/output"
)

// mockProjector implements output.Projector for testing. Forward maps degrees to
// meters linearly around the zone's central meridian so results are predictable.
type mockProjector struct {
	forwardErr error
	inverseErr error
	nan        bool

	mu       sync.Mutex
	forwards []domain.ZoneDefinition
	inverses []domain.ZoneDefinition
}

const mockMetersPerDegree = 100000.0

func (m *mockProjector) Forward(ctx context.Context, geo domain.GeoCoordinate, def domain.ZoneDefinition) (float64, float64, error) {
	m.mu.Lock()
	m.forwards = append(m.forwards, def)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	if m.forwardErr != nil {
		return 0, 0, m.forwardErr
	}
	if m.nan {
		return nanValue(), 0, nil
	}
	e := 500000 + (geo.Longitude-def.CentralMeridian())*mockMetersPerDegree
	n := def.FalseNorthing() + geo.Latitude*mockMetersPerDegree
	return e, n, nil
}

func (m *mockProjector) Inverse(ctx context.Context, easting, northing float64, def domain.ZoneDefinition) (float64, float64, error) {
	m.mu.Lock()
	m.inverses = append(m.inverses, def)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	if m.inverseErr != nil {
		return 0, 0, m.inverseErr
	}
	lat := (northing - def.FalseNorthing()) / mockMetersPerDegree
	lng := def.CentralMeridian() + (easting-500000)/mockMetersPerDegree
	return lat, lng, nil
}

func (m *mockProjector) Name() string {
	return "mock"
}

func (m *mockProjector) lastForward() domain.ZoneDefinition {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.forwards[len(m.forwards)-1]
}

func nanValue() float64 {
	var zero float64
	return zero / zero
}

var errBackend = errors.New("backend failure")

// mockMetrics records calls to output.MetricsCollector.
type mockMetrics struct {
	mu          sync.Mutex
	conversions map[string]int
	failures    map[string]int
	durations   int
	records     map[string]int
	files       map[bool]int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{
		conversions: make(map[string]int),
		failures:    make(map[string]int),
		records:     make(map[string]int),
		files:       make(map[bool]int),
	}
}

func (m *mockMetrics) IncConversions(operation string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversions[operation]++
	if !success {
		m.failures[operation]++
	}
}

func (m *mockMetrics) ObserveConversionDuration(_ string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations++
}

func (m *mockMetrics) IncBatchRecords(source string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := source + ":ok"
	if !success {
		key = source + ":failed"
	}
	m.records[key]++
}

func (m *mockMetrics) IncFilesProcessed(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[success]++
}

// mockDecoder implements output.RecordDecoder for testing.
type mockDecoder struct {
	records []domain.RawRecord
	err     error
}

func (m *mockDecoder) Decode(r io.Reader) ([]domain.RawRecord, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}
	return m.records, m.err
}

// mockEncoder implements output.PlacementEncoder by writing one name per line.
type mockEncoder struct {
	ext string
	err error
}

func (m *mockEncoder) Encode(w io.Writer, placements []domain.Placement) error {
	if m.err != nil {
		return m.err
	}
	for _, p := range placements {
		if _, err := io.WriteString(w, p.Name+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockEncoder) Extension() string {
	return m.ext
}

var (
	_ output.Projector        = (*mockProjector)(nil)
	_ output.MetricsCollector = (*mockMetrics)(nil)
	_ output.RecordDecoder    = (*mockDecoder)(nil)
	_ output.PlacementEncoder = (*mockEncoder)(nil)
)

func ptr[T any](v T) *T {
	return &v
}
