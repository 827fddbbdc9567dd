package projection

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-sqlite3"

	"github.com/jobrunner/georef/internal/domain"
)

const spatiaLiteEntryPoint = "sqlite3_modspatialite_init"

// spatiaLiteLibraryPaths returns a list of paths to try for loading SpatiaLite.
// An explicit path wins, then the environment variable, then platform-specific paths.
func spatiaLiteLibraryPaths(explicit string) []string {
	if explicit != "" {
		return []string{explicit}
	}
	if envPath := os.Getenv("SPATIALITE_LIBRARY_PATH"); envPath != "" {
		return []string{envPath}
	}
	return []string{
		// Alpine Linux (Docker containers)
		"/usr/lib/mod_spatialite.so",
		"/usr/lib/mod_spatialite.so.8",

		// Debian/Ubuntu amd64
		"/usr/lib/x86_64-linux-gnu/mod_spatialite.so",
		"/usr/lib/x86_64-linux-gnu/mod_spatialite.so.8",

		// Debian/Ubuntu arm64
		"/usr/lib/aarch64-linux-gnu/mod_spatialite.so",
		"/usr/lib/aarch64-linux-gnu/mod_spatialite.so.8",

		// macOS Homebrew
		"/usr/local/lib/mod_spatialite.dylib",
		"/opt/homebrew/lib/mod_spatialite.dylib",

		// resolved through the loader search path
		"mod_spatialite",
	}
}

// ErrSpatiaLiteUnavailable is returned when no SpatiaLite library could be loaded.
var ErrSpatiaLiteUnavailable = errors.New("spatialite extension not available")

// connector opens SQLite connections through a private driver instance, so the
// extension list does not need a globally registered driver name.
type connector struct {
	drv *sqlite3.SQLiteDriver
	dsn string
}

func (c connector) Connect(_ context.Context) (driver.Conn, error) {
	return c.drv.Open(c.dsn)
}

func (c connector) Driver() driver.Driver {
	return c.drv
}

// SpatiaLite projects with SpatiaLite's Transform() on an in-memory database.
// Grids are addressed by EPSG code, so definitions without an SRID are unsupported.
type SpatiaLite struct {
	db      *sql.DB
	version string
}

// NewSpatiaLite opens an in-memory SpatiaLite database and initializes its
// spatial_ref_sys table.
func NewSpatiaLite(library string) (*SpatiaLite, error) {
	paths := spatiaLiteLibraryPaths(library)
	drv := &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			var errs []error
			for _, p := range paths {
				err := conn.LoadExtension(p, spatiaLiteEntryPoint)
				if err == nil {
					return nil
				}
				errs = append(errs, fmt.Errorf("%s: %w", p, err))
			}
			return fmt.Errorf("%w: %w", ErrSpatiaLiteUnavailable, errors.Join(errs...))
		},
	}

	db := sql.OpenDB(connector{drv: drv, dsn: ":memory:"})
	// every :memory: connection is a separate database
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	s := &SpatiaLite{db: db}
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SpatiaLite) init(ctx context.Context) error {
	if err := s.db.QueryRowContext(ctx, "SELECT spatialite_version()").Scan(&s.version); err != nil {
		if errors.Is(err, ErrSpatiaLiteUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrSpatiaLiteUnavailable, err)
	}
	var ok int
	if err := s.db.QueryRowContext(ctx, "SELECT InitSpatialMetaData(1)").Scan(&ok); err != nil {
		return fmt.Errorf("initializing spatial metadata: %w", err)
	}
	if ok != 1 {
		return errors.New("initializing spatial metadata failed")
	}
	return nil
}

// Name implements output.Projector.
func (s *SpatiaLite) Name() string {
	return BackendSpatiaLite
}

// Version returns the loaded SpatiaLite version.
func (s *SpatiaLite) Version() string {
	return s.version
}

// Close releases the database.
func (s *SpatiaLite) Close() error {
	return s.db.Close()
}

// Forward implements output.Projector.
func (s *SpatiaLite) Forward(ctx context.Context, geo domain.GeoCoordinate, def domain.ZoneDefinition) (float64, float64, error) {
	if def.SRID == 0 {
		return 0, 0, fmt.Errorf("zone %s %s has no EPSG code: %w", def.UTMZone(), def.Datum, domain.ErrUnsupported)
	}
	return s.transform(ctx, geo.Longitude, geo.Latitude, domain.SRIDWGS84, def.SRID)
}

// Inverse implements output.Projector.
func (s *SpatiaLite) Inverse(ctx context.Context, easting, northing float64, def domain.ZoneDefinition) (float64, float64, error) {
	if def.SRID == 0 {
		return 0, 0, fmt.Errorf("zone %s %s has no EPSG code: %w", def.UTMZone(), def.Datum, domain.ErrUnsupported)
	}
	lng, lat, err := s.transform(ctx, easting, northing, def.SRID, domain.SRIDWGS84)
	if err != nil {
		return 0, 0, err
	}
	return lat, lng, nil
}

// IsSupported checks that both SRIDs are known to spatial_ref_sys.
func (s *SpatiaLite) IsSupported(ctx context.Context, sourceSRID, targetSRID int) bool {
	query := `
		SELECT COUNT(*)
		FROM spatial_ref_sys
		WHERE srid IN (?, ?)
	`
	var count int
	if err := s.db.QueryRowContext(ctx, query, sourceSRID, targetSRID).Scan(&count); err != nil {
		return false
	}
	return count == 2
}

func (s *SpatiaLite) transform(ctx context.Context, x, y float64, sourceSRID, targetSRID int) (float64, float64, error) {
	query := `SELECT X(g), Y(g) FROM (SELECT Transform(GeomFromText(?, ?), ?) AS g)`

	wkt := fmt.Sprintf("POINT(%.12f %.12f)", x, y)
	var tx, ty sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, query, wkt, sourceSRID, targetSRID).Scan(&tx, &ty); err != nil {
		return 0, 0, fmt.Errorf("transforming %d to %d: %w", sourceSRID, targetSRID, err)
	}
	if !tx.Valid || !ty.Valid {
		if !s.IsSupported(ctx, sourceSRID, targetSRID) {
			return 0, 0, fmt.Errorf("transforming %d to %d: srid not in spatial_ref_sys: %w", sourceSRID, targetSRID, domain.ErrUnsupported)
		}
		return 0, 0, fmt.Errorf("transforming %d to %d: transform returned null", sourceSRID, targetSRID)
	}
	return tx.Float64, ty.Float64, nil
}
