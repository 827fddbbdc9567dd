package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jobrunner/georef/internal/config"
	"github.com/jobrunner/georef/internal/domain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Projection: config.ProjectionConfig{Backend: "kruger"},
		Datums:     config.DatumsConfig{Builtin: "spain"},
		Frame: config.FrameConfig{
			Convention: "approx",
			Origin:     config.OriginConfig{Enabled: true, Latitude: 37.5425, Longitude: -5.0825},
		},
		Batch: config.BatchConfig{Workers: 2, Separator: ","},
		Watch: config.WatchConfig{
			Inbox:    filepath.Join(dir, "inbox"),
			Outbox:   filepath.Join(dir, "outbox"),
			Debounce: 20 * time.Millisecond,
			GeoJSON:  true,
		},
		Metrics: config.MetricsConfig{Enabled: true, Textfile: filepath.Join(dir, "georef.prom")},
		Logging: config.LoggingConfig{Level: "error", Format: "text"},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewWiresComponents(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(context.Background(), cfg, discardLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Shutdown(context.Background())

	if a.Backend.Name() != "kruger" {
		t.Errorf("backend = %q, want kruger", a.Backend.Name())
	}
	if a.Origin == nil {
		t.Fatal("origin should be configured")
	}
	if got := a.Resolver.DatumFor(30); got != domain.DatumETRS89 {
		t.Errorf("DatumFor(30) = %q, want ETRS89", got)
	}

	utm, err := a.Projector.ToUTM(context.Background(), a.Origin.Geo(), 0)
	if err != nil {
		t.Fatalf("ToUTM() error = %v", err)
	}
	if utm.Zone != 30 || utm.Datum != domain.DatumETRS89 {
		t.Errorf("ToUTM(origin) = %+v", utm)
	}
}

func TestNewWithOverridesFile(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "datums.yaml")
	content := "overrides:\n  - zone: 32\n    datum: ETRS89\n    ellipsoid: GRS80\n    srid_base: 25800\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.Datums.OverridesFile = path

	a, err := New(context.Background(), cfg, discardLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if len(a.Resolver.Regions()) != 5 {
		t.Errorf("len(Regions()) = %d, want 5", len(a.Resolver.Regions()))
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown datum table", func(c *config.Config) { c.Datums.Builtin = "atlantis" }},
		{"missing overrides file", func(c *config.Config) { c.Datums.OverridesFile = "/nonexistent/datums.yaml" }},
		{"unknown backend", func(c *config.Config) { c.Projection.Backend = "proj4" }},
		{"unknown convention", func(c *config.Config) { c.Frame.Convention = "feet" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)
			if _, err := New(context.Background(), cfg, discardLogger()); err == nil {
				t.Error("New() expected error")
			}
		})
	}
}

func TestWatchConvertsInboxFiles(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(context.Background(), cfg, discardLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := os.MkdirAll(cfg.Watch.Inbox, 0o755); err != nil {
		t.Fatal(err)
	}
	input := "name,lat,lon\necija,37.5425,-5.0825\nmadrid,40.4168,-3.7038\n"
	if err := os.WriteFile(filepath.Join(cfg.Watch.Inbox, "points.csv"), []byte(input), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Watch(ctx) }()

	outCSV := filepath.Join(cfg.Watch.Outbox, "points.csv")
	moved := filepath.Join(cfg.Watch.Inbox, processedDir, "points.csv")
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(moved); err == nil {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("timed out waiting for conversion")
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() error = %v", err)
	}

	data, err := os.ReadFile(outCSV)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.Contains(string(data), "ecija") || !strings.Contains(string(data), "30N") {
		t.Errorf("unexpected output:\n%s", data)
	}
	if _, err := os.Stat(filepath.Join(cfg.Watch.Outbox, "points.geojson")); err != nil {
		t.Errorf("geojson output missing: %v", err)
	}

	prom, err := os.ReadFile(cfg.Metrics.Textfile)
	if err != nil {
		t.Fatalf("reading metrics: %v", err)
	}
	if !strings.Contains(string(prom), "georef_files_processed_total") {
		t.Errorf("metrics textfile missing file counter:\n%s", prom)
	}
}
