// Package app provides application initialization and wiring.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jobrunner/georef/internal/adapters/csvfile"
	"github.com/jobrunner/georef/internal/adapters/datumfile"
	"github.com/jobrunner/georef/internal/adapters/geojson"
	"github.com/jobrunner/georef/internal/adapters/metrics"
	"github.com/jobrunner/georef/internal/adapters/projection"
	"github.com/jobrunner/georef/internal/adapters/watcher"
	"github.com/jobrunner/georef/internal/application"
	"github.com/jobrunner/georef/internal/config"
	"github.com/jobrunner/georef/internal/domain"
	"github.com/jobrunner/georef/internal/ports/output"
)

// Directories below the inbox that receive handled input files.
const (
	processedDir = "processed"
	failedDir    = "failed"
)

// App holds all application components.
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Resolver   *application.ZoneResolver
	Backend    output.Projector
	Projector  *application.GeodeticProjector
	Frame      *application.FrameTransformer
	Convention application.Convention
	Origin     *domain.ProjectOrigin
	Placements *application.PlacementService
	Batch      *application.BatchConverter
	Files      *application.FileConverter
	Watcher    *watcher.Watcher
	Metrics    *metrics.Collector
}

// New creates and initializes a new application.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize metrics
	var metricsCollector output.MetricsCollector = &output.NoOpMetrics{}
	if cfg.Metrics.Enabled {
		app.Metrics = metrics.NewCollector("georef")
		metricsCollector = app.Metrics
	}

	// Initialize zone resolver with built-in and file overrides
	overrides, err := datumfile.Builtin(cfg.Datums.Builtin)
	if err != nil {
		return nil, fmt.Errorf("loading datum table: %w", err)
	}
	if cfg.Datums.OverridesFile != "" {
		extra, err := datumfile.Load(cfg.Datums.OverridesFile)
		if err != nil {
			return nil, fmt.Errorf("loading datum overrides: %w", err)
		}
		overrides = append(overrides, extra...)
		logger.Debug("loaded datum overrides", "file", cfg.Datums.OverridesFile, "count", len(extra))
	}
	app.Resolver, err = application.NewZoneResolver(overrides...)
	if err != nil {
		return nil, fmt.Errorf("initializing zone resolver: %w", err)
	}

	// Initialize projection backend
	app.Backend, err = projection.New(cfg.Projection.Backend, projection.Options{
		SpatiaLiteLibrary: cfg.Projection.SpatiaLiteLibrary,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing projection backend: %w", err)
	}
	app.Projector = application.NewGeodeticProjector(app.Resolver, app.Backend, metricsCollector)

	// Initialize project frame
	app.Convention, err = application.ParseConvention(cfg.Frame.Convention)
	if err != nil {
		return nil, err
	}
	app.Origin, err = cfg.Frame.ProjectOrigin()
	if err != nil {
		return nil, fmt.Errorf("project origin: %w", err)
	}
	app.Frame = application.NewFrameTransformer()

	// Initialize conversion services
	app.Placements = application.NewPlacementService(app.Projector, app.Frame, app.Convention)
	app.Batch = application.NewBatchConverter(app.Placements, app.Origin, cfg.Batch.Workers, metricsCollector)

	sep, err := cfg.Batch.SeparatorRune()
	if err != nil {
		return nil, err
	}
	encoders := []output.PlacementEncoder{csvfile.NewEncoder(sep)}
	if cfg.Watch.GeoJSON {
		encoders = append(encoders, geojson.NewEncoder(true))
	}
	app.Files = application.NewFileConverter(app.Batch, csvfile.NewDecoder(0), encoders, metricsCollector, logger)

	logger.Debug("application initialized",
		"backend", app.Backend.Name(),
		"convention", app.Convention,
		"origin", app.Origin != nil,
		"override_zones", len(app.Resolver.Regions()),
	)

	return app, nil
}

// Watch converts files arriving in the inbox until ctx is canceled.
func (a *App) Watch(ctx context.Context) error {
	inbox := a.Config.Watch.Inbox
	for _, dir := range []string{inbox, a.Config.Watch.Outbox, filepath.Join(inbox, processedDir), filepath.Join(inbox, failedDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	w, err := watcher.New(
		watcher.Config{
			Paths:      []string{inbox},
			Extensions: a.Config.Watch.Extensions,
			Debounce:   a.Config.Watch.Debounce,
		},
		a.handleFile,
		a.Logger,
	)
	if err != nil {
		return fmt.Errorf("initializing file watcher: %w", err)
	}
	a.Watcher = w

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}

	<-ctx.Done()
	a.Logger.Info("stopping file watcher")
	return w.Stop()
}

// handleFile converts one inbox file and moves it out of the inbox.
func (a *App) handleFile(ctx context.Context, path string) error {
	result, err := a.Files.ConvertFile(ctx, path, a.Config.Watch.Outbox)

	target := processedDir
	if err != nil {
		target = failedDir
	}
	if application.IsCanceled(err) {
		// left in the inbox for the next run
		return err
	}
	dest := filepath.Join(filepath.Dir(path), target, filepath.Base(path))
	if mvErr := os.Rename(path, dest); mvErr != nil {
		a.Logger.Warn("failed to move input file", "path", path, "target", dest, "error", mvErr)
	}

	a.FlushMetrics()

	if err != nil {
		return err
	}
	a.Logger.Debug("file outputs", "path", path, "outputs", result.Outputs)
	return nil
}

// FlushMetrics writes the metrics textfile when configured.
func (a *App) FlushMetrics() {
	if a.Metrics == nil || a.Config.Metrics.Textfile == "" {
		return
	}
	if err := a.Metrics.WriteTextfile(a.Config.Metrics.Textfile); err != nil {
		a.Logger.Warn("failed to write metrics", "path", a.Config.Metrics.Textfile, "error", err)
	}
}

// Shutdown releases all components.
func (a *App) Shutdown(_ context.Context) error {
	a.FlushMetrics()

	if c, ok := a.Backend.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.Logger.Error("projection backend shutdown error", "error", err)
			return err
		}
	}
	return nil
}
