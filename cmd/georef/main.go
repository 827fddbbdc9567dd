// Package main provides the entry point for the georef coordinate tool.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jobrunner/georef/internal/app"
	"github.com/jobrunner/georef/internal/config"
	"github.com/jobrunner/georef/internal/domain"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var (
	cfgFile    string
	jsonOutput bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "georef",
	Short: "georef - UTM and project frame coordinate conversion",
	Long: `georef converts panorama and survey coordinates between WGS84,
UTM and a rotated project-local frame.

Features:
  - Zone resolution with ETRS89 grids for Spain
  - WGS84 <-> UTM through Krüger series, UTM or SpatiaLite backends
  - Project frame conversion (approx and meters conventions)
  - Batch conversion of CSV files to CSV and GeoJSON
  - Inbox watching with Prometheus textfile metrics`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("georef %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Build Date: %s\n", buildDate)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Convert files dropped into the inbox directory",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (json, text)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")

	// Projection flags
	rootCmd.PersistentFlags().String("backend", "kruger", "projection backend (kruger, utm, spatialite)")
	rootCmd.PersistentFlags().String("datums", "spain", "built-in datum table (spain, none)")
	rootCmd.PersistentFlags().String("datum-file", "", "YAML file with additional datum overrides")

	// Frame flags
	rootCmd.PersistentFlags().String("convention", "approx", "project frame convention (approx, meters)")
	rootCmd.PersistentFlags().Float64("origin-lat", 0, "project origin latitude")
	rootCmd.PersistentFlags().Float64("origin-lon", 0, "project origin longitude")
	rootCmd.PersistentFlags().Float64("rotation", 0, "project frame rotation in degrees")

	// Watch flags
	watchCmd.Flags().String("inbox", "./inbox", "directory to watch for input files")
	watchCmd.Flags().String("outbox", "./outbox", "directory for converted files")
	watchCmd.Flags().Duration("debounce", 500*time.Millisecond, "quiet period before a file is converted")
	watchCmd.Flags().String("metrics-textfile", "", "write Prometheus metrics to this file")

	// Bind flags to viper
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("projection.backend", rootCmd.PersistentFlags().Lookup("backend"))
	_ = viper.BindPFlag("datums.builtin", rootCmd.PersistentFlags().Lookup("datums"))
	_ = viper.BindPFlag("datums.overrides_file", rootCmd.PersistentFlags().Lookup("datum-file"))
	_ = viper.BindPFlag("frame.convention", rootCmd.PersistentFlags().Lookup("convention"))
	_ = viper.BindPFlag("frame.origin.latitude", rootCmd.PersistentFlags().Lookup("origin-lat"))
	_ = viper.BindPFlag("frame.origin.longitude", rootCmd.PersistentFlags().Lookup("origin-lon"))
	_ = viper.BindPFlag("frame.origin.rotation", rootCmd.PersistentFlags().Lookup("rotation"))
	_ = viper.BindPFlag("watch.inbox", watchCmd.Flags().Lookup("inbox"))
	_ = viper.BindPFlag("watch.outbox", watchCmd.Flags().Lookup("outbox"))
	_ = viper.BindPFlag("watch.debounce", watchCmd.Flags().Lookup("debounce"))
	_ = viper.BindPFlag("metrics.textfile", watchCmd.Flags().Lookup("metrics-textfile"))

	rootCmd.AddCommand(
		zoneCmd,
		toUTMCmd,
		toGeoCmd,
		toLocalCmd,
		fromLocalCmd,
		distanceCmd,
		batchCmd,
		watchCmd,
		regionsCmd,
		versionCmd,
	)
}

func initConfig() {
	config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// newApp loads the configuration and wires the application for one command.
func newApp(cmd *cobra.Command) (*app.App, error) {
	flags := cmd.Flags()
	enableOrigin, partialOrigin := originFlags(cmd)
	if enableOrigin {
		viper.Set("frame.origin.enabled", true)
	}
	if flags.Changed("metrics-textfile") {
		viper.Set("metrics.enabled", true)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := checkOriginFlags(partialOrigin, cfg); err != nil {
		return nil, err
	}

	// Results go to stdout, so logs go to stderr
	logger := setupLogger(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)

	application, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing application: %w", err)
	}
	return application, nil
}

// originFlags reports whether the command line names a complete origin and whether
// it sets only some of the origin flags.
func originFlags(cmd *cobra.Command) (complete, partial bool) {
	flags := cmd.Flags()
	lat, lon := flags.Changed("origin-lat"), flags.Changed("origin-lon")
	complete = lat && lon
	partial = !complete && (lat || lon || flags.Changed("rotation"))
	return complete, partial
}

// checkOriginFlags rejects partial origin flags unless the configuration already
// provides an origin for them to refine.
func checkOriginFlags(partial bool, cfg *config.Config) error {
	if partial && !cfg.Frame.Origin.Enabled {
		return &domain.ConfigError{
			Field:   "frame.origin",
			Message: "--origin-lat and --origin-lon are both required to set a project origin",
		}
	}
	return nil
}

func runWatch(cmd *cobra.Command, _ []string) error {
	application, err := newApp(cmd)
	if err != nil {
		return err
	}
	logger := application.Logger
	cfg := application.Config

	logger.Info("starting georef",
		"version", version,
		"backend", cfg.Projection.Backend,
		"inbox", cfg.Watch.Inbox,
		"outbox", cfg.Watch.Outbox,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- application.Watch(ctx)
	}()

	// Wait for shutdown signal or watcher error
	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
		err = <-watchErr
	case err = <-watchErr:
		if err != nil {
			logger.Error("watcher error", "error", err)
		}
	}

	logger.Info("shutting down")
	if shutdownErr := application.Shutdown(context.Background()); shutdownErr != nil {
		logger.Error("shutdown error", "error", shutdownErr)
		if err == nil {
			err = shutdownErr
		}
	}

	logger.Info("stopped")
	return err
}

func setupLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(time.Now().UTC().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
