package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jobrunner/georef/internal/domain"
	"github.com/jobrunner/georef/internal/ports/input"
	"github.com/jobrunner/georef/internal/ports/output"
)

// DefaultBatchWorkers is used when a non-positive worker count is configured.
const DefaultBatchWorkers = 4

// BatchConverter places many records concurrently.
type BatchConverter struct {
	placements *PlacementService
	origin     *domain.ProjectOrigin
	workers    int
	metrics    output.MetricsCollector
}

var _ input.BatchConverter = (*BatchConverter)(nil)

// NewBatchConverter creates a batch converter. origin may be nil.
func NewBatchConverter(placements *PlacementService, origin *domain.ProjectOrigin, workers int, metrics output.MetricsCollector) *BatchConverter {
	if workers <= 0 {
		workers = DefaultBatchWorkers
	}
	if metrics == nil {
		metrics = &output.NoOpMetrics{}
	}
	return &BatchConverter{
		placements: placements,
		origin:     origin,
		workers:    workers,
		metrics:    metrics,
	}
}

// Origin returns the project origin used for local coordinates.
func (b *BatchConverter) Origin() *domain.ProjectOrigin {
	return b.origin
}

// ConvertAll places every record. The result has the same order as records.
// Per-record failures are kept in each Placement's Issues; the returned error is
// only set when ctx is canceled, in which case the result is nil.
func (b *BatchConverter) ConvertAll(ctx context.Context, records []domain.RawRecord) ([]domain.Placement, error) {
	out := make([]domain.Placement, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i := range records {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p := b.placements.PlaceRecord(gctx, records[i], b.origin)
			b.metrics.IncBatchRecords(string(sourceLabel(p)), !p.HasIssues())
			out[i] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func sourceLabel(p domain.Placement) domain.SourceKind {
	if p.Source == "" {
		return "none"
	}
	return p.Source
}

// FileResult summarizes a converted file.
type FileResult struct {
	Input    string        `json:"input"`
	Outputs  []string      `json:"outputs"`
	Records  int           `json:"records"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// FileConverter reads coordinate files, converts them and writes one output per encoder.
type FileConverter struct {
	batch    *BatchConverter
	decoder  output.RecordDecoder
	encoders []output.PlacementEncoder
	metrics  output.MetricsCollector
	logger   *slog.Logger
}

// NewFileConverter creates a file converter.
func NewFileConverter(batch *BatchConverter, decoder output.RecordDecoder, encoders []output.PlacementEncoder, metrics output.MetricsCollector, logger *slog.Logger) *FileConverter {
	if metrics == nil {
		metrics = &output.NoOpMetrics{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &FileConverter{
		batch:    batch,
		decoder:  decoder,
		encoders: encoders,
		metrics:  metrics,
		logger:   logger,
	}
}

// Convert decodes r and converts every record.
func (c *FileConverter) Convert(ctx context.Context, r io.Reader) ([]domain.Placement, error) {
	records, err := c.decoder.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding records: %w", err)
	}
	return c.batch.ConvertAll(ctx, records)
}

// ConvertFile converts the file at path and writes <name>.<ext> into outDir for
// every encoder.
func (c *FileConverter) ConvertFile(ctx context.Context, path, outDir string) (result *FileResult, err error) {
	start := time.Now()
	defer func() {
		c.metrics.IncFilesProcessed(err == nil)
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	placements, err := c.Convert(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	result = &FileResult{Input: path, Records: len(placements)}
	for _, p := range placements {
		if p.HasIssues() {
			result.Failed++
			c.logger.Debug("record not fully placed", "file", path, "name", p.Name, "error", p.Err())
		}
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, enc := range c.encoders {
		target := filepath.Join(outDir, base+enc.Extension())
		if err := writeEncoded(target, enc, placements); err != nil {
			return nil, err
		}
		result.Outputs = append(result.Outputs, target)
	}
	result.Duration = time.Since(start)

	c.logger.Info("converted file",
		"file", path,
		"records", result.Records,
		"failed", result.Failed,
		"duration", result.Duration,
	)
	return result, nil
}

func writeEncoded(target string, enc output.PlacementEncoder, placements []domain.Placement) (err error) {
	tmp := target + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmp, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if err := enc.Encode(f, placements); err != nil {
		_ = f.Close()
		return fmt.Errorf("encoding %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return nil
}

// IsCanceled reports whether err stems from context cancellation.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
