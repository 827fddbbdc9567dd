// Package metrics provides Prometheus metrics collection.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements the MetricsCollector port using Prometheus.
type Collector struct {
	registry *prometheus.Registry

	conversions        *prometheus.CounterVec
	conversionDuration *prometheus.HistogramVec
	batchRecords       *prometheus.CounterVec
	filesProcessed     *prometheus.CounterVec
}

// NewCollector creates a new Prometheus metrics collector on its own registry.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "georef"
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		conversions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conversions_total",
				Help:      "Total number of coordinate conversions",
			},
			[]string{"operation", "status"},
		),

		conversionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "conversion_duration_seconds",
				Help:      "Conversion duration in seconds",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
			},
			[]string{"operation"},
		),

		batchRecords: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batch_records_total",
				Help:      "Total number of batch records by coordinate source",
			},
			[]string{"source", "status"},
		),

		filesProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_processed_total",
				Help:      "Total number of converted coordinate files",
			},
			[]string{"status"},
		),
	}
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// IncConversions increments the conversion counter.
func (c *Collector) IncConversions(operation string, success bool) {
	c.conversions.WithLabelValues(operation, statusLabel(success)).Inc()
}

// ObserveConversionDuration records conversion duration.
func (c *Collector) ObserveConversionDuration(operation string, duration time.Duration) {
	c.conversionDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// IncBatchRecords increments the batch record counter.
func (c *Collector) IncBatchRecords(source string, success bool) {
	c.batchRecords.WithLabelValues(source, statusLabel(success)).Inc()
}

// IncFilesProcessed increments the processed file counter.
func (c *Collector) IncFilesProcessed(success bool) {
	c.filesProcessed.WithLabelValues(statusLabel(success)).Inc()
}

// WriteTextfile writes all metrics in the text exposition format, for the node
// exporter textfile collector. The file is replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
