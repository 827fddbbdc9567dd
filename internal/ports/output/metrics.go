package output

import "time"

// MetricsCollector defines the secondary port for metrics collection.
type MetricsCollector interface {
	// IncConversions increments the conversion counter for an operation.
	IncConversions(operation string, success bool)

	// ObserveConversionDuration records conversion duration.
	ObserveConversionDuration(operation string, duration time.Duration)

	// IncBatchRecords increments the batch record counter by source kind.
	IncBatchRecords(source string, success bool)

	// IncFilesProcessed increments the processed file counter.
	IncFilesProcessed(success bool)
}

// NoOpMetrics is a no-op implementation of MetricsCollector.
type NoOpMetrics struct{}

// IncConversions implements MetricsCollector.
func (n *NoOpMetrics) IncConversions(_ string, _ bool) {}

// ObserveConversionDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveConversionDuration(_ string, _ time.Duration) {}

// IncBatchRecords implements MetricsCollector.
func (n *NoOpMetrics) IncBatchRecords(_ string, _ bool) {}

// IncFilesProcessed implements MetricsCollector.
func (n *NoOpMetrics) IncFilesProcessed(_ bool) {}
