// Package ports defines the interfaces between the scoring core and the
// infrastructure that feeds it records and persists its output.
package ports

import (
	"context"
	"time"

	"github.com/one-acre-fund/application-score-card/internal/domain"
)

// Document is one raw assessment record as delivered by a RecordSource.
type Document struct {
	// Source identifies the document for error reporting, for example the
	// file path it was read from.
	Source string

	// Data holds the raw JSON bytes.
	Data []byte

	// Err is set when the document could not be read. A document with a
	// non-nil Err carries no usable Data.
	Err error
}

// RecordSource delivers a snapshot of assessment documents.
// Implementations could read a directory, an object store, or fixtures.
type RecordSource interface {
	// Load returns every document in the snapshot. Failures that affect a
	// single document are reported on that document's Err field; the
	// returned error is reserved for failures of the source as a whole,
	// such as a missing directory.
	Load(ctx context.Context) ([]Document, error)
}

// RecordSink persists the aggregated, already sorted output.
type RecordSink interface {
	// Write replaces the persisted output with records.
	Write(ctx context.Context, records []domain.NormalizedRecord) error
}

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus, OpenTelemetry, or custom monitoring solutions.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// This is useful for tracking events like processed records or findings.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	// This is useful for tracking distributions like overall scores.
	RecordHistogram(metric string, value float64, labels map[string]string)
}
