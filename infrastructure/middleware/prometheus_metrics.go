// Package middleware provides cross-cutting concerns for scorecard batches:
// Prometheus metrics and OpenTelemetry tracing.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/one-acre-fund/application-score-card/internal/ports"
)

const (
	metricRecordsTotal  = "records_total"
	metricFindingsTotal = "findings_total"
	metricOverallScore  = "overall_score_percent"

	unknownLabel = "unknown"
)

// PrometheusMetrics implements the MetricsCollector interface using Prometheus.
// It tracks how many records each stage processed, the findings validation
// produced, and the distribution of overall scores.
type PrometheusMetrics struct {
	recordsTotal   *prometheus.CounterVec
	findingsTotal  *prometheus.CounterVec
	overallScore   *prometheus.HistogramVec
	stageDuration  *prometheus.HistogramVec
	batchState     *prometheus.GaugeVec
	operationTotal *prometheus.CounterVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and registers its
// collectors with reg. A nil reg registers with the default registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		recordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scorecard_records_total",
				Help: "Total number of records processed, by stage and outcome.",
			},
			[]string{"stage", "status"},
		),
		findingsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scorecard_findings_total",
				Help: "Total number of validation findings, by severity.",
			},
			[]string{"severity"},
		),
		overallScore: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scorecard_overall_score_percent",
				Help:    "Distribution of rounded overall score percentages.",
				Buckets: []float64{30, 50, 70, 80, 90, 100},
			},
			[]string{"kind"},
		),
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scorecard_stage_duration_seconds",
				Help:    "Execution time of each batch stage.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		batchState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "scorecard_batch_state",
				Help: "State values of the most recent batch, such as failed records per stage.",
			},
			[]string{"metric", "stage"},
		),
		operationTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scorecard_operations_total",
				Help: "Counters that have no dedicated collector.",
			},
			[]string{"operation"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// stage duration in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	stage, ok := labels["stage"]
	if !ok {
		stage = operation
	}
	pm.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	if value < 0 {
		return
	}

	switch metric {
	case metricRecordsTotal:
		pm.recordsTotal.WithLabelValues(
			labelOr(labels, "stage"),
			labelOr(labels, "status"),
		).Add(value)
	case metricFindingsTotal:
		pm.findingsTotal.WithLabelValues(labelOr(labels, "severity")).Add(value)
	default:
		pm.operationTotal.WithLabelValues(metric).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	pm.batchState.WithLabelValues(metric, labelOr(labels, "stage")).Set(value)
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case metricOverallScore:
		pm.overallScore.WithLabelValues(labelOr(labels, "kind")).Observe(value)
	default:
		// Other distributions are treated as durations in seconds.
		pm.stageDuration.WithLabelValues(metric).Observe(value)
	}
}

func labelOr(labels map[string]string, key string) string {
	if v, ok := labels[key]; ok && v != "" {
		return v
	}
	return unknownLabel
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
