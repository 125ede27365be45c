package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/one-acre-fund/application-score-card/infrastructure/scoring"
	"github.com/one-acre-fund/application-score-card/internal/domain"
	"github.com/one-acre-fund/application-score-card/internal/ports"
)

// Runner orchestrates batch validation and aggregation of assessment
// records. Each record is processed independently and in parallel; one bad
// record never stops the others. Runner holds no per-batch state and may
// run several batches concurrently.
type Runner struct {
	config     Config
	validator  *scoring.Validator
	aggregator *scoring.Aggregator
	metrics    ports.MetricsCollector
	observer   ports.BatchObserver
	logger     *slog.Logger

	// decode turns a validated document into a typed record.
	decode func(source string, data []byte) (*domain.AssessmentRecord, error)
}

// Option configures optional Runner collaborators.
type Option func(*Runner)

// WithMetrics sets the collector that receives batch metrics.
func WithMetrics(m ports.MetricsCollector) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithObserver sets the observer notified around each stage.
func WithObserver(o ports.BatchObserver) Option {
	return func(r *Runner) { r.observer = o }
}

// WithLogger sets the structured logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithClock sets the clock used for records without a generation time.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.aggregator.WithClock(now) }
}

// NewRunner validates cfg and builds a Runner around it.
func NewRunner(cfg Config, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	v, err := scoring.NewValidator(cfg.Validator)
	if err != nil {
		return nil, fmt.Errorf("failed to create validator: %w", err)
	}

	r := &Runner{
		config:     cfg,
		validator:  v,
		aggregator: scoring.NewAggregator(cfg.Aggregator),
		metrics:    noopMetrics{},
		observer:   noopObserver{},
		logger:     slog.Default(),
		decode:     scoring.DecodeRecord,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Outcome is the result of processing one document in one stage.
type Outcome struct {
	// Source identifies the document.
	Source string

	// Validation is nil when the document could not be read or parsed.
	Validation *domain.ValidationResult

	// Record is set only after successful aggregation.
	Record *domain.NormalizedRecord

	// Err is a *ports.InputError, a *domain.ContentError, or the context
	// error if the batch was cancelled before the document was processed.
	Err error
}

// Report collects per-document outcomes of a batch.
type Report struct {
	RunID string

	// Validation holds one outcome per document, in source order.
	Validation []Outcome

	// Aggregation holds one outcome per document, in source order. It is
	// empty when aggregation did not run.
	Aggregation []Outcome

	// Records is the aggregated output, sorted by entity name.
	Records []domain.NormalizedRecord

	// Written reports whether Records reached the sink.
	Written bool
}

// Failures returns every outcome that carries an error, validation first.
func (r *Report) Failures() []Outcome {
	var failed []Outcome
	for _, list := range [][]Outcome{r.Validation, r.Aggregation} {
		for _, o := range list {
			if o.Err != nil {
				failed = append(failed, o)
			}
		}
	}
	return failed
}

// Failed reports whether any record had an input or content error. Warnings
// never make a batch fail.
func (r *Report) Failed() bool { return len(r.Failures()) > 0 }

// WarningCount returns the number of validation warnings in the batch.
func (r *Report) WarningCount() int {
	n := 0
	for _, o := range r.Validation {
		if o.Validation != nil {
			n += len(o.Validation.Warnings)
		}
	}
	return n
}

// Run loads a snapshot from source, validates every record and, only if all
// of them pass, aggregates them. The sorted output is written to sink only
// when every record also aggregated; otherwise Written stays false.
//
// Record-level problems are reported in the Report and do not produce an
// error. The returned error is reserved for failures of the source or sink
// as a whole.
func (r *Runner) Run(ctx context.Context, source ports.RecordSource, sink ports.RecordSink) (*Report, error) {
	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID)

	docs, err := source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	logger.Info("loaded records", "count", len(docs))

	report := &Report{RunID: runID}
	report.Validation = r.validateAll(ctx, runID, docs)

	if report.Failed() {
		logger.Error("validation failed, output not written", "failed", len(report.Failures()), "total", len(docs))
		return report, nil
	}

	report.Aggregation, report.Records = r.aggregateAll(ctx, runID, docs)
	if report.Failed() {
		logger.Error("aggregation failed, output not written", "failed", len(report.Failures()), "total", len(docs))
		return report, nil
	}

	if err := r.write(ctx, runID, sink, report.Records); err != nil {
		return report, err
	}
	report.Written = true

	logger.Info("batch complete",
		"records", len(report.Records),
		"failed", len(report.Failures()),
		"warnings", report.WarningCount(),
	)
	return report, nil
}

// ValidateAll validates every document and returns a report holding only
// validation outcomes.
func (r *Runner) ValidateAll(ctx context.Context, docs []ports.Document) *Report {
	runID := uuid.NewString()
	return &Report{RunID: runID, Validation: r.validateAll(ctx, runID, docs)}
}

// AggregateAll aggregates every document, skipping validation, and returns
// the sorted records alongside per-document outcomes.
func (r *Runner) AggregateAll(ctx context.Context, docs []ports.Document) *Report {
	runID := uuid.NewString()
	report := &Report{RunID: runID}
	report.Aggregation, report.Records = r.aggregateAll(ctx, runID, docs)
	return report
}

// Write sends report.Records to sink and marks the report as written. It
// pairs with AggregateAll for best-effort runs that skip the validation gate.
func (r *Runner) Write(ctx context.Context, report *Report, sink ports.RecordSink) error {
	if err := r.write(ctx, report.RunID, sink, report.Records); err != nil {
		return err
	}
	report.Written = true
	return nil
}

func (r *Runner) validateAll(ctx context.Context, runID string, docs []ports.Document) []Outcome {
	outcomes := r.runStage(ctx, runID, ports.StageValidate, docs, r.validateOne)

	logger := r.logger.With("run_id", runID)
	for _, o := range outcomes {
		if o.Validation != nil {
			for _, w := range o.Validation.Warnings {
				logger.Warn("validation warning", "source", o.Source, "warning", w)
			}
			r.metrics.RecordCounter("findings_total", float64(len(o.Validation.Warnings)),
				map[string]string{"severity": "warning"})
			r.metrics.RecordCounter("findings_total", float64(len(o.Validation.Errors)),
				map[string]string{"severity": "error"})
		}
		if o.Err != nil {
			logger.Error("record failed validation", "source", o.Source, "error", o.Err)
		}
	}
	return outcomes
}

func (r *Runner) validateOne(ctx context.Context, doc ports.Document) Outcome {
	out := Outcome{Source: doc.Source}
	if doc.Err != nil {
		out.Err = ports.NewInputError(doc.Source, "read", doc.Err)
		return out
	}

	result, err := r.validator.ValidateJSON(doc.Source, doc.Data)
	if err != nil {
		out.Err = err
		return out
	}
	out.Validation = result

	if result.HasErrors() {
		contentErr := domain.NewContentError(doc.Source, nil)
		for _, msg := range result.Errors {
			contentErr.AddError(msg)
		}
		out.Err = contentErr
	}
	return out
}

func (r *Runner) aggregateAll(ctx context.Context, runID string, docs []ports.Document) ([]Outcome, []domain.NormalizedRecord) {
	outcomes := r.runStage(ctx, runID, ports.StageAggregate, docs, r.aggregateOne)

	logger := r.logger.With("run_id", runID)
	records := make([]domain.NormalizedRecord, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil {
			logger.Error("record failed aggregation", "source", o.Source, "error", o.Err)
			continue
		}
		records = append(records, *o.Record)
		r.metrics.RecordHistogram("overall_score_percent", float64(o.Record.ScorePercent),
			map[string]string{"kind": o.Record.EntityRef.Kind})
	}

	SortRecords(records, r.config.Locale)
	return outcomes, records
}

func (r *Runner) aggregateOne(ctx context.Context, doc ports.Document) Outcome {
	out := Outcome{Source: doc.Source}
	if doc.Err != nil {
		out.Err = ports.NewInputError(doc.Source, "read", doc.Err)
		return out
	}

	record, err := r.decode(doc.Source, doc.Data)
	if err != nil {
		out.Err = err
		return out
	}

	normalized, err := r.aggregator.Aggregate(record)
	if err != nil {
		out.Err = domain.NewContentError(doc.Source, err)
		return out
	}
	out.Record = normalized
	return out
}

// runStage applies fn to every document with bounded parallelism and
// returns outcomes in document order. fn never fails the group; errors are
// carried on the outcomes.
func (r *Runner) runStage(
	ctx context.Context,
	runID, stage string,
	docs []ports.Document,
	fn func(context.Context, ports.Document) Outcome,
) []Outcome {
	start := time.Now()
	ctx = r.observer.StageStarted(ctx, runID, stage, len(docs))

	outcomes := make([]Outcome, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				outcomes[i] = Outcome{Source: doc.Source, Err: err}
				return nil
			}
			outcomes[i] = fn(gctx, doc)
			return nil
		})
	}
	_ = g.Wait()

	elapsed := time.Since(start)
	summary := ports.StageSummary{RunID: runID, Stage: stage, Total: len(docs)}
	for _, o := range outcomes {
		status := "ok"
		if o.Err != nil {
			status = failureStatus(o.Err)
			summary.Failed++
			summary.Failures = append(summary.Failures, ports.RecordFailure{Source: o.Source, Err: o.Err})
		}
		if o.Validation != nil {
			summary.Warnings += len(o.Validation.Warnings)
		}
		r.metrics.RecordCounter("records_total", 1, map[string]string{"stage": stage, "status": status})
	}
	r.metrics.RecordLatency(stage, elapsed, map[string]string{"stage": stage})
	r.metrics.RecordGauge("records_failed", float64(summary.Failed), map[string]string{"stage": stage})
	r.observer.StageFinished(ctx, summary, elapsed)

	return outcomes
}

func (r *Runner) write(ctx context.Context, runID string, sink ports.RecordSink, records []domain.NormalizedRecord) error {
	start := time.Now()
	ctx = r.observer.StageStarted(ctx, runID, ports.StageWrite, len(records))

	err := sink.Write(ctx, records)

	elapsed := time.Since(start)
	r.metrics.RecordLatency(ports.StageWrite, elapsed, map[string]string{"stage": ports.StageWrite})
	r.observer.StageFinished(ctx, ports.StageSummary{
		RunID: runID,
		Stage: ports.StageWrite,
		Total: len(records),
		Err:   err,
	}, elapsed)

	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// failureStatus classifies an outcome error for metric labels.
func failureStatus(err error) string {
	var inputErr *ports.InputError
	var contentErr *domain.ContentError
	switch {
	case errors.As(err, &inputErr):
		return "input_error"
	case errors.As(err, &contentErr):
		return "content_error"
	default:
		return "cancelled"
	}
}

type noopMetrics struct{}

func (noopMetrics) RecordLatency(string, time.Duration, map[string]string) {}
func (noopMetrics) RecordCounter(string, float64, map[string]string) {}
func (noopMetrics) RecordGauge(string, float64, map[string]string) {}
func (noopMetrics) RecordHistogram(string, float64, map[string]string) {}

type noopObserver struct{}

func (noopObserver) StageStarted(ctx context.Context, _, _ string, _ int) context.Context { return ctx }
func (noopObserver) StageFinished(context.Context, ports.StageSummary, time.Duration) {}
