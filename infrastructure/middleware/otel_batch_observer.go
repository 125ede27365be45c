package middleware

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/one-acre-fund/application-score-card/internal/domain"
	"github.com/one-acre-fund/application-score-card/internal/ports"
)

const tracerName = "scorecard"

var _ ports.BatchObserver = (*OTelBatchObserver)(nil)

// OTelBatchObserver implements observability for batch stages using
// OpenTelemetry tracing. Each stage gets its own span, and every record that
// fails the stage is recorded as a span event.
type OTelBatchObserver struct {
	tracer trace.Tracer
}

// NewOTelBatchObserver creates an observer backed by the global tracer
// provider.
func NewOTelBatchObserver() *OTelBatchObserver {
	return NewOTelBatchObserverWithProvider(otel.GetTracerProvider())
}

// NewOTelBatchObserverWithProvider creates an observer backed by tp.
func NewOTelBatchObserverWithProvider(tp trace.TracerProvider) *OTelBatchObserver {
	return &OTelBatchObserver{tracer: tp.Tracer(tracerName)}
}

// StageStarted implements the BatchObserver interface. It starts a span for
// the stage and returns a context carrying it.
func (o *OTelBatchObserver) StageStarted(ctx context.Context, runID, stage string, total int) context.Context {
	ctx, _ = o.tracer.Start(ctx, "Scorecard."+stage, trace.WithAttributes(
		attribute.String("scorecard.run_id", runID),
		attribute.String("scorecard.stage", stage),
		attribute.Int("scorecard.records", total),
	))
	return ctx
}

// StageFinished implements the BatchObserver interface. It records the stage
// outcome on the span started by StageStarted and ends it.
func (o *OTelBatchObserver) StageFinished(ctx context.Context, summary ports.StageSummary, elapsed time.Duration) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.SetAttributes(
		attribute.Int("scorecard.failed", summary.Failed),
		attribute.Int("scorecard.warnings", summary.Warnings),
		attribute.Int64("scorecard.elapsed_ms", elapsed.Milliseconds()),
	)

	for _, f := range summary.Failures {
		span.AddEvent("record.failed", trace.WithAttributes(
			attribute.String("source", f.Source),
			attribute.String("error.kind", errorKind(f.Err)),
			attribute.String("error.message", f.Err.Error()),
		))
	}

	switch {
	case summary.Err != nil:
		span.RecordError(summary.Err)
		span.SetStatus(codes.Error, summary.Err.Error())
	case summary.Failed > 0:
		span.SetStatus(codes.Error, "one or more records failed")
	default:
		span.SetStatus(codes.Ok, "")
	}
}

func errorKind(err error) string {
	var inputErr *ports.InputError
	var contentErr *domain.ContentError
	switch {
	case errors.As(err, &inputErr):
		return "input"
	case errors.As(err, &contentErr):
		return "content"
	default:
		return "other"
	}
}
