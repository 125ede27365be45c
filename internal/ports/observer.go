package ports

import (
	"context"
	"time"
)

// Batch stages reported to observers and metrics.
const (
	StageValidate  = "validate"
	StageAggregate = "aggregate"
	StageWrite     = "write"
)

// RecordFailure names one record that failed a stage.
type RecordFailure struct {
	Source string
	Err    error
}

// StageSummary describes the outcome of one batch stage.
type StageSummary struct {
	RunID    string
	Stage    string
	Total    int
	Failed   int
	Warnings int
	Failures []RecordFailure

	// Err is set when the stage as a whole failed, for example when the
	// output could not be written.
	Err error
}

// BatchObserver receives notifications around each batch stage. It is the
// hook for tracing; implementations must be safe for concurrent batches.
type BatchObserver interface {
	// StageStarted is called before a stage runs. The returned context is
	// used for the rest of the stage and passed back to StageFinished.
	StageStarted(ctx context.Context, runID, stage string, total int) context.Context

	// StageFinished is called once the stage is complete.
	StageFinished(ctx context.Context, summary StageSummary, elapsed time.Duration)
}
