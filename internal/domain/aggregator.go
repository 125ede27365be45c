package domain

// Aggregator reduces one assessment record into its normalized projection.
// Implementations must not mutate the input record and must be safe for
// concurrent use, since batches may aggregate records in parallel.
//
// Aggregate returns an error wrapping ErrMissingEntityRef or
// ErrMissingAreaScores when the record lacks the fields needed to compute
// a projection.
type Aggregator interface {
	Aggregate(record *AssessmentRecord) (*NormalizedRecord, error)
}

// Validator checks a decoded JSON document for structural and semantic
// problems. Content problems are reported in the result, never as an error.
type Validator interface {
	Validate(document map[string]any) *ValidationResult
}
