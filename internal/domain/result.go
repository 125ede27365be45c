package domain

// ValidationResult is the outcome of validating one assessment record.
// Errors block aggregation; warnings are advisory only.
type ValidationResult struct {
	// Errors lists every blocking problem found, in check order.
	Errors []string `json:"errors"`

	// Warnings lists advisory findings such as category drift or
	// leftover placeholder text.
	Warnings []string `json:"warnings"`

	// Valid is true exactly when Errors is empty.
	Valid bool `json:"valid"`
}

// NewValidationResult returns an empty, valid result.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		Errors:   make([]string, 0),
		Warnings: make([]string, 0),
		Valid:    true,
	}
}

// AddError records a blocking finding and marks the result invalid.
func (r *ValidationResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Valid = false
}

// AddWarning records an advisory finding.
func (r *ValidationResult) AddWarning(msg string) { r.Warnings = append(r.Warnings, msg) }

// HasErrors returns true if any blocking finding was recorded.
func (r *ValidationResult) HasErrors() bool { return len(r.Errors) > 0 }

// NormalizedRecord is the computed projection of an AssessmentRecord that
// the dashboard consumes. It is never authored by hand.
type NormalizedRecord struct {
	EntityRef            EntityRef     `json:"entityRef"`
	GeneratedDateTimeUTC string        `json:"generatedDateTimeUtc"`
	ScorePercent         int           `json:"scorePercent"`
	ScoreLabel           ScoreLabel    `json:"scoreLabel"`
	ScoreSuccess         ScoreSuccess  `json:"scoreSuccess"`
	ScoringReviewer      string        `json:"scoringReviewer,omitempty"`
	ScoringReviewDate    string        `json:"scoringReviewDate,omitempty"`
	AreaScores           []AreaSummary `json:"areaScores"`

	// UnscoredAreas counts areas whose computed percent is exactly zero and
	// which were therefore left out of the overall percent. It is only
	// populated when the aggregator is configured to report it.
	UnscoredAreas int `json:"unscoredAreas,omitempty"`
}

// AreaSummary is the per-area projection inside a NormalizedRecord.
type AreaSummary struct {
	ID           int          `json:"id"`
	Title        string       `json:"title"`
	ScorePercent int          `json:"scorePercent"`
	ScoreLabel   ScoreLabel   `json:"scoreLabel"`
	ScoreSuccess ScoreSuccess `json:"scoreSuccess"`
}
