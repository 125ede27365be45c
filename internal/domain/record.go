package domain

// Entity kinds recognised by the software catalog. Records naming another kind
// are still accepted; the validator only warns about them.
const (
	KindComponent = "component"
	KindAPI       = "api"
	KindSystem    = "system"
	KindResource  = "resource"
)

// DefaultNamespace is the catalog namespace that is omitted from output.
const DefaultNamespace = "default"

// KnownKinds returns the catalog kinds that do not trigger a warning.
func KnownKinds() []string {
	return []string{KindComponent, KindAPI, KindSystem, KindResource}
}

// EntityRef identifies the subject of an assessment in the software catalog.
type EntityRef struct {
	// Kind is the catalog kind of the entity, for example "component".
	Kind string `json:"kind"`

	// Name is the catalog name and the sort key of the aggregated output.
	Name string `json:"name"`

	// Namespace is optional; an empty value means the catalog default.
	Namespace string `json:"namespace,omitempty"`
}

// AssessmentRecord is one entity's self-review for a single review cycle.
// It is authored by hand and read-only for this module.
type AssessmentRecord struct {
	// EntityRef identifies the assessed entity. A nil value makes the
	// record unusable for aggregation.
	EntityRef *EntityRef `json:"entityRef"`

	// GeneratedDateTimeUTC is the authoring timestamp as written in the
	// source document.
	GeneratedDateTimeUTC string `json:"generatedDateTimeUtc,omitempty"`

	// ScoringReviewDate is the timestamp of the review meeting, if any.
	ScoringReviewDate string `json:"scoringReviewDate,omitempty"`

	// ScoringReviewer is free text naming who reviewed the scores.
	ScoringReviewer string `json:"scoringReviewer,omitempty"`

	// AreaScores holds the scoring dimensions in source order. A nil slice
	// means the field was absent from the document.
	AreaScores []Area `json:"areaScores"`

	// ScorePercent is a previously computed overall percent. It is only
	// compared against a fresh computation and never trusted.
	ScorePercent *float64 `json:"scorePercent,omitempty"`
}

// Area is one scoring dimension, such as Documentation or Operations.
type Area struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	ScoreEntries []Entry `json:"scoreEntries"`
}

// Entry is one atomic scored criterion inside an Area.
type Entry struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Details string `json:"details"`

	// ScoreSuccess is the category declared by the author.
	ScoreSuccess ScoreSuccess `json:"scoreSuccess"`

	// ScorePercent is nil when the document omits it or sets it to null.
	ScorePercent *float64 `json:"scorePercent,omitempty"`

	// IsOptional excludes the entry from aggregation whatever its score.
	IsOptional bool `json:"isOptional,omitempty"`

	SelfAssessmentComments string `json:"selfAssessmentComments,omitempty"`
}

// Scored reports whether the entry contributes to its area's percent: it
// must carry a concrete category, a percent, and must not be optional.
func (e Entry) Scored() bool {
	return e.ScoreSuccess != Unknown && e.ScorePercent != nil && !e.IsOptional
}

// Percent is a convenience for building entries and records in code.
func Percent(v float64) *float64 { return &v }
