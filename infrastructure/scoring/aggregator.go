package scoring

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/one-acre-fund/application-score-card/internal/domain"
)

var _ domain.Aggregator = (*Aggregator)(nil)

// Aggregator reduces assessment records into NormalizedRecords.
//
// Reduction happens in two steps. Inside an area, the percents of scored
// entries are averaged; entries that are unknown, optional, or without a
// percent contribute nothing, not even a zero. Across areas, only area
// percents strictly greater than zero are averaged. An area with no scored
// entries therefore yields 0 and drops out of the overall percent. So does an
// area whose entries genuinely average to 0: the two cases are
// indistinguishable and both are treated as "no signal".
//
// Labels and categories are always derived from the freshly computed,
// rounded percents and never copied from the source record.
//
// Aggregator is stateless after construction and safe for concurrent use.
type Aggregator struct {
	config AggregatorConfig
	now    func() time.Time
}

// AggregatorConfig controls optional output of the aggregator.
type AggregatorConfig struct {
	// ReportUnscoredAreas populates NormalizedRecord.UnscoredAreas with the
	// number of areas excluded from the overall percent. Off by default so
	// the output shape stays unchanged for existing consumers.
	ReportUnscoredAreas bool `yaml:"report_unscored_areas" json:"report_unscored_areas"`
}

// NewAggregator creates an Aggregator that uses the wall clock for records
// that omit their generation timestamp.
func NewAggregator(config AggregatorConfig) *Aggregator {
	return &Aggregator{
		config: config,
		now:    time.Now,
	}
}

// WithClock overrides the clock for testing.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Aggregate projects record into a NormalizedRecord. Raw entries are
// dropped; only per-area and overall results are kept. Labels and success
// bands are derived from the rounded percents, so 79.5 is reported as 80
// and "success", while the Validator compares entry categories against the
// raw percent.
//
// Errors:
//   - domain.ErrNilRecord when record is nil
//   - domain.ErrMissingEntityRef when the entity reference is absent
//   - domain.ErrMissingAreaScores when the area list is absent
func (a *Aggregator) Aggregate(record *domain.AssessmentRecord) (*domain.NormalizedRecord, error) {
	if record == nil {
		return nil, domain.ErrNilRecord
	}
	if record.EntityRef == nil {
		return nil, fmt.Errorf("cannot aggregate: %w", domain.ErrMissingEntityRef)
	}
	if record.AreaScores == nil {
		return nil, fmt.Errorf("cannot aggregate %s: %w", record.EntityRef.Name, domain.ErrMissingAreaScores)
	}

	areaPercents := make([]float64, len(record.AreaScores))
	summaries := make([]domain.AreaSummary, len(record.AreaScores))
	unscored := 0
	for i, area := range record.AreaScores {
		percent := ReduceArea(area.ScoreEntries)
		areaPercents[i] = percent
		if percent <= 0 {
			unscored++
		}

		rounded := roundPercent(percent)
		summaries[i] = domain.AreaSummary{
			ID:           area.ID,
			Title:        area.Title,
			ScorePercent: rounded,
			ScoreLabel:   domain.LabelFor(float64(rounded)),
			ScoreSuccess: domain.SuccessFor(float64(rounded)),
		}
	}

	overall := roundPercent(ReduceOverall(areaPercents))

	generated := record.GeneratedDateTimeUTC
	if generated == "" {
		generated = a.now().UTC().Format(time.RFC3339)
	}

	out := &domain.NormalizedRecord{
		EntityRef:            normalizeEntityRef(*record.EntityRef),
		GeneratedDateTimeUTC: generated,
		ScorePercent:         overall,
		ScoreLabel:           domain.LabelFor(float64(overall)),
		ScoreSuccess:         domain.SuccessFor(float64(overall)),
		ScoringReviewer:      record.ScoringReviewer,
		ScoringReviewDate:    record.ScoringReviewDate,
		AreaScores:           summaries,
	}
	if a.config.ReportUnscoredAreas {
		out.UnscoredAreas = unscored
	}

	return out, nil
}

// ReduceArea returns the arithmetic mean of the percents of scored entries,
// or 0 when no entry is scored. See domain.Entry.Scored for the filter.
func ReduceArea(entries []domain.Entry) float64 {
	scored := make([]float64, 0, len(entries))
	for _, e := range entries {
		if e.Scored() {
			scored = append(scored, *e.ScorePercent)
		}
	}
	return meanOrZero(scored)
}

// ReduceOverall returns the arithmetic mean of the area percents that are
// strictly greater than zero, or 0 when none qualify.
func ReduceOverall(areaPercents []float64) float64 {
	positive := make([]float64, 0, len(areaPercents))
	for _, p := range areaPercents {
		if p > 0 {
			positive = append(positive, p)
		}
	}
	return meanOrZero(positive)
}

func meanOrZero(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// OverallPercent computes the unrounded overall percent of a list of areas.
func OverallPercent(areas []domain.Area) float64 {
	percents := make([]float64, len(areas))
	for i, area := range areas {
		percents[i] = ReduceArea(area.ScoreEntries)
	}
	return ReduceOverall(percents)
}

func roundPercent(p float64) int { return int(math.Round(p)) }

// normalizeEntityRef drops the namespace when it is the catalog default.
func normalizeEntityRef(ref domain.EntityRef) domain.EntityRef {
	out := domain.EntityRef{Kind: ref.Kind, Name: ref.Name}
	if ref.Namespace != "" && ref.Namespace != domain.DefaultNamespace {
		out.Namespace = ref.Namespace
	}
	return out
}
