package scoring

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/one-acre-fund/application-score-card/internal/domain"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func entry(id int, success domain.ScoreSuccess, percent float64) domain.Entry {
	return domain.Entry{
		ID:           id,
		Title:        "criterion",
		Details:      "details",
		ScoreSuccess: success,
		ScorePercent: domain.Percent(percent),
	}
}

func sampleRecord() *domain.AssessmentRecord {
	return &domain.AssessmentRecord{
		EntityRef:            &domain.EntityRef{Kind: "component", Name: "billing-service", Namespace: "default"},
		GeneratedDateTimeUTC: "2026-02-01T10:00:00Z",
		ScoringReviewer:      "platform-guild",
		ScoringReviewDate:    "2026-02-10",
		AreaScores: []domain.Area{
			{
				ID:    1,
				Title: "Documentation",
				ScoreEntries: []domain.Entry{
					entry(1, domain.Success, 80),
					entry(2, domain.Partial, 60),
					entry(3, domain.AlmostFailure, 40),
				},
			},
			{
				ID:    2,
				Title: "Operations",
				ScoreEntries: []domain.Entry{
					entry(1, domain.Success, 100),
					entry(2, domain.Unknown, 0),
				},
			},
		},
	}
}

// TestReduceArea tests the entry filter and the arithmetic mean of an area.
func TestReduceArea(t *testing.T) {
	optional := entry(4, domain.Success, 100)
	optional.IsOptional = true

	withoutPercent := domain.Entry{ID: 5, ScoreSuccess: domain.Partial}

	tests := []struct {
		name    string
		entries []domain.Entry
		want    float64
	}{
		{
			name: "mean of all scored entries",
			entries: []domain.Entry{
				entry(1, domain.Success, 80),
				entry(2, domain.Partial, 60),
				entry(3, domain.AlmostFailure, 40),
			},
			want: 60,
		},
		{
			name: "unknown entry excluded despite stray percent",
			entries: []domain.Entry{
				entry(1, domain.Success, 80),
				entry(2, domain.Unknown, 10),
			},
			want: 80,
		},
		{
			name: "optional entry excluded despite concrete score",
			entries: []domain.Entry{
				entry(1, domain.Partial, 50),
				optional,
			},
			want: 50,
		},
		{
			name: "entry without percent excluded rather than counted as zero",
			entries: []domain.Entry{
				entry(1, domain.AlmostSuccess, 70),
				withoutPercent,
			},
			want: 70,
		},
		{
			name: "all unknown yields zero",
			entries: []domain.Entry{
				entry(1, domain.Unknown, 90),
				{ID: 2, ScoreSuccess: domain.Unknown},
			},
			want: 0,
		},
		{
			name:    "no entries yields zero",
			entries: nil,
			want:    0,
		},
		{
			name: "non-integer mean is kept unrounded",
			entries: []domain.Entry{
				entry(1, domain.Success, 90),
				entry(2, domain.AlmostSuccess, 75),
				entry(3, domain.Success, 85),
			},
			want: 250.0 / 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ReduceArea(tt.entries), 1e-9)
		})
	}
}

// TestReduceArea_Labels checks the concrete [80, 60, 40] case end to end.
func TestReduceArea_Labels(t *testing.T) {
	percent := ReduceArea([]domain.Entry{
		entry(1, domain.Success, 80),
		entry(2, domain.Partial, 60),
		entry(3, domain.AlmostFailure, 40),
	})

	assert.Equal(t, 60.0, percent)
	assert.Equal(t, domain.Yellow, domain.LabelFor(percent))
	assert.Equal(t, domain.Partial, domain.SuccessFor(percent))
}

// TestReduceOverall tests that zero areas are treated as unscored.
func TestReduceOverall(t *testing.T) {
	tests := []struct {
		name     string
		percents []float64
		want     float64
	}{
		{"zero area excluded", []float64{0, 80, 60}, 70},
		{"all areas scored", []float64{50, 70, 90}, 70},
		{"all zero", []float64{0, 0}, 0},
		{"empty", nil, 0},
		{"single area", []float64{42.5}, 42.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ReduceOverall(tt.percents), 1e-9)
		})
	}

	t.Run("labels of the zero-excluded case", func(t *testing.T) {
		overall := ReduceOverall([]float64{0, 80, 60})
		assert.Equal(t, domain.AlmostSuccess, domain.SuccessFor(overall))
		assert.Equal(t, domain.Green, domain.LabelFor(overall))
	})
}

// TestAggregator_Aggregate tests the projection of a full record.
func TestAggregator_Aggregate(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{}).WithClock(func() time.Time { return fixedNow })

	out, err := agg.Aggregate(sampleRecord())
	require.NoError(t, err)

	assert.Equal(t, domain.EntityRef{Kind: "component", Name: "billing-service"}, out.EntityRef,
		"default namespace should be dropped")
	assert.Equal(t, "2026-02-01T10:00:00Z", out.GeneratedDateTimeUTC)
	assert.Equal(t, "platform-guild", out.ScoringReviewer)
	assert.Equal(t, "2026-02-10", out.ScoringReviewDate)

	require.Len(t, out.AreaScores, 2)
	assert.Equal(t, domain.AreaSummary{
		ID: 1, Title: "Documentation", ScorePercent: 60,
		ScoreLabel: domain.Yellow, ScoreSuccess: domain.Partial,
	}, out.AreaScores[0])
	assert.Equal(t, domain.AreaSummary{
		ID: 2, Title: "Operations", ScorePercent: 100,
		ScoreLabel: domain.Green, ScoreSuccess: domain.Success,
	}, out.AreaScores[1])

	// mean(60, 100) = 80
	assert.Equal(t, 80, out.ScorePercent)
	assert.Equal(t, domain.Green, out.ScoreLabel)
	assert.Equal(t, domain.Success, out.ScoreSuccess)
	assert.Zero(t, out.UnscoredAreas, "indicator is off by default")
}

// TestAggregator_UnscoredArea verifies an all-unknown area does not count
// as a zero score in the overall percent.
func TestAggregator_UnscoredArea(t *testing.T) {
	record := &domain.AssessmentRecord{
		EntityRef:            &domain.EntityRef{Kind: "api", Name: "payments-api"},
		GeneratedDateTimeUTC: "2026-02-01",
		AreaScores: []domain.Area{
			{ID: 1, Title: "Security", ScoreEntries: []domain.Entry{
				entry(1, domain.Unknown, 0),
				{ID: 2, ScoreSuccess: domain.Unknown},
			}},
			{ID: 2, Title: "Testing", ScoreEntries: []domain.Entry{entry(1, domain.Success, 90)}},
		},
	}

	t.Run("excluded from overall", func(t *testing.T) {
		out, err := NewAggregator(AggregatorConfig{}).Aggregate(record)
		require.NoError(t, err)

		assert.Equal(t, 0, out.AreaScores[0].ScorePercent)
		assert.Equal(t, domain.Red, out.AreaScores[0].ScoreLabel)
		assert.Equal(t, domain.Failure, out.AreaScores[0].ScoreSuccess)
		assert.Equal(t, 90, out.ScorePercent, "overall must not be dragged to 45")
	})

	t.Run("reported when enabled", func(t *testing.T) {
		out, err := NewAggregator(AggregatorConfig{ReportUnscoredAreas: true}).Aggregate(record)
		require.NoError(t, err)
		assert.Equal(t, 1, out.UnscoredAreas)
		assert.Equal(t, 90, out.ScorePercent, "indicator must not change the score")
	})
}

// TestAggregator_Boundaries checks the asymmetric 70/80 split through the
// full projection.
func TestAggregator_Boundaries(t *testing.T) {
	tests := []struct {
		percent     float64
		wantLabel   domain.ScoreLabel
		wantSuccess domain.ScoreSuccess
	}{
		{70, domain.Green, domain.AlmostSuccess},
		{69, domain.Yellow, domain.Partial},
		{80, domain.Green, domain.Success},
		{79, domain.Green, domain.AlmostSuccess},
		{30, domain.Yellow, domain.AlmostFailure},
		{29, domain.Red, domain.Failure},
	}

	agg := NewAggregator(AggregatorConfig{})
	for _, tt := range tests {
		record := &domain.AssessmentRecord{
			EntityRef:  &domain.EntityRef{Kind: "system", Name: "ledger"},
			AreaScores: []domain.Area{{ID: 1, ScoreEntries: []domain.Entry{entry(1, domain.SuccessFor(tt.percent), tt.percent)}}},
		}
		out, err := agg.Aggregate(record)
		require.NoError(t, err)
		assert.Equal(t, tt.wantLabel, out.ScoreLabel, "label at %v", tt.percent)
		assert.Equal(t, tt.wantSuccess, out.ScoreSuccess, "success at %v", tt.percent)
	}
}

func TestAggregator_Rounding(t *testing.T) {
	record := &domain.AssessmentRecord{
		EntityRef: &domain.EntityRef{Kind: "component", Name: "search"},
		AreaScores: []domain.Area{
			// mean(80, 79) = 79.5 rounds to 80, which is labelled success.
			{ID: 1, ScoreEntries: []domain.Entry{entry(1, domain.Success, 80), entry(2, domain.AlmostSuccess, 79)}},
		},
	}

	out, err := NewAggregator(AggregatorConfig{}).Aggregate(record)
	require.NoError(t, err)
	assert.Equal(t, 80, out.AreaScores[0].ScorePercent)
	assert.Equal(t, domain.Success, out.AreaScores[0].ScoreSuccess)
	assert.Equal(t, 80, out.ScorePercent)
}

func TestAggregator_RoundedBandsDifferFromEntryCheck(t *testing.T) {
	record := &domain.AssessmentRecord{
		EntityRef:            &domain.EntityRef{Kind: "component", Name: "search"},
		GeneratedDateTimeUTC: "2026-02-01T10:00:00Z",
		AreaScores: []domain.Area{
			{ID: 1, Title: "Docs", ScoreEntries: []domain.Entry{entry(1, domain.Success, 79.5)}},
		},
	}

	out, err := NewAggregator(AggregatorConfig{}).Aggregate(record)
	require.NoError(t, err)
	assert.Equal(t, 80, out.AreaScores[0].ScorePercent)
	assert.Equal(t, domain.Success, out.AreaScores[0].ScoreSuccess)
	assert.Equal(t, domain.Green, out.AreaScores[0].ScoreLabel)

	data, err := json.Marshal(record)
	require.NoError(t, err)
	result, err := newTestValidator(t).ValidateJSON("search.json", data)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], `does not match scorePercent 79.5 (expected "almost-success")`)
}

func TestAggregator_OptionalFields(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{}).WithClock(func() time.Time { return fixedNow })

	record := &domain.AssessmentRecord{
		EntityRef:  &domain.EntityRef{Kind: "resource", Name: "orders-db", Namespace: "data"},
		AreaScores: []domain.Area{},
	}

	out, err := agg.Aggregate(record)
	require.NoError(t, err)

	assert.Equal(t, "data", out.EntityRef.Namespace, "non-default namespace is kept")
	assert.Equal(t, "2026-03-14T09:30:00Z", out.GeneratedDateTimeUTC, "falls back to the clock")
	assert.Equal(t, 0, out.ScorePercent)
	assert.Empty(t, out.AreaScores)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "scoringReviewer")
	assert.NotContains(t, string(data), "scoringReviewDate")
	assert.NotContains(t, string(data), "scoreEntries")
	assert.Contains(t, string(data), `"areaScores":[]`)
}

func TestAggregator_Errors(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})

	t.Run("nil record", func(t *testing.T) {
		_, err := agg.Aggregate(nil)
		assert.ErrorIs(t, err, domain.ErrNilRecord)
	})

	t.Run("missing entity reference", func(t *testing.T) {
		record := sampleRecord()
		record.EntityRef = nil
		_, err := agg.Aggregate(record)
		assert.ErrorIs(t, err, domain.ErrMissingEntityRef)
	})

	t.Run("missing area list", func(t *testing.T) {
		record := sampleRecord()
		record.AreaScores = nil
		_, err := agg.Aggregate(record)
		assert.ErrorIs(t, err, domain.ErrMissingAreaScores)
	})
}

// TestAggregator_DoesNotMutateInput compares the record before and after.
func TestAggregator_DoesNotMutateInput(t *testing.T) {
	record := sampleRecord()
	before, err := json.Marshal(record)
	require.NoError(t, err)

	_, err = NewAggregator(AggregatorConfig{}).Aggregate(record)
	require.NoError(t, err)

	after, err := json.Marshal(record)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

// TestAggregator_Idempotent re-aggregates the area percents of a normalized
// record, each as a single scored entry, and expects the same overall.
func TestAggregator_Idempotent(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})

	record := sampleRecord()
	record.AreaScores = append(record.AreaScores, domain.Area{
		ID: 3, Title: "Security", ScoreEntries: []domain.Entry{
			entry(1, domain.AlmostSuccess, 73),
			entry(2, domain.Partial, 58),
		},
	}, domain.Area{
		ID: 4, Title: "Unscored", ScoreEntries: []domain.Entry{entry(1, domain.Unknown, 0)},
	})

	first, err := agg.Aggregate(record)
	require.NoError(t, err)

	again := &domain.AssessmentRecord{EntityRef: &domain.EntityRef{Kind: "component", Name: "billing-service"}}
	for _, area := range first.AreaScores {
		p := float64(area.ScorePercent)
		again.AreaScores = append(again.AreaScores, domain.Area{
			ID: area.ID, Title: area.Title,
			ScoreEntries: []domain.Entry{entry(1, domain.SuccessFor(p), p)},
		})
	}

	second, err := agg.Aggregate(again)
	require.NoError(t, err)
	assert.InDelta(t, first.ScorePercent, second.ScorePercent, 1)
	assert.Equal(t, first.AreaScores, second.AreaScores)
}

func TestOverallPercent(t *testing.T) {
	assert.InDelta(t, 80.0, OverallPercent(sampleRecord().AreaScores), 1e-9)
	assert.Equal(t, 0.0, OverallPercent(nil))
}
