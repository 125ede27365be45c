// Package testutils provides utilities for testing, including generators
// for synthetic assessment records. These components are intended for
// internal use within the project's test suites and tooling and are not
// part of the public API.
package testutils

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/one-acre-fund/application-score-card/internal/domain"
)

// GeneratorOptions tunes how many findings a generated dataset provokes.
// Rates are probabilities between 0 and 1 applied per entry.
type GeneratorOptions struct {
	// PlaceholderRate is the share of entries left with template comments.
	PlaceholderRate float64

	// UnknownRate is the share of entries not yet assessed.
	UnknownRate float64

	// OptionalRate is the share of entries marked optional.
	OptionalRate float64
}

// DefaultGeneratorOptions produces records that validate without errors and
// raise an occasional placeholder warning.
func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{PlaceholderRate: 0.05, UnknownRate: 0.1, OptionalRate: 0.05}
}

// datasetEpoch anchors generated timestamps so that a seed fully determines
// the output.
var datasetEpoch = time.Date(2026, time.January, 5, 8, 0, 0, 0, time.UTC)

// GenerateSampleAssessments creates size structurally valid assessment
// records. The seed parameter controls randomization - use a fixed value
// for reproducible tests.
func GenerateSampleAssessments(size int, seed int64, opts GeneratorOptions) *AssessmentDataset {
	rng := rand.New(rand.NewSource(seed))
	kinds := domain.KnownKinds()

	dataset := &AssessmentDataset{
		Metadata: DatasetMetadata{
			Name:        "Sample Assessments",
			Version:     "1.0.0",
			Source:      "Generated for testing",
			Description: "Synthetic score card assessments. NOT REAL ASSESSMENT DATA.",
			Seed:        seed,
			Size:        size,
		},
		Records: make([]domain.AssessmentRecord, 0, size),
	}

	for i := range size {
		generated := datasetEpoch.Add(time.Duration(i) * time.Hour)
		record := domain.AssessmentRecord{
			EntityRef: &domain.EntityRef{
				Kind:      kinds[rng.Intn(len(kinds))],
				Name:      entityName(i),
				Namespace: Namespaces[rng.Intn(len(Namespaces))],
			},
			GeneratedDateTimeUTC: generated.Format(time.RFC3339),
			ScoringReviewer:      Reviewers[rng.Intn(len(Reviewers))],
			AreaScores:           generateAreas(rng, opts),
		}
		if rng.Intn(2) == 0 {
			record.ScoringReviewDate = generated.AddDate(0, 0, 7).Format(time.DateOnly)
		}
		dataset.Records = append(dataset.Records, record)
	}

	return dataset
}

// entityName returns a unique catalog name for the i-th record.
func entityName(i int) string {
	base := EntityNames[i%len(EntityNames)]
	if round := i / len(EntityNames); round > 0 {
		return fmt.Sprintf("%s-%d", base, round+1)
	}
	return base
}

func generateAreas(rng *rand.Rand, opts GeneratorOptions) []domain.Area {
	// Each record covers a non-empty subset of the template areas,
	// keeping template order.
	areas := make([]domain.Area, 0, len(AssessmentAreas))
	for _, tmpl := range AssessmentAreas {
		if len(areas) > 0 && rng.Intn(4) == 0 {
			continue
		}
		area := domain.Area{ID: tmpl.ID, Title: tmpl.Title}
		for j, e := range tmpl.Entries {
			area.ScoreEntries = append(area.ScoreEntries, generateEntry(rng, j+1, e, opts))
		}
		areas = append(areas, area)
	}
	return areas
}

func generateEntry(rng *rand.Rand, id int, tmpl EntryTemplate, opts GeneratorOptions) domain.Entry {
	entry := domain.Entry{
		ID:      id,
		Title:   tmpl.Title,
		Details: tmpl.Details,
	}

	if rng.Float64() < opts.UnknownRate {
		entry.ScoreSuccess = domain.Unknown
	} else {
		// Whole and half points, as reviewers tend to write them.
		percent := math.Round(rng.Float64()*200) / 2
		entry.ScorePercent = domain.Percent(percent)
		entry.ScoreSuccess = domain.SuccessFor(percent)
	}

	entry.IsOptional = rng.Float64() < opts.OptionalRate

	if rng.Float64() < opts.PlaceholderRate {
		entry.SelfAssessmentComments = PlaceholderComments[rng.Intn(len(PlaceholderComments))]
	} else if entry.ScorePercent != nil {
		entry.SelfAssessmentComments = fmt.Sprintf("Reviewed against the %q criterion.", tmpl.Title)
	}

	return entry
}
