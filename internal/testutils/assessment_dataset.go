package testutils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/one-acre-fund/application-score-card/internal/domain"
)

// AssessmentDataset is a set of synthetic assessment records together with
// the parameters that produced them.
type AssessmentDataset struct {
	// Records holds one assessment per entity.
	Records []domain.AssessmentRecord `json:"records"`

	// Metadata provides information about the dataset itself.
	Metadata DatasetMetadata `json:"metadata"`
}

// DatasetMetadata contains information about a generated dataset.
type DatasetMetadata struct {
	// Name identifies the dataset.
	Name string `json:"name"`

	// Version tracks generator revisions.
	Version string `json:"version"`

	// Source indicates where the dataset originated.
	Source string `json:"source"`

	// Description provides additional context about the dataset.
	Description string `json:"description"`

	// Seed reproduces the dataset when passed back to the generator.
	Seed int64 `json:"seed"`

	// Size is the number of records.
	Size int `json:"size"`
}

// DatasetStatistics summarizes a dataset.
type DatasetStatistics struct {
	TotalRecords    int
	KindCount       map[string]int
	AreaCount       map[string]int
	UnknownEntries  int
	OptionalEntries int
	AvgAreas        float64
}

// ComputeDatasetStatistics counts records per kind and per area.
func ComputeDatasetStatistics(dataset *AssessmentDataset) *DatasetStatistics {
	stats := &DatasetStatistics{
		TotalRecords: len(dataset.Records),
		KindCount:    make(map[string]int),
		AreaCount:    make(map[string]int),
	}

	totalAreas := 0
	for _, r := range dataset.Records {
		if r.EntityRef != nil {
			stats.KindCount[r.EntityRef.Kind]++
		}
		totalAreas += len(r.AreaScores)
		for _, a := range r.AreaScores {
			stats.AreaCount[a.Title]++
			for _, e := range a.ScoreEntries {
				if e.ScoreSuccess == domain.Unknown {
					stats.UnknownEntries++
				}
				if e.IsOptional {
					stats.OptionalEntries++
				}
			}
		}
	}

	if stats.TotalRecords > 0 {
		stats.AvgAreas = float64(totalAreas) / float64(stats.TotalRecords)
	}
	return stats
}

// RecordFileName returns the file name a record is saved under:
// "<namespace>.<name>.json", with the namespace omitted when empty.
func RecordFileName(r domain.AssessmentRecord) string {
	if r.EntityRef == nil {
		return "unnamed.json"
	}
	if r.EntityRef.Namespace == "" {
		return r.EntityRef.Name + ".json"
	}
	return fmt.Sprintf("%s.%s.json", r.EntityRef.Namespace, r.EntityRef.Name)
}

// SaveAssessmentDataset writes every record to its own file inside dir,
// creating dir if needed, and returns the written paths in record order.
func SaveAssessmentDataset(dataset *AssessmentDataset, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	paths := make([]string, 0, len(dataset.Records))
	for _, r := range dataset.Records {
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal record: %w", err)
		}

		path := filepath.Join(dir, RecordFileName(r))
		if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
			return nil, fmt.Errorf("failed to write record file: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
