package domain

import "math"

// ScoreSuccess is the categorical bucket of a score.
type ScoreSuccess string

// Score categories, best first. Unknown marks an entry that has not been
// assessed yet and never carries a meaningful percent.
const (
	Success       ScoreSuccess = "success"
	AlmostSuccess ScoreSuccess = "almost-success"
	Partial       ScoreSuccess = "partial"
	AlmostFailure ScoreSuccess = "almost-failure"
	Failure       ScoreSuccess = "failure"
	Unknown       ScoreSuccess = "unknown"
)

// String returns the wire value of the category.
func (s ScoreSuccess) String() string { return string(s) }

// IsValid reports whether s is one of the six fixed categories.
func (s ScoreSuccess) IsValid() bool {
	switch s {
	case Success, AlmostSuccess, Partial, AlmostFailure, Failure, Unknown:
		return true
	}
	return false
}

// ScoreSuccessValues lists every valid category in table order.
func ScoreSuccessValues() []ScoreSuccess {
	return []ScoreSuccess{Success, AlmostSuccess, Partial, AlmostFailure, Failure, Unknown}
}

// ScoreLabel is the color band shown on the dashboard.
type ScoreLabel string

// Color bands.
const (
	Green  ScoreLabel = "Green"
	Yellow ScoreLabel = "Yellow"
	Red    ScoreLabel = "Red"
)

// String returns the wire value of the label.
func (l ScoreLabel) String() string { return string(l) }

type successBand struct {
	min     float64
	success ScoreSuccess
}

type labelBand struct {
	min   float64
	label ScoreLabel
}

// successBands and labelBands are kept as two separate tables on purpose:
// the Green band starts at 70 while the success band starts at 80.
// Both are ordered by descending lower bound; the first match wins.
var (
	successBands = []successBand{
		{min: 80, success: Success},
		{min: 70, success: AlmostSuccess},
		{min: 50, success: Partial},
		{min: 30, success: AlmostFailure},
		{min: math.Inf(-1), success: Failure},
	}

	labelBands = []labelBand{
		{min: 70, label: Green},
		{min: 30, label: Yellow},
		{min: math.Inf(-1), label: Red},
	}
)

// SuccessFor maps a percent to its success category.
func SuccessFor(percent float64) ScoreSuccess {
	for _, b := range successBands {
		if percent >= b.min {
			return b.success
		}
	}
	return Failure
}

// LabelFor maps a percent to its color band.
func LabelFor(percent float64) ScoreLabel {
	for _, b := range labelBands {
		if percent >= b.min {
			return b.label
		}
	}
	return Red
}
