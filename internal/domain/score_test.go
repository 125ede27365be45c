package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSuccessFor verifies the success table, including every band edge.
func TestSuccessFor(t *testing.T) {
	tests := []struct {
		percent float64
		want    ScoreSuccess
	}{
		{100, Success},
		{80, Success},
		{79.9, AlmostSuccess},
		{79, AlmostSuccess},
		{70, AlmostSuccess},
		{69, Partial},
		{50, Partial},
		{49, AlmostFailure},
		{30, AlmostFailure},
		{29, Failure},
		{0, Failure},
		{-5, Failure},
		{math.NaN(), Failure},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SuccessFor(tt.percent), "percent %v", tt.percent)
	}
}

// TestLabelFor verifies the color table, which splits at 70 and 30.
func TestLabelFor(t *testing.T) {
	tests := []struct {
		percent float64
		want    ScoreLabel
	}{
		{100, Green},
		{70, Green},
		{69, Yellow},
		{69.99, Yellow},
		{30, Yellow},
		{29, Red},
		{0, Red},
		{math.NaN(), Red},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LabelFor(tt.percent), "percent %v", tt.percent)
	}
}

// TestTablesAreIndependent checks that the color and success splits differ:
// 70 to 79 is Green but not success.
func TestTablesAreIndependent(t *testing.T) {
	for p := 70.0; p < 80; p++ {
		assert.Equal(t, Green, LabelFor(p))
		assert.Equal(t, AlmostSuccess, SuccessFor(p))
	}
	assert.Equal(t, Yellow, LabelFor(69))
	assert.Equal(t, Partial, SuccessFor(69))
}

// TestTablesAreTotal walks [0,100] and checks every percent maps to exactly
// one band in each table.
func TestTablesAreTotal(t *testing.T) {
	for p := 0.0; p <= 100; p += 0.5 {
		assert.True(t, SuccessFor(p).IsValid())
		assert.NotEqual(t, Unknown, SuccessFor(p))
		assert.Contains(t, []ScoreLabel{Green, Yellow, Red}, LabelFor(p))
	}
}

func TestScoreSuccess_IsValid(t *testing.T) {
	for _, s := range ScoreSuccessValues() {
		assert.True(t, s.IsValid(), s.String())
	}
	assert.False(t, ScoreSuccess("great").IsValid())
	assert.False(t, ScoreSuccess("").IsValid())
	assert.False(t, ScoreSuccess("Success").IsValid())
}

func TestEntry_Scored(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  bool
	}{
		{"scored", Entry{ScoreSuccess: Partial, ScorePercent: Percent(55)}, true},
		{"zero percent still scored", Entry{ScoreSuccess: Failure, ScorePercent: Percent(0)}, true},
		{"unknown", Entry{ScoreSuccess: Unknown, ScorePercent: Percent(55)}, false},
		{"no percent", Entry{ScoreSuccess: Partial}, false},
		{"optional", Entry{ScoreSuccess: Success, ScorePercent: Percent(90), IsOptional: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entry.Scored())
		})
	}
}
