// Package scoring implements the validation and aggregation engine for
// assessment records. Everything in this package is pure: no I/O, no
// logging, and no shared mutable state, so records can be processed in
// any order or in parallel.
package scoring

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/go-playground/validator/v10"

	"github.com/one-acre-fund/application-score-card/internal/domain"
)

// Package-level validator instance for configuration and value checks.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()

// Validation tags applied to individual JSON values.
var (
	percentTag      = "min=0,max=100"
	scoreSuccessTag = "oneof=" + strings.Join(scoreSuccessNames(), " ")
)

// maxSuggestionDistance bounds the edit distance of "did you mean" hints.
const maxSuggestionDistance = 2

func scoreSuccessNames() []string {
	values := domain.ScoreSuccessValues()
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = v.String()
	}
	return names
}

// suggest returns the candidate closest to value when it is within
// maxSuggestionDistance edits. Comparison ignores case.
func suggest(value string, candidates []string) (string, bool) {
	lowered := strings.ToLower(value)
	best, bestDist := "", maxSuggestionDistance+1
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(lowered, strings.ToLower(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, best != "" && best != value
}
