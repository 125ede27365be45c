package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/one-acre-fund/application-score-card/internal/domain"
	"github.com/one-acre-fund/application-score-card/internal/ports"
)

var _ domain.Validator = (*Validator)(nil)

// ValidatorConfig tunes the advisory checks of the Validator. Blocking
// checks are fixed and cannot be configured away.
type ValidatorConfig struct {
	// KnownKinds lists entity kinds that do not raise a warning.
	KnownKinds []string `yaml:"known_kinds" json:"known_kinds" validate:"required,min=1,dive,required"`

	// PlaceholderMarkers are template fragments that should have been
	// replaced in selfAssessmentComments. Matching ignores case.
	PlaceholderMarkers []string `yaml:"placeholder_markers" json:"placeholder_markers" validate:"dive,required"`

	// DriftTolerance is the largest accepted difference, in percentage
	// points, between a stored overall percent and the recomputed one.
	DriftTolerance float64 `yaml:"drift_tolerance" json:"drift_tolerance" validate:"min=0,max=100"`
}

// DefaultValidatorConfig returns the catalog kinds, the markers left by the
// assessment template, and a one point drift tolerance.
func DefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{
		KnownKinds:         domain.KnownKinds(),
		PlaceholderMarkers: []string{"TODO", "TBD", "<add comments here>"},
		DriftTolerance:     1,
	}
}

// Validator checks assessment documents for structural and semantic
// problems. Every applicable check runs; findings accumulate and nothing
// short-circuits. The validator never mutates its input.
type Validator struct {
	config ValidatorConfig
}

// NewValidator creates a Validator, returning an error if config violates
// its constraints.
func NewValidator(config ValidatorConfig) (*Validator, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &Validator{config: config}, nil
}

// ValidateJSON parses data and validates the resulting document. Content
// problems, including a top-level value that is not an object, are reported
// in the result. Only input that is not JSON at all yields an error, a
// *ports.InputError wrapping ports.ErrUnparsable.
func (v *Validator) ValidateJSON(source string, data []byte) (*domain.ValidationResult, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ports.NewInputError(source, "parse", errors.Join(ports.ErrUnparsable, err))
	}

	doc, ok := raw.(map[string]any)
	if !ok {
		result := domain.NewValidationResult()
		result.AddError("record must be a JSON object")
		return result, nil
	}

	return v.Validate(doc), nil
}

// Validate runs all checks against a decoded JSON document.
func (v *Validator) Validate(doc map[string]any) *domain.ValidationResult {
	result := domain.NewValidationResult()
	if doc == nil {
		result.AddError("record must be a JSON object")
		return result
	}

	for _, field := range []string{"entityRef", "generatedDateTimeUtc", "areaScores"} {
		if doc[field] == nil {
			result.AddError(fmt.Sprintf("missing required field: %s", field))
		}
	}

	v.checkEntityRef(doc["entityRef"], result)

	for _, field := range []string{"generatedDateTimeUtc", "scoringReviewDate"} {
		if value, ok := doc[field]; ok && value != nil {
			if !isValidTimestamp(value) {
				result.AddError(fmt.Sprintf("%s is not a valid date: %v", field, value))
			}
		}
	}

	if reviewer, ok := doc["scoringReviewer"]; ok && reviewer != nil {
		if _, isString := reviewer.(string); !isString {
			result.AddError("scoringReviewer must be a string")
		}
	}

	if areas := doc["areaScores"]; areas != nil {
		if list, ok := areas.([]any); ok {
			v.checkAreas(list, result)
		} else {
			result.AddError("areaScores must be an array")
		}
	}

	v.checkOverallDrift(doc, result)

	return result
}

func (v *Validator) checkEntityRef(value any, result *domain.ValidationResult) {
	if value == nil {
		return
	}
	ref, ok := value.(map[string]any)
	if !ok {
		result.AddError("entityRef must be an object")
		return
	}

	kind, kindOK := requireString(ref, "kind", "entityRef", result)
	requireString(ref, "name", "entityRef", result)

	if ns, ok := ref["namespace"]; ok && ns != nil {
		if _, isString := ns.(string); !isString {
			result.AddError("entityRef.namespace must be a string")
		}
	}

	if kindOK && !slices.Contains(v.config.KnownKinds, kind) {
		msg := fmt.Sprintf("entityRef.kind %q is not a recognized kind (expected one of %s)",
			kind, strings.Join(v.config.KnownKinds, ", "))
		if hint, ok := suggest(kind, v.config.KnownKinds); ok {
			msg += fmt.Sprintf("; did you mean %q?", hint)
		}
		result.AddWarning(msg)
	}
}

func (v *Validator) checkAreas(areas []any, result *domain.ValidationResult) {
	seen := make(map[float64]int)
	for i, item := range areas {
		path := fmt.Sprintf("areaScores[%d]", i)
		area, ok := item.(map[string]any)
		if !ok {
			result.AddError(path + " must be an object")
			continue
		}

		if id, ok := requireInteger(area, "id", path, result); ok {
			if first, dup := seen[id]; dup {
				result.AddError(fmt.Sprintf("%s.id %v duplicates areaScores[%d].id", path, id, first))
			} else {
				seen[id] = i
			}
		}
		requireString(area, "title", path, result)

		entries, present := area["scoreEntries"]
		if !present || entries == nil {
			result.AddError(fmt.Sprintf("%s.scoreEntries is required", path))
			continue
		}
		list, ok := entries.([]any)
		if !ok {
			result.AddError(fmt.Sprintf("%s.scoreEntries must be an array", path))
			continue
		}
		if len(list) == 0 {
			result.AddError(fmt.Sprintf("%s.scoreEntries must not be empty", path))
			continue
		}

		v.checkEntries(path, list, result)
	}
}

func (v *Validator) checkEntries(areaPath string, entries []any, result *domain.ValidationResult) {
	seen := make(map[float64]int)
	for j, item := range entries {
		path := fmt.Sprintf("%s.scoreEntries[%d]", areaPath, j)
		entry, ok := item.(map[string]any)
		if !ok {
			result.AddError(path + " must be an object")
			continue
		}

		if id, ok := requireInteger(entry, "id", path, result); ok {
			if first, dup := seen[id]; dup {
				result.AddError(fmt.Sprintf("%s.id %v duplicates %s.scoreEntries[%d].id", path, id, areaPath, first))
			} else {
				seen[id] = j
			}
		}
		requireString(entry, "title", path, result)
		requireString(entry, "details", path, result)

		declared, successOK := v.checkScoreSuccess(entry, path, result)
		percent, percentOK := checkScorePercent(entry, path, result)

		if opt, ok := entry["isOptional"]; ok && opt != nil {
			if _, isBool := opt.(bool); !isBool {
				result.AddError(fmt.Sprintf("%s.isOptional must be a boolean", path))
			}
		}

		if successOK && percentOK && declared != domain.Unknown {
			if expected := domain.SuccessFor(percent); expected != declared {
				result.AddWarning(fmt.Sprintf("%s.scoreSuccess %q does not match scorePercent %v (expected %q)",
					path, declared, percent, expected))
			}
		}

		v.checkComments(entry, path, result)
	}
}

// checkScoreSuccess reports whether the entry declares one of the fixed
// categories and returns it.
func (v *Validator) checkScoreSuccess(
	entry map[string]any,
	path string,
	result *domain.ValidationResult,
) (domain.ScoreSuccess, bool) {
	value, ok := requireString(entry, "scoreSuccess", path, result)
	if !ok {
		return "", false
	}
	if err := validate.Var(value, scoreSuccessTag); err != nil {
		names := scoreSuccessNames()
		msg := fmt.Sprintf("%s.scoreSuccess %q must be one of %s", path, value, strings.Join(names, ", "))
		if hint, ok := suggest(value, names); ok {
			msg += fmt.Sprintf("; did you mean %q?", hint)
		}
		result.AddError(msg)
		return "", false
	}
	return domain.ScoreSuccess(value), true
}

// checkScorePercent reports whether the entry carries a usable percent and
// returns it. A null or absent percent is not an error.
func checkScorePercent(entry map[string]any, path string, result *domain.ValidationResult) (float64, bool) {
	value, ok := entry["scorePercent"]
	if !ok || value == nil {
		return 0, false
	}
	percent, isNumber := asNumber(value)
	if !isNumber || validate.Var(percent, percentTag) != nil {
		result.AddError(fmt.Sprintf("%s.scorePercent must be a number between 0-100, got %v", path, value))
		return 0, false
	}
	return percent, true
}

func (v *Validator) checkComments(entry map[string]any, path string, result *domain.ValidationResult) {
	raw, present := entry["selfAssessmentComments"]
	if !present || raw == nil {
		return
	}
	comments, ok := raw.(string)
	if !ok {
		result.AddError(fmt.Sprintf("%s.selfAssessmentComments must be a string", path))
		return
	}
	if comments == "" {
		return
	}
	caser := cases.Fold()
	folded := caser.String(comments)
	for _, marker := range v.config.PlaceholderMarkers {
		if strings.Contains(folded, caser.String(marker)) {
			result.AddWarning(fmt.Sprintf("%s.selfAssessmentComments still contains placeholder text %q", path, marker))
			return
		}
	}
}

// checkOverallDrift recomputes the overall percent from whatever entries
// are readable and compares it with the stored scorePercent.
func (v *Validator) checkOverallDrift(doc map[string]any, result *domain.ValidationResult) {
	stored, ok := doc["scorePercent"]
	if !ok || stored == nil {
		return
	}
	storedPercent, isNumber := asNumber(stored)
	if !isNumber {
		result.AddError(fmt.Sprintf("scorePercent must be a number between 0-100, got %v", stored))
		return
	}

	computed := OverallPercent(lenientAreas(doc["areaScores"]))
	if diff := math.Abs(computed - storedPercent); diff > v.config.DriftTolerance {
		result.AddWarning(fmt.Sprintf("scorePercent %v differs from computed overall %.1f by %.1f points",
			storedPercent, computed, diff))
	}
}

// lenientAreas extracts the fields that matter for scoring, skipping values
// of the wrong type instead of failing. Type problems are reported by the
// structural checks.
func lenientAreas(value any) []domain.Area {
	list, _ := value.([]any)
	areas := make([]domain.Area, 0, len(list))
	for _, item := range list {
		area, ok := item.(map[string]any)
		if !ok {
			continue
		}
		rawEntries, _ := area["scoreEntries"].([]any)
		entries := make([]domain.Entry, 0, len(rawEntries))
		for _, rawEntry := range rawEntries {
			entry, ok := rawEntry.(map[string]any)
			if !ok {
				continue
			}
			e := domain.Entry{}
			if s, ok := entry["scoreSuccess"].(string); ok {
				e.ScoreSuccess = domain.ScoreSuccess(s)
			}
			if p, ok := asNumber(entry["scorePercent"]); ok {
				e.ScorePercent = domain.Percent(p)
			}
			e.IsOptional, _ = entry["isOptional"].(bool)
			entries = append(entries, e)
		}
		areas = append(areas, domain.Area{ScoreEntries: entries})
	}
	return areas
}

func requireString(obj map[string]any, field, path string, result *domain.ValidationResult) (string, bool) {
	value, ok := obj[field]
	if !ok || value == nil {
		result.AddError(fmt.Sprintf("%s.%s is required", path, field))
		return "", false
	}
	s, ok := value.(string)
	if !ok {
		result.AddError(fmt.Sprintf("%s.%s must be a string", path, field))
		return "", false
	}
	return s, true
}

func requireNumber(obj map[string]any, field, path string, result *domain.ValidationResult) (float64, bool) {
	value, ok := obj[field]
	if !ok || value == nil {
		result.AddError(fmt.Sprintf("%s.%s is required", path, field))
		return 0, false
	}
	n, ok := asNumber(value)
	if !ok {
		result.AddError(fmt.Sprintf("%s.%s must be a number", path, field))
		return 0, false
	}
	return n, true
}

// requireInteger is requireNumber for ids, which decode into int fields and
// must therefore be whole numbers within the 32-bit range.
func requireInteger(obj map[string]any, field, path string, result *domain.ValidationResult) (float64, bool) {
	n, ok := requireNumber(obj, field, path, result)
	if !ok {
		return 0, false
	}
	if n != math.Trunc(n) || n < math.MinInt32 || n > math.MaxInt32 {
		result.AddError(fmt.Sprintf("%s.%s must be an integer, got %v", path, field, n))
		return 0, false
	}
	return n, true
}

// asNumber accepts the numeric types produced by encoding/json as well as
// native Go numbers used by in-memory fixtures.
func asNumber(value any) (float64, bool) {
	var f float64
	switch n := value.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
