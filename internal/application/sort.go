package application

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/one-acre-fund/application-score-card/internal/domain"
)

// SortRecords orders records by entity name using the collation rules of
// locale, so the output is stable and diffable between runs. Ties on name
// fall back to namespace and kind. An unparsable locale falls back to
// language.Und.
func SortRecords(records []domain.NormalizedRecord, locale string) {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	// Collators keep internal buffers and are not shared between calls.
	c := collate.New(tag)

	slices.SortStableFunc(records, func(a, b domain.NormalizedRecord) int {
		if n := c.CompareString(a.EntityRef.Name, b.EntityRef.Name); n != 0 {
			return n
		}
		if n := strings.Compare(a.EntityRef.Namespace, b.EntityRef.Namespace); n != 0 {
			return n
		}
		return strings.Compare(a.EntityRef.Kind, b.EntityRef.Kind)
	})
}
