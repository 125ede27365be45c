package scoring

import (
	"strings"
	"time"
)

// timestampLayouts are the formats accepted for generatedDateTimeUtc and
// scoringReviewDate. Authors write these by hand, so date-only and
// zone-less forms are accepted alongside RFC 3339.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseTimestamp parses s using the accepted layouts.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isValidTimestamp(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	_, ok = ParseTimestamp(s)
	return ok
}
