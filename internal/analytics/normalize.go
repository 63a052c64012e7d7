package analytics

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"resto_reviews/internal/adapters/observability"
)

// Timestamp layouts seen on the wire, tried in order. The places API emits
// RFC3339; older exports use space-separated or date-only forms.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp coerces a raw timestamp of any accepted wire shape into a
// time.Time. Native time values pass through; integers are epoch seconds
// (the scraper stores review time that way); strings are tried against the
// known layouts. A present-but-unparseable value is logged and counted, and
// the record is excluded from time-bucketed aggregates only.
func ParseTimestamp(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case int:
		return time.Unix(int64(t), 0).UTC(), true
	case int64:
		return time.Unix(t, 0).UTC(), true
	case float64:
		return time.Unix(int64(t), 0).UTC(), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, true
			}
		}
	}
	log.Warn().Interface("value", v).Msg("unparseable review timestamp, skipping for time buckets")
	observability.ObserveParseFailure("timestamp")
	return time.Time{}, false
}

// ParseRating coerces a rating value (float/int/string, comma decimals
// tolerated) or reports failure. Nil means absent, not a failure.
func ParseRating(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	if f, ok := parseFloat(v); ok {
		return f, true
	}
	log.Warn().Interface("value", v).Msg("unparseable rating, skipping record for rating aggregates")
	observability.ObserveParseFailure("rating")
	return 0, false
}

// ParseCoord coerces one latitude/longitude component.
func ParseCoord(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	if f, ok := parseFloat(v); ok {
		return f, true
	}
	log.Warn().Interface("value", v).Msg("unparseable coordinate, record will produce no marker")
	observability.ObserveParseFailure("coordinate")
	return 0, false
}

func parseFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(n, ",", "."))
		if s == "" {
			return 0, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// NormalizeAspects flattens the string-or-list shape of pros/cons into a
// list of non-empty trimmed strings, so downstream logic never branches on
// shape. Nil or empty elements are skipped individually.
func NormalizeAspects(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
		return nil
	case []string:
		return trimNonEmpty(t)
	case []any:
		items := make([]string, 0, len(t))
		for _, it := range t {
			if s, ok := it.(string); ok {
				items = append(items, s)
			}
		}
		return trimNonEmpty(items)
	}
	return nil
}

func trimNonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
