package analytics

import (
	"fmt"

	"resto_reviews/internal/domain"
)

// Disambiguate assigns each record a display key. A base name is ambiguous
// iff the batch associates it with two or more distinct non-empty
// localities; only then is the locality appended, and only for records that
// actually carry one. Everything else keeps the base name verbatim,
// including empty-locality records of an otherwise ambiguous name. The
// result depends on set membership only, not on record order, and the input
// slice is never mutated.
func Disambiguate(reviews []domain.Review) Batch {
	localities := make(map[string]map[string]struct{})
	for _, r := range reviews {
		if r.BaseName == "" {
			continue
		}
		loc := r.LocalityOrEmpty()
		if loc == "" {
			continue
		}
		set := localities[r.BaseName]
		if set == nil {
			set = make(map[string]struct{}, 2)
			localities[r.BaseName] = set
		}
		set[loc] = struct{}{}
	}

	records := make([]Record, 0, len(reviews))
	for _, r := range reviews {
		key := r.BaseName
		if len(localities[r.BaseName]) >= 2 {
			if loc := r.LocalityOrEmpty(); loc != "" {
				key = fmt.Sprintf("%s (%s)", r.BaseName, loc)
			}
		}
		records = append(records, Record{Review: r, DisplayKey: key})
	}
	return Batch{Records: records}
}
