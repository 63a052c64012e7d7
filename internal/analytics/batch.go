// Package analytics is the pure aggregation core: it turns a flat batch of
// review records into disambiguated display keys, pros/cons tallies, average
// ratings, a monthly time series and map markers. Every function here is a
// stateless transform that never mutates its input batch; all outputs are
// recomputed per call.
package analytics

import (
	"sort"

	"resto_reviews/internal/domain"
)

// Record is a review plus its batch-relative display key.
type Record struct {
	domain.Review
	DisplayKey string
}

// Batch is an order-preserving, disambiguated candidate set.
type Batch struct {
	Records []Record
}

// FilterLocality keeps records whose locality equals city. Display keys are
// carried over unchanged: disambiguation always happens against the full
// universe first, never against a filtered subset.
func (b Batch) FilterLocality(city string) Batch {
	out := make([]Record, 0, len(b.Records))
	for _, r := range b.Records {
		if r.LocalityOrEmpty() == city {
			out = append(out, r)
		}
	}
	return Batch{Records: out}
}

// FilterDisplayKey keeps records matching one UI-facing name.
func (b Batch) FilterDisplayKey(key string) Batch {
	out := make([]Record, 0, len(b.Records))
	for _, r := range b.Records {
		if r.DisplayKey == key {
			out = append(out, r)
		}
	}
	return Batch{Records: out}
}

// DisplayKeys returns the sorted distinct display keys of the batch.
func (b Batch) DisplayKeys() []string {
	return sortedDistinct(b.Records, func(r Record) string { return r.DisplayKey })
}

// Localities returns the sorted distinct non-empty localities of the batch.
func (b Batch) Localities() []string {
	return sortedDistinct(b.Records, func(r Record) string { return r.LocalityOrEmpty() })
}

func sortedDistinct(recs []Record, f func(Record) string) []string {
	seen := make(map[string]struct{}, len(recs))
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		v := f(r)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
