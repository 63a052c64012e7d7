package analytics

import "sort"

// TimeSeries holds parallel per-month sequences sorted by label ascending.
// Lexicographic "YYYY-MM" order is chronological order. All three slices
// are non-nil; an empty series is a valid terminal output, not an error.
type TimeSeries struct {
	Labels         []string  `json:"labels"`
	ReviewCounts   []int     `json:"review_counts"`
	AverageRatings []float64 `json:"average_ratings"`
}

// MonthlySeries buckets records by calendar month. Only records carrying
// both a normalized timestamp and a valid rating contribute.
func MonthlySeries(b Batch) TimeSeries {
	type bucket struct {
		n   int
		sum float64
	}
	buckets := make(map[string]*bucket)
	for _, r := range b.Records {
		if r.ReviewedAt == nil || r.Rating == nil {
			continue
		}
		m := r.ReviewedAt.Format("2006-01")
		bk := buckets[m]
		if bk == nil {
			bk = &bucket{}
			buckets[m] = bk
		}
		bk.n++
		bk.sum += *r.Rating
	}

	labels := make([]string, 0, len(buckets))
	for m := range buckets {
		labels = append(labels, m)
	}
	sort.Strings(labels)

	ts := TimeSeries{
		Labels:         labels,
		ReviewCounts:   make([]int, 0, len(labels)),
		AverageRatings: make([]float64, 0, len(labels)),
	}
	for _, m := range labels {
		bk := buckets[m]
		ts.ReviewCounts = append(ts.ReviewCounts, bk.n)
		ts.AverageRatings = append(ts.AverageRatings, round2(bk.sum/float64(bk.n)))
	}
	return ts
}
