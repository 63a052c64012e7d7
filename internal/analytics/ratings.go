package analytics

import "math"

// AverageRatings computes the mean rating per display key, rounded to two
// decimals (round half to even). A key is emitted only when it saw at least
// one valid rating; there is never a defaulted 0.0 entry.
func AverageRatings(b Batch) map[string]float64 {
	return averageBy(b.Records, func(r Record) string { return r.DisplayKey })
}

func averageBy(recs []Record, key func(Record) string) map[string]float64 {
	type acc struct {
		sum float64
		n   int
	}
	accs := make(map[string]*acc)
	for _, r := range recs {
		k := key(r)
		if k == "" || r.Rating == nil {
			continue
		}
		a := accs[k]
		if a == nil {
			a = &acc{}
			accs[k] = a
		}
		a.sum += *r.Rating
		a.n++
	}
	out := make(map[string]float64, len(accs))
	for k, a := range accs {
		if a.n > 0 {
			out[k] = round2(a.sum / float64(a.n))
		}
	}
	return out
}

func round2(f float64) float64 {
	return math.RoundToEven(f*100) / 100
}
