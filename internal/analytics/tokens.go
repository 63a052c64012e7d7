package analytics

import (
	"sort"
	"strings"
)

// Field selects which free-text aspect of a record to tally.
type Field int

const (
	FieldPros Field = iota
	FieldCons
)

type TokenCount struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

const placeholderToken = "empty"

const topTokenLimit = 10

// TopTokens tallies the selected aspect tokens, case- and whitespace-
// normalized, and returns the top 10 by count descending. Ties keep
// first-seen order (stable sort, no re-sort by token). The literal
// placeholder "empty" and blank tokens are filtered after truncation, which
// can leave fewer than 10 entries even when more tokens exist.
func TopTokens(b Batch, f Field) []TokenCount {
	counts := make(map[string]int)
	var order []string

	tally := func(raw string) {
		tok := strings.ToLower(strings.TrimSpace(raw))
		if tok == "" {
			return
		}
		if _, seen := counts[tok]; !seen {
			order = append(order, tok)
		}
		counts[tok]++
	}

	for _, r := range b.Records {
		vals := r.Pros
		if f == FieldCons {
			vals = r.Cons
		}
		for _, v := range vals {
			tally(v)
		}
	}

	ranked := make([]TokenCount, 0, len(order))
	for _, tok := range order {
		ranked = append(ranked, TokenCount{Token: tok, Count: counts[tok]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	if len(ranked) > topTokenLimit {
		ranked = ranked[:topTokenLimit]
	}

	out := make([]TokenCount, 0, len(ranked))
	for _, tc := range ranked {
		if tc.Count <= 0 || tc.Token == "" || tc.Token == placeholderToken {
			continue
		}
		out = append(out, tc)
	}
	return out
}
