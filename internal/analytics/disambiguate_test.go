package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resto_reviews/internal/analytics"
	"resto_reviews/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func review(name, city string, rating float64) domain.Review {
	r := domain.Review{BaseName: name, Rating: ptr(rating)}
	if city != "" {
		r.Locality = ptr(city)
	}
	return r
}

func TestDisambiguate_AmbiguousNamesGetLocalitySuffix(t *testing.T) {
	batch := analytics.Disambiguate([]domain.Review{
		review("A", "X", 5),
		review("A", "Y", 3),
	})
	require.Len(t, batch.Records, 2)
	assert.Equal(t, "A (X)", batch.Records[0].DisplayKey)
	assert.Equal(t, "A (Y)", batch.Records[1].DisplayKey)
}

func TestDisambiguate_SingleLocalityKeepsBaseName(t *testing.T) {
	batch := analytics.Disambiguate([]domain.Review{
		review("A", "X", 5),
		review("A", "X", 3),
	})
	for _, r := range batch.Records {
		assert.Equal(t, "A", r.DisplayKey)
	}
}

func TestDisambiguate_EmptyLocalityNeverRewritten(t *testing.T) {
	// "B" is ambiguous via two cities, but the record without a locality
	// has nothing to disambiguate with and keeps the bare name.
	batch := analytics.Disambiguate([]domain.Review{
		review("B", "X", 4),
		review("B", "Y", 2),
		review("B", "", 1),
	})
	require.Len(t, batch.Records, 3)
	assert.Equal(t, "B (X)", batch.Records[0].DisplayKey)
	assert.Equal(t, "B (Y)", batch.Records[1].DisplayKey)
	assert.Equal(t, "B", batch.Records[2].DisplayKey)
}

func TestDisambiguate_LoneRecordWithoutLocality(t *testing.T) {
	batch := analytics.Disambiguate([]domain.Review{review("Solo", "", 4)})
	require.Len(t, batch.Records, 1)
	assert.Equal(t, "Solo", batch.Records[0].DisplayKey)
}

func TestDisambiguate_OrderIndependent(t *testing.T) {
	fwd := []domain.Review{review("A", "X", 5), review("A", "Y", 3), review("C", "X", 1)}
	rev := []domain.Review{fwd[2], fwd[1], fwd[0]}

	keysOf := func(b analytics.Batch) map[string]string {
		out := map[string]string{}
		for _, r := range b.Records {
			out[r.BaseName+"|"+r.LocalityOrEmpty()] = r.DisplayKey
		}
		return out
	}
	assert.Equal(t, keysOf(analytics.Disambiguate(fwd)), keysOf(analytics.Disambiguate(rev)))
}

func TestDisambiguate_DoesNotMutateInput(t *testing.T) {
	in := []domain.Review{review("A", "X", 5), review("A", "Y", 3)}
	cityBefore := *in[0].Locality
	_ = analytics.Disambiguate(in)
	assert.Equal(t, cityBefore, *in[0].Locality)
	assert.Equal(t, "A", in[0].BaseName)
}

func TestDisambiguate_EmptyBatch(t *testing.T) {
	batch := analytics.Disambiguate(nil)
	assert.Empty(t, batch.Records)
}

func TestBatch_Filters(t *testing.T) {
	batch := analytics.Disambiguate([]domain.Review{
		review("A", "X", 5),
		review("A", "Y", 3),
		review("C", "X", 1),
	})

	byCity := batch.FilterLocality("X")
	require.Len(t, byCity.Records, 2)
	// display keys computed against the full universe survive filtering
	assert.Equal(t, "A (X)", byCity.Records[0].DisplayKey)
	assert.Equal(t, "C", byCity.Records[1].DisplayKey)

	byKey := batch.FilterDisplayKey("A (Y)")
	require.Len(t, byKey.Records, 1)
	assert.Equal(t, "Y", byKey.Records[0].LocalityOrEmpty())

	assert.Equal(t, []string{"A (X)", "A (Y)", "C"}, batch.DisplayKeys())
	assert.Equal(t, []string{"X", "Y"}, batch.Localities())
}
