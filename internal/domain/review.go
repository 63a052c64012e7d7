package domain

import "time"

// Review is one sourced review, flat and immutable. Optional fields stay nil
// when the source omitted them or the value failed coercion at ingest time.
type Review struct {
	ID         int64
	PlaceID    *string
	SourceID   *string
	BaseName   string // raw restaurant name, may repeat across localities
	Locality   *string
	Author     *string
	Rating     *float64
	Pros       []string // normalized to a list at the ingestion boundary
	Cons       []string
	Text       *string
	ReviewedAt *time.Time
	Lat, Lng   *float64
	Source     *string
	RawJSON    []byte
}

// LocalityOrEmpty treats an absent locality the same as an empty one.
func (r Review) LocalityOrEmpty() string {
	if r.Locality == nil {
		return ""
	}
	return *r.Locality
}
