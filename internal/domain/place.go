package domain

type Place struct {
	ID            string
	Name          *string
	City          *string
	Lat, Lng      *float64
	Website       *string
	OverallRating *float64
	TotalRatings  *int64
	RawJSON       []byte // full place payload
}
