package analytics

// BoundingBox is a geographic viewport; bounds are inclusive.
type BoundingBox struct {
	South, West, North, East float64
}

func (bb BoundingBox) Contains(lat, lng float64) bool {
	return lat >= bb.South && lat <= bb.North && lng >= bb.West && lng <= bb.East
}

type Marker struct {
	Name        string  `json:"name"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	AvgRating   float64 `json:"avg_rating"`
	ReviewCount int     `json:"review_count"`
}

// Markers builds one map marker per base name that has at least one record
// with a valid coordinate pair. The first valid pair in original batch
// order wins; later pairs for the same name are ignored. Rating aggregates
// are keyed by base name (not display key) across all records of that name
// in the filtered set. When a bounding box is supplied, records without a
// valid in-box coordinate pair are dropped before grouping.
func Markers(b Batch, box *BoundingBox) []Marker {
	recs := b.Records
	if box != nil {
		filtered := make([]Record, 0, len(recs))
		for _, r := range recs {
			if r.Lat != nil && r.Lng != nil && box.Contains(*r.Lat, *r.Lng) {
				filtered = append(filtered, r)
			}
		}
		recs = filtered
	}

	type coord struct{ lat, lng float64 }
	type acc struct {
		sum float64
		n   int
	}
	coords := make(map[string]coord)
	accs := make(map[string]*acc)
	var order []string // names in order of first valid coordinate

	for _, r := range recs {
		name := r.BaseName
		if name == "" {
			continue
		}
		if _, ok := coords[name]; !ok && r.Lat != nil && r.Lng != nil {
			coords[name] = coord{lat: *r.Lat, lng: *r.Lng}
			order = append(order, name)
		}
		if r.Rating != nil {
			a := accs[name]
			if a == nil {
				a = &acc{}
				accs[name] = a
			}
			a.sum += *r.Rating
			a.n++
		}
	}

	out := make([]Marker, 0, len(order))
	for _, name := range order {
		c := coords[name]
		m := Marker{Name: name, Lat: c.lat, Lng: c.lng}
		if a := accs[name]; a != nil && a.n > 0 {
			m.AvgRating = round2(a.sum / float64(a.n))
			m.ReviewCount = a.n
		}
		out = append(out, m)
	}
	return out
}
