package app

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"resto_reviews/internal/analytics"
	"resto_reviews/internal/domain"
)

/********** alias registries (single source of truth) **********/

// Places payload shapes drift across provider versions and across the
// curated exports we re-ingest, so every field is resolved through a list
// of known aliases, first non-empty wins.

var reviewAliases = map[string][]string{
	"author":    {"author", "author_name", "name", "userName", "reviewer", "reviewer.name"},
	"text":      {"text", "review_text", "review", "comment", "content", "body"},
	"rating":    {"rating", "review_rating", "rate", "score", "stars"},
	"timestamp": {"time", "time_review", "review_datetime", "datetime", "published_at", "created_at"},
	"source":    {"source", "platform", "provider", "origin"},
	"source_id": {"id", "review_id", "reviewId"},
	"pros":      {"pros", "review_pros", "positives"},
	"cons":      {"cons", "review_cons", "negatives"},
}

var placeAliases = map[string][]string{
	"name":    {"name", "display_name", "displayName.text", "displayName"},
	"city":    {"city", "locality", "address.city", "address_components.city", "town"},
	"website": {"website", "websiteUri", "url"},
	"address": {"formatted_address", "formattedAddress", "address", "vicinity"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) *string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return &s
		}
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func ptrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// firstFloat resolves the first path whose value coerces to a number.
func firstFloat(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		v := lookupAny(m, k)
		if v == nil {
			continue
		}
		if f, ok := analytics.ParseRating(v); ok {
			return &f
		}
	}
	return nil
}

// firstCoord is firstFloat with the coordinate failure counter.
func firstCoord(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		v := lookupAny(m, k)
		if v == nil {
			continue
		}
		if f, ok := analytics.ParseCoord(v); ok {
			return &f
		}
	}
	return nil
}

func firstInt64(m map[string]any, paths ...string) *int64 {
	if f := firstFloat(m, paths...); f != nil {
		n := int64(*f)
		return &n
	}
	return nil
}

/********** place mapper **********/

func mapPlace(placeID string, p map[string]any) domain.Place {
	raw, err := json.Marshal(p)
	if err != nil {
		log.Error().Err(err).Str("context", "mapPlace").Msg("failed to marshal place payload")
	}

	city := firstNonEmptyAlias(p, placeAliases, "city")
	if city == nil {
		// fall back to the locality segment of a comma-separated address
		if addr := deref(firstNonEmptyAlias(p, placeAliases, "address")); addr != "" {
			city = ptrStr(cityFromAddress(addr))
		}
	}

	return domain.Place{
		ID:            placeID,
		Name:          firstNonEmptyAlias(p, placeAliases, "name"),
		City:          city,
		Lat:           firstCoord(p, "latitude", "lat", "geometry.location.lat", "location.lat", "location.latitude"),
		Lng:           firstCoord(p, "longitude", "lng", "geometry.location.lng", "location.lng", "location.longitude"),
		Website:       firstNonEmptyAlias(p, placeAliases, "website"),
		OverallRating: firstFloat(p, "rating", "overall_rating"),
		TotalRatings:  firstInt64(p, "user_ratings_total", "total_ratings", "userRatingCount"),
		RawJSON:       raw,
	}
}

// cityFromAddress picks the locality out of "street, 75001 Paris, France"
// style addresses: second-to-last comma segment, digits stripped.
func cityFromAddress(addr string) string {
	parts := strings.Split(addr, ",")
	if len(parts) < 2 {
		return ""
	}
	seg := strings.TrimSpace(parts[len(parts)-2])
	fields := strings.Fields(seg)
	kept := fields[:0]
	for _, f := range fields {
		if strings.IndexFunc(f, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0 {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

/********** review mapper **********/

// mapReviews flattens raw review payloads into domain records, denormalizing
// the place's name, city and coordinates onto every record so the engine
// can consume a flat batch.
func mapReviews(place domain.Place, in []map[string]any) []domain.Review {
	out := make([]domain.Review, 0, len(in))
	for _, r := range in {
		rv := domain.Review{
			PlaceID:  ptrStr(place.ID),
			BaseName: deref(place.Name),
			Locality: place.City,
			Lat:      place.Lat,
			Lng:      place.Lng,
		}

		if s := firstNonEmptyAlias(r, reviewAliases, "author"); s != nil {
			rv.Author = s
		}
		if s := firstNonEmptyAlias(r, reviewAliases, "text"); s != nil {
			rv.Text = s
		}
		if s := firstNonEmptyAlias(r, reviewAliases, "source"); s != nil {
			rv.Source = s
		}
		rv.Rating = firstFloat(r, reviewAliases["rating"]...)

		// several wire encodings possible; unparseable values stay nil and
		// only exclude the record from time-bucketed aggregates
		for _, path := range reviewAliases["timestamp"] {
			v := lookupAny(r, path)
			if v == nil {
				continue
			}
			if ts, ok := analytics.ParseTimestamp(v); ok {
				rv.ReviewedAt = &ts
			}
			break
		}

		// string-or-list shape is collapsed to a list once, here
		for _, path := range reviewAliases["pros"] {
			if vals := analytics.NormalizeAspects(lookupAny(r, path)); len(vals) > 0 {
				rv.Pros = vals
				break
			}
		}
		for _, path := range reviewAliases["cons"] {
			if vals := analytics.NormalizeAspects(lookupAny(r, path)); len(vals) > 0 {
				rv.Cons = vals
				break
			}
		}

		id := sourceID(r, rv)
		rv.SourceID = &id

		if raw, err := json.Marshal(r); err == nil {
			rv.RawJSON = raw
		} else {
			log.Error().Err(err).Str("context", "mapReviews").Msg("marshal review failed")
		}

		out = append(out, rv)
	}
	return out
}

// sourceID prefers the provider's review id; otherwise it synthesizes a
// stable hash so re-ingestion upserts instead of duplicating.
func sourceID(r map[string]any, rv domain.Review) string {
	if s := firstNonEmptyAlias(r, reviewAliases, "source_id"); s != nil {
		return *s
	}
	rating := ""
	if rv.Rating != nil {
		rating = fmt.Sprintf("%.3f", *rv.Rating)
	}
	ts := ""
	if rv.ReviewedAt != nil {
		ts = rv.ReviewedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	sig := strings.Join([]string{deref(rv.PlaceID), deref(rv.Author), deref(rv.Text), rating, ts}, "|")
	sum := sha1.Sum([]byte(sig))
	return hex.EncodeToString(sum[:])
}
