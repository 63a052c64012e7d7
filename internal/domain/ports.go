package domain

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

type ReviewRepository interface {
	// Write paths
	UpsertPlace(ctx context.Context, p Place) error
	UpsertReviews(ctx context.Context, rs []Review) error
	LogMiss(ctx context.Context, placeID string, status int, reason string) error

	// Read paths
	ListReviews(ctx context.Context) ([]Review, error)
	ListPlaceIDs(ctx context.Context) ([]string, error)
}

// PlacesClient fetches per-location details and raw reviews from the
// external places API. Payload shapes vary by provider version, so both
// come back as loose maps and are coerced by the app-layer mappers.
type PlacesClient interface {
	GetPlaceDetails(ctx context.Context, placeID string) (map[string]any, error)
	GetPlaceReviews(ctx context.Context, placeID string, count int) ([]map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
