package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resto_reviews/internal/domain"
)

type IngestionService struct {
	places domain.PlacesClient
	repo   domain.ReviewRepository
	cache  domain.Cache
}

func NewIngestionService(p domain.PlacesClient, r domain.ReviewRepository, cache domain.Cache) *IngestionService {
	return &IngestionService{places: p, repo: r, cache: cache}
}

// IngestPlace fetches one location's details and reviews and upserts them.
// 404/401/403 from the provider are recorded as misses and do not fail the
// run; anything else bubbles up.
func (s *IngestionService) IngestPlace(ctx context.Context, placeID string, reviewCount int) error {
	p, err := s.places.GetPlaceDetails(ctx, placeID)
	if err != nil {
		if status, reason, miss := classifyMiss(err); miss {
			_ = s.repo.LogMiss(ctx, placeID, status, reason)
			s.invalidateAggregates(ctx)
			return nil
		}
		return err
	}

	place := mapPlace(placeID, p)
	if err := s.repo.UpsertPlace(ctx, place); err != nil {
		return err
	}

	// Reviews: best-effort. Misses are recorded, other errors surface.
	if raw, rerr := s.places.GetPlaceReviews(ctx, placeID, reviewCount); rerr != nil {
		if status, _, miss := classifyMiss(rerr); miss {
			_ = s.repo.LogMiss(ctx, placeID, status, "reviews")
		} else {
			return rerr
		}
	} else if len(raw) > 0 {
		if err := s.repo.UpsertReviews(ctx, mapReviews(place, raw)); err != nil {
			return fmt.Errorf("upsert reviews failed for %s: %w", placeID, err)
		}
	}

	// Any successful ingest can change every aggregate; drop the common
	// cached views so the next read recomputes.
	s.invalidateAggregates(ctx)
	return nil
}

// classifyMiss maps provider not-found/auth failures to (status, reason).
func classifyMiss(err error) (int, string, bool) {
	low := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, domain.ErrNotFound) || strings.Contains(low, "not found"):
		return 404, "not found", true
	case strings.Contains(low, "401") || strings.Contains(low, "unauthorized"),
		strings.Contains(low, "403") || strings.Contains(low, "forbidden"):
		return 403, "inactive", true
	}
	return 0, "", false
}

func (s *IngestionService) invalidateAggregates(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for _, key := range []string{"stats::", "markers:all", "names:restaurants", "names:cities"} {
		_ = s.cache.Del(ctx, key)
	}
}
