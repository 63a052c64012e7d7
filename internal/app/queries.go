package app

import (
	"context"
	"fmt"
	"time"

	"resto_reviews/internal/analytics"
	"resto_reviews/internal/domain"
)

// StatsQuery narrows the universe before aggregation. Disambiguation always
// runs against the full universe first; filters apply to the keyed batch,
// so display keys are stable across filtered views.
type StatsQuery struct {
	City       string
	Restaurant string // matches the display key
}

type StatsView struct {
	TopPros        []analytics.TokenCount `json:"top_pros"`
	TopCons        []analytics.TokenCount `json:"top_cons"`
	AverageRatings map[string]float64     `json:"average_ratings"`
	TimeSeries     analytics.TimeSeries   `json:"time_series"`
}

type QueryService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

// universe loads the full batch and disambiguates it once.
func (s *QueryService) universe(ctx context.Context) (analytics.Batch, error) {
	reviews, err := s.repo.ListReviews(ctx)
	if err != nil {
		return analytics.Batch{}, err
	}
	return analytics.Disambiguate(reviews), nil
}

func (s *QueryService) Stats(ctx context.Context, q StatsQuery) (StatsView, error) {
	key := fmt.Sprintf("stats:%s:%s", q.City, q.Restaurant)
	var out StatsView
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	b, err := s.universe(ctx)
	if err != nil {
		return StatsView{}, err
	}
	if q.City != "" {
		b = b.FilterLocality(q.City)
	}
	if q.Restaurant != "" {
		b = b.FilterDisplayKey(q.Restaurant)
	}

	out = StatsView{
		TopPros:        analytics.TopTokens(b, analytics.FieldPros),
		TopCons:        analytics.TopTokens(b, analytics.FieldCons),
		AverageRatings: analytics.AverageRatings(b),
		TimeSeries:     analytics.MonthlySeries(b),
	}
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

func (s *QueryService) Markers(ctx context.Context, box *analytics.BoundingBox) ([]analytics.Marker, error) {
	key := "markers:all"
	if box != nil {
		key = fmt.Sprintf("markers:%g:%g:%g:%g", box.South, box.West, box.North, box.East)
	}
	var out []analytics.Marker
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	b, err := s.universe(ctx)
	if err != nil {
		return nil, err
	}
	out = analytics.Markers(b, box)
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

func (s *QueryService) Restaurants(ctx context.Context) ([]string, error) {
	var out []string
	if ok, _ := s.cache.Get(ctx, "names:restaurants", &out); ok {
		return out, nil
	}
	b, err := s.universe(ctx)
	if err != nil {
		return nil, err
	}
	out = b.DisplayKeys()
	_ = s.cache.Set(ctx, "names:restaurants", out, int(s.cacheTTL.Seconds()))
	return out, nil
}

func (s *QueryService) Cities(ctx context.Context) ([]string, error) {
	var out []string
	if ok, _ := s.cache.Get(ctx, "names:cities", &out); ok {
		return out, nil
	}
	b, err := s.universe(ctx)
	if err != nil {
		return nil, err
	}
	out = b.Localities()
	_ = s.cache.Set(ctx, "names:cities", out, int(s.cacheTTL.Seconds()))
	return out, nil
}
