package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpserver "resto_reviews/internal/adapters/http_server"
	"resto_reviews/internal/app"
	"resto_reviews/internal/domain"
)

type stubRepo struct{ reviews []domain.Review }

func (s *stubRepo) UpsertPlace(ctx context.Context, p domain.Place) error          { return nil }
func (s *stubRepo) UpsertReviews(ctx context.Context, rs []domain.Review) error    { return nil }
func (s *stubRepo) LogMiss(ctx context.Context, id string, st int, r string) error { return nil }
func (s *stubRepo) ListReviews(ctx context.Context) ([]domain.Review, error)       { return s.reviews, nil }
func (s *stubRepo) ListPlaceIDs(ctx context.Context) ([]string, error)             { return nil, nil }

type nopCache struct{}

func (nopCache) Get(ctx context.Context, key string, dst any) (bool, error) { return false, nil }
func (nopCache) Set(ctx context.Context, key string, v any, ttl int) error  { return nil }
func (nopCache) Del(ctx context.Context, key string) error                  { return nil }

func ptr[T any](v T) *T { return &v }

func testServer(reviews []domain.Review) http.Handler {
	q := app.NewQueryService(&stubRepo{reviews: reviews}, nopCache{}, time.Minute)
	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{Q: q})
	return srv.Mux()
}

func sampleReviews() []domain.Review {
	lat, lng := 48.85, 2.35
	return []domain.Review{
		{BaseName: "A", Locality: ptr("X"), Rating: ptr(5.0), Pros: []string{"nice"}, Lat: &lat, Lng: &lng},
		{BaseName: "A", Locality: ptr("Y"), Rating: ptr(3.0), Cons: []string{"slow"}},
	}
}

func TestGetStats(t *testing.T) {
	h := testServer(sampleReviews())
	req := httptest.NewRequest("GET", "/v1/stats", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: %d body: %s", rr.Code, rr.Body.String())
	}
	var out struct {
		TopPros        []struct{ Token string } `json:"top_pros"`
		AverageRatings map[string]float64       `json:"average_ratings"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.AverageRatings["A (X)"] != 5.0 || out.AverageRatings["A (Y)"] != 3.0 {
		t.Fatalf("averages: %+v", out.AverageRatings)
	}
	if len(out.TopPros) != 1 || out.TopPros[0].Token != "nice" {
		t.Fatalf("pros: %+v", out.TopPros)
	}
}

func TestGetStats_ETagShortCircuit(t *testing.T) {
	h := testServer(sampleReviews())

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest("GET", "/v1/stats", nil))
	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected ETag")
	}

	req := httptest.NewRequest("GET", "/v1/stats", nil)
	req.Header.Set("If-None-Match", etag)
	second := httptest.NewRecorder()
	h.ServeHTTP(second, req)
	if second.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", second.Code)
	}
}

func TestGetMarkers_BoundingBox(t *testing.T) {
	h := testServer(sampleReviews())
	req := httptest.NewRequest("GET", "/v1/markers?south=48&west=2&north=49&east=3", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: %d", rr.Code)
	}
	var out []struct {
		Name string  `json:"name"`
		Lat  float64 `json:"lat"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].Name != "A" {
		t.Fatalf("markers: %+v", out)
	}
}

func TestGetMarkers_PartialBoxRejected(t *testing.T) {
	h := testServer(nil)
	req := httptest.NewRequest("GET", "/v1/markers?south=48&west=2", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content type: %s", ct)
	}
}

func TestGetMarkers_MalformedBoxRejected(t *testing.T) {
	h := testServer(nil)
	req := httptest.NewRequest("GET", "/v1/markers?south=a&west=2&north=49&east=3", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestListRestaurantsAndCities(t *testing.T) {
	h := testServer(sampleReviews())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/v1/restaurants", nil))
	var names []string
	if err := json.Unmarshal(rr.Body.Bytes(), &names); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(names) != 2 || names[0] != "A (X)" || names[1] != "A (Y)" {
		t.Fatalf("names: %v", names)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/v1/cities", nil))
	var cities []string
	if err := json.Unmarshal(rr.Body.Bytes(), &cities); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cities) != 2 || cities[0] != "X" {
		t.Fatalf("cities: %v", cities)
	}
}

func TestHealthz(t *testing.T) {
	h := testServer(nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: %d", rr.Code)
	}
}

func TestGetStats_EmptyStore(t *testing.T) {
	h := testServer(nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/v1/stats", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: %d", rr.Code)
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(out["time_series"]) == "null" {
		t.Fatalf("time series must be an empty object shape, not null")
	}
}
