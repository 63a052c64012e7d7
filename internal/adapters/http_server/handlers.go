package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"resto_reviews/internal/analytics"
	"resto_reviews/internal/app"
)

type Handlers struct{ Q *app.QueryService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/stats", h.getStats)
	s.mux.Get("/v1/markers", h.getMarkers)
	s.mux.Get("/v1/restaurants", h.listRestaurants)
	s.mux.Get("/v1/cities", h.listCities)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeJSON handles the shared ETag/304 dance.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func (h *Handlers) getStats(w http.ResponseWriter, r *http.Request) {
	q := app.StatsQuery{
		City:       r.URL.Query().Get("city"),
		Restaurant: r.URL.Query().Get("restaurant"),
	}
	out, err := h.Q.Stats(r.Context(), q)
	if err != nil {
		writeProblem(w, http.StatusBadGateway, "Upstream Failure", "could not load review data")
		return
	}
	writeJSON(w, r, out)
}

// parseBBox reads south/west/north/east query params. All four or none.
func parseBBox(r *http.Request) (*analytics.BoundingBox, bool) {
	qs := r.URL.Query()
	raw := [4]string{qs.Get("south"), qs.Get("west"), qs.Get("north"), qs.Get("east")}
	present := 0
	for _, v := range raw {
		if v != "" {
			present++
		}
	}
	if present == 0 {
		return nil, true
	}
	if present != 4 {
		return nil, false
	}
	var vals [4]float64
	for i, v := range raw {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, false
		}
		vals[i] = f
	}
	return &analytics.BoundingBox{South: vals[0], West: vals[1], North: vals[2], East: vals[3]}, true
}

func (h *Handlers) getMarkers(w http.ResponseWriter, r *http.Request) {
	box, ok := parseBBox(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid bounding box",
			"south, west, north and east must all be numbers, or all be absent")
		return
	}
	out, err := h.Q.Markers(r.Context(), box)
	if err != nil {
		writeProblem(w, http.StatusBadGateway, "Upstream Failure", "could not load review data")
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) listRestaurants(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.Restaurants(r.Context())
	if err != nil {
		writeProblem(w, http.StatusBadGateway, "Upstream Failure", "could not load review data")
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) listCities(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.Cities(r.Context())
	if err != nil {
		writeProblem(w, http.StatusBadGateway, "Upstream Failure", "could not load review data")
		return
	}
	writeJSON(w, r, out)
}
