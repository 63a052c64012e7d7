package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"resto_reviews/internal/adapters/observability"
)

// Fields requested from the place details endpoint. The legacy details API
// returns at most five reviews per call regardless of the requested count.
const detailFields = "name,formatted_address,geometry,rating,reviews,website,user_ratings_total"

var (
	ErrNotFound     = errors.New("places: not found")
	ErrUnauthorized = errors.New("places: unauthorized")
	ErrForbidden    = errors.New("places: request denied")
)

type Client struct {
	base string
	hc   *http.Client
	key  string
	lang string
	sort string // newest | most_relevant
	rl   *rate.Limiter
}

// New builds a client enforcing a fixed inter-call delay on top of HTTP
// retries. delay <= 0 disables client-side pacing.
func New(base, key, lang, sortOrder string, delay time.Duration) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if lang == "" {
		lang = "fr"
	}
	if sortOrder == "" {
		sortOrder = "newest"
	}
	rl := rate.NewLimiter(rate.Inf, 1)
	if delay > 0 {
		rl = rate.NewLimiter(rate.Every(delay), 1)
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		lang: lang,
		sort: sortOrder,
		rl:   rl,
	}, nil
}

// envelope is the legacy details API response wrapper.
type envelope struct {
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message"`
	Result       map[string]any `json:"result"`
}

func (c *Client) GetPlaceDetails(ctx context.Context, placeID string) (map[string]any, error) {
	return c.details(ctx, placeID, detailFields)
}

// GetPlaceReviews extracts the raw review payloads for one location. count
// is an upper bound; the provider caps what it returns per call.
func (c *Client) GetPlaceReviews(ctx context.Context, placeID string, count int) ([]map[string]any, error) {
	res, err := c.details(ctx, placeID, "reviews")
	if err != nil {
		return nil, err
	}
	raw, _ := res["reviews"].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, it := range raw {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
		if count > 0 && len(out) >= count {
			break
		}
	}
	return out, nil
}

func (c *Client) details(ctx context.Context, placeID, fields string) (map[string]any, error) {
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", fields)
	q.Set("key", c.key)
	q.Set("language", c.lang)
	q.Set("reviews_sort", c.sort)
	u := c.base + "/details/json?" + q.Encode()

	var env envelope
	if err := c.get(ctx, u, "details", &env); err != nil {
		return nil, err
	}
	switch env.Status {
	case "OK":
		return env.Result, nil
	case "ZERO_RESULTS", "NOT_FOUND", "INVALID_REQUEST":
		return nil, ErrNotFound
	case "REQUEST_DENIED":
		return nil, ErrForbidden
	default:
		return nil, fmt.Errorf("places status %s: %s", env.Status, env.ErrorMessage)
	}
}

// get performs a GET with client-side pacing and exponential-backoff
// retries on 429 and transient 5xx.
func (c *Client) get(ctx context.Context, u, endpoint string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 30 * time.Second

	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "resto-reviews/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err // network error, retryable
		}
		defer resp.Body.Close()
		observability.ObserveExternal("places", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return backoff.Permanent(err)
			}
			return nil
		case http.StatusNotFound:
			return backoff.Permanent(ErrNotFound)
		case http.StatusUnauthorized:
			return backoff.Permanent(ErrUnauthorized)
		case http.StatusForbidden:
			return backoff.Permanent(ErrForbidden)
		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			io.Copy(io.Discard, resp.Body)
			return fmt.Errorf("remote %d", resp.StatusCode)
		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return backoff.Permanent(fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b))))
		}
	}

	return backoff.Retry(attempt, backoff.WithContext(bo, ctx))
}
