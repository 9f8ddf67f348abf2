// Package directions resolves walking routes through an OSRM-compatible
// routing API.
package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/CarolineNkan/safeher-sub001/safety"
)

// A Route is the resolved walking route between two points.
type Route struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// Client calls an OSRM-compatible routing API. Requests are rate limited to
// one per second per the public server usage policy.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// New creates a routing client for the given base URL, for example
// "https://router.project-osrm.org".
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// Route resolves the walking route from start to end.
func (c *Client) Route(ctx context.Context, start, end safety.Coordinate) (Route, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Route{}, fmt.Errorf("rate limit wait: %w", err)
	}

	// OSRM takes lng,lat pairs.
	url := fmt.Sprintf("%s/route/v1/foot/%f,%f;%f,%f?overview=false",
		c.baseURL, start.Lng, start.Lat, end.Lng, end.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Route{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Route{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Route{}, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Route{}, fmt.Errorf("routing error (status %d): %s", resp.StatusCode, string(body))
	}

	var rr routeResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return Route{}, fmt.Errorf("parse response: %w", err)
	}
	if rr.Code != "Ok" || len(rr.Routes) == 0 {
		return Route{}, fmt.Errorf("no route found (code %q)", rr.Code)
	}

	return Route{
		DistanceMeters:  rr.Routes[0].Distance,
		DurationSeconds: rr.Routes[0].Duration,
	}, nil
}
