package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/CarolineNkan/safeher-sub001/safety"
)

func TestClient_ScoreRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Got Authorization %q, want Bearer test-key", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Could not decode request: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
			t.Error("Request does not ask for a JSON object response")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{
				"message": {
					"content": "{\"score\": 82, \"level\": \"low risk\", \"lighting\": \"high\", \"incidents\": \"low\", \"visibility\": \"medium\", \"explanation\": \"Well-lit route.\"}"
				}
			}]
		}`))
	}))
	defer srv.Close()

	cli := NewClient("test-key", "gpt-4o-mini", 5*time.Second)
	cli.endpoint = srv.URL

	got, err := cli.ScoreRoute(context.Background(), RouteInput{
		DistanceMeters:  2000,
		DurationSeconds: 1500,
		Stories: []StorySummary{
			{Message: "Poor lighting under the bridge", Counts: safety.ReactionCounts{Helpful: 2}},
		},
	})
	if err != nil {
		t.Fatalf("ScoreRoute() error: %v", err)
	}

	want := safety.RouteScore{
		Score:       82,
		Level:       "low risk",
		Lighting:    "high",
		Incidents:   "low",
		Visibility:  "medium",
		Explanation: "Well-lit route.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ScoreRoute() mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_ScoreRoute_noCredential(t *testing.T) {
	cli := NewClient("", "gpt-4o-mini", 5*time.Second)
	_, err := cli.ScoreRoute(context.Background(), RouteInput{})
	if !errors.Is(err, ErrNoCredential) {
		t.Errorf("Got error %v, want ErrNoCredential", err)
	}
}

func TestClient_ScoreRoute_upstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cli := NewClient("test-key", "gpt-4o-mini", 5*time.Second)
	cli.endpoint = srv.URL

	if _, err := cli.ScoreRoute(context.Background(), RouteInput{}); err == nil {
		t.Error("ScoreRoute() returned nil error on upstream failure")
	}
}
