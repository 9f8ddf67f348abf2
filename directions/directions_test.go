package directions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/CarolineNkan/safeher-sub001/safety"
)

func TestClient_Route(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/route/v1/foot/") {
			t.Errorf("Got path %q, want a /route/v1/foot/ path", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"code": "Ok",
			"routes": [{"distance": 2000.5, "duration": 1500.2}]
		}`))
	}))
	defer srv.Close()

	cli := New(srv.URL, 5*time.Second)
	got, err := cli.Route(context.Background(),
		safety.Coordinate{Lat: 43.6532, Lng: -79.3832},
		safety.Coordinate{Lat: 43.6629, Lng: -79.3957},
	)
	if err != nil {
		t.Fatalf("Route() error: %v", err)
	}

	want := Route{DistanceMeters: 2000.5, DurationSeconds: 1500.2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Route() mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_Route_noRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code": "NoRoute", "routes": []}`))
	}))
	defer srv.Close()

	cli := New(srv.URL, 5*time.Second)
	_, err := cli.Route(context.Background(), safety.Coordinate{}, safety.Coordinate{})
	if err == nil {
		t.Error("Route() returned nil error for NoRoute response")
	}
}

func TestClient_Route_serverError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cli := New(srv.URL, 5*time.Second)
	_, err := cli.Route(context.Background(), safety.Coordinate{}, safety.Coordinate{})
	if err == nil {
		t.Error("Route() returned nil error for server error")
	}
}
