package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/", want: "/"},
		{path: "/rooms", want: "/rooms"},
		{path: "/rooms/room1", want: "/rooms"},
		{path: "/grade-requests/gr1/review", want: "/grade-requests"},
	}

	for _, tc := range tests {
		if got := routeLabel(tc.path); got != tc.want {
			t.Errorf("routeLabel(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestRequestMetrics_RecordsRequests(t *testing.T) {
	registry := prometheus.NewRegistry()
	middleware := RequestMetrics(registry)

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/rooms/room1", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	found := make(map[string]bool, len(families))
	for _, family := range families {
		found[family.GetName()] = true
	}
	if !found["http_requests_total"] {
		t.Error("Expected http_requests_total to be registered")
	}
	if !found["http_request_duration_seconds"] {
		t.Error("Expected http_request_duration_seconds to be registered")
	}

	for _, family := range families {
		if family.GetName() != "http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := make(map[string]string)
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			if labels["route"] != "/rooms" {
				t.Errorf("Expected route label '/rooms', got '%s'", labels["route"])
			}
			if labels["status"] != "404" {
				t.Errorf("Expected status label '404', got '%s'", labels["status"])
			}
		}
	}
}

func TestExtractTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	if got := extractTokenFromRequest(req); got != "" {
		t.Errorf("Expected empty token, got %q", got)
	}

	req.Header.Set("Authorization", "Bearer abc123")
	if got := extractTokenFromRequest(req); got != "abc123" {
		t.Errorf("Expected 'abc123', got %q", got)
	}

	req.Header.Set("Authorization", "Basic abc123")
	if got := extractTokenFromRequest(req); got != "" {
		t.Errorf("Expected empty token for non-bearer scheme, got %q", got)
	}
}
