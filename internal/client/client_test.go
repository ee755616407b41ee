package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/room-booking/internal/grid"
	"github.com/example/room-booking/internal/weekgrid"
)

func testDay() time.Time {
	return time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC)
}

func TestListRoomsCarriesBearerAndEmbeddedTokens(t *testing.T) {
	var authz string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz = r.Header.Get("Authorization")
		if r.Method != http.MethodGet || r.URL.Path != "/rooms" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"rooms": []map[string]any{
				{"id": "r1", "name": "Salle A", "equipment": "projector", "reservations": []string{"06 03 2024"}},
			},
		})
	}))
	defer server.Close()

	c := New(server.URL, "token-1", Options{})
	rooms, err := c.ListRooms(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if authz != "Bearer token-1" {
		t.Fatalf("Authorization = %q", authz)
	}
	if len(rooms) != 1 || rooms[0].Name != "Salle A" {
		t.Fatalf("unexpected rooms: %+v", rooms)
	}
	if len(rooms[0].Days) != 1 || rooms[0].Days[0] != "06 03 2024" {
		t.Fatalf("embedded tokens lost: %+v", rooms[0].Days)
	}
}

func TestListReservationsScopesTheWindow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("start"); got != "2024-03-04" {
			t.Fatalf("start = %q", got)
		}
		if got := r.URL.Query().Get("end"); got != "2024-03-10" {
			t.Fatalf("end = %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"reservations": []map[string]any{
				{"id": "b1", "room_id": "r1", "day": "2024-03-06", "owner": "alice@example.org"},
			},
		})
	}))
	defer server.Close()

	c := New(server.URL, "token-1", Options{})
	reservations, err := c.ListReservations(context.Background(), weekgrid.WindowFor(testDay()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reservations) != 1 {
		t.Fatalf("got %d reservations", len(reservations))
	}
	if got := weekgrid.DayKey(reservations[0].Day); got != "2024-03-06" {
		t.Fatalf("day = %s", got)
	}
	if reservations[0].Owner != "alice@example.org" {
		t.Fatalf("owner = %q", reservations[0].Owner)
	}
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     any
		wantKind string
	}{
		{"conflict", http.StatusConflict, map[string]string{"message": "cell already booked"}, "conflict"},
		{"not found", http.StatusNotFound, map[string]string{"message": "unknown room"}, "not_found"},
		{"unauthorized", http.StatusUnauthorized, map[string]string{"message": "session invalid"}, "precondition"},
		{"forbidden", http.StatusForbidden, map[string]string{"message": "forbidden"}, "precondition"},
		{"validation", http.StatusUnprocessableEntity, map[string]any{"message": "invalid", "errors": map[string]string{"name": "name is required"}}, "precondition"},
		{"server error", http.StatusInternalServerError, map[string]string{"message": "boom"}, "transport"},
		{"bad gateway without body", http.StatusBadGateway, nil, "transport"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				if tc.body != nil {
					_ = json.NewEncoder(w).Encode(tc.body)
				}
			}))
			defer server.Close()

			c := New(server.URL, "token-1", Options{})
			_, err := c.CreateReservation(context.Background(), "r1", testDay())
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := grid.FaultKind(err); got != tc.wantKind {
				t.Fatalf("FaultKind = %q, want %q (err=%v)", got, tc.wantKind, err)
			}
		})
	}
}

func TestValidationDetailsSurviveMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": "invalid input",
			"errors":  map[string]string{"name": "name is required"},
		})
	}))
	defer server.Close()

	c := New(server.URL, "token-1", Options{})
	_, err := c.CreateRoom(context.Background(), "", "projector")

	var pErr *grid.PreconditionError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}
	if pErr.Field != "name" || pErr.Message != "name is required" {
		t.Fatalf("details lost: %+v", pErr)
	}
}

func TestMissingTokenIsAPreconditionFailure(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	c := New(server.URL, "", Options{})
	_, err := c.ListRooms(context.Background())

	var pErr *grid.PreconditionError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}
	if called {
		t.Fatal("missing credential must never reach the network")
	}
}

func TestCircuitBreakerOpensAfterRepeatedTransportFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // every request now fails at the dial

	c := New(server.URL, "token-1", Options{})
	for i := 0; i < 3; i++ {
		if _, err := c.ListRooms(context.Background()); err == nil {
			t.Fatal("expected a transport failure")
		}
	}

	_, err := c.ListRooms(context.Background())
	var tErr *grid.TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if got := grid.FaultKind(err); got != "transport" {
		t.Fatalf("FaultKind = %q, want transport", got)
	}
}

func TestCancelReservationSendsCell(t *testing.T) {
	var body map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/reservations" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := New(server.URL, "token-1", Options{})
	if err := c.CancelReservation(context.Background(), "r1", testDay()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body["room_id"] != "r1" || body["day"] != "2024-03-06" {
		t.Fatalf("unexpected payload: %+v", body)
	}
}

func TestReviewGradeRequestPath(t *testing.T) {
	var path string
	var payload map[string]bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := New(server.URL, "token-1", Options{})
	if err := c.ReviewGradeRequest(context.Background(), "gr1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/grade-requests/gr1/review" {
		t.Fatalf("path = %q", path)
	}
	if !payload["approve"] {
		t.Fatal("approve flag lost")
	}
}
