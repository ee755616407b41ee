// Package client implements the grid's remote service boundary over the
// booking API's HTTP/JSON surface. Every call carries the session's bearer
// credential, runs through a circuit breaker, and maps response statuses onto
// the grid's fault taxonomy.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/example/room-booking/internal/grid"
	"github.com/example/room-booking/internal/weekgrid"
)

// Options tunes client construction.
type Options struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the booking API on behalf of one authenticated session.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// New constructs a client for the API at baseURL authenticating with the
// given bearer token.
func New(baseURL, token string, opts Options) *Client {
	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   httpc,
		logger:  logger,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "booking-api",
			MaxRequests: 3,
			Interval:    10 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			},
		}),
	}
}

var _ grid.Service = (*Client)(nil)

type roomDTO struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Equipment    string   `json:"equipment"`
	Reservations []string `json:"reservations,omitempty"`
}

type listRoomsResponse struct {
	Rooms []roomDTO `json:"rooms"`
}

type roomResponse struct {
	Room roomDTO `json:"room"`
}

type reservationDTO struct {
	ID        string `json:"id"`
	RoomID    string `json:"room_id"`
	Day       string `json:"day"`
	Owner     string `json:"owner,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type listReservationsResponse struct {
	Reservations []reservationDTO `json:"reservations"`
}

type reservationResponse struct {
	Reservation reservationDTO `json:"reservation"`
}

type gradeRequestDTO struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at,omitempty"`
}

type listGradeRequestsResponse struct {
	GradeRequests []gradeRequestDTO `json:"grade_requests"`
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// ListRooms implements grid.Service.
func (c *Client) ListRooms(ctx context.Context) ([]grid.Room, error) {
	var payload listRoomsResponse
	if err := c.call(ctx, http.MethodGet, "/rooms", nil, &payload); err != nil {
		return nil, err
	}
	rooms := make([]grid.Room, 0, len(payload.Rooms))
	for _, dto := range payload.Rooms {
		rooms = append(rooms, grid.Room{
			ID:        dto.ID,
			Name:      dto.Name,
			Equipment: dto.Equipment,
			Days:      dto.Reservations,
		})
	}
	return rooms, nil
}

// CreateRoom implements grid.Service.
func (c *Client) CreateRoom(ctx context.Context, name, equipment string) (grid.Room, error) {
	body := map[string]string{"name": name, "equipment": equipment}
	var payload roomResponse
	if err := c.call(ctx, http.MethodPost, "/rooms", body, &payload); err != nil {
		return grid.Room{}, err
	}
	return grid.Room{
		ID:        payload.Room.ID,
		Name:      payload.Room.Name,
		Equipment: payload.Room.Equipment,
		Days:      payload.Room.Reservations,
	}, nil
}

// DeleteRoom implements grid.Service.
func (c *Client) DeleteRoom(ctx context.Context, roomID string) error {
	return c.call(ctx, http.MethodDelete, "/rooms/"+url.PathEscape(roomID), nil, nil)
}

// CreateReservation implements grid.Service.
func (c *Client) CreateReservation(ctx context.Context, roomID string, day time.Time) (grid.Reservation, error) {
	body := map[string]string{
		"room_id": roomID,
		"day":     weekgrid.DayKey(day),
	}
	var payload reservationResponse
	if err := c.call(ctx, http.MethodPost, "/reservations", body, &payload); err != nil {
		return grid.Reservation{}, err
	}
	return toGridReservation(payload.Reservation)
}

// CancelReservation implements grid.Service.
func (c *Client) CancelReservation(ctx context.Context, roomID string, day time.Time) error {
	body := map[string]string{
		"room_id": roomID,
		"day":     weekgrid.DayKey(day),
	}
	return c.call(ctx, http.MethodDelete, "/reservations", body, nil)
}

// ListReservations implements grid.Service.
func (c *Client) ListReservations(ctx context.Context, window weekgrid.Window) ([]grid.Reservation, error) {
	query := url.Values{
		"start": []string{weekgrid.DayKey(window.Start)},
		"end":   []string{weekgrid.DayKey(window.End)},
	}
	var payload listReservationsResponse
	if err := c.call(ctx, http.MethodGet, "/reservations?"+query.Encode(), nil, &payload); err != nil {
		return nil, err
	}
	reservations := make([]grid.Reservation, 0, len(payload.Reservations))
	for _, dto := range payload.Reservations {
		res, err := toGridReservation(dto)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, nil
}

// ListGradeRequests implements grid.Service.
func (c *Client) ListGradeRequests(ctx context.Context) ([]grid.GradeRequest, error) {
	var payload listGradeRequestsResponse
	if err := c.call(ctx, http.MethodGet, "/grade-requests", nil, &payload); err != nil {
		return nil, err
	}
	requests := make([]grid.GradeRequest, 0, len(payload.GradeRequests))
	for _, dto := range payload.GradeRequests {
		req := grid.GradeRequest{ID: dto.ID, AccountID: dto.AccountID, Email: dto.Email}
		if dto.CreatedAt != "" {
			if created, err := time.Parse(time.RFC3339Nano, dto.CreatedAt); err == nil {
				req.CreatedAt = created
			}
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// RequestGrade implements grid.Service.
func (c *Client) RequestGrade(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/grade-requests", nil, nil)
}

// ReviewGradeRequest implements grid.Service.
func (c *Client) ReviewGradeRequest(ctx context.Context, requestID string, approve bool) error {
	body := map[string]bool{"approve": approve}
	return c.call(ctx, http.MethodPost, "/grade-requests/"+url.PathEscape(requestID)+"/review", body, nil)
}

func toGridReservation(dto reservationDTO) (grid.Reservation, error) {
	day, err := weekgrid.ParseDayToken(dto.Day)
	if err != nil {
		return grid.Reservation{}, &grid.TransportError{Err: fmt.Errorf("malformed reservation day %q: %w", dto.Day, err)}
	}
	res := grid.Reservation{ID: dto.ID, RoomID: dto.RoomID, Day: day, Owner: dto.Owner}
	if dto.CreatedAt != "" {
		if created, perr := time.Parse(time.RFC3339Nano, dto.CreatedAt); perr == nil {
			res.CreatedAt = created
		}
	}
	return res, nil
}

// call performs one authenticated round trip. Only transport-level failures
// count against the circuit breaker; any HTTP response, success or not, is a
// completed call whose status is mapped afterwards.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	if strings.TrimSpace(c.token) == "" {
		return &grid.PreconditionError{Field: "credential", Message: "missing bearer credential"}
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return &grid.TransportError{Err: err}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &grid.TransportError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	result, err := c.breaker.Execute(func() (any, error) {
		resp, doErr := c.httpc.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		return resp, nil
	})
	if err != nil {
		// Covers network failures as well as gobreaker.ErrOpenState when the
		// breaker has tripped.
		return &grid.TransportError{Err: err}
	}

	resp := result.(*http.Response)
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(out); decodeErr != nil {
			return &grid.TransportError{Err: fmt.Errorf("malformed response body: %w", decodeErr)}
		}
		return nil
	}

	return c.mapStatus(resp)
}

// mapStatus converts a non-2xx response into the grid's fault taxonomy.
func (c *Client) mapStatus(resp *http.Response) error {
	var structured errorResponse
	hasBody := json.NewDecoder(resp.Body).Decode(&structured) == nil

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		message := "credential rejected"
		if hasBody && structured.Message != "" {
			message = structured.Message
		}
		return &grid.PreconditionError{Field: "credential", Message: message}
	case http.StatusNotFound:
		return grid.ErrNotFound
	case http.StatusConflict:
		return grid.ErrConflict
	case http.StatusUnprocessableEntity:
		if hasBody {
			for field, message := range structured.Errors {
				return &grid.PreconditionError{Field: field, Message: message}
			}
			if structured.Message != "" {
				return &grid.PreconditionError{Message: structured.Message}
			}
		}
		return &grid.PreconditionError{Message: "invalid input"}
	default:
		if hasBody && structured.Message != "" {
			return &grid.TransportError{Status: resp.StatusCode, Err: errors.New(structured.Message)}
		}
		return &grid.TransportError{Status: resp.StatusCode}
	}
}
