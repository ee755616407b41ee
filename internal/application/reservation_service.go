package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/room-booking/internal/grade"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/weekgrid"
)

// ReservationService orchestrates booking and releasing of (room, day) cells.
// The storage's unique cell index is the final authority on double-booking;
// the service only maps its rejection to ErrAlreadyExists.
type ReservationService struct {
	reservations persistence.ReservationRepository
	rooms        persistence.RoomRepository
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewReservationService constructs a reservation service with the provided dependencies.
func NewReservationService(reservations persistence.ReservationRepository, rooms persistence.RoomRepository, idGenerator func() string, now func() time.Time) *ReservationService {
	return NewReservationServiceWithLogger(reservations, rooms, idGenerator, now, nil)
}

// NewReservationServiceWithLogger constructs a reservation service with a specified logger.
func NewReservationServiceWithLogger(reservations persistence.ReservationRepository, rooms persistence.RoomRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ReservationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ReservationService{
		reservations: reservations,
		rooms:        rooms,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *ReservationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReservationService", operation, attrs...)
}

// CreateReservation books a cell for the acting principal. The day is
// collapsed to its UTC calendar day before storage.
func (s *ReservationService) CreateReservation(ctx context.Context, params CreateReservationParams) (reservation Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}

	day := weekgrid.Day(params.Day)

	logger := s.loggerWith(ctx, "CreateReservation",
		"principal_id", params.Principal.AccountID,
		"room_id", params.RoomID,
		"day", weekgrid.DayKey(day),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("reservation_id", reservation.ID).InfoContext(ctx, "reservation created")
	}()

	if !grade.CanBook(params.Principal.Grade) {
		err = ErrUnauthorized
		return
	}
	if params.RoomID == "" {
		vErr := &ValidationError{}
		vErr.add("room_id", "room_id is required")
		err = vErr
		return
	}

	// A booking against a deleted room is a not-found, not a constraint noise.
	if _, err = s.rooms.GetRoom(ctx, params.RoomID); err != nil {
		err = mapRepoError(err)
		return
	}

	reservation = Reservation{
		ID:        s.idGenerator(),
		RoomID:    params.RoomID,
		AccountID: params.Principal.AccountID,
		Day:       day,
		CreatedAt: s.now(),
	}

	if err = s.reservations.CreateReservation(ctx, persistence.Reservation{
		ID:        reservation.ID,
		RoomID:    reservation.RoomID,
		AccountID: reservation.AccountID,
		Day:       reservation.Day,
		CreatedAt: reservation.CreatedAt,
	}); err != nil {
		err = mapRepoError(err)
		reservation = Reservation{}
		return
	}

	return
}

// CancelReservation releases a booked cell. The booking owner may release
// their own cell; administrators may release any.
func (s *ReservationService) CancelReservation(ctx context.Context, params CancelReservationParams) (err error) {
	if s == nil {
		return fmt.Errorf("ReservationService is nil")
	}

	day := weekgrid.Day(params.Day)

	logger := s.loggerWith(ctx, "CancelReservation",
		"principal_id", params.Principal.AccountID,
		"room_id", params.RoomID,
		"day", weekgrid.DayKey(day),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservation cancelled")
	}()

	if !grade.CanBook(params.Principal.Grade) {
		err = ErrUnauthorized
		return
	}

	var existing persistence.Reservation
	existing, err = s.reservations.GetReservationByCell(ctx, params.RoomID, day)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if existing.AccountID != params.Principal.AccountID && params.Principal.Grade != grade.Admin {
		err = ErrUnauthorized
		return
	}

	if err = s.reservations.DeleteReservationByCell(ctx, params.RoomID, day); err != nil {
		err = mapRepoError(err)
		return
	}

	return
}

// ListReservations returns the reservations whose day falls inside the
// inclusive [Start, End] range. Available to every authenticated grade.
func (s *ReservationService) ListReservations(ctx context.Context, params ListReservationsParams) (reservations []Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}

	start := weekgrid.Day(params.Start)
	end := weekgrid.Day(params.End)

	logger := s.loggerWith(ctx, "ListReservations",
		"principal_id", params.Principal.AccountID,
		"start", weekgrid.DayKey(start),
		"end", weekgrid.DayKey(end),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list reservations", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(reservations)).InfoContext(ctx, "reservations listed")
	}()

	if end.Before(start) {
		vErr := &ValidationError{}
		vErr.add("end", "end must not precede start")
		err = vErr
		return
	}

	var raw []persistence.Reservation
	raw, err = s.reservations.ListReservationsInRange(ctx, start, end)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	reservations = make([]Reservation, 0, len(raw))
	for _, r := range raw {
		reservations = append(reservations, Reservation{
			ID:        r.ID,
			RoomID:    r.RoomID,
			AccountID: r.AccountID,
			Day:       r.Day,
			CreatedAt: r.CreatedAt,
		})
	}

	return
}
