package application

import (
	"time"

	"github.com/example/room-booking/internal/grade"
)

// Principal represents the authenticated account invoking a service method.
type Principal struct {
	AccountID string
	Grade     grade.Grade
}

// Account represents a member account exposed by the application services.
type Account struct {
	ID        string
	Email     string
	Grade     grade.Grade
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name      string
	Equipment string
}

// Room represents a catalog entry for a bookable room.
type Room struct {
	ID        string
	Name      string
	Equipment string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomWithDays pairs a room with the booked days of its reservations,
// rendered as date tokens.
type RoomWithDays struct {
	Room
	Days []string
}

// CreateRoomParams wraps the data required to create a room.
type CreateRoomParams struct {
	Principal Principal
	Input     RoomInput
}

// Reservation represents one booked (room, day) cell.
type Reservation struct {
	ID        string
	RoomID    string
	AccountID string
	Day       time.Time
	CreatedAt time.Time
}

// CreateReservationParams wraps the data required to book a cell.
type CreateReservationParams struct {
	Principal Principal
	RoomID    string
	Day       time.Time
}

// CancelReservationParams wraps the data required to release a cell.
type CancelReservationParams struct {
	Principal Principal
	RoomID    string
	Day       time.Time
}

// ListReservationsParams wraps the inclusive day range of a listing.
type ListReservationsParams struct {
	Principal Principal
	Start     time.Time
	End       time.Time
}

// GradeRequest represents a pending grade-elevation request.
type GradeRequest struct {
	ID        string
	AccountID string
	Email     string
	CreatedAt time.Time
}

// ReviewGradeRequestParams wraps an admin decision on a pending request.
type ReviewGradeRequestParams struct {
	Principal Principal
	RequestID string
	Approve   bool
}

// RegisterParams captures the data required to create an account.
type RegisterParams struct {
	Email    string
	Password string
}

// AuthenticateParams captures the data required to authenticate an account.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication.
type AuthenticateResult struct {
	Account   Account
	Token     string
	ExpiresAt time.Time
}
