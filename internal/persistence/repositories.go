package persistence

import (
	"context"
	"time"
)

// AccountRepository exposes persistence operations for member accounts.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account Account) error
	GetAccount(ctx context.Context, id string) (Account, error)
	GetAccountByEmail(ctx context.Context, email string) (Account, error)
	UpdateAccountGrade(ctx context.Context, id, grade string, updatedAt time.Time) error
}

// RoomRepository exposes persistence operations for rooms.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

// ReservationRepository exposes persistence operations for reservations. The
// storage enforces at most one reservation per (room, day) cell; a violating
// insert surfaces ErrDuplicate.
type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservation Reservation) error
	GetReservationByCell(ctx context.Context, roomID string, day time.Time) (Reservation, error)
	ListReservationsInRange(ctx context.Context, start, end time.Time) ([]Reservation, error)
	ListReservationsForRoom(ctx context.Context, roomID string) ([]Reservation, error)
	DeleteReservationByCell(ctx context.Context, roomID string, day time.Time) error
}

// GradeRequestRepository exposes persistence operations for pending
// grade-elevation requests.
type GradeRequestRepository interface {
	CreateGradeRequest(ctx context.Context, request GradeRequest) error
	GetGradeRequest(ctx context.Context, id string) (GradeRequest, error)
	ListGradeRequests(ctx context.Context) ([]GradeRequest, error)
	DeleteGradeRequest(ctx context.Context, id string) error
}
