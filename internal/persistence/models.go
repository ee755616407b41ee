package persistence

import "time"

// Account represents a member of the organization.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Grade        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Room represents a bookable shared room.
type Room struct {
	ID        string
	Name      string
	Equipment string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Reservation represents one booked (room, day) cell. Day is stored as the
// date-only token of the UTC calendar day.
type Reservation struct {
	ID        string
	RoomID    string
	AccountID string
	Day       time.Time
	CreatedAt time.Time
}

// GradeRequest represents a pending grade-elevation request.
type GradeRequest struct {
	ID        string
	AccountID string
	Email     string
	CreatedAt time.Time
}
