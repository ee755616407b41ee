package grid

import (
	"time"

	"github.com/example/room-booking/internal/grade"
)

// Room is a bookable shared room as returned by the directory service. Days
// carries the legacy room-embedded reservation tokens ("dd MM yyyy"); it is
// empty when the flat reservation listing backs the grid instead.
type Room struct {
	ID        string
	Name      string
	Equipment string
	Days      []string
}

// Reservation is one booked (room, day) cell. Day is midnight of the UTC
// calendar day; any time-of-day component present on the wire is normalized
// away before the value reaches this type.
type Reservation struct {
	ID        string
	RoomID    string
	Day       time.Time
	Owner     string
	CreatedAt time.Time
}

// GradeRequest is a pending elevation request awaiting administrator review.
type GradeRequest struct {
	ID        string
	AccountID string
	Email     string
	CreatedAt time.Time
}

// Session carries what the authentication collaborator hands the grid at
// construction: the bearer credential and the caller's grade. The grid never
// mutates it; a server-approved grade change arrives as a fresh session.
type Session struct {
	Token string
	Grade grade.Grade
}
