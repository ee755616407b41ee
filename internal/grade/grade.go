// Package grade defines the three-tier permission grade and the predicates
// deciding which booking actions each grade may perform.
package grade

import "strings"

// Grade identifies the capability tier granted to an authenticated account.
type Grade string

const (
	// Visitor may browse the grid but cannot book or manage anything.
	Visitor Grade = "visitor"
	// User may book and cancel reservations.
	User Grade = "user"
	// Admin may additionally manage rooms and grade-elevation requests.
	Admin Grade = "admin"
)

// Parse normalizes a wire grade value. Unrecognized values collapse to the
// most restrictive grade rather than failing, so a malformed token never
// blocks rendering.
func Parse(value string) Grade {
	switch Grade(strings.ToLower(strings.TrimSpace(value))) {
	case User:
		return User
	case Admin:
		return Admin
	default:
		return Visitor
	}
}

// CanViewOnly reports whether the grade is restricted to browsing.
func CanViewOnly(g Grade) bool {
	return !CanBook(g)
}

// CanBook reports whether the grade may create or cancel reservations.
func CanBook(g Grade) bool {
	return g == User || g == Admin
}

// CanManageRooms reports whether the grade may create or delete rooms.
func CanManageRooms(g Grade) bool {
	return g == Admin
}

// CanManageGradeRequests reports whether the grade may review pending
// elevation requests.
func CanManageGradeRequests(g Grade) bool {
	return g == Admin
}
