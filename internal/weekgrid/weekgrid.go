// Package weekgrid provides the pure date arithmetic behind the weekly
// reservation grid: Monday-start week expansion, whole-week navigation, and
// the canonical day key used for every reservation comparison.
//
// All day identity is computed on the UTC calendar day. Inputs carrying a
// local zone or a time-of-day component are normalized before keying, so the
// same calendar day always produces the same key regardless of clock noise.
package weekgrid

import (
	"fmt"
	"strings"
	"time"
)

// DaysPerWeek is the number of columns in the grid.
const DaysPerWeek = 7

// dayKeyLayout is the canonical date-only representation.
const dayKeyLayout = "2006-01-02"

// dayTokenLayout is the legacy wire token carried on room records.
const dayTokenLayout = "02 01 2006"

// DayKey returns the canonical identity of the UTC calendar day containing t.
// Two instants on the same UTC day key identically no matter their
// time-of-day or source zone.
func DayKey(t time.Time) string {
	return t.UTC().Format(dayKeyLayout)
}

// Day truncates t to midnight of its UTC calendar day.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfWeek returns midnight UTC of the Monday beginning the ISO week that
// contains anchor.
func StartOfWeek(anchor time.Time) time.Time {
	day := Day(anchor)
	// In Go, Monday == 1 and Sunday == 0.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekDays returns the seven days, Monday through Sunday, of the week
// containing anchor.
func WeekDays(anchor time.Time) [DaysPerWeek]time.Time {
	var days [DaysPerWeek]time.Time
	start := StartOfWeek(anchor)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// ShiftWeek moves anchor by deltaWeeks whole weeks. Negative deltas navigate
// to earlier weeks without a lower bound.
func ShiftWeek(anchor time.Time, deltaWeeks int) time.Time {
	return anchor.AddDate(0, 0, deltaWeeks*DaysPerWeek)
}

// Window identifies one displayed week by its closed day interval. It keys
// in-flight reservation fetches so results arriving after further navigation
// can be recognized as stale.
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowFor derives the week window containing anchor.
func WindowFor(anchor time.Time) Window {
	start := StartOfWeek(anchor)
	return Window{Start: start, End: start.AddDate(0, 0, DaysPerWeek-1)}
}

// Contains reports whether the UTC calendar day of t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	day := Day(t)
	return !day.Before(w.Start) && !day.After(w.End)
}

// Equal reports whether both windows cover the same week.
func (w Window) Equal(other Window) bool {
	return w.Start.Equal(other.Start) && w.End.Equal(other.End)
}

// FormatDayToken renders the legacy "dd MM yyyy" token embedded on room
// records.
func FormatDayToken(t time.Time) string {
	return Day(t).Format(dayTokenLayout)
}

// ParseDayToken accepts either wire representation of a reservation day: the
// legacy "dd MM yyyy" token or an RFC 3339 timestamp. Whatever the shape, the
// result is midnight of the UTC calendar day.
func ParseDayToken(token string) (time.Time, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("weekgrid: empty day token")
	}
	if t, err := time.Parse(dayTokenLayout, trimmed); err == nil {
		return Day(t), nil
	}
	if t, err := time.Parse(dayKeyLayout, trimmed); err == nil {
		return Day(t), nil
	}
	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return Day(t), nil
	}
	return time.Time{}, fmt.Errorf("weekgrid: unrecognized day token %q", trimmed)
}
