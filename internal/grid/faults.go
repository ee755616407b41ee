package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict is returned when the targeted cell is already booked or a
	// room name collides; the grid re-fetches so the next render self-corrects.
	ErrConflict = errors.New("grid: conflict")
	// ErrNotFound is returned when the room or reservation vanished between
	// render and action.
	ErrNotFound = errors.New("grid: not found")
)

// PreconditionError reports a failure detected before any network call is
// attempted: a missing bearer credential or an empty required field.
type PreconditionError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// TransportError wraps a network failure or a non-2xx response without a
// structured body. The action is retryable but never retried automatically.
type TransportError struct {
	Status int
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("transport failure: %v", e.Err)
	}
	return fmt.Sprintf("transport failure: status %d", e.Status)
}

// Unwrap exposes the underlying cause.
func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// FaultKind maps any error crossing the controller boundary to a stable label
// used for logging and rendering decisions.
func FaultKind(err error) string {
	if err == nil {
		return ""
	}
	var pErr *PreconditionError
	if errors.As(err, &pErr) {
		return "precondition"
	}
	switch {
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	}
	return "transport"
}

// classify converts an arbitrary remote-call failure into one of the four
// fault kinds. Errors already belonging to the taxonomy pass through; anything
// else becomes a transport fault.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pErr *PreconditionError
	if errors.As(err, &pErr) {
		return err
	}
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return err
	}
	if errors.Is(err, ErrConflict) || errors.Is(err, ErrNotFound) {
		return err
	}
	return &TransportError{Err: err}
}
