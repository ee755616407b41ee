package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/weekgrid"
)

// ReservationRepository implements persistence.ReservationRepository using
// SQLite. Days are stored as date-only tokens of the UTC calendar day, so the
// UNIQUE(room_id, day) index compares exactly what the grid compares.
type ReservationRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewReservationRepository creates a new SQLite reservation repository.
func NewReservationRepository(pool *ConnectionPool) *ReservationRepository {
	return &ReservationRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

// CreateReservation inserts a new reservation. An already-booked (room, day)
// cell surfaces ErrDuplicate; an unknown room surfaces ErrConstraintViolation
// through the foreign key.
func (r *ReservationRepository) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if reservation.ID == "" || reservation.RoomID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO reservations (id, room_id, account_id, day, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	return r.retry.WithRetry(ctx, func() error {
		_, err := r.helper.Exec(ctx, query,
			reservation.ID,
			reservation.RoomID,
			reservation.AccountID,
			weekgrid.DayKey(reservation.Day),
			reservation.CreatedAt.UTC().Format(time.RFC3339),
		)
		return err
	})
}

// GetReservationByCell retrieves the reservation occupying a (room, day) cell.
func (r *ReservationRepository) GetReservationByCell(ctx context.Context, roomID string, day time.Time) (persistence.Reservation, error) {
	query := `
		SELECT id, room_id, account_id, day, created_at
		FROM reservations
		WHERE room_id = ? AND day = ?
	`

	reservation, err := scanReservation(r.helper.QueryRow(ctx, query, roomID, weekgrid.DayKey(day)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Reservation{}, persistence.ErrNotFound
		}
		return persistence.Reservation{}, r.mapper.MapError(err)
	}

	return reservation, nil
}

// ListReservationsInRange returns the reservations whose day falls inside the
// closed [start, end] interval, ordered by day then room.
func (r *ReservationRepository) ListReservationsInRange(ctx context.Context, start, end time.Time) ([]persistence.Reservation, error) {
	query := `
		SELECT id, room_id, account_id, day, created_at
		FROM reservations
		WHERE day >= ? AND day <= ?
		ORDER BY day ASC, room_id ASC
	`

	return r.queryReservations(ctx, query, weekgrid.DayKey(start), weekgrid.DayKey(end))
}

// ListReservationsForRoom returns every reservation held by one room, ordered
// by day.
func (r *ReservationRepository) ListReservationsForRoom(ctx context.Context, roomID string) ([]persistence.Reservation, error) {
	query := `
		SELECT id, room_id, account_id, day, created_at
		FROM reservations
		WHERE room_id = ?
		ORDER BY day ASC
	`

	return r.queryReservations(ctx, query, roomID)
}

// DeleteReservationByCell frees a (room, day) cell. An already-free cell
// surfaces ErrNotFound.
func (r *ReservationRepository) DeleteReservationByCell(ctx context.Context, roomID string, day time.Time) error {
	result, err := r.helper.Exec(ctx,
		"DELETE FROM reservations WHERE room_id = ? AND day = ?",
		roomID, weekgrid.DayKey(day),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

func (r *ReservationRepository) queryReservations(ctx context.Context, query string, args ...any) ([]persistence.Reservation, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var reservations []persistence.Reservation
	for rows.Next() {
		reservation, scanErr := scanReservation(rows)
		if scanErr != nil {
			return nil, r.mapper.MapError(scanErr)
		}
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return reservations, nil
}

func scanReservation(row rowScanner) (persistence.Reservation, error) {
	var reservation persistence.Reservation
	var day, createdAt string

	if err := row.Scan(&reservation.ID, &reservation.RoomID, &reservation.AccountID, &day, &createdAt); err != nil {
		return persistence.Reservation{}, err
	}

	parsedDay, err := weekgrid.ParseDayToken(day)
	if err != nil {
		return persistence.Reservation{}, fmt.Errorf("failed to parse day: %w", err)
	}
	reservation.Day = parsedDay

	if reservation.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Reservation{}, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return reservation, nil
}
