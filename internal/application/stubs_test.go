package application

import (
	"context"
	"fmt"
	"time"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/weekgrid"
)

// In-memory repository stubs shared by the service tests. They enforce the
// same uniqueness rules as the SQLite layer so the services see realistic
// sentinel errors.

type stubRoomRepo struct {
	rooms map[string]persistence.Room
	// cascade partner; DeleteRoom drops the room's reservations when set.
	reservations *stubReservationRepo
	failWith     error
}

func newStubRoomRepo() *stubRoomRepo {
	return &stubRoomRepo{rooms: make(map[string]persistence.Room)}
}

func (s *stubRoomRepo) CreateRoom(_ context.Context, room persistence.Room) error {
	if s.failWith != nil {
		return s.failWith
	}
	for _, existing := range s.rooms {
		if existing.Name == room.Name {
			return persistence.ErrDuplicate
		}
	}
	s.rooms[room.ID] = room
	return nil
}

func (s *stubRoomRepo) GetRoom(_ context.Context, id string) (persistence.Room, error) {
	room, ok := s.rooms[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return room, nil
}

func (s *stubRoomRepo) ListRooms(_ context.Context) ([]persistence.Room, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	rooms := make([]persistence.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (s *stubRoomRepo) DeleteRoom(_ context.Context, id string) error {
	if _, ok := s.rooms[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.rooms, id)
	if s.reservations != nil {
		for key, r := range s.reservations.byCell {
			if r.RoomID == id {
				delete(s.reservations.byCell, key)
			}
		}
	}
	return nil
}

type stubReservationRepo struct {
	byCell   map[string]persistence.Reservation
	failWith error
}

func newStubReservationRepo() *stubReservationRepo {
	return &stubReservationRepo{byCell: make(map[string]persistence.Reservation)}
}

func reservationKey(roomID string, day time.Time) string {
	return fmt.Sprintf("%s|%s", roomID, weekgrid.DayKey(day))
}

func (s *stubReservationRepo) CreateReservation(_ context.Context, reservation persistence.Reservation) error {
	if s.failWith != nil {
		return s.failWith
	}
	key := reservationKey(reservation.RoomID, reservation.Day)
	if _, ok := s.byCell[key]; ok {
		return persistence.ErrDuplicate
	}
	s.byCell[key] = reservation
	return nil
}

func (s *stubReservationRepo) GetReservationByCell(_ context.Context, roomID string, day time.Time) (persistence.Reservation, error) {
	reservation, ok := s.byCell[reservationKey(roomID, day)]
	if !ok {
		return persistence.Reservation{}, persistence.ErrNotFound
	}
	return reservation, nil
}

func (s *stubReservationRepo) ListReservationsInRange(_ context.Context, start, end time.Time) ([]persistence.Reservation, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	var out []persistence.Reservation
	for _, r := range s.byCell {
		if !r.Day.Before(start) && !r.Day.After(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubReservationRepo) ListReservationsForRoom(_ context.Context, roomID string) ([]persistence.Reservation, error) {
	var out []persistence.Reservation
	for _, r := range s.byCell {
		if r.RoomID == roomID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubReservationRepo) DeleteReservationByCell(_ context.Context, roomID string, day time.Time) error {
	key := reservationKey(roomID, day)
	if _, ok := s.byCell[key]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.byCell, key)
	return nil
}

type stubAccountRepo struct {
	accounts map[string]persistence.Account
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]persistence.Account)}
}

func (s *stubAccountRepo) CreateAccount(_ context.Context, account persistence.Account) error {
	for _, existing := range s.accounts {
		if existing.Email == account.Email {
			return persistence.ErrDuplicate
		}
	}
	s.accounts[account.ID] = account
	return nil
}

func (s *stubAccountRepo) GetAccount(_ context.Context, id string) (persistence.Account, error) {
	account, ok := s.accounts[id]
	if !ok {
		return persistence.Account{}, persistence.ErrNotFound
	}
	return account, nil
}

func (s *stubAccountRepo) GetAccountByEmail(_ context.Context, email string) (persistence.Account, error) {
	for _, account := range s.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return persistence.Account{}, persistence.ErrNotFound
}

func (s *stubAccountRepo) UpdateAccountGrade(_ context.Context, id, grade string, updatedAt time.Time) error {
	account, ok := s.accounts[id]
	if !ok {
		return persistence.ErrNotFound
	}
	account.Grade = grade
	account.UpdatedAt = updatedAt
	s.accounts[id] = account
	return nil
}

type stubGradeRequestRepo struct {
	requests map[string]persistence.GradeRequest
}

func newStubGradeRequestRepo() *stubGradeRequestRepo {
	return &stubGradeRequestRepo{requests: make(map[string]persistence.GradeRequest)}
}

func (s *stubGradeRequestRepo) CreateGradeRequest(_ context.Context, request persistence.GradeRequest) error {
	for _, existing := range s.requests {
		if existing.AccountID == request.AccountID {
			return persistence.ErrDuplicate
		}
	}
	s.requests[request.ID] = request
	return nil
}

func (s *stubGradeRequestRepo) GetGradeRequest(_ context.Context, id string) (persistence.GradeRequest, error) {
	request, ok := s.requests[id]
	if !ok {
		return persistence.GradeRequest{}, persistence.ErrNotFound
	}
	return request, nil
}

func (s *stubGradeRequestRepo) ListGradeRequests(_ context.Context) ([]persistence.GradeRequest, error) {
	var out []persistence.GradeRequest
	for _, request := range s.requests {
		out = append(out, request)
	}
	return out, nil
}

func (s *stubGradeRequestRepo) DeleteGradeRequest(_ context.Context, id string) error {
	if _, ok := s.requests[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.requests, id)
	return nil
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
