package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	return store
}

func TestMigrate_Idempotent(t *testing.T) {
	store := setupStore(t)

	// Running migrations a second time must be a no-op.
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
}

func TestRoomRepository_CreateAndGet(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	room := persistence.Room{
		ID:        "room1",
		Name:      "Salle A",
		Equipment: "Projecteur, tableau blanc",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := store.Rooms.CreateRoom(ctx, room); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	retrieved, err := store.Rooms.GetRoom(ctx, "room1")
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	if retrieved.Name != "Salle A" {
		t.Errorf("Expected name 'Salle A', got '%s'", retrieved.Name)
	}
	if retrieved.Equipment != "Projecteur, tableau blanc" {
		t.Errorf("Expected equipment to round-trip, got '%s'", retrieved.Equipment)
	}
}

func TestRoomRepository_DuplicateName(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	first := persistence.Room{ID: "room1", Name: "Salle A", Equipment: "Projecteur", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	if err := store.Rooms.CreateRoom(ctx, first); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	second := first
	second.ID = "room2"
	err := store.Rooms.CreateRoom(ctx, second)
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate for duplicate room name, got %v", err)
	}
}

func TestRoomRepository_ListRooms_OrderedByName(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	names := []string{"Salle C", "Salle A", "Salle B"}
	for i, name := range names {
		room := persistence.Room{
			ID:        "room" + string(rune('1'+i)),
			Name:      name,
			Equipment: "Tableau",
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}
		if err := store.Rooms.CreateRoom(ctx, room); err != nil {
			t.Fatalf("CreateRoom %s failed: %v", name, err)
		}
	}

	rooms, err := store.Rooms.ListRooms(ctx)
	if err != nil {
		t.Fatalf("ListRooms failed: %v", err)
	}
	if len(rooms) != 3 {
		t.Fatalf("Expected 3 rooms, got %d", len(rooms))
	}
	for i, want := range []string{"Salle A", "Salle B", "Salle C"} {
		if rooms[i].Name != want {
			t.Errorf("Expected rooms[%d].Name=%s, got %s", i, want, rooms[i].Name)
		}
	}
}

func TestRoomRepository_DeleteRoom_NotFound(t *testing.T) {
	store := setupStore(t)

	err := store.Rooms.DeleteRoom(context.Background(), "missing")
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestReservationRepository_CreateAndGetByCell(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	mustCreateRoom(t, store, "room1", "Salle A")

	day := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	reservation := persistence.Reservation{
		ID:        "res1",
		RoomID:    "room1",
		AccountID: "acct1",
		Day:       day,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.Reservations.CreateReservation(ctx, reservation); err != nil {
		t.Fatalf("CreateReservation failed: %v", err)
	}

	// Any instant within the same UTC day addresses the same cell.
	retrieved, err := store.Reservations.GetReservationByCell(ctx, "room1", day.Add(15*time.Hour))
	if err != nil {
		t.Fatalf("GetReservationByCell failed: %v", err)
	}
	if retrieved.ID != "res1" {
		t.Errorf("Expected reservation res1, got %s", retrieved.ID)
	}
	if retrieved.AccountID != "acct1" {
		t.Errorf("Expected account acct1, got %s", retrieved.AccountID)
	}
	if !retrieved.Day.Equal(day) {
		t.Errorf("Expected day %v, got %v", day, retrieved.Day)
	}
}

func TestReservationRepository_DoubleBooking(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	mustCreateRoom(t, store, "room1", "Salle A")

	day := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	first := persistence.Reservation{ID: "res1", RoomID: "room1", AccountID: "acct1", Day: day, CreatedAt: time.Now().UTC()}
	if err := store.Reservations.CreateReservation(ctx, first); err != nil {
		t.Fatalf("CreateReservation failed: %v", err)
	}

	// A second booking of the same cell, even by another account, must hit
	// the UNIQUE(room_id, day) index.
	second := persistence.Reservation{ID: "res2", RoomID: "room1", AccountID: "acct2", Day: day.Add(9 * time.Hour), CreatedAt: time.Now().UTC()}
	err := store.Reservations.CreateReservation(ctx, second)
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate for double booking, got %v", err)
	}

	// Same room, next day is fine.
	third := persistence.Reservation{ID: "res3", RoomID: "room1", AccountID: "acct2", Day: day.AddDate(0, 0, 1), CreatedAt: time.Now().UTC()}
	if err := store.Reservations.CreateReservation(ctx, third); err != nil {
		t.Errorf("Expected next-day booking to succeed, got %v", err)
	}
}

func TestReservationRepository_ListReservationsInRange(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	mustCreateRoom(t, store, "room1", "Salle A")

	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	days := []time.Time{
		monday.AddDate(0, 0, -1), // before the window
		monday,
		monday.AddDate(0, 0, 3),
		monday.AddDate(0, 0, 6), // Sunday, inclusive
		monday.AddDate(0, 0, 7), // next week
	}
	for i, day := range days {
		reservation := persistence.Reservation{
			ID:        "res" + string(rune('1'+i)),
			RoomID:    "room1",
			AccountID: "acct1",
			Day:       day,
			CreatedAt: time.Now().UTC(),
		}
		if err := store.Reservations.CreateReservation(ctx, reservation); err != nil {
			t.Fatalf("CreateReservation %d failed: %v", i, err)
		}
	}

	got, err := store.Reservations.ListReservationsInRange(ctx, monday, monday.AddDate(0, 0, 6))
	if err != nil {
		t.Fatalf("ListReservationsInRange failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 reservations in window, got %d", len(got))
	}
	for _, r := range got {
		if r.Day.Before(monday) || r.Day.After(monday.AddDate(0, 0, 6)) {
			t.Errorf("Reservation %s day %v outside requested window", r.ID, r.Day)
		}
	}
}

func TestReservationRepository_DeleteByCell(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	mustCreateRoom(t, store, "room1", "Salle A")

	day := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	reservation := persistence.Reservation{ID: "res1", RoomID: "room1", AccountID: "acct1", Day: day, CreatedAt: time.Now().UTC()}
	if err := store.Reservations.CreateReservation(ctx, reservation); err != nil {
		t.Fatalf("CreateReservation failed: %v", err)
	}

	if err := store.Reservations.DeleteReservationByCell(ctx, "room1", day); err != nil {
		t.Fatalf("DeleteReservationByCell failed: %v", err)
	}

	err := store.Reservations.DeleteReservationByCell(ctx, "room1", day)
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestReservationRepository_RoomDeleteCascades(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	mustCreateRoom(t, store, "room1", "Salle A")

	day := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	reservation := persistence.Reservation{ID: "res1", RoomID: "room1", AccountID: "acct1", Day: day, CreatedAt: time.Now().UTC()}
	if err := store.Reservations.CreateReservation(ctx, reservation); err != nil {
		t.Fatalf("CreateReservation failed: %v", err)
	}

	if err := store.Rooms.DeleteRoom(ctx, "room1"); err != nil {
		t.Fatalf("DeleteRoom failed: %v", err)
	}

	_, err := store.Reservations.GetReservationByCell(ctx, "room1", day)
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("Expected reservation removed by cascade, got %v", err)
	}
}

func TestAccountRepository_CreateAndLookup(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	account := persistence.Account{
		ID:           "acct1",
		Email:        "claire@example.com",
		PasswordHash: "$argon2id$fake",
		Grade:        "user",
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := store.Accounts.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	// Email lookup is case-insensitive.
	retrieved, err := store.Accounts.GetAccountByEmail(ctx, "Claire@Example.COM")
	if err != nil {
		t.Fatalf("GetAccountByEmail failed: %v", err)
	}
	if retrieved.ID != "acct1" {
		t.Errorf("Expected account acct1, got %s", retrieved.ID)
	}
	if retrieved.Grade != "user" {
		t.Errorf("Expected grade 'user', got '%s'", retrieved.Grade)
	}
}

func TestAccountRepository_DuplicateEmail(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	account := persistence.Account{ID: "acct1", Email: "claire@example.com", PasswordHash: "h", Grade: "user", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	if err := store.Accounts.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	dup := account
	dup.ID = "acct2"
	dup.Email = "CLAIRE@example.com"
	err := store.Accounts.CreateAccount(ctx, dup)
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate for duplicate email, got %v", err)
	}
}

func TestAccountRepository_UpdateGrade(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	account := persistence.Account{ID: "acct1", Email: "claire@example.com", PasswordHash: "h", Grade: "visitor", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	if err := store.Accounts.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	if err := store.Accounts.UpdateAccountGrade(ctx, "acct1", "user", time.Now().UTC()); err != nil {
		t.Fatalf("UpdateAccountGrade failed: %v", err)
	}

	retrieved, err := store.Accounts.GetAccount(ctx, "acct1")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if retrieved.Grade != "user" {
		t.Errorf("Expected grade 'user' after update, got '%s'", retrieved.Grade)
	}

	err = store.Accounts.UpdateAccountGrade(ctx, "missing", "user", time.Now().UTC())
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown account, got %v", err)
	}
}

func TestGradeRequestRepository_Lifecycle(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	first := persistence.GradeRequest{ID: "gr1", AccountID: "acct1", Email: "a@example.com", CreatedAt: base}
	second := persistence.GradeRequest{ID: "gr2", AccountID: "acct2", Email: "b@example.com", CreatedAt: base.Add(time.Hour)}

	if err := store.GradeRequests.CreateGradeRequest(ctx, second); err != nil {
		t.Fatalf("CreateGradeRequest failed: %v", err)
	}
	if err := store.GradeRequests.CreateGradeRequest(ctx, first); err != nil {
		t.Fatalf("CreateGradeRequest failed: %v", err)
	}

	requests, err := store.GradeRequests.ListGradeRequests(ctx)
	if err != nil {
		t.Fatalf("ListGradeRequests failed: %v", err)
	}
	if len(requests) != 2 {
		t.Fatalf("Expected 2 pending requests, got %d", len(requests))
	}
	// Oldest first.
	if requests[0].ID != "gr1" || requests[1].ID != "gr2" {
		t.Errorf("Expected order gr1,gr2, got %s,%s", requests[0].ID, requests[1].ID)
	}

	if err := store.GradeRequests.DeleteGradeRequest(ctx, "gr1"); err != nil {
		t.Fatalf("DeleteGradeRequest failed: %v", err)
	}
	err = store.GradeRequests.DeleteGradeRequest(ctx, "gr1")
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestGradeRequestRepository_OnePendingPerAccount(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	request := persistence.GradeRequest{ID: "gr1", AccountID: "acct1", Email: "a@example.com", CreatedAt: time.Now().UTC()}
	if err := store.GradeRequests.CreateGradeRequest(ctx, request); err != nil {
		t.Fatalf("CreateGradeRequest failed: %v", err)
	}

	again := persistence.GradeRequest{ID: "gr2", AccountID: "acct1", Email: "a@example.com", CreatedAt: time.Now().UTC()}
	err := store.GradeRequests.CreateGradeRequest(ctx, again)
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate for second pending request, got %v", err)
	}
}

func mustCreateRoom(t *testing.T, store *Store, id, name string) {
	t.Helper()
	room := persistence.Room{
		ID:        id,
		Name:      name,
		Equipment: "Tableau",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := store.Rooms.CreateRoom(context.Background(), room); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
}
