package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/grade"
	"github.com/example/room-booking/internal/persistence"
)

type capturingRoomRepo struct {
	created persistence.Room
}

func (c *capturingRoomRepo) CreateRoom(ctx context.Context, room persistence.Room) error {
	c.created = room
	return nil
}

func (c *capturingRoomRepo) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	return persistence.Room{}, persistence.ErrNotFound
}

func (c *capturingRoomRepo) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	return nil, nil
}

func (c *capturingRoomRepo) DeleteRoom(ctx context.Context, id string) error {
	return nil
}

func TestServiceFactoryNewRoomService(t *testing.T) {
	factory := NewServiceFactory()
	repo := &capturingRoomRepo{}

	svc := factory.NewRoomService(RoomServiceDeps{Rooms: repo})
	principal := application.Principal{AccountID: "admin", Grade: grade.Admin}
	input := application.RoomInput{Name: "Salle A", Equipment: "Tableau blanc"}

	room, err := svc.CreateRoom(context.Background(), application.CreateRoomParams{Principal: principal, Input: input})
	if err != nil {
		t.Fatalf("CreateRoom returned error: %v", err)
	}

	if room.ID != "id-1" {
		t.Fatalf("expected generated ID id-1, got %q", room.ID)
	}
	if repo.created.ID != room.ID {
		t.Fatalf("repository received unexpected ID: %q", repo.created.ID)
	}
	if !room.CreatedAt.Equal(factory.Clock.Current()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Current(), room.CreatedAt)
	}
}

func TestServiceFactoryClockFlowsIntoServices(t *testing.T) {
	clock := NewClock(time.Date(2024, time.March, 11, 8, 0, 0, 0, time.UTC))
	factory := NewServiceFactory(WithClock(clock), WithIDGenerator(NewIDGenerator("room")))
	repo := &capturingRoomRepo{}

	svc := factory.NewRoomService(RoomServiceDeps{Rooms: repo})
	principal := application.Principal{AccountID: "admin", Grade: grade.Admin}

	clock.Advance(45 * time.Minute)
	room, err := svc.CreateRoom(context.Background(), application.CreateRoomParams{
		Principal: principal,
		Input:     application.RoomInput{Name: "Salle B", Equipment: "Écran"},
	})
	if err != nil {
		t.Fatalf("CreateRoom returned error: %v", err)
	}

	if room.ID != "room-1" {
		t.Fatalf("expected room-1, got %q", room.ID)
	}
	if !room.CreatedAt.Equal(clock.Current()) {
		t.Fatalf("expected advanced clock time %v, got %v", clock.Current(), room.CreatedAt)
	}
}
