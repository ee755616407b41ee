package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/grade"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/weekgrid"
)

var (
	accountCounter      uint64
	roomCounter         uint64
	reservationCounter  uint64
	gradeRequestCounter uint64
)

var referenceTime = time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
// It falls on a Monday so week-window assertions stay simple.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Account fixtures ---------------------------

// AccountFixture represents a deterministic member account record that can be
// materialised for application or persistence tests.
type AccountFixture struct {
	ID           string
	Email        string
	PasswordHash string
	Grade        grade.Grade
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountOption configures the generated account fixture.
type AccountOption func(*AccountFixture)

// NewAccountFixture returns a deterministic account fixture with optional
// overrides. Accounts default to visitor grade, matching registration.
func NewAccountFixture(opts ...AccountOption) AccountFixture {
	idx := atomic.AddUint64(&accountCounter, 1)
	id := fmt.Sprintf("account-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := AccountFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		Grade:        grade.Visitor,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAccountID overrides the generated account ID.
func WithAccountID(id string) AccountOption {
	return func(f *AccountFixture) {
		f.ID = id
	}
}

// WithAccountEmail overrides the generated email address.
func WithAccountEmail(email string) AccountOption {
	return func(f *AccountFixture) {
		f.Email = email
	}
}

// WithAccountPasswordHash overrides the generated password hash.
func WithAccountPasswordHash(hash string) AccountOption {
	return func(f *AccountFixture) {
		f.PasswordHash = hash
	}
}

// WithAccountGrade sets the grade on the generated fixture.
func WithAccountGrade(g grade.Grade) AccountOption {
	return func(f *AccountFixture) {
		f.Grade = g
	}
}

// WithAccountTimestamps sets both created and updated timestamps.
func WithAccountTimestamps(created, updated time.Time) AccountOption {
	return func(f *AccountFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Account value.
func (f AccountFixture) Application() application.Account {
	return application.Account{
		ID:        f.ID,
		Email:     f.Email,
		Grade:     f.Grade,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f AccountFixture) Principal() application.Principal {
	return application.Principal{AccountID: f.ID, Grade: f.Grade}
}

// Persistence returns the fixture as a persistence.Account value.
func (f AccountFixture) Persistence() persistence.Account {
	return persistence.Account{
		ID:           f.ID,
		Email:        f.Email,
		PasswordHash: f.PasswordHash,
		Grade:        string(f.Grade),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// ----------------------------- Room fixtures ------------------------------

// RoomFixture represents a deterministic room catalog record.
type RoomFixture struct {
	ID        string
	Name      string
	Equipment string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional overrides.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	id := fmt.Sprintf("room-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := RoomFixture{
		ID:        id,
		Name:      fmt.Sprintf("Salle %03d", idx),
		Equipment: "Vidéoprojecteur",
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) {
		f.ID = id
	}
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) {
		f.Name = name
	}
}

// WithRoomEquipment overrides the equipment description.
func WithRoomEquipment(equipment string) RoomOption {
	return func(f *RoomFixture) {
		f.Equipment = equipment
	}
}

// WithRoomTimestamps sets both created and updated timestamps.
func WithRoomTimestamps(created, updated time.Time) RoomOption {
	return func(f *RoomFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Room value.
func (f RoomFixture) Application() application.Room {
	return application.Room{
		ID:        f.ID,
		Name:      f.Name,
		Equipment: f.Equipment,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Room value.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{
		ID:        f.ID,
		Name:      f.Name,
		Equipment: f.Equipment,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Input returns the fixture as an application.RoomInput.
func (f RoomFixture) Input() application.RoomInput {
	return application.RoomInput{
		Name:      f.Name,
		Equipment: f.Equipment,
	}
}

// --------------------------- Reservation fixtures -------------------------

// ReservationFixture represents a deterministic booked (room, day) cell.
type ReservationFixture struct {
	ID        string
	RoomID    string
	AccountID string
	Day       time.Time
	CreatedAt time.Time
}

// ReservationOption configures the generated reservation fixture.
type ReservationOption func(*ReservationFixture)

// NewReservationFixture returns a deterministic reservation fixture with
// optional overrides. Successive fixtures book successive calendar days so
// they never collide on the storage uniqueness constraint.
func NewReservationFixture(opts ...ReservationOption) ReservationFixture {
	idx := atomic.AddUint64(&reservationCounter, 1)
	id := fmt.Sprintf("reservation-%03d", idx)
	day := weekgrid.Day(referenceTime.AddDate(0, 0, int(idx-1)))
	fixture := ReservationFixture{
		ID:        id,
		RoomID:    fmt.Sprintf("room-%03d", idx),
		AccountID: fmt.Sprintf("account-%03d", idx),
		Day:       day,
		CreatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithReservationID overrides the reservation ID.
func WithReservationID(id string) ReservationOption {
	return func(f *ReservationFixture) {
		f.ID = id
	}
}

// WithReservationRoomID sets the booked room ID.
func WithReservationRoomID(id string) ReservationOption {
	return func(f *ReservationFixture) {
		f.RoomID = id
	}
}

// WithReservationAccountID sets the owning account ID.
func WithReservationAccountID(id string) ReservationOption {
	return func(f *ReservationFixture) {
		f.AccountID = id
	}
}

// WithReservationDay sets the booked day. The instant is collapsed to its UTC
// calendar day.
func WithReservationDay(t time.Time) ReservationOption {
	return func(f *ReservationFixture) {
		f.Day = weekgrid.Day(t)
	}
}

// WithReservationCreatedAt sets the created timestamp.
func WithReservationCreatedAt(t time.Time) ReservationOption {
	return func(f *ReservationFixture) {
		f.CreatedAt = t
	}
}

// Application returns the fixture as an application.Reservation value.
func (f ReservationFixture) Application() application.Reservation {
	return application.Reservation{
		ID:        f.ID,
		RoomID:    f.RoomID,
		AccountID: f.AccountID,
		Day:       f.Day,
		CreatedAt: f.CreatedAt,
	}
}

// Persistence returns the fixture as a persistence.Reservation value.
func (f ReservationFixture) Persistence() persistence.Reservation {
	return persistence.Reservation{
		ID:        f.ID,
		RoomID:    f.RoomID,
		AccountID: f.AccountID,
		Day:       f.Day,
		CreatedAt: f.CreatedAt,
	}
}

// -------------------------- Grade request fixtures ------------------------

// GradeRequestFixture represents a deterministic pending grade-elevation
// request.
type GradeRequestFixture struct {
	ID        string
	AccountID string
	Email     string
	CreatedAt time.Time
}

// GradeRequestOption configures the generated grade request fixture.
type GradeRequestOption func(*GradeRequestFixture)

// NewGradeRequestFixture returns a deterministic grade request fixture with
// optional overrides.
func NewGradeRequestFixture(opts ...GradeRequestOption) GradeRequestFixture {
	idx := atomic.AddUint64(&gradeRequestCounter, 1)
	id := fmt.Sprintf("grade-request-%03d", idx)
	accountID := fmt.Sprintf("account-%03d", idx)
	fixture := GradeRequestFixture{
		ID:        id,
		AccountID: accountID,
		Email:     fmt.Sprintf("%s@example.com", accountID),
		CreatedAt: referenceTime.Add(time.Duration(idx) * time.Second),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithGradeRequestID overrides the request ID.
func WithGradeRequestID(id string) GradeRequestOption {
	return func(f *GradeRequestFixture) {
		f.ID = id
	}
}

// WithGradeRequestAccountID sets the requesting account ID.
func WithGradeRequestAccountID(id string) GradeRequestOption {
	return func(f *GradeRequestFixture) {
		f.AccountID = id
	}
}

// WithGradeRequestEmail sets the snapshot email on the request.
func WithGradeRequestEmail(email string) GradeRequestOption {
	return func(f *GradeRequestFixture) {
		f.Email = email
	}
}

// WithGradeRequestCreatedAt sets the created timestamp.
func WithGradeRequestCreatedAt(t time.Time) GradeRequestOption {
	return func(f *GradeRequestFixture) {
		f.CreatedAt = t
	}
}

// Application returns the fixture as an application.GradeRequest value.
func (f GradeRequestFixture) Application() application.GradeRequest {
	return application.GradeRequest{
		ID:        f.ID,
		AccountID: f.AccountID,
		Email:     f.Email,
		CreatedAt: f.CreatedAt,
	}
}

// Persistence returns the fixture as a persistence.GradeRequest value.
func (f GradeRequestFixture) Persistence() persistence.GradeRequest {
	return persistence.GradeRequest{
		ID:        f.ID,
		AccountID: f.AccountID,
		Email:     f.Email,
		CreatedAt: f.CreatedAt,
	}
}
