// Package grid implements the weekly reservation grid: the (room, day)
// reservation index, the modal state machine driving bookings, and the error
// taxonomy every remote failure is converted into before it can reach a
// renderer.
package grid

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/example/room-booking/internal/grade"
	"github.com/example/room-booking/internal/weekgrid"
)

// Service is the remote directory boundary the controller drives. The exact
// wire format belongs to the backing service; the controller trusts its
// responses as ground truth and never patches reservation state locally.
type Service interface {
	ListRooms(ctx context.Context) ([]Room, error)
	CreateRoom(ctx context.Context, name, equipment string) (Room, error)
	DeleteRoom(ctx context.Context, roomID string) error
	CreateReservation(ctx context.Context, roomID string, day time.Time) (Reservation, error)
	CancelReservation(ctx context.Context, roomID string, day time.Time) error
	ListReservations(ctx context.Context, window weekgrid.Window) ([]Reservation, error)
	ListGradeRequests(ctx context.Context) ([]GradeRequest, error)
	RequestGrade(ctx context.Context) error
	ReviewGradeRequest(ctx context.Context, requestID string, approve bool) error
}

// Modal identifies the single focus of the grid. At most one modal is open at
// a time; opening any modal closes the previous one.
type Modal int

const (
	ModalNone Modal = iota
	ModalCreateRoom
	ModalReservation
	ModalDeleteRoom
	ModalGradeReview
)

// CellState is the rendering contract for one grid cell. The three states are
// mutually exclusive and the click handler is wired only for CellBookable.
type CellState int

const (
	// CellReadOnly marks a free cell the caller is not allowed to book.
	CellReadOnly CellState = iota
	// CellBookable marks a free cell the caller may book.
	CellBookable
	// CellReserved marks a booked cell.
	CellReserved
)

// CellSelection captures the cell a reservation modal was opened for,
// including whether it was reserved at open time. That snapshot decides which
// confirm action the modal offers.
type CellSelection struct {
	RoomID   string
	RoomName string
	Day      time.Time
	Reserved bool
}

// Options tunes controller construction.
type Options struct {
	// FlatReservations selects the flat reservation listing with a date-range
	// query as the index source. When false the index is built from the day
	// tokens embedded on room records and ListReservations is never called.
	FlatReservations bool
	Logger           *slog.Logger
	Now              func() time.Time
}

// Controller orchestrates fetching, week navigation, cell clicks, the modal
// lifecycle, and the refetch-after-mutation policy. It is event-driven and
// not safe for concurrent use; all remote calls resolve on the caller's
// goroutine.
type Controller struct {
	svc     Service
	session Session
	logger  *slog.Logger
	now     func() time.Time
	flat    bool

	anchor       time.Time
	rooms        []Room
	reservations []Reservation
	index        *Index

	modal        Modal
	selectedCell *CellSelection
	selectedRoom *Room
	requests     []GradeRequest

	modalErr  error
	bannerErr error
}

// NewController constructs a controller anchored on the current week. The
// session is supplied by the authentication collaborator and is the only
// source of the caller's grade and bearer credential.
func NewController(svc Service, session Session, opts Options) *Controller {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		svc:     svc,
		session: session,
		logger:  logger,
		now:     now,
		flat:    opts.FlatReservations,
		anchor:  now(),
		index:   BuildIndex(nil, nil),
	}
}

func (c *Controller) log(operation string, attrs ...any) *slog.Logger {
	pairs := []any{"component", "GridController", "operation", operation, "grade", string(c.session.Grade)}
	pairs = append(pairs, attrs...)
	return c.logger.With(pairs...)
}

// Window returns the currently displayed week window.
func (c *Controller) Window() weekgrid.Window {
	return weekgrid.WindowFor(c.anchor)
}

// WeekDays returns the seven displayed days, Monday through Sunday.
func (c *Controller) WeekDays() [weekgrid.DaysPerWeek]time.Time {
	return weekgrid.WeekDays(c.anchor)
}

// Rooms returns the last successfully fetched room set.
func (c *Controller) Rooms() []Room {
	return c.rooms
}

// Modal reports which modal is currently open.
func (c *Controller) Modal() Modal {
	return c.modal
}

// SelectedCell returns the cell the reservation modal targets.
func (c *Controller) SelectedCell() *CellSelection {
	return c.selectedCell
}

// SelectedRoom returns the room the delete-confirmation modal targets.
func (c *Controller) SelectedRoom() *Room {
	return c.selectedRoom
}

// GradeRequests returns the pending elevation requests loaded for review.
func (c *Controller) GradeRequests() []GradeRequest {
	return c.requests
}

// ModalErr returns the inline error of the open modal, if any.
func (c *Controller) ModalErr() error {
	return c.modalErr
}

// BannerErr returns the grid-level error banner, if any. The grid itself
// keeps rendering last-known-good data alongside it.
func (c *Controller) BannerErr() error {
	return c.bannerErr
}

// IsReserved reports the booking state of a cell per the latest fetch.
func (c *Controller) IsReserved(roomID string, day time.Time) bool {
	return c.index.IsReserved(roomID, day)
}

// ReservationFor exposes booking provenance for reserved cells under the flat
// wire shape.
func (c *Controller) ReservationFor(roomID string, day time.Time) (Reservation, bool) {
	return c.index.ReservationFor(roomID, day)
}

// CellStateFor resolves the rendering contract for one cell.
func (c *Controller) CellStateFor(roomID string, day time.Time) CellState {
	if c.index.IsReserved(roomID, day) {
		return CellReserved
	}
	if grade.CanBook(c.session.Grade) {
		return CellBookable
	}
	return CellReadOnly
}

// requireCredential is the precondition gate in front of every remote call.
// A missing bearer credential never reaches the network.
func (c *Controller) requireCredential() error {
	if strings.TrimSpace(c.session.Token) == "" {
		return &PreconditionError{Field: "credential", Message: "missing bearer credential"}
	}
	return nil
}

func (c *Controller) rebuildIndex() {
	if c.flat {
		c.index = BuildIndex(nil, c.reservations)
		return
	}
	c.index = BuildIndex(c.rooms, nil)
}

// LoadRooms fetches the room list and replaces the local set wholesale. On
// failure the previously displayed rooms stay visible behind an error banner;
// stale-but-visible beats blank.
func (c *Controller) LoadRooms(ctx context.Context) error {
	if err := c.requireCredential(); err != nil {
		c.bannerErr = err
		return err
	}

	logger := c.log("LoadRooms")
	rooms, err := c.svc.ListRooms(ctx)
	if err != nil {
		err = classify(err)
		c.bannerErr = err
		logger.ErrorContext(ctx, "failed to load rooms", "error", err, "fault_kind", FaultKind(err))
		return err
	}

	c.rooms = rooms
	c.bannerErr = nil
	c.rebuildIndex()
	logger.With("result_count", len(rooms)).InfoContext(ctx, "rooms loaded")

	if c.flat {
		return c.LoadReservations(ctx)
	}
	return nil
}

// LoadReservations re-fetches the flat reservation list scoped to the visible
// week. Results are keyed by the window that originated the fetch: if the
// displayed week moved while the call was in flight, the stale result is
// discarded instead of overwriting newer state.
func (c *Controller) LoadReservations(ctx context.Context) error {
	if !c.flat {
		return nil
	}
	if err := c.requireCredential(); err != nil {
		c.bannerErr = err
		return err
	}

	requested := c.Window()
	logger := c.log("LoadReservations", "week_start", weekgrid.DayKey(requested.Start))

	reservations, err := c.svc.ListReservations(ctx, requested)
	if err != nil {
		err = classify(err)
		c.bannerErr = err
		logger.ErrorContext(ctx, "failed to load reservations", "error", err, "fault_kind", FaultKind(err))
		return err
	}

	if !c.Window().Equal(requested) {
		logger.InfoContext(ctx, "discarding superseded reservation fetch")
		return nil
	}

	c.reservations = reservations
	c.bannerErr = nil
	c.rebuildIndex()
	logger.With("result_count", len(reservations)).InfoContext(ctx, "reservations loaded")
	return nil
}

// NavigateWeek shifts the displayed week by delta whole weeks. Rooms are not
// refetched; the reservation listing is, when it backs the index.
func (c *Controller) NavigateWeek(ctx context.Context, delta int) error {
	c.anchor = weekgrid.ShiftWeek(c.anchor, delta)
	if c.flat {
		return c.LoadReservations(ctx)
	}
	return nil
}

// OnCellClick handles a click on a (room, day) cell. Callers lacking booking
// capability get a strict no-op: no modal, no network. Otherwise the
// reservation modal opens pre-filled with the cell and its current booking
// state, which decides whether the confirm action offered is book or cancel.
func (c *Controller) OnCellClick(roomID string, day time.Time) {
	if !grade.CanBook(c.session.Grade) {
		return
	}
	room, ok := c.roomByID(roomID)
	if !ok {
		return
	}

	c.openModal(ModalReservation)
	c.selectedCell = &CellSelection{
		RoomID:   room.ID,
		RoomName: room.Name,
		Day:      weekgrid.Day(day),
		Reserved: c.index.IsReserved(room.ID, day),
	}
}

// ConfirmReservation books the selected cell. Success re-fetches whichever
// collection backs the index before the modal closes, so the next render
// reflects server truth rather than an assumed local delta. Failure keeps the
// modal open with an inline error; conflicts and vanished cells additionally
// trigger a re-fetch so the grid self-corrects.
func (c *Controller) ConfirmReservation(ctx context.Context) error {
	cell := c.selectedCell
	if c.modal != ModalReservation || cell == nil {
		return &PreconditionError{Message: "no reservation in progress"}
	}
	if err := c.requireCredential(); err != nil {
		c.modalErr = err
		return err
	}

	logger := c.log("ConfirmReservation", "room_id", cell.RoomID, "day", weekgrid.DayKey(cell.Day))

	// Re-check against the latest fetched state: the cell may have been taken
	// since the modal opened.
	if c.index.IsReserved(cell.RoomID, cell.Day) {
		c.modalErr = ErrConflict
		logger.ErrorContext(ctx, "cell already reserved", "fault_kind", FaultKind(ErrConflict))
		return ErrConflict
	}

	if _, err := c.svc.CreateReservation(ctx, cell.RoomID, cell.Day); err != nil {
		err = classify(err)
		c.modalErr = err
		logger.ErrorContext(ctx, "reservation failed", "error", err, "fault_kind", FaultKind(err))
		c.refetchAfterRejection(ctx, err)
		return err
	}

	if err := c.refetch(ctx); err != nil {
		c.modalErr = err
		return err
	}

	logger.InfoContext(ctx, "reservation created")
	c.CloseModal()
	return nil
}

// CancelReservation frees the selected cell. Only offered when the cell is
// reserved; cancelling an already-free cell reports not-found rather than
// crashing, and the follow-up re-fetch reconciles the grid either way.
func (c *Controller) CancelReservation(ctx context.Context) error {
	cell := c.selectedCell
	if c.modal != ModalReservation || cell == nil {
		return &PreconditionError{Message: "no reservation in progress"}
	}
	if err := c.requireCredential(); err != nil {
		c.modalErr = err
		return err
	}

	logger := c.log("CancelReservation", "room_id", cell.RoomID, "day", weekgrid.DayKey(cell.Day))

	if !c.index.IsReserved(cell.RoomID, cell.Day) {
		c.modalErr = ErrNotFound
		logger.ErrorContext(ctx, "cell is not reserved", "fault_kind", FaultKind(ErrNotFound))
		return ErrNotFound
	}

	if err := c.svc.CancelReservation(ctx, cell.RoomID, cell.Day); err != nil {
		err = classify(err)
		c.modalErr = err
		logger.ErrorContext(ctx, "cancellation failed", "error", err, "fault_kind", FaultKind(err))
		c.refetchAfterRejection(ctx, err)
		return err
	}

	if err := c.refetch(ctx); err != nil {
		c.modalErr = err
		return err
	}

	logger.InfoContext(ctx, "reservation cancelled")
	c.CloseModal()
	return nil
}

// OnRoomHeaderClick opens the delete-confirmation modal for a room. No-op for
// callers without room management capability.
func (c *Controller) OnRoomHeaderClick(roomID string) {
	if !grade.CanManageRooms(c.session.Grade) {
		return
	}
	room, ok := c.roomByID(roomID)
	if !ok {
		return
	}
	c.openModal(ModalDeleteRoom)
	c.selectedRoom = &room
}

// ConfirmDeleteRoom removes the selected room. Success closes the modal after
// re-fetching; failure keeps it open with an inline error.
func (c *Controller) ConfirmDeleteRoom(ctx context.Context) error {
	room := c.selectedRoom
	if c.modal != ModalDeleteRoom || room == nil {
		return &PreconditionError{Message: "no room deletion in progress"}
	}
	if err := c.requireCredential(); err != nil {
		c.modalErr = err
		return err
	}

	logger := c.log("ConfirmDeleteRoom", "room_id", room.ID)

	if err := c.svc.DeleteRoom(ctx, room.ID); err != nil {
		err = classify(err)
		c.modalErr = err
		logger.ErrorContext(ctx, "room deletion failed", "error", err, "fault_kind", FaultKind(err))
		c.refetchAfterRejection(ctx, err)
		return err
	}

	if err := c.LoadRooms(ctx); err != nil {
		c.modalErr = err
		return err
	}

	logger.InfoContext(ctx, "room deleted")
	c.CloseModal()
	return nil
}

// OpenCreateRoom opens the room-creation modal for administrators.
func (c *Controller) OpenCreateRoom() {
	if !grade.CanManageRooms(c.session.Grade) {
		return
	}
	c.openModal(ModalCreateRoom)
}

// AddRoom validates and submits a new room. Both fields are required before
// the remote call is attempted; server-side validation errors surface
// verbatim as the inline modal error.
func (c *Controller) AddRoom(ctx context.Context, name, equipment string) error {
	if c.modal != ModalCreateRoom {
		return &PreconditionError{Message: "no room creation in progress"}
	}
	if strings.TrimSpace(name) == "" {
		err := &PreconditionError{Field: "name", Message: "name is required"}
		c.modalErr = err
		return err
	}
	if strings.TrimSpace(equipment) == "" {
		err := &PreconditionError{Field: "equipment", Message: "equipment is required"}
		c.modalErr = err
		return err
	}
	if err := c.requireCredential(); err != nil {
		c.modalErr = err
		return err
	}

	logger := c.log("AddRoom", "name", name)

	if _, err := c.svc.CreateRoom(ctx, name, equipment); err != nil {
		err = classify(err)
		c.modalErr = err
		logger.ErrorContext(ctx, "room creation failed", "error", err, "fault_kind", FaultKind(err))
		return err
	}

	if err := c.LoadRooms(ctx); err != nil {
		c.modalErr = err
		return err
	}

	logger.InfoContext(ctx, "room created")
	c.CloseModal()
	return nil
}

// RequestGrade fires the one-shot elevation request available to visitors.
// Local state does not change until an administrator approves and a new
// session is obtained from the authentication collaborator.
func (c *Controller) RequestGrade(ctx context.Context) error {
	if c.session.Grade != grade.Visitor {
		return &PreconditionError{Message: "grade elevation is only available to visitors"}
	}
	if err := c.requireCredential(); err != nil {
		return err
	}

	logger := c.log("RequestGrade")
	if err := c.svc.RequestGrade(ctx); err != nil {
		err = classify(err)
		logger.ErrorContext(ctx, "grade request failed", "error", err, "fault_kind", FaultKind(err))
		return err
	}
	logger.InfoContext(ctx, "grade elevation requested")
	return nil
}

// OpenGradeReview loads the pending elevation requests and opens the review
// modal. Admin only.
func (c *Controller) OpenGradeReview(ctx context.Context) error {
	if !grade.CanManageGradeRequests(c.session.Grade) {
		return &PreconditionError{Message: "grade review requires administrator capability"}
	}
	if err := c.requireCredential(); err != nil {
		return err
	}

	logger := c.log("OpenGradeReview")
	requests, err := c.svc.ListGradeRequests(ctx)
	if err != nil {
		err = classify(err)
		logger.ErrorContext(ctx, "failed to list grade requests", "error", err, "fault_kind", FaultKind(err))
		return err
	}

	c.openModal(ModalGradeReview)
	c.requests = requests
	logger.With("result_count", len(requests)).InfoContext(ctx, "grade requests loaded")
	return nil
}

// ReviewGradeRequest resolves one pending request. Success removes it from
// the pending set and closes the review modal once the set is empty; failure
// keeps the request pending with an inline error.
func (c *Controller) ReviewGradeRequest(ctx context.Context, requestID string, approve bool) error {
	if c.modal != ModalGradeReview {
		return &PreconditionError{Message: "no grade review in progress"}
	}
	if err := c.requireCredential(); err != nil {
		c.modalErr = err
		return err
	}

	logger := c.log("ReviewGradeRequest", "request_id", requestID, "approve", approve)

	if err := c.svc.ReviewGradeRequest(ctx, requestID, approve); err != nil {
		err = classify(err)
		c.modalErr = err
		logger.ErrorContext(ctx, "grade review failed", "error", err, "fault_kind", FaultKind(err))
		return err
	}

	remaining := c.requests[:0]
	for _, req := range c.requests {
		if req.ID != requestID {
			remaining = append(remaining, req)
		}
	}
	c.requests = remaining
	c.modalErr = nil

	logger.InfoContext(ctx, "grade request resolved")
	if len(c.requests) == 0 {
		c.CloseModal()
	}
	return nil
}

// CloseModal dismisses the open modal and clears its selection and inline
// error.
func (c *Controller) CloseModal() {
	c.modal = ModalNone
	c.selectedCell = nil
	c.selectedRoom = nil
	c.modalErr = nil
}

// openModal switches focus, closing whatever modal was open first. Modals are
// mutually exclusive and never stack.
func (c *Controller) openModal(m Modal) {
	c.CloseModal()
	c.modal = m
}

// refetch reloads whichever collection backs the index after a successful
// mutation, before the caller is allowed to close the modal.
func (c *Controller) refetch(ctx context.Context) error {
	if c.flat {
		return c.LoadReservations(ctx)
	}
	return c.LoadRooms(ctx)
}

// refetchAfterRejection reconciles the grid after a conflict or not-found
// rejection so the next render shows server truth. Transport failures skip
// the reconcile; there is nothing new to show.
func (c *Controller) refetchAfterRejection(ctx context.Context, err error) {
	switch FaultKind(err) {
	case "conflict", "not_found":
		_ = c.refetch(ctx)
	}
}

func (c *Controller) roomByID(roomID string) (Room, bool) {
	for _, room := range c.rooms {
		if room.ID == roomID {
			return room, true
		}
	}
	return Room{}, false
}
