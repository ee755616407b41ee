package grid

import (
	"time"

	"github.com/example/room-booking/internal/weekgrid"
)

// Index is the read-only (room, day) lookup rebuilt wholesale after every
// fetch. It has no mutation methods: the latest full fetch is the single
// source of truth, which keeps the one-booking-per-cell invariant trivially
// correct on the client side.
type Index struct {
	reserved map[string]struct{}
	records  map[string]Reservation
}

func cellKey(roomID string, dayKey string) string {
	return roomID + "|" + dayKey
}

// BuildIndex constructs an index from whichever reservation representation
// the backing service returned: room-embedded day tokens, a flat reservation
// list, or both. Day identity always goes through weekgrid.DayKey so the two
// wire shapes never disagree on what "the same day" means. Tokens that fail
// to parse mark no cell.
func BuildIndex(rooms []Room, reservations []Reservation) *Index {
	idx := &Index{
		reserved: make(map[string]struct{}),
		records:  make(map[string]Reservation),
	}

	for _, room := range rooms {
		for _, token := range room.Days {
			day, err := weekgrid.ParseDayToken(token)
			if err != nil {
				continue
			}
			idx.reserved[cellKey(room.ID, weekgrid.DayKey(day))] = struct{}{}
		}
	}

	for _, res := range reservations {
		key := cellKey(res.RoomID, weekgrid.DayKey(res.Day))
		idx.reserved[key] = struct{}{}
		idx.records[key] = res
	}

	return idx
}

// IsReserved reports whether the (room, day) cell is booked.
func (idx *Index) IsReserved(roomID string, day time.Time) bool {
	if idx == nil {
		return false
	}
	_, ok := idx.reserved[cellKey(roomID, weekgrid.DayKey(day))]
	return ok
}

// ReservationFor returns the full reservation record backing a cell when the
// flat wire shape supplied one. Cells marked only by an embedded room token
// have no record to return.
func (idx *Index) ReservationFor(roomID string, day time.Time) (Reservation, bool) {
	if idx == nil {
		return Reservation{}, false
	}
	res, ok := idx.records[cellKey(roomID, weekgrid.DayKey(day))]
	return res, ok
}
