// Package booking implements the seat booking engine.  The engine
// validates a request against the concert catalog, claims the
// requested seats through the ledger's optimistic check-and-set, and
// notifies the dispatcher after a commit.  It never retries on its
// own: substituting different seats for what the user asked is the
// caller's decision, not ours.
package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/concert-booking/internal/model"
	"github.com/iliyamo/concert-booking/internal/repository"
	"github.com/iliyamo/concert-booking/internal/storage"
)

// ErrInvalid is returned for malformed requests: an empty seat set or
// a date the concert is not scheduled on.
var ErrInvalid = errors.New("invalid booking request")

// ErrConcertNotFound is returned when the referenced concert does not
// exist.
var ErrConcertNotFound = errors.New("concert not found")

// ErrConflict is returned when at least one requested seat is already
// booked, does not exist for the date, or was claimed by a concurrent
// booking between read and commit.  No partial booking is ever left
// behind.
var ErrConflict = errors.New("requested seats are unavailable")

// Catalog looks up concerts for date validation.  Implementations
// return repository.ErrConcertNotFound for unknown ids.
type Catalog interface {
	GetByID(ctx context.Context, id uint64) (*model.Concert, error)
}

// Dispatcher is invoked after each committed booking so occupancy
// subscribers can be evaluated.  It must never be called for a failed
// booking.
type Dispatcher interface {
	OccupancyChanged(ctx context.Context, concertID uint64, date time.Time)
}

// Engine coordinates catalog validation, the ledger transaction and
// post-commit notification.
type Engine struct {
	catalog  Catalog
	store    storage.Store
	dispatch Dispatcher
}

// NewEngine constructs an Engine.  dispatch may be nil when no
// notification fan-out is wanted (tests, tooling).
func NewEngine(catalog Catalog, store storage.Store, dispatch Dispatcher) *Engine {
	if catalog == nil || store == nil {
		panic("nil dependency passed to NewEngine")
	}
	return &Engine{catalog: catalog, store: store, dispatch: dispatch}
}

// Book attempts to book the labeled seats on the given concert date
// for the user.  On success the returned booking is committed and the
// dispatcher has been invoked.  Error values: ErrConcertNotFound,
// ErrInvalid, ErrConflict, or a storage error.
func (e *Engine) Book(ctx context.Context, concertID uint64, date time.Time, seatLabels []string, userID uint64) (*model.Booking, error) {
	labels := dedupeLabels(seatLabels)
	if len(labels) == 0 {
		return nil, ErrInvalid
	}

	concert, err := e.catalog.GetByID(ctx, concertID)
	if err != nil {
		if errors.Is(err, repository.ErrConcertNotFound) {
			return nil, ErrConcertNotFound
		}
		return nil, err
	}
	if !concert.HasDate(date) {
		return nil, ErrInvalid
	}

	// Read the free seats matching the request.  A shorter result
	// means some label is unknown or already booked; the caller gets
	// a conflict either way, exactly as if it lost the race below.
	seats, err := e.store.FreeSeats(ctx, date, labels)
	if err != nil {
		return nil, err
	}
	if len(seats) != len(labels) {
		return nil, ErrConflict
	}

	b := &model.Booking{
		ConcertID:  concertID,
		UserID:     userID,
		Date:       date.UTC(),
		SeatLabels: labels,
	}
	if err := e.store.BookSeats(ctx, b, seats); err != nil {
		if errors.Is(err, storage.ErrSeatConflict) {
			return nil, ErrConflict
		}
		return nil, err
	}

	// Only after the transaction committed; a slow fan-out must not
	// hold seat state, and an aborted one must not notify at all.
	// Detached from the request context: the caller hanging up after
	// commit must not suppress the occupancy recount.
	if e.dispatch != nil {
		e.dispatch.OccupancyChanged(context.WithoutCancel(ctx), concertID, b.Date)
	}
	return b, nil
}

// dedupeLabels trims, drops empties and removes duplicates while
// keeping first-seen order.
func dedupeLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
