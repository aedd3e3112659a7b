// Package storage implements the seat ledger: the single source of
// truth for which seats are booked on each concert date.  Two
// implementations exist, a MySQL-backed store for production and an
// in-memory store used by tests and local development.  Both enforce
// the same contract: a booking either transitions every requested seat
// from free to booked and records the booking, or changes nothing.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/concert-booking/internal/model"
)

// ErrNotFound is returned when a requested booking does not exist.
var ErrNotFound = errors.New("not found")

// ErrSeatConflict is returned when a booking commit loses the
// optimistic check: at least one targeted seat was booked, deleted or
// re-versioned by a concurrent transaction between read and write.
var ErrSeatConflict = errors.New("seat version conflict")

// SeatFilter selects which seats a listing returns.
type SeatFilter string

const (
	SeatsAny      SeatFilter = "Any"
	SeatsBooked   SeatFilter = "Booked"
	SeatsUnbooked SeatFilter = "Unbooked"
)

// Store is the seat ledger interface.  All dates are compared as
// instants; implementations normalize to UTC.
type Store interface {
	// SeatsByDate returns all seats for a date matching the filter,
	// ordered by label.
	SeatsByDate(ctx context.Context, date time.Time, filter SeatFilter) ([]model.Seat, error)

	// FreeSeats returns the unbooked seats for the date whose labels
	// appear in labels, with their current versions.  Labels that do
	// not exist or are already booked are simply absent from the
	// result; callers detect conflicts by comparing lengths.
	FreeSeats(ctx context.Context, date time.Time, labels []string) ([]model.Seat, error)

	// BookSeats atomically marks every seat in seats as booked and
	// records b, all inside one transaction.  Each seat must still be
	// free and carry the version captured by FreeSeats; if any seat
	// fails that check the whole transaction is rolled back and
	// ErrSeatConflict is returned.  On success b.ID and b.CreatedAt
	// are populated.
	BookSeats(ctx context.Context, b *model.Booking, seats []model.Seat) error

	// Occupancy returns the total and booked seat counts for a date.
	Occupancy(ctx context.Context, date time.Time) (total, booked int, err error)

	// BookingByID returns a booking with its seat labels, or
	// ErrNotFound.
	BookingByID(ctx context.Context, id uint64) (*model.Booking, error)

	// BookingsByUser returns all bookings made by the user, newest
	// first.
	BookingsByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
}
