package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/concert-booking/internal/model"
)

// InMemoryStore keeps the seat ledger in process memory.  It is used
// by tests and local development.  A single RWMutex guards all maps;
// BookSeats performs its version checks and writes under the write
// lock so commits are serializable.
type InMemoryStore struct {
	mu         sync.RWMutex
	seats      map[string]map[string]*model.Seat // date key -> label -> seat
	bookings   map[uint64]*model.Booking
	nextSeatID uint64
	nextBookID uint64
	now        func() time.Time
}

// NewInMemoryStore returns an empty in-memory ledger.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		seats:    make(map[string]map[string]*model.Seat),
		bookings: make(map[uint64]*model.Booking),
		now:      time.Now,
	}
}

func dateKey(date time.Time) string {
	return date.UTC().Format("2006-01-02 15:04:05")
}

// AddSeats seeds the ledger with free seats for a date.  Existing
// labels are left untouched.
func (s *InMemoryStore) AddSeats(date time.Time, priceCents uint32, labels ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := dateKey(date)
	byLabel, ok := s.seats[key]
	if !ok {
		byLabel = make(map[string]*model.Seat)
		s.seats[key] = byLabel
	}
	for _, label := range labels {
		if _, exists := byLabel[label]; exists {
			continue
		}
		s.nextSeatID++
		byLabel[label] = &model.Seat{
			ID:         s.nextSeatID,
			Date:       date.UTC(),
			Label:      label,
			PriceCents: priceCents,
		}
	}
}

// SeatsByDate returns seats for the date matching the filter, ordered
// by label.
func (s *InMemoryStore) SeatsByDate(ctx context.Context, date time.Time, filter SeatFilter) ([]model.Seat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Seat
	for _, seat := range s.seats[dateKey(date)] {
		switch filter {
		case SeatsBooked:
			if !seat.Booked {
				continue
			}
		case SeatsUnbooked:
			if seat.Booked {
				continue
			}
		}
		out = append(out, *seat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

// FreeSeats returns the unbooked seats whose labels appear in labels.
func (s *InMemoryStore) FreeSeats(ctx context.Context, date time.Time, labels []string) ([]model.Seat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byLabel := s.seats[dateKey(date)]
	out := make([]model.Seat, 0, len(labels))
	for _, label := range labels {
		seat, ok := byLabel[label]
		if !ok || seat.Booked {
			continue
		}
		out = append(out, *seat)
	}
	return out, nil
}

// BookSeats re-checks every seat under the write lock and either
// commits all transitions plus the booking record, or none.
func (s *InMemoryStore) BookSeats(ctx context.Context, b *model.Booking, seats []model.Seat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byLabel := s.seats[dateKey(b.Date)]
	// Verify first so a mid-loop failure cannot leave partial writes.
	for _, want := range seats {
		seat, ok := byLabel[want.Label]
		if !ok || seat.Booked || seat.Version != want.Version {
			return ErrSeatConflict
		}
	}
	for _, want := range seats {
		seat := byLabel[want.Label]
		seat.Booked = true
		seat.Version++
	}
	s.nextBookID++
	b.ID = s.nextBookID
	b.CreatedAt = s.now().UTC()
	stored := *b
	stored.SeatLabels = append([]string(nil), b.SeatLabels...)
	s.bookings[b.ID] = &stored
	return nil
}

// Occupancy returns total and booked seat counts for the date.
func (s *InMemoryStore) Occupancy(ctx context.Context, date time.Time) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total, booked := 0, 0
	for _, seat := range s.seats[dateKey(date)] {
		total++
		if seat.Booked {
			booked++
		}
	}
	return total, booked, nil
}

// BookingByID returns a copy of the booking or ErrNotFound.
func (s *InMemoryStore) BookingByID(ctx context.Context, id uint64) (*model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *b
	out.SeatLabels = append([]string(nil), b.SeatLabels...)
	return &out, nil
}

// BookingsByUser returns copies of the user's bookings, newest first.
func (s *InMemoryStore) BookingsByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.UserID != userID {
			continue
		}
		cp := *b
		cp.SeatLabels = append([]string(nil), b.SeatLabels...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
