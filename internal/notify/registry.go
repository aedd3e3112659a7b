// Package notify holds the in-process subscription registry and the
// dispatcher that feeds it after every committed booking.  A
// subscription is a long-lived "tell me when occupancy passes my
// threshold" request; it resolves at most once and lives only for the
// lifetime of the process (clients re-subscribe after a restart).
package notify

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidThreshold is returned by Subscribe for thresholds outside
// the 0..100 range.
var ErrInvalidThreshold = errors.New("threshold must be between 0 and 100")

// Notification is delivered to a subscriber whose threshold was
// exceeded.  It carries the number of seats still unbooked at the
// evaluated snapshot.
type Notification struct {
	UnbookedSeatCount int `json:"unbooked_seat_count"`
}

// subscription is one pending entry.  The channel has capacity 1 and
// receives exactly zero or one value: entries are removed from the
// map before delivery, so no second sender can exist.
type subscription struct {
	concertID uint64
	dateKey   string
	threshold int
	createdAt time.Time
	ch        chan Notification
}

// Registry stores pending subscriptions keyed by id.  A single mutex
// guards the map; Evaluate removes matching entries under the lock
// and completes them after releasing it, so a slow receiver never
// blocks bookings or other subscribers.
type Registry struct {
	mu   sync.Mutex
	now  func() time.Time
	subs map[uuid.UUID]*subscription
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		now:  time.Now,
		subs: make(map[uuid.UUID]*subscription),
	}
}

func subDateKey(date time.Time) string {
	return date.UTC().Format("2006-01-02 15:04:05")
}

// Subscribe registers a pending notification request and returns its
// id together with the channel the eventual notification arrives on.
// The call itself never blocks; callers typically select on the
// channel and their request context.  A subscription registered while
// an evaluation is in flight is either included in it or picked up by
// the next one, never lost.
func (r *Registry) Subscribe(concertID uint64, date time.Time, thresholdPercent int) (uuid.UUID, <-chan Notification, error) {
	if thresholdPercent < 0 || thresholdPercent > 100 {
		return uuid.Nil, nil, ErrInvalidThreshold
	}
	sub := &subscription{
		concertID: concertID,
		dateKey:   subDateKey(date),
		threshold: thresholdPercent,
		createdAt: r.now().UTC(),
		ch:        make(chan Notification, 1),
	}
	id := uuid.New()
	r.mu.Lock()
	r.subs[id] = sub
	r.mu.Unlock()
	return id, sub.ch, nil
}

// Evaluate resolves every pending subscription for (concertID, date)
// whose threshold is strictly below the booked percentage computed
// from total and booked.  The percentage is the rounded integer of
// booked/total*100; 33 of 100 booked seats is 33 percent, not 1/3
// truncated.  Resolved entries are removed before their notification
// is sent, which makes resolution at-most-once even when Evaluate
// races with Cancel or another Evaluate.
func (r *Registry) Evaluate(concertID uint64, date time.Time, total, booked int) {
	if total <= 0 {
		return
	}
	pct := int(math.Round(float64(booked) / float64(total) * 100))
	key := subDateKey(date)

	var resolved []*subscription
	r.mu.Lock()
	for id, sub := range r.subs {
		if sub.concertID != concertID || sub.dateKey != key {
			continue
		}
		if pct > sub.threshold {
			delete(r.subs, id)
			resolved = append(resolved, sub)
		}
	}
	r.mu.Unlock()

	n := Notification{UnbookedSeatCount: total - booked}
	for _, sub := range resolved {
		// Capacity 1 and removal-before-send guarantee this never
		// blocks.
		sub.ch <- n
	}
}

// Cancel removes a pending subscription, typically because the caller
// disconnected or timed out.  Cancelling an unknown or already
// resolved id is a no-op, so racing a resolution is harmless: exactly
// one of delivery or cancellation wins.
func (r *Registry) Cancel(id uuid.UUID) {
	r.mu.Lock()
	delete(r.subs, id)
	r.mu.Unlock()
}

// Pending reports the number of unresolved subscriptions.  Used by
// operational logging and tests.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}
