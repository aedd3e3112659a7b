package notify

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/concert-booking/internal/storage"
)

// Dispatcher glues the booking engine to the subscription registry.
// After a booking commits it recounts occupancy from the ledger, runs
// the registry evaluation and invalidates the cached seat listing for
// the date.  It runs outside the booking transaction; failures here
// are logged and swallowed because a broken fan-out must never roll
// back or fail the booking that triggered it.
type Dispatcher struct {
	store    storage.Store
	registry *Registry
	rdb      *redis.Client // optional; nil disables cache invalidation
}

// NewDispatcher constructs a Dispatcher.  rdb may be nil.
func NewDispatcher(store storage.Store, registry *Registry, rdb *redis.Client) *Dispatcher {
	if store == nil || registry == nil {
		panic("nil dependency passed to NewDispatcher")
	}
	return &Dispatcher{store: store, registry: registry, rdb: rdb}
}

// SeatCacheKey is the Redis key under which seat listings for a date
// are cached.  The dispatcher deletes it after every booking so
// listings never serve stale availability.
func SeatCacheKey(date time.Time) string {
	return "seats:" + date.UTC().Format(time.RFC3339)
}

// OccupancyChanged recomputes the occupancy snapshot for the date and
// hands it to the registry.  Called synchronously by the engine right
// after commit, so evaluations for one date happen in commit order.
func (d *Dispatcher) OccupancyChanged(ctx context.Context, concertID uint64, date time.Time) {
	total, booked, err := d.store.Occupancy(ctx, date)
	if err != nil {
		log.Printf("notify: occupancy recount failed for %s: %v", date.UTC().Format(time.RFC3339), err)
		return
	}
	d.registry.Evaluate(concertID, date, total, booked)

	if d.rdb != nil {
		if err := d.rdb.Del(ctx, SeatCacheKey(date)).Err(); err != nil {
			log.Printf("notify: seat cache invalidation failed: %v", err)
		}
	}
}
