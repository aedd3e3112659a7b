package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/concert-booking/internal/model"
	"github.com/iliyamo/concert-booking/internal/storage"
)

func bookingFor(date time.Time, labels ...string) *model.Booking {
	return &model.Booking{ConcertID: 1, UserID: 1, Date: date, SeatLabels: labels}
}

func TestSeatCacheKey(t *testing.T) {
	date := time.Date(2026, 12, 5, 20, 0, 0, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "seats:2026-12-05T19:00:00Z", SeatCacheKey(date))
}

func TestOccupancyChangedEvaluatesFromLedger(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 12, 5, 20, 0, 0, 0, time.UTC)

	store := storage.NewInMemoryStore()
	store.AddSeats(date, 5000, "A1", "A2", "A3", "A4", "A5", "A6", "A7", "A8", "A9", "A10")
	registry := NewRegistry()
	d := NewDispatcher(store, registry, nil)

	_, ch, err := registry.Subscribe(1, date, 0)
	require.NoError(t, err)

	// Book one of ten seats directly in the ledger, then dispatch.
	free, err := store.FreeSeats(ctx, date, []string{"A1"})
	require.NoError(t, err)
	require.NoError(t, store.BookSeats(ctx, bookingFor(date, "A1"), free))

	d.OccupancyChanged(ctx, 1, date)

	select {
	case n := <-ch:
		assert.Equal(t, 9, n.UnbookedSeatCount)
	default:
		t.Fatal("threshold 0 did not fire after first booking")
	}
	assert.Equal(t, 0, registry.Pending())
}

func TestOccupancyChangedBelowThresholdKeepsSubscription(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 12, 6, 20, 0, 0, 0, time.UTC)

	store := storage.NewInMemoryStore()
	store.AddSeats(date, 5000, "A1", "A2", "A3", "A4")
	registry := NewRegistry()
	d := NewDispatcher(store, registry, nil)

	_, ch, err := registry.Subscribe(1, date, 80)
	require.NoError(t, err)

	free, err := store.FreeSeats(ctx, date, []string{"A1", "A2"})
	require.NoError(t, err)
	require.NoError(t, store.BookSeats(ctx, bookingFor(date, "A1", "A2"), free))

	// 2 of 4 booked is 50 percent, below the 80 threshold.
	d.OccupancyChanged(ctx, 1, date)
	select {
	case <-ch:
		t.Fatal("threshold 80 fired at 50 percent")
	default:
	}
	assert.Equal(t, 1, registry.Pending())
}
