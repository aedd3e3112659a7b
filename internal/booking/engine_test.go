package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/concert-booking/internal/model"
	"github.com/iliyamo/concert-booking/internal/notify"
	"github.com/iliyamo/concert-booking/internal/repository"
	"github.com/iliyamo/concert-booking/internal/storage"
)

var gigDate = time.Date(2026, 11, 20, 19, 30, 0, 0, time.UTC)

// fakeCatalog serves a fixed set of concerts from memory.
type fakeCatalog struct {
	concerts map[uint64]*model.Concert
}

func (f *fakeCatalog) GetByID(ctx context.Context, id uint64) (*model.Concert, error) {
	c, ok := f.concerts[id]
	if !ok {
		return nil, repository.ErrConcertNotFound
	}
	return c, nil
}

// recordingDispatcher counts fan-out invocations.
type recordingDispatcher struct {
	mu    sync.Mutex
	calls []time.Time
}

func (r *recordingDispatcher) OccupancyChanged(ctx context.Context, concertID uint64, date time.Time) {
	r.mu.Lock()
	r.calls = append(r.calls, date)
	r.mu.Unlock()
}

func (r *recordingDispatcher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func newTestEngine(t *testing.T, labels ...string) (*Engine, *storage.InMemoryStore, *recordingDispatcher) {
	t.Helper()
	store := storage.NewInMemoryStore()
	store.AddSeats(gigDate, 6000, labels...)
	catalog := &fakeCatalog{concerts: map[uint64]*model.Concert{
		1: {ID: 1, Title: "Midnight Run", Dates: []time.Time{gigDate}},
	}}
	disp := &recordingDispatcher{}
	return NewEngine(catalog, store, disp), store, disp
}

func TestBookSuccess(t *testing.T) {
	e, store, disp := newTestEngine(t, "A1", "A2", "A3")

	b, err := e.Book(context.Background(), 1, gigDate, []string{"A1", "A2"}, 7)
	require.NoError(t, err)
	assert.NotZero(t, b.ID)
	assert.Equal(t, uint64(7), b.UserID)
	assert.Equal(t, []string{"A1", "A2"}, b.SeatLabels)
	assert.Equal(t, 1, disp.count())

	_, booked, err := store.Occupancy(context.Background(), gigDate)
	require.NoError(t, err)
	assert.Equal(t, 2, booked)
}

func TestBookValidation(t *testing.T) {
	e, _, disp := newTestEngine(t, "A1")

	tests := []struct {
		name      string
		concertID uint64
		date      time.Time
		labels    []string
		want      error
	}{
		{"no labels", 1, gigDate, nil, ErrInvalid},
		{"blank labels", 1, gigDate, []string{"  ", ""}, ErrInvalid},
		{"unknown concert", 99, gigDate, []string{"A1"}, ErrConcertNotFound},
		{"date not performed", 1, gigDate.AddDate(0, 0, 1), []string{"A1"}, ErrInvalid},
		{"unknown seat label", 1, gigDate, []string{"ZZ"}, ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Book(context.Background(), tt.concertID, tt.date, tt.labels, 7)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// None of the failures may have reached the dispatcher.
	assert.Equal(t, 0, disp.count())
}

func TestBookDeduplicatesLabels(t *testing.T) {
	e, _, _ := newTestEngine(t, "A1", "A2")

	b, err := e.Book(context.Background(), 1, gigDate, []string{" A1 ", "A1", "A2"}, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, b.SeatLabels)
}

func TestBookAlreadyBookedSeatConflicts(t *testing.T) {
	e, _, disp := newTestEngine(t, "A1", "A2")

	_, err := e.Book(context.Background(), 1, gigDate, []string{"A1"}, 1)
	require.NoError(t, err)

	// A2 is free but the request must fail as a whole.
	_, err = e.Book(context.Background(), 1, gigDate, []string{"A1", "A2"}, 2)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 1, disp.count())
}

func TestBookOverlappingRequestsExactlyOneWinsContestedSeat(t *testing.T) {
	e, store, _ := newTestEngine(t, "A1", "A2")
	ctx := context.Background()

	// Two requests race: {A1} against {A1, A2}.  Whatever the
	// interleaving, A1 is granted exactly once and the loser gets a
	// conflict with nothing booked.
	var wg sync.WaitGroup
	var errSolo, errPair error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errSolo = e.Book(ctx, 1, gigDate, []string{"A1"}, 1)
	}()
	go func() {
		defer wg.Done()
		_, errPair = e.Book(ctx, 1, gigDate, []string{"A1", "A2"}, 2)
	}()
	wg.Wait()

	if errSolo == nil && errPair == nil {
		t.Fatal("both bookings succeeded, A1 was granted twice")
	}
	require.Truef(t, errSolo == nil || errPair == nil, "both bookings failed: %v / %v", errSolo, errPair)

	seats, err := store.SeatsByDate(ctx, gigDate, storage.SeatsBooked)
	require.NoError(t, err)
	if errPair == nil {
		assert.Len(t, seats, 2)
	} else {
		assert.ErrorIs(t, errPair, ErrConflict)
		require.Len(t, seats, 1)
		assert.Equal(t, "A1", seats[0].Label)
	}
}

// occupancyCtxStore fails the occupancy recount once the caller's
// context is cancelled, like the MySQL ledger does.
type occupancyCtxStore struct {
	*storage.InMemoryStore
}

func (s *occupancyCtxStore) Occupancy(ctx context.Context, date time.Time) (int, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	return s.InMemoryStore.Occupancy(ctx, date)
}

func TestBookNotifiesSubscribersAfterCallerHangsUp(t *testing.T) {
	mem := storage.NewInMemoryStore()
	mem.AddSeats(gigDate, 6000, "A1", "A2")
	store := &occupancyCtxStore{InMemoryStore: mem}
	catalog := &fakeCatalog{concerts: map[uint64]*model.Concert{
		1: {ID: 1, Title: "Midnight Run", Dates: []time.Time{gigDate}},
	}}
	registry := notify.NewRegistry()
	e := NewEngine(catalog, store, notify.NewDispatcher(store, registry, nil))

	_, ch, err := registry.Subscribe(1, gigDate, 0)
	require.NoError(t, err)

	// The client disconnects; the commit has already been decided and
	// its fan-out must still reach the subscriber.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = e.Book(ctx, 1, gigDate, []string{"A1"}, 7)
	require.NoError(t, err)

	select {
	case n := <-ch:
		assert.Equal(t, 1, n.UnbookedSeatCount)
	default:
		t.Fatal("committed booking did not notify the subscriber")
	}
}

func TestBookWithNilDispatcher(t *testing.T) {
	store := storage.NewInMemoryStore()
	store.AddSeats(gigDate, 6000, "A1")
	catalog := &fakeCatalog{concerts: map[uint64]*model.Concert{
		1: {ID: 1, Title: "Midnight Run", Dates: []time.Time{gigDate}},
	}}
	e := NewEngine(catalog, store, nil)

	_, err := e.Book(context.Background(), 1, gigDate, []string{"A1"}, 7)
	assert.NoError(t, err)
}
