package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var concertDate = time.Date(2026, 12, 5, 20, 0, 0, 0, time.UTC)

func TestSubscribeRejectsBadThreshold(t *testing.T) {
	r := NewRegistry()

	for _, pct := range []int{-1, 101, 250} {
		_, _, err := r.Subscribe(1, concertDate, pct)
		assert.ErrorIs(t, err, ErrInvalidThreshold)
	}
	for _, pct := range []int{0, 50, 100} {
		id, ch, err := r.Subscribe(1, concertDate, pct)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, id)
		assert.NotNil(t, ch)
	}
	assert.Equal(t, 3, r.Pending())
}

func TestEvaluateStrictThreshold(t *testing.T) {
	r := NewRegistry()

	// 50 of 100 booked is exactly 50 percent: a threshold of 50 must
	// not fire, 49 must.
	_, at50, err := r.Subscribe(1, concertDate, 50)
	require.NoError(t, err)
	_, at49, err := r.Subscribe(1, concertDate, 49)
	require.NoError(t, err)

	r.Evaluate(1, concertDate, 100, 50)

	select {
	case n := <-at49:
		assert.Equal(t, 50, n.UnbookedSeatCount)
	default:
		t.Fatal("threshold 49 did not fire at 50 percent")
	}
	select {
	case <-at50:
		t.Fatal("threshold 50 fired at exactly 50 percent")
	default:
	}
	assert.Equal(t, 1, r.Pending())

	// One more booking tips it over.
	r.Evaluate(1, concertDate, 100, 51)
	select {
	case n := <-at50:
		assert.Equal(t, 49, n.UnbookedSeatCount)
	default:
		t.Fatal("threshold 50 did not fire at 51 percent")
	}
}

func TestEvaluateRoundsPercentage(t *testing.T) {
	r := NewRegistry()

	// 1 of 3 booked is 33.33 percent, which rounds to 33: it exceeds
	// a threshold of 32 but not 33.
	_, at32, err := r.Subscribe(1, concertDate, 32)
	require.NoError(t, err)
	_, at33, err := r.Subscribe(1, concertDate, 33)
	require.NoError(t, err)

	r.Evaluate(1, concertDate, 3, 1)

	select {
	case <-at32:
	default:
		t.Fatal("threshold 32 did not fire at rounded 33 percent")
	}
	select {
	case <-at33:
		t.Fatal("threshold 33 fired at rounded 33 percent")
	default:
	}

	// 2 of 3 is 66.66 percent and rounds up to 67.
	_, at66, err := r.Subscribe(1, concertDate, 66)
	require.NoError(t, err)
	r.Evaluate(1, concertDate, 3, 2)
	select {
	case n := <-at66:
		assert.Equal(t, 1, n.UnbookedSeatCount)
	default:
		t.Fatal("threshold 66 did not fire at rounded 67 percent")
	}
}

func TestEvaluateResolvesAtMostOnce(t *testing.T) {
	r := NewRegistry()

	_, ch, err := r.Subscribe(1, concertDate, 10)
	require.NoError(t, err)

	r.Evaluate(1, concertDate, 10, 5)
	r.Evaluate(1, concertDate, 10, 6)
	r.Evaluate(1, concertDate, 10, 7)

	got := 0
	for {
		select {
		case <-ch:
			got++
			continue
		default:
		}
		break
	}
	assert.Equal(t, 1, got)
	assert.Equal(t, 0, r.Pending())
}

func TestEvaluateScopesByConcertAndDate(t *testing.T) {
	r := NewRegistry()
	otherDate := concertDate.AddDate(0, 0, 1)

	_, mine, err := r.Subscribe(1, concertDate, 0)
	require.NoError(t, err)
	_, otherConcert, err := r.Subscribe(2, concertDate, 0)
	require.NoError(t, err)
	_, otherDay, err := r.Subscribe(1, otherDate, 0)
	require.NoError(t, err)

	r.Evaluate(1, concertDate, 10, 1)

	select {
	case <-mine:
	default:
		t.Fatal("matching subscription did not fire")
	}
	select {
	case <-otherConcert:
		t.Fatal("subscription for another concert fired")
	default:
	}
	select {
	case <-otherDay:
		t.Fatal("subscription for another date fired")
	default:
	}
	assert.Equal(t, 2, r.Pending())
}

func TestEvaluateIgnoresEmptyDate(t *testing.T) {
	r := NewRegistry()
	_, ch, err := r.Subscribe(1, concertDate, 0)
	require.NoError(t, err)

	r.Evaluate(1, concertDate, 0, 0)

	select {
	case <-ch:
		t.Fatal("subscription fired for a date with no seats")
	default:
	}
	assert.Equal(t, 1, r.Pending())
}

func TestCancelIsIdempotent(t *testing.T) {
	r := NewRegistry()
	id, ch, err := r.Subscribe(1, concertDate, 0)
	require.NoError(t, err)

	r.Cancel(id)
	r.Cancel(id)
	r.Cancel(uuid.New())
	assert.Equal(t, 0, r.Pending())

	// A cancelled subscription never resolves.
	r.Evaluate(1, concertDate, 10, 9)
	select {
	case <-ch:
		t.Fatal("cancelled subscription received a notification")
	default:
	}
}

func TestConcurrentSubscribeEvaluateCancel(t *testing.T) {
	r := NewRegistry()
	const n = 64

	var wg sync.WaitGroup
	delivered := make(chan Notification, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, ch, err := r.Subscribe(1, concertDate, i%100)
			if err != nil {
				t.Error(err)
				return
			}
			if i%3 == 0 {
				r.Cancel(id)
			}
			select {
			case notif := <-ch:
				delivered <- notif
			default:
			}
		}(i)
	}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Evaluate(1, concertDate, 100, i+1)
		}(i)
	}
	wg.Wait()
	close(delivered)

	// Whatever interleaving happened, nothing may remain resolvable
	// twice and the registry must still be coherent.
	for notif := range delivered {
		assert.GreaterOrEqual(t, notif.UnbookedSeatCount, 0)
		assert.LessOrEqual(t, notif.UnbookedSeatCount, 100)
	}
	r.Evaluate(1, concertDate, 100, 100)
	assert.Equal(t, 0, r.Pending())
}
