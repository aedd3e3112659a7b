package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/concert-booking/internal/booking"
	"github.com/iliyamo/concert-booking/internal/model"
	"github.com/iliyamo/concert-booking/internal/repository"
	"github.com/iliyamo/concert-booking/internal/storage"
)

var showDate = time.Date(2026, 10, 10, 20, 0, 0, 0, time.UTC)

type stubCatalog struct {
	concerts map[uint64]*model.Concert
}

func (s *stubCatalog) GetByID(ctx context.Context, id uint64) (*model.Concert, error) {
	c, ok := s.concerts[id]
	if !ok {
		return nil, repository.ErrConcertNotFound
	}
	return c, nil
}

// newBookingFixture builds a handler over the in-memory ledger with one
// committed booking belonging to user 1.
func newBookingFixture(t *testing.T) (*BookingHandler, *model.Booking) {
	t.Helper()
	store := storage.NewInMemoryStore()
	store.AddSeats(showDate, 5000, "A1", "A2")
	catalog := &stubCatalog{concerts: map[uint64]*model.Concert{
		1: {ID: 1, Title: "Harbor Lights", Dates: []time.Time{showDate}},
	}}
	engine := booking.NewEngine(catalog, store, nil)

	b, err := engine.Book(context.Background(), 1, showDate, []string{"A1"}, 1)
	require.NoError(t, err)
	return NewBookingHandler(engine, store, catalog), b
}

func getBookingCtx(id string, userID uint64) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/bookings/:id")
	c.SetParamNames("id")
	c.SetParamValues(id)
	c.Set("user_id", userID)
	return c, rec
}

func TestGetBookingOwner(t *testing.T) {
	h, b := newBookingFixture(t)

	c, rec := getBookingCtx("1", b.UserID)
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var got bookingResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, b.ID, got.ID)
	assert.Equal(t, []string{"A1"}, got.SeatLabels)
}

func TestGetBookingOtherUserForbidden(t *testing.T) {
	h, b := newBookingFixture(t)

	c, rec := getBookingCtx("1", b.UserID+1)
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, repository.ErrForbidden.Error(), body["error"])
}

func TestGetBookingNotFound(t *testing.T) {
	h, _ := newBookingFixture(t)

	c, rec := getBookingCtx("99", 1)
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
