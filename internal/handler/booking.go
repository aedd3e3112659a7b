package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/concert-booking/internal/booking"
	"github.com/iliyamo/concert-booking/internal/model"
	"github.com/iliyamo/concert-booking/internal/queue"
	"github.com/iliyamo/concert-booking/internal/repository"
	queue_publisher "github.com/iliyamo/concert-booking/internal/service"
	"github.com/iliyamo/concert-booking/internal/storage"
)

// BookingHandler exposes the booking engine and booking reads over
// HTTP.  All endpoints require an authenticated user; the JWT
// middleware has already placed user_id in the context.
type BookingHandler struct {
	Engine  *booking.Engine
	Store   storage.Store
	Catalog booking.Catalog
}

// NewBookingHandler constructs a BookingHandler with the provided
// dependencies.  All of them must be non-nil.
func NewBookingHandler(engine *booking.Engine, store storage.Store, catalog booking.Catalog) *BookingHandler {
	if engine == nil || store == nil || catalog == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: engine, Store: store, Catalog: catalog}
}

type bookingReq struct {
	ConcertID  uint64   `json:"concert_id"`
	Date       string   `json:"date"`
	SeatLabels []string `json:"seat_labels"`
}

type bookingResp struct {
	ID         uint64   `json:"id"`
	ConcertID  uint64   `json:"concert_id"`
	Date       string   `json:"date"`
	SeatLabels []string `json:"seat_labels"`
	CreatedAt  string   `json:"created_at"`
}

func toBookingResp(b *model.Booking) bookingResp {
	return bookingResp{
		ID:         b.ID,
		ConcertID:  b.ConcertID,
		Date:       b.Date.UTC().Format(time.RFC3339),
		SeatLabels: b.SeatLabels,
		CreatedAt:  b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Create handles POST /v1/bookings.  It validates and commits the
// booking through the engine and returns 201 with the booking body
// and a Location header.  Conflicting seat requests return 409; the
// client chooses whether to retry with a different selection.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.ConcertID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "concert_id is required"})
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
	}

	b, err := h.Engine.Book(c.Request().Context(), req.ConcertID, date, req.SeatLabels, userID)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrConcertNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "concert not found"})
		case errors.Is(err, booking.ErrInvalid):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking request"})
		case errors.Is(err, booking.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "some seats are unavailable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}

	h.publishConfirmed(c.Request().Context(), b)

	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/v1/bookings/%d", b.ID))
	return c.JSON(http.StatusCreated, toBookingResp(b))
}

// publishConfirmed fans the committed booking out to the message
// broker.  Runs on its own goroutine with a fresh context; a broker
// outage must never delay or fail the HTTP response.
func (h *BookingHandler) publishConfirmed(ctx context.Context, b *model.Booking) {
	ev := queue.BookingConfirmedEvent{
		BookingID:  b.ID,
		UserID:     b.UserID,
		ConcertID:  b.ConcertID,
		Date:       b.Date.UTC().Format(time.RFC3339),
		SeatLabels: b.SeatLabels,
		BookedAt:   b.CreatedAt.UTC().Format(time.RFC3339),
	}
	if concert, err := h.Catalog.GetByID(ctx, b.ConcertID); err == nil {
		ev.ConcertTitle = concert.Title
	}
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishBookingConfirmed(pubCtx, ev)
	}()
}

// List handles GET /v1/bookings and returns the caller's bookings,
// newest first.
func (h *BookingHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookings, err := h.Store.BookingsByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]bookingResp, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResp(&bookings[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/bookings/:id.  A booking may only be read by
// the user who made it; anyone else receives 403.
func (h *BookingHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Store.BookingByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if b.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": repository.ErrForbidden.Error()})
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}
