package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/concert-booking/internal/booking"
	"github.com/iliyamo/concert-booking/internal/notify"
	"github.com/iliyamo/concert-booking/internal/repository"
)

// SubscribeHandler registers occupancy subscriptions and long-polls
// them.  The request is held open until the subscription resolves or
// the client goes away; either way the registry entry is cleaned up.
type SubscribeHandler struct {
	Registry *notify.Registry
	Catalog  booking.Catalog
}

// NewSubscribeHandler constructs a SubscribeHandler.
func NewSubscribeHandler(registry *notify.Registry, catalog booking.Catalog) *SubscribeHandler {
	if registry == nil || catalog == nil {
		panic("nil dependency passed to NewSubscribeHandler")
	}
	return &SubscribeHandler{Registry: registry, Catalog: catalog}
}

type subscribeReq struct {
	ConcertID uint64 `json:"concert_id"`
	Date      string `json:"date"`
	Threshold int    `json:"threshold_percent"`
}

// ConcertInfo handles POST /v1/subscribe/concert-info.  It validates
// the target concert date, registers the threshold subscription and
// blocks until a booking pushes occupancy past the threshold.  If the
// client disconnects first the subscription is cancelled and nothing
// is delivered.
func (h *SubscribeHandler) ConcertInfo(c echo.Context) error {
	var req subscribeReq
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

	ctx := c.Request().Context()
	concert, err := h.Catalog.GetByID(ctx, req.ConcertID)
	if err != nil {
		if errors.Is(err, repository.ErrConcertNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "concert not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !concert.HasDate(date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "concert has no performance on that date"})
	}

	id, ch, err := h.Registry.Subscribe(req.ConcertID, date, req.Threshold)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	select {
	case n := <-ch:
		return c.JSON(http.StatusOK, n)
	case <-ctx.Done():
		h.Registry.Cancel(id)
		return ctx.Err()
	}
}
