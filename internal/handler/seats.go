package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/concert-booking/internal/model"
	"github.com/iliyamo/concert-booking/internal/storage"
)

// SeatHandler serves the public seat-map listing used by clients to
// render the booking screen.
type SeatHandler struct {
	Store storage.Store
}

// NewSeatHandler constructs a SeatHandler.
func NewSeatHandler(store storage.Store) *SeatHandler {
	if store == nil {
		panic("nil store passed to NewSeatHandler")
	}
	return &SeatHandler{Store: store}
}

type seatResp struct {
	ID         uint64 `json:"id"`
	Label      string `json:"label"`
	PriceCents uint32 `json:"price_cents"`
	Booked     bool   `json:"booked"`
}

// ByDate handles GET /v1/seats/:date?status=Booked|Unbooked|Any.  The
// date path segment is RFC3339; status defaults to Any.
func (h *SeatHandler) ByDate(c echo.Context) error {
	date, err := parseDate(c.Param("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
	}

	filter := storage.SeatsAny
	switch status := c.QueryParam("status"); status {
	case "", string(storage.SeatsAny):
	case string(storage.SeatsBooked):
		filter = storage.SeatsBooked
	case string(storage.SeatsUnbooked):
		filter = storage.SeatsUnbooked
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be Booked, Unbooked or Any"})
	}

	seats, err := h.Store.SeatsByDate(c.Request().Context(), date, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]seatResp, 0, len(seats))
	for i := range seats {
		out = append(out, toSeatResp(&seats[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"date":  date.UTC().Format(time.RFC3339),
		"seats": out,
	})
}

func toSeatResp(s *model.Seat) seatResp {
	return seatResp{
		ID:         s.ID,
		Label:      s.Label,
		PriceCents: s.PriceCents,
		Booked:     s.Booked,
	}
}
