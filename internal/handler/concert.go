package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/concert-booking/internal/model"
	"github.com/iliyamo/concert-booking/internal/repository"
)

// CatalogHandler serves the public concert and performer catalog.
type CatalogHandler struct {
	Concerts   *repository.ConcertRepo
	Performers *repository.PerformerRepo
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(concerts *repository.ConcertRepo, performers *repository.PerformerRepo) *CatalogHandler {
	if concerts == nil || performers == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{Concerts: concerts, Performers: performers}
}

type performerResp struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	ImageName string `json:"image_name,omitempty"`
	Genre     string `json:"genre,omitempty"`
	Blurb     string `json:"blurb,omitempty"`
}

type concertResp struct {
	ID         uint64          `json:"id"`
	Title      string          `json:"title"`
	ImageName  string          `json:"image_name,omitempty"`
	Blurb      string          `json:"blurb,omitempty"`
	Dates      []string        `json:"dates"`
	Performers []performerResp `json:"performers"`
}

func toConcertResp(c *model.Concert) concertResp {
	out := concertResp{
		ID:         c.ID,
		Title:      c.Title,
		ImageName:  c.ImageName,
		Blurb:      c.Blurb,
		Dates:      make([]string, 0, len(c.Dates)),
		Performers: make([]performerResp, 0, len(c.Performers)),
	}
	for _, d := range c.Dates {
		out.Dates = append(out.Dates, d.UTC().Format(time.RFC3339))
	}
	for i := range c.Performers {
		out.Performers = append(out.Performers, toPerformerResp(&c.Performers[i]))
	}
	return out
}

func toPerformerResp(p *model.Performer) performerResp {
	return performerResp{
		ID:        p.ID,
		Name:      p.Name,
		ImageName: p.ImageName,
		Genre:     p.Genre,
		Blurb:     p.Blurb,
	}
}

// ListConcerts handles GET /v1/concerts.
func (h *CatalogHandler) ListConcerts(c echo.Context) error {
	concerts, err := h.Concerts.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]concertResp, 0, len(concerts))
	for i := range concerts {
		out = append(out, toConcertResp(&concerts[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// GetConcert handles GET /v1/concerts/:id.
func (h *CatalogHandler) GetConcert(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid concert id"})
	}
	concert, err := h.Concerts.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrConcertNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "concert not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toConcertResp(concert))
}

// ListPerformers handles GET /v1/performers.
func (h *CatalogHandler) ListPerformers(c echo.Context) error {
	performers, err := h.Performers.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]performerResp, 0, len(performers))
	for i := range performers {
		out = append(out, toPerformerResp(&performers[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// GetPerformer handles GET /v1/performers/:id.
func (h *CatalogHandler) GetPerformer(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid performer id"})
	}
	p, err := h.Performers.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrPerformerNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "performer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toPerformerResp(p))
}
