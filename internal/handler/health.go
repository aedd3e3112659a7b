package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers liveness probes.  It deliberately skips the database
// and broker: a booking node that lost its dependencies still reports
// alive and surfaces those failures on the affected endpoints instead.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
