package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthRoutes registers the liveness endpoint.
type HealthRoutes struct{}

// RegisterRoutes registers /healthz.
func (HealthRoutes) RegisterRoutes(s *echo.Echo) {
	s.GET("/healthz", func(c echo.Context) error {
		return respond(c, http.StatusOK, map[string]string{"status": "ok"})
	})
}
