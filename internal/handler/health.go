package handler

import (
	"net/http"

	"github.com/deppfellow/articles-api/internal/lib/healthcheck"
	"github.com/deppfellow/articles-api/internal/middleware"
	"github.com/deppfellow/articles-api/internal/server"
	"github.com/labstack/echo/v4"
)

// HealthHandler serves the dependency health report.
type HealthHandler struct {
	Handler
	checker *healthcheck.Checker
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
		checker: s.Health,
	}
}

// CheckHealth returns 200 with the report when every critical check
// passes and 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	report := h.checker.Check(c.Request().Context())

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	if !report.Healthy() {
		logger.Warn().Interface("checks", report.Checks).Msg("health check failed")
		return c.JSON(http.StatusServiceUnavailable, report)
	}

	logger.Debug().Msg("health check passed")
	return c.JSON(http.StatusOK, report)
}
