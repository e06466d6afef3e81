// handlers_health.go - Liveness and dependency health
package server

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/paperlens/paperlens/internal/repository"
)

// HealthChecker reports whether an external engine is reachable.
type HealthChecker interface {
	Healthy(ctx context.Context) error
}

type HealthHandler struct {
	db        *sql.DB
	version   string
	providers map[string]HealthChecker
	logger    *slog.Logger
}

func NewHealthHandler(db *sql.DB, version string, providers map[string]HealthChecker, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{db: db, version: version, providers: providers, logger: logger}
}

// HandleHealth checks the database and each provider. Degraded providers do
// not fail the endpoint; the pipeline runs without them.
func (h *HealthHandler) HandleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	status := map[string]any{
		"status":  "ok",
		"version": h.version,
	}

	if err := repository.HealthCheck(ctx, h.db, 0, h.logger); err != nil {
		status["status"] = "unhealthy"
		status["database"] = err.Error()
		return c.JSON(http.StatusServiceUnavailable, status)
	}
	status["database"] = "ok"

	for name, p := range h.providers {
		if err := p.Healthy(ctx); err != nil {
			status[name] = "unreachable"
			status["status"] = "degraded"
		} else {
			status[name] = "ok"
		}
	}

	return c.JSON(http.StatusOK, status)
}
