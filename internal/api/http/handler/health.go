package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dtroode/taskboard-server/internal/logger"
	"github.com/dtroode/taskboard-server/internal/model"
)

const pingTimeout = 2 * time.Second

// Health serves the liveness and readiness endpoints.
type Health struct {
	pinger model.Pinger
	logger *logger.Logger
}

func NewHealth(pinger model.Pinger, logger *logger.Logger) *Health {
	return &Health{pinger: pinger, logger: logger}
}

func (h *Health) Root(c echo.Context) error {
	return c.String(http.StatusOK, "Taskboard API is running")
}

// Ready reports 503 when the database does not answer a ping.
func (h *Health) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.Warn("Health handler: database ping failed",
			"error", err.Error())
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
