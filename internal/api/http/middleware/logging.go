package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dtroode/taskboard-server/internal/logger"
)

// Logging logs every HTTP request with its outcome.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// Handle logs method, uri, status and latency. A handler error is passed
// to the echo error handler first so the logged status is the one the
// client receives.
func (l *Logging) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		res := c.Response()
		requestID := res.Header().Get(echo.HeaderXRequestID)
		if requestID == "" {
			requestID = req.Header.Get(echo.HeaderXRequestID)
		}

		args := []any{
			"method", req.Method,
			"uri", req.RequestURI,
			"status", res.Status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", requestID,
		}

		switch {
		case res.Status >= 500:
			if err != nil {
				args = append(args, "error", err.Error())
			}
			l.logger.Error("HTTP request failed", args...)
		case res.Status >= 400:
			l.logger.Warn("HTTP request rejected", args...)
		default:
			l.logger.Info("HTTP request completed", args...)
		}

		return nil
	}
}
