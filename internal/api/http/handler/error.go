package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dtroode/taskboard-server/internal/apierrors"
	"github.com/dtroode/taskboard-server/internal/logger"
	"github.com/dtroode/taskboard-server/internal/model"
)

const (
	statusFailure = 0
	statusSuccess = 1
)

type errorResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// ErrorHandler renders every error returned by a handler or middleware as
// {"message": ..., "status": 0}.
func ErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, message := resolveError(err)
		if code >= http.StatusInternalServerError {
			logger.Error("HTTP error handler: request failed",
				"method", c.Request().Method,
				"uri", c.Request().RequestURI,
				"error", err.Error())
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(code)
		} else {
			writeErr = c.JSON(code, errorResponse{Message: message, Status: statusFailure})
		}
		if writeErr != nil {
			logger.Error("HTTP error handler: failed to write response",
				"error", writeErr.Error())
		}
	}
}

func resolveError(err error) (int, string) {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Message
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if msg, ok := httpErr.Message.(string); ok {
			return httpErr.Code, msg
		}
		return httpErr.Code, fmt.Sprint(httpErr.Message)
	}

	if errors.Is(err, model.ErrNotFound) {
		return http.StatusNotFound, "Not found"
	}

	return http.StatusInternalServerError, err.Error()
}
