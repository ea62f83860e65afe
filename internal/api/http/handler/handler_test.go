package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/dtroode/taskboard-server/internal/testutil"
)

// newTestContext builds an echo context whose errors are rendered by
// ErrorHandler, like the production router.
func newTestContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(testutil.MakeNoopLogger())

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// serve runs h and renders a returned error the way echo does.
func serve(c echo.Context, h echo.HandlerFunc) {
	if err := h(c); err != nil {
		c.Echo().HTTPErrorHandler(err, c)
	}
}
