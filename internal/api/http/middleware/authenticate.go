package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dtroode/taskboard-server/internal/logger"
	"github.com/dtroode/taskboard-server/internal/model"
)

// Authorizer resolves the identity carried by a bearer token.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (model.Identity, error)
}

// Authenticate validates bearer tokens and injects the identity into the
// request context.
type Authenticate struct {
	authorizer     Authorizer
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(authorizer Authorizer, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{authorizer: authorizer, contextManager: contextManager, logger: logger}
}

// Handle rejects requests without a valid "Authorization: Bearer" header.
func (m *Authenticate) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		token := bearerToken(req.Header.Get(echo.HeaderAuthorization))

		identity, err := m.authorizer.Authorize(req.Context(), token)
		if err != nil {
			m.logger.Debug("Authenticate middleware: request rejected",
				"path", req.URL.Path,
				"error", err.Error())
			return err
		}

		ctx := m.contextManager.SetIdentityToContext(req.Context(), identity)
		c.SetRequest(req.WithContext(ctx))

		return next(c)
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
