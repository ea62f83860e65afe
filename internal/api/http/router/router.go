package router

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/dtroode/taskboard-server/internal/api/http/handler"
	"github.com/dtroode/taskboard-server/internal/api/http/middleware"
	"github.com/dtroode/taskboard-server/internal/logger"
	"github.com/dtroode/taskboard-server/internal/model"
)

// Services bundles the application services the router dispatches to.
type Services struct {
	Auth interface {
		handler.AuthService
		middleware.Authorizer
	}
	Task   handler.TaskService
	Pinger model.Pinger
}

// Router builds the HTTP routing tree.
type Router struct {
	services       Services
	contextManager model.ContextManager
	allowOrigins   []string
	logger         *logger.Logger
}

// New creates new Router instance.
func New(
	services Services,
	contextManager model.ContextManager,
	allowOrigins []string,
	logger *logger.Logger,
) *Router {
	return &Router{
		services:       services,
		contextManager: contextManager,
		allowOrigins:   allowOrigins,
		logger:         logger,
	}
}

// Register wires middleware and routes into a new echo instance.
func (r *Router) Register() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(r.logger)

	logging := middleware.NewLogging(r.logger)

	e.Use(
		echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}),
		logging.Handle,
		echomw.Recover(),
		echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: r.allowOrigins,
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}),
	)

	r.registerHealthRoutes(e)
	r.registerAuthRoutes(e)
	r.registerTaskRoutes(e)

	return e
}

func (r *Router) registerHealthRoutes(e *echo.Echo) {
	h := handler.NewHealth(r.services.Pinger, r.logger)
	e.GET("/", h.Root)
	e.GET("/healthz", h.Ready)
}

func (r *Router) registerAuthRoutes(e *echo.Echo) {
	h := handler.NewAuth(r.services.Auth, r.logger)
	e.POST("/signup", h.Signup)
	e.POST("/login", h.Login)
}

func (r *Router) registerTaskRoutes(e *echo.Echo) {
	authenticate := middleware.NewAuthenticate(r.services.Auth, r.contextManager, r.logger)
	h := handler.NewTask(r.services.Task, r.contextManager, r.logger)

	tasks := e.Group("/tasks", authenticate.Handle)
	tasks.POST("", h.Create)
	tasks.GET("", h.List)
	tasks.GET("/:id", h.Get)
	tasks.PATCH("/:id", h.Update)
	tasks.PATCH("/:id/toggle", h.Toggle)
	tasks.DELETE("/:id", h.Delete)
}
