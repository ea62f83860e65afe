package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dtroode/taskboard-server/internal/apierrors"
	"github.com/dtroode/taskboard-server/internal/logger"
	"github.com/dtroode/taskboard-server/internal/model"
)

// TaskService defines owner-scoped task operations.
type TaskService interface {
	Create(ctx context.Context, params model.CreateTaskParams) (model.Task, error)
	List(ctx context.Context, params model.ListTasksParams) (model.TaskPage, error)
	Get(ctx context.Context, ownerID, taskID int64) (model.Task, error)
	Update(ctx context.Context, params model.UpdateTaskParams) error
	Toggle(ctx context.Context, ownerID, taskID int64) error
	Delete(ctx context.Context, ownerID, taskID int64) error
}

// Task handles the authenticated /tasks endpoints.
type Task struct {
	taskService    TaskService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewTask creates a new Task handler.
func NewTask(taskService TaskService, contextManager model.ContextManager, logger *logger.Logger) *Task {
	return &Task{
		taskService:    taskService,
		contextManager: contextManager,
		logger:         logger,
	}
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type createTaskResponse struct {
	Message string `json:"message"`
	TaskID  int64  `json:"taskId"`
	Status  int    `json:"status"`
}

type updateTaskRequest struct {
	Title       model.Optional[string]           `json:"title"`
	Description model.Optional[string]           `json:"description"`
	Status      model.Optional[model.TaskStatus] `json:"status"`
}

func (h *Task) Create(c echo.Context) error {
	identity, err := h.identity(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.NewErrValidation("Invalid request body")
	}

	task, err := h.taskService.Create(c.Request().Context(), model.CreateTaskParams{
		OwnerID:     identity.UserID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createTaskResponse{
		Message: "Task created",
		TaskID:  task.ID,
		Status:  statusSuccess,
	})
}

// List returns a page of the caller's tasks. Unparseable page and limit
// values are treated as absent.
func (h *Task) List(c echo.Context) error {
	identity, err := h.identity(c)
	if err != nil {
		return err
	}

	page, err := h.taskService.List(c.Request().Context(), model.ListTasksParams{
		OwnerID: identity.UserID,
		Page:    queryInt(c, "page"),
		Limit:   queryInt(c, "limit"),
		Status:  c.QueryParam("status"),
		Search:  c.QueryParam("search"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, page)
}

func (h *Task) Get(c echo.Context) error {
	identity, taskID, err := h.identityAndTaskID(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.Get(c.Request().Context(), identity.UserID, taskID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Task) Update(c echo.Context) error {
	identity, taskID, err := h.identityAndTaskID(c)
	if err != nil {
		return err
	}

	var req updateTaskRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return apierrors.NewErrValidation("Invalid request body")
	}

	err = h.taskService.Update(c.Request().Context(), model.UpdateTaskParams{
		OwnerID: identity.UserID,
		TaskID:  taskID,
		Changes: model.TaskChanges{
			Title:       req.Title,
			Description: req.Description,
			Status:      req.Status,
		},
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Task updated"})
}

func (h *Task) Toggle(c echo.Context) error {
	identity, taskID, err := h.identityAndTaskID(c)
	if err != nil {
		return err
	}

	if err := h.taskService.Toggle(c.Request().Context(), identity.UserID, taskID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Task status toggled"})
}

func (h *Task) Delete(c echo.Context) error {
	identity, taskID, err := h.identityAndTaskID(c)
	if err != nil {
		return err
	}

	if err := h.taskService.Delete(c.Request().Context(), identity.UserID, taskID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Task deleted"})
}

func (h *Task) identity(c echo.Context) (model.Identity, error) {
	identity, ok := h.contextManager.GetIdentityFromContext(c.Request().Context())
	if !ok {
		h.logger.Warn("Task handler: identity missing from request context",
			"uri", c.Request().RequestURI)
		return model.Identity{}, apierrors.NewErrMissingAuthorizationToken()
	}
	return identity, nil
}

// identityAndTaskID resolves the caller and the :id path parameter. An id
// that is not a positive integer cannot match any task.
func (h *Task) identityAndTaskID(c echo.Context) (model.Identity, int64, error) {
	identity, err := h.identity(c)
	if err != nil {
		return model.Identity{}, 0, err
	}

	raw := c.Param("id")
	taskID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || taskID < 1 {
		return model.Identity{}, 0, apierrors.NewErrTaskNotFound(raw)
	}

	return identity, taskID, nil
}

func queryInt(c echo.Context, name string) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return v
}
