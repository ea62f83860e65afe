package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/dtroode/taskboard-server/internal/apierrors"
	"github.com/dtroode/taskboard-server/internal/logger"
	"github.com/dtroode/taskboard-server/internal/model"
)

// Task implements owner-scoped task operations.
type Task struct {
	store        model.TaskStore
	logger       *logger.Logger
	defaultLimit int
	maxLimit     int
}

func NewTask(store model.TaskStore, logger *logger.Logger, defaultLimit, maxLimit int) *Task {
	return &Task{
		store:        store,
		logger:       logger,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

func (s *Task) Create(ctx context.Context, params model.CreateTaskParams) (model.Task, error) {
	if params.Title == "" {
		return model.Task{}, apierrors.NewErrValidation("Title is required")
	}

	task, err := s.store.Create(ctx, model.Task{
		OwnerID:     params.OwnerID,
		Title:       params.Title,
		Description: params.Description,
		Status:      model.TaskStatusPending,
	})
	if err != nil {
		s.logger.Error("Task service: failed to create task",
			"user_id", params.OwnerID,
			"error", err.Error())
		return model.Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Debug("Task service: task created",
		"user_id", params.OwnerID,
		"task_id", task.ID)

	return task, nil
}

// List returns one page of the owner's tasks, newest first. Page and limit
// below one fall back to the defaults; limit is capped at the maximum.
func (s *Task) List(ctx context.Context, params model.ListTasksParams) (model.TaskPage, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = s.defaultLimit
	}
	if s.maxLimit > 0 && limit > s.maxLimit {
		limit = s.maxLimit
	}
	// An offset that does not fit in an int cannot address any row.
	if page-1 > math.MaxInt/limit {
		return model.TaskPage{Page: page, Limit: limit, Tasks: []model.Task{}}, nil
	}

	tasks, err := s.store.List(ctx, model.TaskFilter{
		OwnerID: params.OwnerID,
		Status:  params.Status,
		Search:  params.Search,
		Limit:   limit,
		Offset:  (page - 1) * limit,
	})
	if err != nil {
		s.logger.Error("Task service: failed to list tasks",
			"user_id", params.OwnerID,
			"error", err.Error())
		return model.TaskPage{}, fmt.Errorf("failed to list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}

	return model.TaskPage{Page: page, Limit: limit, Tasks: tasks}, nil
}

func (s *Task) Get(ctx context.Context, ownerID, taskID int64) (model.Task, error) {
	task, err := s.store.GetByID(ctx, ownerID, taskID)
	if err != nil {
		return model.Task{}, s.mapStoreError("get", ownerID, taskID, err)
	}
	return task, nil
}

// Update applies a coalesce update. A set title must be non-empty and a set
// status must be known.
func (s *Task) Update(ctx context.Context, params model.UpdateTaskParams) error {
	if title, ok := params.Changes.Title.Get(); ok && title == "" {
		return apierrors.NewErrValidation("Title cannot be empty")
	}
	if status, ok := params.Changes.Status.Get(); ok && !status.Valid() {
		return apierrors.NewErrValidation("Status must be pending or completed")
	}

	err := s.store.Update(ctx, params.OwnerID, params.TaskID, params.Changes)
	if err != nil {
		return s.mapStoreError("update", params.OwnerID, params.TaskID, err)
	}
	return nil
}

func (s *Task) Toggle(ctx context.Context, ownerID, taskID int64) error {
	if err := s.store.Toggle(ctx, ownerID, taskID); err != nil {
		return s.mapStoreError("toggle", ownerID, taskID, err)
	}
	return nil
}

func (s *Task) Delete(ctx context.Context, ownerID, taskID int64) error {
	if err := s.store.Delete(ctx, ownerID, taskID); err != nil {
		return s.mapStoreError("delete", ownerID, taskID, err)
	}
	return nil
}

func (s *Task) mapStoreError(op string, ownerID, taskID int64, err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return apierrors.NewErrTaskNotFound(taskID)
	}
	s.logger.Error("Task service: failed to "+op+" task",
		"user_id", ownerID,
		"task_id", taskID,
		"error", err.Error())
	return fmt.Errorf("failed to %s task: %w", op, err)
}
