package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"taskify/internal/apperrors"
	"taskify/internal/middleware"
	"taskify/internal/models"
	"taskify/internal/repository"
	"taskify/internal/services"
)

var errBlankTitle = apperrors.Validation("validation_error", "title is required")

// TaskHandler serves the caller's own tasks; other users' tasks read as not found.
type TaskHandler struct {
	*CRUDHandler[models.Task, models.Task]
	tasks repository.TaskRepository
	v     *validator.Validate
	now   func() time.Time
}

func NewTaskHandler(tasks repository.TaskRepository) *TaskHandler {
	return &TaskHandler{
		CRUDHandler: NewCRUDHandler(repository.Store[models.Task](tasks), CRUDOptions[models.Task, models.Task]{
			View:         func(t *models.Task) models.Task { return *t },
			NotFound:     apperrors.ErrTaskNotFound,
			QueryFilters: []string{"status"},
			Scope: func(r *http.Request) map[string]any {
				id, _ := middleware.UserIDFromContext(r.Context())
				return map[string]any{"user_id": id}
			},
			Owns: func(r *http.Request, t *models.Task) bool {
				id, ok := middleware.UserIDFromContext(r.Context())
				return ok && t.UserID == id
			},
		}),
		tasks: tasks,
		v:     services.NewValidator(),
		now:   time.Now,
	}
}

// @Tags Tasks
// @Summary Create task
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.CreateTaskRequest true "Create task request"
// @Success 201 {object} models.Task
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/tasks [post]
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, apperrors.ErrAuthRequired)
		return
	}

	var req models.CreateTaskRequest
	if err := decodeAndValidate(r, h.v, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, r, errBlankTitle)
		return
	}

	task := &models.Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Date:        req.Date.UTC(),
		Status:      models.TaskStatusToDo,
	}
	if req.Status != nil {
		task.Status = models.TaskStatus(*req.Status)
	}

	if err := h.tasks.Create(r.Context(), task); err != nil {
		// The session outlived its account.
		if errors.Is(err, repository.ErrMissingReference) {
			writeError(w, r, apperrors.ErrAuthRequired)
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// @Tags Tasks
// @Summary Update task fields
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param body body models.UpdateTaskRequest true "Update task request"
// @Success 200 {object} models.Task
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateTaskRequest
	if err := decodeAndValidate(r, h.v, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		writeError(w, r, errBlankTitle)
		return
	}

	task, err := h.load(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req.Title != nil {
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Date != nil {
		task.Date = req.Date.UTC()
	}
	if req.Status != nil {
		task.Status = models.TaskStatus(*req.Status)
	}

	h.save(w, r, task)
}

// @Tags Tasks
// @Summary Edit task
// @Description Replaces title, description, date and status. The date must be in the future.
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param body body models.EditTaskRequest true "Edit task request"
// @Success 200 {object} models.Task
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/tasks/{id}/edit [put]
func (h *TaskHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req models.EditTaskRequest
	if err := decodeAndValidate(r, h.v, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, r, errBlankTitle)
		return
	}
	if !req.Date.After(h.now()) {
		writeError(w, r, apperrors.Validation("validation_error", "date must be in the future"))
		return
	}

	task, err := h.load(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	task.Title = strings.TrimSpace(req.Title)
	task.Description = req.Description
	task.Date = req.Date.UTC()
	if req.Status != nil {
		task.Status = models.TaskStatus(*req.Status)
	}

	h.save(w, r, task)
}

func (h *TaskHandler) save(w http.ResponseWriter, r *http.Request, task *models.Task) {
	if err := h.tasks.Update(r.Context(), task.ID, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, r, apperrors.ErrTaskNotFound)
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}
