package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/validation"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if taskService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("taskService cannot be nil for TaskHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// Routes mounts the task endpoints on r. The caller is responsible for
// wrapping r with authentication.
func (h *TaskHandler) Routes(r chi.Router) {
	r.Get("/", h.ListTasks)
	r.Post("/", h.CreateTask)
	r.Get("/{"+taskIDParam+"}", h.GetTask)
	r.Put("/{"+taskIDParam+"}", h.UpdateTask)
	r.Delete("/{"+taskIDParam+"}", h.DeleteTask)
}

// ListTasks handles GET /tasks requests.
// Optional status, priority and search query parameters narrow the result.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	query, err := validation.ListQuery(r.URL.Query())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	tasks, err := h.taskService.List(r.Context(), userID, query)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	log.Debug("listed tasks",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(tasks)))
	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Tasks: tasksToResponse(tasks),
		Count: len(tasks),
	})
}

// GetTask handles GET /tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.Get(r.Context(), userID, chi.URLParam(r, taskIDParam))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskEnvelope{Task: taskToResponse(task)})
}

// CreateTask handles POST /tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	req, ok := decodeTaskRequest(w, r)
	if !ok {
		return
	}

	input, err := validation.CreateTask(req)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	task, err := h.taskService.Create(r.Context(), userID, input)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	log.Debug("task created via API",
		slog.String("user_id", userID.String()),
		slog.String("task_id", task.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, TaskEnvelope{
		Message: "Task created successfully",
		Task:    taskToResponse(task),
	})
}

// UpdateTask handles PUT /tasks/{id} requests.
// Only the fields present in the body change.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	req, ok := decodeTaskRequest(w, r)
	if !ok {
		return
	}

	patch, err := validation.UpdateTask(req)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	task, err := h.taskService.Update(r.Context(), userID, chi.URLParam(r, taskIDParam), patch)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskEnvelope{
		Message: "Task updated successfully",
		Task:    taskToResponse(task),
	})
}

// DeleteTask handles DELETE /tasks/{id} requests.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.taskService.Delete(r.Context(), userID, chi.URLParam(r, taskIDParam)); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, shared.MessageResponse{Message: "Task deleted successfully"})
}
