// Package v1 provides the v1 API routes.
package v1

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/tasklist"
	"github.com/helixml/tasklist/application/service"
	"github.com/helixml/tasklist/domain/task"
	"github.com/helixml/tasklist/infrastructure/api/middleware"
	"github.com/helixml/tasklist/infrastructure/api/v1/dto"
)

// WarningHeader reports a change that was applied in memory but not stored.
const WarningHeader = "X-Tasklist-Warning"

// TasksRouter handles task API endpoints.
type TasksRouter struct {
	client *tasklist.Client
	logger *slog.Logger
}

// NewTasksRouter creates a new TasksRouter.
func NewTasksRouter(client *tasklist.Client) *TasksRouter {
	return &TasksRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for task endpoints.
func (r *TasksRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Post("/", r.Create)
	router.Get("/{id}", r.Get)
	router.Delete("/{id}", r.Delete)
	router.Post("/{id}/toggle", r.Toggle)
	router.Post("/{id}/duplicate", r.Duplicate)
	router.Post("/{id}/edit", r.EnterEdit)
	router.Put("/{id}/edit", r.UpdateEdit)
	router.Delete("/{id}/edit", r.CancelEdit)
	router.Post("/{id}/edit/save", r.SaveEdit)

	return router
}

// List handles GET /api/v1/tasks.
// The filter query parameter overrides the stored filter for this request only.
func (r *TasksRouter) List(w http.ResponseWriter, req *http.Request) {
	var view service.View
	if q := req.URL.Query().Get("filter"); q != "" {
		f, err := task.ParseFilter(q)
		if err != nil {
			middleware.WriteError(w, req, err, r.logger)
			return
		}
		view = r.client.Tasks.ViewWith(f)
	} else {
		view = r.client.Tasks.View()
	}

	middleware.WriteJSON(w, http.StatusOK, dto.TaskListResponse{
		Data: dto.NewTaskResponses(view.Tasks),
		Meta: dto.TaskListMeta{
			Total:   view.Total,
			Visible: len(view.Tasks),
			Filter:  view.Filter.String(),
			Draft:   view.Draft,
		},
	})
}

// Create handles POST /api/v1/tasks.
func (r *TasksRouter) Create(w http.ResponseWriter, req *http.Request) {
	var body dto.CreateTaskRequest
	if err := decodeOptional(req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var (
		t       task.Task
		created bool
		err     error
	)
	if body.Name != nil {
		t, created, err = r.client.Tasks.CreateFrom(req.Context(), *body.Name)
	} else {
		t, created, err = r.client.Tasks.Create(req.Context())
	}
	if !created && err == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	r.writeTask(w, req, http.StatusCreated, t, err)
}

// Get handles GET /api/v1/tasks/{id}.
func (r *TasksRouter) Get(w http.ResponseWriter, req *http.Request) {
	t, err := r.client.Tasks.Get(chi.URLParam(req, "id"))
	r.writeTask(w, req, http.StatusOK, t, err)
}

// Delete handles DELETE /api/v1/tasks/{id}.
func (r *TasksRouter) Delete(w http.ResponseWriter, req *http.Request) {
	err := r.client.Tasks.Delete(req.Context(), chi.URLParam(req, "id"))
	if err != nil && !errors.Is(err, task.ErrPersistence) {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	if err != nil {
		w.Header().Set(WarningHeader, err.Error())
	}
	w.WriteHeader(http.StatusNoContent)
}

// Toggle handles POST /api/v1/tasks/{id}/toggle.
func (r *TasksRouter) Toggle(w http.ResponseWriter, req *http.Request) {
	t, err := r.client.Tasks.Toggle(req.Context(), chi.URLParam(req, "id"))
	r.writeTask(w, req, http.StatusOK, t, err)
}

// Duplicate handles POST /api/v1/tasks/{id}/duplicate.
func (r *TasksRouter) Duplicate(w http.ResponseWriter, req *http.Request) {
	t, err := r.client.Tasks.Duplicate(req.Context(), chi.URLParam(req, "id"))
	r.writeTask(w, req, http.StatusCreated, t, err)
}

// EnterEdit handles POST /api/v1/tasks/{id}/edit.
func (r *TasksRouter) EnterEdit(w http.ResponseWriter, req *http.Request) {
	t, err := r.client.Tasks.EnterEdit(req.Context(), chi.URLParam(req, "id"))
	r.writeTask(w, req, http.StatusOK, t, err)
}

// UpdateEdit handles PUT /api/v1/tasks/{id}/edit.
func (r *TasksRouter) UpdateEdit(w http.ResponseWriter, req *http.Request) {
	var body dto.EditRequest
	if err := decode(req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	t, err := r.client.Tasks.UpdateEditDraft(req.Context(), chi.URLParam(req, "id"), body.Text)
	r.writeTask(w, req, http.StatusOK, t, err)
}

// CancelEdit handles DELETE /api/v1/tasks/{id}/edit.
func (r *TasksRouter) CancelEdit(w http.ResponseWriter, req *http.Request) {
	t, err := r.client.Tasks.CancelEdit(req.Context(), chi.URLParam(req, "id"))
	r.writeTask(w, req, http.StatusOK, t, err)
}

// SaveEdit handles POST /api/v1/tasks/{id}/edit/save.
func (r *TasksRouter) SaveEdit(w http.ResponseWriter, req *http.Request) {
	t, err := r.client.Tasks.SaveEdit(req.Context(), chi.URLParam(req, "id"))
	r.writeTask(w, req, http.StatusOK, t, err)
}

// writeTask writes t, or the error. A persistence failure still returns
// the task, flagged with a warning.
func (r *TasksRouter) writeTask(w http.ResponseWriter, req *http.Request, status int, t task.Task, err error) {
	if err != nil && !errors.Is(err, task.ErrPersistence) {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	resp := dto.TaskEnvelope{Data: dto.NewTaskResponse(t)}
	if err != nil {
		resp.Warning = err.Error()
		w.Header().Set(WarningHeader, resp.Warning)
	}
	middleware.WriteJSON(w, status, resp)
}

func decode(req *http.Request, v any) error {
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		return middleware.NewAPIError(http.StatusBadRequest, "invalid request body", err)
	}
	return nil
}

// decodeOptional is decode for endpoints where the body may be empty.
func decodeOptional(req *http.Request, v any) error {
	err := json.NewDecoder(req.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return middleware.NewAPIError(http.StatusBadRequest, "invalid request body", err)
}
