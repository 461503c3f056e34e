package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/tasklist"
	"github.com/helixml/tasklist/domain/task"
	"github.com/helixml/tasklist/infrastructure/api/middleware"
	"github.com/helixml/tasklist/infrastructure/api/v1/dto"
)

// ViewRouter handles the draft and filter endpoints. Neither value is persisted.
type ViewRouter struct {
	client *tasklist.Client
	logger *slog.Logger
}

// NewViewRouter creates a new ViewRouter.
func NewViewRouter(client *tasklist.Client) *ViewRouter {
	return &ViewRouter{
		client: client,
		logger: client.Logger(),
	}
}

// DraftRoutes returns the router for /api/v1/draft.
func (r *ViewRouter) DraftRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", r.GetDraft)
	router.Put("/", r.SetDraft)
	return router
}

// FilterRoutes returns the router for /api/v1/filter.
func (r *ViewRouter) FilterRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", r.GetFilter)
	router.Put("/", r.SetFilter)
	return router
}

// GetDraft handles GET /api/v1/draft.
func (r *ViewRouter) GetDraft(w http.ResponseWriter, req *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, dto.DraftBody{Text: r.client.Tasks.Draft()})
}

// SetDraft handles PUT /api/v1/draft.
func (r *ViewRouter) SetDraft(w http.ResponseWriter, req *http.Request) {
	var body dto.DraftBody
	if err := decode(req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	r.client.Tasks.SetDraft(body.Text)
	middleware.WriteJSON(w, http.StatusOK, body)
}

// GetFilter handles GET /api/v1/filter.
func (r *ViewRouter) GetFilter(w http.ResponseWriter, req *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, dto.FilterBody{Filter: r.client.Tasks.Filter().String()})
}

// SetFilter handles PUT /api/v1/filter.
func (r *ViewRouter) SetFilter(w http.ResponseWriter, req *http.Request) {
	var body dto.FilterBody
	if err := decode(req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	f, err := task.ParseFilter(body.Filter)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	if err := r.client.Tasks.SetFilter(f); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.FilterBody{Filter: f.String()})
}
