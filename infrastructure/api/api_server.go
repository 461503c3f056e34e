package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mark3labs/mcp-go/server"

	"github.com/helixml/tasklist"
	apimiddleware "github.com/helixml/tasklist/infrastructure/api/middleware"
	v1 "github.com/helixml/tasklist/infrastructure/api/v1"
	mcpinternal "github.com/helixml/tasklist/internal/mcp"
)

// requestTimeout bounds each /api/v1 request.
const requestTimeout = 60 * time.Second

// APIServer provides an HTTP API backed by a tasklist Client.
type APIServer struct {
	client      *tasklist.Client
	apiKeys     []string
	corsOrigins []string
	version     string
	logger      *slog.Logger

	mu     sync.Mutex
	server *Server
}

// APIServerOption configures an APIServer.
type APIServerOption func(*APIServer)

// WithAPIKeys write-protects the API: mutating methods under /api/v1
// require one of keys. Reads and MCP stay open.
func WithAPIKeys(keys []string) APIServerOption {
	return func(a *APIServer) { a.apiKeys = keys }
}

// WithCORSOrigins sets the allowed CORS origins. Defaults to any origin.
func WithCORSOrigins(origins []string) APIServerOption {
	return func(a *APIServer) {
		if len(origins) > 0 {
			a.corsOrigins = origins
		}
	}
}

// WithVersion sets the version reported by the MCP endpoint.
func WithVersion(version string) APIServerOption {
	return func(a *APIServer) { a.version = version }
}

// NewAPIServer creates a new APIServer wired to the given Client.
func NewAPIServer(client *tasklist.Client, opts ...APIServerOption) *APIServer {
	a := &APIServer{
		client:      client,
		corsOrigins: []string{"*"},
		version:     "dev",
		logger:      client.Logger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// mountRoutes wires up the v1 API and MCP routes on router.
func (a *APIServer) mountRoutes(router chi.Router) {
	tasksRouter := v1.NewTasksRouter(a.client)
	viewRouter := v1.NewViewRouter(a.client)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: a.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-KEY", apimiddleware.CorrelationHeader},
			ExposedHeaders: []string{v1.WarningHeader, apimiddleware.CorrelationHeader},
			MaxAge:         300,
		}))
		r.Use(chimiddleware.Timeout(requestTimeout))
		r.Use(apimiddleware.WriteProtectAuth(a.apiKeys))

		r.Mount("/tasks", tasksRouter.Routes())
		r.Mount("/draft", viewRouter.DraftRoutes())
		r.Mount("/filter", viewRouter.FilterRoutes())
	})

	mcpSrv := mcpinternal.NewServer(a.client.Tasks, a.version, a.logger)
	router.Mount("/mcp", server.NewStreamableHTTPServer(mcpSrv.MCPServer()))
}

// ListenAndServe starts the HTTP server on addr.
func (a *APIServer) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return a.Serve(ln)
}

// Serve starts the HTTP server on ln.
func (a *APIServer) Serve(ln net.Listener) error {
	srv := a.newServer(ln.Addr().String())
	a.mu.Lock()
	a.server = srv
	a.mu.Unlock()
	return srv.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	srv := a.server
	a.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Handler returns the full route tree as an http.Handler for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	return a.newServer("").Router()
}

func (a *APIServer) newServer(addr string) *Server {
	s := NewServer(addr, a.logger)
	a.mountRoutes(s.Router())
	return s
}
