package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/mbtassist/pkg/domain"
	"github.com/aretw0/mbtassist/pkg/generator"
	"github.com/aretw0/mbtassist/pkg/observability"
	"github.com/aretw0/mbtassist/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultLockTTL bounds how long a project save or open may hold the store lock.
const DefaultLockTTL = 10 * time.Second

// Server serves the editing API over one Workspace.
type Server struct {
	http.Handler

	Workspace *Workspace
	Streams   *StreamManager

	store    ports.ProjectStore
	locker   ports.ProjectLocker
	logger   *slog.Logger
	registry *prometheus.Registry
	genOpts  []generator.Option
}

// Option configures a Server.
type Option func(*Server)

// WithWorkspace serves an existing workspace instead of an empty one.
func WithWorkspace(ws *Workspace) Option {
	return func(s *Server) { s.Workspace = ws }
}

// WithStore enables the /projects routes.
func WithStore(store ports.ProjectStore) Option {
	return func(s *Server) { s.store = store }
}

// WithLocker serializes project saves and opens across processes.
func WithLocker(l ports.ProjectLocker) Option {
	return func(s *Server) { s.locker = l }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRegistry records generation metrics on reg and exposes it on /metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// WithGeneratorOptions applies opts to every generation run.
func WithGeneratorOptions(opts ...generator.Option) Option {
	return func(s *Server) { s.genOpts = append(s.genOpts, opts...) }
}

// New builds the server and its router. The embedded OpenAPI document is
// validated here, so a broken document fails at startup.
func New(ctx context.Context, opts ...Option) (*Server, error) {
	s := &Server{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Workspace == nil {
		s.Workspace = NewWorkspace(nil)
	}
	s.Streams = NewStreamManager(s.logger)

	doc, err := LoadSpec(ctx)
	if err != nil {
		return nil, err
	}
	router, err := newRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build openapi router: %w", err)
	}

	if s.registry != nil {
		m, err := observability.NewMetrics(s.registry)
		if err != nil {
			return nil, err
		}
		s.genOpts = append(s.genOpts, generator.WithObserver(m))
	}
	s.genOpts = append([]generator.Option{generator.WithLogger(s.logger)}, s.genOpts...)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	r.Get("/health", s.getHealth)

	r.Group(func(r chi.Router) {
		r.Use(validateRequests(router, s.writeError))

		r.Get("/graph", s.getGraph)
		r.Delete("/graph", s.clearGraph)

		r.Post("/nodes", s.createNode)
		r.Patch("/nodes/{id}", s.updateNode)
		r.Delete("/nodes/{id}", s.deleteNode)
		r.Post("/nodes/{id}/initial", s.setInitial)

		r.Post("/transitions", s.createTransition)
		r.Post("/transitions/toggle", s.toggleTransition)
		r.Patch("/transitions/{id}", s.updateTransition)
		r.Delete("/transitions/{id}", s.deleteTransition)

		r.Post("/generate", s.generate)
		r.Get("/validate", s.validate)
		r.Get("/export.csv", s.exportCSV)
		r.Get("/mermaid", s.mermaid)
		r.Get("/events", s.subscribeEvents)

		r.Get("/projects", s.listProjects)
		r.Get("/projects/{name}", s.openProject)
		r.Post("/projects/{name}", s.saveProject)
		r.Delete("/projects/{name}", s.deleteProject)
	})

	s.Handler = r
	return s, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>mbt API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// -- Helpers --

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	} else {
		s.logger.Warn("request rejected", "status", status, "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errCorruptProject):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnknownNode), errors.Is(err, errUnknownTransition), errors.Is(err, domain.ErrProjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateID), errors.Is(err, domain.ErrEmptyID), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var (
	errUnknownTransition = errors.New("unknown transition")
	errBadRequest        = errors.New("bad request")
	errNoStore           = errors.New("no project store configured")
	errCorruptProject    = errors.New("corrupt project")
)

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	return nil
}
