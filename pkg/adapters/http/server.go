package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/barista"
	"github.com/aretw0/barista/internal/logging"
	"github.com/aretw0/barista/pkg/domain"
	"github.com/aretw0/barista/pkg/runner"
	"github.com/aretw0/barista/pkg/session"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed openapi.yaml
var rawSpec []byte

var (
	specOnce sync.Once
	specDoc  *openapi3.T
	specErr  error
)

// GetSwagger parses the embedded OpenAPI document.
func GetSwagger() (*openapi3.T, error) {
	specOnce.Do(func() {
		specDoc, specErr = openapi3.NewLoader().LoadFromData(rawSpec)
	})
	return specDoc, specErr
}

// Server exposes a session.Manager over HTTP.
type Server struct {
	Sessions *session.Manager
	Streams  *StreamManager

	metrics  http.Handler
	onScrape func(active int)
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger used for request errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics mounts h at /metrics. onScrape, if set, is called with the
// number of live sessions before every scrape.
func WithMetrics(h http.Handler, onScrape func(active int)) Option {
	return func(s *Server) {
		s.metrics = h
		s.onScrape = onScrape
	}
}

// WithStreams shares sm with the caller, e.g. so expired sessions can close
// their streams.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// NewServer creates a Server for mgr.
func NewServer(mgr *session.Manager, opts ...Option) *Server {
	s := &Server{
		Sessions: mgr,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}
	return s
}

// NewHandler creates a new HTTP handler for the session manager.
func NewHandler(mgr *session.Manager, opts ...Option) http.Handler {
	return NewServer(mgr, opts...).Routes()
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	r.Get("/menu", s.GetMenu)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.CreateSession)
		r.Get("/{id}", s.GetSession)
		r.Delete("/{id}", s.DeleteSession)
		r.Post("/{id}/actions", s.Dispatch)
		r.Get("/{id}/events", s.SubscribeEvents)
	})

	if s.metrics != nil {
		r.Get("/metrics", s.serveMetrics)
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
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
    <title>Barista API Documentation</title>
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

// SessionResponse is the body returned for a session.
type SessionResponse struct {
	SessionID string                  `json:"session_id"`
	View      domain.View             `json:"view"`
	State     *domain.SessionSnapshot `json:"state,omitempty"`
	Warnings  []string                `json:"warnings,omitempty"`
	Records   int                     `json:"records,omitempty"`
	Persisted int                     `json:"persisted,omitempty"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string       `json:"error"`
	Field string       `json:"field,omitempty"`
	View  *domain.View `json:"view,omitempty"`
}

// MenuResponse is the body of GET /menu.
type MenuResponse struct {
	Currency   string            `json:"currency"`
	Categories []domain.Category `json:"categories"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	} else if err != nil {
		s.logger.Warn("failed to parse OpenAPI document", "err", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "barista-http",
		"version":     strings.TrimSpace(barista.Version),
		"api_version": apiVersion,
	})
}

// GetMenu handles the GET /menu request.
func (s *Server) GetMenu(w http.ResponseWriter, r *http.Request) {
	engine := s.Sessions.Engine()
	writeJSON(w, http.StatusOK, MenuResponse{
		Currency:   engine.Currency(),
		Categories: engine.Catalog().Categories(),
	})
}

// CreateSession handles the POST /sessions request.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.Sessions.Create(r.Context())
	if err != nil {
		s.writeError(w, r, "", err)
		return
	}
	view, snap, err := s.Sessions.View(r.Context(), id)
	if err != nil {
		s.writeError(w, r, id, err)
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse{SessionID: id, View: view, State: snap})
}

// GetSession handles the GET /sessions/{id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view, snap, err := s.Sessions.View(r.Context(), id)
	if err != nil {
		s.writeError(w, r, id, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{SessionID: id, View: view, State: snap})
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, id, err)
		return
	}
	s.Streams.Close(id)
	w.WriteHeader(http.StatusNoContent)
}

// Dispatch handles the POST /sessions/{id}/actions request.
func (s *Server) Dispatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var env domain.ActionEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		s.logger.Warn("dispatch: invalid request body", "err", err)
		return
	}

	// Sanitize free text (global policy)
	if env.Name != "" {
		clean, err := runner.SanitizeInput(env.Name)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid input: %v", err), Field: "name"})
			s.logger.Warn("dispatch: input rejected", "err", err, "size", len(env.Name))
			return
		}
		env.Name = clean
	}

	action, err := env.Action()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	applied, err := s.Sessions.Apply(r.Context(), id, action)
	// A rejected name still changes the session.
	if applied != nil {
		if diff := applied.Diff(id); diff != nil {
			if payload, err := json.Marshal(diff); err == nil {
				s.Streams.Broadcast(id, string(payload))
			}
		}
	}
	if err != nil {
		s.writeError(w, r, id, err)
		return
	}

	out := applied.Outcome
	writeJSON(w, http.StatusOK, SessionResponse{
		SessionID: id,
		View:      out.View,
		State:     applied.After,
		Warnings:  out.Warnings,
		Records:   out.Records,
		Persisted: out.Persisted,
	})
}

func (s *Server) serveMetrics(w http.ResponseWriter, r *http.Request) {
	if s.onScrape != nil {
		if ids, err := s.Sessions.List(r.Context()); err == nil {
			s.onScrape(len(ids))
		}
	}
	s.metrics.ServeHTTP(w, r)
}

// writeError maps engine and manager errors to status codes. Rejections of
// user input come back with the current view so clients can redraw it.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, id string, err error) {
	var (
		verr    *domain.ValidationError
		illegal *domain.IllegalActionError
	)

	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "session not found"})
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: verr.Message,
			Field: verr.Field,
			View:  s.currentView(r.Context(), id),
		})
	case errors.As(err, &illegal):
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error: illegal.Error(),
			View:  s.currentView(r.Context(), id),
		})
	case errors.Is(err, domain.ErrInvariantViolation):
		s.logger.Error("session invariant violated", "session_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "session is in an inconsistent state"})
	default:
		s.logger.Error("request failed", "session_id", id, "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func (s *Server) currentView(ctx context.Context, id string) *domain.View {
	view, _, err := s.Sessions.View(ctx, id)
	if err != nil {
		return nil
	}
	return &view
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
