package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/barista"
	"github.com/aretw0/barista/internal/logging"
	"github.com/aretw0/barista/pkg/domain"
	"github.com/aretw0/barista/pkg/runner"
	"github.com/aretw0/barista/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
)

// MenuURI is the resource holding the catalog.
const MenuURI = "barista://menu"

const msgWholeQuantity = "Quantity must be a whole number."

// SessionResult aligns with the HTTP session body so agents and web clients
// see the same shape.
type SessionResult struct {
	SessionID string                  `json:"session_id" jsonschema_description:"Identifier to pass to render and dispatch"`
	View      domain.View             `json:"view" jsonschema_description:"The current step: title, body and the only actions it accepts"`
	State     *domain.SessionSnapshot `json:"state,omitempty" jsonschema_description:"The session after the call"`
	Error     string                  `json:"error,omitempty" jsonschema_description:"Why the action was rejected, if it was"`
	Warnings  []string                `json:"warnings,omitempty" jsonschema_description:"Non-fatal problems, such as order lines that were not saved"`
}

// MenuResult is the catalog with its currency.
type MenuResult struct {
	Currency   string            `json:"currency"`
	Categories []domain.Category `json:"categories"`
}

// EndResult confirms a discarded session.
type EndResult struct {
	SessionID string `json:"session_id"`
	Ended     bool   `json:"ended"`
}

// Server exposes a session.Manager as an MCP server.
type Server struct {
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(mgr *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions: mgr,
		mcpServer: server.NewMCPServer("barista-mcp", strings.TrimSpace(barista.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

var actionTypes = []string{
	string(domain.ActionBegin),
	string(domain.ActionSubmitName),
	string(domain.ActionChooseCategory),
	string(domain.ActionCheckout),
	string(domain.ActionSelectItem),
	string(domain.ActionBack),
	string(domain.ActionAddToCart),
	string(domain.ActionChangeSelection),
	string(domain.ActionConfirm),
	string(domain.ActionAddMore),
	string(domain.ActionClearCart),
	string(domain.ActionNewOrder),
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a new ordering session at the welcome step."),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleStartSession))

	s.mcpServer.AddTool(mcp.NewTool("render",
		mcp.WithDescription("Show the current step of a session and the actions it accepts."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to render")),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleRender))

	s.mcpServer.AddTool(mcp.NewTool("dispatch",
		mcp.WithDescription("Apply one of the actions offered by the current view."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to act on")),
		mcp.WithString("type", mcp.Required(), mcp.Enum(actionTypes...), mcp.Description("Action type, as listed in the view options")),
		mcp.WithString("name", mcp.Description("Customer name for submit_name")),
		mcp.WithString("category", mcp.Description("Category for choose_category")),
		mcp.WithString("item", mcp.Description("Item for select_item")),
		mcp.WithNumber("quantity", mcp.Description("Quantity for add_to_cart (1-100)")),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleDispatch))

	s.mcpServer.AddTool(mcp.NewTool("end_session",
		mcp.WithDescription("Discard a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to discard")),
	), mcp.NewStructuredToolHandler(s.handleEndSession))

	s.mcpServer.AddTool(mcp.NewTool("get_menu",
		mcp.WithDescription("Get the menu: categories, items and prices."),
		mcp.WithOutputSchema[MenuResult](),
	), mcp.NewStructuredToolHandler(s.handleGetMenu))
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(MenuURI, "Menu",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		payload, err := s.menuJSON()
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      MenuURI,
				MIMEType: "application/json",
				Text:     payload,
			},
		}, nil
	})
}

func (s *Server) menu() MenuResult {
	engine := s.sessions.Engine()
	return MenuResult{
		Currency:   engine.Currency(),
		Categories: engine.Catalog().Categories(),
	}
}

func (s *Server) menuJSON() (string, error) {
	payload, err := json.Marshal(s.menu())
	if err != nil {
		return "", fmt.Errorf("failed to encode menu: %w", err)
	}
	return string(payload), nil
}

// Handler methods for structured tools

func (s *Server) handleStartSession(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (SessionResult, error) {
	id, err := s.sessions.Create(ctx)
	if err != nil {
		return SessionResult{}, fmt.Errorf("start session failed: %w", err)
	}
	return s.render(ctx, id)
}

func (s *Server) handleRender(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (SessionResult, error) {
	id, _ := args["session_id"].(string)
	return s.render(ctx, id)
}

func (s *Server) handleEndSession(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (EndResult, error) {
	id, _ := args["session_id"].(string)
	if err := s.sessions.Delete(ctx, id); err != nil {
		return EndResult{}, fmt.Errorf("end session failed: %w", err)
	}
	return EndResult{SessionID: id, Ended: true}, nil
}

func (s *Server) handleGetMenu(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (MenuResult, error) {
	return s.menu(), nil
}

func (s *Server) render(ctx context.Context, id string) (SessionResult, error) {
	view, snap, err := s.sessions.View(ctx, id)
	if err != nil {
		return SessionResult{}, fmt.Errorf("render failed: %w", err)
	}
	return SessionResult{SessionID: id, View: view, State: snap}, nil
}

// handleDispatch reports rejected input inside the result, next to the
// refreshed view, so the agent can correct itself. Only unknown sessions and
// broken sessions are tool errors.
func (s *Server) handleDispatch(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (SessionResult, error) {
	id, _ := args["session_id"].(string)

	env, err := decodeEnvelope(args)
	if err != nil {
		msg, user := domain.UserMessage(err)
		if !user {
			return SessionResult{}, err
		}
		res, rerr := s.render(ctx, id)
		if rerr != nil {
			return SessionResult{}, rerr
		}
		res.Error = msg
		return res, nil
	}

	if env.Name != "" {
		clean, err := runner.SanitizeInput(env.Name)
		if err != nil {
			s.logger.Warn("MCP dispatch: input rejected", "err", err, "size", len(env.Name))
			return SessionResult{}, fmt.Errorf("input rejected: %w", err)
		}
		env.Name = clean
	}

	action, err := env.Action()
	if err != nil {
		return SessionResult{}, err
	}

	out, err := s.sessions.Dispatch(ctx, id, action)
	if err != nil {
		msg, user := domain.UserMessage(err)
		if !user && !errors.Is(err, domain.ErrIllegalAction) {
			return SessionResult{}, fmt.Errorf("dispatch failed: %w", err)
		}
		if !user {
			msg = err.Error()
		}
		res, rerr := s.render(ctx, id)
		if rerr != nil {
			return SessionResult{}, rerr
		}
		res.Error = msg
		return res, nil
	}

	res, err := s.render(ctx, id)
	if err != nil {
		return SessionResult{}, err
	}
	res.View = out.View
	res.Warnings = out.Warnings
	return res, nil
}

// decodeEnvelope reads the flat tool arguments into an envelope. Numbers
// arrive as float64 or, from some clients, as strings. mapstructure would
// truncate 2.5 to 2, so fractional quantities are refused here.
func decodeEnvelope(args map[string]any) (domain.ActionEnvelope, error) {
	var env domain.ActionEnvelope
	if q, ok := args["quantity"].(float64); ok && q != math.Trunc(q) {
		return env, domain.NewValidationError("quantity", msgWholeQuantity, domain.ErrQuantityOutOfRange)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &env,
	})
	if err != nil {
		return env, err
	}
	if err := dec.Decode(args); err != nil {
		return env, fmt.Errorf("invalid arguments: %w", err)
	}
	return env, nil
}
