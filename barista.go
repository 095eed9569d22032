package barista

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/barista/internal/runtime"
	"github.com/aretw0/barista/pkg/adapters/memory"
	"github.com/aretw0/barista/pkg/domain"
	"github.com/aretw0/barista/pkg/ports"
)

// Session is one customer's conversation state.
type Session = runtime.Session

// NewSession returns a session at the Welcome step with an empty cart.
func NewSession() *Session {
	return runtime.NewSession()
}

// RestoreSession rebuilds a session from a snapshot taken with
// Session.Snapshot. Pass the result to Engine.Check before driving it.
func RestoreSession(snap *domain.SessionSnapshot) (*Session, error) {
	return runtime.RestoreSession(snap)
}

// Engine is the high-level entry point for the Barista library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime  *runtime.Engine
	sink     ports.OrderSink
	catalog  *domain.Catalog
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	clock    func() time.Time
	currency string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithSink sets where confirmed orders are written. Defaults to an in-memory sink.
func WithSink(s ports.OrderSink) Option {
	return func(e *Engine) {
		e.sink = s
	}
}

// WithCatalog replaces the built-in menu.
func WithCatalog(c *domain.Catalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithCurrency sets the symbol prefixed to prices (default "¥").
func WithCurrency(symbol string) Option {
	return func(e *Engine) {
		e.currency = symbol
	}
}

// WithClock overrides the time source used for order timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.clock = now
	}
}

// New initializes a new Barista Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.sink == nil {
		eng.sink = memory.NewSink()
	}
	if eng.catalog == nil {
		eng.catalog = domain.DefaultCatalog()
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	eng.runtime = runtime.NewEngine(
		runtime.WithSink(eng.sink),
		runtime.WithCatalog(eng.catalog),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
		runtime.WithCurrency(eng.currency),
		runtime.WithClock(eng.clock),
	)
	return eng
}

// Start creates a fresh session and triggers lifecycle hooks.
func (e *Engine) Start(ctx context.Context) *Session {
	return e.runtime.Start(ctx)
}

// Render describes the current step of the session without changing it.
func (e *Engine) Render(s *Session) domain.View {
	return e.runtime.Render(s)
}

// Check returns an error wrapping domain.ErrInvariantViolation when s was
// built or mutated outside the engine.
func (e *Engine) Check(s *Session) error {
	return e.runtime.Check(s)
}

// Dispatch applies a user action to the session.
func (e *Engine) Dispatch(ctx context.Context, s *Session, a domain.Action) (*domain.Outcome, error) {
	return e.runtime.Dispatch(ctx, s, a)
}

// DispatchEnvelope decodes the wire form of an action and dispatches it.
func (e *Engine) DispatchEnvelope(ctx context.Context, s *Session, env domain.ActionEnvelope) (*domain.Outcome, error) {
	a, err := env.Action()
	if err != nil {
		return nil, err
	}
	return e.runtime.Dispatch(ctx, s, a)
}

// Catalog returns the menu in use.
func (e *Engine) Catalog() *domain.Catalog {
	return e.catalog
}

// Sink returns the order sink in use.
func (e *Engine) Sink() ports.OrderSink {
	return e.sink
}

// Currency returns the price symbol in use.
func (e *Engine) Currency() string {
	return e.runtime.Currency()
}

// Close releases the sink if it holds resources.
func (e *Engine) Close() error {
	if c, ok := e.sink.(ports.Closer); ok {
		return c.Close()
	}
	return nil
}
