package runtime

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/barista/pkg/domain"
	"github.com/aretw0/barista/pkg/ports"
)

// Engine is the ordering state machine. It holds no per-customer state and
// may be shared by any number of sessions.
type Engine struct {
	catalog  *domain.Catalog
	sink     ports.OrderSink
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	now      func() time.Time
	currency string
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithCatalog sets the menu. A nil catalog keeps the default.
func WithCatalog(c *domain.Catalog) EngineOption {
	return func(e *Engine) {
		if c != nil {
			e.catalog = c
		}
	}
}

// WithSink sets the destination of confirmed order lines.
func WithSink(s ports.OrderSink) EngineOption {
	return func(e *Engine) {
		e.sink = s
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source used to stamp order records.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithCurrency sets the symbol used when formatting prices.
func WithCurrency(symbol string) EngineOption {
	return func(e *Engine) {
		if symbol != "" {
			e.currency = symbol
		}
	}
}

// NewEngine creates an engine. Without WithSink every confirmed line is
// reported as a persistence failure.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		catalog:  domain.DefaultCatalog(),
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
		now:      time.Now,
		currency: domain.DefaultCurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "engine")
	return e
}

// Catalog returns the menu the engine validates against.
func (e *Engine) Catalog() *domain.Catalog {
	return e.catalog
}

// Currency returns the price symbol.
func (e *Engine) Currency() string {
	return e.currency
}

// Start creates a fresh session at Welcome and emits its enter event.
func (e *Engine) Start(ctx context.Context) *Session {
	s := NewSession()
	e.emitStepEnter(ctx, s.step, "")
	return s
}

func (e *Engine) emitStepEnter(ctx context.Context, step domain.Step, action domain.ActionType) {
	if e.hooks.OnStepEnter == nil {
		return
	}
	e.hooks.OnStepEnter(ctx, &domain.StepEvent{
		EventBase: domain.EventBase{Timestamp: e.now(), Type: domain.EventStepEnter},
		Step:      step,
		Action:    action,
	})
}

func (e *Engine) emitStepLeave(ctx context.Context, step domain.Step, action domain.ActionType) {
	if e.hooks.OnStepLeave == nil {
		return
	}
	e.hooks.OnStepLeave(ctx, &domain.StepEvent{
		EventBase: domain.EventBase{Timestamp: e.now(), Type: domain.EventStepLeave},
		Step:      step,
		Action:    action,
	})
}

func (e *Engine) emitRecordPersisted(ctx context.Context, rec domain.OrderRecord, err error) {
	if e.hooks.OnRecordPersisted == nil {
		return
	}
	e.hooks.OnRecordPersisted(ctx, &domain.RecordEvent{
		EventBase: domain.EventBase{Timestamp: e.now(), Type: domain.EventRecordPersisted},
		Record:    rec,
		Err:       err,
	})
}

func (e *Engine) emitOrderConfirmed(ctx context.Context, ev domain.OrderEvent) {
	if e.hooks.OnOrderConfirmed == nil {
		return
	}
	ev.EventBase = domain.EventBase{Timestamp: e.now(), Type: domain.EventOrderConfirmed}
	e.hooks.OnOrderConfirmed(ctx, &ev)
}
