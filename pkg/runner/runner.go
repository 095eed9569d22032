package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/barista"
	"github.com/aretw0/barista/pkg/domain"
)

// Runner handles the ordering loop using a pluggable IOHandler.
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler on Stdin/Stdout is used.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	Headless bool
	Renderer ContentRenderer
}

// NewRunner creates a new Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run drives s until the user quits, input ends or ctx is cancelled.
// Quitting and end of input are not errors. A broken session invariant
// stops the loop and is returned. Handlers that are io.Closers are closed
// when Run returns.
func (r *Runner) Run(ctx context.Context, engine *barista.Engine, s *barista.Session) error {
	if err := engine.Check(s); err != nil {
		return fmt.Errorf("session aborted: %w", err)
	}
	handler := r.resolveHandler()
	if c, ok := handler.(io.Closer); ok {
		defer c.Close()
	}

	view := engine.Render(s)
	for {
		if err := handler.Output(ctx, view); err != nil {
			return fmt.Errorf("output error: %w", err)
		}

		action, err := handler.Input(ctx, view)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, ErrQuit) {
				r.Logger.Debug("runner stopped", "step", s.Step(), "reason", err)
				return nil
			}
			return err
		}

		out, err := engine.Dispatch(ctx, s, action)
		if err != nil {
			if errors.Is(err, domain.ErrInvariantViolation) {
				return fmt.Errorf("session aborted: %w", err)
			}
			r.Logger.Debug("action rejected", "step", s.Step(), "action", action.Type(), "err", err)

			view = engine.Render(s)
			// The name step shows its own error inside the view.
			if view.Error == "" {
				if err := handler.SystemOutput(ctx, userMessage(err)); err != nil {
					return fmt.Errorf("output error: %w", err)
				}
			}
			continue
		}

		view = out.View
	}
}

func userMessage(err error) string {
	if msg, ok := domain.UserMessage(err); ok {
		return msg
	}
	if errors.Is(err, domain.ErrIllegalAction) {
		return "That option is not available right now."
	}
	return err.Error()
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	r.Handler = NewTextHandler(os.Stdin, os.Stdout,
		WithTextHandlerRenderer(r.Renderer),
		WithCart(!r.Headless),
	)
	return r.Handler
}
