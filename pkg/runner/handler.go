package runner

import (
	"context"
	"errors"

	"github.com/aretw0/barista/pkg/domain"
)

// ErrQuit is returned by Input when the user asks to leave.
var ErrQuit = errors.New("user quit")

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents the view of the current step.
	Output(ctx context.Context, view domain.View) error

	// Input reads the user's next choice for view and maps it to an action.
	// It returns ErrQuit or io.EOF when the user is done.
	Input(ctx context.Context, view domain.View) (domain.Action, error)

	// SystemOutput presents a meta-message to the user (e.g. a rejected input).
	// This is distinct from content rendering.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)
