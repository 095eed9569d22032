package runner

import "log/slog"

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger for rejected actions and loop exits.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.Logger = logger }
}

// WithInputHandler replaces the default stdin/stdout TextHandler, e.g.
// with a JSONHandler for machine hosts.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) { r.Handler = handler }
}

// WithHeadless hides the "Current Order" sidebar of the default handler.
func WithHeadless(headless bool) Option {
	return func(r *Runner) { r.Headless = headless }
}

// WithRenderer sets how the default handler turns view Markdown into
// terminal output.
func WithRenderer(renderer ContentRenderer) Option {
	return func(r *Runner) { r.Renderer = renderer }
}
