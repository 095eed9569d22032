package cli

import (
	"context"
	"io"
	"os"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	ConfigPath string
	Headless   bool
	JSON       bool
	Debug      bool

	// In and Out default to Stdin and Stdout.
	In  io.Reader
	Out io.Writer
}

// Execute handles the 'run' command: one interactive ordering session that
// ends on quit, end of input or a signal.
func Execute(opts RunOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	return RunSession(sigCtx, opts)
}
