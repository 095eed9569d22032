package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/barista"
	"github.com/aretw0/barista/internal/presentation/tui"
	"github.com/aretw0/barista/pkg/observability"
	"github.com/aretw0/barista/pkg/runner"
)

// RunSession executes a single ordering session on opts.In and opts.Out.
func RunSession(ctx context.Context, opts RunOptions) error {
	cfg, err := loadConfig(opts.ConfigPath, opts.Debug)
	if err != nil {
		return err
	}
	logger := createLogger(cfg.Log)
	quiet := opts.JSON || opts.Headless

	engine, err := createEngine(ctx, cfg, logger, observability.LoggingHooks(logger))
	if err != nil {
		return fmt.Errorf("error initializing barista: %w", err)
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Warn("failed to close sink", "err", err)
		}
	}()

	interactive := isTTY(opts.Out)
	if !quiet && interactive {
		tui.PrintBanner(opts.Out, barista.Version)
	}

	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(opts.In, opts.Out)
	} else {
		textOpts := []runner.TextHandlerOption{runner.WithCart(!opts.Headless)}
		if !opts.Headless && interactive {
			textOpts = append(textOpts, runner.WithTextHandlerRenderer(tui.NewRenderer()))
		}
		handler = runner.NewTextHandler(opts.In, opts.Out, textOpts...)
	}

	r := runner.NewRunner(
		runner.WithLogger(logger),
		runner.WithHeadless(opts.Headless),
		runner.WithInputHandler(handler),
	)

	s := engine.Start(ctx)
	logger.Info("session started", "sink", cfg.Sink.Type)

	runErr := r.Run(ctx, engine, s)

	// If context was canceled (signal received), ensure runErr reflects it if it doesn't already
	if ctx.Err() != nil && runErr == nil {
		runErr = ctx.Err()
	}

	if !quiet {
		var sig os.Signal
		if sc, ok := ctx.(*SignalContext); ok {
			sig = sc.Signal()
		}
		logCompletion(opts.Out, s.Step(), runErr, sig)
	}

	return handleExecutionError(runErr)
}

// isTTY reports whether w is a terminal.
func isTTY(w any) bool {
	f, ok := w.(*os.File)
	return ok && tui.IsTerminal(f)
}
