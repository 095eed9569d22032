package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/barista/internal/config"
	httpAdapter "github.com/aretw0/barista/pkg/adapters/http"
	"github.com/aretw0/barista/pkg/observability"
	"github.com/aretw0/barista/pkg/session"
)

// ServeOptions configures the HTTP server.
type ServeOptions struct {
	ConfigPath string
	Debug      bool
	// Addr overrides http.addr from the config when set.
	Addr string
}

// server bundles what Serve runs so tests can drive it without listening.
type server struct {
	http     *http.Server
	sessions *session.Manager
	streams  *httpAdapter.StreamManager
	cfg      config.Config
	logger   *slog.Logger
	close    func() error
}

func newServer(ctx context.Context, cfg config.Config, logger *slog.Logger) (*server, error) {
	hooks := observability.LoggingHooks(logger)
	var metrics *observability.Metrics
	if cfg.HTTP.Metrics {
		metrics = observability.NewMetrics()
		hooks = hooks.Merge(metrics.Hooks())
	}

	engine, err := createEngine(ctx, cfg, logger, hooks)
	if err != nil {
		return nil, fmt.Errorf("error initializing barista: %w", err)
	}

	streams := httpAdapter.NewStreamManager(logger)
	mgr, closeStore, err := newManager(ctx, cfg, engine, logger, session.WithOnExpire(streams.Close))
	if err != nil {
		_ = engine.Close()
		return nil, err
	}

	opts := []httpAdapter.Option{httpAdapter.WithLogger(logger), httpAdapter.WithStreams(streams)}
	if metrics != nil {
		opts = append(opts, httpAdapter.WithMetrics(metrics.Handler(), func(active int) {
			metrics.ActiveSession.Set(float64(active))
		}))
	}

	return &server{
		http: &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           httpAdapter.NewHandler(mgr, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		},
		sessions: mgr,
		streams:  streams,
		cfg:      cfg,
		logger:   logger,
		close: func() error {
			return errors.Join(closeStore(), engine.Close())
		},
	}, nil
}

// Serve runs the HTTP API until a signal arrives.
func Serve(opts ServeOptions) error {
	cfg, err := loadConfig(opts.ConfigPath, opts.Debug)
	if err != nil {
		return err
	}
	if opts.Addr != "" {
		cfg.HTTP.Addr = opts.Addr
	}
	logger := createLogger(cfg.Log)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	srv, err := newServer(sigCtx, cfg, logger)
	if err != nil {
		return err
	}
	return srv.run(sigCtx)
}

func (s *server) run(ctx context.Context) error {
	defer func() {
		if err := s.close(); err != nil {
			s.logger.Warn("failed to close sink", "err", err)
		}
	}()

	go s.sessions.RunSweeper(ctx, s.cfg.Session.SweepInterval)

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("starting barista server", "addr", s.http.Addr, "sink", s.cfg.Sink.Type)
		serverErrors <- s.http.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		s.logger.Info("shutting down", "timeout", s.cfg.HTTP.ShutdownTimeout)

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTP.ShutdownTimeout)
		defer cancel()

		if err := s.http.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("graceful shutdown did not complete", "err", err)
			if err := s.http.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		s.logger.Info("barista server stopped gracefully")
		return nil
	}
}
