package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/barista"
	"github.com/aretw0/barista/internal/config"
	"github.com/aretw0/barista/pkg/adapters/amqp"
	"github.com/aretw0/barista/pkg/adapters/csv"
	"github.com/aretw0/barista/pkg/adapters/file"
	"github.com/aretw0/barista/pkg/adapters/memory"
	"github.com/aretw0/barista/pkg/adapters/postgres"
	"github.com/aretw0/barista/pkg/adapters/process"
	"github.com/aretw0/barista/pkg/adapters/redis"
	"github.com/aretw0/barista/pkg/catalog"
	"github.com/aretw0/barista/pkg/domain"
	"github.com/aretw0/barista/pkg/persistence"
	"github.com/aretw0/barista/pkg/ports"
	"github.com/aretw0/barista/pkg/session"
)

// createEngine initializes a barista engine from the configuration.
// The caller owns the engine and must Close it to release the sink.
func createEngine(ctx context.Context, cfg config.Config, logger *slog.Logger, hooks domain.LifecycleHooks) (*barista.Engine, error) {
	menu := domain.DefaultCatalog()
	if cfg.Menu != "" {
		c, err := catalog.Load(cfg.Menu)
		if err != nil {
			return nil, err
		}
		menu = c
	}

	sink, err := openSink(ctx, cfg.Sink, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("order sink ready", "type", cfg.Sink.Type)

	return barista.New(
		barista.WithCatalog(menu),
		barista.WithCurrency(cfg.Currency),
		barista.WithSink(sink),
		barista.WithLogger(logger),
		barista.WithLifecycleHooks(hooks),
	), nil
}

// openSink builds the sink selected by cfg.Type and checks it is reachable.
func openSink(ctx context.Context, cfg config.SinkConfig, logger *slog.Logger) (ports.OrderSink, error) {
	switch cfg.Type {
	case "", config.SinkMemory:
		return memory.NewSink(), nil

	case config.SinkCSV:
		return csv.New(cfg.CSV.Path), nil

	case config.SinkRedis:
		opts := []redis.Option{redis.WithMaxLen(cfg.Redis.MaxLen)}
		if cfg.Redis.Key != "" {
			opts = append(opts, redis.WithKey(cfg.Redis.Key))
		}
		sink := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		if err := sink.Ping(ctx); err != nil {
			_ = sink.Close()
			return nil, fmt.Errorf("redis sink: %w", err)
		}
		return sink, nil

	case config.SinkPostgres:
		if cfg.Postgres.Migrate {
			if err := postgres.Migrate(cfg.Postgres.DSN, logger); err != nil {
				return nil, fmt.Errorf("postgres sink: %w", err)
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("postgres sink: %w", err)
		}
		return closingSink{
			OrderSink: postgres.NewSink(pool),
			close: func() error {
				pool.Close()
				return nil
			},
		}, nil

	case config.SinkAMQP:
		var opts []amqp.Option
		if cfg.AMQP.Exchange != "" {
			opts = append(opts, amqp.WithExchange(cfg.AMQP.Exchange))
		}
		if cfg.AMQP.RoutingKey != "" {
			opts = append(opts, amqp.WithRoutingKey(cfg.AMQP.RoutingKey))
		}
		sink, err := amqp.Dial(cfg.AMQP.URL, opts...)
		if err != nil {
			return nil, fmt.Errorf("amqp sink: %w", err)
		}
		return sink, nil

	case config.SinkExec:
		sink, err := process.NewSink(cfg.Exec.Command, cfg.Exec.Args,
			process.WithEnv(cfg.Exec.Env),
			process.WithDir(cfg.Exec.Dir),
			process.WithTimeout(cfg.Exec.Timeout),
		)
		if err != nil {
			return nil, err
		}
		return sink, nil
	}
	return nil, fmt.Errorf("%w: unknown sink type %q", config.ErrInvalidConfig, cfg.Type)
}

// openStore builds the session store selected by cfg.Store. The returned
// func releases it.
func openStore(ctx context.Context, cfg config.SessionConfig) (session.Store, func() error, error) {
	noop := func() error { return nil }
	codec, err := sessionCodec(cfg)
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Store {
	case "", config.StoreMemory:
		return memory.NewStore(), noop, nil

	case config.StoreFile:
		return file.New(cfg.Dir, file.WithCodec(codec)), noop, nil

	case config.StoreRedis:
		opts := []redis.StoreOption{redis.WithCodec(codec)}
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		// Idle sessions expire in redis even if no sweeper is running.
		if cfg.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.TTL))
		}
		store := redis.NewStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("redis session store: %w", err)
		}
		return store, store.Close, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown session store %q", config.ErrInvalidConfig, cfg.Store)
}

// sessionCodec returns the encrypting codec when a key is configured.
func sessionCodec(cfg config.SessionConfig) (persistence.Codec, error) {
	if cfg.EncryptionKey == "" {
		return persistence.JSON, nil
	}
	active, err := persistence.ParseKey(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("session.encryption_key: %w", err)
	}
	enc := persistence.EncryptionConfig{ActiveKey: active}
	for i, k := range cfg.FallbackKeys {
		key, err := persistence.ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("session.fallback_keys[%d]: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	return persistence.NewEncryptedCodec(persistence.JSON, enc)
}

// newManager opens the configured store and wraps it in a session manager.
func newManager(ctx context.Context, cfg config.Config, engine *barista.Engine, logger *slog.Logger, opts ...session.Option) (*session.Manager, func() error, error) {
	store, closeStore, err := openStore(ctx, cfg.Session)
	if err != nil {
		return nil, nil, err
	}
	opts = append([]session.Option{
		session.WithLogger(logger),
		session.WithTTL(cfg.Session.TTL),
	}, opts...)
	mgr := session.NewManager(engine, store, opts...)
	if n, err := mgr.Adopt(ctx); err != nil {
		_ = closeStore()
		return nil, nil, fmt.Errorf("failed to list stored sessions: %w", err)
	} else if n > 0 {
		logger.Info("resumed stored sessions", "count", n, "store", cfg.Session.Store)
	}
	return mgr, closeStore, nil
}

// closingSink attaches a release func to sinks that do not own their
// connection.
type closingSink struct {
	ports.OrderSink
	close func() error
}

func (s closingSink) Close() error {
	return s.close()
}

// ErrNotReadable is returned for sinks that cannot list what they stored.
var ErrNotReadable = errors.New("sink cannot list stored orders")

type rowSource interface {
	Rows(ctx context.Context) ([][]string, error)
}

// readRows lists the rows stored by sink, when it supports reading back.
func readRows(ctx context.Context, sink ports.OrderSink) ([][]string, error) {
	src, ok := sink.(rowSource)
	if !ok {
		return nil, ErrNotReadable
	}
	return src.Rows(ctx)
}
