// Package config loads barista settings from a YAML file and BARISTA_*
// environment variables. Environment values win over the file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aretw0/barista/internal/logging"
	"github.com/aretw0/barista/pkg/persistence"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Session store types.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Sink types.
const (
	SinkMemory   = "memory"
	SinkCSV      = "csv"
	SinkRedis    = "redis"
	SinkPostgres = "postgres"
	SinkAMQP     = "amqp"
	SinkExec     = "exec"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full application configuration.
type Config struct {
	Log      LogConfig     `mapstructure:"log"`
	Menu     string        `mapstructure:"menu"`
	Currency string        `mapstructure:"currency"`
	Sink     SinkConfig    `mapstructure:"sink"`
	HTTP     HTTPConfig    `mapstructure:"http"`
	Session  SessionConfig `mapstructure:"session"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SinkConfig selects where confirmed order lines go. Only the section
// matching Type is used.
type SinkConfig struct {
	Type     string         `mapstructure:"type"`
	CSV      CSVConfig      `mapstructure:"csv"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	AMQP     AMQPConfig     `mapstructure:"amqp"`
	Exec     ExecConfig     `mapstructure:"exec"`
}

type CSVConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
	MaxLen   int64  `mapstructure:"max_len"`
}

type PostgresConfig struct {
	DSN     string `mapstructure:"dsn"`
	Migrate bool   `mapstructure:"migrate"`
}

type AMQPConfig struct {
	URL        string `mapstructure:"url"`
	Exchange   string `mapstructure:"exchange"`
	RoutingKey string `mapstructure:"routing_key"`
}

// ExecConfig runs a local command once per confirmed line.
type ExecConfig struct {
	Command string            `mapstructure:"command"`
	Args    []string          `mapstructure:"args"`
	Env     map[string]string `mapstructure:"env"`
	Dir     string            `mapstructure:"dir"`
	Timeout time.Duration     `mapstructure:"timeout"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Metrics         bool          `mapstructure:"metrics"`
}

// SessionConfig selects where server-held sessions live and when idle ones
// expire. A zero TTL keeps sessions until they are deleted.
type SessionConfig struct {
	Store string             `mapstructure:"store"`
	Dir   string             `mapstructure:"dir"`
	Redis SessionRedisConfig `mapstructure:"redis"`
	// EncryptionKey is a base64 AES-256 key. When set, durable stores
	// seal sessions with it; FallbackKeys still open older sessions.
	EncryptionKey string        `mapstructure:"encryption_key"`
	FallbackKeys  []string      `mapstructure:"fallback_keys"`
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type SessionRedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Log:      LogConfig{Level: "info", Format: "text"},
		Currency: "¥",
		Sink: SinkConfig{
			Type:  SinkMemory,
			CSV:   CSVConfig{Path: "orders.csv"},
			Redis: RedisConfig{Addr: "localhost:6379", Key: "barista:orders"},
			AMQP:  AMQPConfig{Exchange: "barista.events", RoutingKey: "order.line.confirmed.v1"},
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: 5 * time.Second,
			Metrics:         true,
		},
		Session: SessionConfig{
			Store:         StoreMemory,
			Dir:           ".barista/sessions",
			Redis:         SessionRedisConfig{Addr: "localhost:6379", Prefix: "barista:session:"},
			TTL:           30 * time.Minute,
			SweepInterval: time.Minute,
		},
	}
}

// envKeys maps each supported variable to its config path.
var envKeys = map[string]string{
	"BARISTA_LOG_LEVEL":              "log.level",
	"BARISTA_LOG_FORMAT":             "log.format",
	"BARISTA_MENU":                   "menu",
	"BARISTA_CURRENCY":               "currency",
	"BARISTA_SINK":                   "sink.type",
	"BARISTA_SINK_CSV_PATH":          "sink.csv.path",
	"BARISTA_REDIS_ADDR":             "sink.redis.addr",
	"BARISTA_REDIS_PASSWORD":         "sink.redis.password",
	"BARISTA_REDIS_DB":               "sink.redis.db",
	"BARISTA_REDIS_KEY":              "sink.redis.key",
	"BARISTA_REDIS_MAX_LEN":          "sink.redis.max_len",
	"BARISTA_POSTGRES_DSN":           "sink.postgres.dsn",
	"BARISTA_POSTGRES_MIGRATE":       "sink.postgres.migrate",
	"BARISTA_AMQP_URL":               "sink.amqp.url",
	"BARISTA_AMQP_EXCHANGE":          "sink.amqp.exchange",
	"BARISTA_AMQP_ROUTING_KEY":       "sink.amqp.routing_key",
	"BARISTA_EXEC_COMMAND":           "sink.exec.command",
	"BARISTA_EXEC_TIMEOUT":           "sink.exec.timeout",
	"BARISTA_HTTP_ADDR":              "http.addr",
	"BARISTA_HTTP_SHUTDOWN_TIMEOUT":  "http.shutdown_timeout",
	"BARISTA_HTTP_METRICS":           "http.metrics",
	"BARISTA_SESSION_STORE":          "session.store",
	"BARISTA_SESSION_DIR":            "session.dir",
	"BARISTA_SESSION_REDIS_ADDR":     "session.redis.addr",
	"BARISTA_SESSION_REDIS_PASSWORD": "session.redis.password",
	"BARISTA_SESSION_REDIS_DB":       "session.redis.db",
	"BARISTA_SESSION_REDIS_PREFIX":   "session.redis.prefix",
	"BARISTA_SESSION_ENCRYPTION_KEY": "session.encryption_key",
	"BARISTA_SESSION_TTL":            "session.ttl",
	"BARISTA_SESSION_SWEEP_INTERVAL": "session.sweep_interval",
}

// Load reads path (optional; empty means defaults only) and applies the
// process environment.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (Config, error) {
	raw := map[string]any{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	}

	for env, key := range envKeys {
		if v, ok := lookup(env); ok {
			if err := set(raw, strings.Split(key, "."), v); err != nil {
				return Config{}, fmt.Errorf("%s: %w", env, err)
			}
		}
	}

	cfg := Default()
	if err := decode(raw, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// set writes value at path, creating intermediate maps.
func set(m map[string]any, path []string, value string) error {
	for _, key := range path[:len(path)-1] {
		next, ok := m[key]
		if !ok || next == nil {
			child := map[string]any{}
			m[key] = child
			m = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %q is not a section", ErrInvalidConfig, key)
		}
		m = child
	}
	m[path[len(path)-1]] = value
	return nil
}

// Validate checks values that decoding cannot.
func (c Config) Validate() error {
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format must be text or json, got %q", ErrInvalidConfig, c.Log.Format)
	}

	switch c.Sink.Type {
	case SinkMemory:
	case SinkCSV:
		if c.Sink.CSV.Path == "" {
			return fmt.Errorf("%w: sink.csv.path is required", ErrInvalidConfig)
		}
	case SinkRedis:
		if c.Sink.Redis.Addr == "" {
			return fmt.Errorf("%w: sink.redis.addr is required", ErrInvalidConfig)
		}
	case SinkPostgres:
		if c.Sink.Postgres.DSN == "" {
			return fmt.Errorf("%w: sink.postgres.dsn is required", ErrInvalidConfig)
		}
	case SinkAMQP:
		if c.Sink.AMQP.URL == "" {
			return fmt.Errorf("%w: sink.amqp.url is required", ErrInvalidConfig)
		}
	case SinkExec:
		if c.Sink.Exec.Command == "" {
			return fmt.Errorf("%w: sink.exec.command is required", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown sink type %q", ErrInvalidConfig, c.Sink.Type)
	}

	switch c.Session.Store {
	case StoreMemory:
	case StoreFile:
		if c.Session.Dir == "" {
			return fmt.Errorf("%w: session.dir is required", ErrInvalidConfig)
		}
	case StoreRedis:
		if c.Session.Redis.Addr == "" {
			return fmt.Errorf("%w: session.redis.addr is required", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown session store %q", ErrInvalidConfig, c.Session.Store)
	}

	for _, k := range append([]string{c.Session.EncryptionKey}, c.Session.FallbackKeys...) {
		if k == "" {
			continue
		}
		key, err := persistence.ParseKey(k)
		if err != nil {
			return fmt.Errorf("%w: session keys: %v", ErrInvalidConfig, err)
		}
		if len(key) != 32 {
			return fmt.Errorf("%w: session keys must decode to 32 bytes", ErrInvalidConfig)
		}
	}
	if c.Session.EncryptionKey == "" && len(c.Session.FallbackKeys) > 0 {
		return fmt.Errorf("%w: session.fallback_keys needs session.encryption_key", ErrInvalidConfig)
	}

	if c.Session.TTL < 0 || c.Session.SweepInterval < 0 {
		return fmt.Errorf("%w: session durations must not be negative", ErrInvalidConfig)
	}
	return nil
}

// SlogLevel parses the configured log level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	level, err := logging.ParseLevel(l.Level)
	if err != nil {
		return level, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return level, nil
}
