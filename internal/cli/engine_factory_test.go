package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/barista"
	"github.com/aretw0/barista/internal/config"
	"github.com/aretw0/barista/internal/logging"
	"github.com/aretw0/barista/pkg/adapters/csv"
	"github.com/aretw0/barista/pkg/adapters/file"
	"github.com/aretw0/barista/pkg/adapters/memory"
	"github.com/aretw0/barista/pkg/adapters/process"
	"github.com/aretw0/barista/pkg/adapters/redis"
	"github.com/aretw0/barista/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSink(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewNop()

	t.Run("memory by default", func(t *testing.T) {
		sink, err := openSink(ctx, config.SinkConfig{}, logger)
		require.NoError(t, err)
		assert.IsType(t, &memory.Sink{}, sink)
	})

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "orders.csv")
		sink, err := openSink(ctx, config.SinkConfig{Type: config.SinkCSV, CSV: config.CSVConfig{Path: path}}, logger)
		require.NoError(t, err)
		require.IsType(t, &csv.Sink{}, sink)
		assert.Equal(t, path, sink.(*csv.Sink).Path())
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		sink, err := openSink(ctx, config.SinkConfig{
			Type:  config.SinkRedis,
			Redis: config.RedisConfig{Addr: mr.Addr(), Key: "test:orders"},
		}, logger)
		require.NoError(t, err)
		require.IsType(t, &redis.Sink{}, sink)
		defer sink.(*redis.Sink).Close()

		require.NoError(t, sink.Append(ctx, domain.OrderRecord{CustomerName: "Ana", ItemName: "Donut", Quantity: 1, UnitPrice: 300, LineTotal: 300, GrandTotal: 300}))
		n, err := mr.List("test:orders")
		require.NoError(t, err)
		assert.Len(t, n, 1)
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := openSink(ctx, config.SinkConfig{Type: config.SinkRedis, Redis: config.RedisConfig{Addr: addr}}, logger)
		assert.Error(t, err)
	})

	t.Run("exec", func(t *testing.T) {
		sink, err := openSink(ctx, config.SinkConfig{Type: config.SinkExec, Exec: config.ExecConfig{Command: "lp"}}, logger)
		require.NoError(t, err)
		assert.IsType(t, &process.Sink{}, sink)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := openSink(ctx, config.SinkConfig{Type: "carrier-pigeon"}, logger)
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}

func TestCreateEngine(t *testing.T) {
	ctx := context.Background()
	menu := filepath.Join(t.TempDir(), "menu.yaml")
	require.NoError(t, os.WriteFile(menu, []byte("categories:\n  - name: Tea\n    items:\n      - name: Sencha\n        price: 350\n"), 0644))

	cfg := config.Default()
	cfg.Menu = menu
	cfg.Currency = "$"

	engine, err := createEngine(ctx, cfg, logging.NewNop(), domain.LifecycleHooks{})
	require.NoError(t, err)
	defer engine.Close()

	assert.Equal(t, []string{"Tea"}, engine.Catalog().CategoryNames())
	assert.Equal(t, "$", engine.Currency())

	cfg.Menu = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = createEngine(ctx, cfg, logging.NewNop(), domain.LifecycleHooks{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadRows(t *testing.T) {
	ctx := context.Background()
	sink := memory.NewSink()
	require.NoError(t, sink.Append(ctx, domain.OrderRecord{CustomerName: "Ana", ItemName: "Naan", Quantity: 1, UnitPrice: 600, LineTotal: 600, GrandTotal: 600}))

	rows, err := readRows(ctx, sink)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Naan", rows[0][2])

	_, err = readRows(ctx, closingSink{OrderSink: sink, close: func() error { return nil }})
	assert.ErrorIs(t, err, ErrNotReadable)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("file", func(t *testing.T) {
		dir := t.TempDir()
		store, closeStore, err := openStore(ctx, config.SessionConfig{Store: config.StoreFile, Dir: dir})
		require.NoError(t, err)
		defer closeStore()
		require.IsType(t, &file.Store{}, store)
		assert.Equal(t, dir, store.(*file.Store).BasePath)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		store, closeStore, err := openStore(ctx, config.SessionConfig{
			Store: config.StoreRedis,
			Redis: config.SessionRedisConfig{Addr: mr.Addr(), Prefix: "t:"},
			TTL:   time.Minute,
		})
		require.NoError(t, err)
		defer closeStore()

		require.NoError(t, store.Save(ctx, "abc", barista.NewSession()))
		assert.Equal(t, time.Minute, mr.TTL("t:abc"))
	})

	t.Run("encrypted file", func(t *testing.T) {
		dir := t.TempDir()
		store, closeStore, err := openStore(ctx, config.SessionConfig{
			Store:         config.StoreFile,
			Dir:           dir,
			EncryptionKey: "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=",
		})
		require.NoError(t, err)
		defer closeStore()

		require.NoError(t, store.Save(ctx, "sealed", barista.NewSession()))
		raw, err := os.ReadFile(filepath.Join(dir, "sealed.json"))
		require.NoError(t, err)
		assert.Contains(t, string(raw), "__encrypted__")
	})

	t.Run("bad key", func(t *testing.T) {
		_, _, err := openStore(ctx, config.SessionConfig{Store: config.StoreFile, Dir: t.TempDir(), EncryptionKey: "c2hvcnQ="})
		assert.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := openStore(ctx, config.SessionConfig{Store: "cookie"})
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}

func TestNewManager_AdoptsStoredSessions(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Session.Store = config.StoreFile
	cfg.Session.Dir = t.TempDir()

	engine := barista.New()
	require.NoError(t, file.New(cfg.Session.Dir).Save(ctx, "earlier", barista.NewSession()))

	mgr, closeStore, err := newManager(ctx, cfg, engine, logging.NewNop())
	require.NoError(t, err)
	defer closeStore()

	view, _, err := mgr.View(ctx, "earlier")
	require.NoError(t, err)
	assert.Equal(t, domain.StepWelcome, view.Step)
}
