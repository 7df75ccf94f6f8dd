package docsearch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/poiesic/docsearch/ai/mock"
	"github.com/poiesic/docsearch/config"
	"github.com/poiesic/docsearch/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig(driver string) *config.Config {
	cfg := config.Default()
	cfg.Storage.Driver = driver
	cfg.Storage.InMemory = true
	cfg.Storage.Path = ""
	return cfg
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	for _, driver := range []string{config.DriverBadger, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			app, err := Open(ctx, memoryConfig(driver))
			require.NoError(t, err)
			defer app.Close()

			assert.NotNil(t, app.Service())
			assert.NotNil(t, app.Documents())
			assert.NotNil(t, app.Users())
			assert.NotNil(t, app.Metrics())
			assert.Equal(t, driver, app.Config().Storage.Driver)

			doc, err := app.Service().AddDocument(ctx, "hello world")
			require.NoError(t, err)

			resp, err := app.Service().Search(ctx, search.Request{Text: "hello world", UserID: "u1", TopK: 1, Threshold: 0.8})
			require.NoError(t, err)
			require.Len(t, resp.Hits, 1)
			assert.Equal(t, doc.ID, resp.Hits[0].ID)
		})
	}
}

func TestOpen_InvalidConfig(t *testing.T) {
	cfg := memoryConfig(config.DriverBadger)
	cfg.Cache.Backend = "memcached"

	app, err := Open(context.Background(), cfg)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Nil(t, app)
}

func TestOpen_BadStoragePath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not_a_dir")
	require.NoError(t, os.WriteFile(file, []byte("test"), 0o644))

	cfg := config.Default()
	cfg.Storage.Path = file

	app, err := Open(context.Background(), cfg)
	assert.Error(t, err)
	assert.Nil(t, app)
}

func TestOpen_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	cfg := memoryConfig(config.DriverBadger)
	cfg.Cache.Backend = config.CacheRedis
	cfg.Cache.Redis.Addr = mr.Addr()

	app, err := Open(ctx, cfg, WithEmbedder(mock.NewMockEmbedder(cfg.Embedding.Dimension)))
	require.NoError(t, err)
	defer app.Close()

	_, err = app.Service().AddDocument(ctx, "cached document")
	require.NoError(t, err)

	req := search.Request{Text: "cached document", UserID: "u1", TopK: 1, Threshold: 0.8}
	first, err := app.Service().Search(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Len(t, mr.Keys(), 1)

	second, err := app.Service().Search(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Hits, second.Hits)
}

func TestOpen_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := memoryConfig(config.DriverBadger)
	cfg.Cache.Backend = config.CacheRedis
	cfg.Cache.Redis.Addr = addr

	app, err := Open(context.Background(), cfg)
	assert.Error(t, err)
	assert.Nil(t, app)
}

func TestPopulate_Persistent(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Storage.Driver = config.DriverSQLite
	cfg.Storage.Path = filepath.Join(t.TempDir(), "docs.db")
	cfg.Cache.Backend = config.CacheNone

	app, err := Open(ctx, cfg)
	require.NoError(t, err)
	for _, content := range []string{"alpha", "beta", "gamma"} {
		_, err := app.Service().AddDocument(ctx, content)
		require.NoError(t, err)
	}
	require.NoError(t, app.Close())

	app, err = Open(ctx, cfg)
	require.NoError(t, err)
	defer app.Close()
	assert.Equal(t, 0, app.Service().IndexSize())

	n, err := app.Populate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, app.Service().IndexSize())
}

func TestClose_Idempotent(t *testing.T) {
	app, err := Open(context.Background(), memoryConfig(config.DriverBadger))
	require.NoError(t, err)
	assert.NoError(t, app.Close())
	assert.NoError(t, app.Close())
}
