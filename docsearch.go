// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package docsearch assembles a search service from a config.Config: the
// document and user stores, the result cache, the rate limiter, the embedder
// and the metrics monitor.
package docsearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"
	"github.com/poiesic/docsearch/ai"
	"github.com/poiesic/docsearch/ai/hash"
	"github.com/poiesic/docsearch/ai/openai"
	"github.com/poiesic/docsearch/cache"
	"github.com/poiesic/docsearch/config"
	"github.com/poiesic/docsearch/metrics"
	"github.com/poiesic/docsearch/ratelimit"
	"github.com/poiesic/docsearch/search"
	"github.com/poiesic/docsearch/storage"
	"github.com/poiesic/docsearch/storage/badger"
	"github.com/poiesic/docsearch/storage/sqlite"
)

// App owns every resource behind a running search service.
type App struct {
	cfg      *config.Config
	docs     storage.DocumentRepository
	users    storage.UserRepository
	results  *cache.ResultCache
	embedder ai.Embedder
	metrics  *metrics.Monitor
	service  *search.Service
	logger   *slog.Logger

	// released in reverse order by Close
	closers []func() error
}

// Option configures an App.
type Option func(*appOptions)

type appOptions struct {
	logger      *slog.Logger
	searchOpts  []search.Option
	embedder    ai.Embedder
	redisClient *redis.Client
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *appOptions) {
		o.logger = logger
	}
}

// WithSearchOptions appends options applied to the search service after the
// ones derived from the config.
func WithSearchOptions(opts ...search.Option) Option {
	return func(o *appOptions) {
		o.searchOpts = append(o.searchOpts, opts...)
	}
}

// WithEmbedder overrides the embedder selected by the config.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(o *appOptions) {
		o.embedder = embedder
	}
}

// WithRedisClient uses client instead of dialing cache.redis.addr. The App
// takes ownership of the client.
func WithRedisClient(client *redis.Client) Option {
	return func(o *appOptions) {
		o.redisClient = client
	}
}

// Open validates cfg and builds an App. The catalog starts empty; call
// Populate to index stored documents.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (_ *App, err error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &appOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	app := &App{
		cfg:    cfg,
		logger: options.logger.With("component", "docsearch"),
	}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	if err = app.openStorage(); err != nil {
		return nil, err
	}
	if err = app.openCache(ctx, options); err != nil {
		return nil, err
	}

	limiter, err := app.newLimiter()
	if err != nil {
		return nil, err
	}

	app.embedder = options.embedder
	if app.embedder == nil {
		if app.embedder, err = newEmbedder(cfg.Embedding); err != nil {
			return nil, err
		}
	}

	app.metrics = metrics.New()

	searchOpts := []search.Option{
		search.WithLogger(options.logger),
		search.WithMonitor(app.metrics),
		search.WithBatchSize(cfg.Index.BatchSize),
		search.WithRetry(cfg.Index.MaxAttempts, cfg.Index.RetryDelay),
	}
	if cfg.Index.PoolSize > 0 {
		searchOpts = append(searchOpts, search.WithPoolSize(cfg.Index.PoolSize))
	}
	searchOpts = append(searchOpts, options.searchOpts...)

	app.service, err = search.NewService(app.docs, limiter, app.results, app.embedder, searchOpts...)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, func() error {
		app.service.Release()
		return nil
	})

	app.logger.Info("opened",
		"storage", cfg.Storage.Driver,
		"cache", cfg.Cache.Backend,
		"ratelimit", cfg.RateLimit.Policy,
		"embedding", cfg.Embedding.Provider,
		"dimension", app.embedder.Dimension())
	return app, nil
}

func (a *App) openStorage() error {
	sc := a.cfg.Storage
	switch sc.Driver {
	case config.DriverBadger:
		backend, err := badger.OpenBackend(sc.Path, sc.InMemory)
		if err != nil {
			return fmt.Errorf("opening badger store: %w", err)
		}
		a.closers = append(a.closers, backend.Close)
		docs, err := badger.NewDocumentRepository(backend)
		if err != nil {
			return err
		}
		users := badger.NewUserRepository(backend)
		a.closers = append(a.closers, docs.Close, users.Close)
		a.docs, a.users = docs, users
	case config.DriverSQLite:
		backend, err := sqlite.OpenBackend(sc.Path, sc.InMemory)
		if err != nil {
			return fmt.Errorf("opening sqlite store: %w", err)
		}
		a.closers = append(a.closers, backend.Close)
		docs := sqlite.NewDocumentRepository(backend)
		users := sqlite.NewUserRepository(backend)
		a.closers = append(a.closers, docs.Close, users.Close)
		a.docs, a.users = docs, users
	default:
		return fmt.Errorf("%w: unknown storage driver %q", config.ErrInvalidConfig, sc.Driver)
	}
	return nil
}

func (a *App) openCache(ctx context.Context, options *appOptions) error {
	cc := a.cfg.Cache
	var store cache.Store
	switch cc.Backend {
	case config.CacheNone:
		return nil
	case config.CacheMemory:
		mem, err := cache.NewMemoryStore(cc.LRUSize)
		if err != nil {
			return err
		}
		store = mem
	case config.CacheRedis:
		client := options.redisClient
		if client == nil {
			client = redis.NewClient(&redis.Options{
				Addr:     cc.Redis.Addr,
				Password: cc.Redis.Password,
				DB:       cc.Redis.DB,
			})
		}
		rs, err := cache.NewRedisStore(client, cache.WithPrefix(cc.Redis.Prefix), cache.WithTTL(cc.TTL))
		if err != nil {
			client.Close()
			return err
		}
		if err := rs.Ping(ctx); err != nil {
			rs.Close()
			return fmt.Errorf("connecting to redis at %s: %w", cc.Redis.Addr, err)
		}
		store = rs
	default:
		return fmt.Errorf("%w: unknown cache backend %q", config.ErrInvalidConfig, cc.Backend)
	}

	a.results = cache.NewResultCache(store, cache.WithLogger(a.logger))
	a.closers = append(a.closers, a.results.Close)
	return nil
}

func (a *App) newLimiter() (ratelimit.Limiter, error) {
	rc := a.cfg.RateLimit
	if rc.Policy == ratelimit.PolicyWindow {
		return ratelimit.NewWindow(a.users, rc.Limit, rc.Window)
	}
	return ratelimit.NewLifetime(a.users, rc.Limit)
}

func newEmbedder(ec config.EmbeddingConfig) (ai.Embedder, error) {
	aiCfg := ec.AIConfig()
	if err := aiCfg.Validate(); err != nil {
		return nil, err
	}
	if aiCfg.Provider == ai.ProviderOpenAI {
		return openai.NewEmbedder(aiCfg)
	}
	return hash.NewEmbedder(aiCfg.Dimension), nil
}

// Populate indexes every stored document and records the resulting index size.
func (a *App) Populate(ctx context.Context) (int, error) {
	n, err := a.service.Populate(ctx)
	a.metrics.SetIndexSize(a.service.IndexSize())
	return n, err
}

// Close releases every resource in reverse order of acquisition. It returns
// the joined errors of all closers.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Error("error closing resource", "err", err)
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Config returns the configuration the App was opened with.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Service returns the search service.
func (a *App) Service() *search.Service {
	return a.service
}

// Documents returns the document repository.
func (a *App) Documents() storage.DocumentRepository {
	return a.docs
}

// Users returns the user repository.
func (a *App) Users() storage.UserRepository {
	return a.users
}

// Metrics returns the Prometheus monitor fed by the service.
func (a *App) Metrics() *metrics.Monitor {
	return a.metrics
}
