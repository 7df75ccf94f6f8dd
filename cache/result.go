package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/docsearch/core"
	"github.com/poiesic/docsearch/storage"
)

// ResultCache stores search hit lists in a Store.
type ResultCache struct {
	store  Store
	logger *slog.Logger
}

// ResultOption configures a ResultCache.
type ResultOption func(*ResultCache)

// WithLogger sets the logger for the result cache.
func WithLogger(logger *slog.Logger) ResultOption {
	return func(c *ResultCache) {
		c.logger = logger
	}
}

// NewResultCache wraps store.
func NewResultCache(store Store, opts ...ResultOption) *ResultCache {
	c := &ResultCache{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "result-cache")
	return c
}

// Get returns the cached hits for key. found is false on a miss. An entry that
// fails to decode is logged and reported as a miss; store failures are
// returned as errors.
func (c *ResultCache) Get(ctx context.Context, key string) (hits []core.Hit, found bool, err error) {
	data, err := c.store.Get(ctx, key)
	if errors.Is(err, ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	hits, err = storage.UnmarshalHits(data)
	if err != nil {
		c.logger.Warn("discarding undecodable cache entry", "key", key, "err", fmt.Errorf("%w: %w", ErrCacheInvalid, err))
		return nil, false, nil
	}
	return hits, true, nil
}

// Put stores hits under key, overwriting any previous entry.
func (c *ResultCache) Put(ctx context.Context, key string, hits []core.Hit) error {
	return c.store.Set(ctx, key, storage.MarshalHits(hits))
}

// Close closes the underlying store.
func (c *ResultCache) Close() error {
	return c.store.Close()
}
