package cache

import "errors"

var (
	// ErrCacheMiss is returned when a cache key is not found.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheInvalid is returned when cached data cannot be decoded.
	ErrCacheInvalid = errors.New("invalid cached data")

	// ErrCacheClosed is returned by stores used after Close.
	ErrCacheClosed = errors.New("cache is closed")
)
