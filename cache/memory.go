package cache

import (
	"bytes"
	"context"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemorySize is the entry bound used when none is configured.
const DefaultMemorySize = 10000

// MemoryStore is a bounded in-process LRU cache.
type MemoryStore struct {
	entries *lru.Cache[string, []byte]
	closed  atomic.Bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an LRU store holding at most size entries.
// A non-positive size selects DefaultMemorySize.
func NewMemoryStore(size int) (*MemoryStore, error) {
	if size < 1 {
		size = DefaultMemorySize
	}
	entries, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{entries: entries}, nil
}

// Get returns a copy of the stored value.
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.closed.Load() {
		return nil, ErrCacheClosed
	}
	val, ok := m.entries.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	return bytes.Clone(val), nil
}

// Set stores a copy of value.
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	if m.closed.Load() {
		return ErrCacheClosed
	}
	m.entries.Add(key, bytes.Clone(value))
	return nil
}

// Len reports the number of cached entries.
func (m *MemoryStore) Len() int {
	return m.entries.Len()
}

// Close drops every entry.
func (m *MemoryStore) Close() error {
	if m.closed.CompareAndSwap(false, true) {
		m.entries.Purge()
	}
	return nil
}
