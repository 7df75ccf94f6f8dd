package cache

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/poiesic/docsearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{ NopStore }

func (failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, assert.AnError
}

func TestResultCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryStore(8)
	require.NoError(t, err)
	rc := NewResultCache(store)

	key := Key("hello", "alice", 2, 0.8)
	_, found, err := rc.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	hits := []core.Hit{{ID: 3, Content: "hello"}, {ID: 1, Content: "héllo wörld"}}
	require.NoError(t, rc.Put(ctx, key, hits))

	got, found, err := rc.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, hits, got)
}

func TestResultCache_EmptyListIsAHit(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryStore(8)
	require.NoError(t, err)
	rc := NewResultCache(store)

	require.NoError(t, rc.Put(ctx, "k", []core.Hit{}))
	got, found, err := rc.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, got)
}

func TestResultCache_MalformedEntryIsAMiss(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryStore(8)
	require.NoError(t, err)

	var logs bytes.Buffer
	rc := NewResultCache(store, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	for _, raw := range [][]byte{
		[]byte("not a hit list"),
		{},
		{0x7f, 0x01},
	} {
		require.NoError(t, store.Set(ctx, "bad", raw))
		got, found, err := rc.Get(ctx, "bad")
		assert.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, got)
	}
	assert.Contains(t, logs.String(), "undecodable cache entry")
}

func TestResultCache_StoreErrorPropagates(t *testing.T) {
	rc := NewResultCache(failingStore{})
	_, found, err := rc.Get(context.Background(), "k")
	assert.False(t, found)
	assert.True(t, errors.Is(err, assert.AnError))
}

func TestResultCache_Redis(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)
	rc := NewResultCache(store)

	hits := []core.Hit{{ID: 7, Content: "seven"}}
	require.NoError(t, rc.Put(ctx, "k", hits))

	got, found, err := rc.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, hits, got)

	require.NoError(t, mr.Set(DefaultRedisPrefix+"k", "garbage"))
	_, found, err = rc.Get(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, found)
}
