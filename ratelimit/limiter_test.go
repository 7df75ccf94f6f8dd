package ratelimit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/docsearch/core"
	"github.com/poiesic/docsearch/storage"
	"github.com/poiesic/docsearch/storage/badger"
	"github.com/poiesic/docsearch/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUsers(t *testing.T) storage.UserRepository {
	t.Helper()
	docs, users, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		docs.Close()
		users.Close()
		backend.Close()
	})
	return users
}

type brokenUsers struct{ storage.UserRepository }

func (brokenUsers) IncrementCalls(ctx context.Context, userID string) (int64, error) {
	return 0, assert.AnError
}

func TestLifetime(t *testing.T) {
	ctx := context.Background()
	users := newUsers(t)
	limiter, err := NewLifetime(users, DefaultLimit)
	require.NoError(t, err)

	for call := int64(1); call <= 7; call++ {
		d, err := limiter.Allow(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, call <= 5, d.Allowed, "call %d", call)
		assert.Equal(t, call, d.Calls)
		assert.EqualValues(t, 5, d.Limit)
	}

	user, err := users.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 7, user.Calls)

	d, err := limiter.Allow(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestLifetime_SixCallsLeaveCounterAtSix(t *testing.T) {
	ctx := context.Background()
	users := newUsers(t)
	limiter, err := NewLifetime(users, 5)
	require.NoError(t, err)

	var allowed int
	for i := 0; i < 6; i++ {
		d, err := limiter.Allow(ctx, "carol")
		require.NoError(t, err)
		if d.Allowed {
			allowed++
		}
	}
	assert.Equal(t, 5, allowed)

	user, err := users.GetUser(ctx, "carol")
	require.NoError(t, err)
	assert.EqualValues(t, 6, user.Calls)
}

func TestLifetime_Errors(t *testing.T) {
	_, err := NewLifetime(newUsers(t), 0)
	assert.Error(t, err)

	limiter, err := NewLifetime(brokenUsers{}, 5)
	require.NoError(t, err)
	_, err = limiter.Allow(context.Background(), "alice")
	assert.True(t, errors.Is(err, assert.AnError))

	limiter, err = NewLifetime(newUsers(t), 5)
	require.NoError(t, err)
	_, err = limiter.Allow(context.Background(), "")
	assert.True(t, errors.Is(err, core.ErrEmptyUserID))
}

func TestWindow(t *testing.T) {
	ctx := context.Background()
	users := newUsers(t)
	limiter, err := NewWindow(users, 3, time.Hour)
	require.NoError(t, err)

	for call := int64(1); call <= 4; call++ {
		d, err := limiter.Allow(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, call <= 3, d.Allowed, "call %d", call)
		assert.Equal(t, call, d.Calls)
	}

	d, err := limiter.Allow(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestWindow_Refills(t *testing.T) {
	ctx := context.Background()
	limiter, err := NewWindow(newUsers(t), 2, 100*time.Millisecond)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		d, err := limiter.Allow(ctx, "alice")
		require.NoError(t, err)
		require.True(t, d.Allowed)
	}
	d, err := limiter.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, d.Allowed)

	assert.Eventually(t, func() bool {
		d, err := limiter.Allow(ctx, "alice")
		return err == nil && d.Allowed
	}, time.Second, 20*time.Millisecond)
}

func TestWindow_InvalidArguments(t *testing.T) {
	_, err := NewWindow(newUsers(t), 0, time.Minute)
	assert.Error(t, err)
	_, err = NewWindow(newUsers(t), 5, 0)
	assert.Error(t, err)
}

func TestLifetime_ConcurrentCallsFromOneUser(t *testing.T) {
	backends := map[string]func(t *testing.T) storage.UserRepository{
		"badger": newUsers,
		"sqlite": func(t *testing.T) storage.UserRepository {
			t.Helper()
			docs, users, backend, err := sqlite.NewMemoryRepositories()
			require.NoError(t, err)
			t.Cleanup(func() {
				docs.Close()
				users.Close()
				backend.Close()
			})
			return users
		},
	}

	for name, newRepo := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			users := newRepo(t)
			limiter, err := NewLifetime(users, DefaultLimit)
			require.NoError(t, err)

			const callers = 30
			var admitted, rejected, failed atomic.Int64
			var wg sync.WaitGroup
			for i := 0; i < callers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					d, err := limiter.Allow(ctx, "busy")
					switch {
					case err != nil:
						failed.Add(1)
					case d.Allowed:
						admitted.Add(1)
					default:
						rejected.Add(1)
					}
				}()
			}
			wg.Wait()

			assert.Zero(t, failed.Load())
			assert.EqualValues(t, DefaultLimit, admitted.Load())
			assert.EqualValues(t, callers-DefaultLimit, rejected.Load())

			user, err := users.GetUser(ctx, "busy")
			require.NoError(t, err)
			assert.EqualValues(t, callers, user.Calls)
		})
	}
}
