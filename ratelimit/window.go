package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/poiesic/docsearch/storage"
	"golang.org/x/time/rate"
)

// DefaultTrackedUsers bounds how many per-user buckets Window keeps.
const DefaultTrackedUsers = 100000

// Window admits up to Limit calls per window for each user through a token
// bucket that refills continuously. The persisted counter is still
// incremented for bookkeeping. Buckets are held in memory and a user whose
// bucket is evicted starts again with a full bucket.
type Window struct {
	users   storage.UserRepository
	limit   int64
	every   rate.Limit
	mu      sync.Mutex
	buckets *lru.Cache[string, *rate.Limiter]
}

var _ Limiter = (*Window)(nil)

// NewWindow creates a window limiter allowing limit calls per window.
func NewWindow(users storage.UserRepository, limit int64, window time.Duration) (*Window, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	if window <= 0 {
		return nil, fmt.Errorf("ratelimit: window must be positive, got %s", window)
	}
	buckets, err := lru.New[string, *rate.Limiter](DefaultTrackedUsers)
	if err != nil {
		return nil, err
	}
	return &Window{
		users:   users,
		limit:   limit,
		every:   rate.Every(window / time.Duration(limit)),
		buckets: buckets,
	}, nil
}

// Allow records the call and admits it if the user's bucket has a token.
func (w *Window) Allow(ctx context.Context, userID string) (Decision, error) {
	calls, err := w.users.IncrementCalls(ctx, userID)
	if err != nil {
		return Decision{}, err
	}
	return Decision{
		Allowed: w.bucket(strings.TrimSpace(userID)).Allow(),
		Calls:   calls,
		Limit:   w.limit,
	}, nil
}

func (w *Window) bucket(userID string) *rate.Limiter {
	w.mu.Lock()
	defer w.mu.Unlock()
	if b, ok := w.buckets.Get(userID); ok {
		return b
	}
	b := rate.NewLimiter(w.every, int(w.limit))
	w.buckets.Add(userID, b)
	return b
}
