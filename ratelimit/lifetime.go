package ratelimit

import (
	"context"

	"github.com/poiesic/docsearch/storage"
)

// Lifetime admits a user's first Limit calls and rejects every later one.
// The counter is never reset.
type Lifetime struct {
	users storage.UserRepository
	limit int64
}

var _ Limiter = (*Lifetime)(nil)

// NewLifetime creates a lifetime limiter counting calls in users.
func NewLifetime(users storage.UserRepository, limit int64) (*Lifetime, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	return &Lifetime{users: users, limit: limit}, nil
}

// Allow records the call and admits it while the counter is within the limit.
func (l *Lifetime) Allow(ctx context.Context, userID string) (Decision, error) {
	calls, err := l.users.IncrementCalls(ctx, userID)
	if err != nil {
		return Decision{}, err
	}
	return Decision{Allowed: calls <= l.limit, Calls: calls, Limit: l.limit}, nil
}
