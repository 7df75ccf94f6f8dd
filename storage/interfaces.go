package storage

import (
	"context"

	"github.com/poiesic/docsearch/core"
)

// DocumentRepository provides operations for managing documents.
// Implementations must be thread-safe and support concurrent access.
type DocumentRepository interface {
	// Create stores a new document and returns it with its assigned ID and
	// CreatedAt timestamp populated. Ids are unique and increasing but are
	// not guaranteed to be contiguous.
	Create(ctx context.Context, content string) (*core.Document, error)

	// Get retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	Get(ctx context.Context, id core.ID) (*core.Document, error)

	// List returns every stored document ordered by ascending ID.
	List(ctx context.Context) ([]*core.Document, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Close releases resources held by the repository.
	Close() error
}

// UserRepository provides the per-user call bookkeeping used by rate limiting.
type UserRepository interface {
	// GetUser retrieves a user by ID.
	// Returns ErrNotFound if the user has never made a call.
	GetUser(ctx context.Context, userID string) (*core.User, error)

	// IncrementCalls atomically creates the user with a counter of 1 or
	// increments the existing counter, and returns the new value.
	// Concurrent calls for the same user never lose or double an increment.
	IncrementCalls(ctx context.Context, userID string) (int64, error)

	// Close releases resources held by the repository.
	Close() error
}
