package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/poiesic/docsearch/core"
	"github.com/poiesic/docsearch/storage"
)

type userRow struct {
	ID        string `db:"id"`
	Calls     int64  `db:"calls"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
}

// UserRepository implements storage.UserRepository for SQLite.
type UserRepository struct {
	backend *Backend
}

var _ storage.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new UserRepository.
func NewUserRepository(backend *Backend) *UserRepository {
	return &UserRepository{backend: backend}
}

// Close is a no-op; the backend owns the connection.
func (r *UserRepository) Close() error {
	return nil
}

// GetUser retrieves a user by ID.
func (r *UserRepository) GetUser(ctx context.Context, userID string) (*core.User, error) {
	userID = strings.TrimSpace(userID)
	if err := core.ValidateUserID(userID); err != nil {
		return nil, err
	}
	db, err := r.backend.conn()
	if err != nil {
		return nil, err
	}

	var row userRow
	err = db.GetContext(ctx, &row,
		`SELECT id, calls, created_at, updated_at FROM users WHERE id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &core.User{
		ID:        row.ID,
		Calls:     row.Calls,
		CreatedAt: time.UnixMicro(row.CreatedAt).UTC(),
		UpdatedAt: time.UnixMicro(row.UpdatedAt).UTC(),
	}, nil
}

// IncrementCalls creates the user at 1 or increments the stored counter in a
// single upsert statement.
func (r *UserRepository) IncrementCalls(ctx context.Context, userID string) (int64, error) {
	userID = strings.TrimSpace(userID)
	if err := core.ValidateUserID(userID); err != nil {
		return 0, err
	}
	db, err := r.backend.conn()
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC().UnixMicro()
	var calls int64
	err = db.GetContext(ctx, &calls, `
		INSERT INTO users (id, calls, created_at, updated_at) VALUES (?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET calls = calls + 1, updated_at = excluded.updated_at
		RETURNING calls`, userID, now, now)
	if err != nil {
		return 0, err
	}
	return calls, nil
}
