package badger

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docsearch/core"
	"github.com/poiesic/docsearch/storage"
)

// userLockStripes is the number of mutexes IncrementCalls hashes user ids onto.
const userLockStripes = 256

// UserRepository implements storage.UserRepository for BadgerDB.
type UserRepository struct {
	backend *Backend
	locks   [userLockStripes]sync.Mutex
}

var _ storage.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new UserRepository.
func NewUserRepository(backend *Backend) *UserRepository {
	return &UserRepository{
		backend: backend,
	}
}

// Close releases resources. UserRepository has no resources to release.
func (r *UserRepository) Close() error {
	return nil
}

// GetUser retrieves a user by ID.
func (r *UserRepository) GetUser(ctx context.Context, userID string) (*core.User, error) {
	userID = trimmedUserID(userID)
	if err := core.ValidateUserID(userID); err != nil {
		return nil, err
	}

	var user *core.User
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		user, err = readUser(tx, makeUserKey(userID))
		if err != nil {
			return err
		}
		if user == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return user, err
}

// IncrementCalls creates the user at 1 or increments the stored counter.
// Increments for the same user are serialized on a striped lock, so the
// read-modify-write transaction only conflicts with writers in other
// processes, which Backend.Update retries.
func (r *UserRepository) IncrementCalls(ctx context.Context, userID string) (int64, error) {
	userID = trimmedUserID(userID)
	if err := core.ValidateUserID(userID); err != nil {
		return 0, err
	}

	lock := r.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	var calls int64
	key := makeUserKey(userID)
	err := r.backend.Update(ctx, func(tx *badger.Txn) error {
		user, err := readUser(tx, key)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if user == nil {
			user = &core.User{ID: userID, CreatedAt: now}
		}
		user.Calls++
		user.UpdatedAt = now
		calls = user.Calls
		return tx.Set(key, storage.MarshalUser(user))
	})
	if err != nil {
		return 0, err
	}
	return calls, nil
}

func (r *UserRepository) lockFor(userID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return &r.locks[h.Sum32()%userLockStripes]
}

// readUser reads a user from the transaction.
// Returns nil, nil when the key is absent.
func readUser(tx *badger.Txn, key []byte) (*core.User, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var user *core.User
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		user, unmarshalErr = storage.UnmarshalUser(val)
		return unmarshalErr
	})
	return user, err
}

// trimmedUserID normalizes user ids before they become keys.
func trimmedUserID(userID string) string {
	return strings.TrimSpace(userID)
}
