package sqlite

import "github.com/poiesic/docsearch/storage"

// NewMemoryRepositories creates in-memory document and user repositories for testing.
// Caller must close the backend when done.
func NewMemoryRepositories() (storage.DocumentRepository, storage.UserRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}
	return NewDocumentRepository(backend), NewUserRepository(backend), backend, nil
}
