package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/poiesic/docsearch/core"
	"github.com/poiesic/docsearch/storage"
)

type documentRow struct {
	ID        int64  `db:"id"`
	Content   string `db:"content"`
	CreatedAt int64  `db:"created_at"`
}

func (r documentRow) toDocument() *core.Document {
	return &core.Document{
		ID:        core.ID(r.ID),
		Content:   r.Content,
		CreatedAt: time.UnixMicro(r.CreatedAt).UTC(),
	}
}

// DocumentRepository implements storage.DocumentRepository for SQLite.
type DocumentRepository struct {
	backend *Backend
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) *DocumentRepository {
	return &DocumentRepository{backend: backend}
}

// Close is a no-op; the backend owns the connection.
func (r *DocumentRepository) Close() error {
	return nil
}

// Create inserts a document and returns it with the row id assigned.
func (r *DocumentRepository) Create(ctx context.Context, content string) (*core.Document, error) {
	doc := &core.Document{Content: content}
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}
	db, err := r.backend.conn()
	if err != nil {
		return nil, err
	}

	doc.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	var id int64
	err = db.GetContext(ctx, &id,
		`INSERT INTO documents (content, created_at) VALUES (?, ?) RETURNING id`,
		doc.Content, doc.CreatedAt.UnixMicro())
	if err != nil {
		return nil, err
	}
	doc.ID = core.ID(id)
	return doc, nil
}

// Get retrieves a single document by ID.
func (r *DocumentRepository) Get(ctx context.Context, id core.ID) (*core.Document, error) {
	db, err := r.backend.conn()
	if err != nil {
		return nil, err
	}

	var row documentRow
	err = db.GetContext(ctx, &row,
		`SELECT id, content, created_at FROM documents WHERE id = ?`, int64(id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDocument(), nil
}

// List returns every document ordered by ascending ID.
func (r *DocumentRepository) List(ctx context.Context) ([]*core.Document, error) {
	db, err := r.backend.conn()
	if err != nil {
		return nil, err
	}

	var rows []documentRow
	if err := db.SelectContext(ctx, &rows,
		`SELECT id, content, created_at FROM documents ORDER BY id ASC`); err != nil {
		return nil, err
	}
	docs := make([]*core.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, row.toDocument())
	}
	return docs, nil
}

// Count returns the number of stored documents.
func (r *DocumentRepository) Count(ctx context.Context) (int, error) {
	db, err := r.backend.conn()
	if err != nil {
		return 0, err
	}
	var count int
	err = db.GetContext(ctx, &count, `SELECT COUNT(*) FROM documents`)
	return count, err
}
