package core

import (
	"strconv"
	"strings"
	"time"
)

// ID identifies a stored document. Ids are assigned by the document store
// and carry no relationship to vector index positions.
type ID uint64

// String renders the id in base 10.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseID parses a base 10 document id.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	return ID(v), nil
}

// Document is a stored text document. Documents are immutable once created.
type Document struct {
	ID        ID
	Content   string
	CreatedAt time.Time // When the document was inserted into the store
}

// User tracks per-user search bookkeeping.
type User struct {
	ID        string
	Calls     int64 // Total search calls, rejected ones included. Never reset.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Hit is a single search result as returned to callers and stored in the
// result cache.
type Hit struct {
	ID      ID     `json:"id"`
	Content string `json:"content"`
}

// HitFromDocument projects a document onto a result record.
func HitFromDocument(doc *Document) Hit {
	return Hit{ID: doc.ID, Content: doc.Content}
}

// NormalizeQuery collapses whitespace runs to single spaces and trims the
// ends. Case is preserved.
func NormalizeQuery(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
