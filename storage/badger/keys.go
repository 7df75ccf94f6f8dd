package badger

import (
	"encoding/binary"

	"github.com/poiesic/docsearch/core"
)

// Key prefixes for different data types
const (
	documentPrefix = "doc:"
	documentIDSeq  = "docseq"
	userPrefix     = "usr:"
)

// makeDocumentKey generates a key for a document by ID.
// Format: prefix + big endian id, so prefix iteration yields ascending ids.
func makeDocumentKey(id core.ID) []byte {
	buf := make([]byte, len(documentPrefix)+8)
	offset := copy(buf, documentPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// documentIDFromKey extracts the id from a document key.
func documentIDFromKey(key []byte) (core.ID, bool) {
	if len(key) != len(documentPrefix)+8 {
		return 0, false
	}
	return core.ID(binary.BigEndian.Uint64(key[len(documentPrefix):])), true
}

// makeUserKey generates a key for a user by ID.
func makeUserKey(userID string) []byte {
	buf := make([]byte, len(userPrefix)+len(userID))
	offset := copy(buf, userPrefix)
	copy(buf[offset:], userID)
	return buf
}
