package cache

import (
	"encoding/binary"
	"encoding/hex"
	"math"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/docsearch/core"
)

// KeyPrefix starts every result cache key.
const KeyPrefix = "search:"

// Key fingerprints every input that affects a search result. The query is
// normalized first, so queries differing only in whitespace share an entry.
// Fields are length-prefixed so no two distinct inputs can collide by
// concatenation.
func Key(query, userID string, topK int, threshold float64) string {
	h, _ := blake2b.New(32, nil)

	var scratch [binary.MaxVarintLen64]byte
	writeField := func(b []byte) {
		n := binary.PutUvarint(scratch[:], uint64(len(b)))
		h.Write(scratch[:n])
		h.Write(b)
	}

	writeField([]byte(core.NormalizeQuery(query)))
	writeField([]byte(userID))

	var num [8]byte
	binary.BigEndian.PutUint64(num[:], uint64(int64(topK)))
	writeField(num[:])
	binary.BigEndian.PutUint64(num[:], math.Float64bits(threshold))
	writeField(num[:])

	return KeyPrefix + hex.EncodeToString(h.Sum(nil))
}
