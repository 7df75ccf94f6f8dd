package core

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Binary codecs for stored records and cached results. Every codec follows
// the mus serializer shape: Size, Marshal into a pre-sized buffer, and
// Unmarshal returning the number of bytes consumed.

// hitsVersion tags the cached result encoding so a layout change is detected
// as malformed data instead of being misread.
const hitsVersion byte = 1

var (
	IDMUS       = idMUS{}
	DocumentMUS = documentMUS{}
	UserMUS     = userMUS{}
	HitsMUS     = hitsMUS{}
)

type idMUS struct{}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

type documentMUS struct{}

func (documentMUS) Size(doc Document) int {
	return IDMUS.Size(doc.ID) +
		ord.String.Size(doc.Content) +
		varint.Int64.Size(doc.CreatedAt.UnixMicro())
}

func (documentMUS) Marshal(doc Document, bs []byte) (n int) {
	n = IDMUS.Marshal(doc.ID, bs)
	n += ord.String.Marshal(doc.Content, bs[n:])
	n += varint.Int64.Marshal(doc.CreatedAt.UnixMicro(), bs[n:])
	return n
}

func (documentMUS) Unmarshal(bs []byte) (doc Document, n int, err error) {
	var n1 int
	doc.ID, n1, err = IDMUS.Unmarshal(bs)
	n += n1
	if err != nil {
		return
	}
	doc.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	doc.CreatedAt = time.UnixMicro(micros).UTC()
	return
}

type userMUS struct{}

func (userMUS) Size(u User) int {
	return ord.String.Size(u.ID) +
		varint.Int64.Size(u.Calls) +
		varint.Int64.Size(u.CreatedAt.UnixMicro()) +
		varint.Int64.Size(u.UpdatedAt.UnixMicro())
}

func (userMUS) Marshal(u User, bs []byte) (n int) {
	n = ord.String.Marshal(u.ID, bs)
	n += varint.Int64.Marshal(u.Calls, bs[n:])
	n += varint.Int64.Marshal(u.CreatedAt.UnixMicro(), bs[n:])
	n += varint.Int64.Marshal(u.UpdatedAt.UnixMicro(), bs[n:])
	return n
}

func (userMUS) Unmarshal(bs []byte) (u User, n int, err error) {
	var n1 int
	u.ID, n1, err = ord.String.Unmarshal(bs)
	n += n1
	if err != nil {
		return
	}
	u.Calls, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var created, updated int64
	created, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	updated, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	u.CreatedAt = time.UnixMicro(created).UTC()
	u.UpdatedAt = time.UnixMicro(updated).UTC()
	return
}

// hitsMUS encodes a result list as: version byte, hit count, then each hit's
// id and content.
type hitsMUS struct{}

func (hitsMUS) Size(hits []Hit) int {
	size := 1 + varint.Uint64.Size(uint64(len(hits)))
	for _, h := range hits {
		size += IDMUS.Size(h.ID) + ord.String.Size(h.Content)
	}
	return size
}

func (hitsMUS) Marshal(hits []Hit, bs []byte) (n int) {
	bs[0] = hitsVersion
	n = 1
	n += varint.Uint64.Marshal(uint64(len(hits)), bs[n:])
	for _, h := range hits {
		n += IDMUS.Marshal(h.ID, bs[n:])
		n += ord.String.Marshal(h.Content, bs[n:])
	}
	return n
}

func (hitsMUS) Unmarshal(bs []byte) (hits []Hit, n int, err error) {
	if len(bs) == 0 {
		return nil, 0, fmt.Errorf("%w: empty result list", ErrMalformedRecord)
	}
	if bs[0] != hitsVersion {
		return nil, 1, fmt.Errorf("%w: unknown result list version %d", ErrMalformedRecord, bs[0])
	}
	n = 1
	count, n1, err := varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return nil, n, err
	}
	// Each hit needs at least two bytes, which bounds the allocation below.
	if count > uint64(len(bs)-n)/2 {
		return nil, n, fmt.Errorf("%w: hit count %d exceeds payload", ErrMalformedRecord, count)
	}
	hits = make([]Hit, 0, count)
	for i := uint64(0); i < count; i++ {
		var h Hit
		h.ID, n1, err = IDMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		h.Content, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		hits = append(hits, h)
	}
	return hits, n, nil
}
