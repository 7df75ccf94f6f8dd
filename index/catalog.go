package index

import (
	"sync"

	"github.com/poiesic/docsearch/core"
)

// Match is a neighbour resolved through the side table.
type Match struct {
	Position   int
	DocumentID core.ID
	Distance   float32
}

// Catalog is a Flat index plus the position to document id side table.
// Add takes the write lock; every read takes the read lock. The side table
// always has exactly one entry per indexed vector.
type Catalog struct {
	mu        sync.RWMutex
	flat      *Flat
	positions []core.ID
	// first position of each indexed id
	indexed map[core.ID]int
}

// NewCatalog creates an empty catalog for vectors of the given dimension.
func NewCatalog(dim int) *Catalog {
	return &Catalog{
		flat:    NewFlat(dim),
		indexed: make(map[core.ID]int),
	}
}

// Dimension reports the vector width.
func (c *Catalog) Dimension() int {
	return c.flat.Dimension()
}

// Len reports the number of indexed vectors.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.positions)
}

// Add indexes vec for document id and returns its position.
// Panics on a wrong-dimension vector, leaving the catalog unchanged.
func (c *Catalog) Add(id core.ID, vec []float32) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.add(id, vec)
}

// AddIfAbsent indexes vec for id unless id is already indexed. It returns the
// position holding id and whether a new entry was appended.
func (c *Catalog) AddIfAbsent(id core.ID, vec []float32) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pos, ok := c.indexed[id]; ok {
		return pos, false
	}
	return c.add(id, vec), true
}

func (c *Catalog) add(id core.ID, vec []float32) int {
	pos := c.flat.Add(vec)
	c.positions = append(c.positions, id)
	if _, ok := c.indexed[id]; !ok {
		c.indexed[id] = pos
	}
	return pos
}

// Search returns the k nearest matches with their document ids.
func (c *Catalog) Search(query []float32, k int) []Match {
	c.mu.RLock()
	defer c.mu.RUnlock()

	neighbors := c.flat.Search(query, k)
	matches := make([]Match, 0, len(neighbors))
	for _, n := range neighbors {
		matches = append(matches, Match{
			Position:   n.Position,
			DocumentID: c.positions[n.Position],
			Distance:   n.Distance,
		})
	}
	return matches
}

// DocumentID resolves a position to the document it was indexed for.
func (c *Catalog) DocumentID(pos int) (core.ID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if pos < 0 || pos >= len(c.positions) {
		return 0, false
	}
	return c.positions[pos], true
}

// Contains reports whether id has been indexed at least once.
func (c *Catalog) Contains(id core.ID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.indexed[id]
	return ok
}
