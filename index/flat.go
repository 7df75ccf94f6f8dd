package index

import (
	"cmp"
	"fmt"
	"slices"
)

// Neighbor is one search result: an insertion position and its squared L2
// distance from the query.
type Neighbor struct {
	Position int
	Distance float32
}

// Flat is an exact brute-force index. It is not safe for concurrent use;
// Catalog provides the locking.
type Flat struct {
	dim  int
	data []float32
}

// NewFlat creates an empty index for vectors of the given dimension.
func NewFlat(dim int) *Flat {
	if dim < 1 {
		panic(fmt.Sprintf("index: invalid dimension %d", dim))
	}
	return &Flat{dim: dim}
}

// Dimension reports the vector width.
func (f *Flat) Dimension() int {
	return f.dim
}

// Len reports the number of stored vectors.
func (f *Flat) Len() int {
	return len(f.data) / f.dim
}

// Add appends vec and returns its 0-based position.
// A vector of the wrong dimension is a programming error and panics.
func (f *Flat) Add(vec []float32) int {
	f.mustMatch(vec)
	pos := f.Len()
	f.data = append(f.data, vec...)
	return pos
}

// Vector returns a copy of the vector stored at pos.
func (f *Flat) Vector(pos int) ([]float32, bool) {
	if pos < 0 || pos >= f.Len() {
		return nil, false
	}
	return slices.Clone(f.data[pos*f.dim : (pos+1)*f.dim]), true
}

// Search returns the min(k, Len()) nearest stored vectors to query.
// k <= 0 or an empty index yields an empty result.
func (f *Flat) Search(query []float32, k int) []Neighbor {
	f.mustMatch(query)
	n := f.Len()
	if k <= 0 || n == 0 {
		return []Neighbor{}
	}

	all := make([]Neighbor, n)
	for pos := 0; pos < n; pos++ {
		all[pos] = Neighbor{
			Position: pos,
			Distance: squaredL2(query, f.data[pos*f.dim:(pos+1)*f.dim]),
		}
	}
	slices.SortFunc(all, func(a, b Neighbor) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Position, b.Position)
	})
	if k < n {
		all = all[:k:k]
	}
	return all
}

func (f *Flat) mustMatch(vec []float32) {
	if len(vec) != f.dim {
		panic(fmt.Sprintf("index: vector has %d components, index dimension is %d", len(vec), f.dim))
	}
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
