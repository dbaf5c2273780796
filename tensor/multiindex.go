package tensor

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"gonum.org/v1/gonum/stat/combin"
)

// MultiIndex is an ordered list of index ranges of one type. The list never
// changes after construction; Indices enumerates the cartesian product of
// the ranges in row-major order, last index varying fastest.
type MultiIndex struct {
	kind IndexType
	dims []int

	once    sync.Once
	indices [][]int
}

// NewMultiIndex builds a multi-index from explicit ranges
func NewMultiIndex(kind IndexType, dims []int) *MultiIndex {
	for _, d := range dims {
		if d < 1 {
			panic(fmt.Sprintf("multi-index range must be positive, got %v", dims))
		}
	}
	return &MultiIndex{kind: kind, dims: append([]int(nil), dims...)}
}

// CreateMultiIndex gathers the indices of the given type referenced by m,
// deduplicated by ID and ordered by ID. The IDs must be exactly 0..r-1 and
// every reference to one ID must agree on its range. A monomial without
// indices of the type gives a rank zero multi-index.
func CreateMultiIndex(m *Monomial, kind IndexType) (*MultiIndex, error) {
	if kind == Fixed {
		return nil, fmt.Errorf("cannot build a multi-index of fixed indices: %w", ErrMalformedMonomial)
	}
	dims := make(map[int]int)
	for _, idx := range m.indexRefs() {
		if idx.Type != kind {
			continue
		}
		if idx.Dim < 1 {
			return nil, fmt.Errorf("index %s has empty range: %w", idx, ErrMalformedMonomial)
		}
		if d, ok := dims[idx.ID]; ok && d != idx.Dim {
			return nil, fmt.Errorf("index %s declared with ranges %d and %d: %w",
				idx, d, idx.Dim, ErrMalformedMonomial)
		}
		dims[idx.ID] = idx.Dim
	}
	ids := make([]int, 0, len(dims))
	for id := range dims {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	ordered := make([]int, len(ids))
	for k, id := range ids {
		if id != k {
			return nil, fmt.Errorf("%s index %d is absent, have ids %v: %w",
				kind, k, ids, ErrMalformedMonomial)
		}
		ordered[k] = dims[id]
	}
	return NewMultiIndex(kind, ordered), nil
}

func (mi *MultiIndex) Kind() IndexType { return mi.kind }

// Dims returns a copy of the index ranges
func (mi *MultiIndex) Dims() []int { return append([]int(nil), mi.dims...) }

func (mi *MultiIndex) Rank() int { return len(mi.dims) }

// Size is the number of index tuples, one for rank zero
func (mi *MultiIndex) Size() int {
	n := 1
	for _, d := range mi.dims {
		n *= d
	}
	return n
}

// Indices returns all index tuples. The slice is shared between callers and
// must not be modified.
func (mi *MultiIndex) Indices() [][]int {
	mi.once.Do(func() {
		if len(mi.dims) == 0 {
			mi.indices = [][]int{{}}
			return
		}
		mi.indices = combin.Cartesian(mi.dims)
	})
	return mi.indices
}

// Flat returns the row-major position of tuple among Indices
func (mi *MultiIndex) Flat(tuple []int) int {
	if len(tuple) != len(mi.dims) {
		panic(fmt.Sprintf("tuple %v does not match multi-index of rank %d", tuple, len(mi.dims)))
	}
	if len(tuple) == 0 {
		return 0
	}
	return combin.IdxFor(tuple, mi.dims)
}

// Compatible reports whether both multi-indices have the same ranges in the
// same order
func (mi *MultiIndex) Compatible(other *MultiIndex) bool {
	if len(mi.dims) != len(other.dims) {
		return false
	}
	for k := range mi.dims {
		if mi.dims[k] != other.dims[k] {
			return false
		}
	}
	return true
}

func (mi *MultiIndex) String() string {
	parts := make([]string, len(mi.dims))
	for k, d := range mi.dims {
		parts[k] = fmt.Sprintf("%d", d)
	}
	return fmt.Sprintf("%s[%s]", mi.kind, strings.Join(parts, ","))
}
