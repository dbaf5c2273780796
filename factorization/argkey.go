package factorization

import (
	"slices"
	"strconv"
	"strings"
)

// ArgKey is a sorted tuple of argument indices. It is a comparable value
// type: two keys are equal exactly when they hold the same indices, so
// permutations of a tuple collapse onto one key.
type ArgKey struct {
	packed string
}

// NewArgKey returns the key holding the given indices in ascending order
func NewArgKey(indices ...int) ArgKey {
	sorted := slices.Clone(indices)
	slices.Sort(sorted)
	parts := make([]string, len(sorted))
	for i, v := range sorted {
		parts[i] = strconv.Itoa(v)
	}
	return ArgKey{packed: strings.Join(parts, ",")}
}

// Indices returns a fresh copy of the index tuple
func (k ArgKey) Indices() []int {
	if k.packed == "" {
		return []int{}
	}
	parts := strings.Split(k.packed, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		// packed is only ever written by NewArgKey
		out[i], _ = strconv.Atoi(p)
	}
	return out
}

// Len is the rank of the key
func (k ArgKey) Len() int {
	if k.packed == "" {
		return 0
	}
	return strings.Count(k.packed, ",") + 1
}

func (k ArgKey) String() string { return "(" + k.packed + ")" }

// Less orders keys lexicographically by index
func (k ArgKey) Less(other ArgKey) bool {
	return slices.Compare(k.Indices(), other.Indices()) < 0
}

// Merge returns the key of the product of two argument factors
func (k ArgKey) Merge(other ArgKey) ArgKey {
	return NewArgKey(append(k.Indices(), other.Indices()...)...)
}

func sortKeys(keys []ArgKey) {
	slices.SortFunc(keys, func(a, b ArgKey) int {
		return slices.Compare(a.Indices(), b.Indices())
	})
}
