package symbolic

// Table is an insertion ordered set of values deduplicated by structural
// equality. Entries are bucketed by hash; colliding values that are not
// equal get their own entries.
type Table[T Hasher[T]] struct {
	entries []T
	buckets map[uint64][]int
}

func NewTable[T Hasher[T]]() *Table[T] {
	return &Table[T]{buckets: make(map[uint64][]int)}
}

// Insert adds v unless an equal value is present, and returns its position
func (t *Table[T]) Insert(v T) int {
	if i, ok := t.Lookup(v); ok {
		return i
	}
	h := v.Hash()
	i := len(t.entries)
	t.entries = append(t.entries, v)
	t.buckets[h] = append(t.buckets[h], i)
	return i
}

// Lookup returns the position of a value equal to v
func (t *Table[T]) Lookup(v T) (int, bool) {
	for _, i := range t.buckets[v.Hash()] {
		if t.entries[i].Equals(v) {
			return i, true
		}
	}
	return -1, false
}

func (t *Table[T]) Len() int { return len(t.entries) }

func (t *Table[T]) At(i int) T { return t.entries[i] }

// Entries returns the values in insertion order. The slice is shared and
// must not be modified.
func (t *Table[T]) Entries() []T { return t.entries }
