package tensor

import (
	"fmt"
	"sort"
	"strings"
)

// HardSignature identifies the reference tensor of m: two monomials with
// the same signature integrate to the same A0 on the same domain.
func HardSignature(m *Monomial) string {
	factors := make([]string, len(m.Arguments))
	for k, v := range m.Arguments {
		factors[k] = fmt.Sprintf("{%s;%s/%d;%s;%s;%s}",
			v.Element, v.Index, v.Index.Dim, indexList(v.Components), indexList(v.Derivatives), v.Restriction)
	}
	sort.Strings(factors)
	for _, kind := range []IndexType{Primary, Secondary, Internal} {
		factors = append(factors, fmt.Sprintf("%s%v", kind, indexRanges(m, kind)))
	}
	return strings.Join(append([]string{fmt.Sprintf("%.15e", m.Float)}, factors...), "*")
}

func indexList(indices []MonomialIndex) string {
	parts := make([]string, len(indices))
	for k, idx := range indices {
		parts[k] = fmt.Sprintf("%s/%d", idx, idx.Dim)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// indexRanges lists the ranges of the indices of one type ordered by ID,
// without requiring consecutive IDs
func indexRanges(m *Monomial, kind IndexType) []int {
	dims := make(map[int]int)
	for _, idx := range m.indexRefs() {
		if idx.Type == kind {
			dims[idx.ID] = idx.Dim
		}
	}
	ids := make([]int, 0, len(dims))
	for id := range dims {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	ranges := make([]int, len(ids))
	for k, id := range ids {
		ranges[k] = dims[id]
	}
	return ranges
}
