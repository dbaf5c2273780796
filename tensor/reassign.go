package tensor

import "sort"

// ReassignIndices renumbers the indices of a sum of monomials so that IDs
// start at zero and are consecutive. Primary indices are numbered over the
// whole sum, the other types per monomial. Relative order is kept. The
// input monomials are not modified.
func ReassignIndices(ms []*Monomial) []*Monomial {
	primary := renumbering(ms, Primary)
	out := make([]*Monomial, len(ms))
	for k, m := range ms {
		maps := map[IndexType]map[int]int{Primary: primary}
		for _, kind := range []IndexType{Secondary, Internal, External} {
			maps[kind] = renumbering([]*Monomial{m}, kind)
		}
		out[k] = m.mapIndices(func(idx MonomialIndex) MonomialIndex {
			if table, ok := maps[idx.Type]; ok {
				idx.ID = table[idx.ID]
			}
			return idx
		})
	}
	return out
}

func renumbering(ms []*Monomial, kind IndexType) map[int]int {
	seen := make(map[int]bool)
	var ids []int
	for _, m := range ms {
		for _, idx := range m.indexRefs() {
			if idx.Type == kind && !seen[idx.ID] {
				seen[idx.ID] = true
				ids = append(ids, idx.ID)
			}
		}
	}
	sort.Ints(ids)
	table := make(map[int]int, len(ids))
	for k, id := range ids {
		table[id] = k
	}
	return table
}

// mapIndices returns a copy of m with f applied to every index reference
func (m *Monomial) mapIndices(f func(MonomialIndex) MonomialIndex) *Monomial {
	mapAll := func(indices []MonomialIndex) []MonomialIndex {
		if indices == nil {
			return nil
		}
		out := make([]MonomialIndex, len(indices))
		for k, idx := range indices {
			out[k] = f(idx)
		}
		return out
	}
	c := &Monomial{Float: m.Float, Determinant: m.Determinant}
	for _, v := range m.Arguments {
		v.Index = f(v.Index)
		v.Components = mapAll(v.Components)
		v.Derivatives = mapAll(v.Derivatives)
		c.Arguments = append(c.Arguments, v)
	}
	for _, w := range m.Coefficients {
		w.Index = f(w.Index)
		c.Coefficients = append(c.Coefficients, w)
	}
	for _, t := range m.Transforms {
		t.Index0 = f(t.Index0)
		t.Index1 = f(t.Index1)
		c.Transforms = append(c.Transforms, t)
	}
	return c
}
