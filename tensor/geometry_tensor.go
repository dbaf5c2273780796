package tensor

import (
	"fmt"

	"github.com/augustjohansson/ffcx/element"
)

// GeometryTensor holds the factors of a monomial that are only known at
// runtime: coefficients, Jacobian entries and the determinant.
//
//	GK[a] = detJ^p * sum_b prod(coefficients) * prod(transforms)
type GeometryTensor struct {
	Coefficients []Coefficient
	Transforms   []Transform
	Determinant  Determinant
	Secondary    *MultiIndex
	External     *MultiIndex

	// QuadratureIndices are the IDs of secondary indices that number the
	// basis functions of a quadrature element, one per integration point.
	QuadratureIndices []int
}

// NewGeometryTensor extracts the runtime factors of m
func NewGeometryTensor(m *Monomial) (*GeometryTensor, error) {
	secondary, err := CreateMultiIndex(m, Secondary)
	if err != nil {
		return nil, err
	}
	external, err := CreateMultiIndex(m, External)
	if err != nil {
		return nil, err
	}
	for _, c := range m.Coefficients {
		if c.Index.Type == Primary || c.Index.Type == Internal {
			return nil, fmt.Errorf("coefficient w[%d] indexed by %s index: %w",
				c.Number, c.Index.Type, ErrMalformedMonomial)
		}
	}
	for _, t := range m.Transforms {
		for _, idx := range []MonomialIndex{t.Index0, t.Index1} {
			if idx.Type == Primary || idx.Type == Internal {
				return nil, fmt.Errorf("transform indexed by %s index: %w", idx.Type, ErrMalformedMonomial)
			}
		}
	}
	gk := &GeometryTensor{
		Coefficients: append([]Coefficient(nil), m.Coefficients...),
		Transforms:   append([]Transform(nil), m.Transforms...),
		Determinant:  m.Determinant,
		Secondary:    secondary,
		External:     external,
	}
	seen := make(map[int]bool)
	for _, v := range m.Arguments {
		if element.IsQuadratureElement(v.Element) && v.Index.Type == Secondary && !seen[v.Index.ID] {
			seen[v.Index.ID] = true
			gk.QuadratureIndices = append(gk.QuadratureIndices, v.Index.ID)
		}
	}
	return gk, nil
}

// IsQuadratureIndex reports whether secondary index id is bound to a
// quadrature element
func (gk *GeometryTensor) IsQuadratureIndex(id int) bool {
	for _, q := range gk.QuadratureIndices {
		if q == id {
			return true
		}
	}
	return false
}
