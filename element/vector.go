package element

import "fmt"

// VectorElement stacks n copies of a scalar element, one per component.
// Dof c*N+j is basis function j of the scalar element in component c.
type VectorElement struct {
	sub Element
	n   int
}

func NewVectorElement(sub Element, n int) (*VectorElement, error) {
	if sub.ValueSize() != 1 {
		return nil, fmt.Errorf("vector element requires a scalar sub element, got %s", sub)
	}
	if n < 1 {
		return nil, fmt.Errorf("vector element needs at least one component, got %d", n)
	}
	return &VectorElement{sub: sub, n: n}, nil
}

func (v *VectorElement) Family() string      { return v.sub.Family() }
func (v *VectorElement) Cell() CellType      { return v.sub.Cell() }
func (v *VectorElement) Degree() int         { return v.sub.Degree() }
func (v *VectorElement) SpaceDimension() int { return v.n * v.sub.SpaceDimension() }
func (v *VectorElement) ValueShape() []int   { return []int{v.n} }
func (v *VectorElement) ValueSize() int      { return v.n }
func (v *VectorElement) Sub() Element        { return v.sub }
func (v *VectorElement) String() string {
	return fmt.Sprintf("Vector%s^%d", v.sub, v.n)
}

func (v *VectorElement) Tabulate(deriv []int, points [][]float64) ([][][]float64, error) {
	sub, err := v.sub.Tabulate(deriv, points)
	if err != nil {
		return nil, err
	}
	ns := len(sub)
	table := make([][][]float64, v.n*ns)
	for c := 0; c < v.n; c++ {
		for j := 0; j < ns; j++ {
			comps := make([][]float64, v.n)
			for k := range comps {
				if k == c {
					comps[k] = sub[j][0]
				} else {
					comps[k] = make([]float64, len(points))
				}
			}
			table[c*ns+j] = comps
		}
	}
	return table, nil
}
