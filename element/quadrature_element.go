package element

import (
	"fmt"
	"math"

	"github.com/augustjohansson/ffcx/quadrature"
)

// QuadratureElement has one basis function per quadrature point, equal to one
// at its own point and zero at all others. It can only be tabulated at its
// own points and has no derivatives.
type QuadratureElement struct {
	cell   CellType
	degree int
	rule   quadrature.Rule
}

func NewQuadratureElement(cell CellType, degree int) (*QuadratureElement, error) {
	rule, err := quadrature.SimplexRule(int(cell.Dimension()), degree)
	if err != nil {
		return nil, err
	}
	return &QuadratureElement{cell: cell, degree: degree, rule: rule}, nil
}

func (qe *QuadratureElement) Family() string        { return FamilyQuadrature }
func (qe *QuadratureElement) Cell() CellType        { return qe.cell }
func (qe *QuadratureElement) Degree() int           { return qe.degree }
func (qe *QuadratureElement) SpaceDimension() int   { return qe.rule.NumPoints() }
func (qe *QuadratureElement) ValueShape() []int     { return nil }
func (qe *QuadratureElement) ValueSize() int        { return 1 }
func (qe *QuadratureElement) Rule() quadrature.Rule { return qe.rule }
func (qe *QuadratureElement) String() string {
	return fmt.Sprintf("Quadrature(%s, %d)", qe.cell, qe.degree)
}

func (qe *QuadratureElement) Tabulate(deriv []int, points [][]float64) ([][][]float64, error) {
	if derivativeOrder(deriv) > 0 {
		return nil, fmt.Errorf("derivatives of %s are not defined", qe)
	}
	if len(points) != qe.rule.NumPoints() {
		return nil, fmt.Errorf("%s can only be tabulated at its own %d points, got %d",
			qe, qe.rule.NumPoints(), len(points))
	}
	for q, x := range points {
		for i := range x {
			if math.Abs(x[i]-qe.rule.Points[q][i]) > 1e-14 {
				return nil, fmt.Errorf("%s tabulated at foreign point %v", qe, x)
			}
		}
	}
	n := qe.SpaceDimension()
	table := make([][][]float64, n)
	for j := 0; j < n; j++ {
		vals := make([]float64, n)
		vals[j] = 1
		table[j] = [][]float64{vals}
	}
	return table, nil
}
