package element

import (
	"fmt"
	"strings"
)

// Family names accepted by New
const (
	FamilyLagrange      = "Lagrange"
	FamilyDiscontinuous = "Discontinuous Lagrange"
	FamilyQuadrature    = "Quadrature"
)

// Element is a finite element as seen by the form compiler: a basis whose
// functions and reference derivatives can be tabulated at points on the
// reference cell.
type Element interface {
	Family() string
	Cell() CellType
	Degree() int
	SpaceDimension() int // number of basis functions
	ValueShape() []int
	ValueSize() int // product of ValueShape, 1 for scalar elements

	// Tabulate evaluates the reference derivative given by deriv (one count
	// per reference direction, nil for plain values) of every basis
	// function at points. The result is indexed [dof][component][point].
	Tabulate(deriv []int, points [][]float64) ([][][]float64, error)

	String() string
}

// New creates a scalar element of the given family
func New(family string, cell CellType, degree int) (Element, error) {
	switch normalizeFamily(family) {
	case FamilyLagrange:
		if degree < 1 {
			return nil, fmt.Errorf("Lagrange element requires degree >= 1, got %d", degree)
		}
		return NewLagrange(cell, degree, false)
	case FamilyDiscontinuous:
		return NewLagrange(cell, degree, true)
	case FamilyQuadrature:
		return NewQuadratureElement(cell, degree)
	}
	return nil, fmt.Errorf("unsupported element family %q", family)
}

func normalizeFamily(family string) string {
	switch strings.ToLower(family) {
	case "lagrange", "cg", "p":
		return FamilyLagrange
	case "discontinuous lagrange", "dg", "dp":
		return FamilyDiscontinuous
	case "quadrature", "q":
		return FamilyQuadrature
	}
	return family
}

// IsQuadratureElement reports whether e has one basis function per
// quadrature point
func IsQuadratureElement(e Element) bool {
	_, ok := e.(*QuadratureElement)
	return ok
}

// derivativeOrder sums the per-direction derivative counts
func derivativeOrder(deriv []int) int {
	n := 0
	for _, d := range deriv {
		n += d
	}
	return n
}

func checkPoints(cell CellType, points [][]float64) error {
	d := int(cell.Dimension())
	for q, x := range points {
		if len(x) != d {
			return fmt.Errorf("point %d has dimension %d, expected %d", q, len(x), d)
		}
	}
	return nil
}
