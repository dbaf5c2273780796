package quadrature

import (
	"fmt"
)

// Rule is a quadrature rule on a reference simplex. Points are given in the
// UFC reference coordinates, vertices at the origin and the unit vectors.
type Rule struct {
	Dim     int
	Points  [][]float64
	Weights []float64
}

// NumPoints returns the number of quadrature points
func (r Rule) NumPoints() int { return len(r.Weights) }

// PointsPerDirection returns the number of collapsed Gauss-Jacobi points per
// direction needed to integrate a polynomial of the given degree exactly.
func PointsPerDirection(degree int) int {
	if degree < 0 {
		degree = 0
	}
	return degree/2 + 1
}

// SimplexRule returns a collapsed Gauss-Jacobi rule on the reference simplex
// of dimension dim which is exact for polynomials of the given degree.
// Dimension 0 is the single point rule used on the facets of an interval.
func SimplexRule(dim, degree int) (Rule, error) {
	n := PointsPerDirection(degree)
	switch dim {
	case 0:
		return Rule{Dim: 0, Points: [][]float64{{}}, Weights: []float64{1}}, nil
	case 1:
		return intervalRule(n), nil
	case 2:
		return triangleRule(n), nil
	case 3:
		return tetrahedronRule(n), nil
	default:
		return Rule{}, fmt.Errorf("no quadrature rule for simplex of dimension %d", dim)
	}
}

// intervalRule maps the Gauss-Legendre rule to [0,1]
func intervalRule(n int) Rule {
	x, w := JacobiGQ(0, 0, n-1)
	r := Rule{Dim: 1}
	for i := range x {
		r.Points = append(r.Points, []float64{0.5 * (1 + x[i])})
		r.Weights = append(r.Weights, 0.5*w[i])
	}
	return r
}

// triangleRule collapses the square onto the reference triangle
//
//	y = (1+b)/2,  x = (1+a)(1-b)/4
func triangleRule(n int) Rule {
	a, wa := JacobiGQ(0, 0, n-1)
	b, wb := JacobiGQ(1, 0, n-1)
	r := Rule{Dim: 2}
	for i := range a {
		for j := range b {
			y := 0.5 * (1 + b[j])
			x := 0.25 * (1 + a[i]) * (1 - b[j])
			r.Points = append(r.Points, []float64{x, y})
			r.Weights = append(r.Weights, wa[i]*wb[j]/8)
		}
	}
	return r
}

// tetrahedronRule collapses the cube onto the reference tetrahedron
//
//	z = (1+c)/2,  y = (1+b)(1-c)/4,  x = (1+a)(1-b)(1-c)/8
func tetrahedronRule(n int) Rule {
	a, wa := JacobiGQ(0, 0, n-1)
	b, wb := JacobiGQ(1, 0, n-1)
	c, wc := JacobiGQ(2, 0, n-1)
	r := Rule{Dim: 3}
	for i := range a {
		for j := range b {
			for k := range c {
				z := 0.5 * (1 + c[k])
				y := 0.25 * (1 + b[j]) * (1 - c[k])
				x := 0.125 * (1 + a[i]) * (1 - b[j]) * (1 - c[k])
				r.Points = append(r.Points, []float64{x, y, z})
				r.Weights = append(r.Weights, wa[i]*wb[j]*wc[k]/64)
			}
		}
	}
	return r
}
