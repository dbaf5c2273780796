package element

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Lagrange is a nodal element on equispaced lattice points of the reference
// simplex. The basis is obtained by inverting the Vandermonde matrix of the
// monomials at the nodes, so phi_j(x) = sum_m C[m][j] x^m.
type Lagrange struct {
	cell          CellType
	degree        int
	discontinuous bool
	nodes         [][]float64
	exponents     [][]int // monomial exponents, one tuple per column of V
	coeffs        *mat.Dense
}

// NewLagrange builds the Lagrange element of the given degree. Degree 0 is
// only valid for the discontinuous family.
func NewLagrange(cell CellType, degree int, discontinuous bool) (*Lagrange, error) {
	if degree < 0 || degree > 3 {
		return nil, fmt.Errorf("Lagrange degree %d not supported (0..3)", degree)
	}
	if degree == 0 && !discontinuous {
		return nil, fmt.Errorf("continuous Lagrange element requires degree >= 1")
	}
	el := &Lagrange{
		cell:          cell,
		degree:        degree,
		discontinuous: discontinuous,
		nodes:         LatticeNodes(cell, degree),
		exponents:     monomialExponents(int(cell.Dimension()), degree),
	}
	if len(el.nodes) != len(el.exponents) {
		panic(fmt.Sprintf("node count %d does not match polynomial space dimension %d",
			len(el.nodes), len(el.exponents)))
	}

	// V_{ij} = x_i^{m_j}
	n := len(el.nodes)
	V := mat.NewDense(n, n, nil)
	for i, x := range el.nodes {
		for j, m := range el.exponents {
			V.Set(i, j, monomialValue(x, m))
		}
	}
	var Vinv mat.Dense
	if err := Vinv.Inverse(V); err != nil {
		return nil, fmt.Errorf("failed to invert Vandermonde matrix for %s: %w", el, err)
	}
	el.coeffs = &Vinv
	return el, nil
}

func (el *Lagrange) Family() string {
	if el.discontinuous {
		return FamilyDiscontinuous
	}
	return FamilyLagrange
}

func (el *Lagrange) Cell() CellType      { return el.cell }
func (el *Lagrange) Degree() int         { return el.degree }
func (el *Lagrange) SpaceDimension() int { return len(el.nodes) }
func (el *Lagrange) ValueShape() []int   { return nil }
func (el *Lagrange) ValueSize() int      { return 1 }
func (el *Lagrange) Nodes() [][]float64  { return el.nodes }
func (el *Lagrange) String() string {
	return fmt.Sprintf("%s(%s, %d)", el.Family(), el.cell, el.degree)
}

func (el *Lagrange) Tabulate(deriv []int, points [][]float64) ([][][]float64, error) {
	d := int(el.cell.Dimension())
	if deriv != nil && len(deriv) != d {
		return nil, fmt.Errorf("derivative %v has wrong length for %s", deriv, el.cell)
	}
	if err := checkPoints(el.cell, points); err != nil {
		return nil, err
	}
	n := el.SpaceDimension()
	table := make([][][]float64, n)
	for j := 0; j < n; j++ {
		vals := make([]float64, len(points))
		for q, x := range points {
			var v float64
			for m, exp := range el.exponents {
				c := el.coeffs.At(m, j)
				if c == 0 {
					continue
				}
				v += c * monomialDerivative(x, exp, deriv)
			}
			vals[q] = v
		}
		table[j] = [][]float64{vals}
	}
	return table, nil
}

// LatticeNodes returns the equispaced nodes of degree n on the cell, grouped
// by the entity they belong to: vertices, edges, faces, interior. Degree 0
// gives the barycenter.
func LatticeNodes(cell CellType, n int) [][]float64 {
	verts := cell.Vertices()
	d := int(cell.Dimension())
	if n == 0 {
		x := make([]float64, d)
		for _, v := range verts {
			for i := range x {
				x[i] += v[i] / float64(len(verts))
			}
		}
		return [][]float64{x}
	}
	var nodes [][]float64
	for _, ent := range cell.Entities() {
		// Barycentric lattice weights strictly positive on the entity vertices
		for _, k := range compositions(n, len(ent)) {
			x := make([]float64, d)
			for e, v := range ent {
				for i := range x {
					x[i] += float64(k[e]) / float64(n) * verts[v][i]
				}
			}
			nodes = append(nodes, x)
		}
	}
	return nodes
}

// compositions lists the tuples of parts positive integers summing to n,
// with the last entry varying slowest.
func compositions(n, parts int) [][]int {
	if parts == 1 {
		if n >= 1 {
			return [][]int{{n}}
		}
		return nil
	}
	var out [][]int
	for last := 1; last <= n-parts+1; last++ {
		for _, head := range compositions(n-last, parts-1) {
			out = append(out, append(append([]int{}, head...), last))
		}
	}
	return out
}

// monomialExponents lists the exponent tuples of all monomials of total
// degree <= n in dim variables
func monomialExponents(dim, n int) [][]int {
	var out [][]int
	var rec func(prefix []int, left int)
	rec = func(prefix []int, left int) {
		if len(prefix) == dim {
			out = append(out, append([]int{}, prefix...))
			return
		}
		for e := 0; e <= left; e++ {
			rec(append(prefix, e), left-e)
		}
	}
	rec(nil, n)
	return out
}

// monomialValue evaluates x^m
func monomialValue(x []float64, m []int) float64 {
	result := 1.0
	for i, e := range m {
		for k := 0; k < e; k++ {
			result *= x[i]
		}
	}
	return result
}

// monomialDerivative differentiates x^m deriv[i] times in direction i
func monomialDerivative(x []float64, m []int, deriv []int) float64 {
	result := 1.0
	for i, e := range m {
		k := 0
		if deriv != nil {
			k = deriv[i]
		}
		if k > e {
			return 0
		}
		// e!/(e-k)! x^(e-k)
		for j := 0; j < k; j++ {
			result *= float64(e - j)
		}
		for j := 0; j < e-k; j++ {
			result *= x[i]
		}
	}
	return result
}
