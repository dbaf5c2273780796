package element

import (
	"fmt"
	"strings"
)

// Dimensionality represents the topological dimension of a reference cell
type Dimensionality uint8

const (
	D0 Dimensionality = iota // points (facets of an interval)
	D1                       // intervals
	D2                       // triangles
	D3                       // tetrahedra
)

// CellType is one of the UFC reference simplices
type CellType uint8

const (
	Interval CellType = iota + 1
	Triangle
	Tetrahedron
)

// ParseCellType maps a cell name to its CellType
func ParseCellType(name string) (CellType, error) {
	switch strings.ToLower(name) {
	case "interval", "line":
		return Interval, nil
	case "triangle", "tri":
		return Triangle, nil
	case "tetrahedron", "tet":
		return Tetrahedron, nil
	}
	return 0, fmt.Errorf("unknown cell type %q", name)
}

func (c CellType) String() string {
	switch c {
	case Interval:
		return "interval"
	case Triangle:
		return "triangle"
	case Tetrahedron:
		return "tetrahedron"
	}
	return fmt.Sprintf("CellType(%d)", uint8(c))
}

// Dimension returns the topological (and geometric) dimension of the cell
func (c CellType) Dimension() Dimensionality {
	switch c {
	case Interval:
		return D1
	case Triangle:
		return D2
	case Tetrahedron:
		return D3
	}
	panic(fmt.Sprintf("invalid cell type %d", uint8(c)))
}

// NumVertices of a simplex is its dimension plus one
func (c CellType) NumVertices() int { return int(c.Dimension()) + 1 }

// NumFacets of a simplex equals its number of vertices
func (c CellType) NumFacets() int { return c.NumVertices() }

// Vertices returns the UFC reference vertex coordinates: the origin followed
// by the unit vectors.
func (c CellType) Vertices() [][]float64 {
	d := int(c.Dimension())
	verts := make([][]float64, d+1)
	for v := range verts {
		verts[v] = make([]float64, d)
		if v > 0 {
			verts[v][v-1] = 1
		}
	}
	return verts
}

// FacetVertices returns the vertices of local facet f in ascending order.
// Facet f is the facet opposite vertex f.
func (c CellType) FacetVertices(f int) []int {
	nv := c.NumVertices()
	if f < 0 || f >= nv {
		panic(fmt.Sprintf("facet %d out of range for %s", f, c))
	}
	vs := make([]int, 0, nv-1)
	for v := 0; v < nv; v++ {
		if v != f {
			vs = append(vs, v)
		}
	}
	return vs
}

// Edges returns the vertex pairs of the cell edges in UFC order
func (c CellType) Edges() [][2]int {
	switch c {
	case Interval:
		return [][2]int{{0, 1}}
	case Triangle:
		return [][2]int{{1, 2}, {0, 2}, {0, 1}}
	case Tetrahedron:
		return [][2]int{{2, 3}, {1, 3}, {1, 2}, {0, 3}, {0, 2}, {0, 1}}
	}
	return nil
}

// Entities lists the vertex sets of all sub-entities, ordered by dimension
// then by UFC local number: vertices, edges, faces, cell.
func (c CellType) Entities() [][]int {
	var ents [][]int
	nv := c.NumVertices()
	for v := 0; v < nv; v++ {
		ents = append(ents, []int{v})
	}
	if c == Interval {
		return append(ents, []int{0, 1})
	}
	for _, e := range c.Edges() {
		ents = append(ents, []int{e[0], e[1]})
	}
	if c == Triangle {
		return append(ents, []int{0, 1, 2})
	}
	for f := 0; f < c.NumFacets(); f++ {
		ents = append(ents, c.FacetVertices(f))
	}
	return append(ents, []int{0, 1, 2, 3})
}

// FacetCell returns the reference cell of the facets, and false for an
// interval whose facets are points.
func (c CellType) FacetCell() (CellType, bool) {
	switch c {
	case Triangle:
		return Interval, true
	case Tetrahedron:
		return Triangle, true
	}
	return 0, false
}

// MapFacetPoints maps points given in the reference coordinates of the
// facet cell onto local facet f of this cell.
func (c CellType) MapFacetPoints(f int, points [][]float64) [][]float64 {
	verts := c.Vertices()
	fv := c.FacetVertices(f)
	d := int(c.Dimension())
	mapped := make([][]float64, len(points))
	for q, xi := range points {
		x := make([]float64, d)
		copy(x, verts[fv[0]])
		for k := range xi {
			for i := 0; i < d; i++ {
				x[i] += xi[k] * (verts[fv[k+1]][i] - verts[fv[0]][i])
			}
		}
		mapped[q] = x
	}
	return mapped
}

// ReferenceVolume returns the measure of the reference cell
func (c CellType) ReferenceVolume() float64 {
	switch c {
	case Interval:
		return 1
	case Triangle:
		return 0.5
	case Tetrahedron:
		return 1. / 6.
	}
	return 0
}
