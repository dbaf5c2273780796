package tensor

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/augustjohansson/ffcx/element"
	"github.com/augustjohansson/ffcx/quadrature"
)

// DomainType is the kind of integral
type DomainType uint8

const (
	Cell DomainType = iota + 1
	ExteriorFacet
	InteriorFacet
)

func (d DomainType) String() string {
	switch d {
	case Cell:
		return "cell"
	case ExteriorFacet:
		return "exterior_facet"
	case InteriorFacet:
		return "interior_facet"
	}
	return fmt.Sprintf("DomainType(%d)", uint8(d))
}

// ParseDomainType accepts the names returned by DomainType.String
func ParseDomainType(s string) (DomainType, error) {
	switch s {
	case "cell":
		return Cell, nil
	case "exterior_facet":
		return ExteriorFacet, nil
	case "interior_facet":
		return InteriorFacet, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnsupportedDomain)
}

// side selects which set of points a factor is tabulated at
type side struct {
	points  [][]float64
	weights []float64
}

// Integrate computes the reference tensor of m over the reference cell or
// one (pair of) local facet(s). Rows are the flattened primary indices and
// columns the flattened secondary indices; internal indices are summed.
//
// On interior facets every argument must be restricted. The dofs of a
// restricted argument form a macro element of twice the dimension: '+'
// functions live on facet0 of the first cell and occupy the first half, '-'
// functions live on facet1 of the second cell and occupy the second half.
func Integrate(m *Monomial, domain DomainType, facet0, facet1 int) (*mat.Dense, error) {
	switch domain {
	case Cell, ExteriorFacet, InteriorFacet:
	default:
		return nil, fmt.Errorf("%s: %w", domain, ErrUnsupportedDomain)
	}
	primary, err := CreateMultiIndex(m, Primary)
	if err != nil {
		return nil, err
	}
	secondary, err := CreateMultiIndex(m, Secondary)
	if err != nil {
		return nil, err
	}
	internal, err := CreateMultiIndex(m, Internal)
	if err != nil {
		return nil, err
	}
	if err := checkArguments(m, domain); err != nil {
		return nil, err
	}

	sides, err := integrationPoints(m, domain, facet0, facet1)
	if err != nil {
		return nil, err
	}

	tables := newTableCache(m, sides)
	A0 := mat.NewDense(primary.Size(), secondary.Size(), nil)
	weights := sides[0].weights
	for ii, i := range primary.Indices() {
		for aa, a := range secondary.Indices() {
			var sum float64
			for _, b := range internal.Indices() {
				// Integrand at every quadrature point, product over factors
				vals := make([]float64, len(weights))
				for q := range vals {
					vals[q] = 1
				}
				for k := range m.Arguments {
					col, err := tables.values(k, i, a, b)
					if err != nil {
						return nil, err
					}
					for q := range vals {
						vals[q] *= col[q]
					}
				}
				for q, w := range weights {
					sum += w * vals[q]
				}
			}
			A0.Set(ii, aa, m.Float*sum)
		}
	}
	return A0, nil
}

func checkArguments(m *Monomial, domain DomainType) error {
	for k, v := range m.Arguments {
		n := v.Element.SpaceDimension()
		switch domain {
		case Cell, ExteriorFacet:
			if v.Restriction != NoRestriction {
				return fmt.Errorf("argument %d restricted on %s integral: %w", k, domain, ErrRestriction)
			}
		case InteriorFacet:
			if v.Restriction == NoRestriction {
				return fmt.Errorf("argument %d unrestricted on interior facet integral: %w", k, ErrRestriction)
			}
			n *= 2
		default:
			return fmt.Errorf("%s: %w", domain, ErrUnsupportedDomain)
		}
		if v.Index.Type != Fixed && v.Index.Dim != n {
			return fmt.Errorf("argument %d dof index %s has range %d, element %s needs %d: %w",
				k, v.Index, v.Index.Dim, v.Element, n, ErrIndexMismatch)
		}
		for _, idx := range append(append([]MonomialIndex{v.Index}, v.Components...), v.Derivatives...) {
			if idx.Type == External {
				return fmt.Errorf("argument %d references external index %s: %w", k, idx, ErrMalformedMonomial)
			}
		}
		if len(v.Components) != len(v.Element.ValueShape()) {
			return fmt.Errorf("argument %d has %d component indices for value shape %v: %w",
				k, len(v.Components), v.Element.ValueShape(), ErrIndexMismatch)
		}
	}
	return nil
}

// integrationPoints returns the reference points of each side with the
// shared weights. Cell and exterior facet integrals have one side.
func integrationPoints(m *Monomial, domain DomainType, facet0, facet1 int) ([]side, error) {
	var cell element.CellType
	var qe *element.QuadratureElement
	for _, v := range m.Arguments {
		if cell != 0 && v.Element.Cell() != cell {
			return nil, fmt.Errorf("arguments defined on %s and %s: %w", cell, v.Element.Cell(), ErrMalformedMonomial)
		}
		cell = v.Element.Cell()
		if q, ok := v.Element.(*element.QuadratureElement); ok {
			if qe != nil && q.SpaceDimension() != qe.SpaceDimension() {
				return nil, fmt.Errorf("quadrature elements %s and %s disagree: %w", qe, q, ErrMalformedMonomial)
			}
			qe = q
		}
	}
	if cell == 0 {
		return nil, fmt.Errorf("monomial %s has no arguments to integrate: %w", m, ErrMalformedMonomial)
	}

	if domain == Cell {
		rule, err := quadrature.SimplexRule(int(cell.Dimension()), m.Degree())
		if err != nil {
			return nil, err
		}
		if qe != nil {
			rule = qe.Rule()
		}
		return []side{{points: rule.Points, weights: rule.Weights}}, nil
	}

	if qe != nil {
		return nil, fmt.Errorf("quadrature element %s on %s integral: %w", qe, domain, ErrUnsupportedDomain)
	}
	nf := cell.NumFacets()
	if facet0 < 0 || facet0 >= nf || (domain == InteriorFacet && (facet1 < 0 || facet1 >= nf)) {
		return nil, fmt.Errorf("facet (%d, %d) out of range for %s: %w", facet0, facet1, cell, ErrMalformedMonomial)
	}
	rule, err := quadrature.SimplexRule(int(cell.Dimension())-1, m.Degree())
	if err != nil {
		return nil, err
	}
	sides := []side{{points: cell.MapFacetPoints(facet0, rule.Points), weights: rule.Weights}}
	if domain == InteriorFacet {
		sides = append(sides, side{points: cell.MapFacetPoints(facet1, rule.Points), weights: rule.Weights})
	}
	return sides, nil
}

// tableCache tabulates each (argument, derivative, side) combination once
type tableCache struct {
	m      *Monomial
	sides  []side
	tables map[string][][][]float64
	zeros  []float64
}

func newTableCache(m *Monomial, sides []side) *tableCache {
	return &tableCache{
		m:      m,
		sides:  sides,
		tables: make(map[string][][][]float64),
		zeros:  make([]float64, len(sides[0].weights)),
	}
}

// values returns argument k evaluated at all points for the index tuples
func (tc *tableCache) values(k int, i, a, b []int) ([]float64, error) {
	v := tc.m.Arguments[k]
	el := v.Element
	dof := v.Index.Eval(i, a, b, nil)

	s := 0
	if v.Restriction != NoRestriction {
		n := el.SpaceDimension()
		half := 0
		if dof >= n {
			half = 1
			dof -= n
		}
		want := 0
		if v.Restriction == Minus {
			want = 1
		}
		// '+' functions vanish on the '-' half of the macro element and
		// vice versa
		if half != want {
			return tc.zeros, nil
		}
		s = want
	}

	deriv := make([]int, int(el.Cell().Dimension()))
	for _, d := range v.Derivatives {
		dir := d.Eval(i, a, b, nil)
		if dir < 0 || dir >= len(deriv) {
			return nil, fmt.Errorf("derivative direction %d out of range for %s: %w", dir, el.Cell(), ErrIndexMismatch)
		}
		deriv[dir]++
	}

	key := tableKey(k, s, deriv)
	table, ok := tc.tables[key]
	if !ok {
		var err error
		table, err = el.Tabulate(deriv, tc.sides[s].points)
		if err != nil {
			return nil, fmt.Errorf("tabulating argument %d: %w", k, err)
		}
		tc.tables[key] = table
	}

	comp := 0
	shape := el.ValueShape()
	for c, ci := range v.Components {
		val := ci.Eval(i, a, b, nil)
		if val < 0 || val >= shape[c] {
			return nil, fmt.Errorf("component %d out of range for %s: %w", val, el, ErrIndexMismatch)
		}
		comp = comp*shape[c] + val
	}
	return table[dof][comp], nil
}

func tableKey(k, s int, deriv []int) string {
	parts := make([]string, 0, len(deriv)+2)
	parts = append(parts, strconv.Itoa(k), strconv.Itoa(s))
	for _, d := range deriv {
		parts = append(parts, strconv.Itoa(d))
	}
	return strings.Join(parts, ":")
}
