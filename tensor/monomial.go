package tensor

import (
	"fmt"
	"strings"

	"github.com/augustjohansson/ffcx/element"
)

// Restriction selects the side of an interior facet
type Restriction uint8

const (
	NoRestriction Restriction = iota
	Plus
	Minus
)

func (r Restriction) String() string {
	switch r {
	case Plus:
		return "+"
	case Minus:
		return "-"
	}
	return ""
}

// ParseRestriction accepts "", "+" and "-"
func ParseRestriction(s string) (Restriction, error) {
	switch s {
	case "":
		return NoRestriction, nil
	case "+":
		return Plus, nil
	case "-":
		return Minus, nil
	}
	return 0, fmt.Errorf("unknown restriction %q", s)
}

// Argument is one basis function factor of a monomial: function Index of
// Element, in the given components, differentiated once in the reference
// direction of every entry of Derivatives.
type Argument struct {
	Element     element.Element
	Index       MonomialIndex
	Components  []MonomialIndex
	Derivatives []MonomialIndex
	Restriction Restriction
}

// Coefficient is the runtime coefficient w[Number][Index]
type Coefficient struct {
	Number int
	Index  MonomialIndex
}

// TransformKind selects the Jacobian or its inverse
type TransformKind uint8

const (
	J    TransformKind = iota // dx_Index0/dX_Index1
	JINV                      // dX_Index0/dx_Index1
)

func (k TransformKind) String() string {
	if k == J {
		return "J"
	}
	return "JINV"
}

// Transform is one entry of the (inverse) Jacobian of the cell map
type Transform struct {
	Kind        TransformKind
	Index0      MonomialIndex
	Index1      MonomialIndex
	Restriction Restriction
}

// Determinant is the factor detJ^Power
type Determinant struct {
	Power       int
	Restriction Restriction
}

// Monomial is the product
//
//	Float * detJ^p * prod(coefficients) * prod(transforms) * prod(arguments)
//
// with implicit summation over all free indices.
type Monomial struct {
	Float        float64
	Determinant  Determinant
	Coefficients []Coefficient
	Transforms   []Transform
	Arguments    []Argument
}

// indexRefs lists every index reference of the monomial in a canonical
// order: arguments (dof, components, derivatives), coefficients, transforms.
func (m *Monomial) indexRefs() []MonomialIndex {
	var refs []MonomialIndex
	for _, v := range m.Arguments {
		refs = append(refs, v.Index)
		refs = append(refs, v.Components...)
		refs = append(refs, v.Derivatives...)
	}
	for _, c := range m.Coefficients {
		refs = append(refs, c.Index)
	}
	for _, t := range m.Transforms {
		refs = append(refs, t.Index0, t.Index1)
	}
	return refs
}

// Degree is the polynomial degree of the product of arguments, each
// derivative lowering the degree of its factor by one.
func (m *Monomial) Degree() int {
	d := 0
	for _, v := range m.Arguments {
		q := v.Element.Degree() - len(v.Derivatives)
		if q > 0 {
			d += q
		}
	}
	return d
}

func (m *Monomial) String() string {
	var parts []string
	if m.Float != 1 {
		parts = append(parts, fmt.Sprintf("%g", m.Float))
	}
	if m.Determinant.Power != 0 {
		parts = append(parts, fmt.Sprintf("(detJ%s)^%d", m.Determinant.Restriction, m.Determinant.Power))
	}
	for _, c := range m.Coefficients {
		parts = append(parts, fmt.Sprintf("w%d[%s]", c.Number, c.Index))
	}
	for _, t := range m.Transforms {
		parts = append(parts, fmt.Sprintf("%s%s(%s,%s)", t.Kind, t.Restriction, t.Index0, t.Index1))
	}
	for _, v := range m.Arguments {
		var sb strings.Builder
		sb.WriteString("v[" + v.Index.String() + "]")
		for _, c := range v.Components {
			sb.WriteString("[" + c.String() + "]")
		}
		for _, d := range v.Derivatives {
			sb.WriteString(".d" + d.String())
		}
		sb.WriteString(v.Restriction.String())
		parts = append(parts, sb.String())
	}
	if len(parts) == 0 {
		return "1"
	}
	return strings.Join(parts, " * ")
}
