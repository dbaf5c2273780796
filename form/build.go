package form

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/augustjohansson/ffcx/element"
	"github.com/augustjohansson/ffcx/symbolic"
	"github.com/augustjohansson/ffcx/tensor"
)

// Form is a checked form file
type Form struct {
	Prefix      string
	Integrals   []*Integral
	Expressions map[string]symbolic.Expr
}

// Integral holds the monomials of one integral and the contraction plans
// given for them
type Integral struct {
	Domain    tensor.DomainType
	Cell      element.CellType
	FormID    int
	DomainID  int
	Monomials []*tensor.Monomial
	Plans     []tensor.ContractionPlan

	// Coefficients holds the number of values read from each w[n]
	Coefficients []int
}

// Build checks the file and constructs elements, monomials and expressions
func (spec *FileSpec) Build() (*Form, error) {
	if len(spec.Integrals) == 0 && len(spec.Expressions) == 0 {
		return nil, fmt.Errorf("no integrals or expressions: %w", ErrForm)
	}
	f := &Form{Prefix: spec.Prefix, Expressions: make(map[string]symbolic.Expr)}
	if f.Prefix == "" {
		f.Prefix = "form"
	}

	elements := make(map[string]element.Element, len(spec.Elements))
	for _, name := range sortedNames(spec.Elements) {
		el, err := spec.Elements[name].build()
		if err != nil {
			return nil, fmt.Errorf("element %s: %w", name, err)
		}
		elements[name] = el
	}

	for k, is := range spec.Integrals {
		in, err := is.build(elements)
		if err != nil {
			return nil, fmt.Errorf("integral %d: %w", k, err)
		}
		f.Integrals = append(f.Integrals, in)
	}

	for _, name := range sortedNames(spec.Expressions) {
		e, err := spec.Expressions[name].build()
		if err != nil {
			return nil, fmt.Errorf("expression %s: %w", name, err)
		}
		f.Expressions[name] = e
	}
	log.Debugf("form %s: %d elements, %d integrals, %d expressions",
		f.Prefix, len(elements), len(f.Integrals), len(f.Expressions))
	return f, nil
}

// IR computes the intermediate representation of the integral and attaches
// its contraction plans
func (in *Integral) IR() (*tensor.IntegralIR, error) {
	ir, err := tensor.ComputeIntegralIR(in.Monomials, in.Domain, in.Cell, in.FormID, in.DomainID)
	if err != nil {
		return nil, err
	}
	for k, plan := range in.Plans {
		if plan == nil {
			continue
		}
		term := ir.Terms[k]
		if ir.Terms[k], err = tensor.NewTerm(term.A0, term.GK, plan); err != nil {
			return nil, fmt.Errorf("plan of monomial %d: %w", k, err)
		}
	}
	return ir, nil
}

// IRs computes the representation of every integral in file order
func (f *Form) IRs() ([]*tensor.IntegralIR, error) {
	irs := make([]*tensor.IntegralIR, len(f.Integrals))
	for k, in := range f.Integrals {
		ir, err := in.IR()
		if err != nil {
			return nil, fmt.Errorf("integral %d_%d: %w", in.FormID, in.DomainID, err)
		}
		irs[k] = ir
	}
	return irs, nil
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (es ElementSpec) build() (element.Element, error) {
	cell, err := element.ParseCellType(es.Cell)
	if err != nil {
		return nil, err
	}
	el, err := element.New(es.Family, cell, es.Degree)
	if err != nil {
		return nil, err
	}
	if es.Components > 0 {
		return element.NewVectorElement(el, es.Components)
	}
	return el, nil
}

func (is IntegralSpec) build(elements map[string]element.Element) (*Integral, error) {
	domain, err := tensor.ParseDomainType(is.Domain)
	if err != nil {
		return nil, err
	}
	if len(is.Monomials) == 0 {
		return nil, fmt.Errorf("no monomials: %w", ErrForm)
	}
	in := &Integral{Domain: domain, FormID: is.Form, DomainID: is.ID}
	for k, ms := range is.Monomials {
		m, cell, err := ms.build(elements)
		if err != nil {
			return nil, fmt.Errorf("monomial %d: %w", k, err)
		}
		if k == 0 {
			in.Cell = cell
		} else if cell != in.Cell {
			return nil, fmt.Errorf("monomial %d on %s, expected %s: %w", k, cell, in.Cell, ErrForm)
		}
		in.Monomials = append(in.Monomials, m)

		var plan tensor.ContractionPlan
		if len(ms.Plan) > 0 {
			if domain != tensor.Cell {
				return nil, fmt.Errorf("monomial %d: contraction plans are only read for cell integrals: %w", k, ErrForm)
			}
			if plan, err = buildPlan(ms.Plan); err != nil {
				return nil, fmt.Errorf("monomial %d: %w", k, err)
			}
		}
		in.Plans = append(in.Plans, plan)

		for _, c := range m.Coefficients {
			for len(in.Coefficients) <= c.Number {
				in.Coefficients = append(in.Coefficients, 0)
			}
			n := c.Index.Dim
			if c.Index.Type == tensor.Fixed {
				n = c.Index.Value + 1
			}
			in.Coefficients[c.Number] = max(in.Coefficients[c.Number], n)
		}
	}
	return in, nil
}

func buildPlan(specs []PlanEntrySpec) (tensor.ContractionPlan, error) {
	plan := make(tensor.ContractionPlan, len(specs))
	for k, es := range specs {
		entry := tensor.PlanEntry{OutputKind: tensor.ElementTensorEntry, Output: es.Output}
		for _, o := range es.Operands {
			op := tensor.PlanOperand{Coefficient: o.Coefficient}
			switch {
			case o.A != nil && o.G == nil:
				op.Kind, op.Index = tensor.ElementTensorEntry, *o.A
			case o.G != nil && o.A == nil:
				op.Kind, op.Index = tensor.GeometryTensorEntry, *o.G
			default:
				return nil, fmt.Errorf("plan entry %d: operand needs exactly one of a and g: %w", k, ErrForm)
			}
			entry.Operands = append(entry.Operands, op)
		}
		plan[k] = entry
	}
	return plan, nil
}

// indexRef is a parsed index before its range is known
type indexRef struct {
	kind  tensor.IndexType
	id    int
	dim   int
	value int
}

type indexKey struct {
	kind tensor.IndexType
	id   int
}

func parseIndex(s string) (indexRef, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		if v < 0 {
			return indexRef{}, fmt.Errorf("negative fixed index %d: %w", v, ErrForm)
		}
		return indexRef{kind: tensor.Fixed, dim: 1, value: v}, nil
	}
	if len(s) < 2 {
		return indexRef{}, fmt.Errorf("index %q: %w", s, ErrForm)
	}
	kind, err := tensor.ParseIndexType(s[:1])
	if err != nil {
		return indexRef{}, fmt.Errorf("index %q: %w", s, ErrForm)
	}
	ref := indexRef{kind: kind}
	idPart, dimPart, hasDim := strings.Cut(s[1:], ":")
	if ref.id, err = strconv.Atoi(idPart); err != nil || ref.id < 0 {
		return indexRef{}, fmt.Errorf("index %q: bad number: %w", s, ErrForm)
	}
	if hasDim {
		if ref.dim, err = strconv.Atoi(dimPart); err != nil || ref.dim < 1 {
			return indexRef{}, fmt.Errorf("index %q: bad range: %w", s, ErrForm)
		}
	}
	return ref, nil
}

// monomialBuilder infers the range of every free index from where it is
// used: dofs of an argument, components of its element or directions of
// the cell.
type monomialBuilder struct {
	dims map[indexKey]int
	refs map[string]indexRef
}

func (b *monomialBuilder) use(s string, dim int) error {
	ref, err := parseIndex(s)
	if err != nil {
		return err
	}
	b.refs[s] = ref
	if ref.kind == tensor.Fixed {
		if dim > 0 && ref.value >= dim {
			return fmt.Errorf("fixed index %d out of range %d: %w", ref.value, dim, ErrForm)
		}
		return nil
	}
	if ref.dim > 0 {
		if dim > 0 && dim != ref.dim {
			return fmt.Errorf("index %s has range %d, used with range %d: %w", s, ref.dim, dim, ErrForm)
		}
		dim = ref.dim
	}
	if dim == 0 {
		return nil
	}
	key := indexKey{ref.kind, ref.id}
	if d, ok := b.dims[key]; ok && d != dim {
		return fmt.Errorf("index %s used with ranges %d and %d: %w", s, d, dim, ErrForm)
	}
	b.dims[key] = dim
	return nil
}

func (b *monomialBuilder) index(s string) (tensor.MonomialIndex, error) {
	ref := b.refs[s]
	if ref.kind == tensor.Fixed {
		return tensor.FixedIndex(ref.value), nil
	}
	dim, ok := b.dims[indexKey{ref.kind, ref.id}]
	if !ok {
		return tensor.MonomialIndex{}, fmt.Errorf("range of index %s unknown, write %s:<range>: %w", s, s, ErrForm)
	}
	return tensor.NewIndex(ref.kind, ref.id, dim), nil
}

func (b *monomialBuilder) indices(ss []string) ([]tensor.MonomialIndex, error) {
	out := make([]tensor.MonomialIndex, len(ss))
	for k, s := range ss {
		var err error
		if out[k], err = b.index(s); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (ms MonomialSpec) build(elements map[string]element.Element) (*tensor.Monomial, element.CellType, error) {
	if len(ms.Arguments) == 0 {
		return nil, 0, fmt.Errorf("no arguments: %w", ErrForm)
	}
	b := &monomialBuilder{dims: make(map[indexKey]int), refs: make(map[string]indexRef)}

	var cell element.CellType
	args := make([]element.Element, len(ms.Arguments))
	for k, as := range ms.Arguments {
		el, ok := elements[as.Element]
		if !ok {
			return nil, 0, fmt.Errorf("argument %d: unknown element %q: %w", k, as.Element, ErrForm)
		}
		if k == 0 {
			cell = el.Cell()
		} else if el.Cell() != cell {
			return nil, 0, fmt.Errorf("argument %d on %s, expected %s: %w", k, el.Cell(), cell, ErrForm)
		}
		args[k] = el
	}
	dim := int(cell.Dimension())

	// Ranges
	for k, as := range ms.Arguments {
		n := args[k].SpaceDimension()
		if as.Restriction != "" {
			n *= 2
		}
		if err := b.use(as.Index, n); err != nil {
			return nil, 0, err
		}
		if len(as.Components) > 0 && args[k].ValueSize() == 1 {
			return nil, 0, fmt.Errorf("argument %d: components of scalar element %s: %w", k, args[k], ErrForm)
		}
		for _, c := range as.Components {
			if err := b.use(c, args[k].ValueSize()); err != nil {
				return nil, 0, err
			}
		}
		for _, d := range as.Derivatives {
			if err := b.use(d, dim); err != nil {
				return nil, 0, err
			}
		}
	}
	for _, ts := range ms.Transforms {
		if err := b.use(ts.Index0, dim); err != nil {
			return nil, 0, err
		}
		if err := b.use(ts.Index1, dim); err != nil {
			return nil, 0, err
		}
	}
	for _, cs := range ms.Coefficients {
		if err := b.use(cs.Index, 0); err != nil {
			return nil, 0, err
		}
	}

	m := &tensor.Monomial{Float: 1}
	if ms.Float != nil {
		m.Float = *ms.Float
	}
	r, err := tensor.ParseRestriction(ms.Determinant.Restriction)
	if err != nil {
		return nil, 0, err
	}
	m.Determinant = tensor.Determinant{Power: ms.Determinant.Power, Restriction: r}

	for k, as := range ms.Arguments {
		arg := tensor.Argument{Element: args[k]}
		if arg.Index, err = b.index(as.Index); err != nil {
			return nil, 0, err
		}
		if arg.Components, err = b.indices(as.Components); err != nil {
			return nil, 0, err
		}
		if arg.Derivatives, err = b.indices(as.Derivatives); err != nil {
			return nil, 0, err
		}
		if arg.Restriction, err = tensor.ParseRestriction(as.Restriction); err != nil {
			return nil, 0, err
		}
		m.Arguments = append(m.Arguments, arg)
	}
	for _, ts := range ms.Transforms {
		var t tensor.Transform
		switch strings.ToUpper(ts.Kind) {
		case "J":
			t.Kind = tensor.J
		case "JINV", "K":
			t.Kind = tensor.JINV
		default:
			return nil, 0, fmt.Errorf("unknown transform %q: %w", ts.Kind, ErrForm)
		}
		if t.Index0, err = b.index(ts.Index0); err != nil {
			return nil, 0, err
		}
		if t.Index1, err = b.index(ts.Index1); err != nil {
			return nil, 0, err
		}
		if t.Restriction, err = tensor.ParseRestriction(ts.Restriction); err != nil {
			return nil, 0, err
		}
		m.Transforms = append(m.Transforms, t)
	}
	for _, cs := range ms.Coefficients {
		if cs.Number < 0 {
			return nil, 0, fmt.Errorf("negative coefficient number %d: %w", cs.Number, ErrForm)
		}
		idx, err := b.index(cs.Index)
		if err != nil {
			return nil, 0, err
		}
		m.Coefficients = append(m.Coefficients, tensor.Coefficient{Number: cs.Number, Index: idx})
	}
	return m, cell, nil
}
