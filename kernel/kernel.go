// Package kernel executes generated tabulate_tensor bodies directly from
// their syntax tree, so that generated code can be checked numerically
// without a C compiler.
package kernel

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/augustjohansson/ffcx/codegen"
)

// ErrRuntime reports generated code that cannot execute
var ErrRuntime = errors.New("kernel runtime error")

// Inputs are the arguments of one tabulate_tensor call. Coordinates holds
// the flat vertex coordinates of the cell, or of both cells of an interior
// facet. Facets holds facet, or facet_0 and facet_1.
type Inputs struct {
	W           [][]float64
	Coordinates [][]float64
	Facets      []int
}

type array struct {
	dims []int
	data []float64
}

// Machine holds the state of one execution
type Machine struct {
	scalars map[string]float64
	arrays  map[string]*array
	w       [][]float64
}

// NewMachine binds the inputs and an element tensor of the given size
func NewMachine(size int, in Inputs) *Machine {
	m := &Machine{
		scalars: make(map[string]float64),
		arrays:  make(map[string]*array),
		w:       in.W,
	}
	m.arrays[codegen.ElementTensorName] = &array{dims: []int{size}, data: make([]float64, size)}
	for k, x := range in.Coordinates {
		a := &array{dims: []int{len(x)}, data: append([]float64(nil), x...)}
		if k == 0 {
			m.arrays[codegen.CoordinatesName("")] = a
			m.arrays[codegen.CoordinatesName("+")] = a
		} else {
			m.arrays[codegen.CoordinatesName("-")] = a
		}
	}
	for k, f := range in.Facets {
		if k == 0 {
			m.scalars[codegen.FacetName("")] = float64(f)
			m.scalars[codegen.FacetName("+")] = float64(f)
		} else {
			m.scalars[codegen.FacetName("-")] = float64(f)
		}
	}
	return m
}

// Run executes stmts and returns the element tensor
func Run(stmts []codegen.Stmt, size int, in Inputs) ([]float64, error) {
	m := NewMachine(size, in)
	if err := m.Exec(stmts); err != nil {
		return nil, err
	}
	return m.arrays[codegen.ElementTensorName].data, nil
}

// Scalar returns the value of a declared scalar
func (m *Machine) Scalar(name string) (float64, bool) {
	v, ok := m.scalars[name]
	return v, ok
}

// Exec executes statements in order
func (m *Machine) Exec(stmts []codegen.Stmt) error {
	for _, s := range stmts {
		if err := m.exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (m *Machine) exec(s codegen.Stmt) error {
	switch n := s.(type) {
	case codegen.Comment, codegen.Blank:
		return nil
	case codegen.Decl:
		v, err := m.eval(n.Value)
		if err != nil {
			return fmt.Errorf("%s: %w", n.Name, err)
		}
		m.scalars[n.Name] = v
	case codegen.ArrayDecl:
		size := 1
		for _, d := range n.Sizes {
			size *= d
		}
		a := &array{dims: append([]int(nil), n.Sizes...), data: make([]float64, size)}
		if n.Values != nil {
			if len(n.Values) != size {
				return fmt.Errorf("%s: %d initial values for %d entries: %w", n.Name, len(n.Values), size, ErrRuntime)
			}
			copy(a.data, n.Values)
		}
		m.arrays[n.Name] = a
	case codegen.Assign:
		return m.assign(n)
	case codegen.For:
		for i := n.Lower; i < n.Upper; i++ {
			m.scalars[n.Var] = float64(i)
			if err := m.Exec(n.Body); err != nil {
				return err
			}
		}
	case codegen.If:
		c, err := m.eval(n.Cond)
		if err != nil {
			return err
		}
		if c != 0 {
			return m.Exec(n.Body)
		}
	case codegen.Switch:
		v, ok := m.scalars[n.Var]
		if !ok {
			return fmt.Errorf("switch on undefined %s: %w", n.Var, ErrRuntime)
		}
		c := int(v)
		if c < 0 || c >= len(n.Cases) {
			return fmt.Errorf("switch %s = %d without case: %w", n.Var, c, ErrRuntime)
		}
		return m.Exec(n.Cases[c])
	default:
		return fmt.Errorf("unknown statement %T: %w", s, ErrRuntime)
	}
	return nil
}

func (m *Machine) assign(n codegen.Assign) error {
	v, err := m.eval(n.RHS)
	if err != nil {
		return err
	}
	update := func(old float64) (float64, error) {
		switch n.Op {
		case "=":
			return v, nil
		case "+=":
			return old + v, nil
		}
		return 0, fmt.Errorf("unknown assignment %q: %w", n.Op, ErrRuntime)
	}
	switch lhs := n.LHS.(type) {
	case codegen.Var:
		old, ok := m.scalars[lhs.Name]
		if !ok {
			return fmt.Errorf("assignment to undeclared %s: %w", lhs.Name, ErrRuntime)
		}
		m.scalars[lhs.Name], err = update(old)
		return err
	case codegen.Access:
		a, k, err := m.element(lhs)
		if err != nil {
			return err
		}
		a.data[k], err = update(a.data[k])
		return err
	}
	return fmt.Errorf("cannot assign to %T: %w", n.LHS, ErrRuntime)
}

func (m *Machine) element(e codegen.Access) (*array, int, error) {
	ix := make([]int, len(e.Indices))
	for k, x := range e.Indices {
		v, err := m.eval(x)
		if err != nil {
			return nil, 0, err
		}
		ix[k] = int(math.Round(v))
	}
	a, ok := m.arrays[e.Name]
	if !ok {
		return nil, 0, fmt.Errorf("undefined array %s: %w", e.Name, ErrRuntime)
	}
	if len(ix) != len(a.dims) {
		return nil, 0, fmt.Errorf("%s takes %d subscripts, got %d: %w", e.Name, len(a.dims), len(ix), ErrRuntime)
	}
	flat := 0
	for k, i := range ix {
		if i < 0 || i >= a.dims[k] {
			return nil, 0, fmt.Errorf("%s%v out of range %v: %w", e.Name, ix, a.dims, ErrRuntime)
		}
		flat = flat*a.dims[k] + i
	}
	return a, flat, nil
}

func (m *Machine) coefficient(e codegen.Access) (float64, error) {
	if len(e.Indices) != 2 {
		return 0, fmt.Errorf("%s takes 2 subscripts: %w", e.Name, ErrRuntime)
	}
	n, err := m.eval(e.Indices[0])
	if err != nil {
		return 0, err
	}
	k, err := m.eval(e.Indices[1])
	if err != nil {
		return 0, err
	}
	i, j := int(n), int(k)
	if i < 0 || i >= len(m.w) || j < 0 || j >= len(m.w[i]) {
		return 0, fmt.Errorf("w[%d][%d] out of range: %w", i, j, ErrRuntime)
	}
	return m.w[i][j], nil
}

func (m *Machine) evalAll(es []codegen.Expr) ([]float64, error) {
	out := make([]float64, len(es))
	for k, e := range es {
		v, err := m.eval(e)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func (m *Machine) eval(e codegen.Expr) (float64, error) {
	switch n := e.(type) {
	case codegen.Literal:
		return n.Value, nil
	case codegen.IntLit:
		return float64(n.Value), nil
	case codegen.Var:
		v, ok := m.scalars[n.Name]
		if !ok {
			return 0, fmt.Errorf("undefined %s: %w", n.Name, ErrRuntime)
		}
		return v, nil
	case codegen.Access:
		if n.Name == codegen.CoefficientName {
			return m.coefficient(n)
		}
		a, k, err := m.element(n)
		if err != nil {
			return 0, err
		}
		return a.data[k], nil
	case codegen.Sum:
		vs, err := m.evalAll(n.Terms)
		if err != nil {
			return 0, err
		}
		return floats.Sum(vs), nil
	case codegen.Product:
		vs, err := m.evalAll(n.Factors)
		if err != nil {
			return 0, err
		}
		return floats.Prod(vs), nil
	case codegen.Sub:
		vs, err := m.evalAll([]codegen.Expr{n.A, n.B})
		if err != nil {
			return 0, err
		}
		return vs[0] - vs[1], nil
	case codegen.Div:
		vs, err := m.evalAll([]codegen.Expr{n.A, n.B})
		if err != nil {
			return 0, err
		}
		return vs[0] / vs[1], nil
	case codegen.Neg:
		v, err := m.eval(n.X)
		return -v, err
	case codegen.Group:
		return m.eval(n.X)
	case codegen.Call:
		vs, err := m.evalAll(n.Args)
		if err != nil {
			return 0, err
		}
		return call(n.Func, vs)
	case codegen.Compare:
		vs, err := m.evalAll([]codegen.Expr{n.A, n.B})
		if err != nil {
			return 0, err
		}
		return compare(n.Op, vs[0], vs[1])
	}
	return 0, fmt.Errorf("unknown expression %T: %w", e, ErrRuntime)
}

func call(name string, args []float64) (float64, error) {
	switch {
	case name == "abs" && len(args) == 1:
		return math.Abs(args[0]), nil
	case name == "sqrt" && len(args) == 1:
		return math.Sqrt(args[0]), nil
	case name == "pow" && len(args) == 2:
		return math.Pow(args[0], args[1]), nil
	}
	return 0, fmt.Errorf("%s with %d arguments: %w", name, len(args), ErrRuntime)
}

func compare(op string, a, b float64) (float64, error) {
	var r bool
	switch op {
	case ">":
		r = a > b
	case "<":
		r = a < b
	case ">=":
		r = a >= b
	case "<=":
		r = a <= b
	default:
		return 0, fmt.Errorf("unknown comparison %q: %w", op, ErrRuntime)
	}
	if r {
		return 1, nil
	}
	return 0, nil
}
