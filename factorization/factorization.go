// Package factorization splits a scalar expression graph into argument
// factors and argument free coefficients, so that
//
//	root == Σ_key FV[IM[key]] · Π_{j∈key} AV[j]
package factorization

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/augustjohansson/ffcx/symbolic"
)

var (
	ErrMixedRank           = errors.New("summands have different argument rank")
	ErrArgumentDivisor     = errors.New("cannot divide by an argument dependent expression")
	ErrUnsupportedOperator = errors.New("operator with argument dependent operands is not supported")
)

// Result of a factorization. AV holds the distinct argument terminals in
// canonical order, FV the distinct argument free factors and IM maps each
// argument key (indices into AV) to an index into FV. All keys share one
// rank.
type Result struct {
	AV []symbolic.Expr
	FV []symbolic.Expr
	IM map[ArgKey]int
}

// factors of one vertex, nil when the vertex does not depend on arguments
type factors map[ArgKey]int

type operand struct {
	f  factors
	fi int
}

type collector struct {
	g     *symbolic.Graph
	av    *symbolic.Table[symbolic.Expr]
	sv2av map[int]int
	fv    *symbolic.Table[symbolic.Expr]
	one   int
	f     []factors
	sv2fv []int
}

// FromExpr factors an expression tree
func FromExpr(e symbolic.Expr) (*Result, error) {
	return Compute(symbolic.BuildGraph(e))
}

// Compute factors the root of g in one pass over its vertices
func Compute(g *symbolic.Graph) (*Result, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	c := newCollector(g)
	for i, v := range g.Vertices {
		if err := c.visit(i); err != nil {
			return nil, fmt.Errorf("vertex %d (%s): %w", i, v, err)
		}
	}
	res := c.result()
	log.Debugf("factorization: %d argument terminals, %d factors, %d keys",
		len(res.AV), len(res.FV), len(res.IM))
	return res, nil
}

func newCollector(g *symbolic.Graph) *collector {
	c := &collector{
		g:     g,
		av:    symbolic.NewTable[symbolic.Expr](),
		sv2av: make(map[int]int),
		fv:    symbolic.NewTable[symbolic.Expr](),
		f:     make([]factors, len(g.Vertices)),
		sv2fv: make([]int, len(g.Vertices)),
	}
	for i := range c.sv2fv {
		c.sv2fv[i] = -1
	}

	var args []int
	for i, v := range g.Vertices {
		if len(g.Dependencies[i]) == 0 && symbolic.IsArgument(v) {
			args = append(args, i)
		}
	}
	slices.SortStableFunc(args, func(a, b int) int {
		ta := g.Vertices[a].(symbolic.ArgumentTerminal)
		tb := g.Vertices[b].(symbolic.ArgumentTerminal)
		switch {
		case ta.Less(tb):
			return -1
		case tb.Less(ta):
			return 1
		}
		return 0
	})
	for _, i := range args {
		c.sv2av[i] = c.av.Insert(g.Vertices[i])
	}
	if len(args) > 0 {
		c.one = c.fv.Insert(symbolic.Num(1))
	}
	return c
}

func (c *collector) visit(i int) error {
	v := c.g.Vertices[i]
	deps := c.g.Dependencies[i]
	if len(deps) == 0 {
		if ai, ok := c.sv2av[i]; ok {
			c.f[i] = factors{NewArgKey(ai): c.one}
		} else {
			c.sv2fv[i] = c.fv.Insert(v)
		}
		return nil
	}
	if c.plain(deps) {
		c.sv2fv[i] = c.fv.Insert(v)
		return nil
	}

	var (
		acc operand
		err error
	)
	switch v.(type) {
	case *symbolic.Sum:
		acc = c.operand(deps[0])
		for _, j := range deps[1:] {
			if acc, err = c.add(acc, c.operand(j)); err != nil {
				return err
			}
		}
	case *symbolic.Product:
		acc = c.operand(deps[0])
		for _, j := range deps[1:] {
			acc = c.mul(acc, c.operand(j))
		}
	case *symbolic.Division:
		if acc, err = c.div(c.operand(deps[0]), c.operand(deps[1])); err != nil {
			return err
		}
	case *symbolic.Power, *symbolic.MathFunction:
		return fmt.Errorf("%T: %w", v, ErrUnsupportedOperator)
	default:
		return fmt.Errorf("unexpected node %T with operands", v)
	}
	c.f[i] = acc.f
	return nil
}

func (c *collector) plain(deps []int) bool {
	for _, j := range deps {
		if c.f[j] != nil {
			return false
		}
	}
	return true
}

func (c *collector) operand(j int) operand {
	return operand{f: c.f[j], fi: c.sv2fv[j]}
}

func (c *collector) factor(fi int) symbolic.Expr { return c.fv.At(fi) }

// add merges the keys of two summands; f*arg + g*arg = (f+g)*arg
func (c *collector) add(a, b operand) (operand, error) {
	if a.f == nil || b.f == nil {
		return operand{}, fmt.Errorf("argument free summand: %w", ErrMixedRank)
	}
	out := make(factors, len(a.f)+len(b.f))
	rank := -1
	for _, k := range unionKeys(a.f, b.f) {
		if rank < 0 {
			rank = k.Len()
		} else if k.Len() != rank {
			return operand{}, fmt.Errorf("keys %s: %w", k, ErrMixedRank)
		}
		fa, inA := a.f[k]
		fb, inB := b.f[k]
		switch {
		case inA && inB:
			out[k] = c.fv.Insert(symbolic.Add(c.factor(fa), c.factor(fb)))
		case inA:
			out[k] = fa
		default:
			out[k] = fb
		}
	}
	return operand{f: out, fi: -1}, nil
}

func (c *collector) mul(a, b operand) operand {
	switch {
	case a.f == nil && b.f == nil:
		return operand{fi: c.fv.Insert(symbolic.Mul(c.factor(a.fi), c.factor(b.fi)))}
	case a.f == nil:
		out := make(factors, len(b.f))
		for _, k := range sortedKeys(b.f) {
			out[k] = c.fv.Insert(symbolic.Mul(c.factor(a.fi), c.factor(b.f[k])))
		}
		return operand{f: out, fi: -1}
	case b.f == nil:
		out := make(factors, len(a.f))
		for _, k := range sortedKeys(a.f) {
			out[k] = c.fv.Insert(symbolic.Mul(c.factor(a.f[k]), c.factor(b.fi)))
		}
		return operand{f: out, fi: -1}
	}
	out := make(factors, len(a.f)*len(b.f))
	for _, k0 := range sortedKeys(a.f) {
		for _, k1 := range sortedKeys(b.f) {
			key := k0.Merge(k1)
			p := c.fv.Insert(symbolic.Mul(c.factor(a.f[k0]), c.factor(b.f[k1])))
			if prev, ok := out[key]; ok {
				p = c.fv.Insert(symbolic.Add(c.factor(prev), c.factor(p)))
			}
			out[key] = p
		}
	}
	return operand{f: out, fi: -1}
}

func (c *collector) div(num, den operand) (operand, error) {
	if den.f != nil {
		return operand{}, ErrArgumentDivisor
	}
	out := make(factors, len(num.f))
	for _, k := range sortedKeys(num.f) {
		out[k] = c.fv.Insert(symbolic.Div(c.factor(num.f[k]), c.factor(den.fi)))
	}
	return operand{f: out, fi: -1}, nil
}

func (c *collector) result() *Result {
	root := c.g.Root()
	res := &Result{
		AV: slices.Clone(c.av.Entries()),
		FV: slices.Clone(c.fv.Entries()),
		IM: make(map[ArgKey]int),
	}
	if c.f[root] == nil {
		res.AV = []symbolic.Expr{}
		res.IM[NewArgKey()] = c.sv2fv[root]
		return res
	}
	for k, fi := range c.f[root] {
		res.IM[k] = fi
	}
	return res
}

// Keys returns the argument keys in ascending order
func (r *Result) Keys() []ArgKey { return sortedKeys(r.IM) }

// Rank is the common length of the argument keys
func (r *Result) Rank() int {
	for k := range r.IM {
		return k.Len()
	}
	return 0
}

// Expr reassembles the factored sum, multiplying each factor by its
// arguments left to right and summing the monomials in key order
func (r *Result) Expr() symbolic.Expr {
	sum := symbolic.Num(0)
	for _, k := range r.Keys() {
		f := r.FV[r.IM[k]]
		for _, ai := range k.Indices() {
			f = symbolic.Mul(f, r.AV[ai])
		}
		sum = symbolic.Add(sum, f)
	}
	return sum
}

// Rebuild returns a scalar graph equivalent to the factored expression
func Rebuild(r *Result) *symbolic.Graph {
	return symbolic.BuildGraph(r.Expr())
}

func (r *Result) String() string {
	var sb strings.Builder
	for i, a := range r.AV {
		fmt.Fprintf(&sb, "AV[%d] = %s\n", i, a)
	}
	for i, f := range r.FV {
		fmt.Fprintf(&sb, "FV[%d] = %s\n", i, f)
	}
	for _, k := range r.Keys() {
		fmt.Fprintf(&sb, "IM%s = FV[%d]\n", k, r.IM[k])
	}
	return sb.String()
}

func sortedKeys[M ~map[ArgKey]int](m M) []ArgKey {
	keys := make([]ArgKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

func unionKeys(a, b factors) []ArgKey {
	union := make(factors, len(a)+len(b))
	for k := range a {
		union[k] = 0
	}
	for k := range b {
		union[k] = 0
	}
	return sortedKeys(union)
}
