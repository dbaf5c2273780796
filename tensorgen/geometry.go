package tensorgen

import (
	"fmt"

	"github.com/augustjohansson/ffcx/codegen"
	"github.com/augustjohansson/ffcx/tensor"
)

// coefficient references w[n][k] for secondary tuple a and external tuple b
func coefficient(c tensor.Coefficient, a, b []int) codegen.Expr {
	return codegen.Coefficient(c.Number, codegen.Int(c.Index.Eval(nil, a, nil, b)))
}

func hasExternal(t tensor.Transform) bool {
	return t.Index0.Type == tensor.External || t.Index1.Type == tensor.External
}

// transform references one Jacobian entry and records it as used
func (ctx *Context) transform(t tensor.Transform, a, b []int) codegen.Expr {
	inverse := t.Kind == tensor.JINV
	i, j := t.Index0.Eval(nil, a, nil, b), t.Index1.Eval(nil, a, nil, b)
	r := t.Restriction.String()
	ctx.JSet[codegen.TransformName(inverse, i, j, r)] = true
	return ctx.lang.Transform(inverse, i, j, r)
}

// outside returns the factors of entry a that do not depend on an external
// index. Coefficients indexed by an omitted secondary index are left out.
func (ctx *Context) outside(gk *tensor.GeometryTensor, a []int, omit map[int]bool) []codegen.Expr {
	var factors []codegen.Expr
	for _, c := range gk.Coefficients {
		if c.Index.Type == tensor.External {
			continue
		}
		if c.Index.Type == tensor.Secondary && omit[c.Index.ID] {
			continue
		}
		factors = append(factors, coefficient(c, a, nil))
	}
	for _, t := range gk.Transforms {
		if !hasExternal(t) {
			factors = append(factors, ctx.transform(t, a, nil))
		}
	}
	return factors
}

// inside returns the factors of entry a that depend on external tuple b
func (ctx *Context) inside(gk *tensor.GeometryTensor, a, b []int) []codegen.Expr {
	var factors []codegen.Expr
	for _, c := range gk.Coefficients {
		if c.Index.Type == tensor.External {
			factors = append(factors, coefficient(c, a, b))
		}
	}
	for _, t := range gk.Transforms {
		if hasExternal(t) {
			factors = append(factors, ctx.transform(t, a, b))
		}
	}
	return factors
}

// scale returns detJ^p (when p is not zero) and the scale factor
func (ctx *Context) scale(d tensor.Determinant) []codegen.Expr {
	ctx.JSet[codegen.ScaleFactorName] = true
	det := codegen.Name(codegen.ScaleFactorName)
	if d.Power == 0 {
		return []codegen.Expr{det}
	}
	name := codegen.DetJName(d.Restriction.String())
	ctx.JSet[name] = true
	detJ := codegen.Name(name)
	switch d.Power {
	case 1:
		return []codegen.Expr{detJ, det}
	case -1:
		return []codegen.Expr{codegen.Div{A: codegen.Float(1), B: detJ}, det}
	}
	return []codegen.Expr{codegen.Call{Func: "pow", Args: []codegen.Expr{detJ, codegen.Int(d.Power)}}, det}
}

// geometryEntry returns
//
//	detJ^p * det * outside(a) * (sum_b inside(a, b))
//
// with a literal 1.0 factor elided
func (ctx *Context) geometryEntry(gk *tensor.GeometryTensor, a []int, omit map[int]bool) codegen.Expr {
	factors := ctx.scale(gk.Determinant)
	factors = append(factors, ctx.outside(gk, a, omit)...)
	if gk.External.Rank() == 0 {
		factors = append(factors, ctx.inside(gk, a, nil)...)
		return codegen.Mul(factors...)
	}
	external := gk.External.Indices()
	terms := make([]codegen.Expr, len(external))
	for k, b := range external {
		terms[k] = codegen.Mul(ctx.inside(gk, a, b)...)
	}
	return codegen.Mul(append(factors, codegen.Group{X: codegen.Add(terms...)})...)
}

// expandedEntry returns entry a as one product per external tuple
func (ctx *Context) expandedEntry(gk *tensor.GeometryTensor, a []int) []codegen.Expr {
	external := gk.External.Indices()
	products := make([]codegen.Expr, len(external))
	for k, b := range external {
		factors := ctx.scale(gk.Determinant)
		factors = append(factors, ctx.outside(gk, a, nil)...)
		factors = append(factors, ctx.inside(gk, a, b)...)
		products[k] = codegen.Mul(factors...)
	}
	return products
}

// declareGeometry declares the geometry tensor entries read by the
// contraction as constants
func (ctx *Context) declareGeometry(terms []tensor.Term) []codegen.Stmt {
	var out []codegen.Stmt
	for j, term := range terms {
		for _, a := range term.GK.Secondary.Indices() {
			name := codegen.GeometryTensorName(j, a)
			if !ctx.GSet[name] {
				continue
			}
			out = append(out, ctx.lang.Declaration(name, ctx.geometryEntry(term.GK, a, nil)))
		}
	}
	ctx.JSet[codegen.ScaleFactorName] = true
	return out
}

func geometryArrayName(j int) string { return fmt.Sprintf("G%d", j) }

// layout describes how a term is stored for looped contraction. Kept lists
// the secondary positions that index the geometry array; quadrature
// positions are bound to the point loop and their coefficients multiply the
// reference tensor entry instead of the geometry tensor.
type layout struct {
	kept       []int
	quadrature map[int]bool
}

func newLayout(gk *tensor.GeometryTensor, bindQuadrature bool) layout {
	l := layout{quadrature: make(map[int]bool)}
	for p := 0; p < gk.Secondary.Rank(); p++ {
		if bindQuadrature && gk.IsQuadratureIndex(p) {
			l.quadrature[p] = true
		}
	}
	transformed := make(map[int]bool)
	for _, t := range gk.Transforms {
		for _, idx := range []tensor.MonomialIndex{t.Index0, t.Index1} {
			if idx.Type == tensor.Secondary {
				transformed[idx.ID] = true
			}
		}
	}
	for p := 0; p < gk.Secondary.Rank(); p++ {
		if !l.quadrature[p] || transformed[p] {
			l.kept = append(l.kept, p)
		}
	}
	return l
}

// sizes are the dimensions of the geometry array, [1] for a scalar
func (l layout) sizes(gk *tensor.GeometryTensor) []int {
	dims := gk.Secondary.Dims()
	if len(l.kept) == 0 {
		return []int{1}
	}
	out := make([]int, len(l.kept))
	for k, p := range l.kept {
		out[k] = dims[p]
	}
	return out
}

// fillGeometry declares one array per used term and assigns every entry
func (ctx *Context) fillGeometry(terms []tensor.Term, bindQuadrature bool) []codegen.Stmt {
	var out []codegen.Stmt
	for j, term := range terms {
		name := geometryArrayName(j)
		if !ctx.GSet[name] {
			continue
		}
		gk := term.GK
		l := newLayout(gk, bindQuadrature)
		sizes := l.sizes(gk)
		out = append(out, codegen.ArrayDecl{Type: "double", Name: name, Sizes: sizes})
		for _, r := range tensor.NewMultiIndex(tensor.Secondary, sizes).Indices() {
			a := make([]int, gk.Secondary.Rank())
			for k, p := range l.kept {
				a[p] = r[k]
			}
			out = append(out, ctx.lang.Assign(codegen.Index(name, r...), ctx.geometryEntry(gk, a, l.quadrature)))
		}
	}
	ctx.JSet[codegen.ScaleFactorName] = true
	return out
}
