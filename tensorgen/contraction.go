package tensorgen

import (
	"fmt"
	"math"

	"github.com/augustjohansson/ffcx/codegen"
	"github.com/augustjohansson/ffcx/tensor"
)

// entryFunc returns the expressions whose sum is entry a of the geometry
// tensor of term j
type entryFunc func(j int, gk *tensor.GeometryTensor, a []int) []codegen.Expr

// contract generates the element tensor for one list of terms. A plan on the
// first term selects the optimized contraction regardless of level.
func (ctx *Context) contract(terms []tensor.Term, level Level) ([]codegen.Stmt, error) {
	if len(terms) == 0 {
		return nil, ErrNoTerms
	}
	if terms[0].Plan != nil {
		return ctx.contractOptimized(terms)
	}
	switch level {
	case Expanded:
		return ctx.contractStandard(terms, ctx.expanded), nil
	case Grouped:
		return ctx.contractStandard(terms, ctx.grouped), nil
	case Declared:
		return ctx.contractStandard(terms, ctx.declared), nil
	case Looped, Guarded, QuadratureLoop:
		return ctx.contractLooped(terms, level >= Guarded, level == QuadratureLoop), nil
	}
	return nil, fmt.Errorf("%d: %w", int(level), ErrLevel)
}

// geometry generates the geometry tensor code matching contract
func (ctx *Context) geometry(terms []tensor.Term, level Level) []codegen.Stmt {
	if len(terms) > 0 && terms[0].Plan != nil {
		return ctx.declareGeometry(terms)
	}
	switch level {
	case Declared:
		return ctx.declareGeometry(terms)
	case Looped, Guarded, QuadratureLoop:
		return ctx.fillGeometry(terms, level == QuadratureLoop)
	}
	ctx.JSet[codegen.ScaleFactorName] = true
	return nil
}

func (ctx *Context) expanded(j int, gk *tensor.GeometryTensor, a []int) []codegen.Expr {
	ctx.GSet[codegen.GeometryTensorName(j, a)] = true
	return ctx.expandedEntry(gk, a)
}

func (ctx *Context) grouped(j int, gk *tensor.GeometryTensor, a []int) []codegen.Expr {
	ctx.GSet[codegen.GeometryTensorName(j, a)] = true
	return []codegen.Expr{ctx.geometryEntry(gk, a, nil)}
}

func (ctx *Context) declared(j int, _ *tensor.GeometryTensor, a []int) []codegen.Expr {
	name := codegen.GeometryTensorName(j, a)
	ctx.GSet[name] = true
	return []codegen.Expr{codegen.Name(name)}
}

// contractStandard computes every entry of the element tensor as the inner
// product of the reference tensor row with the geometry tensor, skipping
// reference tensor entries smaller than epsilon
func (ctx *Context) contractStandard(terms []tensor.Term, entry entryFunc) []codegen.Stmt {
	primary := terms[0].A0.Primary.Indices()
	out := make([]codegen.Stmt, 0, len(primary))
	for k, i := range primary {
		var (
			coefficients []float64
			entries      []codegen.Expr
		)
		for j, term := range terms {
			for _, a := range term.A0.Secondary.Indices() {
				a0 := term.A0.At(i, a)
				if ctx.negligible(a0) {
					continue
				}
				for _, e := range entry(j, term.GK, a) {
					coefficients = append(coefficients, a0)
					entries = append(entries, e)
				}
			}
		}
		out = append(out, ctx.lang.Assign(codegen.ElementTensor(k), ctx.lang.InnerProduct(coefficients, entries)))
	}
	return out
}

// contractOptimized emits the linear combinations of the contraction plans.
// With several terms each term computes partial entries A<i>_<j> that are
// summed at the end.
func (ctx *Context) contractOptimized(terms []tensor.Term) ([]codegen.Stmt, error) {
	partial := len(terms) > 1
	name := func(i, j int) codegen.Expr {
		if !partial {
			return codegen.ElementTensor(i)
		}
		return codegen.Name(fmt.Sprintf("A%d_%d", i, j))
	}

	var out []codegen.Stmt
	declared := make(map[string]bool)
	for j, term := range terms {
		if term.Plan == nil {
			return nil, fmt.Errorf("term %d: %w", j, ErrMissingPlan)
		}
		secondary := term.A0.Secondary.Indices()
		for _, e := range term.Plan {
			if e.OutputKind != tensor.ElementTensorEntry {
				return nil, fmt.Errorf("term %d writes operand kind %d: %w", j, e.OutputKind, ErrPlanOutput)
			}
			coefficients := make([]float64, 0, len(e.Operands))
			entries := make([]codegen.Expr, 0, len(e.Operands))
			for _, op := range e.Operands {
				coefficients = append(coefficients, op.Coefficient)
				if op.Kind == tensor.ElementTensorEntry {
					entries = append(entries, name(op.Index, j))
					continue
				}
				gk := codegen.GeometryTensorName(j, secondary[op.Index])
				ctx.GSet[gk] = true
				entries = append(entries, codegen.Name(gk))
			}
			value := ctx.lang.InnerProduct(coefficients, entries)
			if !partial {
				out = append(out, ctx.lang.Assign(name(e.Output, j), value))
				continue
			}
			lhs := name(e.Output, j).(codegen.Var).Name
			declared[lhs] = true
			out = append(out, ctx.lang.Declaration(lhs, value))
		}
		if partial {
			out = append(out, codegen.Blank{})
		}
	}
	if !partial {
		return out, nil
	}

	for i := 0; i < terms[0].A0.Primary.Size(); i++ {
		var parts []codegen.Expr
		for j := range terms {
			if p := name(i, j); declared[p.(codegen.Var).Name] {
				parts = append(parts, p)
			}
		}
		out = append(out, ctx.lang.Assign(codegen.ElementTensor(i), codegen.Add(parts...)))
	}
	return out, nil
}

var loopNames = []string{"r", "s", "t", "u"}

func loopName(n int) string {
	if n < len(loopNames) {
		return loopNames[n]
	}
	return fmt.Sprintf("r%d", n)
}

func quadratureLoopName(n int) string {
	if n == 0 {
		return "ip"
	}
	return fmt.Sprintf("ip%d", n)
}

func referenceTableName(j int) string { return fmt.Sprintf("A0_%d", j) }

// negligible reports reference tensor values that the contraction skips
func (ctx *Context) negligible(v float64) bool { return math.Abs(v) < ctx.eps }

// tableEntry is the static table value of A0[r][c], zero when negligible
func (ctx *Context) tableEntry(rt *tensor.ReferenceTensor, r, c int) float64 {
	if v := rt.A0.At(r, c); !ctx.negligible(v) {
		return v
	}
	return 0
}

// table returns the reference tensor of a term as a static array with one
// row per element tensor entry
func (ctx *Context) table(j int, rt *tensor.ReferenceTensor) codegen.ArrayDecl {
	rows, cols := rt.A0.Dims()
	values := make([]float64, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			values = append(values, ctx.tableEntry(rt, r, c))
		}
	}
	dims := rt.Secondary.Dims()
	if len(dims) == 0 {
		dims = []int{1}
	}
	return codegen.ArrayDecl{
		Static: true,
		Const:  true,
		Type:   "double",
		Name:   referenceTableName(j),
		Sizes:  append([]int{rows}, dims...),
		Values: values,
	}
}

// contractLooped reads reference tensors from static tables and loops over
// the secondary indices of range greater than one. Rows equal to an earlier
// row are copied and rows below epsilon are set to zero.
func (ctx *Context) contractLooped(terms []tensor.Term, guard, bindQuadrature bool) []codegen.Stmt {
	rows := terms[0].A0.Primary.Size()
	zero := make([][]bool, len(terms))
	for j, term := range terms {
		zero[j] = make([]bool, rows)
		_, cols := term.A0.A0.Dims()
		for k := 0; k < rows; k++ {
			zero[j][k] = true
			for c := 0; c < cols && zero[j][k]; c++ {
				zero[j][k] = ctx.negligible(term.A0.A0.At(k, c))
			}
		}
	}
	sameRow := func(k, l int) bool {
		for _, term := range terms {
			_, cols := term.A0.A0.Dims()
			for c := 0; c < cols; c++ {
				if ctx.tableEntry(term.A0, k, c) != ctx.tableEntry(term.A0, l, c) {
					return false
				}
			}
		}
		return true
	}

	used := make([]bool, len(terms))
	var body []codegen.Stmt
	for k := 0; k < rows; k++ {
		lhs := codegen.ElementTensor(k)
		copied := false
		for l := 0; l < k && !copied; l++ {
			if sameRow(k, l) {
				body = append(body, ctx.lang.Assign(lhs, codegen.ElementTensor(l)))
				copied = true
			}
		}
		if copied {
			continue
		}
		body = append(body, ctx.lang.Assign(lhs, codegen.Float(0)))
		for j, term := range terms {
			if zero[j][k] {
				continue
			}
			used[j] = true
			ctx.GSet[geometryArrayName(j)] = true
			body = append(body, ctx.accumulate(j, k, term.GK, guard, bindQuadrature))
		}
	}

	var out []codegen.Stmt
	for j, term := range terms {
		if used[j] {
			out = append(out, ctx.table(j, term.A0))
		}
	}
	return append(out, body...)
}

// accumulate emits A[k] += A0_j[k][a]*G_j[a] inside loops over a
func (ctx *Context) accumulate(j, k int, gk *tensor.GeometryTensor, guard, bindQuadrature bool) codegen.Stmt {
	l := newLayout(gk, bindQuadrature)
	dims := gk.Secondary.Dims()

	type loop struct {
		name  string
		upper int
	}
	var loops []loop
	index := make([]codegen.Expr, len(dims))
	loopCount, pointCount := 0, 0
	for p, d := range dims {
		switch {
		case l.quadrature[p]:
			name := quadratureLoopName(pointCount)
			pointCount++
			loops = append(loops, loop{name, d})
			index[p] = codegen.Name(name)
		case d > 1:
			name := loopName(loopCount)
			loopCount++
			loops = append(loops, loop{name, d})
			index[p] = codegen.Name(name)
		default:
			index[p] = codegen.Int(0)
		}
	}

	a0Index := []codegen.Expr{codegen.Int(k)}
	if len(dims) == 0 {
		a0Index = append(a0Index, codegen.Int(0))
	}
	a0 := codegen.Access{Name: referenceTableName(j), Indices: append(a0Index, index...)}

	gIndex := make([]codegen.Expr, 0, len(l.kept))
	for _, p := range l.kept {
		gIndex = append(gIndex, index[p])
	}
	if len(gIndex) == 0 {
		gIndex = append(gIndex, codegen.Int(0))
	}

	factors := []codegen.Expr{a0}
	for _, c := range gk.Coefficients {
		if c.Index.Type == tensor.Secondary && l.quadrature[c.Index.ID] {
			factors = append(factors, codegen.Coefficient(c.Number, index[c.Index.ID]))
		}
	}
	factors = append(factors, codegen.Access{Name: geometryArrayName(j), Indices: gIndex})

	var stmt codegen.Stmt = codegen.Assign{LHS: codegen.ElementTensor(k), Op: "+=", RHS: codegen.Mul(factors...)}
	if guard {
		stmt = codegen.If{
			Cond: codegen.Compare{
				Op: ">=",
				A:  codegen.Call{Func: "abs", Args: []codegen.Expr{a0}},
				B:  codegen.Float(ctx.eps),
			},
			Body: []codegen.Stmt{stmt},
		}
	}
	for n := len(loops) - 1; n >= 0; n-- {
		stmt = codegen.For{Var: loops[n].name, Upper: loops[n].upper, Body: []codegen.Stmt{stmt}}
	}
	return stmt
}
