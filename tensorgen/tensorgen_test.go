package tensorgen

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/augustjohansson/ffcx/codegen"
	"github.com/augustjohansson/ffcx/element"
	"github.com/augustjohansson/ffcx/kernel"
	"github.com/augustjohansson/ffcx/tensor"
)

func lagrange(t *testing.T, cell element.CellType, degree int) element.Element {
	t.Helper()
	el, err := element.New("Lagrange", cell, degree)
	require.NoError(t, err)
	return el
}

func massMonomial(el element.Element) *tensor.Monomial {
	n := el.SpaceDimension()
	return &tensor.Monomial{Float: 1, Arguments: []tensor.Argument{
		{Element: el, Index: tensor.NewIndex(tensor.Primary, 0, n)},
		{Element: el, Index: tensor.NewIndex(tensor.Primary, 1, n)},
	}}
}

// weightedMassMonomial is 0.5 * detJ * w0[a] * w1[0] * phi_i0 * phi_i1 * phi_a
func weightedMassMonomial(el element.Element) *tensor.Monomial {
	n := el.SpaceDimension()
	a := tensor.NewIndex(tensor.Secondary, 0, n)
	return &tensor.Monomial{
		Float:       0.5,
		Determinant: tensor.Determinant{Power: 1},
		Coefficients: []tensor.Coefficient{
			{Number: 0, Index: a},
			{Number: 1, Index: tensor.FixedIndex(0)},
		},
		Arguments: []tensor.Argument{
			{Element: el, Index: tensor.NewIndex(tensor.Primary, 0, n)},
			{Element: el, Index: tensor.NewIndex(tensor.Primary, 1, n)},
			{Element: el, Index: a},
		},
	}
}

// stiffnessMonomial is dphi_i0/dX_a0 * dphi_i1/dX_a1 * K_a0b0 * K_a1b0
func stiffnessMonomial(el element.Element) *tensor.Monomial {
	n := el.SpaceDimension()
	d := int(el.Cell().Dimension())
	a0, a1 := tensor.NewIndex(tensor.Secondary, 0, d), tensor.NewIndex(tensor.Secondary, 1, d)
	b0 := tensor.NewIndex(tensor.External, 0, d)
	return &tensor.Monomial{
		Float: 1,
		Transforms: []tensor.Transform{
			{Kind: tensor.JINV, Index0: a0, Index1: b0},
			{Kind: tensor.JINV, Index0: a1, Index1: b0},
		},
		Arguments: []tensor.Argument{
			{Element: el, Index: tensor.NewIndex(tensor.Primary, 0, n), Derivatives: []tensor.MonomialIndex{a0}},
			{Element: el, Index: tensor.NewIndex(tensor.Primary, 1, n), Derivatives: []tensor.MonomialIndex{a1}},
		},
	}
}

// sourceMonomial is sum_a w0[a] q_a * phi_i0 with q a quadrature element
func sourceMonomial(t *testing.T, el element.Element) *tensor.Monomial {
	t.Helper()
	qe, err := element.NewQuadratureElement(el.Cell(), 2)
	require.NoError(t, err)
	a := tensor.NewIndex(tensor.Secondary, 0, qe.SpaceDimension())
	return &tensor.Monomial{
		Float:        1,
		Coefficients: []tensor.Coefficient{{Number: 0, Index: a}},
		Arguments: []tensor.Argument{
			{Element: el, Index: tensor.NewIndex(tensor.Primary, 0, el.SpaceDimension())},
			{Element: qe, Index: a},
		},
	}
}

// jumpMonomial is phi+_i0 * dphi-_i1/dX_a * K-_a0
func jumpMonomial(el element.Element) *tensor.Monomial {
	n := 2 * el.SpaceDimension()
	a := tensor.NewIndex(tensor.Secondary, 0, int(el.Cell().Dimension()))
	return &tensor.Monomial{
		Float: 1,
		Transforms: []tensor.Transform{
			{Kind: tensor.JINV, Index0: a, Index1: tensor.FixedIndex(0), Restriction: tensor.Minus},
		},
		Arguments: []tensor.Argument{
			{Element: el, Index: tensor.NewIndex(tensor.Primary, 0, n), Restriction: tensor.Plus},
			{Element: el, Index: tensor.NewIndex(tensor.Primary, 1, n), Derivatives: []tensor.MonomialIndex{a}, Restriction: tensor.Minus},
		},
	}
}

func computeIR(t *testing.T, ms []*tensor.Monomial, domain tensor.DomainType, cell element.CellType) *tensor.IntegralIR {
	t.Helper()
	ir, err := tensor.ComputeIntegralIR(ms, domain, cell, 0, 0)
	require.NoError(t, err)
	return ir
}

func run(t *testing.T, ir *tensor.IntegralIR, params Parameters, in kernel.Inputs) []float64 {
	t.Helper()
	code, err := GenerateIntegralCode(ir, "form", params)
	require.NoError(t, err)
	A, err := kernel.Run(code.Body, ir.TensorSize(), in)
	require.NoError(t, err, code.TabulateTensor)
	return A
}

func withLevel(l Level) Parameters {
	p := DefaultParameters()
	p.OptimizeLevel = l
	return p
}

var (
	triangle  = []float64{0, 0, 2, 1, 1, 3}
	triangle2 = []float64{2, 1, 1, 3, 3, 4}
	tet       = []float64{0, 0, 0, 2, 1, 0, 0, 1, 1, 1, 0, 3}
)

func TestLevelEquivalence(t *testing.T) {
	p1 := lagrange(t, element.Triangle, 1)
	p2 := lagrange(t, element.Triangle, 2)
	p1tet := lagrange(t, element.Tetrahedron, 1)

	tests := []struct {
		name string
		ir   *tensor.IntegralIR
		in   kernel.Inputs
	}{
		{"mass", computeIR(t, []*tensor.Monomial{massMonomial(p1)}, tensor.Cell, element.Triangle),
			kernel.Inputs{Coordinates: [][]float64{triangle}}},
		{"weighted mass", computeIR(t, []*tensor.Monomial{weightedMassMonomial(p1), massMonomial(p1)}, tensor.Cell, element.Triangle),
			kernel.Inputs{W: [][]float64{{1, -2, 0.5}, {3}}, Coordinates: [][]float64{triangle}}},
		{"stiffness P2", computeIR(t, []*tensor.Monomial{stiffnessMonomial(p2)}, tensor.Cell, element.Triangle),
			kernel.Inputs{Coordinates: [][]float64{triangle}}},
		{"stiffness tetrahedron", computeIR(t, []*tensor.Monomial{stiffnessMonomial(p1tet)}, tensor.Cell, element.Tetrahedron),
			kernel.Inputs{Coordinates: [][]float64{tet}}},
		{"quadrature source", computeIR(t, []*tensor.Monomial{sourceMonomial(t, p1)}, tensor.Cell, element.Triangle),
			kernel.Inputs{W: [][]float64{{1, 2, 3, 4, 5, 6}}, Coordinates: [][]float64{triangle}}},
		{"exterior facet", computeIR(t, []*tensor.Monomial{massMonomial(p1)}, tensor.ExteriorFacet, element.Triangle),
			kernel.Inputs{Coordinates: [][]float64{triangle}, Facets: []int{1}}},
		{"interior facet", computeIR(t, []*tensor.Monomial{jumpMonomial(p1)}, tensor.InteriorFacet, element.Triangle),
			kernel.Inputs{Coordinates: [][]float64{triangle, triangle2}, Facets: []int{0, 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := run(t, tt.ir, withLevel(Declared), tt.in)
			nonzero := false
			for _, v := range want {
				nonzero = nonzero || v != 0
			}
			require.True(t, nonzero)
			for l := Expanded; l <= MaxLevel; l++ {
				got := run(t, tt.ir, withLevel(l), tt.in)
				assert.InDeltaSlice(t, want, got, 1e-12, "level %s", l)
			}
		})
	}
}

func TestElementTensorValues(t *testing.T) {
	p1 := lagrange(t, element.Triangle, 1)

	t.Run("mass", func(t *testing.T) {
		ir := computeIR(t, []*tensor.Monomial{massMonomial(p1)}, tensor.Cell, element.Triangle)
		A := run(t, ir, DefaultParameters(), kernel.Inputs{Coordinates: [][]float64{triangle}})
		want := mat.NewDense(3, 3, []float64{2, 1, 1, 1, 2, 1, 1, 1, 2})
		want.Scale(5.0/24, want)
		assert.InDeltaSlice(t, want.RawMatrix().Data, A, 1e-14)
	})

	t.Run("stiffness", func(t *testing.T) {
		ir := computeIR(t, []*tensor.Monomial{stiffnessMonomial(p1)}, tensor.Cell, element.Triangle)
		A := run(t, ir, DefaultParameters(), kernel.Inputs{Coordinates: [][]float64{{0, 0, 2, 0, 0, 2}}})
		assert.InDeltaSlice(t, []float64{1, -0.5, -0.5, -0.5, 0.5, 0, -0.5, 0, 0.5}, A, 1e-14)
	})

	t.Run("facet mass", func(t *testing.T) {
		ir := computeIR(t, []*tensor.Monomial{massMonomial(p1)}, tensor.ExteriorFacet, element.Triangle)
		A := run(t, ir, DefaultParameters(), kernel.Inputs{Coordinates: [][]float64{{0, 0, 3, 0, 0, 4}}, Facets: []int{0}})
		assert.InDeltaSlice(t, []float64{0, 0, 0, 0, 5.0 / 3, 5.0 / 6, 0, 5.0 / 6, 5.0 / 3}, A, 1e-14)
	})

	t.Run("quadrature source", func(t *testing.T) {
		ir := computeIR(t, []*tensor.Monomial{sourceMonomial(t, p1)}, tensor.Cell, element.Triangle)
		in := kernel.Inputs{W: [][]float64{{1, 1, 1, 1, 1, 1}}, Coordinates: [][]float64{triangle}}
		for _, l := range []Level{Declared, QuadratureLoop} {
			assert.InDeltaSlice(t, []float64{5.0 / 6, 5.0 / 6, 5.0 / 6}, run(t, ir, withLevel(l), in), 1e-14)
		}
	})
}

// smallEntryTerm has A0[0,0] = 0.5 and A0[0,1] = 1e-16
func smallEntryTerm(t *testing.T) tensor.Term {
	t.Helper()
	A0 := mat.NewDense(3, 3, []float64{
		0.5, 1e-16, 0,
		0, 1, 0,
		0, 0, 0,
	})
	rt, err := tensor.ReferenceTensorFromMatrix(A0,
		tensor.NewMultiIndex(tensor.Primary, []int{3}),
		tensor.NewMultiIndex(tensor.Secondary, []int{3}), nil)
	require.NoError(t, err)
	gk := &tensor.GeometryTensor{
		Coefficients: []tensor.Coefficient{{Number: 0, Index: tensor.NewIndex(tensor.Secondary, 0, 3)}},
		Secondary:    tensor.NewMultiIndex(tensor.Secondary, []int{3}),
		External:     tensor.NewMultiIndex(tensor.External, nil),
	}
	term, err := tensor.NewTerm(rt, gk, nil)
	require.NoError(t, err)
	return term
}

func TestZeroSuppression(t *testing.T) {
	terms := []tensor.Term{smallEntryTerm(t)}
	p := printer()

	ctx := NewContext(DefaultParameters())
	stmts, err := ctx.contract(terms, Declared)
	require.NoError(t, err)
	out := p.Print(stmts)
	assert.Contains(t, out, "A[0] = 5.000000000000000e-01*G0_0;")
	assert.Contains(t, out, "A[1] = G0_1;")
	assert.Contains(t, out, "A[2] = 0.0;")
	assert.Equal(t, map[string]bool{"G0_0": true, "G0_1": true}, ctx.GSet)

	t.Run("idempotent", func(t *testing.T) {
		again := NewContext(DefaultParameters())
		_, err := again.contract(terms, Declared)
		require.NoError(t, err)
		assert.Equal(t, ctx.GSet, again.GSet)

		_, err = ctx.contract(terms, Declared)
		require.NoError(t, err)
		assert.Equal(t, again.GSet, ctx.GSet)
	})

	t.Run("geometry declarations", func(t *testing.T) {
		out := p.Print(ctx.declareGeometry(terms))
		assert.Equal(t, "const double G0_0 = det*w[0][0];\nconst double G0_1 = det*w[0][1];", out)
	})

	t.Run("looped levels", func(t *testing.T) {
		for _, l := range []Level{Looped, Guarded} {
			ctx := NewContext(DefaultParameters())
			stmts, err := ctx.contract(terms, l)
			require.NoError(t, err)
			out := p.Print(stmts)
			assert.Contains(t, out, "A[2] = 0.0;")
			assert.Contains(t, out, "A[0] += A0_0[0][r]*G0[r];")
			assert.Equal(t, l == Guarded, strings.Contains(out, "if (std::abs(A0_0[1][r]) >= 1.000000000000000e-14)"))
		}
	})

	t.Run("static table", func(t *testing.T) {
		ctx := NewContext(DefaultParameters())
		values := ctx.table(0, terms[0].A0).Values
		assert.Equal(t, []float64{0.5, 0, 0, 0, 1, 0, 0, 0, 0}, values)
	})

	t.Run("entry equal to epsilon", func(t *testing.T) {
		A0 := mat.NewDense(3, 3, nil)
		A0.Set(0, 0, 0.5)
		A0.Set(0, 1, 1e-14)
		rt, err := tensor.ReferenceTensorFromMatrix(A0, terms[0].A0.Primary, terms[0].A0.Secondary, nil)
		require.NoError(t, err)
		edge := []tensor.Term{{A0: rt, GK: terms[0].GK}}

		ctx := NewContext(DefaultParameters())
		stmts, err := ctx.contract(edge, Declared)
		require.NoError(t, err)
		assert.Contains(t, p.Print(stmts), "1.000000000000000e-14*G0_1")
		assert.True(t, ctx.GSet["G0_1"])

		assert.Equal(t, 1e-14, ctx.table(0, rt).Values[1])
		assert.False(t, ctx.negligible(1e-14))
		assert.True(t, ctx.negligible(9.9e-15))
	})
}

func printer() *codegen.Printer { return codegen.NewPrinter(codegen.UFC) }

func TestGeometryEntries(t *testing.T) {
	p := printer()
	p1 := lagrange(t, element.Triangle, 1)

	t.Run("external sum", func(t *testing.T) {
		ir := computeIR(t, []*tensor.Monomial{stiffnessMonomial(p1)}, tensor.Cell, element.Triangle)
		ctx := NewContext(DefaultParameters())
		gk := ir.Terms[0].GK
		assert.Equal(t, "det*(K_00*K_10 + K_01*K_11)", p.Expr(ctx.geometryEntry(gk, []int{0, 1}, nil)))
		expanded := ctx.expandedEntry(gk, []int{0, 1})
		require.Len(t, expanded, 2)
		assert.Equal(t, "det*K_01*K_11", p.Expr(expanded[1]))
		assert.True(t, ctx.JSet["K_00"])
		assert.True(t, ctx.JSet[codegen.ScaleFactorName])
		assert.False(t, ctx.JSet["detJ"])
	})

	t.Run("determinant and fixed coefficient", func(t *testing.T) {
		ir := computeIR(t, []*tensor.Monomial{weightedMassMonomial(p1)}, tensor.Cell, element.Triangle)
		ctx := NewContext(DefaultParameters())
		assert.Equal(t, "detJ*det*w[0][2]*w[1][0]", p.Expr(ctx.geometryEntry(ir.Terms[0].GK, []int{2}, nil)))
		assert.True(t, ctx.JSet["detJ"])
	})

	t.Run("determinant powers", func(t *testing.T) {
		ctx := NewContext(DefaultParameters())
		gk := &tensor.GeometryTensor{
			Determinant: tensor.Determinant{Power: -1, Restriction: tensor.Plus},
			Secondary:   tensor.NewMultiIndex(tensor.Secondary, nil),
			External:    tensor.NewMultiIndex(tensor.External, nil),
		}
		assert.Equal(t, "1.0/detJ0*det", p.Expr(ctx.geometryEntry(gk, nil, nil)))
		gk.Determinant.Power = 2
		assert.Equal(t, "std::pow(detJ0, 2)*det", p.Expr(ctx.geometryEntry(gk, nil, nil)))
	})

	t.Run("quadrature layout", func(t *testing.T) {
		ir := computeIR(t, []*tensor.Monomial{sourceMonomial(t, p1)}, tensor.Cell, element.Triangle)
		ctx := NewContext(withLevel(QuadratureLoop))
		stmts, err := ctx.contract(ir.Terms, QuadratureLoop)
		require.NoError(t, err)
		out := p.Print(stmts)
		nq := ir.Terms[0].GK.Secondary.Dims()[0]
		assert.Contains(t, out, fmt.Sprintf("for (unsigned int ip = 0; ip < %d; ip++)", nq))
		assert.Contains(t, out, "A[0] += A0_0[0][ip]*w[0][ip]*G0[0];")
		g := p.Print(ctx.geometry(ir.Terms, QuadratureLoop))
		assert.Equal(t, "double G0[1];\nG0[0] = det;", g)
	})
}

func TestOptimizedContraction(t *testing.T) {
	p1 := lagrange(t, element.Triangle, 1)
	in := kernel.Inputs{Coordinates: [][]float64{triangle}}

	// plan computes A[0] from the geometry tensor and every other entry as
	// a multiple of A[0]
	plan := func(rt *tensor.ReferenceTensor) tensor.ContractionPlan {
		a00 := rt.A0.At(0, 0)
		out := tensor.ContractionPlan{{Output: 0, Operands: []tensor.PlanOperand{{Coefficient: a00, Kind: tensor.GeometryTensorEntry}}}}
		for k := 1; k < rt.Primary.Size(); k++ {
			ratio := math.Round(rt.A0.At(k, 0)/a00*1e12) / 1e12
			out = append(out, tensor.PlanEntry{Output: k, Operands: []tensor.PlanOperand{
				{Coefficient: ratio, Kind: tensor.ElementTensorEntry, Index: 0},
			}})
		}
		return out
	}

	t.Run("single term", func(t *testing.T) {
		ir := computeIR(t, []*tensor.Monomial{massMonomial(p1)}, tensor.Cell, element.Triangle)
		want := run(t, ir, DefaultParameters(), in)
		ir.Terms[0].Plan = plan(ir.Terms[0].A0)
		for _, l := range []Level{Expanded, Declared, QuadratureLoop} {
			code, err := GenerateIntegralCode(ir, "form", withLevel(l))
			require.NoError(t, err)
			assert.Contains(t, code.TabulateTensor, "A[1] = 5.000000000000000e-01*A[0];")
			A, err := kernel.Run(code.Body, 9, in)
			require.NoError(t, err)
			assert.InDeltaSlice(t, want, A, 1e-14)
		}
	})

	t.Run("partial sums", func(t *testing.T) {
		ir := computeIR(t, []*tensor.Monomial{massMonomial(p1), massMonomial(p1)}, tensor.Cell, element.Triangle)
		want := run(t, ir, DefaultParameters(), in)
		for j := range ir.Terms {
			ir.Terms[j].Plan = plan(ir.Terms[j].A0)
		}
		code, err := GenerateIntegralCode(ir, "form", DefaultParameters())
		require.NoError(t, err)
		assert.Contains(t, code.TabulateTensor, "const double A1_1 = 5.000000000000000e-01*A0_1;")
		assert.Contains(t, code.TabulateTensor, "A[1] = A1_0 + A1_1;")
		A, err := kernel.Run(code.Body, 9, in)
		require.NoError(t, err)
		assert.InDeltaSlice(t, want, A, 1e-14)
	})

	t.Run("missing plan", func(t *testing.T) {
		ir := computeIR(t, []*tensor.Monomial{massMonomial(p1), massMonomial(p1)}, tensor.Cell, element.Triangle)
		ir.Terms[0].Plan = plan(ir.Terms[0].A0)
		_, err := GenerateIntegralCode(ir, "form", DefaultParameters())
		assert.ErrorIs(t, err, ErrMissingPlan)
	})

	t.Run("plan output kind", func(t *testing.T) {
		ir := computeIR(t, []*tensor.Monomial{massMonomial(p1)}, tensor.Cell, element.Triangle)
		ir.Terms[0].Plan = tensor.ContractionPlan{{OutputKind: tensor.GeometryTensorEntry}}
		_, err := GenerateIntegralCode(ir, "form", DefaultParameters())
		assert.ErrorIs(t, err, ErrPlanOutput)
	})
}

func TestTabulateTensorLayout(t *testing.T) {
	p1 := lagrange(t, element.Triangle, 1)
	ir := computeIR(t, []*tensor.Monomial{massMonomial(p1)}, tensor.Cell, element.Triangle)
	code, err := GenerateIntegralCode(ir, "poisson", DefaultParameters())
	require.NoError(t, err)

	assert.Equal(t, "poisson_cell_integral_0_0", code.ClassName)
	assert.Equal(t, "// Do nothing", code.Constructor)
	assert.Equal(t, Ops{Jacobian: 3, Geometry: 0, Contraction: 4}, code.Ops)

	lines := strings.Split(code.TabulateTensor, "\n")
	require.Greater(t, len(lines), 5)
	assert.Equal(t, []string{
		"// Number of operations (multiply-add pairs) for Jacobian data:      3",
		"// Number of operations (multiply-add pairs) for geometry tensor:    0",
		"// Number of operations (multiply-add pairs) for tensor contraction: 4",
		"// Total number of operations (multiply-add pairs):                  7",
		"",
	}, lines[:5])
	assert.Contains(t, code.TabulateTensor, "// Compute geometry tensor\nconst double G0_ = det;\n\n// Compute element tensor\nA[0] = ")
	assert.NotContains(t, code.TabulateTensor, "K_00")
	assert.Contains(t, code.TabulateTensor, "const double det = std::abs(detJ);")
}

func TestFacetDispatch(t *testing.T) {
	p1 := lagrange(t, element.Triangle, 1)

	ext := computeIR(t, []*tensor.Monomial{massMonomial(p1)}, tensor.ExteriorFacet, element.Triangle)
	code, err := GenerateIntegralCode(ext, "form", DefaultParameters())
	require.NoError(t, err)
	assert.Contains(t, code.TabulateTensor, "switch (facet)\n{\ncase 0:")
	assert.Contains(t, code.TabulateTensor, "case 2:")
	assert.Contains(t, code.TabulateTensor, "static unsigned int edge_vertices[3][2] = {")
	assert.Equal(t, "form_exterior_facet_integral_0_0", code.ClassName)

	in := computeIR(t, []*tensor.Monomial{jumpMonomial(p1)}, tensor.InteriorFacet, element.Triangle)
	code, err = GenerateIntegralCode(in, "form", DefaultParameters())
	require.NoError(t, err)
	assert.Contains(t, code.TabulateTensor, "switch (facet_0)")
	assert.Contains(t, code.TabulateTensor, "  switch (facet_1)")
	assert.Contains(t, code.TabulateTensor, "vertex_coordinates_1")
	assert.Contains(t, code.TabulateTensor, "const double K1_00 = J1_11/detJ1;")
	assert.NotContains(t, code.TabulateTensor, "K0_00")
}

func TestGenerateErrors(t *testing.T) {
	p1 := lagrange(t, element.Triangle, 1)
	ir := computeIR(t, []*tensor.Monomial{massMonomial(p1)}, tensor.Cell, element.Triangle)

	_, err := GenerateIntegralCode(ir, "form", withLevel(MaxLevel+1))
	assert.ErrorIs(t, err, ErrLevel)

	negative := DefaultParameters()
	negative.Epsilon = -1e-14
	_, err = GenerateIntegralCode(ir, "form", negative)
	assert.ErrorIs(t, err, ErrEpsilon)

	bad := *ir
	bad.DomainType = 0
	_, err = GenerateIntegralCode(&bad, "form", DefaultParameters())
	assert.ErrorIs(t, err, tensor.ErrUnsupportedDomain)

	bad = *ir
	bad.Terms = nil
	_, err = GenerateIntegralCode(&bad, "form", DefaultParameters())
	assert.ErrorIs(t, err, ErrNoTerms)
}

func TestGenerateAll(t *testing.T) {
	p1 := lagrange(t, element.Triangle, 1)
	var irs []*tensor.IntegralIR
	for id := 0; id < 5; id++ {
		ir, err := tensor.ComputeIntegralIR([]*tensor.Monomial{massMonomial(p1)}, tensor.Cell, element.Triangle, 1, id)
		require.NoError(t, err)
		irs = append(irs, ir)
	}

	codes, err := GenerateAll(irs, "form", DefaultParameters(), 2)
	require.NoError(t, err)
	require.Len(t, codes, len(irs))
	for id, c := range codes {
		assert.Equal(t, fmt.Sprintf("form_cell_integral_1_%d", id), c.ClassName)
	}

	bad := *irs[3]
	bad.Terms = nil
	irs[3] = &bad
	_, err = GenerateAll(irs, "form", DefaultParameters(), 0)
	assert.True(t, errors.Is(err, ErrNoTerms))
	assert.Contains(t, err.Error(), "form_cell_integral_1_3")

	t.Run("first error in input order", func(t *testing.T) {
		early := bad
		early.DomainID = 1
		irs[1] = &early
		for _, workers := range []int{1, 3, 8} {
			_, err := GenerateAll(irs, "form", DefaultParameters(), workers)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "form_cell_integral_1_1")
			assert.NotContains(t, err.Error(), "form_cell_integral_1_3")
		}
	})

	t.Run("empty", func(t *testing.T) {
		codes, err := GenerateAll(nil, "form", DefaultParameters(), 4)
		require.NoError(t, err)
		assert.Empty(t, codes)
	})
}
