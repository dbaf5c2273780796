package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInnerProduct(t *testing.T) {
	lang := C{Epsilon: 1e-14}
	p := NewPrinter(UFC)
	x := func(n int) []Expr {
		out := make([]Expr, n)
		for i := range out {
			out[i] = Name("x" + string(rune('0'+i)))
		}
		return out
	}

	tests := []struct {
		name   string
		coeffs []float64
		want   string
	}{
		{"empty", nil, "0.0"},
		{"unit", []float64{1}, "x0"},
		{"negative unit", []float64{-1}, "-x0"},
		{"negative scaled", []float64{-2}, "-2.000000000000000e+00*x0"},
		{"mixed", []float64{1, -1, 2, -3, 1e-20},
			"x0 - x1 + 2.000000000000000e+00*x2 - 3.000000000000000e+00*x3"},
		{"all below tolerance", []float64{1e-16, -1e-17}, "0.0"},
		{"at tolerance", []float64{1e-14, -1e-14}, "1.000000000000000e-14*x0 - 1.000000000000000e-14*x1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lang.InnerProduct(tt.coeffs, x(len(tt.coeffs)))
			assert.Equal(t, tt.want, p.Expr(got))
		})
	}
}

func TestPrintExpressions(t *testing.T) {
	p := NewPrinter(UFC)
	a, b, c := Name("a"), Name("b"), Name("c")

	assert.Equal(t, "a*(b + c)", p.Expr(Mul(a, Add(b, c))))
	assert.Equal(t, "a - (b - c)", p.Expr(Sub{A: a, B: Sub{A: b, B: c}}))
	assert.Equal(t, "(a + b)/(b*c)", p.Expr(Div{A: Add(a, b), B: Mul(b, c)}))
	assert.Equal(t, "std::sqrt(a*a + b*b)", p.Expr(Call{Func: "sqrt", Args: []Expr{Add(Mul(a, a), Mul(b, b))}}))
	assert.Equal(t, "w[1][3]", p.Expr(Coefficient(1, Int(3))))
	assert.Equal(t, "std::abs(T[2][r]) > 1.000000000000000e-14",
		p.Expr(Compare{Op: ">", A: Call{Func: "abs", Args: []Expr{Access{Name: "T", Indices: []Expr{Int(2), Name("r")}}}}, B: Float(1e-14)}))
	assert.Equal(t, "fabs(a)", NewPrinter(OKL).Expr(Call{Func: "abs", Args: []Expr{a}}))
	assert.Equal(t, "1.0", p.Expr(Mul()))
	assert.Equal(t, "0.0", p.Expr(Add()))
}

func TestNames(t *testing.T) {
	assert.Equal(t, "J_01", TransformName(false, 0, 1, ""))
	assert.Equal(t, "K0_10", TransformName(true, 1, 0, "+"))
	assert.Equal(t, "J1_22", TransformName(false, 2, 2, "-"))
	assert.Equal(t, "detJ0", DetJName("+"))
	assert.Equal(t, "G0_1_2", GeometryTensorName(0, []int{1, 2}))
	assert.Equal(t, "G3_", GeometryTensorName(3, nil))
	assert.Equal(t, "vertex_coordinates_1", CoordinatesName("-"))
	assert.Equal(t, "facet", FacetName(""))
}

func TestPrintStatements(t *testing.T) {
	lang := C{Epsilon: 1e-14}
	p := NewPrinter(UFC)

	t.Run("switch", func(t *testing.T) {
		cases := [][]Stmt{
			{lang.Assign(ElementTensor(0), Float(1))},
			{lang.Assign(ElementTensor(0), Float(2))},
		}
		want := `switch (facet)
{
case 0:
  {
    A[0] = 1.0;
    break;
  }
case 1:
  {
    A[0] = 2.000000000000000e+00;
    break;
  }
}`
		assert.Equal(t, want, p.Print(lang.Switch("facet", cases, nil)))
		assert.Equal(t, "A[0] = 1.0;", p.Print(lang.Switch("facet", cases[:1], nil)))
		assert.Empty(t, lang.Switch("facet", nil, nil))
	})

	t.Run("static table", func(t *testing.T) {
		table := ArrayDecl{Static: true, Const: true, Type: "double", Name: "T", Sizes: []int{2, 2},
			Values: []float64{1, 2, 3, 4}}
		want := `static const double T[2][2] = {
  {1.000000000000000e+00, 2.000000000000000e+00},
  {3.000000000000000e+00, 4.000000000000000e+00}
};`
		assert.Equal(t, want, p.Print([]Stmt{table}))
		assert.Equal(t, want[len("static "):], NewPrinter(OKL).Print([]Stmt{table}))
	})

	t.Run("integer table", func(t *testing.T) {
		stmts := lang.FacetDeterminant(2, "")
		require.IsType(t, ArrayDecl{}, stmts[1])
		want := `static unsigned int edge_vertices[3][2] = {
  {1, 2},
  {0, 2},
  {0, 1}
};`
		assert.Equal(t, want, p.Print(stmts[1:2]))
	})

	t.Run("loops", func(t *testing.T) {
		body := []Stmt{
			If{
				Cond: Compare{Op: ">", A: Name("x"), B: Float(0)},
				Body: []Stmt{Assign{LHS: ElementTensor(0), Op: "+=", RHS: Access{Name: "T", Indices: []Expr{Name("r")}}}},
			},
		}
		want := `for (unsigned int r = 0; r < 3; r++)
{
  if (x > 0.0)
  {
    A[0] += T[r];
  }
}`
		assert.Equal(t, want, p.Print([]Stmt{For{Var: "r", Lower: 0, Upper: 3, Body: body}}))
	})

	t.Run("jacobian", func(t *testing.T) {
		out := p.Print(lang.Jacobian(2, "+"))
		assert.Contains(t, out, "const double J0_00 = vertex_coordinates_0[2] - vertex_coordinates_0[0];")
		assert.Contains(t, out, "const double detJ0 = J0_00*J0_11 - J0_01*J0_10;")
		assert.Contains(t, out, "const double K0_01 = -J0_01/detJ0;")
		assert.Contains(t, p.Print(lang.ScaleFactor("")), "const double det = std::abs(detJ);")
	})
}

func TestRemoveUnused(t *testing.T) {
	decl := func(name string, value Expr) Stmt { return Decl{Type: "const double", Name: name, Value: value} }
	stmts := []Stmt{
		Comment{Text: "chain"},
		decl("a", Name("x")),
		decl("b", Mul(Name("a"), Float(2))),
		decl("c", Name("b")),
		decl("d", Float(1)),
	}

	t.Run("nothing used", func(t *testing.T) {
		got := RemoveUnused(stmts, nil)
		assert.Equal(t, []Stmt{Comment{Text: "chain"}}, got)
	})
	t.Run("end of chain used", func(t *testing.T) {
		got := RemoveUnused(stmts, map[string]bool{"c": true})
		assert.Equal(t, stmts[:4], got)
	})
	t.Run("statement reads", func(t *testing.T) {
		withUse := append(append([]Stmt(nil), stmts...), Assign{LHS: ElementTensor(0), Op: "=", RHS: Name("b")})
		got := RemoveUnused(withUse, nil)
		require.Len(t, got, 4)
		assert.Equal(t, "a", Declared(got[1]))
		assert.Equal(t, "b", Declared(got[2]))
	})
	t.Run("facet tables", func(t *testing.T) {
		lang := C{}
		got := RemoveUnused(lang.FacetDeterminant(2, ""), map[string]bool{ScaleFactorName: true})
		names := map[string]bool{}
		for _, s := range got {
			names[Declared(s)] = true
		}
		for _, n := range []string{"edge_vertices", "v0", "v1", "dx0", "dx1", "det"} {
			assert.True(t, names[n], n)
		}
	})
}

func TestCountOps(t *testing.T) {
	stmts := []Stmt{
		Decl{Type: "const double", Name: "x", Value: Add(Mul(Name("a"), Name("b")), Name("c"))},
		Assign{LHS: ElementTensor(0), Op: "+=", RHS: Div{A: Name("x"), B: Name("y")}},
		Decl{Type: "const double", Name: "z", Value: Access{Name: "v", Indices: []Expr{Add(Mul(Int(2), Name("i")), Int(1))}}},
	}
	assert.Equal(t, 2, CountOps(stmts))

	loop := []Stmt{For{Var: "r", Upper: 10, Body: stmts[:1]}}
	assert.Equal(t, 1, CountOps(loop))
	assert.Equal(t, 0, CountOps(nil))
}

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect("OKL")
	require.NoError(t, err)
	assert.Equal(t, OKL, d)
	d, err = ParseDialect("ufc")
	require.NoError(t, err)
	assert.Equal(t, UFC, d)
	_, err = ParseDialect("fortran")
	assert.Error(t, err)
	assert.Equal(t, "okl", OKL.String())
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "  a\n\n  b", Indent(2, "a\n\nb"))
	assert.Equal(t, "", Indent(4, ""))
}
