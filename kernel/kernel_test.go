package kernel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/augustjohansson/ffcx/codegen"
)

func geometry(t *testing.T, stmts []codegen.Stmt, in Inputs) *Machine {
	t.Helper()
	m := NewMachine(0, in)
	require.NoError(t, m.Exec(stmts))
	return m
}

func scalar(t *testing.T, m *Machine, name string) float64 {
	t.Helper()
	v, ok := m.Scalar(name)
	require.True(t, ok, "%s not declared", name)
	return v
}

func TestJacobian(t *testing.T) {
	lang := codegen.C{Epsilon: 1e-14}
	cells := map[int][]float64{
		1: {0.5, 2.0},
		2: {0, 0, 2, 1, 1, 3},
		3: {0, 0, 0, 2, 1, 0, 0, 1, 1, 1, 0, 3},
	}
	for dim, x := range cells {
		t.Run(map[int]string{1: "interval", 2: "triangle", 3: "tetrahedron"}[dim], func(t *testing.T) {
			stmts := append(lang.Jacobian(dim, ""), lang.ScaleFactor("")...)
			m := geometry(t, stmts, Inputs{Coordinates: [][]float64{x}})

			J := mat.NewDense(dim, dim, nil)
			for k := 0; k < dim; k++ {
				for l := 0; l < dim; l++ {
					J.Set(k, l, x[(l+1)*dim+k]-x[k])
					assert.InDelta(t, J.At(k, l), scalar(t, m, codegen.TransformName(false, k, l, "")), 1e-14)
				}
			}
			var K mat.Dense
			require.NoError(t, K.Inverse(J))
			for k := 0; k < dim; k++ {
				for l := 0; l < dim; l++ {
					assert.InDelta(t, K.At(k, l), scalar(t, m, codegen.TransformName(true, k, l, "")), 1e-12)
				}
			}
			assert.InDelta(t, mat.Det(J), scalar(t, m, "detJ"), 1e-12)
			assert.InDelta(t, math.Abs(mat.Det(J)), scalar(t, m, codegen.ScaleFactorName), 1e-12)
		})
	}
}

func TestRestrictedJacobian(t *testing.T) {
	lang := codegen.C{}
	stmts := append(lang.Jacobian(2, "+"), lang.Jacobian(2, "-")...)
	m := geometry(t, stmts, Inputs{Coordinates: [][]float64{
		{0, 0, 1, 0, 0, 1},
		{1, 0, 1, 1, 0, 1},
	}})
	assert.InDelta(t, 1.0, scalar(t, m, "detJ0"), 1e-15)
	assert.InDelta(t, 0.0, scalar(t, m, "J1_00"), 1e-15)
	assert.InDelta(t, -1.0, scalar(t, m, "J1_01"), 1e-15)
	assert.InDelta(t, 1.0, scalar(t, m, "J1_10"), 1e-15)
	assert.InDelta(t, 1.0, scalar(t, m, "detJ1"), 1e-15)
	assert.InDelta(t, 1.0, scalar(t, m, "K1_01"), 1e-15)
}

func TestFacetDeterminant(t *testing.T) {
	lang := codegen.C{}
	tests := []struct {
		name  string
		dim   int
		x     []float64
		facet int
		want  float64
	}{
		{"interval", 1, []float64{0, 3}, 1, 1},
		{"triangle facet 0", 2, []float64{0, 0, 3, 0, 0, 4}, 0, 5},
		{"triangle facet 1", 2, []float64{0, 0, 3, 0, 0, 4}, 1, 4},
		{"triangle facet 2", 2, []float64{0, 0, 3, 0, 0, 4}, 2, 3},
		{"tetrahedron facet 0", 3, []float64{0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1}, 0, math.Sqrt(3)},
		{"tetrahedron facet 3", 3, []float64{0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1}, 3, 1},
		{"scaled tetrahedron facet 2", 3, []float64{0, 0, 0, 2, 0, 0, 0, 2, 0, 0, 0, 2}, 2, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := geometry(t, lang.FacetDeterminant(tt.dim, ""), Inputs{
				Coordinates: [][]float64{tt.x},
				Facets:      []int{tt.facet},
			})
			assert.InDelta(t, tt.want, scalar(t, m, codegen.ScaleFactorName), 1e-14)
		})
	}
}

func TestControlFlow(t *testing.T) {
	stmts := []codegen.Stmt{
		codegen.ArrayDecl{Static: true, Const: true, Type: "double", Name: "T", Sizes: []int{2, 3},
			Values: []float64{1, -2, 3, 0, 5, 0}},
		codegen.Assign{LHS: codegen.ElementTensor(0), Op: "=", RHS: codegen.Float(0)},
		codegen.For{Var: "r", Upper: 2, Body: []codegen.Stmt{
			codegen.For{Var: "s", Upper: 3, Body: []codegen.Stmt{
				codegen.If{
					Cond: codegen.Compare{Op: ">", A: codegen.Call{Func: "abs", Args: []codegen.Expr{
						codegen.Access{Name: "T", Indices: []codegen.Expr{codegen.Name("r"), codegen.Name("s")}},
					}}, B: codegen.Float(1e-14)},
					Body: []codegen.Stmt{codegen.Assign{
						LHS: codegen.ElementTensor(0), Op: "+=",
						RHS: codegen.Mul(
							codegen.Access{Name: "T", Indices: []codegen.Expr{codegen.Name("r"), codegen.Name("s")}},
							codegen.Coefficient(0, codegen.Name("s")),
						),
					}},
				},
			}},
		}},
		codegen.Switch{Var: "facet", Cases: [][]codegen.Stmt{
			{codegen.Assign{LHS: codegen.ElementTensor(1), Op: "=", RHS: codegen.Float(7)}},
			{codegen.Assign{LHS: codegen.ElementTensor(1), Op: "=", RHS: codegen.Call{Func: "pow", Args: []codegen.Expr{codegen.Float(2), codegen.Float(3)}}}},
		}},
	}
	A, err := Run(stmts, 2, Inputs{W: [][]float64{{1, 10, 100}}, Facets: []int{1}})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1 - 20 + 300 + 50, 8}, A, 1e-12)
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name  string
		stmts []codegen.Stmt
	}{
		{"undefined scalar", []codegen.Stmt{codegen.Assign{LHS: codegen.ElementTensor(0), Op: "=", RHS: codegen.Name("x")}}},
		{"out of range", []codegen.Stmt{codegen.Assign{LHS: codegen.ElementTensor(4), Op: "=", RHS: codegen.Float(1)}}},
		{"coefficient out of range", []codegen.Stmt{codegen.Assign{LHS: codegen.ElementTensor(0), Op: "=", RHS: codegen.Coefficient(1, codegen.Int(0))}}},
		{"switch without case", []codegen.Stmt{codegen.Switch{Var: "facet", Cases: [][]codegen.Stmt{{}, {}}}}},
		{"assignment to undeclared", []codegen.Stmt{codegen.Assign{LHS: codegen.Name("y"), Op: "=", RHS: codegen.Float(1)}}},
		{"bad initialiser", []codegen.Stmt{codegen.ArrayDecl{Type: "double", Name: "T", Sizes: []int{2}, Values: []float64{1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(tt.stmts, 1, Inputs{W: [][]float64{{1}}, Facets: []int{3}})
			assert.ErrorIs(t, err, ErrRuntime)
		})
	}
}
