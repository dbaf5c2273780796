package symbolic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmartConstructors(t *testing.T) {
	x := Sym("x")
	t.Run("Add", func(t *testing.T) {
		assert.Equal(t, x, Add(Num(0), x))
		assert.Equal(t, x, Add(x, Num(0)))
		assert.Equal(t, Num(5), Add(Num(2), Num(3)))
		assert.True(t, Add(x, x).Equals(&Sum{Ops: []Expr{x, x}}))
	})
	t.Run("Mul", func(t *testing.T) {
		assert.Equal(t, x, Mul(Num(1), x))
		assert.Equal(t, x, Mul(x, Num(1)))
		assert.Equal(t, Num(6), Mul(Num(2), Num(3)))
		assert.True(t, Mul(x, Num(2)).Equals(&Product{Ops: []Expr{x, Num(2)}}))
	})
	t.Run("Div", func(t *testing.T) {
		assert.Equal(t, x, Div(x, Num(1)))
		assert.True(t, Div(x, Num(2)).Equals(&Division{Num: x, Den: Num(2)}))
	})
}

func TestStructuralEquality(t *testing.T) {
	u := ArgumentTerminal{Number: 0, Component: []int{1}, Derivatives: []int{0}}
	v := ArgumentTerminal{Number: 0, Component: []int{1}, Derivatives: []int{0}}
	w := ArgumentTerminal{Number: 0, Component: []int{1}, Derivatives: []int{1}}

	assert.True(t, u.Equals(v))
	assert.Equal(t, u.Hash(), v.Hash())
	assert.False(t, u.Equals(w))

	e1 := Mul(Func("sqrt", Sym("c")), u)
	e2 := Mul(Func("sqrt", Sym("c")), v)
	assert.True(t, e1.Equals(e2))
	assert.Equal(t, e1.Hash(), e2.Hash())
	assert.False(t, e1.Equals(Mul(Func("exp", Sym("c")), u)))
	assert.False(t, Sym("x").Equals(Num(1)))

	t.Run("signed zero", func(t *testing.T) {
		negZero := Mul(Num(-1), Num(0))
		require.True(t, negZero.Equals(Num(0)))
		assert.Equal(t, Num(0).Hash(), negZero.Hash())
		table := NewTable[Expr]()
		assert.Equal(t, table.Insert(Num(0)), table.Insert(negZero))
	})
}

func TestSharedSubexpressions(t *testing.T) {
	x := Sym("x")
	deep := x
	for k := 0; k < 60; k++ {
		deep = Add(deep, deep)
	}
	twin := x
	for k := 0; k < 60; k++ {
		twin = Add(twin, twin)
	}
	assert.Equal(t, deep.Hash(), twin.Hash())

	g := BuildGraph(deep)
	require.NoError(t, g.Validate())
	assert.Len(t, g.Vertices, 61)
	assert.Same(t, deep, g.Vertices[g.Root()])
	assert.Equal(t, []int{59, 59}, g.Dependencies[60])

	got, err := Eval(deep, MapEnv{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, float64(1<<60), got)

	t.Run("rebuilt over shared operands", func(t *testing.T) {
		y := &Sum{Ops: []Expr{x, Sym("x")}}
		root := &Product{Ops: []Expr{y, &Sum{Ops: []Expr{Sym("x"), x}}}}
		g := BuildGraph(root)
		require.NoError(t, g.Validate())
		// x, x+x, product
		assert.Len(t, g.Vertices, 3)
		assert.Equal(t, []int{1, 1}, g.Dependencies[2])
		assert.True(t, g.Vertices[2].Equals(root))
	})
}
