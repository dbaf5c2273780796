package symbolic

import (
	"fmt"
	"strings"
)

// Graph is an expression DAG in topological order. Dependencies[i] lists
// the vertices holding the operands of Vertices[i], all with smaller
// indices. The last vertex is the root.
type Graph struct {
	Vertices     []Expr
	Dependencies [][]int
}

// BuildGraph linearises the expression tree of root into a graph with one
// vertex per distinct subexpression. Compound vertices are rebuilt over the
// vertices of their operands, so a subexpression shared by pointer is
// visited once and equal subexpressions compare in constant time.
func BuildGraph(root Expr) *Graph {
	table := NewTable[Expr]()
	visited := make(map[Expr]int)
	g := &Graph{}
	var visit func(e Expr) int
	visit = func(e Expr) int {
		ops := e.Operands()
		if len(ops) == 0 {
			return g.add(table, e, nil)
		}
		key := e
		if i, ok := visited[key]; ok {
			return i
		}
		deps := make([]int, len(ops))
		canonical := make([]Expr, len(ops))
		rebuild := false
		for k, op := range ops {
			deps[k] = visit(op)
			canonical[k] = g.Vertices[deps[k]]
			rebuild = rebuild || !same(op, canonical[k])
		}
		if rebuild {
			e = withOperands(e, canonical)
		}
		i := g.add(table, e, deps)
		visited[key] = i
		return i
	}
	visit(root)
	return g
}

// same reports whether b is a itself, or an equal terminal
func same(a, b Expr) bool {
	if len(a.Operands()) == 0 {
		return a.Equals(b)
	}
	return a == b
}

func (g *Graph) add(table *Table[Expr], e Expr, deps []int) int {
	if i, ok := table.Lookup(e); ok {
		return i
	}
	i := table.Insert(e)
	g.Vertices = append(g.Vertices, e)
	g.Dependencies = append(g.Dependencies, deps)
	return i
}

// Root returns the index of the root vertex
func (g *Graph) Root() int { return len(g.Vertices) - 1 }

// Validate checks the topological ordering and operand counts
func (g *Graph) Validate() error {
	if len(g.Vertices) == 0 {
		return fmt.Errorf("empty graph")
	}
	if len(g.Vertices) != len(g.Dependencies) {
		return fmt.Errorf("%d vertices but %d dependency lists", len(g.Vertices), len(g.Dependencies))
	}
	for i, deps := range g.Dependencies {
		if n := len(g.Vertices[i].Operands()); n != len(deps) {
			return fmt.Errorf("vertex %d (%s) has %d operands but %d dependencies", i, g.Vertices[i], n, len(deps))
		}
		for _, j := range deps {
			if j < 0 || j >= i {
				return fmt.Errorf("vertex %d depends on %d, graph is not in topological order", i, j)
			}
		}
	}
	return nil
}

// Eval evaluates every vertex from its dependencies and returns the value of
// the root
func (g *Graph) Eval(env Env) (float64, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}
	values := make([]float64, len(g.Vertices))
	for i, v := range g.Vertices {
		deps := g.Dependencies[i]
		if len(deps) == 0 {
			x, err := env.Value(v)
			if err != nil {
				return 0, err
			}
			values[i] = x
			continue
		}
		args := make([]float64, len(deps))
		for k, j := range deps {
			args[k] = values[j]
		}
		x, err := apply(v, args)
		if err != nil {
			return 0, err
		}
		values[i] = x
	}
	return values[g.Root()], nil
}

func (g *Graph) String() string {
	var sb strings.Builder
	for i, v := range g.Vertices {
		fmt.Fprintf(&sb, "%d: %s <- %v\n", i, v, g.Dependencies[i])
	}
	return sb.String()
}
