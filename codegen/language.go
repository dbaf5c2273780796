package codegen

import (
	"fmt"
	"math"
	"strings"
)

// Language builds the code fragments of a target language. Restrictions
// are passed as "", "+" or "-".
type Language interface {
	// Assign sets lhs to rhs
	Assign(lhs, rhs Expr) Stmt
	// Declaration declares a constant scalar
	Declaration(name string, value Expr) Stmt
	// InnerProduct returns Σ coefficients[i]*entries[i]
	InnerProduct(coefficients []float64, entries []Expr) Expr
	// Transform references entry (i, j) of the Jacobian or its inverse
	Transform(inverse bool, i, j int, restriction string) Expr
	// Switch dispatches on variable, falling back when there are no cases
	Switch(variable string, cases [][]Stmt, fallback []Stmt) []Stmt
	// Jacobian computes the Jacobian, its determinant and its inverse
	Jacobian(dim int, restriction string) []Stmt
	// ScaleFactor sets det to the absolute cell determinant
	ScaleFactor(restriction string) []Stmt
	// FacetDeterminant sets det to the measure of the current facet
	FacetDeterminant(dim int, restriction string) []Stmt
}

// C emits C-family kernels reading vertex coordinates from a flat array
type C struct {
	// Epsilon is the tolerance below which inner product coefficients are
	// dropped and within which they count as ±1
	Epsilon float64
}

var _ Language = C{}

// Names used by generated kernels
const (
	ElementTensorName = "A"
	CoefficientName   = "w"
	ScaleFactorName   = "det"
)

// Suffix maps a restriction to the suffix of geometry names
func Suffix(restriction string) string {
	switch restriction {
	case "+":
		return "0"
	case "-":
		return "1"
	}
	return ""
}

// CoordinatesName is the vertex coordinate array of one side
func CoordinatesName(restriction string) string {
	switch restriction {
	case "+":
		return "vertex_coordinates_0"
	case "-":
		return "vertex_coordinates_1"
	}
	return "vertex_coordinates"
}

// FacetName is the local facet argument of one side
func FacetName(restriction string) string {
	switch restriction {
	case "+":
		return "facet_0"
	case "-":
		return "facet_1"
	}
	return "facet"
}

// DetJName is the Jacobian determinant of one side
func DetJName(restriction string) string { return "detJ" + Suffix(restriction) }

// TransformName names J_kl or K_kl (inverse)
func TransformName(inverse bool, i, j int, restriction string) string {
	kind := "J"
	if inverse {
		kind = "K"
	}
	return fmt.Sprintf("%s%s_%d%d", kind, Suffix(restriction), i, j)
}

// GeometryTensorName names entry a of the geometry tensor of term j
func GeometryTensorName(j int, a []int) string {
	parts := make([]string, len(a))
	for k, v := range a {
		parts[k] = fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf("G%d_%s", j, strings.Join(parts, "_"))
}

// ElementTensor references A[k]
func ElementTensor(k int) Expr { return Index(ElementTensorName, k) }

// Coefficient references w[n][k]
func Coefficient(n int, k Expr) Expr {
	return Access{Name: CoefficientName, Indices: []Expr{IntLit{Value: n}, k}}
}

func (C) Assign(lhs, rhs Expr) Stmt { return Assign{LHS: lhs, Op: "=", RHS: rhs} }

func (C) Declaration(name string, value Expr) Stmt {
	return Decl{Type: "const double", Name: name, Value: value}
}

// InnerProduct folds unit coefficients into additions and subtractions and
// skips zero coefficients and those smaller than Epsilon in magnitude. An
// empty product is 0.0.
func (c C) InnerProduct(coefficients []float64, entries []Expr) Expr {
	if len(coefficients) != len(entries) {
		panic(fmt.Sprintf("inner product of %d coefficients and %d entries", len(coefficients), len(entries)))
	}
	var result Expr
	for k, v := range coefficients {
		x := entries[k]
		var term Expr
		negative := false
		switch {
		case v == 0 || math.Abs(v) < c.Epsilon:
			continue
		case math.Abs(v-1) < c.Epsilon:
			term = x
		case math.Abs(v+1) < c.Epsilon:
			term, negative = x, true
		case v > 0:
			term = Mul(Literal{Value: v}, x)
		default:
			term, negative = Mul(Literal{Value: -v}, x), true
		}
		switch {
		case result == nil && negative:
			result = Neg{X: term}
		case result == nil:
			result = term
		case negative:
			result = Sub{A: result, B: term}
		default:
			result = appendSum(result, term)
		}
	}
	if result == nil {
		return Literal{}
	}
	return result
}

// appendSum keeps a + b + c flat instead of nesting binary sums
func appendSum(a, b Expr) Expr {
	if s, ok := a.(Sum); ok {
		terms := append(append([]Expr(nil), s.Terms...), b)
		return Sum{Terms: terms}
	}
	return Sum{Terms: []Expr{a, b}}
}

func (C) Transform(inverse bool, i, j int, restriction string) Expr {
	return Var{Name: TransformName(inverse, i, j, restriction)}
}

// Switch with no cases is the fallback and a single case needs no dispatch
func (C) Switch(variable string, cases [][]Stmt, fallback []Stmt) []Stmt {
	switch len(cases) {
	case 0:
		return fallback
	case 1:
		return cases[0]
	}
	return append([]Stmt{Switch{Var: variable, Cases: cases}}, fallback...)
}

// coordinate returns x_k of vertex v of a cell in dim dimensions
func coordinate(restriction string, dim int, v, k Expr) Expr {
	var flat Expr
	if vi, ok := v.(IntLit); ok {
		flat = IntLit{Value: vi.Value*dim + k.(IntLit).Value}
	} else {
		flat = Sum{Terms: []Expr{Product{Factors: []Expr{IntLit{Value: dim}, v}}, k}}
	}
	return Access{Name: CoordinatesName(restriction), Indices: []Expr{flat}}
}

func (C) Jacobian(dim int, restriction string) []Stmt {
	s := Suffix(restriction)
	j := func(k, l int) Expr { return Var{Name: TransformName(false, k, l, restriction)} }
	detJ := DetJName(restriction)
	decl := func(name string, value Expr) Stmt { return Decl{Type: "const double", Name: name, Value: value} }

	var out []Stmt
	out = append(out, Comment{Text: "Compute Jacobian of affine map from reference cell"})
	for k := 0; k < dim; k++ {
		for l := 0; l < dim; l++ {
			out = append(out, decl(TransformName(false, k, l, restriction), Sub{
				A: coordinate(restriction, dim, IntLit{Value: l + 1}, IntLit{Value: k}),
				B: coordinate(restriction, dim, IntLit{Value: 0}, IntLit{Value: k}),
			}))
		}
	}
	out = append(out, Blank{}, Comment{Text: "Compute determinant of Jacobian"})

	var inverse func(k, l int) Expr
	switch dim {
	case 1:
		out = append(out, decl(detJ, j(0, 0)))
		inverse = func(int, int) Expr { return Div{A: Literal{Value: 1}, B: Var{Name: detJ}} }
	case 2:
		out = append(out, decl(detJ, Sub{A: Mul(j(0, 0), j(1, 1)), B: Mul(j(0, 1), j(1, 0))}))
		inverse = func(k, l int) Expr {
			// K = [J_11, -J_01; -J_10, J_00] / detJ
			if k == l {
				return Div{A: j(1-k, 1-l), B: Var{Name: detJ}}
			}
			return Div{A: Neg{X: j(k, l)}, B: Var{Name: detJ}}
		}
	case 3:
		cof := func(k, l int) string { return fmt.Sprintf("d%s_%d%d", s, k, l) }
		for k := 0; k < 3; k++ {
			for l := 0; l < 3; l++ {
				k1, k2 := (k+1)%3, (k+2)%3
				l1, l2 := (l+1)%3, (l+2)%3
				out = append(out, decl(cof(k, l), Sub{
					A: Mul(j(k1, l1), j(k2, l2)),
					B: Mul(j(k1, l2), j(k2, l1)),
				}))
			}
		}
		out = append(out, decl(detJ, Add(
			Mul(j(0, 0), Var{Name: cof(0, 0)}),
			Mul(j(1, 0), Var{Name: cof(1, 0)}),
			Mul(j(2, 0), Var{Name: cof(2, 0)}),
		)))
		inverse = func(k, l int) Expr { return Div{A: Var{Name: cof(l, k)}, B: Var{Name: detJ}} }
	default:
		panic(fmt.Sprintf("unsupported dimension %d", dim))
	}

	out = append(out, Blank{}, Comment{Text: "Compute inverse of Jacobian"})
	for k := 0; k < dim; k++ {
		for l := 0; l < dim; l++ {
			out = append(out, decl(TransformName(true, k, l, restriction), inverse(k, l)))
		}
	}
	return out
}

func (C) ScaleFactor(restriction string) []Stmt {
	return []Stmt{
		Comment{Text: "Set scale factor"},
		Decl{Type: "const double", Name: ScaleFactorName, Value: Call{Func: "abs", Args: []Expr{Var{Name: DetJName(restriction)}}}},
	}
}

func (C) FacetDeterminant(dim int, restriction string) []Stmt {
	facet := Var{Name: FacetName(restriction)}
	vertex := func(name string, value Expr) Stmt { return Decl{Type: "const unsigned int", Name: name, Value: value} }
	decl := func(name string, value Expr) Stmt { return Decl{Type: "const double", Name: name, Value: value} }
	diff := func(to, from string, k int) Expr {
		return Sub{
			A: coordinate(restriction, dim, Var{Name: to}, IntLit{Value: k}),
			B: coordinate(restriction, dim, Var{Name: from}, IntLit{Value: k}),
		}
	}
	v := func(i int) string { return fmt.Sprintf("v%d", i) }
	sq := func(name string) Expr { return Mul(Var{Name: name}, Var{Name: name}) }

	switch dim {
	case 1:
		return []Stmt{
			Comment{Text: "Facet determinant 1D (vertex)"},
			decl(ScaleFactorName, Literal{Value: 1}),
		}
	case 2:
		out := []Stmt{
			Comment{Text: "Vertices on edges"},
			ArrayDecl{Static: true, Type: "unsigned int", Name: "edge_vertices", Sizes: []int{3, 2},
				Values: []float64{1, 2, 0, 2, 0, 1}},
			Blank{},
			Comment{Text: "Get vertices"},
		}
		for i := 0; i < 2; i++ {
			out = append(out, vertex(v(i), Access{Name: "edge_vertices", Indices: []Expr{facet, IntLit{Value: i}}}))
		}
		out = append(out, Blank{}, Comment{Text: "Compute scale factor (length of edge scaled by length of reference interval)"})
		for k := 0; k < 2; k++ {
			out = append(out, decl(fmt.Sprintf("dx%d", k), diff(v(1), v(0), k)))
		}
		out = append(out, decl(ScaleFactorName, Call{Func: "sqrt", Args: []Expr{Add(sq("dx0"), sq("dx1"))}}))
		return out
	case 3:
		out := []Stmt{
			Comment{Text: "Vertices on faces"},
			ArrayDecl{Static: true, Type: "unsigned int", Name: "face_vertices", Sizes: []int{4, 3},
				Values: []float64{1, 2, 3, 0, 2, 3, 0, 1, 3, 0, 1, 2}},
			Blank{},
			Comment{Text: "Get vertices"},
		}
		for i := 0; i < 3; i++ {
			out = append(out, vertex(v(i), Access{Name: "face_vertices", Indices: []Expr{facet, IntLit{Value: i}}}))
		}
		out = append(out, Blank{}, Comment{Text: "Compute scale factor (area of face scaled by area of reference triangle)"})
		for k := 0; k < 3; k++ {
			out = append(out, decl(fmt.Sprintf("dx%d", k), diff(v(1), v(0), k)))
		}
		for k := 0; k < 3; k++ {
			out = append(out, decl(fmt.Sprintf("dy%d", k), diff(v(2), v(0), k)))
		}
		for k := 0; k < 3; k++ {
			k1, k2 := (k+1)%3, (k+2)%3
			out = append(out, decl(fmt.Sprintf("n%d", k), Sub{
				A: Mul(Var{Name: fmt.Sprintf("dx%d", k1)}, Var{Name: fmt.Sprintf("dy%d", k2)}),
				B: Mul(Var{Name: fmt.Sprintf("dx%d", k2)}, Var{Name: fmt.Sprintf("dy%d", k1)}),
			}))
		}
		out = append(out, decl(ScaleFactorName, Call{Func: "sqrt", Args: []Expr{Add(sq("n0"), sq("n1"), sq("n2"))}}))
		return out
	}
	panic(fmt.Sprintf("unsupported dimension %d", dim))
}

// RemoveUnused drops top level declarations whose names are neither in used
// nor read by a later statement that is kept
func RemoveUnused(stmts []Stmt, used map[string]bool) []Stmt {
	keep := make([]bool, len(stmts))
	refs := make([]map[string]bool, len(stmts))
	for i, s := range stmts {
		keep[i] = true
		refs[i] = References(s)
	}
	for i := len(stmts) - 1; i >= 0; i-- {
		name := Declared(stmts[i])
		if name == "" || used[name] {
			continue
		}
		needed := false
		for j := i + 1; j < len(stmts) && !needed; j++ {
			needed = keep[j] && refs[j][name]
		}
		keep[i] = needed
	}
	out := make([]Stmt, 0, len(stmts))
	for i, s := range stmts {
		if keep[i] {
			out = append(out, s)
		}
	}
	return out
}

// CountOps returns the number of multiply-add pairs in stmts: the number of
// additions, subtractions, multiplications and divisions halved. Array
// subscripts are index arithmetic and do not count; loop bodies count once.
func CountOps(stmts []Stmt) int {
	n := 0
	for _, s := range stmts {
		n += countStmt(s)
	}
	return n / 2
}

func countStmt(s Stmt) int {
	n := 0
	switch st := s.(type) {
	case Decl:
		n += countExpr(st.Value)
	case Assign:
		n += countExpr(st.RHS)
		if st.Op == "+=" {
			n++
		}
	case For:
		for _, b := range st.Body {
			n += countStmt(b)
		}
	case If:
		for _, b := range st.Body {
			n += countStmt(b)
		}
	case Switch:
		for _, c := range st.Cases {
			for _, b := range c {
				n += countStmt(b)
			}
		}
	}
	return n
}

func countExpr(e Expr) int {
	n := 0
	switch x := e.(type) {
	case Access:
		return 0
	case Sum:
		n += len(x.Terms) - 1
	case Product:
		n += len(x.Factors) - 1
	case Sub, Div:
		n++
	}
	for _, op := range operands(e) {
		n += countExpr(op)
	}
	return n
}
