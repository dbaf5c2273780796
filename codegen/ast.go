// Package codegen holds a small C-family syntax tree used to emit element
// tensor kernels, a printer for the supported dialects and the code snippets
// shared by all integrals (Jacobians, facet determinants).
package codegen

// Expr is an expression node
type Expr interface{ expr() }

// Stmt is a statement node
type Stmt interface{ stmt() }

type (
	// Literal is a floating point constant
	Literal struct{ Value float64 }
	// IntLit is an integer constant
	IntLit struct{ Value int }
	// Var references a scalar variable
	Var struct{ Name string }
	// Access is an array element Name[i][j]...
	Access struct {
		Name    string
		Indices []Expr
	}
	// Sum of terms
	Sum struct{ Terms []Expr }
	// Sub is A - B
	Sub struct{ A, B Expr }
	// Neg is -X
	Neg struct{ X Expr }
	// Product of factors
	Product struct{ Factors []Expr }
	// Div is A / B
	Div struct{ A, B Expr }
	// Group parenthesises X
	Group struct{ X Expr }
	// Call applies a math function: abs, sqrt or pow
	Call struct {
		Func string
		Args []Expr
	}
	// Compare is A Op B with Op one of > < >= <=
	Compare struct {
		Op   string
		A, B Expr
	}
)

func (Literal) expr() {}
func (IntLit) expr()  {}
func (Var) expr()     {}
func (Access) expr()  {}
func (Sum) expr()     {}
func (Sub) expr()     {}
func (Neg) expr()     {}
func (Product) expr() {}
func (Div) expr()     {}
func (Group) expr()   {}
func (Call) expr()    {}
func (Compare) expr() {}

type (
	// Comment is a single line comment
	Comment struct{ Text string }
	// Blank is an empty line
	Blank struct{}
	// Decl declares and initialises a scalar
	Decl struct {
		Type  string
		Name  string
		Value Expr
	}
	// ArrayDecl declares an array, initialised when Values is not nil.
	// Values are stored row-major.
	ArrayDecl struct {
		Static bool
		Const  bool
		Type   string
		Name   string
		Sizes  []int
		Values []float64
	}
	// Assign is LHS Op RHS with Op "=" or "+="
	Assign struct {
		LHS Expr
		Op  string
		RHS Expr
	}
	// For loops Var over Lower..Upper-1
	For struct {
		Var          string
		Lower, Upper int
		Body         []Stmt
	}
	// If executes Body when Cond holds
	If struct {
		Cond Expr
		Body []Stmt
	}
	// Switch dispatches on Var to Cases[Var]
	Switch struct {
		Var   string
		Cases [][]Stmt
	}
)

func (Comment) stmt()   {}
func (Blank) stmt()     {}
func (Decl) stmt()      {}
func (ArrayDecl) stmt() {}
func (Assign) stmt()    {}
func (For) stmt()       {}
func (If) stmt()        {}
func (Switch) stmt()    {}

// Helpers building common nodes

func Float(v float64) Expr { return Literal{Value: v} }

func Int(v int) Expr { return IntLit{Value: v} }

func Name(name string) Expr { return Var{Name: name} }

// Index returns name[i][j]... for constant indices
func Index(name string, indices ...int) Expr {
	ix := make([]Expr, len(indices))
	for k, i := range indices {
		ix[k] = IntLit{Value: i}
	}
	return Access{Name: name, Indices: ix}
}

// Add returns the sum of terms, collapsing trivial sums
func Add(terms ...Expr) Expr {
	switch len(terms) {
	case 0:
		return Literal{}
	case 1:
		return terms[0]
	}
	return Sum{Terms: terms}
}

// Mul returns the product of factors, collapsing trivial products
func Mul(factors ...Expr) Expr {
	switch len(factors) {
	case 0:
		return Literal{Value: 1}
	case 1:
		return factors[0]
	}
	return Product{Factors: factors}
}

// Walk calls f for every expression reachable from s, statements included
func Walk(s Stmt, f func(Expr)) {
	switch n := s.(type) {
	case Decl:
		walkExpr(n.Value, f)
	case Assign:
		walkExpr(n.LHS, f)
		walkExpr(n.RHS, f)
	case For:
		for _, b := range n.Body {
			Walk(b, f)
		}
	case If:
		walkExpr(n.Cond, f)
		for _, b := range n.Body {
			Walk(b, f)
		}
	case Switch:
		f(Var{Name: n.Var})
		for _, c := range n.Cases {
			for _, b := range c {
				Walk(b, f)
			}
		}
	}
}

func walkExpr(e Expr, f func(Expr)) {
	if e == nil {
		return
	}
	f(e)
	for _, op := range operands(e) {
		walkExpr(op, f)
	}
}

func operands(e Expr) []Expr {
	switch n := e.(type) {
	case Access:
		return n.Indices
	case Sum:
		return n.Terms
	case Sub:
		return []Expr{n.A, n.B}
	case Neg:
		return []Expr{n.X}
	case Product:
		return n.Factors
	case Div:
		return []Expr{n.A, n.B}
	case Group:
		return []Expr{n.X}
	case Call:
		return n.Args
	case Compare:
		return []Expr{n.A, n.B}
	}
	return nil
}

// References returns the names of the variables and arrays read by s
func References(s Stmt) map[string]bool {
	refs := make(map[string]bool)
	Walk(s, func(e Expr) {
		switch n := e.(type) {
		case Var:
			refs[n.Name] = true
		case Access:
			refs[n.Name] = true
		}
	})
	return refs
}

// Declared returns the name declared by s, or "" when s is not a declaration
func Declared(s Stmt) string {
	switch n := s.(type) {
	case Decl:
		return n.Name
	case ArrayDecl:
		return n.Name
	}
	return ""
}
