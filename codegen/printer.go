package codegen

import (
	"fmt"
	"strings"
)

// Dialect selects the target flavour of C
type Dialect int

const (
	UFC Dialect = iota + 1 // C++ for the UFC tabulate_tensor interface
	OKL                    // OCCA kernel language
)

func (d Dialect) String() string {
	switch d {
	case UFC:
		return "ufc"
	case OKL:
		return "okl"
	}
	return fmt.Sprintf("Dialect(%d)", int(d))
}

// ParseDialect accepts "ufc" and "okl"
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(s) {
	case "ufc", "c++", "cpp":
		return UFC, nil
	case "okl", "occa":
		return OKL, nil
	}
	return 0, fmt.Errorf("unknown dialect %q", s)
}

func (d Dialect) function(name string) string {
	if d == OKL {
		if name == "abs" {
			return "fabs"
		}
		return name
	}
	return "std::" + name
}

const indentUnit = "  "

// Printer renders statements in one dialect
type Printer struct {
	Dialect Dialect
}

func NewPrinter(d Dialect) *Printer {
	if d == 0 {
		d = UFC
	}
	return &Printer{Dialect: d}
}

// Print renders stmts one per line
func (p *Printer) Print(stmts []Stmt) string {
	var sb strings.Builder
	p.block(&sb, stmts, 0)
	return strings.TrimSuffix(sb.String(), "\n")
}

// Indent prefixes every non-empty line of s with n spaces
func Indent(n int, s string) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}

// Expr renders a single expression
func (p *Printer) Expr(e Expr) string {
	var sb strings.Builder
	p.expr(&sb, e)
	return sb.String()
}

func (p *Printer) block(sb *strings.Builder, stmts []Stmt, level int) {
	for _, s := range stmts {
		p.stmt(sb, s, level)
	}
}

func (p *Printer) line(sb *strings.Builder, level int, format string, args ...any) {
	if format == "" {
		sb.WriteString("\n")
		return
	}
	sb.WriteString(strings.Repeat(indentUnit, level))
	fmt.Fprintf(sb, format, args...)
	sb.WriteString("\n")
}

func (p *Printer) stmt(sb *strings.Builder, s Stmt, level int) {
	switch n := s.(type) {
	case Comment:
		p.line(sb, level, "// %s", n.Text)
	case Blank:
		p.line(sb, level, "")
	case Decl:
		p.line(sb, level, "%s %s = %s;", n.Type, n.Name, p.Expr(n.Value))
	case ArrayDecl:
		p.arrayDecl(sb, n, level)
	case Assign:
		p.line(sb, level, "%s %s %s;", p.Expr(n.LHS), n.Op, p.Expr(n.RHS))
	case For:
		p.line(sb, level, "for (unsigned int %s = %d; %s < %d; %s++)", n.Var, n.Lower, n.Var, n.Upper, n.Var)
		p.line(sb, level, "{")
		p.block(sb, n.Body, level+1)
		p.line(sb, level, "}")
	case If:
		p.line(sb, level, "if (%s)", p.Expr(n.Cond))
		p.line(sb, level, "{")
		p.block(sb, n.Body, level+1)
		p.line(sb, level, "}")
	case Switch:
		p.line(sb, level, "switch (%s)", n.Var)
		p.line(sb, level, "{")
		for i, c := range n.Cases {
			p.line(sb, level, "case %d:", i)
			p.line(sb, level+1, "{")
			p.block(sb, c, level+2)
			p.line(sb, level+2, "break;")
			p.line(sb, level+1, "}")
		}
		p.line(sb, level, "}")
	default:
		panic(fmt.Sprintf("unknown statement %T", s))
	}
}

// arrayDecl follows the layout of static matrices in kernel preambles: one
// row of the leading dimension per line.
func (p *Printer) arrayDecl(sb *strings.Builder, n ArrayDecl, level int) {
	var head strings.Builder
	if n.Static && p.Dialect == UFC {
		head.WriteString("static ")
	}
	if n.Const {
		head.WriteString("const ")
	}
	fmt.Fprintf(&head, "%s %s", n.Type, n.Name)
	for _, d := range n.Sizes {
		fmt.Fprintf(&head, "[%d]", d)
	}
	if n.Values == nil {
		p.line(sb, level, "%s;", head.String())
		return
	}
	integer := strings.Contains(n.Type, "int")
	if len(n.Sizes) == 1 {
		p.line(sb, level, "%s = %s;", head.String(), initializer(n.Values, n.Sizes, integer))
		return
	}
	p.line(sb, level, "%s = {", head.String())
	stride := len(n.Values) / n.Sizes[0]
	for i := 0; i < n.Sizes[0]; i++ {
		row := initializer(n.Values[i*stride:(i+1)*stride], n.Sizes[1:], integer)
		if i < n.Sizes[0]-1 {
			row += ","
		}
		p.line(sb, level+1, "%s", row)
	}
	p.line(sb, level, "};")
}

func initializer(values []float64, sizes []int, integer bool) string {
	if len(sizes) == 1 {
		parts := make([]string, len(values))
		for i, v := range values {
			if integer {
				parts[i] = fmt.Sprintf("%d", int(v))
			} else {
				parts[i] = fmt.Sprintf("%.15e", v)
			}
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	stride := len(values) / sizes[0]
	parts := make([]string, sizes[0])
	for i := range parts {
		parts[i] = initializer(values[i*stride:(i+1)*stride], sizes[1:], integer)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// FormatFloat renders a floating point literal. Zero and one print in
// short form so that identities stay recognisable in the output.
func FormatFloat(v float64) string {
	switch v {
	case 0:
		return "0.0"
	case 1:
		return "1.0"
	}
	return fmt.Sprintf("%.15e", v)
}

func (p *Printer) expr(sb *strings.Builder, e Expr) {
	switch n := e.(type) {
	case Literal:
		sb.WriteString(FormatFloat(n.Value))
	case IntLit:
		fmt.Fprintf(sb, "%d", n.Value)
	case Var:
		sb.WriteString(n.Name)
	case Access:
		sb.WriteString(n.Name)
		for _, ix := range n.Indices {
			sb.WriteString("[")
			p.expr(sb, ix)
			sb.WriteString("]")
		}
	case Sum:
		for i, t := range n.Terms {
			if i > 0 {
				sb.WriteString(" + ")
			}
			p.expr(sb, t)
		}
	case Sub:
		p.expr(sb, n.A)
		sb.WriteString(" - ")
		p.operand(sb, n.B, isAdditive)
	case Neg:
		sb.WriteString("-")
		p.operand(sb, n.X, isAdditive)
	case Product:
		for i, f := range n.Factors {
			if i > 0 {
				sb.WriteString("*")
			}
			p.operand(sb, f, isAdditive)
		}
	case Div:
		p.operand(sb, n.A, isAdditive)
		sb.WriteString("/")
		p.operand(sb, n.B, func(e Expr) bool { return isAdditive(e) || isMultiplicative(e) })
	case Group:
		sb.WriteString("(")
		p.expr(sb, n.X)
		sb.WriteString(")")
	case Call:
		sb.WriteString(p.Dialect.function(n.Func))
		sb.WriteString("(")
		for i, a := range n.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			p.expr(sb, a)
		}
		sb.WriteString(")")
	case Compare:
		p.expr(sb, n.A)
		fmt.Fprintf(sb, " %s ", n.Op)
		p.expr(sb, n.B)
	default:
		panic(fmt.Sprintf("unknown expression %T", e))
	}
}

func (p *Printer) operand(sb *strings.Builder, e Expr, needsParens func(Expr) bool) {
	if needsParens(e) {
		sb.WriteString("(")
		p.expr(sb, e)
		sb.WriteString(")")
		return
	}
	p.expr(sb, e)
}

func isAdditive(e Expr) bool {
	switch e.(type) {
	case Sum, Sub:
		return true
	}
	return false
}

func isMultiplicative(e Expr) bool {
	switch e.(type) {
	case Product, Div, Neg:
		return true
	}
	return false
}
