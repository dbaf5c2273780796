package symbolic

import (
	"fmt"
	"math"
	"strings"
)

// Hasher is implemented by values with structural equality and a hash
// consistent with it. Equal values must hash equally; unequal values may
// collide.
type Hasher[T any] interface {
	Equals(T) bool
	Hash() uint64
}

// Expr is a scalar expression node. The set of node types is closed: a type
// switch over Constant, Symbol, ArgumentTerminal, Sum, Product, Division,
// Power and MathFunction is exhaustive.
type Expr interface {
	Hasher[Expr]
	// Operands returns the child nodes, nil for terminals
	Operands() []Expr
	String() string
	sealed()
}

const (
	offset64 uint64 = 14695981039346656037
	prime64  uint64 = 1099511628211
)

// node tags mixed into hashes
const (
	tagConstant uint64 = iota + 1
	tagSymbol
	tagArgument
	tagSum
	tagProduct
	tagDivision
	tagPower
	tagFunction
)

func mix(h, v uint64) uint64 {
	h ^= v
	h *= prime64
	return h
}

func hashString(h uint64, s string) uint64 {
	for i := 0; i < len(s); i++ {
		h = mix(h, uint64(s[i]))
	}
	return h
}

func hashOperands(tag uint64, ops []Expr) uint64 {
	h := mix(offset64, tag)
	for _, op := range ops {
		h = mix(h, op.Hash())
	}
	return h
}

func equalOperands(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}

// Constant is a literal number
type Constant struct {
	Value float64
}

func (c Constant) Equals(other Expr) bool {
	o, ok := other.(Constant)
	return ok && o.Value == c.Value
}
func (c Constant) Hash() uint64 {
	v := c.Value
	if v == 0 {
		// -0 equals 0
		v = 0
	}
	return mix(mix(offset64, tagConstant), math.Float64bits(v))
}
func (c Constant) Operands() []Expr { return nil }
func (c Constant) String() string   { return fmt.Sprintf("%g", c.Value) }
func (Constant) sealed()            {}

// Symbol is a named terminal that does not depend on arguments, such as a
// coefficient value or a geometric quantity
type Symbol struct {
	Name string
}

func (s Symbol) Equals(other Expr) bool {
	o, ok := other.(Symbol)
	return ok && o.Name == s.Name
}
func (s Symbol) Hash() uint64     { return hashString(mix(offset64, tagSymbol), s.Name) }
func (s Symbol) Operands() []Expr { return nil }
func (s Symbol) String() string   { return s.Name }
func (Symbol) sealed()            {}

// ArgumentTerminal is a component of a test or trial function, possibly
// differentiated, restricted or averaged
type ArgumentTerminal struct {
	Number      int
	Component   []int
	Derivatives []int
	Restriction string
	Averaged    bool
}

func (a ArgumentTerminal) Equals(other Expr) bool {
	o, ok := other.(ArgumentTerminal)
	return ok && a.Number == o.Number && equalInts(a.Component, o.Component) &&
		equalInts(a.Derivatives, o.Derivatives) && a.Restriction == o.Restriction &&
		a.Averaged == o.Averaged
}

func (a ArgumentTerminal) Hash() uint64 {
	h := mix(mix(offset64, tagArgument), uint64(a.Number))
	for _, c := range a.Component {
		h = mix(h, uint64(c))
	}
	h = mix(h, math.MaxUint64)
	for _, d := range a.Derivatives {
		h = mix(h, uint64(d))
	}
	h = hashString(h, a.Restriction)
	if a.Averaged {
		h = mix(h, 1)
	}
	return h
}

func (a ArgumentTerminal) Operands() []Expr { return nil }

func (a ArgumentTerminal) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "v%d", a.Number)
	for _, c := range a.Component {
		fmt.Fprintf(&sb, "[%d]", c)
	}
	for _, d := range a.Derivatives {
		fmt.Fprintf(&sb, ".d%d", d)
	}
	sb.WriteString(a.Restriction)
	if a.Averaged {
		sb.WriteString("~")
	}
	return sb.String()
}

func (ArgumentTerminal) sealed() {}

// Less orders argument terminals by number, component, derivatives,
// restriction and averaging
func (a ArgumentTerminal) Less(b ArgumentTerminal) bool {
	if a.Number != b.Number {
		return a.Number < b.Number
	}
	if c := compareInts(a.Component, b.Component); c != 0 {
		return c < 0
	}
	if c := compareInts(a.Derivatives, b.Derivatives); c != 0 {
		return c < 0
	}
	if a.Restriction != b.Restriction {
		return a.Restriction < b.Restriction
	}
	return !a.Averaged && b.Averaged
}

// Sum of its operands. Compound nodes are pointers; the constructors cache
// their hash so hashing a shared subexpression is constant time.
type Sum struct {
	Ops  []Expr
	hash uint64
}

func newSum(ops []Expr) *Sum { return &Sum{Ops: ops, hash: hashOperands(tagSum, ops)} }

func (s *Sum) Equals(other Expr) bool {
	o, ok := other.(*Sum)
	return ok && (s == o || s.Hash() == o.Hash() && equalOperands(s.Ops, o.Ops))
}
func (s *Sum) Hash() uint64     { return cached(s.hash, tagSum, s.Ops) }
func (s *Sum) Operands() []Expr { return s.Ops }
func (s *Sum) String() string   { return "(" + joinOps(s.Ops, " + ") + ")" }
func (*Sum) sealed()            {}

// Product of its operands
type Product struct {
	Ops  []Expr
	hash uint64
}

func newProduct(ops []Expr) *Product {
	return &Product{Ops: ops, hash: hashOperands(tagProduct, ops)}
}

func (p *Product) Equals(other Expr) bool {
	o, ok := other.(*Product)
	return ok && (p == o || p.Hash() == o.Hash() && equalOperands(p.Ops, o.Ops))
}
func (p *Product) Hash() uint64     { return cached(p.hash, tagProduct, p.Ops) }
func (p *Product) Operands() []Expr { return p.Ops }
func (p *Product) String() string   { return joinOps(p.Ops, "*") }
func (*Product) sealed()            {}

// Division Num/Den
type Division struct {
	Num, Den Expr
	hash     uint64
}

func newDivision(num, den Expr) *Division {
	return &Division{Num: num, Den: den, hash: hashOperands(tagDivision, []Expr{num, den})}
}

func (d *Division) Equals(other Expr) bool {
	o, ok := other.(*Division)
	return ok && (d == o || d.Hash() == o.Hash() && d.Num.Equals(o.Num) && d.Den.Equals(o.Den))
}
func (d *Division) Hash() uint64     { return cached(d.hash, tagDivision, d.Operands()) }
func (d *Division) Operands() []Expr { return []Expr{d.Num, d.Den} }
func (d *Division) String() string   { return fmt.Sprintf("(%s/%s)", d.Num, d.Den) }
func (*Division) sealed()            {}

// Power Base^Exponent
type Power struct {
	Base, Exponent Expr
	hash           uint64
}

func newPower(base, exponent Expr) *Power {
	return &Power{Base: base, Exponent: exponent, hash: hashOperands(tagPower, []Expr{base, exponent})}
}

func (p *Power) Equals(other Expr) bool {
	o, ok := other.(*Power)
	return ok && (p == o || p.Hash() == o.Hash() && p.Base.Equals(o.Base) && p.Exponent.Equals(o.Exponent))
}
func (p *Power) Hash() uint64     { return cached(p.hash, tagPower, p.Operands()) }
func (p *Power) Operands() []Expr { return []Expr{p.Base, p.Exponent} }
func (p *Power) String() string   { return fmt.Sprintf("pow(%s, %s)", p.Base, p.Exponent) }
func (*Power) sealed()            {}

// MathFunction applies a named elementary function
type MathFunction struct {
	Name string
	Arg  Expr
	hash uint64
}

func newMathFunction(name string, arg Expr) *MathFunction {
	return &MathFunction{Name: name, Arg: arg, hash: hashFunction(name, arg)}
}

func hashFunction(name string, arg Expr) uint64 {
	return mix(hashString(mix(offset64, tagFunction), name), arg.Hash())
}

func (f *MathFunction) Equals(other Expr) bool {
	o, ok := other.(*MathFunction)
	return ok && (f == o || f.Hash() == o.Hash() && f.Name == o.Name && f.Arg.Equals(o.Arg))
}
func (f *MathFunction) Hash() uint64 {
	if f.hash != 0 {
		return f.hash
	}
	return hashFunction(f.Name, f.Arg)
}
func (f *MathFunction) Operands() []Expr { return []Expr{f.Arg} }
func (f *MathFunction) String() string   { return fmt.Sprintf("%s(%s)", f.Name, f.Arg) }
func (*MathFunction) sealed()            {}

// cached returns the hash stored by a constructor, or computes it for nodes
// built as literals
func cached(h, tag uint64, ops []Expr) uint64 {
	if h != 0 {
		return h
	}
	return hashOperands(tag, ops)
}

// withOperands returns a node of the same operator as e over ops
func withOperands(e Expr, ops []Expr) Expr {
	switch n := e.(type) {
	case *Sum:
		return newSum(ops)
	case *Product:
		return newProduct(ops)
	case *Division:
		return newDivision(ops[0], ops[1])
	case *Power:
		return newPower(ops[0], ops[1])
	case *MathFunction:
		return newMathFunction(n.Name, ops[0])
	}
	return e
}

func joinOps(ops []Expr, sep string) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return strings.Join(parts, sep)
}

func equalInts(a, b []int) bool {
	return compareInts(a, b) == 0 && len(a) == len(b)
}

func compareInts(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}
