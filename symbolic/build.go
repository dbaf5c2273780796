package symbolic

// Add returns a + b, dropping zero constants and folding two constants
func Add(a, b Expr) Expr {
	ca, aConst := a.(Constant)
	cb, bConst := b.(Constant)
	switch {
	case aConst && bConst:
		return Constant{ca.Value + cb.Value}
	case aConst && ca.Value == 0:
		return b
	case bConst && cb.Value == 0:
		return a
	}
	return newSum([]Expr{a, b})
}

// Mul returns a*b, dropping unit constants and folding two constants
func Mul(a, b Expr) Expr {
	ca, aConst := a.(Constant)
	cb, bConst := b.(Constant)
	switch {
	case aConst && bConst:
		return Constant{ca.Value * cb.Value}
	case aConst && ca.Value == 1:
		return b
	case bConst && cb.Value == 1:
		return a
	}
	return newProduct([]Expr{a, b})
}

// Div returns a/b, dropping a unit denominator
func Div(a, b Expr) Expr {
	if cb, ok := b.(Constant); ok && cb.Value == 1 {
		return a
	}
	return newDivision(a, b)
}

// Pow returns base^exponent
func Pow(base, exponent Expr) Expr {
	return newPower(base, exponent)
}

// Func applies the named elementary function
func Func(name string, arg Expr) Expr {
	return newMathFunction(name, arg)
}

// Sym returns the non-argument terminal with the given name
func Sym(name string) Expr { return Symbol{Name: name} }

// Num returns a constant
func Num(v float64) Expr { return Constant{Value: v} }

// Arg returns the plain argument terminal with the given number
func Arg(number int) Expr { return ArgumentTerminal{Number: number} }

// IsArgument reports whether e is an argument terminal
func IsArgument(e Expr) bool {
	_, ok := e.(ArgumentTerminal)
	return ok
}
