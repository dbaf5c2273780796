package symbolic

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnbound reports a terminal without a value
var ErrUnbound = errors.New("unbound terminal")

// Env supplies values for terminals
type Env interface {
	Value(terminal Expr) (float64, error)
}

// MapEnv binds terminals by their String form
type MapEnv map[string]float64

func (m MapEnv) Value(terminal Expr) (float64, error) {
	if c, ok := terminal.(Constant); ok {
		return c.Value, nil
	}
	v, ok := m[terminal.String()]
	if !ok {
		return 0, fmt.Errorf("%s: %w", terminal, ErrUnbound)
	}
	return v, nil
}

// Eval evaluates e once per distinct subexpression
func Eval(e Expr, env Env) (float64, error) {
	return BuildGraph(e).Eval(env)
}

// apply computes the operator of e on already evaluated operand values
func apply(e Expr, args []float64) (float64, error) {
	switch n := e.(type) {
	case *Sum:
		s := 0.0
		for _, a := range args {
			s += a
		}
		return s, nil
	case *Product:
		p := 1.0
		for _, a := range args {
			p *= a
		}
		return p, nil
	case *Division:
		return args[0] / args[1], nil
	case *Power:
		return math.Pow(args[0], args[1]), nil
	case *MathFunction:
		return evalFunction(n.Name, args[0])
	}
	return 0, fmt.Errorf("cannot apply terminal %s", e)
}

func evalFunction(name string, x float64) (float64, error) {
	switch name {
	case "sqrt":
		return math.Sqrt(x), nil
	case "exp":
		return math.Exp(x), nil
	case "ln", "log":
		return math.Log(x), nil
	case "sin":
		return math.Sin(x), nil
	case "cos":
		return math.Cos(x), nil
	case "tan":
		return math.Tan(x), nil
	case "abs":
		return math.Abs(x), nil
	}
	return 0, fmt.Errorf("unknown function %q", name)
}
