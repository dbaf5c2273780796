package form

import (
	"fmt"

	"github.com/augustjohansson/ffcx/symbolic"
)

func (es ExprSpec) fields() int {
	n := 0
	for _, set := range []bool{
		es.Num != nil, es.Sym != "", es.Arg != nil, es.Sum != nil,
		es.Product != nil, es.Div != nil, es.Pow != nil, es.Func != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

func (es ExprSpec) build() (symbolic.Expr, error) {
	if n := es.fields(); n != 1 {
		return nil, fmt.Errorf("expression node with %d kinds, expected one: %w", n, ErrForm)
	}
	switch {
	case es.Num != nil:
		return symbolic.Num(*es.Num), nil
	case es.Sym != "":
		return symbolic.Sym(es.Sym), nil
	case es.Arg != nil:
		if es.Arg.Number < 0 {
			return nil, fmt.Errorf("negative argument number %d: %w", es.Arg.Number, ErrForm)
		}
		return symbolic.ArgumentTerminal{
			Number:      es.Arg.Number,
			Component:   es.Arg.Component,
			Derivatives: es.Arg.Derivatives,
			Restriction: es.Arg.Restriction,
			Averaged:    es.Arg.Averaged,
		}, nil
	case es.Sum != nil:
		return fold(es.Sum, symbolic.Add)
	case es.Product != nil:
		return fold(es.Product, symbolic.Mul)
	case es.Div != nil:
		a, b, err := pair(es.Div)
		if err != nil {
			return nil, err
		}
		return symbolic.Div(a, b), nil
	case es.Pow != nil:
		a, b, err := pair(es.Pow)
		if err != nil {
			return nil, err
		}
		return symbolic.Pow(a, b), nil
	}
	arg, err := es.Func.Arg.build()
	if err != nil {
		return nil, err
	}
	return symbolic.Func(es.Func.Name, arg), nil
}

func fold(specs []ExprSpec, op func(a, b symbolic.Expr) symbolic.Expr) (symbolic.Expr, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("empty operand list: %w", ErrForm)
	}
	acc, err := specs[0].build()
	if err != nil {
		return nil, err
	}
	for _, s := range specs[1:] {
		e, err := s.build()
		if err != nil {
			return nil, err
		}
		acc = op(acc, e)
	}
	return acc, nil
}

func pair(specs []ExprSpec) (symbolic.Expr, symbolic.Expr, error) {
	if len(specs) != 2 {
		return nil, nil, fmt.Errorf("%d operands, expected 2: %w", len(specs), ErrForm)
	}
	a, err := specs[0].build()
	if err != nil {
		return nil, nil, err
	}
	b, err := specs[1].build()
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}
