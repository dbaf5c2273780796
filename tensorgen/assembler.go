package tensorgen

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/augustjohansson/ffcx/codegen"
	"github.com/augustjohansson/ffcx/tensor"
)

// Ops counts multiply-add pairs in the parts of a tabulate_tensor body
type Ops struct {
	Jacobian    int
	Geometry    int
	Contraction int
}

// Total is the operation count of the whole body
func (o Ops) Total() int { return o.Jacobian + o.Geometry + o.Contraction }

// Code is the generated code of one integral class
type Code struct {
	ClassName      string
	Members        string
	Constructor    string
	Destructor     string
	TabulateTensor string

	// Body is the syntax tree printed as TabulateTensor
	Body []codegen.Stmt
	Ops  Ops
}

const doNothing = "// Do nothing"

// ClassName is <prefix>_<domain>_integral_<form>_<domain id>
func ClassName(prefix string, domain tensor.DomainType, formID, domainID int) string {
	return fmt.Sprintf("%s_%s_integral_%d_%d", prefix, domain, formID, domainID)
}

// GenerateIntegralCode generates the integral class of ir
func GenerateIntegralCode(ir *tensor.IntegralIR, prefix string, params Parameters) (*Code, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	body, ops, err := TabulateTensor(ir, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ClassName(prefix, ir.DomainType, ir.FormID, ir.DomainID), err)
	}
	code := &Code{
		ClassName:      ClassName(prefix, ir.DomainType, ir.FormID, ir.DomainID),
		Constructor:    doNothing,
		Destructor:     doNothing,
		TabulateTensor: codegen.NewPrinter(params.Dialect).Print(body),
		Body:           body,
		Ops:            ops,
	}
	log.Debugf("%s: %d operations at level %s", code.ClassName, ops.Total(), params.OptimizeLevel)
	return code, nil
}

// TabulateTensor generates the body of tabulate_tensor: operation counts,
// Jacobian data, geometry tensor and element tensor
func TabulateTensor(ir *tensor.IntegralIR, params Parameters) ([]codegen.Stmt, Ops, error) {
	if err := params.validate(); err != nil {
		return nil, Ops{}, err
	}
	ctx := NewContext(params)
	level := params.OptimizeLevel
	dim := ir.GeometricDimension

	var tCode, gCode, jCode []codegen.Stmt
	switch ir.DomainType {
	case tensor.Cell:
		var err error
		if tCode, err = ctx.contract(ir.Terms, level); err != nil {
			return nil, Ops{}, err
		}
		gCode = ctx.geometry(ir.Terms, level)
		jCode = append(ctx.lang.Jacobian(dim, ""), codegen.Blank{})
		jCode = append(jCode, ctx.lang.ScaleFactor("")...)

	case tensor.ExteriorFacet:
		if len(ir.FacetTerms) == 0 {
			return nil, Ops{}, fmt.Errorf("exterior facet integral without facets: %w", ErrNoTerms)
		}
		cases := make([][]codegen.Stmt, len(ir.FacetTerms))
		for i, terms := range ir.FacetTerms {
			var err error
			if cases[i], err = ctx.contract(terms, level); err != nil {
				return nil, Ops{}, fmt.Errorf("facet %d: %w", i, err)
			}
		}
		tCode = ctx.lang.Switch(codegen.FacetName(""), cases, nil)
		gCode = ctx.geometry(ir.FacetTerms[0], level)
		jCode = append(ctx.lang.Jacobian(dim, ""), codegen.Blank{})
		jCode = append(jCode, ctx.lang.FacetDeterminant(dim, "")...)

	case tensor.InteriorFacet:
		if len(ir.FacetPairTerms) == 0 || len(ir.FacetPairTerms[0]) == 0 {
			return nil, Ops{}, fmt.Errorf("interior facet integral without facets: %w", ErrNoTerms)
		}
		outer := make([][]codegen.Stmt, len(ir.FacetPairTerms))
		for i, row := range ir.FacetPairTerms {
			cases := make([][]codegen.Stmt, len(row))
			for j, terms := range row {
				var err error
				if cases[j], err = ctx.contract(terms, level); err != nil {
					return nil, Ops{}, fmt.Errorf("facets %d, %d: %w", i, j, err)
				}
			}
			outer[i] = ctx.lang.Switch(codegen.FacetName("-"), cases, nil)
		}
		tCode = ctx.lang.Switch(codegen.FacetName("+"), outer, nil)
		gCode = ctx.geometry(ir.FacetPairTerms[0][0], level)
		jCode = append(ctx.lang.Jacobian(dim, "+"), ctx.lang.Jacobian(dim, "-")...)
		jCode = append(jCode, codegen.Blank{})
		jCode = append(jCode, ctx.lang.FacetDeterminant(dim, "+")...)

	default:
		return nil, Ops{}, fmt.Errorf("%s: %w", ir.DomainType, tensor.ErrUnsupportedDomain)
	}

	jacobian := codegen.RemoveUnused(jCode, ctx.JSet)
	ops := Ops{
		Jacobian:    codegen.CountOps(jacobian),
		Geometry:    codegen.CountOps(gCode),
		Contraction: codegen.CountOps(tCode),
	}

	body := []codegen.Stmt{
		codegen.Comment{Text: fmt.Sprintf("Number of operations (multiply-add pairs) for Jacobian data:      %d", ops.Jacobian)},
		codegen.Comment{Text: fmt.Sprintf("Number of operations (multiply-add pairs) for geometry tensor:    %d", ops.Geometry)},
		codegen.Comment{Text: fmt.Sprintf("Number of operations (multiply-add pairs) for tensor contraction: %d", ops.Contraction)},
		codegen.Comment{Text: fmt.Sprintf("Total number of operations (multiply-add pairs):                  %d", ops.Total())},
		codegen.Blank{},
	}
	body = append(body, jacobian...)
	body = append(body, codegen.Blank{}, codegen.Comment{Text: "Compute geometry tensor"})
	body = append(body, gCode...)
	body = append(body, codegen.Blank{}, codegen.Comment{Text: "Compute element tensor"})
	body = append(body, tCode...)
	return body, ops, nil
}
