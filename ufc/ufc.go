// Package ufc wraps generated integral code in UFC integral classes
package ufc

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/augustjohansson/ffcx/codegen"
	"github.com/augustjohansson/ffcx/tensor"
	"github.com/augustjohansson/ffcx/tensorgen"
)

const integralTemplate = `/// This class defines the interface for the tabulation of the
/// {{.Kind}} tensor corresponding to the local contribution to a form from
/// the integral over {{.Over}}.

class {{.ClassName}}: public ufc::{{.Base}}
{
{{- if .Members}}
{{indent 2 .Members}}
{{end}}
public:

  /// Constructor
  {{.ClassName}}() : ufc::{{.Base}}()
  {
{{indent 4 .Constructor}}
  }

  /// Destructor
  virtual ~{{.ClassName}}()
  {
{{indent 4 .Destructor}}
  }

  /// Tabulate the tensor for the contribution from {{.From}}
  virtual void tabulate_tensor(double* A,
{{- range .Arguments}}
                               {{.}},
{{- end}}
                               int cell_orientation) const
  {
{{indent 4 .TabulateTensor}}
  }

};
`

const headerTemplate = `// This code conforms with the UFC specification version 1.0
// and was automatically generated by tensorc.

#ifndef __{{.Guard}}_H
#define __{{.Guard}}_H

#include <cmath>
#include <stdexcept>
#include <ufc.h>
{{range .Classes}}
{{.}}
{{end}}
#endif
`

var (
	integral = template.Must(template.New("integral").Funcs(template.FuncMap{"indent": codegen.Indent}).Parse(integralTemplate))
	header   = template.Must(template.New("header").Parse(headerTemplate))
)

type integralData struct {
	*tensorgen.Code
	Base, Kind, Over, From string
	Arguments              []string
}

func newIntegralData(code *tensorgen.Code, domain tensor.DomainType) (integralData, error) {
	d := integralData{Code: code}
	switch domain {
	case tensor.Cell:
		d.Base, d.Kind, d.Over, d.From = "cell_integral", "cell", "a cell", "a local cell"
		d.Arguments = []string{
			"const double * const * w",
			"const double* vertex_coordinates",
		}
	case tensor.ExteriorFacet:
		d.Base, d.Kind, d.Over, d.From = "exterior_facet_integral", "exterior facet", "an exterior facet",
			"a local exterior facet"
		d.Arguments = []string{
			"const double * const * w",
			"const double* vertex_coordinates",
			"std::size_t facet",
		}
	case tensor.InteriorFacet:
		d.Base, d.Kind, d.Over, d.From = "interior_facet_integral", "interior facet", "an interior facet",
			"a local interior facet"
		d.Arguments = []string{
			"const double * const * w",
			"const double* vertex_coordinates_0",
			"const double* vertex_coordinates_1",
			"std::size_t facet_0",
			"std::size_t facet_1",
		}
	default:
		return d, fmt.Errorf("%s: %w", domain, tensor.ErrUnsupportedDomain)
	}
	return d, nil
}

// Integral renders the class of one generated integral
func Integral(code *tensorgen.Code, domain tensor.DomainType) (string, error) {
	d, err := newIntegralData(code, domain)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := integral.Execute(&sb, d); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Header renders a header file holding the given classes
func Header(prefix string, classes []string) (string, error) {
	var sb strings.Builder
	err := header.Execute(&sb, struct {
		Guard   string
		Classes []string
	}{strings.ToUpper(prefix), classes})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
