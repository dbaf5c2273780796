// Package occa runs generated integrals over batches of cells. Each cell of
// a batch is one iteration of the @outer loop of an OCCA kernel whose body is
// the tabulate_tensor code printed in the OKL dialect.
package occa

import (
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/augustjohansson/ffcx/codegen"
	"github.com/augustjohansson/ffcx/kernel"
	"github.com/augustjohansson/ffcx/tensor"
)

// ErrLayout reports cell inputs that do not match the batch layout
var ErrLayout = errors.New("cell inputs do not match layout")

// Layout describes the per cell data of a batch
type Layout struct {
	Domain   tensor.DomainType
	Dim      int // geometric dimension
	Vertices int // vertices per cell
	Size     int // element tensor entries per cell

	// Coefficients holds the number of values per cell of each coefficient
	Coefficients []int
}

// NewLayout returns the layout of ir with the given coefficient sizes
func NewLayout(ir *tensor.IntegralIR, coefficients []int) Layout {
	return Layout{
		Domain:       ir.DomainType,
		Dim:          ir.GeometricDimension,
		Vertices:     ir.Cell.NumVertices(),
		Size:         ir.TensorSize(),
		Coefficients: append([]int(nil), coefficients...),
	}
}

func (l Layout) sides() int {
	if l.Domain == tensor.InteriorFacet {
		return 2
	}
	return 1
}

func (l Layout) facets() int {
	switch l.Domain {
	case tensor.ExteriorFacet:
		return 1
	case tensor.InteriorFacet:
		return 2
	}
	return 0
}

// coordinates is the number of vertex coordinates per side
func (l Layout) coordinates() int { return l.Vertices * l.Dim }

func (l Layout) wStride() int {
	n := 0
	for _, c := range l.Coefficients {
		n += c
	}
	return n
}

// Batch is the flat device data of K cells
type Batch struct {
	K int
	W []float64
	X []float64
	F []int32
}

// Pack flattens the inputs of each cell in cell order
func (l Layout) Pack(cells []kernel.Inputs) (*Batch, error) {
	b := &Batch{
		K: len(cells),
		W: make([]float64, 0, len(cells)*l.wStride()),
		X: make([]float64, 0, len(cells)*l.sides()*l.coordinates()),
		F: make([]int32, 0, len(cells)*l.facets()),
	}
	for k, in := range cells {
		if len(in.W) != len(l.Coefficients) {
			return nil, fmt.Errorf("cell %d: %d coefficients, expected %d: %w", k, len(in.W), len(l.Coefficients), ErrLayout)
		}
		for n, w := range in.W {
			if len(w) != l.Coefficients[n] {
				return nil, fmt.Errorf("cell %d: coefficient %d has %d values, expected %d: %w",
					k, n, len(w), l.Coefficients[n], ErrLayout)
			}
			b.W = append(b.W, w...)
		}
		if len(in.Coordinates) != l.sides() {
			return nil, fmt.Errorf("cell %d: %d coordinate sets, expected %d: %w", k, len(in.Coordinates), l.sides(), ErrLayout)
		}
		for _, x := range in.Coordinates {
			if len(x) != l.coordinates() {
				return nil, fmt.Errorf("cell %d: %d vertex coordinates, expected %d: %w", k, len(x), l.coordinates(), ErrLayout)
			}
			b.X = append(b.X, x...)
		}
		if len(in.Facets) != l.facets() {
			return nil, fmt.Errorf("cell %d: %d facets, expected %d: %w", k, len(in.Facets), l.facets(), ErrLayout)
		}
		for _, f := range in.Facets {
			b.F = append(b.F, int32(f))
		}
	}
	return b, nil
}

// Split cuts the flat element tensors of a batch into one slice per cell
func (l Layout) Split(AK []float64) [][]float64 {
	out := make([][]float64, 0, len(AK)/max(l.Size, 1))
	for k := 0; k+l.Size <= len(AK) && l.Size > 0; k += l.Size {
		out = append(out, AK[k:k+l.Size])
	}
	return out
}

// RunHost evaluates body for every cell with the interpreter, giving the
// reference result of a device run
func RunHost(body []codegen.Stmt, l Layout, cells []kernel.Inputs) ([][]float64, error) {
	out := make([][]float64, len(cells))
	for k, in := range cells {
		A, err := kernel.Run(body, l.Size, in)
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", k, err)
		}
		out[k] = A
	}
	return out, nil
}

const kernelTemplate = `@kernel void {{.Name}}(const int K,
                  const double *W,
                  const double *X,
                  const int *F,
                  double *AK)
{
  for (int cell = 0; cell < K; ++cell; @outer) {
    for (int lane = 0; lane < 1; ++lane; @inner) {
{{- range .Setup}}
      {{.}}
{{- end}}

{{.Body}}
    }
  }
}
`

var okl = template.Must(template.New("kernel").Parse(kernelTemplate))

// Source renders the OKL kernel name evaluating body for each cell of a batch
func Source(name string, body []codegen.Stmt, l Layout) (string, error) {
	var setup []string
	if len(l.Coefficients) > 0 {
		setup = append(setup, fmt.Sprintf("const double *w[%d];", len(l.Coefficients)))
		offset := 0
		for n, c := range l.Coefficients {
			setup = append(setup, fmt.Sprintf("w[%d] = W + cell*%d + %d;", n, l.wStride(), offset))
			offset += c
		}
	}

	nx := l.coordinates()
	switch l.Domain {
	case tensor.Cell:
		setup = append(setup,
			fmt.Sprintf("const double *%s = X + cell*%d;", codegen.CoordinatesName(""), nx))
	case tensor.ExteriorFacet:
		setup = append(setup,
			fmt.Sprintf("const double *%s = X + cell*%d;", codegen.CoordinatesName(""), nx),
			fmt.Sprintf("const int %s = F[cell];", codegen.FacetName("")))
	case tensor.InteriorFacet:
		setup = append(setup,
			fmt.Sprintf("const double *%s = X + cell*%d;", codegen.CoordinatesName("+"), 2*nx),
			fmt.Sprintf("const double *%s = X + cell*%d + %d;", codegen.CoordinatesName("-"), 2*nx, nx),
			fmt.Sprintf("const int %s = F[2*cell];", codegen.FacetName("+")),
			fmt.Sprintf("const int %s = F[2*cell + 1];", codegen.FacetName("-")))
	default:
		return "", fmt.Errorf("%s: %w", l.Domain, tensor.ErrUnsupportedDomain)
	}
	setup = append(setup, fmt.Sprintf("double *%s = AK + cell*%d;", codegen.ElementTensorName, l.Size))

	var sb strings.Builder
	err := okl.Execute(&sb, struct {
		Name  string
		Setup []string
		Body  string
	}{name, setup, codegen.Indent(6, codegen.NewPrinter(codegen.OKL).Print(body))})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
