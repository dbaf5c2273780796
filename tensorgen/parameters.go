// Package tensorgen generates tabulate_tensor code for integrals in tensor
// representation: the contraction A[i] = sum_a A0[i,a]*G[a] of precomputed
// reference tensors with geometry tensors evaluated on the physical cell.
package tensorgen

import (
	"errors"
	"fmt"

	"github.com/augustjohansson/ffcx/codegen"
)

var (
	// ErrMissingPlan reports a term without a contraction plan when the
	// first term of the integral has one
	ErrMissingPlan = errors.New("missing optimized tensor contraction")
	// ErrPlanOutput reports a plan entry that does not write the element
	// tensor
	ErrPlanOutput = errors.New("expecting element tensor entry in contraction plan")
	// ErrLevel reports an unknown optimization level
	ErrLevel = errors.New("unknown optimization level")
	// ErrNoTerms reports an integral case without terms
	ErrNoTerms = errors.New("no terms to contract")
	// ErrEpsilon reports a negative zero threshold
	ErrEpsilon = errors.New("negative epsilon")
)

// Level selects the shape of the generated contraction code. All levels
// compute the same element tensor.
type Level int

const (
	// Expanded writes every entry as one flat sum of products
	Expanded Level = iota
	// Grouped factors the external index sum of each geometry tensor entry
	Grouped
	// Declared computes geometry tensor entries once as named constants
	Declared
	// Looped stores reference tensors in static tables and loops over
	// secondary indices
	Looped
	// Guarded adds runtime zero checks on reference tensor entries
	Guarded
	// QuadratureLoop binds quadrature element indices to the point loop
	QuadratureLoop
)

// MaxLevel is the highest optimization level
const MaxLevel = QuadratureLoop

func (l Level) String() string {
	switch l {
	case Expanded:
		return "expanded"
	case Grouped:
		return "grouped"
	case Declared:
		return "declared"
	case Looped:
		return "looped"
	case Guarded:
		return "guarded"
	case QuadratureLoop:
		return "quadrature-loop"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Parameters control code generation
type Parameters struct {
	// Epsilon is the magnitude below which reference tensor entries are
	// treated as zero
	Epsilon       float64
	OptimizeLevel Level
	Dialect       codegen.Dialect
}

// DefaultParameters generates declared geometry tensors in UFC C++ with
// entries below 1e-14 treated as zero
func DefaultParameters() Parameters {
	return Parameters{
		Epsilon:       1e-14,
		OptimizeLevel: Declared,
		Dialect:       codegen.UFC,
	}
}

func (p Parameters) validate() error {
	if p.OptimizeLevel < Expanded || p.OptimizeLevel > MaxLevel {
		return fmt.Errorf("%d: %w", int(p.OptimizeLevel), ErrLevel)
	}
	if p.Epsilon < 0 {
		return fmt.Errorf("%g: %w", p.Epsilon, ErrEpsilon)
	}
	return nil
}

// Context is the state of one code generation call: the Jacobian data and
// geometry tensor entries read by the generated code.
type Context struct {
	JSet map[string]bool
	GSet map[string]bool

	lang codegen.Language
	eps  float64
}

// NewContext returns an empty context generating C code
func NewContext(params Parameters) *Context {
	return &Context{
		JSet: make(map[string]bool),
		GSet: make(map[string]bool),
		lang: codegen.C{Epsilon: params.Epsilon},
		eps:  params.Epsilon,
	}
}
