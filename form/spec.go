// Package form reads form files: YAML descriptions of the monomials of each
// integral of a form, and of symbolic integrands for factorization.
package form

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrForm reports a form file that does not describe valid integrals
var ErrForm = errors.New("invalid form")

// FileSpec is the top level of a form file
type FileSpec struct {
	Prefix      string                 `yaml:"prefix"`
	Elements    map[string]ElementSpec `yaml:"elements"`
	Integrals   []IntegralSpec         `yaml:"integrals"`
	Expressions map[string]ExprSpec    `yaml:"expressions,omitempty"`
}

// ElementSpec names a finite element. Components > 0 makes a vector
// element of that many copies.
type ElementSpec struct {
	Family     string `yaml:"family"`
	Cell       string `yaml:"cell"`
	Degree     int    `yaml:"degree"`
	Components int    `yaml:"components,omitempty"`
}

// IntegralSpec is one integral: a sum of monomials over one domain
type IntegralSpec struct {
	Domain    string         `yaml:"domain"`
	Form      int            `yaml:"form"`
	ID        int            `yaml:"id"`
	Monomials []MonomialSpec `yaml:"monomials"`
}

// MonomialSpec mirrors tensor.Monomial. Indices are written i0 (primary),
// a0 (secondary), g0 (internal), b0 (external) or as an integer for a
// fixed index; a ":n" suffix sets the range where it cannot be inferred.
type MonomialSpec struct {
	Float        *float64          `yaml:"float,omitempty"`
	Determinant  DeterminantSpec   `yaml:"determinant,omitempty"`
	Coefficients []CoefficientSpec `yaml:"coefficients,omitempty"`
	Transforms   []TransformSpec   `yaml:"transforms,omitempty"`
	Arguments    []ArgumentSpec    `yaml:"arguments"`
	Plan         []PlanEntrySpec   `yaml:"plan,omitempty"`
}

type DeterminantSpec struct {
	Power       int    `yaml:"power"`
	Restriction string `yaml:"restriction,omitempty"`
}

type CoefficientSpec struct {
	Number int    `yaml:"number"`
	Index  string `yaml:"index"`
}

type TransformSpec struct {
	Kind        string `yaml:"kind"`
	Index0      string `yaml:"index0"`
	Index1      string `yaml:"index1"`
	Restriction string `yaml:"restriction,omitempty"`
}

type ArgumentSpec struct {
	Element     string   `yaml:"element"`
	Index       string   `yaml:"index"`
	Components  []string `yaml:"components,omitempty"`
	Derivatives []string `yaml:"derivatives,omitempty"`
	Restriction string   `yaml:"restriction,omitempty"`
}

// PlanEntrySpec computes A[Output] from element tensor entries (A) and
// geometry tensor entries (G)
type PlanEntrySpec struct {
	Output   int               `yaml:"output"`
	Operands []PlanOperandSpec `yaml:"operands"`
}

type PlanOperandSpec struct {
	Coefficient float64 `yaml:"coefficient"`
	A           *int    `yaml:"a,omitempty"`
	G           *int    `yaml:"g,omitempty"`
}

// ExprSpec is one node of a symbolic expression. Exactly one field is set.
type ExprSpec struct {
	Num     *float64   `yaml:"num,omitempty"`
	Sym     string     `yaml:"sym,omitempty"`
	Arg     *ArgSpec   `yaml:"arg,omitempty"`
	Sum     []ExprSpec `yaml:"sum,omitempty"`
	Product []ExprSpec `yaml:"product,omitempty"`
	Div     []ExprSpec `yaml:"div,omitempty"`
	Pow     []ExprSpec `yaml:"pow,omitempty"`
	Func    *FuncSpec  `yaml:"func,omitempty"`
}

type ArgSpec struct {
	Number      int    `yaml:"number"`
	Component   []int  `yaml:"component,omitempty"`
	Derivatives []int  `yaml:"derivatives,omitempty"`
	Restriction string `yaml:"restriction,omitempty"`
	Averaged    bool   `yaml:"averaged,omitempty"`
}

type FuncSpec struct {
	Name string   `yaml:"name"`
	Arg  ExprSpec `yaml:"arg"`
}

// Load reads and checks a form file
func Load(path string) (*Form, error) {
	if path == "" {
		return nil, errors.New("empty form path")
	}
	clean := filepath.Clean(path)
	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("read form: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", clean, err)
	}
	return f, nil
}

// Parse decodes a form file held in memory
func Parse(data []byte) (*Form, error) {
	spec := new(FileSpec)
	if err := yaml.Unmarshal(data, spec); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}
	return spec.Build()
}
