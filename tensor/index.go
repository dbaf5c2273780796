package tensor

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedMonomial reports inconsistent index declarations
	ErrMalformedMonomial = errors.New("malformed monomial")
	// ErrIndexMismatch reports reference and geometry tensors that cannot be
	// contracted
	ErrIndexMismatch = errors.New("index mismatch")
	// ErrUnsupportedDomain reports an unknown integral domain type
	ErrUnsupportedDomain = errors.New("unsupported domain type")
	// ErrRestriction reports restricted factors where none are allowed, or
	// unrestricted factors on interior facets
	ErrRestriction = errors.New("invalid restriction")
)

// IndexType classifies the indices of a monomial
type IndexType uint8

const (
	Fixed     IndexType = iota // constant value
	Primary                    // element tensor dimensions
	Secondary                  // summed in the contraction A0:GK
	Internal                   // summed inside the reference tensor
	External                   // summed inside the geometry tensor
)

func (t IndexType) String() string {
	switch t {
	case Fixed:
		return "fixed"
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	case Internal:
		return "internal"
	case External:
		return "external"
	}
	return fmt.Sprintf("IndexType(%d)", uint8(t))
}

// ParseIndexType maps the short index names used in form files to types
func ParseIndexType(s string) (IndexType, error) {
	switch s {
	case "fixed":
		return Fixed, nil
	case "primary", "i":
		return Primary, nil
	case "secondary", "a":
		return Secondary, nil
	case "internal", "g":
		return Internal, nil
	case "external", "b":
		return External, nil
	}
	return 0, fmt.Errorf("unknown index type %q", s)
}

// MonomialIndex is one index variable of a monomial. ID numbers the index
// within its type and Dim is its range 0..Dim-1. A Fixed index always takes
// Value.
type MonomialIndex struct {
	Type  IndexType
	ID    int
	Dim   int
	Value int
}

// FixedIndex returns an index with the constant value v
func FixedIndex(v int) MonomialIndex {
	return MonomialIndex{Type: Fixed, Dim: 1, Value: v}
}

// NewIndex returns a free index of the given type
func NewIndex(t IndexType, id, dim int) MonomialIndex {
	if t == Fixed {
		panic("use FixedIndex for fixed indices")
	}
	return MonomialIndex{Type: t, ID: id, Dim: dim}
}

// Eval returns the value of the index for concrete primary, secondary,
// internal and external index tuples.
func (mi MonomialIndex) Eval(primary, secondary, internal, external []int) int {
	switch mi.Type {
	case Fixed:
		return mi.Value
	case Primary:
		return primary[mi.ID]
	case Secondary:
		return secondary[mi.ID]
	case Internal:
		return internal[mi.ID]
	case External:
		return external[mi.ID]
	}
	panic(fmt.Sprintf("unknown index type %d", mi.Type))
}

func (mi MonomialIndex) String() string {
	switch mi.Type {
	case Fixed:
		return fmt.Sprintf("%d", mi.Value)
	case Primary:
		return fmt.Sprintf("i_%d", mi.ID)
	case Secondary:
		return fmt.Sprintf("a_%d", mi.ID)
	case Internal:
		return fmt.Sprintf("g_%d", mi.ID)
	case External:
		return fmt.Sprintf("b_%d", mi.ID)
	}
	return "?"
}
