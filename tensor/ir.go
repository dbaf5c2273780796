package tensor

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/augustjohansson/ffcx/element"
)

// IntegralIR is the intermediate representation of one integral: the terms
// of the monomial sum for the cell, for each facet or for each facet pair.
type IntegralIR struct {
	DomainType         DomainType
	Cell               element.CellType
	GeometricDimension int
	NumFacets          int
	FormID             int
	DomainID           int

	Terms          []Term     // cell integrals
	FacetTerms     [][]Term   // exterior facet integrals, [facet]
	FacetPairTerms [][][]Term // interior facet integrals, [facet0][facet1]
}

// ComputeIntegralIR builds the terms of every case of the integral. Index
// IDs are renumbered first; reference tensors of monomials with equal
// signatures are computed once per case.
func ComputeIntegralIR(ms []*Monomial, domain DomainType, cell element.CellType, formID, domainID int) (*IntegralIR, error) {
	if len(ms) == 0 {
		return nil, fmt.Errorf("integral %d_%d has no monomials: %w", formID, domainID, ErrMalformedMonomial)
	}
	ms = ReassignIndices(ms)

	var primary *MultiIndex
	gks := make([]*GeometryTensor, len(ms))
	signatures := make([]string, len(ms))
	distinct := make(map[string]bool)
	for k, m := range ms {
		p, err := CreateMultiIndex(m, Primary)
		if err != nil {
			return nil, err
		}
		if primary == nil {
			primary = p
		} else if !primary.Compatible(p) {
			return nil, fmt.Errorf("monomial %d has primary indices %s, expected %s: %w", k, p, primary, ErrIndexMismatch)
		}
		if gks[k], err = NewGeometryTensor(m); err != nil {
			return nil, err
		}
		signatures[k] = HardSignature(m)
		distinct[signatures[k]] = true
	}

	ir := &IntegralIR{
		DomainType:         domain,
		Cell:               cell,
		GeometricDimension: int(cell.Dimension()),
		NumFacets:          cell.NumFacets(),
		FormID:             formID,
		DomainID:           domainID,
	}
	log.Infof("computing %s integral %d_%d on %s: %d terms, %d distinct reference tensors",
		domain, formID, domainID, cell, len(ms), len(distinct))

	build := func(facet0, facet1 int) ([]Term, error) {
		cache := make(map[string]*ReferenceTensor)
		terms := make([]Term, len(ms))
		for k, m := range ms {
			A0, ok := cache[signatures[k]]
			if !ok {
				var err error
				if A0, err = NewReferenceTensor(m, domain, facet0, facet1); err != nil {
					return nil, err
				}
				cache[signatures[k]] = A0
			}
			term, err := NewTerm(A0, gks[k], nil)
			if err != nil {
				return nil, err
			}
			terms[k] = term
		}
		return terms, nil
	}

	var err error
	switch domain {
	case Cell:
		ir.Terms, err = build(0, 0)
	case ExteriorFacet:
		ir.FacetTerms = make([][]Term, ir.NumFacets)
		for f := 0; f < ir.NumFacets && err == nil; f++ {
			ir.FacetTerms[f], err = build(f, 0)
		}
	case InteriorFacet:
		ir.FacetPairTerms = make([][][]Term, ir.NumFacets)
		for f0 := 0; f0 < ir.NumFacets && err == nil; f0++ {
			ir.FacetPairTerms[f0] = make([][]Term, ir.NumFacets)
			for f1 := 0; f1 < ir.NumFacets && err == nil; f1++ {
				ir.FacetPairTerms[f0][f1], err = build(f0, f1)
			}
		}
	default:
		err = fmt.Errorf("%s: %w", domain, ErrUnsupportedDomain)
	}
	if err != nil {
		return nil, err
	}
	return ir, nil
}

// CaseTerms returns the terms of the first case: the cell terms, facet 0 or
// the facet pair (0, 0)
func (ir *IntegralIR) CaseTerms() []Term {
	switch ir.DomainType {
	case ExteriorFacet:
		if len(ir.FacetTerms) > 0 {
			return ir.FacetTerms[0]
		}
	case InteriorFacet:
		if len(ir.FacetPairTerms) > 0 && len(ir.FacetPairTerms[0]) > 0 {
			return ir.FacetPairTerms[0][0]
		}
	default:
		return ir.Terms
	}
	return nil
}

// TensorSize is the number of element tensor entries
func (ir *IntegralIR) TensorSize() int {
	terms := ir.CaseTerms()
	if len(terms) == 0 {
		return 0
	}
	return terms[0].A0.Primary.Size()
}
