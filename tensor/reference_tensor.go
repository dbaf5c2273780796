package tensor

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// ReferenceTensor is the integral of one monomial over the reference cell,
// A0[i, a] with i primary and a secondary. Internal indices are already
// summed. It is never modified after construction.
type ReferenceTensor struct {
	A0        *mat.Dense
	Primary   *MultiIndex
	Secondary *MultiIndex
	Internal  *MultiIndex
}

// NewReferenceTensor integrates m and collects its multi-indices
func NewReferenceTensor(m *Monomial, domain DomainType, facet0, facet1 int) (*ReferenceTensor, error) {
	A0, err := Integrate(m, domain, facet0, facet1)
	if err != nil {
		return nil, fmt.Errorf("integrating %s: %w", m, err)
	}
	primary, err := CreateMultiIndex(m, Primary)
	if err != nil {
		return nil, err
	}
	secondary, err := CreateMultiIndex(m, Secondary)
	if err != nil {
		return nil, err
	}
	internal, err := CreateMultiIndex(m, Internal)
	if err != nil {
		return nil, err
	}
	log.Debugf("reference tensor %s: %s %s %s", m, primary, secondary, internal)
	return ReferenceTensorFromMatrix(A0, primary, secondary, internal)
}

// ReferenceTensorFromMatrix wraps precomputed values, checking that the
// matrix shape matches the primary and secondary multi-indices.
func ReferenceTensorFromMatrix(A0 *mat.Dense, primary, secondary, internal *MultiIndex) (*ReferenceTensor, error) {
	r, c := A0.Dims()
	if r != primary.Size() || c != secondary.Size() {
		return nil, fmt.Errorf("reference tensor of shape %dx%d does not match %s x %s: %w",
			r, c, primary, secondary, ErrIndexMismatch)
	}
	if internal == nil {
		internal = NewMultiIndex(Internal, nil)
	}
	return &ReferenceTensor{A0: A0, Primary: primary, Secondary: secondary, Internal: internal}, nil
}

// At returns A0[i + a]
func (rt *ReferenceTensor) At(i, a []int) float64 {
	return rt.A0.At(rt.Primary.Flat(i), rt.Secondary.Flat(a))
}

// Rank is the number of primary indices, the rank of the element tensor
func (rt *ReferenceTensor) Rank() int { return rt.Primary.Rank() }
