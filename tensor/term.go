package tensor

import "fmt"

// OperandKind tells whether a plan operand refers to an element tensor
// entry or to a geometry tensor entry
type OperandKind uint8

const (
	ElementTensorEntry  OperandKind = 0
	GeometryTensorEntry OperandKind = 1
)

// PlanOperand is one scaled operand of a planned linear combination. Index
// is a flat element tensor position for ElementTensorEntry and a flat
// secondary position for GeometryTensorEntry.
type PlanOperand struct {
	Coefficient float64
	Kind        OperandKind
	Index       int
}

// PlanEntry computes one output entry as a linear combination of operands
type PlanEntry struct {
	OutputKind OperandKind
	Output     int
	Operands   []PlanOperand
}

// ContractionPlan is a precomputed sparse contraction, typically produced by
// an external optimizer that reuses already computed element tensor entries.
type ContractionPlan []PlanEntry

// Term is one monomial of an integral: its reference tensor, its geometry
// tensor and an optional contraction plan.
type Term struct {
	A0   *ReferenceTensor
	GK   *GeometryTensor
	Plan ContractionPlan
}

// NewTerm checks that A0 and GK can be contracted
func NewTerm(A0 *ReferenceTensor, GK *GeometryTensor, plan ContractionPlan) (Term, error) {
	if !A0.Secondary.Compatible(GK.Secondary) {
		return Term{}, fmt.Errorf("reference tensor %s and geometry tensor %s: %w",
			A0.Secondary, GK.Secondary, ErrIndexMismatch)
	}
	for _, e := range plan {
		for _, op := range e.Operands {
			switch op.Kind {
			case ElementTensorEntry:
				if op.Index < 0 || op.Index >= A0.Primary.Size() {
					return Term{}, fmt.Errorf("plan operand A[%d] out of range: %w", op.Index, ErrIndexMismatch)
				}
			case GeometryTensorEntry:
				if op.Index < 0 || op.Index >= GK.Secondary.Size() {
					return Term{}, fmt.Errorf("plan operand G[%d] out of range: %w", op.Index, ErrIndexMismatch)
				}
			default:
				return Term{}, fmt.Errorf("plan operand kind %d: %w", op.Kind, ErrIndexMismatch)
			}
		}
	}
	return Term{A0: A0, GK: GK, Plan: plan}, nil
}

// NewTermFromMonomial builds the reference and geometry tensors of m
func NewTermFromMonomial(m *Monomial, domain DomainType, facet0, facet1 int) (Term, error) {
	A0, err := NewReferenceTensor(m, domain, facet0, facet1)
	if err != nil {
		return Term{}, err
	}
	GK, err := NewGeometryTensor(m)
	if err != nil {
		return Term{}, err
	}
	return NewTerm(A0, GK, nil)
}
