package quadrature

import (
	"fmt"
	"math"
	"sort"
	"testing"

	"github.com/notargets/gocfd/DG1D"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// factorial for small integer arguments
func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}

// simplexMonomialIntegral is the exact integral of x^i y^j z^k over the
// reference simplex: i! j! k! / (i+j+k+d)!
func simplexMonomialIntegral(dim int, p []int) float64 {
	num := 1.0
	sum := 0
	for _, e := range p {
		num *= factorial(e)
		sum += e
	}
	return num / factorial(sum+dim)
}

func TestJacobiGQMatchesGocfd(t *testing.T) {
	cases := []struct {
		alpha, beta float64
	}{
		{0, 0},
		{1, 0},
		{2, 0},
		{1, 1},
	}
	for _, tc := range cases {
		for N := 1; N <= 5; N++ {
			t.Run(fmt.Sprintf("a=%g,b=%g,N=%d", tc.alpha, tc.beta, N), func(t *testing.T) {
				X, W := JacobiGQ(tc.alpha, tc.beta, N)
				Xr, Wr := DG1D.JacobiGQ(tc.alpha, tc.beta, N)
				xr, wr := Xr.Data(), Wr.Data()

				// Pair points with weights before sorting
				type node struct{ x, w float64 }
				pair := func(x, w []float64) []node {
					nodes := make([]node, len(x))
					for i := range x {
						nodes[i] = node{x[i], w[i]}
					}
					sort.Slice(nodes, func(i, j int) bool { return nodes[i].x < nodes[j].x })
					return nodes
				}
				got, want := pair(X, W), pair(xr, wr)
				require.Len(t, got, len(want))
				for i := range got {
					assert.InDeltaf(t, want[i].x, got[i].x, 1e-12, "point %d", i)
					assert.InDeltaf(t, want[i].w, got[i].w, 1e-12, "weight %d", i)
				}
			})
		}
	}
}

func TestJacobiGQSinglePoint(t *testing.T) {
	X, W := JacobiGQ(1, 0, 0)
	require.Len(t, X, 1)
	assert.InDelta(t, -1./3., X[0], 1e-15)
	assert.InDelta(t, 2.0, W[0], 1e-15)
}

func TestSimplexRuleExactness(t *testing.T) {
	for dim := 1; dim <= 3; dim++ {
		for deg := 0; deg <= 6; deg++ {
			t.Run(fmt.Sprintf("dim=%d,deg=%d", dim, deg), func(t *testing.T) {
				rule, err := SimplexRule(dim, deg)
				require.NoError(t, err)
				n := PointsPerDirection(deg)
				assert.Equal(t, int(math.Pow(float64(n), float64(dim))), rule.NumPoints())

				// Every monomial of total degree <= deg
				var exps [][]int
				switch dim {
				case 1:
					for i := 0; i <= deg; i++ {
						exps = append(exps, []int{i})
					}
				case 2:
					for i := 0; i <= deg; i++ {
						for j := 0; i+j <= deg; j++ {
							exps = append(exps, []int{i, j})
						}
					}
				case 3:
					for i := 0; i <= deg; i++ {
						for j := 0; i+j <= deg; j++ {
							for k := 0; i+j+k <= deg; k++ {
								exps = append(exps, []int{i, j, k})
							}
						}
					}
				}
				for _, p := range exps {
					sum := 0.0
					for q, x := range rule.Points {
						v := rule.Weights[q]
						for d, e := range p {
							v *= math.Pow(x[d], float64(e))
						}
						sum += v
					}
					assert.InDeltaf(t, simplexMonomialIntegral(dim, p), sum, 1e-13, "monomial %v", p)
				}
			})
		}
	}
}

func TestSimplexRuleUnsupported(t *testing.T) {
	_, err := SimplexRule(4, 2)
	assert.Error(t, err)

	r, err := SimplexRule(0, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, r.NumPoints())
	assert.Equal(t, 1.0, r.Weights[0])
}
