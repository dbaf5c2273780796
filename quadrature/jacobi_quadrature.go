package quadrature

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// JacobiGQ computes the N+1 point Gauss-Jacobi rule on [-1,1] for the weight
// (1-x)^alpha (1+x)^beta. The rule integrates polynomials of degree 2N+1
// exactly.
func JacobiGQ(alpha, beta float64, N int) (X, W []float64) {
	var (
		x      []float64
		fac    float64
		h1, d0 []float64
		d1     []float64
		VVr    *mat.Dense
	)
	if N == 0 {
		x = []float64{-(alpha - beta) / (alpha + beta + 2.)}
		W = []float64{Gamma0(alpha, beta)}
		return x, W
	}

	h1 = make([]float64, N+1)
	for i := 0; i < N+1; i++ {
		h1[i] = 2*float64(i) + alpha + beta
	}

	// main diagonal: d0[i] = -(β²-α²)/((2i+α+β)*(2i+α+β+2))
	d0 = make([]float64, N+1)
	fac = (beta*beta - alpha*alpha)
	for i := 0; i < N+1; i++ {
		val := h1[i]
		d0[i] = fac / (val * (val + 2.))
	}

	// Handle division by zero
	eps := 1.e-16
	if alpha+beta < 10*eps {
		d0[0] = 0.
	}

	// 1st upper diagonal
	d1 = make([]float64, N)
	for i := 0; i < N; i++ {
		ip1 := float64(i + 1)
		val := h1[i]
		d1[i] = 2.0 / (val + 2.0) * math.Sqrt(
			ip1*(ip1+alpha+beta)*(ip1+alpha)*(ip1+beta)/(val+1)/(val+3),
		)
	}

	JJ := NewSymTriDiagonal(d0, d1)

	var eig mat.EigenSym
	ok := eig.Factorize(JJ, true)
	if !ok {
		panic("eigenvalue decomposition failed")
	}
	X = eig.Values(nil)

	VVr = mat.NewDense(len(X), len(X), nil)
	eig.VectorsTo(VVr)
	W = make([]float64, len(X))
	g0 := Gamma0(alpha, beta)
	for i := range W {
		v := VVr.At(0, i)
		W[i] = v * v * g0
	}
	return X, W
}

// Gamma0 is the integral of the Jacobi weight over [-1,1].
func Gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	a1 := alpha + 1.
	b1 := beta + 1.
	return math.Gamma(a1) * math.Gamma(b1) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}

func NewSymTriDiagonal(d0, d1 []float64) (Tri *mat.SymDense) {
	n := len(d0)
	dd := make([]float64, n*n)
	for i := 0; i < n; i++ {
		dd[i+i*n] = d0[i]
		if i != n-1 {
			dd[i+1+i*n] = d1[i]
			dd[i+(i+1)*n] = d1[i]
		}
	}
	Tri = mat.NewSymDense(n, dd)
	return
}
