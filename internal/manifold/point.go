// Package manifold implements the augmented positive-definite
// parameterization of a Gaussian mixture: K symmetric positive definite
// (d+1)×(d+1) matrices plus K−1 mixture logits. It provides the negative
// log-likelihood cost evaluated by an external optimizer, recovery of
// mixture parameters from an optimized point, and a log-Cholesky flat
// encoding that keeps every optimizer iterate inside the positive definite
// cone.
package manifold

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/mogfit/internal/mixture"
)

var (
	// ErrDimensionMismatch is returned when a point and a sample set (or the
	// parts of a point) disagree on K or d.
	ErrDimensionMismatch = errors.New("manifold: dimension mismatch")

	// ErrNotPositiveDefinite is returned when a point matrix fails its
	// Cholesky factorization. The optimizer-facing encoding cannot produce
	// such a matrix; this guards directly constructed points.
	ErrNotPositiveDefinite = errors.New("manifold: matrix not positive definite")
)

// Point is a candidate mixture parameterization: one augmented (d+1)×(d+1)
// symmetric positive definite matrix per component, plus K−1 free logits.
// The K-th logit is fixed at zero, which removes the softmax gauge freedom.
// The cost model treats a Point as read-only.
type Point struct {
	Mats   []*mat.SymDense // K matrices, each (d+1)×(d+1)
	Logits []float64       // K−1 logits; the last component's logit is 0
}

// NewPoint validates and wraps K matrices and K−1 logits into a Point.
func NewPoint(mats []*mat.SymDense, logits []float64) (*Point, error) {
	if len(mats) == 0 {
		return nil, fmt.Errorf("%w: need at least one component matrix", ErrDimensionMismatch)
	}
	if len(logits) != len(mats)-1 {
		return nil, fmt.Errorf("%w: %d matrices need %d logits, got %d",
			ErrDimensionMismatch, len(mats), len(mats)-1, len(logits))
	}
	a := mats[0].SymmetricDim()
	if a < 2 {
		return nil, fmt.Errorf("%w: matrices must be at least 2×2, got %d×%d",
			ErrDimensionMismatch, a, a)
	}
	for m, s := range mats {
		if s.SymmetricDim() != a {
			return nil, fmt.Errorf("%w: matrix %d is %d×%d, want %d×%d",
				ErrDimensionMismatch, m, s.SymmetricDim(), s.SymmetricDim(), a, a)
		}
	}
	return &Point{Mats: mats, Logits: logits}, nil
}

// K returns the number of mixture components.
func (p *Point) K() int {
	return len(p.Mats)
}

// Dim returns the data dimension d (the matrices are (d+1)×(d+1)).
func (p *Point) Dim() int {
	return p.Mats[0].SymmetricDim() - 1
}

// LogWeights returns the K log mixture weights: the logits with a zero
// appended, shifted by their log-sum-exp. The shift makes the result exact
// log-probabilities and is where the softmax gauge freedom is absorbed.
func (p *Point) LogWeights() []float64 {
	k := p.K()
	lw := make([]float64, k)
	copy(lw, p.Logits)
	lw[k-1] = 0

	lse := floats.LogSumExp(lw)
	for i := range lw {
		lw[i] -= lse
	}
	return lw
}

// Weights returns the K mixture weights, positive and summing to one.
func (p *Point) Weights() []float64 {
	w := p.LogWeights()
	for i, lw := range w {
		w[i] = math.Exp(lw)
	}
	return w
}

// FromMixture builds the point at which the augmented parameterization
// represents the given mixture exactly: for each component the augmented
// second-moment matrix
//
//	S_m = ⎡Σ_m + μ_mμ_mᵀ  μ_m⎤
//	      ⎣μ_mᵀ            1⎦
//
// and logits ν_m = log(π_m/π_K). Recover is the exact inverse of this
// construction.
func FromMixture(mix *mixture.Mixture) (*Point, error) {
	if err := mix.Validate(); err != nil {
		return nil, err
	}

	k := mix.K()
	d := mix.Dim()
	a := d + 1

	mats := make([]*mat.SymDense, k)
	for m := 0; m < k; m++ {
		mu := mix.Means[m]
		cov := mix.Covs[m]

		s := mat.NewSymDense(a, nil)
		for i := 0; i < d; i++ {
			for j := i; j < d; j++ {
				s.SetSym(i, j, cov.At(i, j)+mu[i]*mu[j])
			}
			s.SetSym(i, d, mu[i])
		}
		s.SetSym(d, d, 1)
		mats[m] = s
	}

	logits := make([]float64, k-1)
	for m := range logits {
		logits[m] = math.Log(mix.Weights[m] / mix.Weights[k-1])
	}

	return &Point{Mats: mats, Logits: logits}, nil
}
