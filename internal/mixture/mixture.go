// Package mixture defines Gaussian mixture specifications and synthetic
// data generation from them.
package mixture

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrInvalidMixture is returned for malformed mixture specifications.
// Use errors.Is(err, ErrInvalidMixture) to check for this error.
var ErrInvalidMixture = errors.New("mixture: invalid mixture specification")

// weightSumTol is the tolerance for the mixture weights summing to one.
const weightSumTol = 1e-9

// Mixture describes a K-component Gaussian mixture: per-component weight,
// mean and covariance. It is an immutable value object once validated;
// callers must not mutate a Mixture that has been handed to the sampler
// or the manifold package.
type Mixture struct {
	Weights []float64       // K weights in (0,1], summing to 1
	Means   [][]float64     // K means, each of length d
	Covs    []*mat.SymDense // K symmetric positive definite d×d covariances
}

// K returns the number of mixture components.
func (m *Mixture) K() int {
	return len(m.Weights)
}

// Dim returns the data dimension d, or 0 for an empty mixture.
func (m *Mixture) Dim() int {
	if len(m.Means) == 0 {
		return 0
	}
	return len(m.Means[0])
}

// Validate checks the mixture specification. It returns an error wrapping
// ErrInvalidMixture when the component counts disagree, a mean or covariance
// has the wrong dimension, the weights are not positive and summing to one,
// or a covariance is not symmetric positive definite.
func (m *Mixture) Validate() error {
	k := m.K()
	if k < 1 {
		return fmt.Errorf("%w: need at least one component", ErrInvalidMixture)
	}
	if len(m.Means) != k || len(m.Covs) != k {
		return fmt.Errorf("%w: %d weights, %d means, %d covariances",
			ErrInvalidMixture, k, len(m.Means), len(m.Covs))
	}

	d := m.Dim()
	for i, mu := range m.Means {
		if len(mu) != d {
			return fmt.Errorf("%w: mean %d has dimension %d, want %d",
				ErrInvalidMixture, i, len(mu), d)
		}
	}

	for i, w := range m.Weights {
		if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: weight %d is %v, want a value in (0,1]",
				ErrInvalidMixture, i, w)
		}
	}
	if sum := floats.Sum(m.Weights); math.Abs(sum-1) > weightSumTol {
		return fmt.Errorf("%w: weights sum to %v, want 1", ErrInvalidMixture, sum)
	}

	// Positive definiteness is checked via Cholesky, which is also what the
	// sampler needs to factorize each covariance.
	var chol mat.Cholesky
	for i, cov := range m.Covs {
		if cov == nil {
			return fmt.Errorf("%w: covariance %d is nil", ErrInvalidMixture, i)
		}
		if cov.SymmetricDim() != d {
			return fmt.Errorf("%w: covariance %d is %d×%d, want %d×%d",
				ErrInvalidMixture, i, cov.SymmetricDim(), cov.SymmetricDim(), d, d)
		}
		if ok := chol.Factorize(cov); !ok {
			return fmt.Errorf("%w: covariance %d is not positive definite",
				ErrInvalidMixture, i)
		}
	}

	return nil
}
