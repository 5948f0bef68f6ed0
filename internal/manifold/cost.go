package manifold

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/mogfit/internal/mixture"
)

// Cost computes the negative log-likelihood of the sample set under the
// augmented parameterization:
//
//	cost = −Σ_n logsumexp_m( log α_m − ½(y_nᵀ S_m⁻¹ y_n + logdet S_m) )
//
// where y_n = [x_n; 1] is the augmented sample and α is the softmax of the
// logits with a zero appended. The component-independent normalization
// constant of the Gaussian density is dropped; it shifts the cost uniformly
// and does not move the minimizer.
//
// Each S_m is factorized once per call; quadratic forms are evaluated through
// triangular solves against the Cholesky factor, never by forming S_m⁻¹, and
// the log-determinant comes from the same factorization. The per-sample
// mixture reduction uses log-sum-exp so small densities cannot underflow.
//
// Cost is a pure function of its inputs and safe to call concurrently.
func Cost(p *Point, samples *mixture.SampleSet) (float64, error) {
	k := p.K()
	d := p.Dim()
	if len(p.Logits) != k-1 {
		return 0, fmt.Errorf("%w: %d matrices need %d logits, got %d",
			ErrDimensionMismatch, k, k-1, len(p.Logits))
	}
	if samples.Dim() != d {
		return 0, fmt.Errorf("%w: point has data dimension %d, samples have %d",
			ErrDimensionMismatch, d, samples.Dim())
	}

	a := d + 1
	chols := make([]mat.Cholesky, k)
	logdets := make([]float64, k)
	for m := range chols {
		if ok := chols[m].Factorize(p.Mats[m]); !ok {
			return 0, fmt.Errorf("%w: component matrix %d", ErrNotPositiveDefinite, m)
		}
		logdets[m] = chols[m].LogDet()
	}

	logW := p.LogWeights()

	y := mat.NewVecDense(a, nil)
	z := mat.NewVecDense(a, nil)
	y.SetVec(d, 1) // augmentation coordinate

	terms := make([]float64, k)
	var total float64
	for i := 0; i < samples.Len(); i++ {
		row := samples.Row(i)
		for j, v := range row {
			y.SetVec(j, v)
		}

		for m := 0; m < k; m++ {
			if err := chols[m].SolveVecTo(z, y); err != nil {
				return 0, fmt.Errorf("%w: component matrix %d: %v", ErrNotPositiveDefinite, m, err)
			}
			q := mat.Dot(y, z)
			terms[m] = logW[m] - 0.5*(q+logdets[m])
		}
		total += floats.LogSumExp(terms)
	}

	return -total, nil
}
