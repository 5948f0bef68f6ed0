package manifold

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/mogfit/internal/mixture"
)

// Recover reads the mixture parameters back out of an optimized point.
// Each augmented matrix S_m partitions as
//
//	S_m = ⎡A_m  b_m⎤
//	      ⎣b_mᵀ   c⎦
//
// so the mean is the last column block, μ̂_m = b_m, and the covariance is the
// top-left block corrected for the second-moment coupling of the
// augmentation, Σ̂_m = A_m − μ̂_mμ̂_mᵀ. Weights are the softmax of the logits
// with the fixed zero appended, so they sum to one by construction.
//
// Recover is deterministic and does not mutate the point. Note the returned
// mixture is exact only at a true optimum; away from one the covariance
// block may fail Mixture.Validate.
func Recover(p *Point) (*mixture.Mixture, error) {
	k := p.K()
	d := p.Dim()
	if len(p.Logits) != k-1 {
		return nil, fmt.Errorf("%w: %d matrices need %d logits, got %d",
			ErrDimensionMismatch, k, k-1, len(p.Logits))
	}

	mix := &mixture.Mixture{
		Weights: p.Weights(),
		Means:   make([][]float64, k),
		Covs:    make([]*mat.SymDense, k),
	}

	for m, s := range p.Mats {
		mu := make([]float64, d)
		for i := 0; i < d; i++ {
			mu[i] = s.At(i, d)
		}

		cov := mat.NewSymDense(d, nil)
		for i := 0; i < d; i++ {
			for j := i; j < d; j++ {
				cov.SetSym(i, j, s.At(i, j)-mu[i]*mu[j])
			}
		}

		mix.Means[m] = mu
		mix.Covs[m] = cov
	}

	return mix, nil
}
