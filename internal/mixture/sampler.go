package mixture

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// SampleSet holds n immutable draws from a d-dimensional distribution.
// The zero value is an empty set of dimension zero.
type SampleSet struct {
	data *mat.Dense // n×d, nil when n == 0
	n    int
	dim  int
}

// NewSampleSet wraps an n×d data matrix in a SampleSet. It is intended for
// tests and for loading externally generated data; pass nil for an empty set.
func NewSampleSet(data *mat.Dense, dim int) *SampleSet {
	if data == nil {
		return &SampleSet{dim: dim}
	}
	n, d := data.Dims()
	return &SampleSet{data: data, n: n, dim: d}
}

// Len returns the number of samples.
func (s *SampleSet) Len() int {
	return s.n
}

// Dim returns the dimension of each sample.
func (s *SampleSet) Dim() int {
	return s.dim
}

// Row returns the i-th sample. The returned slice aliases the underlying
// storage and must not be modified.
func (s *SampleSet) Row(i int) []float64 {
	return s.data.RawRowView(i)
}

// MaxAbs returns the largest absolute coordinate across all samples, or 0
// for an empty set. It is used to size optimizer search bounds.
func (s *SampleSet) MaxAbs() float64 {
	var maxAbs float64
	for i := 0; i < s.n; i++ {
		for _, v := range s.data.RawRowView(i) {
			if a := math.Abs(v); a > maxAbs {
				maxAbs = a
			}
		}
	}
	return maxAbs
}

// Sample draws n i.i.d. points from the mixture: each point first draws a
// component from the categorical weight distribution and then a draw from
// that component's multivariate normal. Components that are never drawn are
// simply skipped. The seed makes generation reproducible.
//
// A negative n or an invalid mixture returns an error wrapping
// ErrInvalidMixture. n == 0 returns an empty set.
func Sample(mix *Mixture, n int, seed uint64) (*SampleSet, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative sample count %d", ErrInvalidMixture, n)
	}
	if err := mix.Validate(); err != nil {
		return nil, err
	}

	d := mix.Dim()
	if n == 0 {
		return &SampleSet{dim: d}, nil
	}

	src := rand.NewSource(seed)
	labels := distuv.NewCategorical(mix.Weights, src)

	normals := make([]*distmv.Normal, mix.K())
	for m := range normals {
		normal, ok := distmv.NewNormal(mix.Means[m], mix.Covs[m], src)
		if !ok {
			// Unreachable after Validate, which factorizes every covariance.
			return nil, fmt.Errorf("%w: covariance %d is not positive definite",
				ErrInvalidMixture, m)
		}
		normals[m] = normal
	}

	data := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		m := int(labels.Rand())
		normals[m].Rand(data.RawRowView(i))
	}

	return &SampleSet{data: data, n: n, dim: d}, nil
}
