package manifold

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// The flat encoding lets Euclidean optimizers search the augmented
// parameterization without ever leaving the positive definite cone: each
// matrix is stored as the lower triangle of its Cholesky factor with a
// log-parameterized diagonal, S_m = L_mL_mᵀ with L_ii = exp(t_ii). Any real
// vector therefore decodes to strictly positive definite matrices, which is
// the encoding-level equivalent of a manifold retraction.
//
// Layout: K matrix blocks of (d+1)(d+2)/2 entries (lower triangle, row
// major), followed by the K−1 logits.

// NumParams returns the flat encoding length for k components of data
// dimension d.
func NumParams(k, d int) int {
	a := d + 1
	return k*a*(a+1)/2 + (k - 1)
}

// Encode writes the point to a fresh flat vector. The matrices are
// factorized, so encoding a non-positive-definite matrix returns
// ErrNotPositiveDefinite.
func Encode(p *Point) ([]float64, error) {
	k := p.K()
	d := p.Dim()
	a := d + 1

	x := make([]float64, NumParams(k, d))
	var chol mat.Cholesky
	var l mat.TriDense

	off := 0
	for m, s := range p.Mats {
		if ok := chol.Factorize(s); !ok {
			return nil, fmt.Errorf("%w: component matrix %d", ErrNotPositiveDefinite, m)
		}
		chol.LTo(&l)

		for i := 0; i < a; i++ {
			for j := 0; j < i; j++ {
				x[off] = l.At(i, j)
				off++
			}
			x[off] = math.Log(l.At(i, i))
			off++
		}
	}
	copy(x[off:], p.Logits)

	return x, nil
}

// Decode reads a point for k components of data dimension d from a flat
// vector. The vector length must equal NumParams(k, d); every decoded matrix
// is positive definite by construction.
func Decode(x []float64, k, d int) (*Point, error) {
	if k < 1 || d < 1 {
		return nil, fmt.Errorf("%w: need k ≥ 1 and d ≥ 1, got k=%d d=%d",
			ErrDimensionMismatch, k, d)
	}
	if len(x) != NumParams(k, d) {
		return nil, fmt.Errorf("%w: encoding has length %d, want %d for k=%d d=%d",
			ErrDimensionMismatch, len(x), NumParams(k, d), k, d)
	}

	a := d + 1
	mats := make([]*mat.SymDense, k)

	off := 0
	l := make([][]float64, a)
	for i := range l {
		l[i] = make([]float64, a)
	}

	for m := 0; m < k; m++ {
		for i := 0; i < a; i++ {
			for j := 0; j < i; j++ {
				l[i][j] = x[off]
				off++
			}
			l[i][i] = math.Exp(x[off])
			off++
		}

		s := mat.NewSymDense(a, nil)
		for i := 0; i < a; i++ {
			for j := i; j < a; j++ {
				// S_ij = Σ_t L_it L_jt over the shared prefix t ≤ i.
				var v float64
				for t := 0; t <= i; t++ {
					v += l[i][t] * l[j][t]
				}
				s.SetSym(i, j, v)
			}
		}
		mats[m] = s
	}

	logits := make([]float64, k-1)
	copy(logits, x[off:])

	return &Point{Mats: mats, Logits: logits}, nil
}
