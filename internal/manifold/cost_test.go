package manifold

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/mogfit/internal/mixture"
)

// naiveCost evaluates the negative log-likelihood directly: explicit matrix
// inversion, explicit determinant, plain summed exponentials, and a softmax
// shifted by an arbitrary constant. It is numerically fragile but independent
// of the production code path, which makes it a good oracle on small inputs.
func naiveCost(t *testing.T, p *Point, samples *mixture.SampleSet, shift float64) float64 {
	t.Helper()

	k := p.K()
	d := p.Dim()
	a := d + 1

	logits := make([]float64, k)
	copy(logits, p.Logits)
	logits[k-1] = 0
	var z float64
	for i := range logits {
		logits[i] += shift
		z += math.Exp(logits[i])
	}
	alpha := make([]float64, k)
	for i := range alpha {
		alpha[i] = math.Exp(logits[i]) / z
	}

	invs := make([]*mat.Dense, k)
	dets := make([]float64, k)
	for m, s := range p.Mats {
		inv := mat.NewDense(a, a, nil)
		if err := inv.Inverse(s); err != nil {
			t.Fatalf("Oracle inversion failed: %v", err)
		}
		invs[m] = inv
		dets[m] = mat.Det(s)
	}

	var total float64
	for i := 0; i < samples.Len(); i++ {
		y := make([]float64, a)
		copy(y, samples.Row(i))
		y[d] = 1

		var like float64
		for m := 0; m < k; m++ {
			var q float64
			for r := 0; r < a; r++ {
				for c := 0; c < a; c++ {
					q += y[r] * invs[m].At(r, c) * y[c]
				}
			}
			like += alpha[m] * math.Exp(-0.5*q) / math.Sqrt(dets[m])
		}
		total += math.Log(like)
	}

	return -total
}

func costTestSamples(t *testing.T, n int) *mixture.SampleSet {
	t.Helper()
	set, err := mixture.Sample(testMixture(), n, 5)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	return set
}

func TestCostMatchesDirectEvaluation(t *testing.T) {
	samples := costTestSamples(t, 100)
	point, err := FromMixture(testMixture())
	if err != nil {
		t.Fatalf("FromMixture failed: %v", err)
	}

	got, err := Cost(point, samples)
	if err != nil {
		t.Fatalf("Cost failed: %v", err)
	}
	want := naiveCost(t, point, samples, 0)

	if math.Abs(got-want) > 1e-8*math.Abs(want) {
		t.Errorf("Cost = %v, oracle = %v", got, want)
	}
}

func TestCostGaugeInvariance(t *testing.T) {
	// Shifting every logit by a constant before the softmax must not change
	// the cost; the normalization absorbs the shift.
	samples := costTestSamples(t, 60)
	point, err := FromMixture(testMixture())
	if err != nil {
		t.Fatalf("FromMixture failed: %v", err)
	}

	got, err := Cost(point, samples)
	if err != nil {
		t.Fatalf("Cost failed: %v", err)
	}

	for _, shift := range []float64{-3, -0.5, 2, 7} {
		want := naiveCost(t, point, samples, shift)
		if math.Abs(got-want) > 1e-8*math.Abs(want) {
			t.Errorf("Shift %v: Cost = %v, shifted oracle = %v", shift, got, want)
		}
	}
}

func TestCostRelabelingInvariance(t *testing.T) {
	samples := costTestSamples(t, 80)

	original := testMixture()
	permuted := &mixture.Mixture{
		Weights: []float64{original.Weights[2], original.Weights[0], original.Weights[1]},
		Means:   [][]float64{original.Means[2], original.Means[0], original.Means[1]},
		Covs:    []*mat.SymDense{original.Covs[2], original.Covs[0], original.Covs[1]},
	}

	p1, err := FromMixture(original)
	if err != nil {
		t.Fatalf("FromMixture failed: %v", err)
	}
	p2, err := FromMixture(permuted)
	if err != nil {
		t.Fatalf("FromMixture failed: %v", err)
	}

	c1, err := Cost(p1, samples)
	if err != nil {
		t.Fatalf("Cost failed: %v", err)
	}
	c2, err := Cost(p2, samples)
	if err != nil {
		t.Fatalf("Cost failed: %v", err)
	}

	if math.Abs(c1-c2) > 1e-9*math.Abs(c1) {
		t.Errorf("Relabeled mixture changed cost: %v vs %v", c1, c2)
	}
}

func TestCostSingleComponent(t *testing.T) {
	// With K=1 the mixture weight is exactly 1 and the cost reduces to the
	// negated sum of single-Gaussian augmented log-densities.
	mix := &mixture.Mixture{
		Weights: []float64{1},
		Means:   [][]float64{{1.5, -0.5}},
		Covs:    []*mat.SymDense{mat.NewSymDense(2, []float64{2, 0.3, 0.3, 1})},
	}
	samples, err := mixture.Sample(mix, 50, 9)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}

	point, err := FromMixture(mix)
	if err != nil {
		t.Fatalf("FromMixture failed: %v", err)
	}

	got, err := Cost(point, samples)
	if err != nil {
		t.Fatalf("Cost failed: %v", err)
	}

	// Direct single-Gaussian evaluation without any mixture machinery.
	var chol mat.Cholesky
	if ok := chol.Factorize(point.Mats[0]); !ok {
		t.Fatal("Factorization failed")
	}
	logdet := chol.LogDet()

	a := point.Dim() + 1
	y := mat.NewVecDense(a, nil)
	z := mat.NewVecDense(a, nil)
	y.SetVec(point.Dim(), 1)

	var want float64
	for i := 0; i < samples.Len(); i++ {
		for j, v := range samples.Row(i) {
			y.SetVec(j, v)
		}
		if err := chol.SolveVecTo(z, y); err != nil {
			t.Fatalf("Solve failed: %v", err)
		}
		want += 0.5 * (mat.Dot(y, z) + logdet)
	}

	if math.Abs(got-want) > 1e-9*math.Abs(want) {
		t.Errorf("K=1 cost = %v, want %v", got, want)
	}
}

func TestCostDimensionMismatch(t *testing.T) {
	point, err := FromMixture(testMixture()) // d = 2
	if err != nil {
		t.Fatalf("FromMixture failed: %v", err)
	}

	oneD := &mixture.Mixture{
		Weights: []float64{1},
		Means:   [][]float64{{0}},
		Covs:    []*mat.SymDense{mat.NewSymDense(1, []float64{1})},
	}
	samples, err := mixture.Sample(oneD, 10, 2)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}

	if _, err := Cost(point, samples); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Expected ErrDimensionMismatch, got %v", err)
	}
}

func TestCostNotPositiveDefinite(t *testing.T) {
	// An indefinite matrix must be caught by the factorization guard.
	bad := mat.NewSymDense(3, []float64{
		1, 0, 0,
		0, -1, 0,
		0, 0, 1,
	})
	point := &Point{
		Mats:   []*mat.SymDense{bad},
		Logits: []float64{},
	}

	samples := costTestSamples(t, 5)
	if _, err := Cost(point, samples); !errors.Is(err, ErrNotPositiveDefinite) {
		t.Errorf("Expected ErrNotPositiveDefinite, got %v", err)
	}
}
