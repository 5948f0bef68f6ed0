package mixture

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSampleShape(t *testing.T) {
	mix := testMixture()

	set, err := Sample(mix, 250, 1)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}

	if set.Len() != 250 {
		t.Errorf("Expected 250 samples, got %d", set.Len())
	}
	if set.Dim() != 2 {
		t.Errorf("Expected dimension 2, got %d", set.Dim())
	}

	for i := 0; i < set.Len(); i++ {
		for _, v := range set.Row(i) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("Sample %d contains non-finite value %v", i, v)
			}
		}
	}
}

func TestSampleEmpty(t *testing.T) {
	set, err := Sample(testMixture(), 0, 1)
	if err != nil {
		t.Fatalf("Sample with n=0 failed: %v", err)
	}
	if set.Len() != 0 {
		t.Errorf("Expected empty set, got %d samples", set.Len())
	}
	if set.Dim() != 2 {
		t.Errorf("Empty set should keep dimension 2, got %d", set.Dim())
	}
}

func TestSampleRejectsInvalidInput(t *testing.T) {
	if _, err := Sample(testMixture(), -1, 1); !errors.Is(err, ErrInvalidMixture) {
		t.Errorf("Negative n: expected ErrInvalidMixture, got %v", err)
	}

	bad := testMixture()
	bad.Weights[0] = 0.5
	if _, err := Sample(bad, 10, 1); !errors.Is(err, ErrInvalidMixture) {
		t.Errorf("Bad weights: expected ErrInvalidMixture, got %v", err)
	}
}

func TestSampleDeterministic(t *testing.T) {
	a, err := Sample(testMixture(), 100, 7)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	b, err := Sample(testMixture(), 100, 7)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}

	for i := 0; i < a.Len(); i++ {
		ra, rb := a.Row(i), b.Row(i)
		for j := range ra {
			if ra[j] != rb[j] {
				t.Fatalf("Same seed produced different samples at [%d,%d]", i, j)
			}
		}
	}
}

func TestSampleSingleGaussianMoments(t *testing.T) {
	// A single component with a known mean; the sample mean of 4000 draws
	// should land well within a few standard errors.
	mix := &Mixture{
		Weights: []float64{1},
		Means:   [][]float64{{3, -2}},
		Covs:    []*mat.SymDense{mat.NewSymDense(2, []float64{1, 0, 0, 1})},
	}

	set, err := Sample(mix, 4000, 3)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}

	mean := make([]float64, 2)
	for i := 0; i < set.Len(); i++ {
		row := set.Row(i)
		mean[0] += row[0]
		mean[1] += row[1]
	}
	mean[0] /= float64(set.Len())
	mean[1] /= float64(set.Len())

	if math.Abs(mean[0]-3) > 0.2 || math.Abs(mean[1]+2) > 0.2 {
		t.Errorf("Sample mean %v too far from [3, -2]", mean)
	}
}

func TestSampleSetCSVRoundTrip(t *testing.T) {
	set, err := Sample(testMixture(), 50, 11)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}

	var buf bytes.Buffer
	if err := set.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	decoded, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	if decoded.Len() != set.Len() || decoded.Dim() != set.Dim() {
		t.Fatalf("Shape mismatch after round trip: got %dx%d, want %dx%d",
			decoded.Len(), decoded.Dim(), set.Len(), set.Dim())
	}

	for i := 0; i < set.Len(); i++ {
		a, b := set.Row(i), decoded.Row(i)
		for j := range a {
			if a[j] != b[j] {
				t.Fatalf("Value mismatch at [%d,%d]: %v != %v", i, j, a[j], b[j])
			}
		}
	}
}
