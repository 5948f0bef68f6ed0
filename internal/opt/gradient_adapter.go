package opt

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/optimize"
)

// GradientAdapter wraps gonum's optimize package to conform to our Optimizer
// interface. It runs L-BFGS from a random start inside the bounds; gradients
// are computed by gonum through finite differences of the objective, so the
// objective must be smooth in its parameters.
//
// L-BFGS itself is unconstrained. The bounds are only used to draw the start
// point, which is the right behavior for objectives that are well defined on
// all of parameter space.
type GradientAdapter struct {
	maxIters int
	seed     int64
	runs     int64
}

// NewGradient creates a new gradient-descent optimizer adapter
func NewGradient(maxIters int, seed int64) Optimizer {
	return &GradientAdapter{
		maxIters: maxIters,
		seed:     seed,
	}
}

// Run executes one L-BFGS optimization from a random start within bounds
func (g *GradientAdapter) Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64) {
	rng := rand.New(rand.NewSource(g.seed + g.runs))
	g.runs++

	// Start near the box center; the boundary regions of the encoding are
	// numerically extreme and make poor line-search starting points
	x0 := make([]float64, dim)
	for i := range x0 {
		center := (lower[i] + upper[i]) / 2
		span := upper[i] - lower[i]
		x0[i] = center + 0.1*span*(rng.Float64()-0.5)
	}

	problem := optimize.Problem{Func: eval}
	settings := &optimize.Settings{MajorIterations: g.maxIters}

	result, err := optimize.Minimize(problem, x0, settings, &optimize.LBFGS{})
	if err != nil && result == nil {
		// Fallback to the start point if optimization fails outright
		return x0, eval(x0)
	}

	if math.IsNaN(result.F) {
		return x0, eval(x0)
	}
	return result.X, result.F
}
