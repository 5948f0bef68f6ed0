package manifold

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/cwbudde/mogfit/internal/mixture"
	"github.com/cwbudde/mogfit/internal/opt"
)

// FitConfig controls the multi-restart fitting loop.
type FitConfig struct {
	// Restarts is the maximum number of optimizer runs; the best run wins.
	Restarts int

	// Convergence controls early stopping across restarts.
	Convergence ConvergenceConfig

	// OnRestart, if non-nil, is called after each restart with the restart
	// index and the cost that restart achieved.
	OnRestart func(restart int, cost float64)
}

// DefaultFitConfig returns a config with three restarts and default
// convergence detection.
func DefaultFitConfig() FitConfig {
	return FitConfig{
		Restarts:    3,
		Convergence: DefaultConvergenceConfig(),
	}
}

// FitResult holds the output of a fitting run.
type FitResult struct {
	Point       *Point
	Mixture     *mixture.Mixture
	BestCost    float64
	InitialCost float64
	Restarts    int       // restarts actually executed
	History     []float64 // per-restart best cost
}

// Fit estimates a k-component mixture from the samples by minimizing Cost
// over the flat log-Cholesky encoding with the given optimizer. The encoding
// guarantees every evaluated matrix is positive definite, so the optimizer
// only ever sees finite, well-defined objective values.
//
// The optimizer is restarted up to cfg.Restarts times and the best point is
// kept; a ConvergenceTracker stops the loop once further restarts stop
// improving. The reported initial cost is the objective at the identity
// point (unit matrices, uniform weights), the zero vector of the encoding.
func Fit(samples *mixture.SampleSet, k int, optimizer opt.Optimizer, cfg FitConfig) (*FitResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: need at least one component, got %d", ErrDimensionMismatch, k)
	}
	if samples.Len() == 0 {
		return nil, fmt.Errorf("manifold: cannot fit an empty sample set")
	}
	if cfg.Restarts < 1 {
		cfg.Restarts = 1
	}

	d := samples.Dim()
	dim := NumParams(k, d)

	eval := func(x []float64) float64 {
		pt, err := Decode(x, k, d)
		if err != nil {
			return math.Inf(1)
		}
		c, err := Cost(pt, samples)
		if err != nil {
			return math.Inf(1)
		}
		return c
	}

	// Search bounds sized from the data scale: the Cholesky rows carry the
	// component means and covariance factors, so their entries stay within a
	// few multiples of the largest sample coordinate.
	bound := 2*samples.MaxAbs() + 4
	lower := make([]float64, dim)
	upper := make([]float64, dim)
	for i := range lower {
		lower[i] = -bound
		upper[i] = bound
	}

	initialCost := eval(make([]float64, dim))

	slog.Info("Starting mixture fit",
		"components", k,
		"samples", samples.Len(),
		"dim", d,
		"params", dim,
		"restarts", cfg.Restarts,
		"initial_cost", initialCost,
	)

	tracker := NewConvergenceTracker(cfg.Convergence)
	bestCost := math.Inf(1)
	var bestParams []float64
	restarts := 0

	for r := 0; r < cfg.Restarts; r++ {
		params, cost := optimizer.Run(eval, lower, upper, dim)
		restarts++

		slog.Debug("Restart complete", "restart", r, "cost", cost)

		if cost < bestCost {
			bestCost = cost
			bestParams = params
		}
		if cfg.OnRestart != nil {
			cfg.OnRestart(r, cost)
		}
		if tracker.Update(cost) {
			break
		}
	}

	if bestParams == nil || math.IsInf(bestCost, 1) {
		return nil, fmt.Errorf("manifold: optimizer produced no finite cost in %d restarts", restarts)
	}

	point, err := Decode(bestParams, k, d)
	if err != nil {
		return nil, fmt.Errorf("failed to decode optimized point: %w", err)
	}
	mix, err := Recover(point)
	if err != nil {
		return nil, fmt.Errorf("failed to recover mixture: %w", err)
	}

	slog.Info("Mixture fit complete",
		"initial_cost", initialCost,
		"best_cost", bestCost,
		"restarts", restarts,
	)

	return &FitResult{
		Point:       point,
		Mixture:     mix,
		BestCost:    bestCost,
		InitialCost: initialCost,
		Restarts:    restarts,
		History:     tracker.History(),
	}, nil
}
