package opt

// Optimizer defines an optimization algorithm interface
type Optimizer interface {
	// Run executes one optimization run
	// eval: objective function to minimize
	// lower, upper: parameter bounds
	// dim: dimensionality of parameter space
	// Returns: best parameters and best cost
	//
	// Repeated Run calls on the same Optimizer explore independently, so
	// callers can treat them as restarts.
	Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64)
}
