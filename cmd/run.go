package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/mogfit/internal/manifold"
	"github.com/cwbudde/mogfit/internal/mixture"
	"github.com/cwbudde/mogfit/internal/opt"
	"github.com/cwbudde/mogfit/internal/store"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

var (
	mixturePath string
	samples     int
	components  int
	method      string
	iters       int
	popSize     int
	restarts    int
	seed        int64
	dataDir     string
	runID       string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a full generate-fit-recover cycle",
	Long: `Draws samples from a ground-truth mixture (the builtin demo mixture or a
JSON file), fits a mixture to them, and prints recovered parameters next to
the ground truth. The result and a per-restart cost trace are persisted under
the data directory.`,
	RunE: runFit,
}

func init() {
	runCmd.Flags().StringVar(&mixturePath, "mixture", "", "Ground-truth mixture JSON file (default: builtin demo mixture)")
	runCmd.Flags().IntVar(&samples, "samples", 1000, "Number of samples to draw")
	runCmd.Flags().IntVar(&components, "components", 0, "Number of components to fit (default: same as ground truth)")
	runCmd.Flags().StringVar(&method, "method", "mayfly", "Optimization method: mayfly, lbfgs")
	runCmd.Flags().IntVar(&iters, "iters", 200, "Max iterations per restart")
	runCmd.Flags().IntVar(&popSize, "pop", 30, "Population size (mayfly only)")
	runCmd.Flags().IntVar(&restarts, "restarts", 3, "Max optimizer restarts")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	runCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Base directory for run storage")
	runCmd.Flags().StringVar(&runID, "run-id", "", "Run identifier (default: timestamp)")

	rootCmd.AddCommand(runCmd)
}

// demoMixture is the builtin three-component, two-dimensional ground truth.
func demoMixture() *mixture.Mixture {
	return &mixture.Mixture{
		Weights: []float64{0.1, 0.6, 0.3},
		Means: [][]float64{
			{-4, 1},
			{0, 0},
			{2, -1},
		},
		Covs: []*mat.SymDense{
			mat.NewSymDense(2, []float64{3, 0, 0, 1}),
			mat.NewSymDense(2, []float64{1, 1, 1, 3}),
			mat.NewSymDense(2, []float64{0.5, 0, 0, 0.5}),
		},
	}
}

func loadMixture() (*mixture.Mixture, error) {
	if mixturePath == "" {
		return demoMixture(), nil
	}
	f, err := os.Open(mixturePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open mixture file: %w", err)
	}
	defer f.Close()
	return mixture.ReadJSON(f)
}

func newOptimizer() (opt.Optimizer, error) {
	switch method {
	case "mayfly":
		return opt.NewMayfly(iters, popSize, seed), nil
	case "lbfgs":
		return opt.NewGradient(iters, seed), nil
	default:
		return nil, fmt.Errorf("unknown method: %s", method)
	}
}

func runFit(cmd *cobra.Command, args []string) error {
	truth, err := loadMixture()
	if err != nil {
		return err
	}
	if components == 0 {
		components = truth.K()
	}

	slog.Info("Generating samples",
		"components", truth.K(), "dim", truth.Dim(), "samples", samples, "seed", seed)

	set, err := mixture.Sample(truth, samples, uint64(seed))
	if err != nil {
		return fmt.Errorf("failed to generate samples: %w", err)
	}

	optimizer, err := newOptimizer()
	if err != nil {
		return err
	}

	if runID == "" {
		runID = time.Now().UTC().Format("20060102-150405")
	}

	trace, err := store.NewTraceWriter(dataDir, runID)
	if err != nil {
		return fmt.Errorf("failed to create trace writer: %w", err)
	}
	defer trace.Close()

	cfg := manifold.DefaultFitConfig()
	cfg.Restarts = restarts
	cfg.OnRestart = func(restart int, cost float64) {
		if err := trace.Write(store.TraceEntry{
			Restart:   restart,
			Cost:      cost,
			Timestamp: time.Now().UTC(),
		}); err != nil {
			slog.Warn("Failed to write trace entry", "restart", restart, "error", err)
		}
	}

	start := time.Now()
	result, err := manifold.Fit(set, components, optimizer, cfg)
	if err != nil {
		return fmt.Errorf("fitting failed: %w", err)
	}
	elapsed := time.Since(start)

	slog.Info("Run complete",
		"elapsed", elapsed,
		"initial_cost", result.InitialCost,
		"best_cost", result.BestCost,
		"restarts", result.Restarts,
	)

	printComparison(truth, result.Mixture)

	resultStore, err := store.NewFSStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to create result store: %w", err)
	}
	if err := resultStore.SaveResult(runID, buildRunResult(result, elapsed)); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	fmt.Printf("Saved run %s (cost: %.2f -> %.2f in %s)\n",
		runID, result.InitialCost, result.BestCost, elapsed.Round(time.Millisecond))
	return nil
}

// printComparison renders ground truth and recovered parameters side by side.
// Note the recovered component order is arbitrary; mixtures are identified
// only up to relabeling.
func printComparison(truth, recovered *mixture.Mixture) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COMPONENT\tTRUE WEIGHT\tTRUE MEAN\tFIT WEIGHT\tFIT MEAN")

	for m := 0; m < truth.K() || m < recovered.K(); m++ {
		trueW, trueMu := "-", "-"
		if m < truth.K() {
			trueW = fmt.Sprintf("%.4f", truth.Weights[m])
			trueMu = fmt.Sprintf("%.3f", truth.Means[m])
		}
		fitW, fitMu := "-", "-"
		if m < recovered.K() {
			fitW = fmt.Sprintf("%.4f", recovered.Weights[m])
			fitMu = fmt.Sprintf("%.3f", recovered.Means[m])
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", m, trueW, trueMu, fitW, fitMu)
	}
	w.Flush()
}

func buildRunResult(result *manifold.FitResult, elapsed time.Duration) *store.RunResult {
	mix := result.Mixture
	d := mix.Dim()

	covs := make([][][]float64, mix.K())
	for m, cov := range mix.Covs {
		rows := make([][]float64, d)
		for i := 0; i < d; i++ {
			rows[i] = make([]float64, d)
			for j := 0; j < d; j++ {
				rows[i][j] = cov.At(i, j)
			}
		}
		covs[m] = rows
	}

	return &store.RunResult{
		Config: store.RunConfig{
			Components: mix.K(),
			Samples:    samples,
			Dim:        d,
			Method:     method,
			Iters:      iters,
			PopSize:    popSize,
			Restarts:   result.Restarts,
			Seed:       seed,
		},
		Weights:     mix.Weights,
		Means:       mix.Means,
		Covs:        covs,
		InitialCost: result.InitialCost,
		BestCost:    result.BestCost,
		Elapsed:     elapsed,
		UpdatedAt:   time.Now().UTC(),
	}
}
