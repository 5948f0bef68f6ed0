package store

import (
	"time"
)

// RunConfig holds the configuration of a fitting run, persisted alongside
// its result so runs can be compared later.
type RunConfig struct {
	Components int    `json:"components"`
	Samples    int    `json:"samples"`
	Dim        int    `json:"dim"`
	Method     string `json:"method"` // mayfly, lbfgs
	Iters      int    `json:"iters"`
	PopSize    int    `json:"popSize,omitempty"`
	Restarts   int    `json:"restarts"`
	Seed       int64  `json:"seed"`
}

// RunResult is the persisted outcome of a fitting run: the recovered
// mixture parameters plus cost bookkeeping. Covariances are stored as
// row-major nested arrays.
type RunResult struct {
	Config      RunConfig     `json:"config"`
	Weights     []float64     `json:"weights"`
	Means       [][]float64   `json:"means"`
	Covs        [][][]float64 `json:"covs"`
	InitialCost float64       `json:"initialCost"`
	BestCost    float64       `json:"bestCost"`
	Elapsed     time.Duration `json:"elapsed"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// ToInfo extracts listing metadata from a result.
func (r *RunResult) ToInfo(runID string) RunInfo {
	return RunInfo{
		RunID:      runID,
		Components: r.Config.Components,
		Samples:    r.Config.Samples,
		Method:     r.Config.Method,
		BestCost:   r.BestCost,
		UpdatedAt:  r.UpdatedAt,
	}
}

// RunInfo is the metadata returned when listing stored runs.
type RunInfo struct {
	RunID      string    `json:"runId"`
	Components int       `json:"components"`
	Samples    int       `json:"samples"`
	Method     string    `json:"method"`
	BestCost   float64   `json:"bestCost"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
