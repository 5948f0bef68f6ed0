package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// setupTestStore creates a temporary directory and returns an FSStore for testing.
func setupTestStore(t *testing.T) (*FSStore, string) {
	t.Helper()

	tempDir := t.TempDir() // Automatically cleaned up after test
	store, err := NewFSStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}

	return store, tempDir
}

// createTestResult creates a run result with test data.
func createTestResult() *RunResult {
	return &RunResult{
		Config: RunConfig{
			Components: 3,
			Samples:    1000,
			Dim:        2,
			Method:     "mayfly",
			Iters:      200,
			PopSize:    30,
			Restarts:   3,
			Seed:       42,
		},
		Weights: []float64{0.1, 0.6, 0.3},
		Means:   [][]float64{{-4, 1}, {0, 0}, {2, -1}},
		Covs: [][][]float64{
			{{3, 0}, {0, 1}},
			{{1, 1}, {1, 3}},
			{{0.5, 0}, {0, 0.5}},
		},
		InitialCost: 5012.3,
		BestCost:    3217.8,
		Elapsed:     4 * time.Second,
		UpdatedAt:   time.Now().UTC(),
	}
}

func TestNewFSStore(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewFSStore(tempDir)
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}
	if store == nil {
		t.Fatal("Expected non-nil store")
	}

	// Verify base directory was created
	if _, err := os.Stat(tempDir); os.IsNotExist(err) {
		t.Fatal("Base directory was not created")
	}
}

func TestSaveResult(t *testing.T) {
	store, tempDir := setupTestStore(t)

	runID := "test-run-123"
	if err := store.SaveResult(runID, createTestResult()); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	// Verify result file exists
	expectedPath := filepath.Join(tempDir, "runs", runID, "result.json")
	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		t.Fatalf("Result file was not created at %s", expectedPath)
	}

	// Verify no temp file remains
	tempPath := expectedPath + ".tmp"
	if _, err := os.Stat(tempPath); !os.IsNotExist(err) {
		t.Errorf("Temp file should not exist after save: %s", tempPath)
	}
}

func TestSaveResultInvalidInput(t *testing.T) {
	store, _ := setupTestStore(t)

	if err := store.SaveResult("", createTestResult()); err == nil {
		t.Error("Expected error for empty runID")
	}
	if err := store.SaveResult("some-id", nil); err == nil {
		t.Error("Expected error for nil result")
	}
}

func TestLoadResult(t *testing.T) {
	store, _ := setupTestStore(t)

	runID := "test-run-456"
	original := createTestResult()
	if err := store.SaveResult(runID, original); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	loaded, err := store.LoadResult(runID)
	if err != nil {
		t.Fatalf("LoadResult failed: %v", err)
	}

	if loaded.BestCost != original.BestCost {
		t.Errorf("BestCost mismatch: got %v, want %v", loaded.BestCost, original.BestCost)
	}
	if loaded.Config.Method != original.Config.Method {
		t.Errorf("Method mismatch: got %q, want %q", loaded.Config.Method, original.Config.Method)
	}
	if len(loaded.Weights) != len(original.Weights) {
		t.Fatalf("Weight count mismatch: got %d, want %d", len(loaded.Weights), len(original.Weights))
	}
	if len(loaded.Covs) != 3 || len(loaded.Covs[0]) != 2 {
		t.Errorf("Covariance shape lost in round trip")
	}
}

func TestLoadResultNotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.LoadResult("does-not-exist")
	if err == nil {
		t.Fatal("Expected error for missing run")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestListResults(t *testing.T) {
	store, _ := setupTestStore(t)

	// Empty store lists nothing
	infos, err := store.ListResults()
	if err != nil {
		t.Fatalf("ListResults failed: %v", err)
	}
	if len(infos) != 0 {
		t.Fatalf("Expected empty listing, got %d entries", len(infos))
	}

	for _, runID := range []string{"run-a", "run-b", "run-c"} {
		if err := store.SaveResult(runID, createTestResult()); err != nil {
			t.Fatalf("SaveResult failed: %v", err)
		}
	}

	infos, err = store.ListResults()
	if err != nil {
		t.Fatalf("ListResults failed: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(infos))
	}
	for _, info := range infos {
		if info.Components != 3 || info.Method != "mayfly" {
			t.Errorf("Listing metadata wrong: %+v", info)
		}
	}
}

func TestDeleteResult(t *testing.T) {
	store, tempDir := setupTestStore(t)

	runID := "test-run-789"
	if err := store.SaveResult(runID, createTestResult()); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	if err := store.DeleteResult(runID); err != nil {
		t.Fatalf("DeleteResult failed: %v", err)
	}

	// Run directory should be gone
	if _, err := os.Stat(filepath.Join(tempDir, "runs", runID)); !os.IsNotExist(err) {
		t.Error("Run directory still exists after delete")
	}

	// Deleting again reports not found
	if err := store.DeleteResult(runID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
