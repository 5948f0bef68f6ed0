package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/mogfit/internal/store"
	"github.com/spf13/cobra"
)

var runsDataDir string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage stored fitting runs",
	Long:  `List, inspect and delete persisted fitting runs and their cost traces.`,
}

var listRunsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored runs",
	RunE:  runListRuns,
}

var showRunCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a stored run, including its restart trace",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowRun,
}

var deleteRunCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a stored run",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteRun,
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.AddCommand(listRunsCmd)
	runsCmd.AddCommand(showRunCmd)
	runsCmd.AddCommand(deleteRunCmd)

	runsCmd.PersistentFlags().StringVar(&runsDataDir, "data-dir", "./data", "Base directory for run storage")
}

func runListRuns(cmd *cobra.Command, args []string) error {
	resultStore, err := store.NewFSStore(runsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create result store: %w", err)
	}

	infos, err := resultStore.ListResults()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tUPDATED\tCOMPONENTS\tSAMPLES\tMETHOD\tBEST COST")
	fmt.Fprintln(w, "------\t-------\t----------\t-------\t------\t---------")

	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%.6f\n",
			info.RunID,
			info.UpdatedAt.Format("2006-01-02 15:04:05"),
			info.Components,
			info.Samples,
			info.Method,
			info.BestCost,
		)
	}
	w.Flush()

	fmt.Printf("\nTotal runs: %d\n", len(infos))
	return nil
}

func runShowRun(cmd *cobra.Command, args []string) error {
	resultStore, err := store.NewFSStore(runsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create result store: %w", err)
	}

	result, err := resultStore.LoadResult(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Run %s (%s, %d components, %d samples)\n",
		args[0], result.Config.Method, result.Config.Components, result.Config.Samples)
	fmt.Printf("Cost: %.6f -> %.6f in %s\n",
		result.InitialCost, result.BestCost, result.Elapsed)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COMPONENT\tWEIGHT\tMEAN")
	for m := range result.Weights {
		fmt.Fprintf(w, "%d\t%.4f\t%.3f\n", m, result.Weights[m], result.Means[m])
	}
	w.Flush()

	// Trace is optional; older runs may not have one
	reader, err := store.NewTraceReader(runsDataDir, args[0])
	if err != nil {
		return nil
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read trace: %w", err)
	}
	fmt.Println("\nRestart trace:")
	for _, entry := range entries {
		fmt.Printf("  %d: %.6f\n", entry.Restart, entry.Cost)
	}
	return nil
}

func runDeleteRun(cmd *cobra.Command, args []string) error {
	resultStore, err := store.NewFSStore(runsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create result store: %w", err)
	}

	if err := resultStore.DeleteResult(args[0]); err != nil {
		return err
	}

	fmt.Printf("Deleted run %s\n", args[0])
	return nil
}
