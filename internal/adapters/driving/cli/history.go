package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Review recorded batch runs",
	Long: `List past import and download runs, or show one run with its
per-invoice results.

Examples:
  qbsync history
  qbsync history list --limit 5
  qbsync history show 1f0c9a6e-...`,
	RunE: runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show one run with per-invoice results",
	Args:  exactArgs(1),
	RunE:  runHistoryShow,
}

// Flags for history list.
var historyLimit int

func init() {
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 10, "maximum number of runs to list")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	runs, err := historyService.List(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		cmd.Println("No recorded runs.")
		cmd.Println("Runs are recorded when you use 'qbsync import' or 'qbsync download'.")
		return nil
	}

	cmd.Println("Recent runs:")
	cmd.Println()
	for i := range runs {
		printRunHeader(cmd, &runs[i])
		cmd.Println()
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	run, err := historyService.Show(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no run with ID %s", args[0])
		}
		return fmt.Errorf("failed to load run: %w", err)
	}

	printRunHeader(cmd, run)

	if len(run.Results) == 0 {
		cmd.Println("    Results: none recorded")
		return nil
	}

	cmd.Println("    Results:")
	for _, res := range run.Results {
		line := fmt.Sprintf("      [%s] %s", res.Status, res.Key)
		if res.Output != "" {
			line += " -> " + res.Output
		}
		if res.Detail != "" {
			line += ": " + res.Detail
		}
		cmd.Println(line)
	}
	return nil
}

// printRunHeader renders the one-run summary block shared by list and show.
func printRunHeader(cmd *cobra.Command, run *domain.SyncRun) {
	cmd.Printf("  %s\n", run.ID)
	cmd.Printf("    Kind: %s\n", run.Kind)
	cmd.Printf("    Started: %s\n", run.StartedAt.Format(time.RFC3339))
	cmd.Printf("    Duration: %s\n", run.Duration().Round(time.Millisecond))
	cmd.Printf("    Records: %d succeeded, %d skipped, %d failed of %d\n",
		run.Succeeded, run.Skipped, run.Failed, run.Total)
	if run.Aborted {
		cmd.Printf("    Aborted: %s\n", run.AbortReason)
	}
}
