package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
	"github.com/ledgerline/qbsync-cli/internal/core/ports/driving"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Create invoices from a CSV file in QuickBooks",
	Long: `Reads a CSV file of invoice lines, groups rows by InvoiceNo, and creates
each invoice in QuickBooks Online.

Invoices whose document number already exists remotely are skipped, so a
rerun of the same file never creates duplicates. One invoice failing does
not stop the rest; the run ends with a per-invoice breakdown and is recorded
in the run history.

Examples:
  qbsync import
  qbsync import --input january.csv
  qbsync import --only-required
  qbsync import --auto-fill-qty-rate --debug-json`,
	RunE: runImport,
}

// Flags for import.
var (
	importInput        string
	importOnlyRequired bool
	importAutoFill     bool
	importDebugJSON    bool
)

func init() {
	importCmd.Flags().StringVar(
		&importInput, "input", "invoices.csv", "CSV file with invoices to create")
	importCmd.Flags().BoolVar(
		&importOnlyRequired, "only-required", false, "send only the required invoice fields")
	importCmd.Flags().BoolVar(
		&importAutoFill, "auto-fill-qty-rate", false, "derive missing quantity and rate from the line amount")
	importCmd.Flags().BoolVar(
		&importDebugJSON, "debug-json", false, "log each invoice payload before sending")

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	if importService == nil {
		return errors.New("import service not configured")
	}
	warnMissingClientCreds(cmd)

	cmd.Printf("Importing invoices from %s...\n", importInput)

	outcome, err := importService.Import(cmd.Context(), driving.ImportRequest{
		InputPath: importInput,
		Options: domain.PayloadOptions{
			OnlyRequired:    importOnlyRequired,
			AutoFillQtyRate: importAutoFill,
			DebugJSON:       importDebugJSON,
		},
	})
	if outcome == nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	cmd.Printf("Imported %d of %d invoices\n", outcome.Succeeded(), outcome.Total)
	if n := outcome.Skipped(); n > 0 {
		cmd.Printf("Skipped %d invoices that already exist\n", n)
	}
	if n := outcome.Failed(); n > 0 {
		cmd.Printf("Failed to import %d invoices, see the log output above\n", n)
	}

	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	if outcome.Aborted {
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("run aborted: %s", outcome.AbortReason)}
	}
	return nil
}
