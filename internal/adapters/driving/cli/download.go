package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerline/qbsync-cli/internal/core/ports/driving"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download invoice PDFs named in a manifest",
	Long: `Reads a manifest CSV naming invoices and target file names, fetches each
invoice's rendered PDF from QuickBooks Online, and writes it into the
output directory.

Existing files are never overwritten: a taken name gets a numeric suffix,
so "invoice.pdf" becomes "invoice(1).pdf". One missing invoice does not
stop the rest; the run ends with a per-invoice breakdown and is recorded
in the run history.

Examples:
  qbsync download
  qbsync download --manifest february.csv
  qbsync download --output-dir exports/pdf`,
	RunE: runDownload,
}

// Flags for download.
var (
	downloadManifest  string
	downloadOutputDir string
)

func init() {
	downloadCmd.Flags().StringVar(
		&downloadManifest, "manifest", "download.csv", "CSV manifest naming invoices and file names")
	downloadCmd.Flags().StringVar(
		&downloadOutputDir, "output-dir", "", "directory for downloaded documents (default from settings)")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, _ []string) error {
	if downloadService == nil {
		return errors.New("download service not configured")
	}
	warnMissingClientCreds(cmd)

	outputDir := downloadOutputDir
	if outputDir == "" {
		outputDir = appSettings.OutputDir
	}

	cmd.Printf("Downloading invoices from %s to %s...\n", downloadManifest, outputDir)

	outcome, err := downloadService.Download(cmd.Context(), driving.DownloadRequest{
		ManifestPath: downloadManifest,
		OutputDir:    outputDir,
	})
	if outcome == nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	cmd.Printf("Downloaded %d of %d invoices\n", outcome.Succeeded(), outcome.Total)
	if n := outcome.Failed(); n > 0 {
		cmd.Printf("Failed to download %d invoices, see the log output above\n", n)
	}

	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	if outcome.Aborted {
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("run aborted: %s", outcome.AbortReason)}
	}
	return nil
}
