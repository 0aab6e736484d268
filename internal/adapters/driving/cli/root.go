package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerline/qbsync-cli/internal/adapters/driven/config/file"
	"github.com/ledgerline/qbsync-cli/internal/adapters/driven/credfile"
	"github.com/ledgerline/qbsync-cli/internal/adapters/driven/csvfile"
	"github.com/ledgerline/qbsync-cli/internal/adapters/driven/qbo"
	"github.com/ledgerline/qbsync-cli/internal/adapters/driven/storage/sqlite"
	"github.com/ledgerline/qbsync-cli/internal/core/domain"
	"github.com/ledgerline/qbsync-cli/internal/core/ports/driven"
	"github.com/ledgerline/qbsync-cli/internal/core/ports/driving"
	"github.com/ledgerline/qbsync-cli/internal/core/services"
	"github.com/ledgerline/qbsync-cli/internal/logger"
)

// Build metadata injected from main at startup.
var (
	version = "dev"
	commit  = ""
)

// SetVersion records the build version for the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetCommit records the git commit for the version command.
func SetCommit(c string) {
	if c != "" {
		commit = c
	}
}

// Services wired before command execution. Tests replace them with mocks.
var (
	importService   driving.InvoiceImporter
	downloadService driving.DocumentDownloader
	authService     driving.AuthService
	historyService  driving.HistoryService
	settingsService driving.SettingsService

	// appSettings holds the effective configuration for flag defaults.
	appSettings = domain.DefaultAppSettings()

	// runStore is kept for closing on shutdown.
	runStore *sqlite.Store
)

// verbose enables debug logging for all commands.
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "qbsync",
	Short: "Batch-synchronise local invoices with QuickBooks Online",
	Long: `qbsync creates locally defined invoices in QuickBooks Online and
downloads rendered invoice documents, in batch runs with per-record results.

The remote company is protected by a short-lived OAuth2 bearer credential.
When it expires mid-run, the run refreshes it once, saves the new credential,
and carries on; a second expiry ends the run early so no record is ever
attempted twice against a dead credential.`,
	SilenceUsage:  true,
	SilenceErrors: true, // main prints the error once, with the exit code
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return nil
		}
		return &ExitError{
			Code: ExitUsage,
			Err:  fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath()),
		}
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitUsage, Err: err}
	})
}

// Execute wires the service graph and runs the root command.
// The returned error maps to a process exit code via GetExitCode.
func Execute() error {
	if err := initServices(); err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	defer shutdownServices()

	// Interrupts cancel between records, so a stopped run still reports
	// the records it attempted
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

// initServices builds the full service graph from the stored settings.
func initServices() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open settings: %w", err)
	}
	settings := services.NewSettingsService(configStore)
	cfg := settings.Effective()
	appSettings = cfg

	credStore, err := credfile.NewStore(cfg.CredentialFile)
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}

	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	factory := qbo.NewFactory(cfg.Environment, timeout)
	tokens := qbo.NewRefresher(cfg.ClientID, cfg.ClientSecret)

	var confirmer driven.Confirmer
	if cfg.ConfirmAfterRefresh {
		confirmer = NewStdinConfirmer()
	}

	refresher := services.NewAuthRefresher(credStore, tokens, factory, confirmer)
	runner := services.NewBatchRunner(factory, refresher)
	resolver := services.NewRecordResolver()

	// Run history is advisory: a broken history database must not block
	// imports and downloads
	var history *services.HistoryService
	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		logger.Warn("Run history unavailable: %v", err)
		history = services.NewHistoryService(nil)
	} else {
		runStore = store
		history = services.NewHistoryService(store)
	}

	reader := csvfile.NewReader()

	importService = services.NewImportService(credStore, reader, resolver, runner, history)
	downloadService = services.NewDownloadService(credStore, reader, resolver, runner, history)
	authService = services.NewAuthService(credStore, refresher, cfg.Environment)
	historyService = history
	settingsService = settings

	return nil
}

// shutdownServices releases resources held by the service graph.
func shutdownServices() {
	if runStore != nil {
		if err := runStore.Close(); err != nil {
			logger.Warn("Closing run history store: %v", err)
		}
		runStore = nil
	}
}

// exactArgs is cobra.ExactArgs with the usage exit code attached.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &ExitError{Code: ExitUsage, Err: err}
		}
		return nil
	}
}

// warnMissingClientCreds reports before a batch starts that a mid-run
// refresh cannot work without the OAuth client pair. The run still
// proceeds: a credential that never expires needs neither value.
func warnMissingClientCreds(cmd *cobra.Command) {
	if appSettings.ClientID == "" || appSettings.ClientSecret == "" {
		cmd.PrintErrln("Warning: client_id and client_secret are not set; an expired credential cannot be refreshed. Set them with 'qbsync settings set'.")
	}
}
