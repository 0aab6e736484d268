package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change application settings such as the target environment,
OAuth client, and output locations.

Settings live in a TOML file; environment variables prefixed QBSYNC_
override file values for one invocation without touching the file.

Examples:
  qbsync settings
  qbsync settings set environment production
  qbsync settings set request_timeout_seconds 60`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Args:  exactArgs(2),
	RunE:  runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.List()
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}

	cmd.Println("Current settings")
	cmd.Println("================")
	cmd.Println()
	for _, s := range settings {
		cmd.Printf("  %s = %s\n", s.Key, s.Value)
	}
	cmd.Println()
	cmd.Printf("Settings file: %s\n", settingsService.Path())
	cmd.Println("Environment variables prefixed QBSYNC_ override file values.")
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return &ExitError{Code: ExitUsage, Err: err}
		}
		return fmt.Errorf("failed to save setting: %w", err)
	}

	cmd.Printf("Set %s\n", key)
	return nil
}
