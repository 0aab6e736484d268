package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Inspect and renew the stored credential",
	Long: `Show the stored OAuth credential or exchange its refresh token for a
new access token.

Tokens are always displayed masked; the full values never leave the
credential file.

Examples:
  qbsync auth status
  qbsync auth refresh`,
	RunE: runAuthStatus,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored credential",
	RunE:  runAuthStatus,
}

var authRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Renew the stored credential",
	Long: `Exchange the stored refresh token for a new access token and save the
result. The grant is attempted exactly once; if it is rejected, authorise
the application again instead of retrying.`,
	RunE: runAuthRefresh,
}

func init() {
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authRefreshCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}

	status, err := authService.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read credential: %w", err)
	}

	cmd.Println("Credential status")
	cmd.Println("=================")
	cmd.Printf("  File: %s\n", status.CredentialPath)
	cmd.Printf("  Environment: %s\n", status.Environment)

	if !status.HasCredential {
		cmd.Println("  Status: no credential stored")
		cmd.Println()
		printAuthGuidance(cmd)
		return nil
	}

	cmd.Printf("  Realm ID: %s\n", status.RealmID)
	cmd.Printf("  Access token: %s\n", status.AccessToken)
	cmd.Printf("  Refresh token: %s\n", status.RefreshToken)
	return nil
}

func runAuthRefresh(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}

	status, err := authService.Refresh(cmd.Context())
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	cmd.Println("Credential refreshed.")
	cmd.Printf("  File: %s\n", status.CredentialPath)
	cmd.Printf("  Access token: %s\n", status.AccessToken)
	cmd.Printf("  Refresh token: %s\n", status.RefreshToken)
	return nil
}

// printAuthGuidance explains how to obtain the initial credential. Refresh
// grants can renew a credential but never create one.
func printAuthGuidance(cmd *cobra.Command) {
	cmd.Println("To authorise the application:")
	cmd.Println("  1. Open the Intuit OAuth 2.0 playground:")
	cmd.Println("     https://developer.intuit.com/app/developer/playground")
	cmd.Println("  2. Authorise your app with the com.intuit.quickbooks.accounting scope")
	cmd.Println("  3. Save the issued tokens and company realm ID to the credential file:")
	cmd.Println(`     {"access_token": "...", "refresh_token": "...", "realm_id": "..."}`)
	cmd.Println()
	cmd.Println("Run 'qbsync auth status' again to verify the credential.")
}
