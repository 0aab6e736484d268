package driven

import (
	"context"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
)

// CredentialStore persists the remote service credential between runs.
// There is exactly one credential per installation; a run reads it once at
// start and writes it back only after a successful refresh.
type CredentialStore interface {
	// Load reads the stored credential.
	// Returns domain.ErrNotFound if no credential has been saved yet.
	Load(ctx context.Context) (*domain.Credential, error)

	// Save persists the credential atomically. A crash mid-save must leave
	// either the old credential or the new one, never a torn file.
	Save(ctx context.Context, cred domain.Credential) error

	// Path returns the location of the credential file for display.
	Path() string
}
