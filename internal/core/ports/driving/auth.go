package driving

import "context"

// AuthStatus is the displayable state of the stored credential.
// Token fields are pre-masked; full tokens never leave the core.
type AuthStatus struct {
	// HasCredential is false when no credential file exists yet.
	HasCredential bool

	// CredentialPath is where the credential is (or would be) stored.
	CredentialPath string

	// Environment names the remote environment (sandbox or production).
	Environment string

	// RealmID is the company the credential is scoped to.
	RealmID string

	// AccessToken and RefreshToken are masked display forms.
	AccessToken  string
	RefreshToken string
}

// AuthService inspects and renews the stored credential.
type AuthService interface {
	// Status reports the stored credential without exposing token values.
	Status(ctx context.Context) (*AuthStatus, error)

	// Refresh performs one refresh grant and persists the result before
	// reporting success. The grant is never retried.
	Refresh(ctx context.Context) (*AuthStatus, error)
}
