package domain

const unknownDescription = "Unknown"

// Environment selects the remote service deployment.
type Environment string

// Available environments.
const (
	// EnvironmentSandbox targets the sandbox company.
	EnvironmentSandbox Environment = "sandbox"

	// EnvironmentProduction targets the live company.
	EnvironmentProduction Environment = "production"
)

// IsValid returns true if the environment is recognised.
func (e Environment) IsValid() bool {
	switch e {
	case EnvironmentSandbox, EnvironmentProduction:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (e Environment) String() string {
	return string(e)
}

// Description returns a human-readable description of the environment.
func (e Environment) Description() string {
	switch e {
	case EnvironmentSandbox:
		return "Sandbox (test company)"
	case EnvironmentProduction:
		return "Production (live company)"
	default:
		return unknownDescription
	}
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Environment selects sandbox or production.
	Environment Environment

	// ClientID and ClientSecret identify the OAuth application used for
	// refresh grants.
	ClientID     string
	ClientSecret string

	// RedirectURI is the redirect registered with the OAuth application.
	// Only used for guidance when no credential exists yet.
	RedirectURI string

	// CredentialFile overrides the default credential file location.
	// Empty means the per-user default.
	CredentialFile string

	// DataDir overrides where run history is stored.
	// Empty means the per-user default.
	DataDir string

	// OutputDir is where downloaded documents land.
	OutputDir string

	// RequestTimeoutSeconds bounds each remote HTTP call.
	RequestTimeoutSeconds int

	// ConfirmAfterRefresh pauses after a credential refresh until the
	// operator acknowledges the updated credential file.
	ConfirmAfterRefresh bool
}

// DefaultAppSettings returns settings with sensible defaults.
// ClientID and ClientSecret have no default; refresh grants fail without them.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Environment:           EnvironmentSandbox,
		RedirectURI:           "https://developer.intuit.com/v2/OAuth2Playground/RedirectUrl",
		OutputDir:             "invoices",
		RequestTimeoutSeconds: 30,
		ConfirmAfterRefresh:   false,
	}
}

// AllEnvironments returns all available environments.
func AllEnvironments() []Environment {
	return []Environment{
		EnvironmentSandbox,
		EnvironmentProduction,
	}
}
