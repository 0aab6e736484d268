package driving

// Setting is one displayable configuration entry.
// Secret values arrive pre-masked.
type Setting struct {
	Key   string
	Value string
}

// SettingsService manages application settings.
type SettingsService interface {
	// List returns every known setting with its effective value,
	// environment overrides applied.
	List() ([]Setting, error)

	// Set validates and persists one setting.
	Set(key, value string) error

	// Path returns the settings file location.
	Path() string
}
