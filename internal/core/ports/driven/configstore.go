package driven

// ConfigStore reads and writes the persisted application settings, the
// values managed by `qbsync settings set`. Implementations own the file
// format (e.g. TOML) and type conversion. Stores see only the file;
// QBSYNC_* environment overrides are applied by the settings service.
type ConfigStore interface {
	// Get looks up a raw settings value by key and reports whether
	// the key is present.
	Get(key string) (any, bool)

	// GetString returns the string value for key, or "" when the key
	// is unset or holds another type.
	GetString(key string) string

	// GetInt returns the integer value for key, or 0 when the key is
	// unset or holds another type.
	GetInt(key string) int

	// GetBool returns the boolean value for key, or false when the key
	// is unset or holds another type.
	GetBool(key string) bool

	// Set records a settings value and writes it through to storage
	// immediately.
	Set(key string, value any) error

	// Save persists the current settings to storage.
	Save() error

	// Load rereads the settings from storage.
	Load() error

	// Path returns the settings file location shown by
	// `qbsync settings show`.
	Path() string
}
