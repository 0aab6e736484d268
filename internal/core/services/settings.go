package services

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
	"github.com/ledgerline/qbsync-cli/internal/core/ports/driven"
	"github.com/ledgerline/qbsync-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEnvironment    = "environment"
	keyClientID       = "client_id"
	keyClientSecret   = "client_secret"
	keyRedirectURI    = "redirect_uri"
	keyCredentialFile = "credential_file"
	keyDataDir        = "data_dir"
	keyOutputDir      = "output_dir"
	keyRequestTimeout = "request_timeout_seconds"
	keyConfirmRefresh = "confirm_after_refresh"
)

// Environment variables overriding stored settings.
const (
	envEnvironment    = "QBSYNC_ENVIRONMENT"
	envClientID       = "QBSYNC_CLIENT_ID"
	envClientSecret   = "QBSYNC_CLIENT_SECRET" //nolint:gosec // G101: variable name, not a credential
	envRedirectURI    = "QBSYNC_REDIRECT_URI"
	envCredentialFile = "QBSYNC_CREDENTIAL_FILE"
	envDataDir        = "QBSYNC_DATA_DIR"
	envOutputDir      = "QBSYNC_OUTPUT_DIR"
)

// settingKeys is the display order for List.
var settingKeys = []string{
	keyEnvironment,
	keyClientID,
	keyClientSecret,
	keyRedirectURI,
	keyCredentialFile,
	keyDataDir,
	keyOutputDir,
	keyRequestTimeout,
	keyConfirmRefresh,
}

// SettingsService manages application settings.
//
// Resolution order for every value: built-in default, then the settings
// file, then the environment variable, highest precedence last.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Effective resolves the full application settings.
func (s *SettingsService) Effective() domain.AppSettings {
	cfg := domain.DefaultAppSettings()

	cfg.Environment = s.getEnvironment(cfg.Environment)
	cfg.ClientID = s.getString(keyClientID, envClientID, cfg.ClientID)
	cfg.ClientSecret = s.getString(keyClientSecret, envClientSecret, cfg.ClientSecret)
	cfg.RedirectURI = s.getString(keyRedirectURI, envRedirectURI, cfg.RedirectURI)
	cfg.CredentialFile = s.getString(keyCredentialFile, envCredentialFile, cfg.CredentialFile)
	cfg.DataDir = s.getString(keyDataDir, envDataDir, cfg.DataDir)
	cfg.OutputDir = s.getString(keyOutputDir, envOutputDir, cfg.OutputDir)
	cfg.RequestTimeoutSeconds = s.getInt(keyRequestTimeout, cfg.RequestTimeoutSeconds)
	cfg.ConfirmAfterRefresh = s.getBool(keyConfirmRefresh, cfg.ConfirmAfterRefresh)

	return cfg
}

// List returns every known setting with its effective value.
func (s *SettingsService) List() ([]driving.Setting, error) {
	cfg := s.Effective()

	values := map[string]string{
		keyEnvironment:    cfg.Environment.String(),
		keyClientID:       cfg.ClientID,
		keyClientSecret:   maskSecret(cfg.ClientSecret),
		keyRedirectURI:    cfg.RedirectURI,
		keyCredentialFile: cfg.CredentialFile,
		keyDataDir:        cfg.DataDir,
		keyOutputDir:      cfg.OutputDir,
		keyRequestTimeout: strconv.Itoa(cfg.RequestTimeoutSeconds),
		keyConfirmRefresh: strconv.FormatBool(cfg.ConfirmAfterRefresh),
	}

	settings := make([]driving.Setting, 0, len(settingKeys))
	for _, key := range settingKeys {
		settings = append(settings, driving.Setting{Key: key, Value: values[key]})
	}
	return settings, nil
}

// Set validates and persists one setting.
func (s *SettingsService) Set(key, value string) error {
	switch key {
	case keyEnvironment:
		env := domain.Environment(value)
		if !env.IsValid() {
			return fmt.Errorf("%w: environment must be one of %v", domain.ErrInvalidInput, domain.AllEnvironments())
		}
		return s.configStore.Set(key, value)

	case keyRequestTimeout:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
		}
		return s.configStore.Set(key, n)

	case keyConfirmRefresh:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		return s.configStore.Set(key, b)

	case keyClientID, keyClientSecret, keyRedirectURI, keyCredentialFile, keyDataDir, keyOutputDir:
		return s.configStore.Set(key, value)

	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
}

// Path returns the settings file location.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// Helper methods for reading config with env overrides and defaults.

func (s *SettingsService) getString(key, envVar, defaultVal string) string {
	if envVar != "" {
		if v := os.Getenv(envVar); v != "" {
			return v
		}
	}
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if v := s.configStore.GetInt(key); v != 0 {
		return v
	}
	return defaultVal
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getEnvironment(defaultVal domain.Environment) domain.Environment {
	val := s.getString(keyEnvironment, envEnvironment, "")
	if val == "" {
		return defaultVal
	}
	env := domain.Environment(val)
	if !env.IsValid() {
		return defaultVal
	}
	return env
}

// maskSecret redacts a secret for display, keeping just enough to recognise.
func maskSecret(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
