// Package file provides the file-based settings adapter.
//
// ConfigStore persists application settings as TOML under the qbsync
// config directory (~/.qbsync/config.toml by default). Values written
// through Set are flushed to disk immediately, and nested tables in a
// hand-edited file are flattened into dot-notation keys on load.
package file
