// Package domain defines the core business entities for qbsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types:
//
//   - Invoice: A locally defined invoice with its lines
//   - Credential: The short-lived OAuth2 bearer credential
//   - BatchOutcome: Per-record results of one batch run
//   - SyncRun: The durable history record of a finished run
//   - AppSettings: Effective application configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library, decimal arithmetic for money fields
//   - Cannot Import: Any internal/ package
package domain
