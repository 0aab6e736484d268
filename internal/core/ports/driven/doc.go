// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - CredentialStore: Durable credential persistence
//   - RemoteSession / SessionFactory: Accounting service access
//   - TokenRefresher: Refresh token grant
//   - InvoiceReader / ManifestReader: Local input parsing
//   - ConfigStore: Application settings
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Confirmer: Post-refresh operator acknowledgement. Without it, runs
//     continue immediately after a refresh.
//   - RunStore: Batch run history. Without it, runs are not recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
