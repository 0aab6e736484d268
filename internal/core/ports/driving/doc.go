// Package driving defines the interfaces through which the CLI invokes
// core behaviour: importing invoices, downloading documents, inspecting
// the credential, browsing run history, and editing settings. These are
// the "driving" ports in hexagonal architecture terminology - they drive
// the application.
//
// Implementations live in internal/core/services. Commands depend on
// these interfaces rather than the concrete services so tests can swap
// in mocks.
package driving
