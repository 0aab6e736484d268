// Package services implements the driving port interfaces: invoice
// import, document download, credential refresh, run history, and
// settings. The batch runner and auth refresher here own the retry and
// refresh rules the commands rely on.
//
// All remote access goes through the driven ports, so every service is
// testable with in-memory fakes.
package services
