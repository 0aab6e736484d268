package driven

import "context"

// Confirmer notifies the operator after the credential file changes on disk
// and optionally blocks until they acknowledge. Deployments that mirror the
// credential file to a shared location use the pause to copy it before the
// run continues.
type Confirmer interface {
	// Confirm delivers the message and returns once acknowledged.
	// Non-interactive implementations return immediately.
	Confirm(ctx context.Context, message string) error
}
