package driven

import (
	"context"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
)

// RemoteSession performs operations against the accounting service using one
// fixed credential. A session never refreshes itself: when the credential
// expires every call fails with domain.ErrCredentialExpired and the caller
// decides whether to obtain a new session.
//
// All methods map remote failures onto the domain error taxonomy:
//
//   - domain.ErrCredentialExpired: the service rejected the bearer token
//   - domain.ErrValidationFailed: the service rejected the entity payload
//   - domain.ErrNotFound: the looked-up entity does not exist
//   - domain.ErrRateLimited: the request throttle was exceeded
//   - domain.ErrRemoteUnavailable: transport failure or remote outage
type RemoteSession interface {
	// FindInvoice looks up an invoice by its document number.
	// Returns domain.ErrNotFound when no invoice carries the number.
	FindInvoice(ctx context.Context, docNumber string) (domain.RemoteHandle, error)

	// CreateInvoice creates the invoice remotely and returns its handle.
	CreateInvoice(ctx context.Context, inv *domain.Invoice, opts domain.PayloadOptions) (domain.RemoteHandle, error)

	// FetchInvoicePDF retrieves the rendered PDF for an invoice handle.
	FetchInvoicePDF(ctx context.Context, handle domain.RemoteHandle) ([]byte, error)

	// FindCustomer resolves a customer by display name.
	// Customers are never created here; an unknown name is ErrNotFound.
	FindCustomer(ctx context.Context, displayName string) (domain.RemoteHandle, error)

	// FindItem resolves a product or service item by name.
	FindItem(ctx context.Context, name string) (domain.RemoteHandle, error)

	// FindTerm resolves a sales term by name.
	FindTerm(ctx context.Context, name string) (domain.RemoteHandle, error)
}

// SessionFactory builds remote sessions from credentials. The factory is how
// a batch swaps in a refreshed credential mid-run: build a new session and
// use it for every remaining record.
type SessionFactory interface {
	// NewSession returns a session bound to the given credential.
	NewSession(cred domain.Credential) RemoteSession
}
