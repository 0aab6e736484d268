package services

import (
	"context"
	"errors"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
	"github.com/ledgerline/qbsync-cli/internal/core/ports/driven"
)

// RecordResolver answers existence and identity questions for business keys
// on the remote side. Every call is a live remote lookup; nothing is cached
// across records, so a lookup after a mid-run refresh always reflects the
// session actually in use.
type RecordResolver struct{}

// NewRecordResolver creates a new record resolver.
func NewRecordResolver() *RecordResolver {
	return &RecordResolver{}
}

// Exists reports whether an invoice with the document number is already
// present remotely. This is the idempotency guard run before every create.
func (r *RecordResolver) Exists(ctx context.Context, session driven.RemoteSession, key string) (bool, error) {
	_, err := session.FindInvoice(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Resolve returns the remote handle for the document number, used before a
// fetch. Returns domain.ErrNotFound when the invoice does not exist.
func (r *RecordResolver) Resolve(ctx context.Context, session driven.RemoteSession, key string) (domain.RemoteHandle, error) {
	handle, err := session.FindInvoice(ctx, key)
	if err != nil {
		return domain.RemoteHandle{}, err
	}
	return handle, nil
}
