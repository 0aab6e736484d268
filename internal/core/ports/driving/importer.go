package driving

import (
	"context"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
)

// ImportRequest describes one invoice import run.
type ImportRequest struct {
	// InputPath is the invoice file to import.
	InputPath string

	// Options controls payload rendering for every invoice in the run.
	Options domain.PayloadOptions
}

// InvoiceImporter creates locally defined invoices on the remote service.
type InvoiceImporter interface {
	// Import runs the batch. The returned outcome carries per-record
	// results even when the run aborts early; the error is non-nil only
	// when the run could not produce an outcome at all.
	Import(ctx context.Context, req ImportRequest) (*domain.BatchOutcome, error)
}
