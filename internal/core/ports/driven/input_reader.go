package driven

import (
	"context"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
)

// InvoiceReader loads locally defined invoices from an input file.
// Rows sharing a document number fold into one invoice; rows the reader
// cannot use are logged and dropped rather than failing the whole file.
type InvoiceReader interface {
	// ReadInvoices parses the file at path into invoices, preserving the
	// order document numbers first appear in.
	ReadInvoices(ctx context.Context, path string) ([]domain.Invoice, error)
}

// ManifestReader loads the download manifest naming which invoices to fetch
// and what to call the files.
type ManifestReader interface {
	// ReadManifest parses the manifest at path, skipping incomplete rows.
	ReadManifest(ctx context.Context, path string) ([]domain.DownloadItem, error)
}
