package driving

import (
	"context"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
)

// DownloadRequest describes one document download run.
type DownloadRequest struct {
	// ManifestPath is the manifest naming invoices and file names.
	ManifestPath string

	// OutputDir is where rendered documents land. Created if missing.
	OutputDir string
}

// DocumentDownloader fetches rendered invoice documents to local files.
type DocumentDownloader interface {
	// Download runs the batch. Existing files are never overwritten; a
	// taken name gets a numeric suffix instead.
	Download(ctx context.Context, req DownloadRequest) (*domain.BatchOutcome, error)
}
