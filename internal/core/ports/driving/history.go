package driving

import (
	"context"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
)

// HistoryService exposes recorded batch runs.
type HistoryService interface {
	// List returns recent runs, newest first, without per-record results.
	List(ctx context.Context, limit int) ([]domain.SyncRun, error)

	// Show retrieves one run with its per-record results.
	// Returns domain.ErrNotFound for an unknown run ID.
	Show(ctx context.Context, id string) (*domain.SyncRun, error)
}
