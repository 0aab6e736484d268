package driven

import (
	"context"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
)

// RunStore persists batch run history. History is advisory: a store failure
// must never fail the batch that produced the run.
type RunStore interface {
	// SaveRun stores a finished run with its per-record results.
	SaveRun(ctx context.Context, run domain.SyncRun) error

	// ListRuns returns the most recent runs, newest first, without their
	// per-record results.
	ListRuns(ctx context.Context, limit int) ([]domain.SyncRun, error)

	// GetRun retrieves one run including per-record results.
	// Returns domain.ErrNotFound for an unknown run ID.
	GetRun(ctx context.Context, id string) (*domain.SyncRun, error)

	// Close releases the underlying storage.
	Close() error
}
