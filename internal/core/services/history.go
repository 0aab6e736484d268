package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
	"github.com/ledgerline/qbsync-cli/internal/core/ports/driven"
	"github.com/ledgerline/qbsync-cli/internal/core/ports/driving"
	"github.com/ledgerline/qbsync-cli/internal/logger"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService records finished batch runs and exposes them for review.
type HistoryService struct {
	runs driven.RunStore
}

// NewHistoryService creates a new history service.
// The run store is optional - if nil, runs are not recorded and queries
// return empty results.
func NewHistoryService(runs driven.RunStore) *HistoryService {
	return &HistoryService{
		runs: runs,
	}
}

// Record persists a finished run and returns its ID.
// History is best effort: a store failure is logged, never propagated, so it
// cannot fail the batch that produced the run.
func (s *HistoryService) Record(ctx context.Context, kind domain.RunKind, started, finished time.Time, outcome *domain.BatchOutcome) string {
	if s.runs == nil {
		return ""
	}

	// Recording must survive the cancellation that may have ended the run.
	ctx = context.WithoutCancel(ctx)

	run := domain.NewSyncRun(uuid.New().String(), kind, started, finished, outcome)
	if err := s.runs.SaveRun(ctx, run); err != nil {
		logger.Warn("Failed to record run history: %v", err)
		return ""
	}
	logger.Debug("Recorded %s run %s", kind, run.ID)
	return run.ID
}

// List returns recent runs, newest first.
func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.ListRuns(ctx, limit)
}

// Show retrieves one run with its per-record results.
func (s *HistoryService) Show(ctx context.Context, id string) (*domain.SyncRun, error) {
	if s.runs == nil {
		return nil, domain.ErrNotFound
	}
	return s.runs.GetRun(ctx, id)
}
