package services

import (
	"context"
	"fmt"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
	"github.com/ledgerline/qbsync-cli/internal/core/ports/driven"
	"github.com/ledgerline/qbsync-cli/internal/logger"
)

// BatchRecord is one unit of work in a batch run.
//
// Do performs the record's remote operations against the given session and
// returns the terminal result. Do must be safe to re-run from the top: after
// a credential refresh the whole function executes again, so any existence
// check happens again before a create is re-issued.
type BatchRecord struct {
	Key string
	Do  func(ctx context.Context, session driven.RemoteSession) (domain.RecordResult, error)
}

// BatchRunner drives a record set sequentially against the remote service,
// absorbing at most one credential refresh per run.
//
// The rules, applied uniformly to every record:
//
//   - A normal return resolves the record and the run moves on.
//   - The first ErrCredentialExpired of the run triggers one refresh; the
//     same record re-runs once against the new session, which every later
//     record then shares.
//   - ErrCredentialExpired after the run has already refreshed aborts the
//     remaining batch: the grant chain itself is broken, not this record.
//   - A failed refresh aborts the remaining batch the same way.
//   - Any other error marks the record failed and the run continues.
//
// Records run strictly sequentially. The session and credential are shared
// mutable state and must never be refreshed from two in-flight operations.
type BatchRunner struct {
	factory   driven.SessionFactory
	refresher *AuthRefresher
}

// NewBatchRunner creates a new batch runner.
func NewBatchRunner(factory driven.SessionFactory, refresher *AuthRefresher) *BatchRunner {
	return &BatchRunner{
		factory:   factory,
		refresher: refresher,
	}
}

// Run processes the records in order and returns the aggregated outcome.
// Cancellation is honoured between records, not mid-operation; on
// cancellation the partial outcome is returned alongside ctx.Err().
func (r *BatchRunner) Run(ctx context.Context, cred domain.Credential, records []BatchRecord) (*domain.BatchOutcome, error) {
	outcome := &domain.BatchOutcome{Total: len(records)}
	session := r.factory.NewSession(cred)
	refreshed := false

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			outcome.Aborted = true
			outcome.AbortReason = "cancelled"
			return outcome, err
		}

		logger.Debug("Processing record %d/%d: %s", i+1, len(records), rec.Key)

		res, err := rec.Do(ctx, session)
		if domain.IsAuthExpired(err) {
			if refreshed {
				// Second expiry after a successful refresh. The grant
				// chain is broken; retrying can only loop.
				r.abort(outcome, "credential expired again after refresh")
				return outcome, nil
			}

			newSession, newCred, refreshErr := r.refresher.Refresh(ctx, cred)
			if refreshErr != nil {
				r.abort(outcome, fmt.Sprintf("token refresh failed: %v", refreshErr))
				return outcome, nil
			}
			session, cred, refreshed = newSession, newCred, true

			// One retry for the record that hit the expiry. The whole
			// Do runs again, existence checks included.
			res, err = rec.Do(ctx, session)
			if domain.IsAuthExpired(err) {
				r.abort(outcome, "credential expired again after refresh")
				return outcome, nil
			}
		}

		if err != nil {
			logger.Warn("Record %s failed: %v", rec.Key, err)
			outcome.Record(domain.RecordResult{
				Key:    rec.Key,
				Status: domain.StatusFailed,
				Detail: err.Error(),
			})
			continue
		}
		outcome.Record(res)
	}

	return outcome, nil
}

// abort marks the outcome aborted. The record that triggered the abort gets
// no per-record row; the abort reason covers it.
func (r *BatchRunner) abort(outcome *domain.BatchOutcome, reason string) {
	outcome.Aborted = true
	outcome.AbortReason = reason
	logger.Warn("Aborting batch: %s (%d of %d records attempted)", reason, outcome.Attempted(), outcome.Total)
}
