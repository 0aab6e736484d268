package domain

import "time"

// RunKind distinguishes the batch operations recorded in history.
type RunKind string

const (
	// RunKindImport is an invoice creation run.
	RunKindImport RunKind = "import"
	// RunKindDownload is a document download run.
	RunKindDownload RunKind = "download"
)

// SyncRun is the durable record of one batch run, persisted for history.
type SyncRun struct {
	// ID is the unique run identifier.
	ID string
	// Kind is the operation the run performed.
	Kind RunKind
	// StartedAt is when the run began.
	StartedAt time.Time
	// FinishedAt is when the run ended, whether completed or aborted.
	FinishedAt time.Time
	// Total is the number of records in the input set.
	Total int
	// Succeeded, Skipped and Failed count terminal record states.
	Succeeded int
	Skipped   int
	Failed    int
	// Aborted is set when the run ended before attempting every record.
	Aborted bool
	// AbortReason explains the abort, empty otherwise.
	AbortReason string
	// Results holds the attempted records in processing order.
	Results []RecordResult
}

// NewSyncRun builds a run record from a finished batch outcome.
func NewSyncRun(id string, kind RunKind, started, finished time.Time, outcome *BatchOutcome) SyncRun {
	return SyncRun{
		ID:          id,
		Kind:        kind,
		StartedAt:   started,
		FinishedAt:  finished,
		Total:       outcome.Total,
		Succeeded:   outcome.Succeeded(),
		Skipped:     outcome.Skipped(),
		Failed:      outcome.Failed(),
		Aborted:     outcome.Aborted,
		AbortReason: outcome.AbortReason,
		Results:     outcome.Results,
	}
}

// Duration returns the wall-clock time the run took.
func (r SyncRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
