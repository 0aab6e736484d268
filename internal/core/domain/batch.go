package domain

import "fmt"

// RecordStatus describes the terminal state of one record in a batch run.
type RecordStatus string

const (
	// StatusSucceeded means the remote operation completed for the record.
	StatusSucceeded RecordStatus = "succeeded"
	// StatusSkipped means the record already existed remotely and was
	// left alone.
	StatusSkipped RecordStatus = "skipped"
	// StatusFailed means the record failed terminally while the batch
	// carried on.
	StatusFailed RecordStatus = "failed"
)

// RecordResult is the fate of a single record, individually reportable.
// One record's failure never hides another record's outcome.
type RecordResult struct {
	// Key is the business document number identifying the record.
	Key string
	// Status is the record's terminal state.
	Status RecordStatus
	// Detail carries the failure or skip reason, empty on success.
	Detail string
	// Output is the local artifact path for file-producing operations.
	Output string
}

// BatchOutcome aggregates per-record results for one batch run. Results are
// appended in processing order as records reach a terminal state; on an
// aborted run the unattempted remainder has no result rows.
type BatchOutcome struct {
	// Total is the number of records in the input set.
	Total int
	// Results holds one entry per attempted record, in order.
	Results []RecordResult
	// Aborted is set when an authentication failure ended the run before
	// every record was attempted.
	Aborted bool
	// AbortReason explains the abort, empty otherwise.
	AbortReason string
}

// Record appends a terminal per-record result.
func (o *BatchOutcome) Record(res RecordResult) {
	o.Results = append(o.Results, res)
}

// Attempted returns how many records reached a terminal state.
func (o *BatchOutcome) Attempted() int {
	return len(o.Results)
}

// Succeeded returns the count of successful records.
func (o *BatchOutcome) Succeeded() int {
	return o.count(StatusSucceeded)
}

// Skipped returns the count of records already present remotely.
func (o *BatchOutcome) Skipped() int {
	return o.count(StatusSkipped)
}

// Failed returns the count of terminally failed records.
func (o *BatchOutcome) Failed() int {
	return o.count(StatusFailed)
}

// Summary renders the succeeded-of-total line shown at the end of a run.
func (o *BatchOutcome) Summary() string {
	return fmt.Sprintf("%d/%d", o.Succeeded(), o.Total)
}

func (o *BatchOutcome) count(status RecordStatus) int {
	n := 0
	for _, r := range o.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}
