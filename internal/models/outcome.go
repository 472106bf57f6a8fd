package models

import (
	"fmt"
	"time"
)

// OutcomeStatus is the terminal state of one record in a run.
type OutcomeStatus string

const (
	OutcomeUploaded OutcomeStatus = "uploaded"
	OutcomeSkipped  OutcomeStatus = "skipped"  // already in the collection snapshot
	OutcomeGaveUp   OutcomeStatus = "gave_up"  // still rate limited after every attempt
	OutcomeFailed   OutcomeStatus = "failed"   // transport error or an unexpected status
)

// RecordOutcome records what happened to a [LocalRecord] during a [SyncRun].
type RecordOutcome struct {
	id           string
	sequence     int
	runID        string
	record       LocalRecord
	status       OutcomeStatus
	attempts     int
	statusCode   int
	errorMessage string
	createdAt    time.Time
}

// NewRecordOutcome creates an outcome for record.
func NewRecordOutcome(runID string, record LocalRecord, status OutcomeStatus, attempts, statusCode int) *RecordOutcome {
	return &RecordOutcome{
		runID:      runID,
		record:     record,
		status:     status,
		attempts:   attempts,
		statusCode: statusCode,
		createdAt:  time.Now(),
	}
}

func (o *RecordOutcome) ID() string            { return o.id }
func (o *RecordOutcome) Sequence() int         { return o.sequence }
func (o *RecordOutcome) RunID() string         { return o.runID }
func (o *RecordOutcome) Record() LocalRecord   { return o.record }
func (o *RecordOutcome) ReleaseID() string     { return o.record.DiscogsReleaseID }
func (o *RecordOutcome) Title() string         { return o.record.Title }
func (o *RecordOutcome) Artist() string        { return o.record.Artist }
func (o *RecordOutcome) Status() OutcomeStatus { return o.status }
func (o *RecordOutcome) Attempts() int         { return o.attempts }
func (o *RecordOutcome) StatusCode() int       { return o.statusCode }
func (o *RecordOutcome) ErrorMessage() string  { return o.errorMessage }
func (o *RecordOutcome) CreatedAt() time.Time  { return o.createdAt }

// UpdatedAt returns the creation time; outcomes are never updated.
func (o *RecordOutcome) UpdatedAt() time.Time { return o.createdAt }

func (o *RecordOutcome) SetID(id string)            { o.id = id }
func (o *RecordOutcome) SetSequence(seq int)        { o.sequence = seq }
func (o *RecordOutcome) SetRunID(id string)         { o.runID = id }
func (o *RecordOutcome) SetErrorMessage(msg string) { o.errorMessage = msg }
func (o *RecordOutcome) SetCreatedAt(t time.Time)   { o.createdAt = t }

func (o *RecordOutcome) Validate() error {
	if o.runID == "" {
		return fmt.Errorf("run ID is required")
	}
	if o.record.DiscogsReleaseID == "" {
		return fmt.Errorf("release ID is required")
	}
	switch o.status {
	case OutcomeUploaded, OutcomeSkipped, OutcomeGaveUp, OutcomeFailed:
	default:
		return fmt.Errorf("invalid status: %q", o.status)
	}
	if o.attempts < 0 {
		return fmt.Errorf("attempts cannot be negative")
	}
	return nil
}
