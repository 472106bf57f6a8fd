package models

import (
	"fmt"
	"time"
)

// RunStatus is the lifecycle state of a [SyncRun].
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunPartial   RunStatus = "partial" // finished, but some records or deletes failed
	RunFailed    RunStatus = "failed"
)

// RunTally holds the aggregate counts of a run.
type RunTally struct {
	Uploaded     int `json:"uploaded"`
	Skipped      int `json:"skipped"`
	Failed       int `json:"failed"`
	GaveUp       int `json:"gave_up"`
	Deleted      int `json:"deleted"`
	DeleteFailed int `json:"delete_failed"`
}

// Problems counts everything that did not end the way the operator asked.
func (t RunTally) Problems() int {
	return t.Failed + t.GaveUp + t.DeleteFailed
}

// SyncRun records one invocation of the uploader.
type SyncRun struct {
	id           string
	sequence     int
	username     string
	sourceFile   string
	deleteFirst  bool
	status       RunStatus
	recordsTotal int
	tally        RunTally
	errorMessage string
	startedAt    *time.Time
	completedAt  *time.Time
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NewSyncRun creates a pending run for username syncing sourceFile.
func NewSyncRun(sequence int, username, sourceFile string, deleteFirst bool) *SyncRun {
	now := time.Now()
	return &SyncRun{
		sequence:    sequence,
		username:    username,
		sourceFile:  sourceFile,
		deleteFirst: deleteFirst,
		status:      RunPending,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (r *SyncRun) ID() string              { return r.id }
func (r *SyncRun) Sequence() int           { return r.sequence }
func (r *SyncRun) Username() string        { return r.username }
func (r *SyncRun) SourceFile() string      { return r.sourceFile }
func (r *SyncRun) DeleteFirst() bool       { return r.deleteFirst }
func (r *SyncRun) Status() RunStatus       { return r.status }
func (r *SyncRun) RecordsTotal() int       { return r.recordsTotal }
func (r *SyncRun) Tally() RunTally         { return r.tally }
func (r *SyncRun) ErrorMessage() string    { return r.errorMessage }
func (r *SyncRun) StartedAt() *time.Time   { return r.startedAt }
func (r *SyncRun) CompletedAt() *time.Time { return r.completedAt }
func (r *SyncRun) CreatedAt() time.Time    { return r.createdAt }
func (r *SyncRun) UpdatedAt() time.Time    { return r.updatedAt }
func (r *SyncRun) DeletedAt() *time.Time   { return r.deletedAt }

func (r *SyncRun) SetID(id string)             { r.id = id }
func (r *SyncRun) SetSequence(seq int)         { r.sequence = seq }
func (r *SyncRun) SetStatus(s RunStatus)       { r.status = s }
func (r *SyncRun) SetRecordsTotal(n int)       { r.recordsTotal = n }
func (r *SyncRun) SetTally(t RunTally)         { r.tally = t }
func (r *SyncRun) SetErrorMessage(msg string)  { r.errorMessage = msg }
func (r *SyncRun) SetStartedAt(t *time.Time)   { r.startedAt = t }
func (r *SyncRun) SetCompletedAt(t *time.Time) { r.completedAt = t }
func (r *SyncRun) SetCreatedAt(t time.Time)    { r.createdAt = t }
func (r *SyncRun) SetUpdatedAt(t time.Time)    { r.updatedAt = t }
func (r *SyncRun) SetDeletedAt(t *time.Time)   { r.deletedAt = t }

// Start marks the run as running over total records.
func (r *SyncRun) Start(total int) {
	now := time.Now()
	r.status = RunRunning
	r.recordsTotal = total
	r.startedAt = &now
	r.updatedAt = now
}

// Finish stores the tally and moves the run to completed or partial.
func (r *SyncRun) Finish(t RunTally) {
	now := time.Now()
	r.tally = t
	r.completedAt = &now
	r.updatedAt = now
	if t.Problems() > 0 {
		r.status = RunPartial
	} else {
		r.status = RunCompleted
	}
}

// Fail marks the run as failed with err.
func (r *SyncRun) Fail(err error) {
	now := time.Now()
	r.status = RunFailed
	r.completedAt = &now
	r.updatedAt = now
	if err != nil {
		r.errorMessage = err.Error()
	}
}

// Duration is the wall time between start and completion, zero while unfinished.
func (r *SyncRun) Duration() time.Duration {
	if r.startedAt == nil || r.completedAt == nil {
		return 0
	}
	return r.completedAt.Sub(*r.startedAt)
}

func (r *SyncRun) Validate() error {
	if r.username == "" {
		return fmt.Errorf("username is required")
	}
	if r.sourceFile == "" {
		return fmt.Errorf("source file is required")
	}
	switch r.status {
	case RunPending, RunRunning, RunCompleted, RunPartial, RunFailed:
	default:
		return fmt.Errorf("invalid status: %q", r.status)
	}
	if r.recordsTotal < 0 {
		return fmt.Errorf("records total cannot be negative")
	}
	return nil
}
