// package tasks implements collection sync operations against a remote record collection.
//
// The core abstraction is Engine, which fetches the collection snapshot, optionally clears it, and uploads local records.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jrvgr/record-scanner-discogs-uploader/internal/models"
	"github.com/jrvgr/record-scanner-discogs-uploader/internal/services"
	"github.com/jrvgr/record-scanner-discogs-uploader/internal/shared"
)

const (
	DefaultRetryDelay  = 60 * time.Second
	DefaultMaxAttempts = 11
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the real [Sleeper].
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RunRecorder persists sync runs and their per-record outcomes.
type RunRecorder interface {
	StartRun(run *models.SyncRun) error
	RecordOutcome(outcome *models.RecordOutcome) error
	FinishRun(run *models.SyncRun) error
}

// EngineOpts configures an [Engine]. Zero values fall back to the defaults.
type EngineOpts struct {
	RetryDelay  time.Duration // wait after a rate-limited add, default 60s
	MaxAttempts int           // add requests per record before giving up, default 11
	Workers     int           // concurrent requests, 0 for one goroutine per item
	Sleep       Sleeper       // defaults to [SleepContext]
	Logger      *log.Logger
	Recorder    RunRecorder // optional
}

// Engine syncs local records into a [services.CollectionService].
type Engine struct {
	svc         services.CollectionService
	retryDelay  time.Duration
	maxAttempts int
	workers     int
	sleep       Sleeper
	logger      *log.Logger
	recorder    RunRecorder
}

// NewEngine creates a new Engine for svc.
func NewEngine(svc services.CollectionService, opts EngineOpts) *Engine {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Workers < 0 {
		opts.Workers = 0
	}
	if opts.Sleep == nil {
		opts.Sleep = SleepContext
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Engine{
		svc:         svc,
		retryDelay:  opts.RetryDelay,
		maxAttempts: opts.MaxAttempts,
		workers:     opts.Workers,
		sleep:       opts.Sleep,
		logger:      opts.Logger,
		recorder:    opts.Recorder,
	}
}

// Snapshot is the remote collection as read once at the start of a run.
type Snapshot struct {
	Releases []models.RemoteRelease
	ids      map[string]struct{}
}

// NewSnapshot indexes releases by release id.
func NewSnapshot(releases []models.RemoteRelease) *Snapshot {
	if releases == nil {
		releases = []models.RemoteRelease{}
	}
	ids := make(map[string]struct{}, len(releases))
	for _, r := range releases {
		ids[r.ReleaseID()] = struct{}{}
	}
	return &Snapshot{Releases: releases, ids: ids}
}

// Contains reports whether releaseID was in the collection when the snapshot was taken.
func (s *Snapshot) Contains(releaseID string) bool {
	if s == nil {
		return false
	}
	_, ok := s.ids[shared.NormalizeReleaseID(releaseID)]
	return ok
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Releases)
}

// SyncOpts describes one sync run.
type SyncOpts struct {
	Records     []models.LocalRecord
	DeleteFirst bool
	SourceFile  string
	Username    string
}

// RunResult contains all data from a full sync.
type RunResult struct {
	Run      *models.SyncRun
	Snapshot *Snapshot
	Deletes  []DeleteResult
	Uploads  []UploadResult
	Outcomes []*models.RecordOutcome
	Tally    models.RunTally
}

// HasFailures reports whether any record or delete did not succeed.
func (r *RunResult) HasFailures() bool {
	return r.Tally.Problems() > 0
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// FetchSnapshot reads the remote collection. Errors are not retried.
func (e *Engine) FetchSnapshot(ctx context.Context, progress chan<- ProgressUpdate) (*Snapshot, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: collection service not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchingCollectionUpdate(e.svc.Name()))

	releases, err := e.svc.ListReleases(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collection: %w", err)
	}

	snap := NewSnapshot(releases)
	e.logger.Debug("fetched collection", "releases", snap.Len())
	e.sendProgress(progress, fetchedCollectionUpdate(snap))
	return snap, nil
}

// Run fetches the snapshot and syncs against it. A failed fetch is recorded as a failed run.
func (e *Engine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts SyncOpts) (*RunResult, error) {
	snap, err := e.FetchSnapshot(ctx, progress)
	if err != nil {
		e.RecordFailure(opts, err)
		return nil, err
	}
	return e.Sync(ctx, progress, snap, opts)
}

// Sync clears the collection when asked, then uploads every record against snap.
//
// It returns only after every delete and upload has reached a terminal state.
func (e *Engine) Sync(ctx context.Context, progress chan<- ProgressUpdate, snap *Snapshot, opts SyncOpts) (*RunResult, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: collection service not initialized", shared.ErrServiceUnavailable)
	}
	if snap == nil {
		snap = NewSnapshot(nil)
	}

	run := e.newRun(opts)
	run.Start(len(opts.Records))
	e.startRun(run)

	result := &RunResult{Run: run, Snapshot: snap}

	if opts.DeleteFirst {
		result.Deletes = e.DeleteAll(ctx, progress, snap)
	}

	result.Uploads = e.UploadAll(ctx, progress, snap, opts.Records, opts.DeleteFirst)
	result.Tally = tally(result.Deletes, result.Uploads)

	result.Outcomes = make([]*models.RecordOutcome, 0, len(result.Uploads))
	for _, u := range result.Uploads {
		outcome := u.Outcome(run.ID())
		result.Outcomes = append(result.Outcomes, outcome)
		e.recordOutcome(outcome)
	}

	run.Finish(result.Tally)
	e.finishRun(run)

	e.sendProgress(progress, completeUpdate(run))
	return result, nil
}

// RecordFailure stores a run that failed before any record was processed.
func (e *Engine) RecordFailure(opts SyncOpts, cause error) *models.SyncRun {
	run := e.newRun(opts)
	run.Start(len(opts.Records))
	e.startRun(run)
	run.Fail(cause)
	e.finishRun(run)
	return run
}

func (e *Engine) newRun(opts SyncOpts) *models.SyncRun {
	run := models.NewSyncRun(0, opts.Username, opts.SourceFile, opts.DeleteFirst)
	run.SetID(shared.GenerateID())
	return run
}

func (e *Engine) startRun(run *models.SyncRun) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.StartRun(run); err != nil {
		e.logger.Warn("failed to record run start", "run", run.ID(), "error", err)
	}
}

func (e *Engine) recordOutcome(o *models.RecordOutcome) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.RecordOutcome(o); err != nil {
		e.logger.Warn("failed to record outcome", "release", o.ReleaseID(), "error", err)
	}
}

func (e *Engine) finishRun(run *models.SyncRun) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.FinishRun(run); err != nil {
		e.logger.Warn("failed to record run result", "run", run.ID(), "error", err)
	}
}

func tally(deletes []DeleteResult, uploads []UploadResult) models.RunTally {
	var t models.RunTally
	for _, d := range deletes {
		if d.OK() {
			t.Deleted++
		} else {
			t.DeleteFailed++
		}
	}
	for _, u := range uploads {
		switch u.Status {
		case models.OutcomeUploaded:
			t.Uploaded++
		case models.OutcomeSkipped:
			t.Skipped++
		case models.OutcomeGaveUp:
			t.GaveUp++
		default:
			t.Failed++
		}
	}
	return t
}
