package tasks

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/jrvgr/record-scanner-discogs-uploader/internal/models"
	"github.com/jrvgr/record-scanner-discogs-uploader/internal/shared"
	"golang.org/x/sync/errgroup"
)

// UploadResult is the terminal state of one record.
type UploadResult struct {
	Record     models.LocalRecord
	Status     models.OutcomeStatus
	Attempts   int // add requests sent, 0 when skipped
	StatusCode int // last HTTP status, 0 when none was received
	Err        error
}

// Outcome converts the result into a persistable [models.RecordOutcome].
func (r UploadResult) Outcome(runID string) *models.RecordOutcome {
	o := models.NewRecordOutcome(runID, r.Record, r.Status, r.Attempts, r.StatusCode)
	if r.Err != nil {
		o.SetErrorMessage(r.Err.Error())
	}
	return o
}

// UploadAll uploads every record concurrently and waits for all of them.
//
// Results are returned in record order. A record whose id is in snap is skipped unless deleteFirst is set.
func (e *Engine) UploadAll(ctx context.Context, progress chan<- ProgressUpdate, snap *Snapshot, records []models.LocalRecord, deleteFirst bool) []UploadResult {
	results := make([]UploadResult, len(records))
	total := len(records)

	var (
		mu   sync.Mutex
		done int
	)

	var g errgroup.Group
	if e.workers > 0 {
		g.SetLimit(e.workers)
	}

	for i, record := range records {
		if !deleteFirst && snap.Contains(record.DiscogsReleaseID) {
			e.logger.Infof("skipping %s, it is already uploaded", record.Title)
			results[i] = UploadResult{Record: record, Status: models.OutcomeSkipped}

			mu.Lock()
			done++
			e.sendProgress(progress, uploadUpdate(done, total, results[i]))
			mu.Unlock()
			continue
		}

		g.Go(func() error {
			results[i] = e.UploadRecord(ctx, record)

			mu.Lock()
			done++
			e.sendProgress(progress, uploadUpdate(done, total, results[i]))
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// UploadRecord adds one record, waiting and retrying while the service answers 429.
//
// At most maxAttempts requests are sent, with a retry delay between consecutive ones.
func (e *Engine) UploadRecord(ctx context.Context, record models.LocalRecord) UploadResult {
	id := shared.NormalizeReleaseID(record.DiscogsReleaseID)
	result := UploadResult{Record: record}

	for attempt := 1; ; attempt++ {
		result.Attempts = attempt

		status, err := e.svc.AddRelease(ctx, id)
		result.StatusCode = status
		if err != nil {
			result.Status = models.OutcomeFailed
			result.Err = fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
			e.logger.Error("upload failed", "title", record.Title, "release", id, "error", err)
			return result
		}

		switch status {
		case http.StatusCreated:
			result.Status = models.OutcomeUploaded
			e.logger.Info("uploaded", "title", record.Title, "release", id)
			return result
		case http.StatusTooManyRequests:
			// Checked before the counter advances: maxAttempts is the request count, so the
			// default of 11 sends 11 requests with 10 waits and never a twelfth request.
			if attempt >= e.maxAttempts {
				result.Status = models.OutcomeGaveUp
				result.Err = fmt.Errorf("%w: gave up after %d attempts", shared.ErrRateLimited, attempt)
				e.logger.Error("rate limited too many times, giving up", "title", record.Title, "release", id, "attempts", attempt)
				return result
			}

			e.logger.Warnf("rate limited, trying again in %s | %s", e.retryDelay, record.Title)
			if err := e.sleep(ctx, e.retryDelay); err != nil {
				result.Status = models.OutcomeFailed
				result.Err = fmt.Errorf("%w: retry wait interrupted: %v", shared.ErrRateLimited, err)
				return result
			}
		default:
			result.Status = models.OutcomeFailed
			result.Err = fmt.Errorf("%w: %d", shared.ErrUnexpectedStatus, status)
			e.logger.Error("upload failed", "title", record.Title, "release", id, "status", status)
			return result
		}
	}
}
