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

// DeleteResult is the outcome of removing one collection instance.
type DeleteResult struct {
	Release    models.RemoteRelease
	StatusCode int
	Err        error
}

// OK reports a 204 answer.
func (r DeleteResult) OK() bool {
	return r.Err == nil && r.StatusCode == http.StatusNoContent
}

// DeleteAll removes every release instance in snap and waits for all requests to finish.
//
// Failures are logged and returned; nothing is retried.
func (e *Engine) DeleteAll(ctx context.Context, progress chan<- ProgressUpdate, snap *Snapshot) []DeleteResult {
	if snap.Len() == 0 {
		e.logger.Info("no existing releases to delete")
		return []DeleteResult{}
	}

	releases := snap.Releases
	results := make([]DeleteResult, len(releases))
	total := len(releases)

	var (
		mu   sync.Mutex
		done int
	)

	var g errgroup.Group
	if e.workers > 0 {
		g.SetLimit(e.workers)
	}

	for i, release := range releases {
		g.Go(func() error {
			results[i] = e.deleteRelease(ctx, release)

			mu.Lock()
			done++
			e.sendProgress(progress, deleteUpdate(done, total, results[i]))
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return results
}

func (e *Engine) deleteRelease(ctx context.Context, release models.RemoteRelease) DeleteResult {
	result := DeleteResult{Release: release}

	status, err := e.svc.DeleteInstance(ctx, release.ID, release.InstanceID)
	result.StatusCode = status
	switch {
	case err != nil:
		result.Err = fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		e.logger.Warn("delete failed", "release", release.Label(), "error", err)
	case status != http.StatusNoContent:
		result.Err = fmt.Errorf("%w: %d", shared.ErrUnexpectedStatus, status)
		e.logger.Warn("delete failed", "release", release.Label(), "status", status)
	default:
		e.logger.Info("deleted", "release", release.Label())
	}
	return result
}
