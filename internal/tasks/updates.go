package tasks

import (
	"fmt"

	"github.com/jrvgr/record-scanner-discogs-uploader/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchCollection Phase = iota
	DeleteReleases
	UploadRecords
	Complete
)

func (p Phase) String() string {
	switch p {
	case FetchCollection:
		return "fetch_collection"
	case DeleteReleases:
		return "delete_releases"
	case UploadRecords:
		return "upload_records"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func fetchingCollectionUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCollection,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Fetching collection from %s...", name),
	}
}

func fetchedCollectionUpdate(snap *Snapshot) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCollection,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d releases in collection", snap.Len()),
		Data:    snap,
	}
}

func deleteUpdate(step, total int, r DeleteResult) ProgressUpdate {
	mark := "✓"
	if !r.OK() {
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:   DeleteReleases,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s delete %s", step, total, mark, r.Release.Label()),
		Data:    r,
	}
}

func uploadUpdate(step, total int, r UploadResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadRecords,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s - %s", step, total, r.Status, r.Record.Artist, r.Record.Title),
		Data:    r,
	}
}

func completeUpdate(run *models.SyncRun) ProgressUpdate {
	t := run.Tally()
	return ProgressUpdate{
		Phase: Complete,
		Step:  1,
		Total: 1,
		Message: fmt.Sprintf("Sync %s: %d uploaded, %d skipped, %d failed, %d gave up",
			run.Status(), t.Uploaded, t.Skipped, t.Failed, t.GaveUp),
		Data: run,
	}
}
