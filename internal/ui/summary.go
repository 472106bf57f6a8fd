package ui

import (
	"fmt"
	"strings"

	"github.com/jrvgr/record-scanner-discogs-uploader/internal/models"
)

// RunSummary renders the end-of-run tally, coloured by outcome.
func RunSummary(run *models.SyncRun) string {
	t := run.Tally()

	var status string
	switch run.Status() {
	case models.RunCompleted:
		status = styles.ok.Render("completed")
	case models.RunPartial:
		status = styles.warn.Render("finished with failures")
	default:
		status = styles.err.Render(string(run.Status()))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sync #%d %s\n", run.Sequence(), status)
	fmt.Fprintf(&b, "  %s %d\n", styles.ok.Render("uploaded:"), t.Uploaded)
	fmt.Fprintf(&b, "  %s %d\n", styles.help.Render("skipped: "), t.Skipped)
	if run.DeleteFirst() {
		fmt.Fprintf(&b, "  %s %d\n", styles.help.Render("deleted: "), t.Deleted)
	}
	if t.Failed > 0 {
		fmt.Fprintf(&b, "  %s %d\n", styles.err.Render("failed:  "), t.Failed)
	}
	if t.GaveUp > 0 {
		fmt.Fprintf(&b, "  %s %d\n", styles.err.Render("gave up: "), t.GaveUp)
	}
	if t.DeleteFailed > 0 {
		fmt.Fprintf(&b, "  %s %d\n", styles.err.Render("delete failed:"), t.DeleteFailed)
	}
	return b.String()
}
