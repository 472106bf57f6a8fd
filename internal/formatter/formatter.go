// package formatter reads record inventories and exports sync run reports to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jrvgr/record-scanner-discogs-uploader/internal/models"
	"github.com/jrvgr/record-scanner-discogs-uploader/internal/shared"
)

// Format is a report output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// ParseFormat accepts json, csv, markdown (or md) and txt (or text).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown report format %q (use json, csv, markdown or txt)", shared.ErrInvalidFlag, s)
	}
}

// FormatFromPath guesses the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".md", ".markdown":
		return FormatMarkdown
	case ".txt":
		return FormatText
	default:
		return FormatJSON
	}
}

type outcomeJSON struct {
	ReleaseID    string `json:"release_id"`
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	Status       string `json:"status"`
	Attempts     int    `json:"attempts"`
	StatusCode   int    `json:"status_code,omitempty"`
	ErrorMessage string `json:"error,omitempty"`
}

type runJSON struct {
	ID           string          `json:"id"`
	Sequence     int             `json:"sequence,omitempty"`
	Username     string          `json:"username"`
	SourceFile   string          `json:"source_file"`
	DeleteFirst  bool            `json:"delete_first"`
	Status       string          `json:"status"`
	RecordsTotal int             `json:"records_total"`
	Tally        models.RunTally `json:"tally"`
	ErrorMessage string          `json:"error,omitempty"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	Duration     string          `json:"duration,omitempty"`
	Outcomes     []outcomeJSON   `json:"outcomes,omitempty"`
}

func newRunJSON(run *models.SyncRun) runJSON {
	data := runJSON{
		ID:           run.ID(),
		Sequence:     run.Sequence(),
		Username:     run.Username(),
		SourceFile:   run.SourceFile(),
		DeleteFirst:  run.DeleteFirst(),
		Status:       string(run.Status()),
		RecordsTotal: run.RecordsTotal(),
		Tally:        run.Tally(),
		ErrorMessage: run.ErrorMessage(),
		StartedAt:    run.StartedAt(),
		CompletedAt:  run.CompletedAt(),
	}
	if d := run.Duration(); d > 0 {
		data.Duration = d.Round(time.Millisecond).String()
	}
	return data
}

// ExportToJSON renders the run and its outcomes as indented JSON.
func ExportToJSON(run *models.SyncRun, outcomes []*models.RecordOutcome) ([]byte, error) {
	data := newRunJSON(run)
	data.Outcomes = make([]outcomeJSON, 0, len(outcomes))

	for _, o := range outcomes {
		data.Outcomes = append(data.Outcomes, outcomeJSON{
			ReleaseID:    o.ReleaseID(),
			Title:        o.Title(),
			Artist:       o.Artist(),
			Status:       string(o.Status()),
			Attempts:     o.Attempts(),
			StatusCode:   o.StatusCode(),
			ErrorMessage: o.ErrorMessage(),
		})
	}

	return shared.MarshalJSON(data, true)
}

// ExportRunsToJSON renders a run listing without outcomes.
func ExportRunsToJSON(runs []*models.SyncRun) ([]byte, error) {
	data := make([]runJSON, 0, len(runs))
	for _, run := range runs {
		data = append(data, newRunJSON(run))
	}
	return shared.MarshalJSON(data, true)
}

// ExportToCSV converts outcomes to CSV with columns: ReleaseID, Title, Artist, Status, Attempts, StatusCode, Error
func ExportToCSV(outcomes []*models.RecordOutcome) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ReleaseID", "Title", "Artist", "Status", "Attempts", "StatusCode", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, o := range outcomes {
		record := []string{
			o.ReleaseID(),
			o.Title(),
			o.Artist(),
			string(o.Status()),
			strconv.Itoa(o.Attempts()),
			strconv.Itoa(o.StatusCode()),
			o.ErrorMessage(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a run summary followed by a table of non-uploaded records.
func ExportToMarkdown(run *models.SyncRun, outcomes []*models.RecordOutcome) ([]byte, error) {
	var buf bytes.Buffer
	t := run.Tally()

	buf.WriteString(fmt.Sprintf("# Sync %s\n\n", run.ID()))
	buf.WriteString(fmt.Sprintf("**User**: %s\n", run.Username()))
	buf.WriteString(fmt.Sprintf("**Source**: %s\n", run.SourceFile()))
	buf.WriteString(fmt.Sprintf("**Status**: %s\n", run.Status()))
	buf.WriteString(fmt.Sprintf("**Cleared collection first**: %s\n\n", yesNo(run.DeleteFirst())))

	buf.WriteString("## Summary\n\n")
	buf.WriteString("| Uploaded | Skipped | Failed | Gave up | Deleted | Delete failed |\n")
	buf.WriteString("|---|---|---|---|---|---|\n")
	buf.WriteString(fmt.Sprintf("| %d | %d | %d | %d | %d | %d |\n\n",
		t.Uploaded, t.Skipped, t.Failed, t.GaveUp, t.Deleted, t.DeleteFailed))

	if msg := run.ErrorMessage(); msg != "" {
		buf.WriteString(fmt.Sprintf("**Error**: %s\n\n", msg))
	}

	buf.WriteString("## Records\n\n")
	for i, o := range outcomes {
		line := fmt.Sprintf("%d. %s - %s [%s] `%s`", i+1, o.Artist(), o.Title(), o.ReleaseID(), o.Status())
		if o.ErrorMessage() != "" {
			line += fmt.Sprintf(" (%s)", o.ErrorMessage())
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// ExportToText renders a plain text run summary.
func ExportToText(run *models.SyncRun, outcomes []*models.RecordOutcome) ([]byte, error) {
	var buf bytes.Buffer
	t := run.Tally()

	buf.WriteString(fmt.Sprintf("Sync: %s\n", run.ID()))
	buf.WriteString(fmt.Sprintf("User: %s\n", run.Username()))
	buf.WriteString(fmt.Sprintf("Source: %s\n", run.SourceFile()))
	buf.WriteString(fmt.Sprintf("Status: %s\n", run.Status()))
	buf.WriteString(fmt.Sprintf("Uploaded: %d, Skipped: %d, Failed: %d, Gave up: %d, Deleted: %d, Delete failed: %d\n\n",
		t.Uploaded, t.Skipped, t.Failed, t.GaveUp, t.Deleted, t.DeleteFailed))

	for i, o := range outcomes {
		buf.WriteString(fmt.Sprintf("%d. [%s] %s - %s (%s)\n", i+1, o.Status(), o.Artist(), o.Title(), o.ReleaseID()))
	}

	return buf.Bytes(), nil
}

// RenderReport renders the run in the given format.
func RenderReport(run *models.SyncRun, outcomes []*models.RecordOutcome, format Format) ([]byte, error) {
	if run == nil {
		return nil, fmt.Errorf("%w: no run to report", shared.ErrInvalidInput)
	}

	switch format {
	case FormatJSON:
		return ExportToJSON(run, outcomes)
	case FormatCSV:
		return ExportToCSV(outcomes)
	case FormatMarkdown:
		return ExportToMarkdown(run, outcomes)
	case FormatText:
		return ExportToText(run, outcomes)
	default:
		return nil, fmt.Errorf("%w: unknown report format %q", shared.ErrInvalidFlag, format)
	}
}

// WriteReport renders the run and writes it to path, creating parent directories.
func WriteReport(path string, run *models.SyncRun, outcomes []*models.RecordOutcome, format Format) error {
	data, err := RenderReport(run, outcomes, format)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
