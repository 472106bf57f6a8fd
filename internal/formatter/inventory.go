package formatter

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jrvgr/record-scanner-discogs-uploader/internal/models"
	"github.com/jrvgr/record-scanner-discogs-uploader/internal/shared"
)

// Inventory column headers. Matching ignores case and surrounding whitespace.
const (
	ColumnTitle     = "Title"
	ColumnArtist    = "Artist"
	ColumnReleaseID = "DiscogsReleaseId"
)

const utf8BOM = "\ufeff"

// ReadInventory opens path and parses it with [ParseInventory].
func ReadInventory(path string) ([]models.LocalRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory: %w", err)
	}
	defer f.Close()

	records, err := ParseInventory(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// ParseInventory reads a CSV inventory with a header row.
//
// Title, Artist and DiscogsReleaseId must be present in any order; other columns are ignored.
// Blank lines are skipped and a row without a release id is an error naming its line.
func ParseInventory(r io.Reader) ([]models.LocalRecord, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && string(b) == utf8BOM {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: inventory is empty", shared.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory header: %w", err)
	}

	cols, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	records := []models.LocalRecord{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read inventory: %w", err)
		}

		line, _ := reader.FieldPos(0)
		rec := models.LocalRecord{
			Title:            cell(row, cols[ColumnTitle]),
			Artist:           cell(row, cols[ColumnArtist]),
			DiscogsReleaseID: shared.NormalizeReleaseID(cell(row, cols[ColumnReleaseID])),
			Line:             line,
		}

		if rec.DiscogsReleaseID == "" {
			return nil, fmt.Errorf("%w: line %d: missing %s", shared.ErrInvalidInput, line, ColumnReleaseID)
		}
		records = append(records, rec)
	}

	return records, nil
}

func indexColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, 3)
	for i, h := range header {
		h = strings.TrimSpace(h)
		for _, want := range []string{ColumnTitle, ColumnArtist, ColumnReleaseID} {
			if _, seen := cols[want]; !seen && strings.EqualFold(h, want) {
				cols[want] = i
			}
		}
	}

	var missing []string
	for _, want := range []string{ColumnTitle, ColumnArtist, ColumnReleaseID} {
		if _, ok := cols[want]; !ok {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: inventory is missing columns: %s", shared.ErrInvalidInput, strings.Join(missing, ", "))
	}
	return cols, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
