package main

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/jrvgr/record-scanner-discogs-uploader/internal/models"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// releaseTable lists releases sorted by title.
func releaseTable(releases []models.RemoteRelease) string {
	sorted := append([]models.RemoteRelease{}, releases...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].BasicInformation.Title) < strings.ToLower(sorted[j].BasicInformation.Title)
	})

	rows := make([][]string, 0, len(sorted))
	for _, rel := range sorted {
		rows = append(rows, []string{
			rel.BasicInformation.Title,
			rel.ArtistNames(),
			rel.ReleaseID(),
			strconv.Itoa(rel.InstanceID),
		})
	}
	return renderTable(
		[]string{"Title", "Artist", "Release", "Instance"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
	)
}

// inventoryTable lists local records sorted by title.
func inventoryTable(records []models.LocalRecord) string {
	sorted := append([]models.LocalRecord{}, records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Title) < strings.ToLower(sorted[j].Title)
	})

	rows := make([][]string, 0, len(sorted))
	for _, rec := range sorted {
		rows = append(rows, []string{rec.Title, rec.Artist, rec.DiscogsReleaseID})
	}
	return renderTable(
		[]string{"Title", "Artist", "Release"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight},
	)
}

func runTable(runs []*models.SyncRun) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		t := run.Tally()
		started := "-"
		if run.StartedAt() != nil {
			started = run.StartedAt().Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			"#" + strconv.Itoa(run.Sequence()),
			started,
			string(run.Status()),
			run.Username(),
			run.SourceFile(),
			strconv.Itoa(t.Uploaded),
			strconv.Itoa(t.Skipped),
			strconv.Itoa(t.Failed + t.GaveUp),
		})
	}
	return renderTable(
		[]string{"Run", "Started", "Status", "User", "File", "Uploaded", "Skipped", "Failed"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
	)
}

func outcomeTable(outcomes []*models.RecordOutcome) string {
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		code := ""
		if o.StatusCode() != 0 {
			code = strconv.Itoa(o.StatusCode())
		}
		rows = append(rows, []string{
			o.ReleaseID(),
			o.Artist(),
			o.Title(),
			string(o.Status()),
			strconv.Itoa(o.Attempts()),
			code,
		})
	}
	return renderTable(
		[]string{"Release", "Artist", "Title", "Status", "Attempts", "HTTP"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	)
}
