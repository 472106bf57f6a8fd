package main

import (
	"context"
	"fmt"

	"github.com/jrvgr/record-scanner-discogs-uploader/internal/formatter"
	"github.com/jrvgr/record-scanner-discogs-uploader/internal/repositories"
	"github.com/jrvgr/record-scanner-discogs-uploader/internal/shared"
	"github.com/jrvgr/record-scanner-discogs-uploader/internal/ui"
	"github.com/urfave/cli/v3"
)

// HistoryList prints recent sync runs, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	history, closeDB, err := r.history(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	runs, err := history.Runs.List(map[string]any{
		"status": cmd.String("status"),
		"limit":  int(cmd.Int("limit")),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		data, err := formatter.ExportRunsToJSON(runs)
		if err != nil {
			return err
		}
		return r.writePlain("%s\n", data)
	}

	if len(runs) == 0 {
		return r.writePlain("No sync runs recorded\n")
	}
	return r.writePlain("%s\n", runTable(runs))
}

// HistoryShow prints one run with its per-record outcomes.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.StringArg("run")
	if ref == "" {
		return fmt.Errorf("%w: run id or sequence number", shared.ErrMissingArgument)
	}

	history, closeDB, err := r.history(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	run, outcomes, err := history.Find(ref)
	if err != nil {
		return err
	}

	if f := cmd.String("format"); f != "" {
		format, err := formatter.ParseFormat(f)
		if err != nil {
			return err
		}
		data, err := formatter.RenderReport(run, outcomes, format)
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	}

	r.writePlain("%s", ui.RunSummary(run))
	r.writePlain("  file: %s\n  user: %s\n", run.SourceFile(), run.Username())
	if msg := run.ErrorMessage(); msg != "" {
		r.writePlain("  error: %s\n", msg)
	}
	if len(outcomes) == 0 {
		return nil
	}
	return r.writePlainln("%s", outcomeTable(outcomes))
}

// history opens the configured database for reading runs.
func (r *Runner) history(cmd *cli.Command) (*repositories.HistoryRecorder, func(), error) {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if config.Database.Path == "" {
		return nil, nil, fmt.Errorf("%w: database.path is empty, run history is disabled", shared.ErrMissingConfig)
	}

	db, err := openDatabase(config)
	if err != nil {
		return nil, nil, err
	}
	return repositories.NewHistoryRecorder(db), func() { db.Close() }, nil
}
