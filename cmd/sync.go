package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jrvgr/record-scanner-discogs-uploader/internal/formatter"
	"github.com/jrvgr/record-scanner-discogs-uploader/internal/repositories"
	"github.com/jrvgr/record-scanner-discogs-uploader/internal/shared"
	"github.com/jrvgr/record-scanner-discogs-uploader/internal/tasks"
	"github.com/jrvgr/record-scanner-discogs-uploader/internal/ui"
	"github.com/urfave/cli/v3"
)

// Root runs a sync when invoked as `discogs-uploader <file>`.
func (r *Runner) Root(ctx context.Context, cmd *cli.Command) error {
	if cmd.StringArg("file") == "" {
		return fmt.Errorf("%w: inventory file (usage: %s <file>)", shared.ErrMissingArgument, cmd.Name)
	}
	return r.Sync(ctx, cmd)
}

// Sync uploads every record of the inventory file to the collection.
//
// The collection is read once. With delete-all on, every release in it is removed first and
// every record is uploaded; otherwise records already present are skipped.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	file := cmd.StringArg("file")
	if file == "" {
		return fmt.Errorf("%w: inventory file", shared.ErrMissingArgument)
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	rc, err := shared.LoadRunConfig(config, r.getenv)
	if err != nil {
		return err
	}
	if v := r.getenv(shared.EnvDeleteAll); shared.DeleteAllIgnored(v) {
		r.logger.Warn("ignoring unrecognized value, only 1 clears the collection", "env", shared.EnvDeleteAll, "value", v)
	}
	if cmd.Bool("delete-all") {
		rc.DeleteAllFirst = true
	}

	var format formatter.Format
	report := cmd.String("report")
	if report != "" {
		if format, err = reportFormat(cmd.String("format"), report); err != nil {
			return err
		}
	}

	records, err := formatter.ReadInventory(file)
	if err != nil {
		return err
	}
	r.logger.Info("loaded inventory", "file", file, "records", len(records))

	r.writePlain("Data you're going to upload (%d records):\n", len(records))
	r.writePlain("%s\n", inventoryTable(records))

	detail := fmt.Sprintf("Releases already in your collection will be skipped. Set %s=1 or pass --delete-all to clear it first.",
		shared.EnvDeleteAll)
	if rc.DeleteAllFirst {
		detail = fmt.Sprintf("This will remove all items in your collection before uploading. Unset %s and drop --delete-all to keep them.",
			shared.EnvDeleteAll)
	}
	question := fmt.Sprintf("Upload %d records to the Discogs collection of %s?", len(records), rc.Username)
	if err := r.confirmRun(cmd, question, detail); err != nil {
		return err
	}

	release, err := r.acquireLock(config)
	if err != nil {
		return err
	}
	defer release()

	svc, err := r.collection(config, rc)
	if err != nil {
		return err
	}

	db, recorder := r.openHistory(config)
	if db != nil {
		defer db.Close()
	}

	engine := r.engine(svc, config, recorder)
	opts := tasks.SyncOpts{
		Records:     records,
		DeleteFirst: rc.DeleteAllFirst,
		SourceFile:  file,
		Username:    rc.Username,
	}

	progress := make(chan tasks.ProgressUpdate, 100)
	done := make(chan struct{})
	go r.logProgress(progress, done)
	stop := func() {
		close(progress)
		<-done
	}

	snap, err := engine.FetchSnapshot(ctx, progress)
	if err != nil {
		stop()
		engine.RecordFailure(opts, err)
		return err
	}

	if snap.Len() == 0 {
		r.writePlain("Collection is empty\n")
	} else {
		r.writePlain("Current collection (%d releases):\n", snap.Len())
		r.writePlain("%s\n", releaseTable(snap.Releases))
	}

	result, err := engine.Sync(ctx, progress, snap, opts)
	stop()
	if err != nil {
		return err
	}

	r.writePlainln("%s", ui.RunSummary(result.Run))

	if report != "" {
		if err := formatter.WriteReport(report, result.Run, result.Outcomes, format); err != nil {
			return err
		}
		r.logger.Info("report written", "path", report, "format", format)
	}

	if result.HasFailures() {
		t := result.Tally
		return fmt.Errorf("%w: %d failed, %d gave up, %d deletes failed", shared.ErrPartialFailure,
			t.Failed, t.GaveUp, t.DeleteFailed)
	}
	return nil
}

// acquireLock takes the run lock named in config. An empty lock_file disables locking.
func (r *Runner) acquireLock(config *shared.Config) (func(), error) {
	if config.Sync.LockFile == "" {
		return func() {}, nil
	}

	lock := shared.NewRunLock(config.Sync.LockFile)
	if err := lock.Acquire(); err != nil {
		return nil, err
	}
	return func() {
		if err := lock.Release(); err != nil {
			r.logger.Warn("failed to release lock", "path", lock.Path(), "error", err)
		}
	}, nil
}

// openHistory opens the run history database when one is configured.
//
// History is best effort: any failure is logged and the sync runs unrecorded.
func (r *Runner) openHistory(config *shared.Config) (*sql.DB, tasks.RunRecorder) {
	if config.Database.Path == "" {
		return nil, nil
	}

	db, err := openDatabase(config)
	if err != nil {
		r.logger.Warn("run history disabled", "error", err)
		return nil, nil
	}
	return db, repositories.NewHistoryRecorder(db)
}

func openDatabase(config *shared.Config) (*sql.DB, error) {
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, err
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// logProgress drains progress updates into the debug log until the channel is closed.
func (r *Runner) logProgress(progress <-chan tasks.ProgressUpdate, done chan<- struct{}) {
	defer close(done)
	for update := range progress {
		r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
	}
}

func reportFormat(flag, path string) (formatter.Format, error) {
	if flag == "" {
		return formatter.FormatFromPath(path), nil
	}
	return formatter.ParseFormat(flag)
}
