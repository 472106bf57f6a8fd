package main

import (
	"context"
	"fmt"

	"github.com/jrvgr/record-scanner-discogs-uploader/internal/shared"
	"github.com/urfave/cli/v3"
)

// CollectionList prints the releases currently in the collection folder.
func (r *Runner) CollectionList(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	rc, err := shared.LoadRunConfig(config, r.getenv)
	if err != nil {
		return err
	}

	svc, err := r.collection(config, rc)
	if err != nil {
		return err
	}

	releases, err := svc.ListReleases(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch collection: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(releases, cmd.Bool("pretty"))
	}

	if len(releases) == 0 {
		return r.writePlain("Collection is empty\n")
	}
	r.writePlain("%s\n", releaseTable(releases))
	return r.writePlain("%d releases in folder %d of %s\n", len(releases), config.Discogs.FolderID, svc.Username())
}

// CollectionClear deletes every release in the collection folder without uploading anything.
func (r *Runner) CollectionClear(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	rc, err := shared.LoadRunConfig(config, r.getenv)
	if err != nil {
		return err
	}

	svc, err := r.collection(config, rc)
	if err != nil {
		return err
	}

	release, err := r.acquireLock(config)
	if err != nil {
		return err
	}
	defer release()

	engine := r.engine(svc, config, nil)

	snap, err := engine.FetchSnapshot(ctx, nil)
	if err != nil {
		return err
	}
	if snap.Len() == 0 {
		r.logger.Info("no existing releases to delete")
		return r.writePlain("Collection is empty\n")
	}

	r.writePlain("%s\n", releaseTable(snap.Releases))
	question := fmt.Sprintf("Delete all %d releases from the Discogs collection of %s?", snap.Len(), svc.Username())
	if err := r.confirmRun(cmd, question, "This will remove all items in your collection."); err != nil {
		return err
	}

	results := engine.DeleteAll(ctx, nil, snap)

	failed := 0
	for _, res := range results {
		if !res.OK() {
			failed++
		}
	}
	r.writePlainln("Deleted %d of %d releases", len(results)-failed, len(results))

	if failed > 0 {
		return fmt.Errorf("%w: %d deletes failed", shared.ErrPartialFailure, failed)
	}
	return nil
}
