package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/jrvgr/record-scanner-discogs-uploader/internal/models"
	"github.com/jrvgr/record-scanner-discogs-uploader/internal/shared"
	"github.com/jrvgr/record-scanner-discogs-uploader/internal/tasks"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func newRun(username string) *models.SyncRun {
	return models.NewSyncRun(0, username, "records.csv", false)
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "sync_runs")
		if err != nil {
			t.Fatalf("NextSequence failed: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for a table without a sequence")
	}
}

func TestSyncRunRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSyncRunRepository(db)
		run := newRun("collector")

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
		if run.ID() == "" {
			t.Error("run ID should be set after creation")
		}
		if run.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", run.Sequence())
		}
	})

	t.Run("Create Keeps Existing ID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSyncRunRepository(db)
		run := newRun("collector")
		run.SetID("preset-id")

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
		if run.ID() != "preset-id" {
			t.Errorf("expected preset ID to be kept, got %s", run.ID())
		}
	})

	t.Run("Create Rejects Invalid Run", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSyncRunRepository(db)
		if err := repo.Create(newRun("")); err == nil {
			t.Error("expected validation error for a run without username")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSyncRunRepository(db)
		run := models.NewSyncRun(0, "collector", "records.csv", true)
		run.Start(4)

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		retrieved, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}

		if retrieved.Username() != "collector" || retrieved.SourceFile() != "records.csv" {
			t.Errorf("unexpected run: %s %s", retrieved.Username(), retrieved.SourceFile())
		}
		if !retrieved.DeleteFirst() {
			t.Error("expected delete_first to round-trip")
		}
		if retrieved.Status() != models.RunRunning || retrieved.RecordsTotal() != 4 {
			t.Errorf("expected running with 4 records, got %s with %d", retrieved.Status(), retrieved.RecordsTotal())
		}
		if retrieved.StartedAt() == nil {
			t.Error("expected started_at to be set")
		}
		if retrieved.CompletedAt() != nil {
			t.Error("expected completed_at to be nil")
		}
	})

	t.Run("Get Not Found", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSyncRunRepository(db)
		if _, err := repo.Get("missing"); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("GetBySequence", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSyncRunRepository(db)
		first, second := newRun("a"), newRun("b")
		for _, run := range []*models.SyncRun{first, second} {
			if err := repo.Create(run); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}

		retrieved, err := repo.GetBySequence(2)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if retrieved.ID() != second.ID() {
			t.Errorf("expected run %s, got %s", second.ID(), retrieved.ID())
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSyncRunRepository(db)
		run := newRun("collector")
		run.Start(3)
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		run.Finish(models.RunTally{Uploaded: 1, Skipped: 1, GaveUp: 1, Deleted: 2})
		if err := repo.Update(run); err != nil {
			t.Fatalf("failed to update run: %v", err)
		}

		retrieved, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if retrieved.Status() != models.RunPartial {
			t.Errorf("expected partial, got %s", retrieved.Status())
		}
		if retrieved.Tally() != run.Tally() {
			t.Errorf("expected tally %+v, got %+v", run.Tally(), retrieved.Tally())
		}
		if retrieved.CompletedAt() == nil {
			t.Error("expected completed_at to be set")
		}
	})

	t.Run("Update Failed Run Keeps Error", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSyncRunRepository(db)
		run := newRun("collector")
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		run.Fail(errors.New("list collection: status 401"))
		if err := repo.Update(run); err != nil {
			t.Fatalf("failed to update run: %v", err)
		}

		retrieved, _ := repo.Get(run.ID())
		if retrieved.Status() != models.RunFailed || retrieved.ErrorMessage() != "list collection: status 401" {
			t.Errorf("unexpected failed run: %s %q", retrieved.Status(), retrieved.ErrorMessage())
		}
	})

	t.Run("Update Missing Run", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSyncRunRepository(db)
		run := newRun("collector")
		run.SetID("missing")

		if err := repo.Update(run); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSyncRunRepository(db)
		run := newRun("collector")
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		if err := repo.Delete(run.ID()); err != nil {
			t.Fatalf("failed to delete run: %v", err)
		}
		if _, err := repo.Get(run.ID()); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected deleted run to be hidden, got %v", err)
		}
		if err := repo.Delete(run.ID()); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected second delete to fail, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSyncRunRepository(db)
		for _, username := range []string{"alice", "bob", "alice"} {
			if err := repo.Create(newRun(username)); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 runs, got %d", len(all))
		}
		if all[0].Sequence() != 3 {
			t.Errorf("expected newest first, got sequence %d", all[0].Sequence())
		}

		alice, _ := repo.List(map[string]any{"username": "alice"})
		if len(alice) != 2 {
			t.Errorf("expected 2 runs for alice, got %d", len(alice))
		}

		limited, _ := repo.List(map[string]any{"limit": 1})
		if len(limited) != 1 {
			t.Errorf("expected 1 run with limit, got %d", len(limited))
		}

		pending, _ := repo.List(map[string]any{"status": string(models.RunPending)})
		if len(pending) != 3 {
			t.Errorf("expected 3 pending runs, got %d", len(pending))
		}
	})
}

func TestOutcomeRepository(t *testing.T) {
	setup := func(t *testing.T) (*sql.DB, *models.SyncRun) {
		db := setupTestDB(t)
		run := newRun("collector")
		if err := NewSyncRunRepository(db).Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
		return db, run
	}

	t.Run("Create And Get", func(t *testing.T) {
		db, run := setup(t)
		defer db.Close()

		repo := NewOutcomeRepository(db)
		rec := models.LocalRecord{Title: "Blue Train", Artist: "John Coltrane", DiscogsReleaseID: "111"}
		o := models.NewRecordOutcome(run.ID(), rec, models.OutcomeGaveUp, 11, 429)
		o.SetErrorMessage("rate limited")

		if err := repo.Create(o); err != nil {
			t.Fatalf("failed to create outcome: %v", err)
		}

		retrieved, err := repo.Get(o.ID())
		if err != nil {
			t.Fatalf("failed to get outcome: %v", err)
		}
		if retrieved.ReleaseID() != "111" || retrieved.Title() != "Blue Train" || retrieved.Artist() != "John Coltrane" {
			t.Errorf("unexpected record: %+v", retrieved.Record())
		}
		if retrieved.Status() != models.OutcomeGaveUp || retrieved.Attempts() != 11 || retrieved.StatusCode() != 429 {
			t.Errorf("unexpected outcome: %s %d %d", retrieved.Status(), retrieved.Attempts(), retrieved.StatusCode())
		}
		if retrieved.ErrorMessage() != "rate limited" {
			t.Errorf("expected error message, got %q", retrieved.ErrorMessage())
		}
	})

	t.Run("Rejects Unknown Run", func(t *testing.T) {
		db, _ := setup(t)
		defer db.Close()

		repo := NewOutcomeRepository(db)
		o := models.NewRecordOutcome("no-such-run", models.LocalRecord{DiscogsReleaseID: "1"}, models.OutcomeUploaded, 1, 201)

		if err := repo.Create(o); err == nil {
			t.Error("expected foreign key violation")
		}
	})

	t.Run("ListByRun", func(t *testing.T) {
		db, run := setup(t)
		defer db.Close()

		repo := NewOutcomeRepository(db)
		statuses := []models.OutcomeStatus{models.OutcomeUploaded, models.OutcomeSkipped, models.OutcomeUploaded}
		for i, s := range statuses {
			rec := models.LocalRecord{Title: "T", Artist: "A", DiscogsReleaseID: string(rune('1' + i))}
			if err := repo.Create(models.NewRecordOutcome(run.ID(), rec, s, 1, 201)); err != nil {
				t.Fatalf("failed to create outcome: %v", err)
			}
		}

		all, err := repo.ListByRun(run.ID(), "")
		if err != nil {
			t.Fatalf("failed to list outcomes: %v", err)
		}
		if len(all) != 3 || all[0].ReleaseID() != "1" || all[2].ReleaseID() != "3" {
			t.Errorf("expected 3 outcomes in insertion order, got %d", len(all))
		}

		uploaded, _ := repo.ListByRun(run.ID(), models.OutcomeUploaded)
		if len(uploaded) != 2 {
			t.Errorf("expected 2 uploaded outcomes, got %d", len(uploaded))
		}
	})
}

func TestHistoryRecorder(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	h := NewHistoryRecorder(db)
	run := newRun("collector")
	run.Start(1)

	if err := h.StartRun(run); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}

	o := models.NewRecordOutcome(run.ID(), models.LocalRecord{Title: "Blue Train", DiscogsReleaseID: "111"}, models.OutcomeUploaded, 1, 201)
	if err := h.RecordOutcome(o); err != nil {
		t.Fatalf("RecordOutcome failed: %v", err)
	}

	run.Finish(models.RunTally{Uploaded: 1})
	if err := h.FinishRun(run); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	t.Run("Find By ID", func(t *testing.T) {
		found, outcomes, err := h.Find(run.ID())
		if err != nil {
			t.Fatalf("Find failed: %v", err)
		}
		if found.Status() != models.RunCompleted || len(outcomes) != 1 {
			t.Errorf("unexpected run %s with %d outcomes", found.Status(), len(outcomes))
		}
	})

	t.Run("Find By Sequence", func(t *testing.T) {
		for _, ref := range []string{"1", "#1"} {
			found, _, err := h.Find(ref)
			if err != nil {
				t.Fatalf("Find(%q) failed: %v", ref, err)
			}
			if found.ID() != run.ID() {
				t.Errorf("Find(%q) returned %s", ref, found.ID())
			}
		}
	})

	t.Run("Find Missing", func(t *testing.T) {
		if _, _, err := h.Find("42"); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})
}

var _ models.Repository[*models.SyncRun] = (*SyncRunRepository)(nil)
var _ tasks.RunRecorder = (*HistoryRecorder)(nil)
