package repositories

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/jrvgr/record-scanner-discogs-uploader/internal/models"
)

// HistoryRecorder persists sync runs and their outcomes. It satisfies tasks.RunRecorder.
type HistoryRecorder struct {
	Runs     *SyncRunRepository
	Outcomes *OutcomeRepository
}

// NewHistoryRecorder creates a recorder backed by db.
func NewHistoryRecorder(db *sql.DB) *HistoryRecorder {
	return &HistoryRecorder{
		Runs:     NewSyncRunRepository(db),
		Outcomes: NewOutcomeRepository(db),
	}
}

func (h *HistoryRecorder) StartRun(run *models.SyncRun) error {
	return h.Runs.Create(run)
}

func (h *HistoryRecorder) RecordOutcome(o *models.RecordOutcome) error {
	return h.Outcomes.Create(o)
}

func (h *HistoryRecorder) FinishRun(run *models.SyncRun) error {
	return h.Runs.Update(run)
}

// Find resolves a run by ID or by sequence number ("7" or "#7").
func (h *HistoryRecorder) Find(ref string) (*models.SyncRun, []*models.RecordOutcome, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "#")

	var (
		run *models.SyncRun
		err error
	)
	if seq, convErr := strconv.Atoi(ref); convErr == nil {
		run, err = h.Runs.GetBySequence(seq)
	} else {
		run, err = h.Runs.Get(ref)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w (ref %s)", err, ref)
	}

	outcomes, err := h.Outcomes.ListByRun(run.ID(), "")
	if err != nil {
		return nil, nil, err
	}
	return run, outcomes, nil
}
