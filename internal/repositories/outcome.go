package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jrvgr/record-scanner-discogs-uploader/internal/models"
	"github.com/jrvgr/record-scanner-discogs-uploader/internal/shared"
)

const outcomeColumns = `
	id, sequence, run_id, release_id, title, artist, status,
	attempts, status_code, error_message, created_at`

// OutcomeRepository stores [models.RecordOutcome] rows. Outcomes are append-only.
type OutcomeRepository struct {
	db *sql.DB
}

func NewOutcomeRepository(db *sql.DB) *OutcomeRepository {
	return &OutcomeRepository{db: db}
}

// Create inserts an outcome with a generated ID and sequence
func (r *OutcomeRepository) Create(o *models.RecordOutcome) error {
	if err := o.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "record_outcomes")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	o.SetID(shared.GenerateID())
	o.SetSequence(sequence)

	query := `
		INSERT INTO record_outcomes (` + outcomeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		o.ID(),
		sequence,
		o.RunID(),
		o.ReleaseID(),
		o.Title(),
		o.Artist(),
		string(o.Status()),
		o.Attempts(),
		o.StatusCode(),
		nullString(o.ErrorMessage()),
		o.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert record outcome: %w", err)
	}

	return nil
}

// Get retrieves an outcome by ID
func (r *OutcomeRepository) Get(id string) (*models.RecordOutcome, error) {
	query := `SELECT ` + outcomeColumns + ` FROM record_outcomes WHERE id = ?`
	return r.scan(r.db.QueryRow(query, id))
}

// ListByRun returns the outcomes of a run in insertion order, optionally filtered by status.
func (r *OutcomeRepository) ListByRun(runID string, status models.OutcomeStatus) ([]*models.RecordOutcome, error) {
	query := `SELECT ` + outcomeColumns + ` FROM record_outcomes WHERE run_id = ?`
	args := []any{runID}

	if status != "" {
		query += " AND status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query record outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := []*models.RecordOutcome{}
	for rows.Next() {
		o, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return outcomes, nil
}

func (r *OutcomeRepository) scan(row scanner) (*models.RecordOutcome, error) {
	var (
		id           string
		sequence     int
		runID        string
		record       models.LocalRecord
		status       string
		attempts     int
		statusCode   int
		errorMessage sql.NullString
		createdAt    time.Time
	)

	err := row.Scan(
		&id, &sequence, &runID, &record.DiscogsReleaseID, &record.Title, &record.Artist,
		&status, &attempts, &statusCode, &errorMessage, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record outcome not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan record outcome: %w", err)
	}

	o := models.NewRecordOutcome(runID, record, models.OutcomeStatus(status), attempts, statusCode)
	o.SetID(id)
	o.SetSequence(sequence)
	o.SetCreatedAt(createdAt)
	if errorMessage.Valid {
		o.SetErrorMessage(errorMessage.String)
	}

	return o, nil
}
