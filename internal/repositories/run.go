package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/zipx/internal/models"
	"github.com/desertthunder/zipx/internal/shared"
)

const runColumns = `id, sequence, archive, destination, extraction_id, phase, failure, message,
	completed, total, frames, started_at, created_at, updated_at, deleted_at`

// RunRepository implements models.Repository[*models.Run] for extraction history.
//
// Selected entries live in run_paths and are loaded with each run. Deletes are soft.
type RunRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Run] = (*RunRepository)(nil)

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts run and its entries with a generated ID and sequence
func (r *RunRepository) Create(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id := shared.GenerateID()
	query := `
		INSERT INTO runs (id, sequence, archive, destination, extraction_id, phase, failure, message,
			completed, total, frames, started_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.Exec(query,
		id,
		sequence,
		run.Archive(),
		run.Destination(),
		run.ExtractionID(),
		run.Phase().String(),
		run.Failure().String(),
		run.Message(),
		run.Completed(),
		run.Total(),
		run.Frames(),
		run.StartedAt(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, p := range run.Paths() {
		if _, err := tx.Exec("INSERT INTO run_paths (run_id, position, path) VALUES (?, ?, ?)", id, i, p); err != nil {
			return fmt.Errorf("failed to insert run path: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	run.SetID(id)
	run.SetSequence(sequence)
	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := "SELECT " + runColumns + " FROM runs WHERE id = ? AND deleted_at IS NULL"

	rec, err := scanRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if rec.Paths, err = r.paths(rec.ID); err != nil {
		return nil, err
	}
	return rec.Run()
}

// Update writes the outcome fields of run
func (r *RunRepository) Update(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	query := `
		UPDATE runs
		SET extraction_id = ?, phase = ?, failure = ?, message = ?, completed = ?, total = ?, frames = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := r.db.Exec(query,
		run.ExtractionID(),
		run.Phase().String(),
		run.Failure().String(),
		run.Message(),
		run.Completed(),
		run.Total(),
		run.Frames(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	if err := expectOne(result, run.ID()); err != nil {
		return err
	}
	run.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec("UPDATE runs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return expectOne(result, id)
}

// List retrieves runs matching criteria, newest first, excluding soft-deleted runs.
//
// Supported criteria: "archive" (string), "phase" (string), "limit" (int).
func (r *RunRepository) List(criteria map[string]any) ([]*models.Run, error) {
	query := "SELECT " + runColumns + " FROM runs WHERE deleted_at IS NULL"
	args := []any{}

	if archive, ok := criteria["archive"].(string); ok && archive != "" {
		query += " AND archive = ?"
		args = append(args, archive)
	}
	if phase, ok := criteria["phase"].(string); ok && phase != "" {
		query += " AND phase = ?"
		args = append(args, phase)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}

	var records []models.Record
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	runs := make([]*models.Run, 0, len(records))
	for _, rec := range records {
		if rec.Paths, err = r.paths(rec.ID); err != nil {
			return nil, err
		}
		run, err := rec.Run()
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func (r *RunRepository) paths(runID string) ([]string, error) {
	rows, err := r.db.Query("SELECT path FROM run_paths WHERE run_id = ? ORDER BY position ASC", runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan run path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (models.Record, error) {
	var (
		rec       models.Record
		deletedAt sql.NullTime
	)

	err := row.Scan(
		&rec.ID,
		&rec.Sequence,
		&rec.Archive,
		&rec.Destination,
		&rec.ExtractionID,
		&rec.Phase,
		&rec.Failure,
		&rec.Message,
		&rec.Completed,
		&rec.Total,
		&rec.Frames,
		&rec.StartedAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, err
	}
	if err != nil {
		return rec, fmt.Errorf("failed to scan run: %w", err)
	}

	if deletedAt.Valid {
		rec.DeletedAt = &deletedAt.Time
	}
	return rec, nil
}

func expectOne(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	return nil
}
