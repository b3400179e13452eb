package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tbx/internal/models"
	"github.com/desertthunder/tbx/internal/shared"
)

const runColumns = `id, sequence, operation, board_id, target_board_id, dry_run, processed, success, failed,
		missing_labels, skipped_lists, started_at, finished_at, created_at, updated_at, deleted_at`

// RunRepository implements models.Repository[*models.Run] for the run journal.
//
// A run and its per-card errors are written in one transaction.
type RunRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Run] = (*RunRepository)(nil)

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a run and its errors with a generated ID and sequence
func (r *RunRepository) Create(run *models.Run) error {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	run.SetID(id)
	run.SetSequence(sequence)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	missing, err := encodeNames(run.MissingLabels())
	if err != nil {
		return err
	}
	skipped, err := encodeNames(run.SkippedLists())
	if err != nil {
		return err
	}

	var targetBoardID any = run.TargetBoardID()
	if targetBoardID == "" {
		targetBoardID = nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO runs (
			id, sequence, operation, board_id, target_board_id, dry_run, processed, success, failed,
			missing_labels, skipped_lists, started_at, finished_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(query,
		id,
		sequence,
		run.Operation(),
		run.BoardID(),
		targetBoardID,
		run.DryRun(),
		run.Processed(),
		run.Success(),
		run.Failed(),
		missing,
		skipped,
		run.StartedAt(),
		run.FinishedAt(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, e := range run.Errors() {
		_, err := tx.Exec(
			"INSERT INTO run_errors (run_id, position, card_id, card_name, message) VALUES (?, ?, ?, ?, ?)",
			id, e.Position, e.CardID, e.CardName, e.Message,
		)
		if err != nil {
			return fmt.Errorf("failed to insert run error: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// Get retrieves a run and its errors by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := "SELECT " + runColumns + " FROM runs WHERE id = ? AND deleted_at IS NULL"

	run, err := r.scanRun(r.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadErrors(run); err != nil {
		return nil, err
	}
	return run, nil
}

// GetBySequence retrieves a run by its journal number
func (r *RunRepository) GetBySequence(sequence int) (*models.Run, error) {
	query := "SELECT " + runColumns + " FROM runs WHERE sequence = ? AND deleted_at IS NULL"

	run, err := r.scanRun(r.db.QueryRow(query, sequence))
	if err != nil {
		return nil, err
	}
	if err := r.loadErrors(run); err != nil {
		return nil, err
	}
	return run, nil
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec("UPDATE runs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	return nil
}

// List retrieves runs matching the given criteria, oldest first, excluding soft-deleted runs.
//
// Supported criteria: "operation", "board_id" (strings) and "limit" (int, keeps the most recent runs).
// Errors are not loaded; use [RunRepository.Get] for a single run's failures.
func (r *RunRepository) List(criteria map[string]any) ([]*models.Run, error) {
	query := "SELECT " + runColumns + " FROM runs WHERE deleted_at IS NULL"
	args := []any{}

	if op, ok := criteria["operation"].(string); ok && op != "" {
		query += " AND operation = ?"
		args = append(args, op)
	}

	if boardID, ok := criteria["board_id"].(string); ok && boardID != "" {
		query += " AND (board_id = ? OR target_board_id = ?)"
		args = append(args, boardID, boardID)
	}

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query = "SELECT * FROM (" + query + " ORDER BY sequence DESC LIMIT ?)"
		args = append(args, limit)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := r.scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

func (r *RunRepository) loadErrors(run *models.Run) error {
	rows, err := r.db.Query(
		"SELECT position, card_id, card_name, message FROM run_errors WHERE run_id = ? ORDER BY position ASC",
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to query run errors: %w", err)
	}
	defer rows.Close()

	var errs []models.RunError
	for rows.Next() {
		var e models.RunError
		if err := rows.Scan(&e.Position, &e.CardID, &e.CardName, &e.Message); err != nil {
			return fmt.Errorf("failed to scan run error: %w", err)
		}
		errs = append(errs, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}

	run.SetErrors(errs)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRun scans a single row from [sql.Row] or [sql.Rows] into a [models.Run]
func (r *RunRepository) scanRun(row scanner) (*models.Run, error) {
	var (
		id            string
		sequence      int
		operation     string
		boardID       string
		targetBoardID sql.NullString
		dryRun        bool
		processed     int
		success       int
		failed        int
		missing       string
		skipped       string
		startedAt     time.Time
		finishedAt    time.Time
		createdAt     time.Time
		updatedAt     time.Time
		deletedAt     sql.NullTime
	)

	err := row.Scan(&id, &sequence, &operation, &boardID, &targetBoardID, &dryRun, &processed, &success, &failed,
		&missing, &skipped, &startedAt, &finishedAt, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	missingLabels, err := decodeNames(missing)
	if err != nil {
		return nil, err
	}
	skippedLists, err := decodeNames(skipped)
	if err != nil {
		return nil, err
	}

	run := models.NewRun(sequence, operation, boardID)
	run.SetID(id)
	run.SetTargetBoardID(targetBoardID.String)
	run.SetOutcome(dryRun, processed, success, missingLabels, skippedLists)
	run.SetFailed(failed)
	run.SetTimes(startedAt, finishedAt)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}

func encodeNames(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	data, err := json.Marshal(names)
	if err != nil {
		return "", fmt.Errorf("failed to encode names: %w", err)
	}
	return string(data), nil
}

func decodeNames(data string) ([]string, error) {
	var names []string
	if data == "" {
		return names, nil
	}
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		return nil, fmt.Errorf("failed to decode names: %w", err)
	}
	return names, nil
}
