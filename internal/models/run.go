package models

import (
	"errors"
	"time"
)

// Run is a journal entry summarizing one completed bulk operation.
//
// A Run records outcome counts and per-card failures only; no board state is stored.
type Run struct {
	id            string
	sequence      int
	operation     string
	boardID       string
	targetBoardID string
	dryRun        bool
	processed     int
	success       int
	failed        int
	missingLabels []string
	skippedLists  []string
	errors        []RunError
	startedAt     time.Time
	finishedAt    time.Time
	createdAt     time.Time
	updatedAt     time.Time
	deletedAt     *time.Time
}

// RunError is one per-card failure, kept in plan order by Position.
type RunError struct {
	Position int    `json:"position" yaml:"position"`
	CardID   string `json:"card_id" yaml:"card_id"`
	CardName string `json:"card_name" yaml:"card_name"`
	Message  string `json:"message" yaml:"message"`
}

// NewRun creates a journal entry for operation on boardID.
func NewRun(sequence int, operation, boardID string) *Run {
	now := time.Now()
	return &Run{
		sequence:  sequence,
		operation: operation,
		boardID:   boardID,
		startedAt: now,
		createdAt: now,
		updatedAt: now,
	}
}

func (r *Run) ID() string { return r.id }
func (r *Run) Sequence() int { return r.sequence }
func (r *Run) Operation() string { return r.operation }
func (r *Run) BoardID() string { return r.boardID }
func (r *Run) TargetBoardID() string { return r.targetBoardID }
func (r *Run) DryRun() bool { return r.dryRun }
func (r *Run) Processed() int { return r.processed }
func (r *Run) Success() int { return r.success }
func (r *Run) Failed() int { return r.failed }
func (r *Run) MissingLabels() []string { return r.missingLabels }
func (r *Run) SkippedLists() []string { return r.skippedLists }
func (r *Run) Errors() []RunError { return r.errors }
func (r *Run) StartedAt() time.Time { return r.startedAt }
func (r *Run) FinishedAt() time.Time { return r.finishedAt }
func (r *Run) CreatedAt() time.Time { return r.createdAt }
func (r *Run) UpdatedAt() time.Time { return r.updatedAt }
func (r *Run) DeletedAt() *time.Time { return r.deletedAt }
func (r *Run) SetID(id string) { r.id = id }
func (r *Run) SetSequence(sequence int) { r.sequence = sequence }
func (r *Run) SetCreatedAt(t time.Time) { r.createdAt = t }
func (r *Run) SetUpdatedAt(t time.Time) { r.updatedAt = t }
func (r *Run) SetDeletedAt(t *time.Time) { r.deletedAt = t }

// SetTargetBoardID records the destination board of a copy run.
func (r *Run) SetTargetBoardID(id string) { r.targetBoardID = id }

// SetOutcome records the counts and warnings of a finished run.
func (r *Run) SetOutcome(dryRun bool, processed, success int, missingLabels, skippedLists []string) {
	r.dryRun = dryRun
	r.processed = processed
	r.success = success
	r.missingLabels = missingLabels
	r.skippedLists = skippedLists
}

// SetErrors replaces the per-card failures of the run and sets the failure count to match.
func (r *Run) SetErrors(errs []RunError) {
	r.errors = errs
	r.failed = len(errs)
}

// SetFailed records the failure count of a run whose errors are not loaded.
func (r *Run) SetFailed(n int) { r.failed = n }

// SetTimes sets when the run started and finished.
func (r *Run) SetTimes(started, finished time.Time) {
	r.startedAt = started
	r.finishedAt = finished
}

// Validate checks that the run identifies its operation and board and that its counts are consistent.
func (r *Run) Validate() error {
	if r.id == "" {
		return errors.New("run id is required")
	}
	if r.operation == "" {
		return errors.New("operation is required")
	}
	if r.boardID == "" {
		return errors.New("board id is required")
	}
	if r.processed < 0 || r.success < 0 || r.failed < 0 {
		return errors.New("counts must not be negative")
	}
	if r.success > r.processed {
		return errors.New("success cannot exceed processed")
	}
	if !r.finishedAt.IsZero() && r.finishedAt.Before(r.startedAt) {
		return errors.New("finished_at is before started_at")
	}
	return nil
}
