package tasks

import (
	"time"

	"github.com/desertthunder/tbx/internal/models"
)

// CardError records a failed write for a single card.
type CardError struct {
	CardID string `json:"cardId" yaml:"card_id"`
	Name   string `json:"name" yaml:"name"`
	Error  string `json:"error" yaml:"error"`
}

// Result summarizes one bulk operation.
//
// Processed counts planned mutations only: filtered cards and no-ops are excluded.
// Success counts successful writes, or every planned mutation in a dry run.
type Result struct {
	Operation     string      `json:"operation" yaml:"operation"`
	BoardID       string      `json:"boardId" yaml:"board_id"`
	TargetBoardID string      `json:"targetBoardId,omitempty" yaml:"target_board_id,omitempty"`
	DryRun        bool        `json:"dryRun" yaml:"dry_run"`
	Processed     int         `json:"processed" yaml:"processed"`
	Success       int         `json:"success" yaml:"success"`
	Errors        []CardError `json:"errors" yaml:"errors"`
	MissingLabels []string    `json:"missingLabels,omitempty" yaml:"missing_labels,omitempty"`
	SkippedLists  []string    `json:"skippedLists,omitempty" yaml:"skipped_lists,omitempty"`
	StartedAt     time.Time   `json:"startedAt" yaml:"started_at"`
	FinishedAt    time.Time   `json:"finishedAt" yaml:"finished_at"`
}

// Failed returns the number of per-card errors.
func (r *Result) Failed() int {
	return len(r.Errors)
}

// Duration returns how long the run took.
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunErrors converts the per-card errors to journal records, keeping their order.
func (r *Result) RunErrors() []models.RunError {
	errs := make([]models.RunError, 0, len(r.Errors))
	for i, e := range r.Errors {
		errs = append(errs, models.RunError{Position: i, CardID: e.CardID, CardName: e.Name, Message: e.Error})
	}
	return errs
}

// withPlan copies the identifying fields and warnings of plan onto r.
func (r *Result) withPlan(plan *Plan) *Result {
	r.Operation = plan.Operation
	r.BoardID = plan.BoardID
	r.TargetBoardID = plan.TargetBoardID
	r.MissingLabels = plan.MissingLabels
	r.SkippedLists = plan.SkippedLists
	return r
}
