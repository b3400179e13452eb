package repositories

import (
	"fmt"

	"github.com/desertthunder/tbx/internal/models"
	"github.com/desertthunder/tbx/internal/tasks"
)

// RunJournal records finished bulk operations using RunRepository.
//
// Results that failed before planning never reach the journal.
type RunJournal struct {
	repo models.Repository[*models.Run]
}

// NewRunJournal creates a new RunJournal with the given repository
func NewRunJournal(repo models.Repository[*models.Run]) *RunJournal {
	return &RunJournal{repo: repo}
}

// Record stores result as a new run and returns it.
func (j *RunJournal) Record(result *tasks.Result) (*models.Run, error) {
	if result == nil {
		return nil, fmt.Errorf("cannot record empty result")
	}

	run := models.NewRun(0, result.Operation, result.BoardID)
	run.SetTargetBoardID(result.TargetBoardID)
	run.SetOutcome(result.DryRun, result.Processed, result.Success, result.MissingLabels, result.SkippedLists)
	run.SetErrors(result.RunErrors())
	run.SetTimes(result.StartedAt, result.FinishedAt)

	if err := j.repo.Create(run); err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	return run, nil
}
