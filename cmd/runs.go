package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/tbx/internal/formatter"
	"github.com/desertthunder/tbx/internal/models"
	"github.com/desertthunder/tbx/internal/repositories"
	"github.com/desertthunder/tbx/internal/shared"
	"github.com/urfave/cli/v3"
)

// RunsList prints the journaled runs, oldest first.
func (r *Runner) RunsList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	repo, err := r.runs()
	if err != nil {
		return err
	}

	criteria := map[string]any{}
	if op := cmd.String("operation"); op != "" {
		criteria["operation"] = op
	}
	if board := cmd.String("board"); board != "" {
		id, err := shared.ParseBoardID(board)
		if err != nil {
			return err
		}
		criteria["board_id"] = id
	}
	if limit := cmd.Int("limit"); limit > 0 {
		criteria["limit"] = limit
	}

	runs, err := repo.List(criteria)
	if err != nil {
		return err
	}

	data, err := formatter.EncodeRuns(runs, format)
	if err != nil {
		return err
	}
	return r.writeOutput(cmd, data)
}

// RunsShow prints one run with its per-card errors.
func (r *Runner) RunsShow(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	run, err := r.lookupRun(cmd)
	if err != nil {
		return err
	}

	data, err := formatter.EncodeRun(run, format)
	if err != nil {
		return err
	}
	return r.writeOutput(cmd, data)
}

// RunsDelete soft-deletes a run from the journal.
func (r *Runner) RunsDelete(ctx context.Context, cmd *cli.Command) error {
	run, err := r.lookupRun(cmd)
	if err != nil {
		return err
	}

	repo, err := r.runs()
	if err != nil {
		return err
	}
	if err := repo.Delete(run.ID()); err != nil {
		return err
	}

	r.logger.Info("run deleted", "run", run.Sequence(), "id", run.ID())
	return r.writePlain("Deleted run #%d (%s on %s)\n", run.Sequence(), run.Operation(), run.BoardID())
}

func (r *Runner) runs() (*repositories.RunRepository, error) {
	db, err := r.journal()
	if err != nil {
		return nil, err
	}
	return repositories.NewRunRepository(db), nil
}

// lookupRun resolves the run argument as a sequence number, then as an id.
func (r *Runner) lookupRun(cmd *cli.Command) (*models.Run, error) {
	arg := cmd.StringArg("run")
	if arg == "" {
		return nil, fmt.Errorf("%w: run number or id", shared.ErrMissingArgument)
	}

	repo, err := r.runs()
	if err != nil {
		return nil, err
	}

	if seq, err := strconv.Atoi(arg); err == nil {
		return repo.GetBySequence(seq)
	}
	return repo.Get(arg)
}
