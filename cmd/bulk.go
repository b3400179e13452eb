package main

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/desertthunder/tbx/internal/formatter"
	"github.com/desertthunder/tbx/internal/models"
	"github.com/desertthunder/tbx/internal/repositories"
	"github.com/desertthunder/tbx/internal/shared"
	"github.com/desertthunder/tbx/internal/tasks"
	"github.com/desertthunder/tbx/internal/ui"
	"github.com/urfave/cli/v3"
)

// prepareFunc fetches snapshots and plans one bulk operation.
type prepareFunc func(ctx context.Context, engine *tasks.BulkEngine, progress chan<- tasks.ProgressUpdate) (*tasks.Plan, error)

// LabelsAdd adds the --label names to every card of the board.
func (r *Runner) LabelsAdd(ctx context.Context, cmd *cli.Command) error {
	boardID, err := r.boardID(cmd)
	if err != nil {
		return err
	}
	filter, err := cardFilter(cmd)
	if err != nil {
		return err
	}

	cfg := tasks.AddLabelsConfig{
		BoardID: boardID,
		Labels:  cmd.StringSlice("label"),
		DryRun:  r.dryRun(cmd),
		Filter:  filter,
	}

	return r.execute(ctx, cmd, cfg.DryRun, func(ctx context.Context, e *tasks.BulkEngine, p chan<- tasks.ProgressUpdate) (*tasks.Plan, error) {
		return e.PrepareAddLabels(ctx, cfg, p)
	})
}

// CardsCopy copies every card of the board into the matching list of --target-board.
func (r *Runner) CardsCopy(ctx context.Context, cmd *cli.Command) error {
	boardID, err := r.boardID(cmd)
	if err != nil {
		return err
	}
	targetID, err := shared.ParseBoardID(cmd.String("target-board"))
	if err != nil {
		return err
	}
	filter, err := cardFilter(cmd)
	if err != nil {
		return err
	}

	mapping := maps.Clone(r.config.Copy.Lists)
	if mapping == nil {
		mapping = map[string]string{}
	}
	flagMapping, err := parseListMapping(cmd.StringSlice("map-list"))
	if err != nil {
		return err
	}
	maps.Copy(mapping, flagMapping)

	keep := r.config.Run.KeepFromSource
	if cmd.IsSet("keep") {
		keep = cmd.StringSlice("keep")
	}

	cfg := tasks.CopyCardsConfig{
		BoardID:        boardID,
		TargetBoardID:  targetID,
		ListMapping:    mapping,
		KeepFromSource: keep,
		DryRun:         r.dryRun(cmd),
		Filter:         filter,
	}

	return r.execute(ctx, cmd, cfg.DryRun, func(ctx context.Context, e *tasks.BulkEngine, p chan<- tasks.ProgressUpdate) (*tasks.Plan, error) {
		return e.PrepareCopyCards(ctx, cfg, p)
	})
}

// CardsArchive archives every card carrying one of the --label names.
func (r *Runner) CardsArchive(ctx context.Context, cmd *cli.Command) error {
	return r.byLabel(ctx, cmd, models.Archive)
}

// CardsDelete archives or deletes every card carrying one of the --label names, per --action.
func (r *Runner) CardsDelete(ctx context.Context, cmd *cli.Command) error {
	action, err := models.ParseMutationKind(cmd.String("action"))
	if err != nil {
		return err
	}
	return r.byLabel(ctx, cmd, action)
}

func (r *Runner) byLabel(ctx context.Context, cmd *cli.Command, action models.MutationKind) error {
	boardID, err := r.boardID(cmd)
	if err != nil {
		return err
	}
	filter, err := cardFilter(cmd)
	if err != nil {
		return err
	}

	cfg := tasks.ByLabelConfig{
		BoardID: boardID,
		Labels:  cmd.StringSlice("label"),
		Action:  action,
		DryRun:  r.dryRun(cmd),
		Filter:  filter,
	}

	return r.execute(ctx, cmd, cfg.DryRun, func(ctx context.Context, e *tasks.BulkEngine, p chan<- tasks.ProgressUpdate) (*tasks.Plan, error) {
		return e.PrepareByLabel(ctx, cfg, p)
	})
}

// execute plans an operation, applies it (directly or through the review UI), journals and prints the result.
func (r *Runner) execute(ctx context.Context, cmd *cli.Command, dryRun bool, prepare prepareFunc) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	engine, err := r.engine(cmd)
	if err != nil {
		return err
	}

	progress, wait := r.logProgress()
	plan, err := prepare(ctx, engine, progress)
	if err != nil {
		close(progress)
		wait()
		return err
	}

	if dryRun {
		r.logger.Warn("dry run, no changes will be written", "planned", len(plan.Mutations))
	}

	var result *tasks.Result
	if cmd.Bool("interactive") {
		close(progress)
		wait()
		if result, err = ui.Run(ctx, engine, plan, dryRun); err != nil {
			return err
		}
	} else {
		result = engine.Apply(ctx, plan, dryRun, progress)
		close(progress)
		wait()
	}

	if r.config.Database.Journal || cmd.Bool("journal") {
		r.record(result)
	}

	if result.Failed() > 0 {
		r.logger.Warn("some cards failed", "failed", result.Failed(), "processed", result.Processed)
	}

	data, err := formatter.EncodeResult(result, format)
	if err != nil {
		return err
	}
	return r.writeOutput(cmd, data)
}

// record stores result in the run journal. Journal failures are logged, never returned.
func (r *Runner) record(result *tasks.Result) {
	db, err := r.journal()
	if err != nil {
		r.logger.Error("run not journaled", "error", err)
		return
	}

	run, err := repositories.NewRunJournal(repositories.NewRunRepository(db)).Record(result)
	if err != nil {
		r.logger.Error("run not journaled", "error", err)
		return
	}
	r.logger.Info("run journaled", "run", run.Sequence(), "id", run.ID())
}

// logProgress starts a goroutine logging every update sent on the returned channel.
//
// Close the channel, then call wait before writing anything else to the terminal.
func (r *Runner) logProgress() (chan tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 100)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for u := range progress {
			r.logUpdate(u)
		}
	}()

	return progress, wg.Wait
}

func (r *Runner) logUpdate(u tasks.ProgressUpdate) {
	logger := r.logger.With("phase", u.Phase.String())

	switch {
	case u.Err != nil:
		logger.Error(u.Message)
	case u.Phase == tasks.ResolveNames:
		logger.Warn(u.Message, "labels", u.Data)
	case u.Phase == tasks.BuildPlan && u.Data != nil:
		logger.Warn(u.Message, "list", u.Data)
	case u.Phase == tasks.ApplyChanges:
		if m, ok := u.Data.(models.Mutation); ok {
			logger.Info(u.Message, "card", m.Card.ID)
			return
		}
		logger.Info(u.Message)
	default:
		logger.Info(u.Message)
	}
}

// boardID resolves --board, falling back to trello.board in the config.
func (r *Runner) boardID(cmd *cli.Command) (string, error) {
	board := cmd.String("board")
	if board == "" {
		board = r.config.Trello.Board
	}
	if board == "" {
		return "", fmt.Errorf("%w: pass --board or set trello.board", shared.ErrInvalidBoardID)
	}
	return shared.ParseBoardID(board)
}

// dryRun returns --dry-run when given, run.dry_run otherwise.
func (r *Runner) dryRun(cmd *cli.Command) bool {
	if cmd.IsSet("dry-run") {
		return cmd.Bool("dry-run")
	}
	return r.config.Run.DryRun
}

func cardFilter(cmd *cli.Command) (*tasks.CardFilter, error) {
	return tasks.NewCardFilter(cmd.StringSlice("in-list"), cmd.String("match"), cmd.StringSlice("skip-label"))
}

// parseListMapping parses SOURCE=TARGET pairs. Names are kept verbatim, including surrounding spaces.
func parseListMapping(pairs []string) (map[string]string, error) {
	mapping := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		source, target, ok := strings.Cut(pair, "=")
		if !ok || source == "" || target == "" {
			return nil, fmt.Errorf("%w: list mapping %q must be SOURCE=TARGET", shared.ErrInvalidArgument, pair)
		}
		mapping[source] = target
	}
	return mapping, nil
}
