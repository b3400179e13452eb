package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/tbx/internal/models"
	"github.com/desertthunder/tbx/internal/services"
	"github.com/desertthunder/tbx/internal/shared"
)

// Operation names, as reported in results and stored in the run journal.
const (
	OpAddLabels = "labels add"
	OpCopyCards = "cards copy"
	OpArchive   = "cards archive"
	OpDelete    = "cards delete"
)

// AddLabelsConfig configures [BulkEngine.AddLabels].
type AddLabelsConfig struct {
	BoardID string
	Labels  []string // label names to add to every card
	DryRun  bool
	Filter  *CardFilter
}

// CopyCardsConfig configures [BulkEngine.CopyCards].
type CopyCardsConfig struct {
	BoardID        string
	TargetBoardID  string
	ListMapping    map[string]string // source list name to target list name
	KeepFromSource []string          // defaults to [shared.DefaultKeepFromSource]
	DryRun         bool
	Filter         *CardFilter
}

// ByLabelConfig configures [BulkEngine.DeleteCardsByLabel].
type ByLabelConfig struct {
	BoardID string
	Labels  []string            // cards carrying any of these label names are selected
	Action  models.MutationKind // [models.Archive] or [models.Delete]
	DryRun  bool
	Filter  *CardFilter
}

// BulkRunner defines the three bulk operations. Each returns an error only for fatal preconditions;
// per-card failures are reported in the [Result].
type BulkRunner interface {
	AddLabels(ctx context.Context, cfg AddLabelsConfig, progress chan<- ProgressUpdate) (*Result, error)
	CopyCards(ctx context.Context, cfg CopyCardsConfig, progress chan<- ProgressUpdate) (*Result, error)
	DeleteCardsByLabel(ctx context.Context, cfg ByLabelConfig, progress chan<- ProgressUpdate) (*Result, error)
}

// BulkEngine implements BulkRunner on top of a board reader and an [Executor].
type BulkEngine struct {
	reader   services.BoardReader
	executor *Executor
}

// NewBulkEngine creates a BulkEngine reading and writing through svc.
func NewBulkEngine(svc services.Service, opts ExecutorOpts) *BulkEngine {
	var writer services.CardWriter
	var reader services.BoardReader
	if svc != nil {
		writer, reader = svc, svc
	}
	return &BulkEngine{reader: reader, executor: NewExecutor(writer, opts)}
}

// NewBulkEngineWith creates a BulkEngine from separate read and write dependencies.
func NewBulkEngineWith(reader services.BoardReader, executor *Executor) *BulkEngine {
	return &BulkEngine{reader: reader, executor: executor}
}

func (e *BulkEngine) fetch(ctx context.Context, boardID string) (*models.Board, error) {
	if e.reader == nil {
		return nil, fmt.Errorf("%w: board reader not initialized", shared.ErrServiceUnavailable)
	}
	board, err := e.reader.FetchBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	return board, nil
}

// PrepareAddLabels fetches the board, resolves label names and plans the label union for every card.
//
// Fails when no board id or label names are given, when the board cannot be fetched, or when none of the names resolve.
func (e *BulkEngine) PrepareAddLabels(ctx context.Context, cfg AddLabelsConfig, progress chan<- ProgressUpdate) (*Plan, error) {
	if cfg.BoardID == "" {
		return nil, fmt.Errorf("%w: board id is empty", shared.ErrInvalidBoardID)
	}
	if len(cfg.Labels) == 0 {
		return nil, fmt.Errorf("%w: at least one label name is required", shared.ErrMissingArgument)
	}

	e.executor.send(ctx, progress, fetchSourceUpdate(cfg.BoardID))
	board, err := e.fetch(ctx, cfg.BoardID)
	if err != nil {
		return nil, err
	}

	res := ResolveLabelIDs(board.Labels, cfg.Labels)
	if len(res.Missing) > 0 {
		e.executor.send(ctx, progress, missingLabelsUpdate(res.Missing))
	}
	if len(res.Found) == 0 {
		return nil, fmt.Errorf("%w: none of %v exist on board %s", shared.ErrNoLabelsResolved, cfg.Labels, cfg.BoardID)
	}

	plan := &Plan{
		Operation:     OpAddLabels,
		BoardID:       cfg.BoardID,
		Mutations:     PlanAddLabels(board, res.Found, cfg.Filter),
		MissingLabels: res.Missing,
	}
	e.executor.send(ctx, progress, plannedUpdate(len(plan.Mutations), len(board.Cards)))
	return plan, nil
}

// PrepareCopyCards fetches both boards and plans one copy per card whose list has a target.
func (e *BulkEngine) PrepareCopyCards(ctx context.Context, cfg CopyCardsConfig, progress chan<- ProgressUpdate) (*Plan, error) {
	if cfg.BoardID == "" {
		return nil, fmt.Errorf("%w: board id is empty", shared.ErrInvalidBoardID)
	}
	if cfg.TargetBoardID == "" {
		return nil, fmt.Errorf("%w: target board id is required", shared.ErrMissingArgument)
	}

	keep := cfg.KeepFromSource
	if keep == nil {
		keep = shared.DefaultKeepFromSource
	}

	e.executor.send(ctx, progress, fetchSourceUpdate(cfg.BoardID))
	source, err := e.fetch(ctx, cfg.BoardID)
	if err != nil {
		return nil, err
	}

	e.executor.send(ctx, progress, fetchTargetUpdate(cfg.TargetBoardID))
	target, err := e.fetch(ctx, cfg.TargetBoardID)
	if err != nil {
		return nil, err
	}

	mutations, skipped := PlanCopyCards(source, target, cfg.ListMapping, keep, cfg.Filter)
	for _, name := range skipped {
		e.executor.send(ctx, progress, skippedListUpdate(name))
	}

	plan := &Plan{
		Operation:     OpCopyCards,
		BoardID:       cfg.BoardID,
		TargetBoardID: cfg.TargetBoardID,
		Mutations:     mutations,
		SkippedLists:  skipped,
	}
	e.executor.send(ctx, progress, plannedUpdate(len(plan.Mutations), len(source.Cards)))
	return plan, nil
}

// PrepareByLabel fetches the board and selects every card carrying one of the label names.
//
// Fails when no label names are given, when the action is not archive or delete, or when none of the names exist on the board.
func (e *BulkEngine) PrepareByLabel(ctx context.Context, cfg ByLabelConfig, progress chan<- ProgressUpdate) (*Plan, error) {
	if cfg.BoardID == "" {
		return nil, fmt.Errorf("%w: board id is empty", shared.ErrInvalidBoardID)
	}
	if len(cfg.Labels) == 0 {
		return nil, fmt.Errorf("%w: at least one label name is required", shared.ErrMissingArgument)
	}

	op := OpArchive
	switch cfg.Action {
	case models.Archive:
	case models.Delete:
		op = OpDelete
	default:
		return nil, fmt.Errorf("%w: action must be archive or delete, got %s", shared.ErrInvalidArgument, cfg.Action)
	}

	e.executor.send(ctx, progress, fetchSourceUpdate(cfg.BoardID))
	board, err := e.fetch(ctx, cfg.BoardID)
	if err != nil {
		return nil, err
	}

	missing := missingLabelNames(board, cfg.Labels)
	if len(missing) > 0 {
		e.executor.send(ctx, progress, missingLabelsUpdate(missing))
	}
	if len(missing) == len(uniqueNames(cfg.Labels)) {
		return nil, fmt.Errorf("%w: none of %v exist on board %s", shared.ErrNoLabelsResolved, cfg.Labels, cfg.BoardID)
	}

	plan := &Plan{
		Operation:     op,
		BoardID:       cfg.BoardID,
		Mutations:     PlanByLabel(board, cfg.Labels, cfg.Action, cfg.Filter),
		MissingLabels: missing,
	}
	e.executor.send(ctx, progress, plannedUpdate(len(plan.Mutations), len(board.Cards)))
	return plan, nil
}

// Apply executes plan and returns the aggregated result.
func (e *BulkEngine) Apply(ctx context.Context, plan *Plan, dryRun bool, progress chan<- ProgressUpdate) *Result {
	result := e.executor.Execute(ctx, plan.Mutations, dryRun, progress).withPlan(plan)
	e.executor.send(ctx, progress, doneUpdate(result))
	return result
}

// AddLabels adds the named labels to every card of the board, skipping cards that already carry them all.
func (e *BulkEngine) AddLabels(ctx context.Context, cfg AddLabelsConfig, progress chan<- ProgressUpdate) (*Result, error) {
	plan, err := e.PrepareAddLabels(ctx, cfg, progress)
	if err != nil {
		return nil, err
	}
	return e.Apply(ctx, plan, cfg.DryRun, progress), nil
}

// CopyCards copies every card of the source board into the matching list of the target board.
func (e *BulkEngine) CopyCards(ctx context.Context, cfg CopyCardsConfig, progress chan<- ProgressUpdate) (*Result, error) {
	plan, err := e.PrepareCopyCards(ctx, cfg, progress)
	if err != nil {
		return nil, err
	}
	return e.Apply(ctx, plan, cfg.DryRun, progress), nil
}

// DeleteCardsByLabel archives or deletes every card carrying one of the named labels.
func (e *BulkEngine) DeleteCardsByLabel(ctx context.Context, cfg ByLabelConfig, progress chan<- ProgressUpdate) (*Result, error) {
	plan, err := e.PrepareByLabel(ctx, cfg, progress)
	if err != nil {
		return nil, err
	}
	return e.Apply(ctx, plan, cfg.DryRun, progress), nil
}

func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	var out []string
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
