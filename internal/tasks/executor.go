package tasks

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/desertthunder/tbx/internal/models"
	"github.com/desertthunder/tbx/internal/services"
	"github.com/desertthunder/tbx/internal/shared"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ExecutorOpts configures how mutations are dispatched.
type ExecutorOpts struct {
	Concurrency int     // Maximum writes in flight (default: 1)
	RateLimit   float64 // Writes per second, 0 for unlimited

	// BlockingProgress waits for the receiver to take every update instead of dropping
	// updates when the channel is full. Only set it when the channel is always drained.
	BlockingProgress bool
}

// Executor applies mutations through a [services.CardWriter], one write per mutation.
type Executor struct {
	writer      services.CardWriter
	limiter     *rate.Limiter
	concurrency int
	blocking    bool
}

// NewExecutor creates an Executor. Non-positive concurrency means strictly sequential.
func NewExecutor(writer services.CardWriter, opts ExecutorOpts) *Executor {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &Executor{writer: writer, limiter: limiter, concurrency: opts.Concurrency, blocking: opts.BlockingProgress}
}

// Apply performs the single write described by m. A dry run returns nil without calling the writer.
func (e *Executor) Apply(ctx context.Context, m models.Mutation, dryRun bool) error {
	if dryRun {
		return nil
	}
	if e.writer == nil {
		return fmt.Errorf("%w: card writer not initialized", shared.ErrServiceUnavailable)
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	switch m.Kind {
	case models.AddLabels:
		return e.writer.UpdateCard(ctx, m.Card.ID, models.CardPatch{IDLabels: m.LabelIDs})
	case models.CopyToList:
		if m.TargetList == nil {
			return fmt.Errorf("%w: copy of %s has no target list", shared.ErrInvalidInput, m.Card.ID)
		}
		_, err := e.writer.CreateCard(ctx, models.CardCopy{
			SourceCardID:   m.Card.ID,
			ListID:         m.TargetList.ID,
			Name:           m.Card.Name,
			KeepFromSource: m.KeepFromSource,
		})
		return err
	case models.Archive:
		return e.writer.UpdateCard(ctx, m.Card.ID, models.ArchivePatch())
	case models.Delete:
		return e.writer.DeleteCard(ctx, m.Card.ID)
	default:
		return fmt.Errorf("%w: unknown mutation kind %v", shared.ErrInvalidInput, m.Kind)
	}
}

// Execute applies every mutation and aggregates the outcome.
//
// A failed write is recorded and never stops the run. Errors are reported in plan order
// whatever the concurrency. Once ctx is done no further writes are dispatched and every
// remaining mutation is recorded as an error.
func (e *Executor) Execute(ctx context.Context, mutations []models.Mutation, dryRun bool, progress chan<- ProgressUpdate) *Result {
	result := &Result{DryRun: dryRun, Processed: len(mutations), Errors: []CardError{}, StartedAt: time.Now()}
	total := len(mutations)

	if dryRun {
		for i, m := range mutations {
			e.send(ctx, progress, dryRunUpdate(i+1, total, m))
		}
		result.Success = total
		result.FinishedAt = time.Now()
		return result
	}

	outcomes := make([]error, total)
	var completed atomic.Int64

	var g errgroup.Group
	g.SetLimit(e.concurrency)

	for i, m := range mutations {
		if err := ctx.Err(); err != nil {
			for j := i; j < total; j++ {
				outcomes[j] = fmt.Errorf("not applied: %w", err)
			}
			break
		}

		g.Go(func() error {
			err := e.Apply(ctx, m, false)
			outcomes[i] = err
			e.send(ctx, progress, appliedUpdate(int(completed.Add(1)), total, m, err))
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range outcomes {
		if err == nil {
			result.Success++
			continue
		}
		result.Errors = append(result.Errors, CardError{
			CardID: mutations[i].Card.ID,
			Name:   mutations[i].Card.Name,
			Error:  err.Error(),
		})
	}

	result.FinishedAt = time.Now()
	return result
}

// send delivers update according to the executor's progress mode.
//
// A blocking send gives up once ctx is done.
func (e *Executor) send(ctx context.Context, progress chan<- ProgressUpdate, update ProgressUpdate) {
	if !e.blocking {
		sendProgress(progress, update)
		return
	}
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	case <-ctx.Done():
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
