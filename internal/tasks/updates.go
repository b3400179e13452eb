package tasks

import (
	"fmt"

	"github.com/desertthunder/tbx/internal/models"
)

// ProgressUpdate represents a progress event during a bulk operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
	Err     error  // Set when the step failed
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	FetchTarget
	ResolveNames
	BuildPlan
	ApplyChanges
	Done
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case FetchTarget:
		return "fetch_target"
	case ResolveNames:
		return "resolve"
	case BuildPlan:
		return "plan"
	case ApplyChanges:
		return "apply"
	case Done:
		return "done"
	default:
		return ""
	}
}

func fetchSourceUpdate(boardID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching board %s...", boardID),
	}
}

func fetchTargetUpdate(boardID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTarget,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching target board %s...", boardID),
	}
}

func missingLabelsUpdate(missing []string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveNames,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Labels not found on board: %v", missing),
		Data:    missing,
	}
}

func skippedListUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BuildPlan,
		Message: fmt.Sprintf("List %s not found in target board", name),
		Data:    name,
	}
}

func plannedUpdate(planned, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BuildPlan,
		Step:    planned,
		Total:   total,
		Message: fmt.Sprintf("Planned %d of %d cards", planned, total),
	}
}

func dryRunUpdate(step, total int, m models.Mutation) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ApplyChanges,
		Step:    step,
		Total:   total,
		Message: "Dry run: " + m.Describe(),
		Data:    m,
	}
}

func appliedUpdate(step, total int, m models.Mutation, err error) ProgressUpdate {
	if err != nil {
		return ProgressUpdate{
			Phase:   ApplyChanges,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s %s: %v", step, total, m.Kind, m.Card.Name, err),
			Data:    m,
			Err:     err,
		}
	}
	return ProgressUpdate{
		Phase:   ApplyChanges,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, m.Describe()),
		Data:    m,
	}
}

func doneUpdate(r *Result) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    r.Processed,
		Total:   r.Processed,
		Message: fmt.Sprintf("Done: %d processed, %d succeeded, %d failed", r.Processed, r.Success, len(r.Errors)),
		Data:    r,
	}
}
