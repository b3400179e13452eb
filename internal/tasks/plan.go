package tasks

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/desertthunder/tbx/internal/models"
	"github.com/desertthunder/tbx/internal/shared"
)

// Plan is the ordered set of mutations computed for one operation, plus its soft warnings.
type Plan struct {
	Operation     string
	BoardID       string
	TargetBoardID string
	Mutations     []models.Mutation
	MissingLabels []string
	SkippedLists  []string
}

// CardFilter restricts an operation to a subset of cards. The zero value and nil accept every card.
type CardFilter struct {
	InLists    []string       // list names; empty means any list
	Name       *regexp.Regexp // matched against the card name
	SkipLabels []string       // cards carrying any of these label names are excluded
	Func       func(card models.Card) bool
}

// NewCardFilter builds a filter from CLI-style inputs. An empty pattern matches every name.
func NewCardFilter(inLists []string, pattern string, skipLabels []string) (*CardFilter, error) {
	f := &CardFilter{InLists: inLists, SkipLabels: skipLabels}
	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: card name pattern: %v", shared.ErrInvalidArgument, err)
		}
		f.Name = re
	}
	return f, nil
}

// Allows reports whether card, which belongs to board, passes the filter.
func (f *CardFilter) Allows(board *models.Board, card models.Card) bool {
	if f == nil {
		return true
	}

	if len(f.InLists) > 0 {
		list, ok := board.List(card.ListID)
		if !ok || !slices.Contains(f.InLists, list.Name) {
			return false
		}
	}

	if f.Name != nil && !f.Name.MatchString(card.Name) {
		return false
	}

	if len(f.SkipLabels) > 0 {
		for _, l := range card.Labels {
			if slices.Contains(f.SkipLabels, l.Name) {
				return false
			}
		}
	}

	if f.Func != nil && !f.Func(card) {
		return false
	}

	return true
}

// PlanAddLabels computes the label union for every card that lacks at least one of labelIDs.
//
// Cards already carrying every target label are skipped.
func PlanAddLabels(board *models.Board, labelIDs []string, filter *CardFilter) []models.Mutation {
	var mutations []models.Mutation

	for _, card := range board.Cards {
		if !filter.Allows(board, card) {
			continue
		}

		current := card.LabelIDs()
		union := unionIDs(current, labelIDs)
		if len(union) == len(current) {
			continue
		}

		before := make([]string, 0, len(card.Labels))
		for _, l := range card.Labels {
			before = append(before, l.DisplayName())
		}

		mutations = append(mutations, models.Mutation{
			Kind:     models.AddLabels,
			Card:     card,
			LabelIDs: union,
			Before:   before,
			After:    board.LabelNamesFor(union),
		})
	}

	return mutations
}

// unionIDs returns current followed by every id of add not already present.
func unionIDs(current, add []string) []string {
	union := slices.Clone(current)
	seen := make(map[string]struct{}, len(current)+len(add))
	for _, id := range current {
		seen[id] = struct{}{}
	}

	for _, id := range add {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		union = append(union, id)
	}
	return union
}

// PlanCopyCards computes one copy per source card whose list resolves to a list of target.
//
// Source lists with no target are returned once each in skipped, in first-seen order.
// A card whose list is missing from the source snapshot is treated as belonging to a list named by its id.
func PlanCopyCards(source, target *models.Board, mapping map[string]string, keep []string, filter *CardFilter) (mutations []models.Mutation, skipped []string) {
	skippedSet := make(map[string]struct{})

	for _, card := range source.Cards {
		if !filter.Allows(source, card) {
			continue
		}

		sourceName := card.ListID
		if list, ok := source.List(card.ListID); ok {
			sourceName = list.Name
		}

		if _, ok := skippedSet[sourceName]; ok {
			continue
		}

		targetList, ok := ResolveTargetList(target.Lists, sourceName, mapping)
		if !ok {
			skippedSet[sourceName] = struct{}{}
			skipped = append(skipped, sourceName)
			continue
		}

		mutations = append(mutations, models.Mutation{
			Kind:           models.CopyToList,
			Card:           card,
			TargetList:     targetList,
			KeepFromSource: keep,
			SourceList:     sourceName,
		})
	}

	return mutations, skipped
}

// PlanByLabel selects every card carrying a label whose name is exactly one of names.
//
// kind is applied to every selected card and must be [models.Archive] or [models.Delete].
func PlanByLabel(board *models.Board, names []string, kind models.MutationKind, filter *CardFilter) []models.Mutation {
	var mutations []models.Mutation

	for _, card := range board.Cards {
		if !filter.Allows(board, card) {
			continue
		}
		if !hasLabelNamed(card, names) {
			continue
		}

		mutations = append(mutations, models.Mutation{
			Kind:   kind,
			Card:   card,
			Before: card.LabelNames(),
		})
	}

	return mutations
}

func hasLabelNamed(card models.Card, names []string) bool {
	for _, l := range card.Labels {
		if slices.Contains(names, l.Name) {
			return true
		}
	}
	return false
}

// missingLabelNames returns the names in names that no label of board carries, without repeats.
func missingLabelNames(board *models.Board, names []string) []string {
	var missing []string
	for _, name := range names {
		if slices.Contains(missing, name) {
			continue
		}
		if _, ok := firstLabelNamed(board.Labels, name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
