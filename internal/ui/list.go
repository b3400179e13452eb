package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/tbx/internal/models"
)

var _ list.Item = mutationItem{}

// mutationItem wraps [models.Mutation] to implement [list.Item].
type mutationItem struct {
	mutation models.Mutation
}

func (i mutationItem) FilterValue() string { return i.mutation.Card.Name }
func (i mutationItem) Title() string       { return i.mutation.Card.Name }
func (i mutationItem) Description() string { return i.mutation.Describe() }

func mutationItems(mutations []models.Mutation) []list.Item {
	items := make([]list.Item, len(mutations))
	for i, m := range mutations {
		items[i] = mutationItem{mutation: m}
	}
	return items
}
