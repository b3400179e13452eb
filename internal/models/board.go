package models

// Board is a read-only snapshot of one board, fetched fresh for every operation.
type Board struct {
	ID     string  `json:"id"`
	Name   string  `json:"name,omitempty"`
	Lists  []List  `json:"lists"`
	Labels []Label `json:"labels"`
	Cards  []Card  `json:"cards"`
}

// Card is a work item belonging to exactly one list.
//
// Only the fields read by the planner or preserved on copy are decoded.
type Card struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	BoardID     string  `json:"idBoard"`
	ListID      string  `json:"idList"`
	Labels      []Label `json:"labels"`
	Closed      bool    `json:"closed"`
	Desc        string  `json:"desc,omitempty"`
	Start       *string `json:"start,omitempty"`
	Due         *string `json:"due,omitempty"`
	DueReminder *int    `json:"dueReminder,omitempty"`
}

// List is a named column of cards.
type List struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	BoardID string  `json:"idBoard"`
	Pos     float64 `json:"pos"`
	Closed  bool    `json:"closed"`
}

// Label is a tag scoped to one board.
type Label struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	BoardID string `json:"idBoard"`
}

// DisplayName returns the label name, or its color for unnamed labels.
func (l Label) DisplayName() string {
	if l.Name != "" {
		return l.Name
	}
	return l.Color
}

// LabelIDs returns the ids of the labels assigned to the card, in card order.
func (c Card) LabelIDs() []string {
	ids := make([]string, 0, len(c.Labels))
	for _, l := range c.Labels {
		ids = append(ids, l.ID)
	}
	return ids
}

// LabelNames returns the names of the labels assigned to the card, in card order.
func (c Card) LabelNames() []string {
	names := make([]string, 0, len(c.Labels))
	for _, l := range c.Labels {
		names = append(names, l.Name)
	}
	return names
}

// List returns the list with the given id.
func (b *Board) List(id string) (*List, bool) {
	for i := range b.Lists {
		if b.Lists[i].ID == id {
			return &b.Lists[i], true
		}
	}
	return nil, false
}

// LabelNamesFor returns the display names of the given label ids, in board label order.
func (b *Board) LabelNamesFor(ids []string) []string {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	var names []string
	for _, l := range b.Labels {
		if _, ok := want[l.ID]; ok {
			names = append(names, l.DisplayName())
		}
	}
	return names
}
