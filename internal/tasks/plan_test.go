package tasks

import (
	"errors"
	"testing"

	"github.com/desertthunder/tbx/internal/models"
	"github.com/desertthunder/tbx/internal/shared"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestPlanAddLabels(t *testing.T) {
	t.Run("Union", func(t *testing.T) {
		board := &models.Board{
			Labels: []models.Label{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"}},
			Cards: []models.Card{
				{ID: "x", Name: "x", Labels: []models.Label{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}},
			},
		}

		tests := []struct {
			name    string
			target  []string
			want    []string
			skipped bool
		}{
			{name: "adds missing labels", target: []string{"b", "c"}, want: []string{"a", "b", "c"}},
			{name: "skips when every label present", target: []string{"a", "b"}, skipped: true},
			{name: "skips subset", target: []string{"b"}, skipped: true},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got := PlanAddLabels(board, tt.target, nil)
				if tt.skipped {
					if len(got) != 0 {
						t.Fatalf("expected no mutations, got %v", got)
					}
					return
				}
				if len(got) != 1 {
					t.Fatalf("expected one mutation, got %d", len(got))
				}
				if diff := cmp.Diff(tt.want, got[0].LabelIDs, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
					t.Errorf("label set mismatch (-want +got):\n%s", diff)
				}
			})
		}
	})

	t.Run("Preview", func(t *testing.T) {
		board := sourceBoard()
		got := PlanAddLabels(board, []string{"lb-green"}, nil)
		if len(got) != 4 {
			t.Fatalf("expected every card to be planned, got %d", len(got))
		}

		first := got[0]
		if first.Kind != models.AddLabels {
			t.Errorf("unexpected kind %v", first.Kind)
		}
		if diff := cmp.Diff([]string{"Bug"}, first.Before); diff != "" {
			t.Errorf("before mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"Bug", "green"}, first.After); diff != "" {
			t.Errorf("after mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Filter Excludes Cards", func(t *testing.T) {
		board := sourceBoard()
		filter := &CardFilter{InLists: []string{"Doing"}}

		got := PlanAddLabels(board, []string{"lb-feat"}, filter)
		if diff := cmp.Diff([]string{"c2", "c3"}, cardIDs(got)); diff != "" {
			t.Errorf("planned cards mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Does Not Mutate Snapshot", func(t *testing.T) {
		board := sourceBoard()
		PlanAddLabels(board, []string{"lb-feat"}, nil)
		if len(board.Cards[0].Labels) != 1 {
			t.Error("planning must not change card labels")
		}
	})
}

func TestPlanCopyCards(t *testing.T) {
	t.Run("Mapping And Skipped Lists", func(t *testing.T) {
		source := sourceBoard()
		target := targetBoard()

		mutations, skipped := PlanCopyCards(source, target, map[string]string{"Backlog": "Todo"}, shared.DefaultKeepFromSource, nil)

		if diff := cmp.Diff([]string{"c1", "c4"}, cardIDs(mutations)); diff != "" {
			t.Errorf("planned cards mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"Doing"}, skipped); diff != "" {
			t.Errorf("skipped lists mismatch (-want +got):\n%s", diff)
		}

		if mutations[0].TargetList.ID != "T-todo" || mutations[0].SourceList != "Backlog" {
			t.Errorf("unexpected mapping for c1: %+v", mutations[0])
		}
		if mutations[1].TargetList.ID != "T-done" {
			t.Errorf("expected literal fallback for c4, got %s", mutations[1].TargetList.ID)
		}
		if mutations[0].TargetList.BoardID != "dst" {
			t.Error("target list must come from the target snapshot")
		}
		if diff := cmp.Diff(shared.DefaultKeepFromSource, mutations[0].KeepFromSource); diff != "" {
			t.Errorf("keep mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Skipped List Reported Once", func(t *testing.T) {
		source := sourceBoard()
		for i := range 5 {
			source.Cards = append(source.Cards, models.Card{ID: "extra" + string(rune('a'+i)), ListID: "L-doing"})
		}

		_, skipped := PlanCopyCards(source, targetBoard(), nil, nil, nil)
		if diff := cmp.Diff([]string{"Backlog", "Doing"}, skipped); diff != "" {
			t.Errorf("skipped lists mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Card List Missing From Snapshot", func(t *testing.T) {
		source := sourceBoard()
		source.Cards = []models.Card{{ID: "orphan", Name: "Orphan", ListID: "L-gone"}}

		mutations, skipped := PlanCopyCards(source, targetBoard(), nil, nil, nil)
		if len(mutations) != 0 {
			t.Errorf("expected no mutations, got %d", len(mutations))
		}
		if diff := cmp.Diff([]string{"L-gone"}, skipped); diff != "" {
			t.Errorf("skipped lists mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Filtered Cards Do Not Create Skips", func(t *testing.T) {
		filter := &CardFilter{InLists: []string{"Done"}}
		mutations, skipped := PlanCopyCards(sourceBoard(), targetBoard(), nil, nil, filter)

		if diff := cmp.Diff([]string{"c4"}, cardIDs(mutations)); diff != "" {
			t.Errorf("planned cards mismatch (-want +got):\n%s", diff)
		}
		if len(skipped) != 0 {
			t.Errorf("expected no skipped lists, got %v", skipped)
		}
	})
}

func TestPlanByLabel(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		kind  models.MutationKind
		want  []string
	}{
		{name: "exact name", names: []string{"Website"}, kind: models.Archive, want: []string{"c2"}},
		{name: "lower case name", names: []string{"website"}, kind: models.Delete, want: []string{"c3"}},
		{name: "any of several names", names: []string{"Feature", "Website"}, kind: models.Archive, want: []string{"c2", "c4"}},
		{name: "no match", names: []string{"WEBSITE"}, kind: models.Archive, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlanByLabel(sourceBoard(), tt.names, tt.kind, nil)
			if diff := cmp.Diff(tt.want, cardIDs(got)); diff != "" {
				t.Errorf("planned cards mismatch (-want +got):\n%s", diff)
			}
			for _, m := range got {
				if m.Kind != tt.kind {
					t.Errorf("expected kind %v, got %v", tt.kind, m.Kind)
				}
			}
		})
	}
}

func TestCardFilter(t *testing.T) {
	board := sourceBoard()

	t.Run("NewCardFilter", func(t *testing.T) {
		if _, err := NewCardFilter(nil, "([", nil); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}

		f, err := NewCardFilter(nil, "", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Name != nil {
			t.Error("expected empty pattern to leave Name unset")
		}
	})

	tests := []struct {
		name   string
		filter *CardFilter
		want   []string
	}{
		{name: "nil filter accepts all", filter: nil, want: []string{"c1", "c2", "c3", "c4"}},
		{name: "zero filter accepts all", filter: &CardFilter{}, want: []string{"c1", "c2", "c3", "c4"}},
		{name: "by list", filter: &CardFilter{InLists: []string{"Backlog", "Done"}}, want: []string{"c1", "c4"}},
		{name: "skip label", filter: &CardFilter{SkipLabels: []string{"Bug"}}, want: []string{"c2", "c3"}},
		{
			name:   "custom predicate",
			filter: &CardFilter{Func: func(c models.Card) bool { return len(c.Labels) > 1 }},
			want:   []string{"c4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []string{}
			for _, c := range board.Cards {
				if tt.filter.Allows(board, c) {
					got = append(got, c.ID)
				}
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("allowed cards mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("name pattern", func(t *testing.T) {
		f, err := NewCardFilter(nil, "^[Ll]anding", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := []string{}
		for _, c := range board.Cards {
			if f.Allows(board, c) {
				got = append(got, c.ID)
			}
		}
		if diff := cmp.Diff([]string{"c2", "c3"}, got); diff != "" {
			t.Errorf("allowed cards mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestMissingLabelNames(t *testing.T) {
	got := missingLabelNames(sourceBoard(), []string{"Bug", "Nope", "Nope", "Other"})
	if diff := cmp.Diff([]string{"Nope", "Other"}, got); diff != "" {
		t.Errorf("missing names mismatch (-want +got):\n%s", diff)
	}
}
