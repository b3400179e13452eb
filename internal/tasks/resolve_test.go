package tasks

import (
	"testing"

	"github.com/desertthunder/tbx/internal/models"
	"github.com/google/go-cmp/cmp"
)

func TestResolveLabelIDs(t *testing.T) {
	labels := sourceBoard().Labels

	tests := []struct {
		name  string
		names []string
		want  LabelResolution
	}{
		{
			name:  "all found",
			names: []string{"Feature", "Website"},
			want:  LabelResolution{Found: []string{"lb-feat", "lb-web"}},
		},
		{
			name:  "missing names are reported",
			names: []string{"Feature", "Urgent"},
			want:  LabelResolution{Found: []string{"lb-feat"}, Missing: []string{"Urgent"}},
		},
		{
			name:  "first match wins for duplicate names",
			names: []string{"Bug"},
			want:  LabelResolution{Found: []string{"lb-bug"}},
		},
		{
			name:  "matching is case-sensitive",
			names: []string{"WEBSITE", "website"},
			want:  LabelResolution{Found: []string{"lb-web-lc"}, Missing: []string{"WEBSITE"}},
		},
		{
			name:  "repeated names resolve once",
			names: []string{"Bug", "Bug", "Nope", "Nope"},
			want:  LabelResolution{Found: []string{"lb-bug"}, Missing: []string{"Nope"}},
		},
		{
			name:  "color is not a name",
			names: []string{"green"},
			want:  LabelResolution{Missing: []string{"green"}},
		},
		{
			name:  "no names",
			names: nil,
			want:  LabelResolution{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveLabelIDs(labels, tt.names)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ResolveLabelIDs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveTargetList(t *testing.T) {
	lists := []models.List{
		{ID: "T-todo", Name: "Todo"},
		{ID: "T-doing", Name: "Doing"},
		{ID: "T-done", Name: "done"},
	}
	mapping := map[string]string{"Backlog": "Todo", "Review": "QA"}

	tests := []struct {
		name   string
		source string
		wantID string
		wantOK bool
	}{
		{name: "mapping wins", source: "Backlog", wantID: "T-todo", wantOK: true},
		{name: "literal fallback", source: "Doing", wantID: "T-doing", wantOK: true},
		{name: "no target list", source: "Icebox", wantOK: false},
		{name: "mapped target missing does not fall back", source: "Review", wantOK: false},
		{name: "exact match only", source: "Done", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveTargetList(lists, tt.source, mapping)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.ID != tt.wantID {
				t.Errorf("resolved %s, want %s", got.ID, tt.wantID)
			}
		})
	}

	t.Run("nil mapping", func(t *testing.T) {
		got, ok := ResolveTargetList(lists, "Todo", nil)
		if !ok || got.ID != "T-todo" {
			t.Errorf("expected literal match, got %v %v", got, ok)
		}
	})

	t.Run("returns a list of the target snapshot", func(t *testing.T) {
		got, _ := ResolveTargetList(lists, "Backlog", mapping)
		if got != &lists[0] {
			t.Error("expected pointer into the target lists")
		}
	})
}
