package tasks

import "github.com/desertthunder/tbx/internal/models"

// LabelResolution is the outcome of resolving label names against a board.
type LabelResolution struct {
	Found   []string // label ids, in request order
	Missing []string // requested names with no label on the board
}

// ResolveLabelIDs maps each requested name to the id of the first label with exactly that name.
//
// Matching is case-sensitive. Repeated names are resolved once.
func ResolveLabelIDs(labels []models.Label, names []string) LabelResolution {
	var res LabelResolution
	seen := make(map[string]struct{}, len(names))

	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		id, ok := firstLabelNamed(labels, name)
		if !ok {
			res.Missing = append(res.Missing, name)
			continue
		}
		res.Found = append(res.Found, id)
	}

	return res
}

func firstLabelNamed(labels []models.Label, name string) (string, bool) {
	for _, l := range labels {
		if l.Name == name {
			return l.ID, true
		}
	}
	return "", false
}

// ResolveTargetList finds the target list for cards from a source list named sourceListName.
//
// A mapping entry for the source name wins over the literal name. Matching is exact.
func ResolveTargetList(lists []models.List, sourceListName string, mapping map[string]string) (*models.List, bool) {
	want := sourceListName
	if mapped, ok := mapping[sourceListName]; ok && mapped != "" {
		want = mapped
	}

	for i := range lists {
		if lists[i].Name == want {
			return &lists[i], true
		}
	}
	return nil, false
}
