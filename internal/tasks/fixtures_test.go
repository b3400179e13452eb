package tasks

import "github.com/desertthunder/tbx/internal/models"

var (
	labelBug       = models.Label{ID: "lb-bug", Name: "Bug", Color: "red", BoardID: "src"}
	labelBugDup    = models.Label{ID: "lb-bug-2", Name: "Bug", Color: "orange", BoardID: "src"}
	labelFeature   = models.Label{ID: "lb-feat", Name: "Feature", Color: "blue", BoardID: "src"}
	labelWebsite   = models.Label{ID: "lb-web", Name: "Website", Color: "purple", BoardID: "src"}
	labelWebsiteLC = models.Label{ID: "lb-web-lc", Name: "website", Color: "pink", BoardID: "src"}
	labelGreen     = models.Label{ID: "lb-green", Color: "green", BoardID: "src"}
)

// sourceBoard returns a fresh board with four cards spread over three lists.
func sourceBoard() *models.Board {
	return &models.Board{
		ID: "src",
		Lists: []models.List{
			{ID: "L-backlog", Name: "Backlog", BoardID: "src", Pos: 1},
			{ID: "L-doing", Name: "Doing", BoardID: "src", Pos: 2},
			{ID: "L-done", Name: "Done", BoardID: "src", Pos: 3},
		},
		Labels: []models.Label{labelBug, labelBugDup, labelFeature, labelWebsite, labelWebsiteLC, labelGreen},
		Cards: []models.Card{
			{ID: "c1", Name: "Fix login", BoardID: "src", ListID: "L-backlog", Labels: []models.Label{labelBug}},
			{ID: "c2", Name: "Landing page", BoardID: "src", ListID: "L-doing", Labels: []models.Label{labelWebsite}},
			{ID: "c3", Name: "landing copy", BoardID: "src", ListID: "L-doing", Labels: []models.Label{labelWebsiteLC}},
			{ID: "c4", Name: "Release", BoardID: "src", ListID: "L-done", Labels: []models.Label{labelBug, labelFeature}},
		},
	}
}

// targetBoard returns a fresh board with lists named Todo and Done.
func targetBoard() *models.Board {
	return &models.Board{
		ID: "dst",
		Lists: []models.List{
			{ID: "T-todo", Name: "Todo", BoardID: "dst", Pos: 1},
			{ID: "T-done", Name: "Done", BoardID: "dst", Pos: 2},
		},
	}
}

func cardIDs(mutations []models.Mutation) []string {
	ids := make([]string, 0, len(mutations))
	for _, m := range mutations {
		ids = append(ids, m.Card.ID)
	}
	return ids
}
