// package services defines the interfaces tbx uses to read boards and write cards
//
// Trello (session-authenticated web API)
package services

import (
	"context"

	"github.com/desertthunder/tbx/internal/models"
)

// BoardReader fetches a full board snapshot in a single request.
type BoardReader interface {
	// FetchBoard returns the board with its visible cards, every label and its open lists.
	// Any non-success status is returned as an error.
	FetchBoard(ctx context.Context, boardID string) (*models.Board, error)
}

// CardWriter performs the per-card writes of a bulk operation.
//
// Each call is independent; a failed call affects only the card it was made for.
type CardWriter interface {
	// UpdateCard applies patch to an existing card.
	UpdateCard(ctx context.Context, cardID string, patch models.CardPatch) error

	// CreateCard creates a card, copying the fields named in req.KeepFromSource from the source card.
	CreateCard(ctx context.Context, req models.CardCopy) (*models.Card, error)

	// DeleteCard permanently deletes a card.
	DeleteCard(ctx context.Context, cardID string) error
}

// Service combines read and write access to a single Trello account.
type Service interface {
	BoardReader
	CardWriter

	// Name returns the name of the service
	Name() string
}
