package repository

import (
	"context"
	"time"

	"github.com/vytor/recallcards/internal/flashcard"
)

// Sort orders accepted by CardFilter.OrderBy.
const (
	OrderByInsertion = ""
	OrderByDueAt     = "due_at"
	OrderByCreatedAt = "created_at"
)

// CardFilter narrows List. Nil pointers and zero values do not filter.
type CardFilter struct {
	Category       *string
	Confidence     *int
	DueBefore      *time.Time
	Starred        *bool
	MarkedForLater *bool
	OrderBy        string
	Desc           bool
	Limit          int
}

// CardRepository persists cards as JSON documents plus indexed columns.
type CardRepository interface {
	// Save inserts or replaces a card. A card with fewer reviews than the
	// stored copy is ignored so late writes cannot roll history back.
	Save(ctx context.Context, card flashcard.Card) error
	// Get returns nil, nil when the card does not exist.
	Get(ctx context.Context, id string) (*flashcard.Card, error)
	// Delete is idempotent; deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter CardFilter) ([]flashcard.Card, error)
	ReviewHistory(ctx context.Context, id string) ([]flashcard.ReviewEntry, error)
}
