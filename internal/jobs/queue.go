package jobs

import "github.com/vytor/recallcards/internal/flashcard"

// JobQueue hands card writes to background persistence.
type JobQueue interface {
	EnqueueSave(card flashcard.Card) error
	EnqueueDelete(id string) error
}
