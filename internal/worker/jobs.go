package worker

import (
	"context"

	"github.com/vytor/recallcards/internal/flashcard"
	"github.com/vytor/recallcards/internal/logger"
	"github.com/vytor/recallcards/internal/repository"
)

// SaveCardJob writes a card snapshot to the repository.
type SaveCardJob struct {
	Repo repository.CardRepository
	Card flashcard.Card
}

func (j *SaveCardJob) Name() string { return "save_card" }

func (j *SaveCardJob) Run(ctx context.Context) error {
	logger.FromContext(ctx).Debug("persisting card %s (revision %d)", j.Card.ID(), j.Card.ReviewCount())
	return j.Repo.Save(ctx, j.Card)
}

// DeleteCardJob removes a card from the repository.
type DeleteCardJob struct {
	Repo repository.CardRepository
	ID   string
}

func (j *DeleteCardJob) Name() string { return "delete_card" }

func (j *DeleteCardJob) Run(ctx context.Context) error {
	logger.FromContext(ctx).Debug("deleting card %s", j.ID)
	return j.Repo.Delete(ctx, j.ID)
}
