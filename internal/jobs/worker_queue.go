package jobs

import (
	"github.com/vytor/recallcards/internal/flashcard"
	"github.com/vytor/recallcards/internal/repository"
	"github.com/vytor/recallcards/internal/worker"
)

// WorkerQueue implements JobQueue on top of a worker pool. Give it a
// single-worker pool so writes for one card are applied in order.
type WorkerQueue struct {
	pool *worker.Pool
	repo repository.CardRepository
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(pool *worker.Pool, repo repository.CardRepository) JobQueue {
	return &WorkerQueue{pool: pool, repo: repo}
}

func (q *WorkerQueue) EnqueueSave(card flashcard.Card) error {
	return q.pool.Submit(&worker.SaveCardJob{Repo: q.repo, Card: card})
}

func (q *WorkerQueue) EnqueueDelete(id string) error {
	return q.pool.Submit(&worker.DeleteCardJob{Repo: q.repo, ID: id})
}
