package store

import (
	"sync"
	"time"

	"github.com/vytor/recallcards/internal/flashcard"
	"github.com/vytor/recallcards/internal/models"
)

// SyncCardStore guards a CardStore with a read/write mutex.
type SyncCardStore struct {
	mu    sync.RWMutex
	inner *CardStore
}

func NewSync(inner *CardStore) *SyncCardStore {
	if inner == nil {
		inner = New()
	}
	return &SyncCardStore{inner: inner}
}

func (s *SyncCardStore) Upsert(card flashcard.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.Upsert(card)
}

func (s *SyncCardStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Remove(id)
}

// Update runs fn on the stored card and upserts its result while holding the
// write lock, so read-modify-write cycles on one card never interleave.
// Nothing is stored when fn fails.
func (s *SyncCardStore) Update(id string, fn func(flashcard.Card) (flashcard.Card, error)) (flashcard.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, err := s.inner.Get(id)
	if err != nil {
		return flashcard.Card{}, err
	}
	next, err := fn(card)
	if err != nil {
		return card, err
	}
	s.inner.Upsert(next)
	return next, nil
}

func (s *SyncCardStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inner.Len()
}

func (s *SyncCardStore) Get(id string) (flashcard.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inner.Get(id)
}

func (s *SyncCardStore) All() []flashcard.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inner.All()
}

func (s *SyncCardStore) ByCategory(name string) []flashcard.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inner.ByCategory(name)
}

func (s *SyncCardStore) Due(asOf time.Time) []flashcard.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inner.Due(asOf)
}

func (s *SyncCardStore) Starred() []flashcard.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inner.Starred()
}

func (s *SyncCardStore) MarkedForLater() []flashcard.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inner.MarkedForLater()
}

func (s *SyncCardStore) ByConfidence(level int) []flashcard.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inner.ByConfidence(level)
}

func (s *SyncCardStore) RecentlyAdded(limit int) []flashcard.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inner.RecentlyAdded(limit)
}

func (s *SyncCardStore) Categories() []models.CategoryCount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inner.Categories()
}

func (s *SyncCardStore) Statistics(asOf time.Time) models.CardStatistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inner.Statistics(asOf)
}

func (s *SyncCardStore) Query(q models.CardQuery) []flashcard.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inner.Query(q)
}
