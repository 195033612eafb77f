package store

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/vytor/recallcards/internal/flashcard"
	"github.com/vytor/recallcards/internal/models"
)

// ErrNotFound is returned when a card ID is not in the store.
var ErrNotFound = errors.New("store: card not found")

// Confidence levels used by Statistics.
const (
	MasteredConfidence  = 5
	DifficultConfidence = 1
)

// CardStore is an in-memory card collection kept in insertion order.
// It does no scheduling math and is not safe for concurrent use; wrap it in
// a SyncCardStore when more than one goroutine touches it.
type CardStore struct {
	cards []flashcard.Card
	index map[string]int
}

// New returns a store holding cards, later duplicates replacing earlier ones.
func New(cards ...flashcard.Card) *CardStore {
	s := &CardStore{index: make(map[string]int, len(cards))}
	for _, c := range cards {
		s.Upsert(c)
	}
	return s
}

func (s *CardStore) Len() int { return len(s.cards) }

// Upsert replaces the card with the same ID, or appends it.
func (s *CardStore) Upsert(card flashcard.Card) {
	if i, ok := s.index[card.ID()]; ok {
		s.cards[i] = card
		return
	}
	s.index[card.ID()] = len(s.cards)
	s.cards = append(s.cards, card)
}

// Remove deletes the card with id. Unknown IDs return ErrNotFound and leave
// the store untouched.
func (s *CardStore) Remove(id string) error {
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("remove %s: %w", id, ErrNotFound)
	}
	s.cards = append(s.cards[:i], s.cards[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.cards); j++ {
		s.index[s.cards[j].ID()] = j
	}
	return nil
}

func (s *CardStore) Get(id string) (flashcard.Card, error) {
	i, ok := s.index[id]
	if !ok {
		return flashcard.Card{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return s.cards[i], nil
}

// All returns every card in insertion order.
func (s *CardStore) All() []flashcard.Card {
	return s.filter(func(flashcard.Card) bool { return true })
}

func (s *CardStore) ByCategory(name string) []flashcard.Card {
	return s.filter(func(c flashcard.Card) bool { return c.Category == name })
}

// Due returns the cards whose due date is at or before asOf.
func (s *CardStore) Due(asOf time.Time) []flashcard.Card {
	return s.filter(func(c flashcard.Card) bool { return c.IsDue(asOf) })
}

func (s *CardStore) Starred() []flashcard.Card {
	return s.filter(func(c flashcard.Card) bool { return c.Starred })
}

func (s *CardStore) MarkedForLater() []flashcard.Card {
	return s.filter(func(c flashcard.Card) bool { return c.MarkedForLater })
}

func (s *CardStore) ByConfidence(level int) []flashcard.Card {
	return s.filter(func(c flashcard.Card) bool { return c.Confidence() == level })
}

// RecentlyAdded returns up to limit cards, newest first. Cards created at the
// same instant keep insertion order.
func (s *CardStore) RecentlyAdded(limit int) []flashcard.Card {
	if limit <= 0 {
		return nil
	}
	out := s.All()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt().After(out[j].CreatedAt())
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Categories returns the distinct categories with their card counts, sorted
// by name.
func (s *CardStore) Categories() []models.CategoryCount {
	counts := map[string]int{}
	for _, c := range s.cards {
		counts[c.Category]++
	}
	out := make([]models.CategoryCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, models.CategoryCount{Name: name, Cards: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Statistics summarizes the collection. AverageEase is the starting ease
// factor when the store is empty.
func (s *CardStore) Statistics(asOf time.Time) models.CardStatistics {
	st := models.CardStatistics{Total: len(s.cards), AverageEase: flashcard.DefaultEaseFactor}
	if len(s.cards) == 0 {
		return st
	}
	var easeSum float64
	for _, c := range s.cards {
		if c.IsDue(asOf) {
			st.Due++
		}
		switch c.Confidence() {
		case MasteredConfidence:
			st.Mastered++
		case DifficultConfidence:
			st.Difficult++
		}
		easeSum += c.EaseFactor()
	}
	st.AverageEase = easeSum / float64(len(s.cards))
	return st
}

func (s *CardStore) filter(keep func(flashcard.Card) bool) []flashcard.Card {
	var out []flashcard.Card
	for _, c := range s.cards {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// Query returns the cards matching every set field of q, in insertion order.
func (s *CardStore) Query(q models.CardQuery) []flashcard.Card {
	return s.filter(func(c flashcard.Card) bool {
		switch {
		case q.Category != nil && c.Category != *q.Category:
			return false
		case q.Confidence != nil && c.Confidence() != *q.Confidence:
			return false
		case q.Starred != nil && c.Starred != *q.Starred:
			return false
		case q.MarkedForLater != nil && c.MarkedForLater != *q.MarkedForLater:
			return false
		}
		return true
	})
}
