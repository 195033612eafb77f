package services

import (
	"context"
	"strings"
	"sync"

	"github.com/vytor/recallcards/internal/clock"
	"github.com/vytor/recallcards/internal/errors"
	"github.com/vytor/recallcards/internal/flashcard"
	"github.com/vytor/recallcards/internal/jobs"
	"github.com/vytor/recallcards/internal/logger"
	"github.com/vytor/recallcards/internal/models"
	"github.com/vytor/recallcards/internal/repository"
	"github.com/vytor/recallcards/internal/store"
)

// FlashcardService handles card-related business logic
type FlashcardService interface {
	Load(ctx context.Context) error

	CreateCard(ctx context.Context, in models.CardInput) (flashcard.Card, error)
	GetCard(ctx context.Context, id string) (flashcard.Card, error)
	EditCard(ctx context.Context, id string, patch models.CardPatch) (flashcard.Card, error)
	DeleteCard(ctx context.Context, id string) error
	SetStarred(ctx context.Context, id string, starred bool) (flashcard.Card, error)
	SetMarkedForLater(ctx context.Context, id string, marked bool) (flashcard.Card, error)

	ReviewCard(ctx context.Context, id string, rating flashcard.Rating, timeTaken *float64) (flashcard.Card, error)
	SetConfidence(ctx context.Context, id string, level int, timeTaken *float64) (flashcard.Card, error)
	Preview(ctx context.Context, id string) (map[flashcard.Rating]flashcard.Card, error)
	History(ctx context.Context, id string) ([]flashcard.ReviewEntry, error)

	ListCards(ctx context.Context, q models.CardQuery) []flashcard.Card
	DueCards(ctx context.Context, limit int) []flashcard.Card
	CardsByCategory(ctx context.Context, name string) []flashcard.Card
	CardsByConfidence(ctx context.Context, level int) []flashcard.Card
	StarredCards(ctx context.Context) []flashcard.Card
	MarkedForLaterCards(ctx context.Context) []flashcard.Card
	RecentlyAdded(ctx context.Context, limit int) []flashcard.Card
	Categories(ctx context.Context) []models.CategoryCount
	Statistics(ctx context.Context) models.CardStatistics
}

type flashcardService struct {
	// mu serializes writers so that store order and persistence order agree.
	mu       sync.Mutex
	store    *store.SyncCardStore
	sched    *flashcard.Scheduler
	clock    clock.Clock
	repo     repository.CardRepository
	jobQueue jobs.JobQueue
	dueLimit int
}

// NewFlashcardService creates a new FlashcardService. dueLimit caps DueCards
// when the caller asks for no limit or more than it.
func NewFlashcardService(
	cards *store.SyncCardStore,
	sched *flashcard.Scheduler,
	clk clock.Clock,
	repo repository.CardRepository,
	jobQueue jobs.JobQueue,
	dueLimit int,
) FlashcardService {
	if clk == nil {
		clk = clock.System{}
	}
	if cards == nil {
		cards = store.NewSync(nil)
	}
	return &flashcardService{
		store:    cards,
		sched:    sched,
		clock:    clk,
		repo:     repo,
		jobQueue: jobQueue,
		dueLimit: dueLimit,
	}
}

// Load fills the in-memory store with every persisted card, in the order the
// cards were first saved.
func (s *flashcardService) Load(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info("loading cards from repository")

	cards, err := s.repo.List(ctx, repository.CardFilter{})
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return errors.NewInternalError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cards {
		s.store.Upsert(c)
		s.checkLedger(ctx, c)
	}
	log.Info("loaded %d cards", len(cards))
	return nil
}

// checkLedger warns when the review_history rows disagree with the history
// embedded in the card document.
func (s *flashcardService) checkLedger(ctx context.Context, c flashcard.Card) {
	log := logger.FromContext(ctx)
	entries, err := s.repo.ReviewHistory(ctx, c.ID())
	if err != nil {
		log.Warn("failed to read review ledger for card %s: %v", c.ID(), err)
		return
	}
	if len(entries) != c.ReviewCount() {
		log.Warn("review ledger for card %s has %d rows, card has %d reviews", c.ID(), len(entries), c.ReviewCount())
	}
}

func (s *flashcardService) CreateCard(ctx context.Context, in models.CardInput) (flashcard.Card, error) {
	log := logger.FromContext(ctx)

	question := strings.TrimSpace(in.Question)
	answer := strings.TrimSpace(in.Answer)
	if question == "" {
		return flashcard.Card{}, errors.NewValidationError("question", "cannot be empty")
	}
	if answer == "" {
		return flashcard.Card{}, errors.NewValidationError("answer", "cannot be empty")
	}

	card := s.sched.NewCard(question, answer, strings.TrimSpace(in.Category))
	card.Color = in.Color
	log.Debug("creating card: id=%s, category=%q", card.ID(), card.Category)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Upsert(card)
	if err := s.persist(ctx, card); err != nil {
		return flashcard.Card{}, err
	}
	return card, nil
}

func (s *flashcardService) GetCard(ctx context.Context, id string) (flashcard.Card, error) {
	card, err := s.store.Get(id)
	if err != nil {
		logger.FromContext(ctx).Debug("card not found: id=%s", id)
		return flashcard.Card{}, errors.FromDomain(err, "card", id)
	}
	return card, nil
}

func (s *flashcardService) EditCard(ctx context.Context, id string, patch models.CardPatch) (flashcard.Card, error) {
	if patch.Question != nil && strings.TrimSpace(*patch.Question) == "" {
		return flashcard.Card{}, errors.NewValidationError("question", "cannot be empty")
	}
	if patch.Answer != nil && strings.TrimSpace(*patch.Answer) == "" {
		return flashcard.Card{}, errors.NewValidationError("answer", "cannot be empty")
	}
	logger.FromContext(ctx).Debug("editing card: id=%s", id)

	return s.update(ctx, id, func(c flashcard.Card) (flashcard.Card, error) {
		if patch.Question != nil {
			c.Question = strings.TrimSpace(*patch.Question)
		}
		if patch.Answer != nil {
			c.Answer = strings.TrimSpace(*patch.Answer)
		}
		if patch.Category != nil {
			c.Category = strings.TrimSpace(*patch.Category)
		}
		if patch.Color != nil {
			c.Color = *patch.Color
		}
		if patch.Starred != nil {
			c.Starred = *patch.Starred
		}
		if patch.MarkedForLater != nil {
			c.MarkedForLater = *patch.MarkedForLater
		}
		return c, nil
	})
}

func (s *flashcardService) DeleteCard(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting card: id=%s", id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Remove(id); err != nil {
		return errors.FromDomain(err, "card", id)
	}
	if err := s.jobQueue.EnqueueDelete(id); err != nil {
		log.Error("failed to enqueue delete for card %s: %v", id, err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *flashcardService) SetStarred(ctx context.Context, id string, starred bool) (flashcard.Card, error) {
	return s.EditCard(ctx, id, models.CardPatch{Starred: &starred})
}

func (s *flashcardService) SetMarkedForLater(ctx context.Context, id string, marked bool) (flashcard.Card, error) {
	return s.EditCard(ctx, id, models.CardPatch{MarkedForLater: &marked})
}

func (s *flashcardService) ReviewCard(ctx context.Context, id string, rating flashcard.Rating, timeTaken *float64) (flashcard.Card, error) {
	log := logger.FromContext(ctx)
	log.Debug("reviewing card: id=%s, rating=%s", id, rating)

	card, err := s.update(ctx, id, func(c flashcard.Card) (flashcard.Card, error) {
		return s.sched.ApplyReview(c, rating, timeOpts(timeTaken)...)
	})
	if err != nil {
		return flashcard.Card{}, err
	}
	log.Debug("applied review, new interval=%d days, ease_factor=%.2f", card.Interval(), card.EaseFactor())
	return card, nil
}

func (s *flashcardService) SetConfidence(ctx context.Context, id string, level int, timeTaken *float64) (flashcard.Card, error) {
	log := logger.FromContext(ctx)
	log.Debug("setting confidence: id=%s, level=%d", id, level)

	return s.update(ctx, id, func(c flashcard.Card) (flashcard.Card, error) {
		return s.sched.ApplyConfidence(c, level, timeOpts(timeTaken)...)
	})
}

func (s *flashcardService) Preview(ctx context.Context, id string) (map[flashcard.Rating]flashcard.Card, error) {
	card, err := s.GetCard(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.sched.Preview(card), nil
}

func (s *flashcardService) History(ctx context.Context, id string) ([]flashcard.ReviewEntry, error) {
	card, err := s.GetCard(ctx, id)
	if err != nil {
		return nil, err
	}
	return card.ReviewHistory(), nil
}

func (s *flashcardService) ListCards(ctx context.Context, q models.CardQuery) []flashcard.Card {
	return s.store.Query(q)
}

// DueCards returns the cards due now in insertion order.
func (s *flashcardService) DueCards(ctx context.Context, limit int) []flashcard.Card {
	if limit <= 0 || (s.dueLimit > 0 && limit > s.dueLimit) {
		limit = s.dueLimit
	}
	due := s.store.Due(s.clock.Now())
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	logger.FromContext(ctx).Debug("found %d due cards", len(due))
	return due
}

func (s *flashcardService) CardsByCategory(ctx context.Context, name string) []flashcard.Card {
	return s.store.ByCategory(name)
}

func (s *flashcardService) CardsByConfidence(ctx context.Context, level int) []flashcard.Card {
	return s.store.ByConfidence(level)
}

func (s *flashcardService) StarredCards(ctx context.Context) []flashcard.Card {
	return s.store.Starred()
}

func (s *flashcardService) MarkedForLaterCards(ctx context.Context) []flashcard.Card {
	return s.store.MarkedForLater()
}

func (s *flashcardService) RecentlyAdded(ctx context.Context, limit int) []flashcard.Card {
	return s.store.RecentlyAdded(limit)
}

func (s *flashcardService) Categories(ctx context.Context) []models.CategoryCount {
	return s.store.Categories()
}

func (s *flashcardService) Statistics(ctx context.Context) models.CardStatistics {
	return s.store.Statistics(s.clock.Now())
}

// update applies fn to the stored card, keeps the result and queues it for
// persistence. Nothing changes when fn fails.
func (s *flashcardService) update(ctx context.Context, id string, fn func(flashcard.Card) (flashcard.Card, error)) (flashcard.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, err := s.store.Update(id, fn)
	if err != nil {
		logger.FromContext(ctx).Debug("update of card %s rejected: %v", id, err)
		return flashcard.Card{}, errors.FromDomain(err, "card", id)
	}
	if err := s.persist(ctx, card); err != nil {
		return flashcard.Card{}, err
	}
	return card, nil
}

func (s *flashcardService) persist(ctx context.Context, card flashcard.Card) error {
	if err := s.jobQueue.EnqueueSave(card); err != nil {
		logger.FromContext(ctx).Error("failed to enqueue save for card %s: %v", card.ID(), err)
		return errors.NewInternalError(err)
	}
	return nil
}

func timeOpts(timeTaken *float64) []flashcard.ReviewOption {
	if timeTaken == nil {
		return nil
	}
	return []flashcard.ReviewOption{flashcard.WithTimeTaken(*timeTaken)}
}
