package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/recallcards/internal/clock"
	"github.com/vytor/recallcards/internal/db"
	"github.com/vytor/recallcards/internal/flashcard"
	"github.com/vytor/recallcards/internal/repository"
	"github.com/vytor/recallcards/internal/repository/sqlite"
	"github.com/vytor/recallcards/internal/testutil"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

type CardRepositorySuite struct {
	suite.Suite
	db    *db.DB
	repo  repository.CardRepository
	clock *clock.Fixed
	sched *flashcard.Scheduler
}

func (s *CardRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewCardRepository(s.db.DB)
	s.clock = clock.NewFixed(t0)
	s.sched = flashcard.NewScheduler(s.clock)
}

func (s *CardRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *CardRepositorySuite) review(c flashcard.Card, r flashcard.Rating, opts ...flashcard.ReviewOption) flashcard.Card {
	out, err := s.sched.ApplyReview(c, r, opts...)
	s.Require().NoError(err)
	return out
}

func (s *CardRepositorySuite) TestSaveAndGet() {
	ctx := context.Background()
	c := s.sched.NewCard("Capital of Chile?", "Santiago", "geography")
	c.Starred = true
	c = s.review(c, flashcard.Good, flashcard.WithTimeTaken(2.5))

	s.Require().NoError(s.repo.Save(ctx, c))

	got, err := s.repo.Get(ctx, c.ID())
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Assert().Equal(c.Question, got.Question)
	s.Assert().True(got.Starred)
	s.Assert().Equal(1, got.Interval())
	s.Assert().Equal(1, got.Repetitions())
	s.Assert().Equal(3, got.Confidence())
	s.Assert().True(c.DueDate().Equal(got.DueDate()))
	s.Require().Len(got.ReviewHistory(), 1)
	s.Assert().Equal(flashcard.Good, got.ReviewHistory()[0].Rating)
}

func (s *CardRepositorySuite) TestGetMissing() {
	got, err := s.repo.Get(context.Background(), "missing")
	s.Require().NoError(err)
	s.Assert().Nil(got)
}

func (s *CardRepositorySuite) TestSaveWritesLedgerIncrementally() {
	ctx := context.Background()
	c := s.sched.NewCard("q", "a", "x")
	s.Require().NoError(s.repo.Save(ctx, c))

	c = s.review(c, flashcard.Good, flashcard.WithTimeTaken(4))
	s.Require().NoError(s.repo.Save(ctx, c))
	s.clock.AdvanceDays(1)
	c = s.review(c, flashcard.Again)
	s.Require().NoError(s.repo.Save(ctx, c))
	// Saving the same revision again must not duplicate ledger rows.
	s.Require().NoError(s.repo.Save(ctx, c))

	entries, err := s.repo.ReviewHistory(ctx, c.ID())
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Assert().Equal(flashcard.Good, entries[0].Rating)
	s.Require().NotNil(entries[0].TimeTaken)
	s.Assert().Equal(4.0, *entries[0].TimeTaken)
	s.Assert().Equal(0, entries[0].PriorInterval)
	s.Assert().Equal(1, entries[0].NewInterval)
	s.Assert().Equal(flashcard.Again, entries[1].Rating)
	s.Assert().Nil(entries[1].TimeTaken)
	s.Assert().True(entries[1].Date.Equal(t0.AddDate(0, 0, 1)))
}

func (s *CardRepositorySuite) TestStaleSaveIsIgnored() {
	ctx := context.Background()
	c := s.sched.NewCard("q", "a", "x")
	older := s.review(c, flashcard.Good)
	newer := s.review(older, flashcard.Good)

	s.Require().NoError(s.repo.Save(ctx, newer))
	s.Require().NoError(s.repo.Save(ctx, older))

	got, err := s.repo.Get(ctx, c.ID())
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Assert().Equal(2, got.ReviewCount())
	s.Assert().Equal(4, got.Interval())
}

func (s *CardRepositorySuite) TestEditWithoutReviewIsSaved() {
	ctx := context.Background()
	c := s.sched.NewCard("q", "a", "x")
	s.Require().NoError(s.repo.Save(ctx, c))

	c.Answer = "better answer"
	c.Category = "y"
	s.Require().NoError(s.repo.Save(ctx, c))

	got, err := s.repo.Get(ctx, c.ID())
	s.Require().NoError(err)
	s.Assert().Equal("better answer", got.Answer)

	cards, err := s.repo.List(ctx, repository.CardFilter{Category: ptr("y")})
	s.Require().NoError(err)
	s.Assert().Len(cards, 1)
}

func (s *CardRepositorySuite) TestDeleteCascadesAndIsIdempotent() {
	ctx := context.Background()
	c := s.review(s.sched.NewCard("q", "a", "x"), flashcard.Easy)
	s.Require().NoError(s.repo.Save(ctx, c))

	s.Require().NoError(s.repo.Delete(ctx, c.ID()))
	s.Require().NoError(s.repo.Delete(ctx, c.ID()))

	got, err := s.repo.Get(ctx, c.ID())
	s.Require().NoError(err)
	s.Assert().Nil(got)

	var rows int
	s.Require().NoError(s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM review_history WHERE card_id = ?`, c.ID()).Scan(&rows))
	s.Assert().Zero(rows)
}

func (s *CardRepositorySuite) TestListFilters() {
	ctx := context.Background()
	a := s.sched.NewCard("a", "a", "spanish")
	s.clock.Advance(time.Minute)
	b := s.review(s.sched.NewCard("b", "b", "french"), flashcard.Easy)
	b.Starred = true
	s.clock.Advance(time.Minute)
	c := s.review(s.sched.NewCard("c", "c", "spanish"), flashcard.Good)
	c.MarkedForLater = true

	for _, card := range []flashcard.Card{a, b, c} {
		s.Require().NoError(s.repo.Save(ctx, card))
	}

	all, err := s.repo.List(ctx, repository.CardFilter{})
	s.Require().NoError(err)
	s.Assert().Equal([]string{a.ID(), b.ID(), c.ID()}, testutil.IDs(all))

	spanish, err := s.repo.List(ctx, repository.CardFilter{Category: ptr("spanish")})
	s.Require().NoError(err)
	s.Assert().Equal([]string{a.ID(), c.ID()}, testutil.IDs(spanish))

	due, err := s.repo.List(ctx, repository.CardFilter{DueBefore: ptr(s.clock.Now())})
	s.Require().NoError(err)
	s.Assert().Equal([]string{a.ID()}, testutil.IDs(due))

	mastered, err := s.repo.List(ctx, repository.CardFilter{Confidence: ptr(5)})
	s.Require().NoError(err)
	s.Assert().Equal([]string{b.ID()}, testutil.IDs(mastered))

	starred, err := s.repo.List(ctx, repository.CardFilter{Starred: ptr(true)})
	s.Require().NoError(err)
	s.Assert().Equal([]string{b.ID()}, testutil.IDs(starred))

	later, err := s.repo.List(ctx, repository.CardFilter{MarkedForLater: ptr(true)})
	s.Require().NoError(err)
	s.Assert().Equal([]string{c.ID()}, testutil.IDs(later))

	recent, err := s.repo.List(ctx, repository.CardFilter{OrderBy: repository.OrderByCreatedAt, Desc: true, Limit: 2})
	s.Require().NoError(err)
	s.Assert().Equal([]string{c.ID(), b.ID()}, testutil.IDs(recent))

	byDue, err := s.repo.List(ctx, repository.CardFilter{OrderBy: repository.OrderByDueAt})
	s.Require().NoError(err)
	s.Assert().Equal([]string{a.ID(), c.ID(), b.ID()}, testutil.IDs(byDue))
}

func ptr[T any](v T) *T { return &v }

func TestCardRepositorySuite(t *testing.T) {
	suite.Run(t, new(CardRepositorySuite))
}
