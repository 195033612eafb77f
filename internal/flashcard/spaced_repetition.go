package flashcard

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/vytor/recallcards/internal/clock"
)

const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
	MaxEaseFactor     = 3.0
	MaxIntervalDays   = 365
)

// Scheduler applies the SM-2 variant to cards. It keeps no state besides the
// clock, so one Scheduler can serve any number of goroutines.
type Scheduler struct {
	clock clock.Clock
	newID func() string
}

// NewScheduler returns a scheduler reading time from clk. A nil clock falls
// back to the system clock.
func NewScheduler(clk clock.Clock) *Scheduler {
	if clk == nil {
		clk = clock.System{}
	}
	return &Scheduler{clock: clk, newID: uuid.NewString}
}

// NewCard creates a card that is due immediately.
func (s *Scheduler) NewCard(question, answer, category string) Card {
	now := s.clock.Now().Round(0)
	return Card{
		Question:   question,
		Answer:     answer,
		Category:   category,
		id:         s.newID(),
		createdAt:  now,
		confidence: 1,
		easeFactor: DefaultEaseFactor,
		dueDate:    now,
	}
}

type reviewOptions struct {
	timeTaken *float64
}

// ReviewOption customizes a single review.
type ReviewOption func(*reviewOptions)

// WithTimeTaken records how many seconds the user spent answering.
func WithTimeTaken(seconds float64) ReviewOption {
	return func(o *reviewOptions) {
		o.timeTaken = &seconds
	}
}

// ApplyReview returns card rescheduled for rating. The input card is never
// modified; on error it is returned unchanged and no history entry is written.
func (s *Scheduler) ApplyReview(card Card, rating Rating, opts ...ReviewOption) (Card, error) {
	if !rating.IsValid() {
		return card, fmt.Errorf("%w: %w: %d", ErrInvalidInput, ErrInvalidRating, int(rating))
	}
	var o reviewOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.timeTaken != nil {
		t := *o.timeTaken
		if t < 0 || math.IsNaN(t) || math.IsInf(t, 0) {
			return card, fmt.Errorf("%w: time taken must be a non-negative number of seconds, got %v", ErrInvalidInput, t)
		}
	}

	now := s.clock.Now().Round(0)
	prior := card.interval
	interval, ease, reps := schedule(card.interval, card.easeFactor, card.repetitions, rating)

	next := card.clone()
	next.interval = interval
	next.easeFactor = ease
	next.repetitions = reps
	next.confidence = rating.Confidence()
	next.dueDate = now.AddDate(0, 0, interval)
	next.lastReviewed = &now
	next.history = append(next.history, ReviewEntry{
		Date:          now,
		Rating:        rating,
		TimeTaken:     o.timeTaken,
		PriorInterval: prior,
		NewInterval:   interval,
	})
	return next, nil
}

// ApplyConfidence is the legacy entry point for callers that still record a
// 1-5 confidence level. The level is turned into a rating and scheduled like
// any other review.
func (s *Scheduler) ApplyConfidence(card Card, level int, opts ...ReviewOption) (Card, error) {
	rating, err := RatingFromConfidence(level)
	if err != nil {
		return card, err
	}
	return s.ApplyReview(card, rating, opts...)
}

// Preview returns the card that each rating would produce, without recording
// anything.
func (s *Scheduler) Preview(card Card) map[Rating]Card {
	out := make(map[Rating]Card, len(Ratings))
	for _, r := range Ratings {
		c, err := s.ApplyReview(card, r)
		if err == nil {
			out[r] = c
		}
	}
	return out
}

// RatingFromConfidence maps a legacy confidence level onto a rating:
// 1 Again, 2 Hard, 3 Good, 4 and 5 Easy.
func RatingFromConfidence(level int) (Rating, error) {
	switch level {
	case 1:
		return Again, nil
	case 2:
		return Hard, nil
	case 3:
		return Good, nil
	case 4, 5:
		return Easy, nil
	default:
		return 0, fmt.Errorf("%w: confidence level %d outside 1-5", ErrInvalidInput, level)
	}
}

// schedule computes the next interval, ease factor and repetition count.
//
// Hard multiplies by its already-decreased ease while Good and Easy multiply
// by the ease the card had before the review. Multiplicative steps truncate.
func schedule(interval int, ease float64, reps int, rating Rating) (int, float64, int) {
	ease = clampEase(ease)
	if reps < 0 {
		reps = 0
	}

	var next int
	newEase := ease
	switch rating {
	case Again:
		return 1, clampEase(ease - 0.2), 0
	case Hard:
		newEase = clampEase(ease - 0.15)
		switch reps {
		case 0:
			next = 1
		case 1:
			next = 3
		default:
			next = int(math.Floor(float64(interval) * 1.2 * newEase))
		}
	case Good:
		switch reps {
		case 0:
			next = 1
		case 1:
			next = 4
		default:
			next = int(math.Floor(float64(interval) * ease))
		}
	case Easy:
		newEase = clampEase(ease + 0.15)
		switch reps {
		case 0:
			next = 3
		case 1:
			next = 7
		default:
			next = int(math.Floor(float64(interval) * ease * 1.3))
		}
	}
	return clampInterval(next), newEase, reps + 1
}

func clampEase(ef float64) float64 {
	if math.IsNaN(ef) {
		return DefaultEaseFactor
	}
	return math.Min(MaxEaseFactor, math.Max(MinEaseFactor, ef))
}

func clampInterval(days int) int {
	if days < 1 {
		return 1
	}
	if days > MaxIntervalDays {
		return MaxIntervalDays
	}
	return days
}
