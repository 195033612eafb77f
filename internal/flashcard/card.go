package flashcard

import (
	"encoding/json"
	"fmt"
	"time"
)

// CardSchemaVersion is written into every serialized card.
const CardSchemaVersion = 1

// ReviewEntry records one completed review. Entries are appended to a card's
// history and never changed afterwards.
type ReviewEntry struct {
	Date          time.Time `json:"date"`
	Rating        Rating    `json:"rating"`
	TimeTaken     *float64  `json:"time_taken_seconds,omitempty"`
	PriorInterval int       `json:"prior_interval_days"`
	NewInterval   int       `json:"new_interval_days"`
}

func (e ReviewEntry) clone() ReviewEntry {
	if e.TimeTaken != nil {
		v := *e.TimeTaken
		e.TimeTaken = &v
	}
	return e
}

// Card is the scheduling state of one question/answer pair.
//
// The exported fields are free for callers to edit. Scheduling state
// (ease, interval, repetitions, due date, confidence and history) is only
// reachable through accessors and only changes through Scheduler.ApplyReview.
type Card struct {
	Question       string
	Answer         string
	Category       string
	Color          string
	Starred        bool
	MarkedForLater bool

	id           string
	createdAt    time.Time
	lastReviewed *time.Time
	confidence   int
	easeFactor   float64
	interval     int
	repetitions  int
	dueDate      time.Time
	history      []ReviewEntry
}

func (c Card) ID() string           { return c.id }
func (c Card) CreatedAt() time.Time { return c.createdAt }
func (c Card) Confidence() int      { return c.confidence }
func (c Card) EaseFactor() float64  { return c.easeFactor }
func (c Card) Interval() int        { return c.interval }
func (c Card) Repetitions() int     { return c.repetitions }
func (c Card) DueDate() time.Time   { return c.dueDate }
func (c Card) ReviewCount() int     { return len(c.history) }

// LastReviewed reports when the card was last reviewed. ok is false for a
// card that has never been reviewed.
func (c Card) LastReviewed() (t time.Time, ok bool) {
	if c.lastReviewed == nil {
		return time.Time{}, false
	}
	return *c.lastReviewed, true
}

// ReviewHistory returns a copy of the review ledger, oldest first.
func (c Card) ReviewHistory() []ReviewEntry {
	if len(c.history) == 0 {
		return nil
	}
	out := make([]ReviewEntry, len(c.history))
	for i, e := range c.history {
		out[i] = e.clone()
	}
	return out
}

// IsDue reports whether the card is eligible for review at asOf.
func (c Card) IsDue(asOf time.Time) bool {
	return !c.dueDate.After(asOf)
}

// clone returns a deep copy so that the returned card shares no memory with c.
func (c Card) clone() Card {
	out := c
	if c.lastReviewed != nil {
		v := *c.lastReviewed
		out.lastReviewed = &v
	}
	out.history = c.ReviewHistory()
	return out
}

type cardJSON struct {
	SchemaVersion  int           `json:"schema_version"`
	ID             string        `json:"id"`
	Question       string        `json:"question"`
	Answer         string        `json:"answer"`
	Category       string        `json:"category"`
	Color          string        `json:"color"`
	CreatedAt      time.Time     `json:"created_at"`
	LastReviewed   *time.Time    `json:"last_reviewed,omitempty"`
	Confidence     int           `json:"confidence"`
	EaseFactor     float64       `json:"ease_factor"`
	Interval       int           `json:"interval_days"`
	Repetitions    int           `json:"repetitions"`
	DueDate        time.Time     `json:"due_at"`
	Starred        bool          `json:"starred"`
	MarkedForLater bool          `json:"marked_for_later"`
	ReviewHistory  []ReviewEntry `json:"review_history"`
}

func (c Card) MarshalJSON() ([]byte, error) {
	history := c.history
	if history == nil {
		history = []ReviewEntry{}
	}
	return json.Marshal(cardJSON{
		SchemaVersion:  CardSchemaVersion,
		ID:             c.id,
		Question:       c.Question,
		Answer:         c.Answer,
		Category:       c.Category,
		Color:          c.Color,
		CreatedAt:      c.createdAt,
		LastReviewed:   c.lastReviewed,
		Confidence:     c.confidence,
		EaseFactor:     c.easeFactor,
		Interval:       c.interval,
		Repetitions:    c.repetitions,
		DueDate:        c.dueDate,
		Starred:        c.Starred,
		MarkedForLater: c.MarkedForLater,
		ReviewHistory:  history,
	})
}

// UnmarshalJSON decodes a card document. A missing schema_version is read as
// version 1; any other version is rejected.
func (c *Card) UnmarshalJSON(data []byte) error {
	var v cardJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.SchemaVersion != 0 && v.SchemaVersion != CardSchemaVersion {
		return fmt.Errorf("%w: unsupported card schema version %d", ErrInvalidInput, v.SchemaVersion)
	}
	if v.ID == "" {
		return fmt.Errorf("%w: card id is empty", ErrInvalidInput)
	}
	*c = Card{
		Question:       v.Question,
		Answer:         v.Answer,
		Category:       v.Category,
		Color:          v.Color,
		Starred:        v.Starred,
		MarkedForLater: v.MarkedForLater,
		id:             v.ID,
		createdAt:      v.CreatedAt,
		lastReviewed:   v.LastReviewed,
		confidence:     v.Confidence,
		easeFactor:     v.EaseFactor,
		interval:       v.Interval,
		repetitions:    v.Repetitions,
		dueDate:        v.DueDate,
	}
	if len(v.ReviewHistory) > 0 {
		c.history = v.ReviewHistory
	}
	return nil
}
