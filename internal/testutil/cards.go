package testutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vytor/recallcards/internal/flashcard"
)

// CardSpec describes a card in an arbitrary scheduling state. Zero fields get
// the same defaults a freshly created card has.
type CardSpec struct {
	ID             string
	Question       string
	Answer         string
	Category       string
	CreatedAt      time.Time
	DueAt          time.Time
	Confidence     int
	EaseFactor     float64
	Interval       int
	Repetitions    int
	Starred        bool
	MarkedForLater bool
}

// Card builds a card through its JSON form, the only way outside the
// scheduler to set scheduling fields directly.
func Card(t testing.TB, spec CardSpec) flashcard.Card {
	t.Helper()
	if spec.ID == "" {
		spec.ID = "card"
	}
	if spec.Confidence == 0 {
		spec.Confidence = 1
	}
	if spec.EaseFactor == 0 {
		spec.EaseFactor = flashcard.DefaultEaseFactor
	}
	if spec.DueAt.IsZero() {
		spec.DueAt = spec.CreatedAt
	}
	data, err := json.Marshal(map[string]any{
		"schema_version":   flashcard.CardSchemaVersion,
		"id":               spec.ID,
		"question":         spec.Question,
		"answer":           spec.Answer,
		"category":         spec.Category,
		"created_at":       spec.CreatedAt,
		"due_at":           spec.DueAt,
		"confidence":       spec.Confidence,
		"ease_factor":      spec.EaseFactor,
		"interval_days":    spec.Interval,
		"repetitions":      spec.Repetitions,
		"starred":          spec.Starred,
		"marked_for_later": spec.MarkedForLater,
	})
	require.NoError(t, err)

	var c flashcard.Card
	require.NoError(t, json.Unmarshal(data, &c))
	return c
}

// IDs returns the IDs of cards in order.
func IDs(cards []flashcard.Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.ID())
	}
	return out
}
