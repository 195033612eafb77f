package flashcard

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Rating is the user's judgment of how well a card was recalled.
type Rating int

const (
	Again Rating = iota + 1
	Hard
	Good
	Easy
)

// Ratings lists every rating in increasing recall quality.
var Ratings = []Rating{Again, Hard, Good, Easy}

// Serialized tags. These are persisted, so never rename or reuse one.
var (
	ratingTags  = [...]string{Again: "again", Hard: "hard", Good: "good", Easy: "easy"}
	ratingByTag = map[string]Rating{
		"again": Again,
		"hard":  Hard,
		"good":  Good,
		"easy":  Easy,
	}
)

// ParseRating converts a tag such as "good" into a Rating.
func ParseRating(s string) (Rating, error) {
	r, ok := ratingByTag[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRating, s)
	}
	return r, nil
}

func (r Rating) IsValid() bool {
	return r >= Again && r <= Easy
}

func (r Rating) String() string {
	if r.IsValid() {
		return ratingTags[r]
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}

// Confidence is the legacy 1-5 confidence level recorded for a rating.
// Level 4 has no rating of its own.
func (r Rating) Confidence() int {
	switch r {
	case Again:
		return 1
	case Hard:
		return 2
	case Good:
		return 3
	case Easy:
		return 5
	default:
		return 0
	}
}

func (r Rating) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRating, int(r))
	}
	return []byte(ratingTags[r]), nil
}

func (r *Rating) UnmarshalText(text []byte) error {
	v, err := ParseRating(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

func (r Rating) MarshalJSON() ([]byte, error) {
	text, err := r.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON only accepts the string tag. A bare integer is rejected so a
// reordered enum can never silently change the meaning of stored history.
func (r *Rating) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRating, data)
	}
	return r.UnmarshalText([]byte(s))
}
