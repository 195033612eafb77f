package flashcard

import "errors"

// Sentinel errors returned by the scheduler. Check with errors.Is.
var (
	ErrInvalidInput  = errors.New("flashcard: invalid input")
	ErrInvalidRating = errors.New("flashcard: invalid rating")
)
