package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/recallcards/internal/errors"
	"github.com/vytor/recallcards/internal/flashcard"
)

type reviewRequest struct {
	Rating    string   `json:"rating" validate:"required"`
	TimeTaken *float64 `json:"time_taken"`
}

type confidenceRequest struct {
	Level     int      `json:"level" validate:"required"`
	TimeTaken *float64 `json:"time_taken"`
}

// previewOutcome is what a card would look like after one rating.
type previewOutcome struct {
	IntervalDays int       `json:"interval_days"`
	EaseFactor   float64   `json:"ease_factor"`
	DueAt        time.Time `json:"due_at"`
}

type historyResponse struct {
	CardID  string                  `json:"card_id"`
	Reviews []flashcard.ReviewEntry `json:"reviews"`
}

func (s *Server) handleReviewCard(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	rating, err := flashcard.ParseRating(req.Rating)
	if err != nil {
		handleError(w, r, errors.NewInvalidInputError(err))
		return
	}

	card, err := s.FlashcardService.ReviewCard(r.Context(), chi.URLParam(r, "id"), rating, req.TimeTaken)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleSetConfidence(w http.ResponseWriter, r *http.Request) {
	var req confidenceRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.FlashcardService.SetConfidence(r.Context(), chi.URLParam(r, "id"), req.Level, req.TimeTaken)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handlePreviewCard(w http.ResponseWriter, r *http.Request) {
	preview, err := s.FlashcardService.Preview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	out := make(map[string]previewOutcome, len(preview))
	for rating, c := range preview {
		out[rating.String()] = previewOutcome{
			IntervalDays: c.Interval(),
			EaseFactor:   c.EaseFactor(),
			DueAt:        c.DueDate(),
		}
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleCardHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	history, err := s.FlashcardService.History(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if history == nil {
		history = []flashcard.ReviewEntry{}
	}
	writeJSON(w, r, http.StatusOK, historyResponse{CardID: id, Reviews: history})
}
