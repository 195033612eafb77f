package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/recallcards/internal/errors"
	"github.com/vytor/recallcards/internal/flashcard"
	"github.com/vytor/recallcards/internal/logger"
	"github.com/vytor/recallcards/internal/models"
)

type createCardRequest struct {
	Question string `json:"question" validate:"required,max=4000"`
	Answer   string `json:"answer" validate:"required,max=4000"`
	Category string `json:"category" validate:"max=200"`
	Color    string `json:"color" validate:"omitempty,hexcolor"`
}

type updateCardRequest struct {
	Question       *string `json:"question" validate:"omitempty,min=1,max=4000"`
	Answer         *string `json:"answer" validate:"omitempty,min=1,max=4000"`
	Category       *string `json:"category" validate:"omitempty,max=200"`
	Color          *string `json:"color" validate:"omitempty,hexcolor"`
	Starred        *bool   `json:"starred"`
	MarkedForLater *bool   `json:"marked_for_later"`
}

type cardListResponse struct {
	Cards []flashcard.Card `json:"cards"`
	Count int              `json:"count"`
}

func newCardList(cards []flashcard.Card) cardListResponse {
	if cards == nil {
		cards = []flashcard.Card{}
	}
	return cardListResponse{Cards: cards, Count: len(cards)}
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	var q models.CardQuery
	if category, ok := r.URL.Query()["category"]; ok && len(category) > 0 {
		q.Category = &category[0]
	}
	level, ok, err := queryInt(r, "confidence")
	if err != nil {
		handleError(w, r, err)
		return
	}
	if ok {
		if level < 1 || level > 5 {
			handleError(w, r, errors.NewValidationError("confidence", "must be between 1 and 5"))
			return
		}
		q.Confidence = &level
	}
	if q.Starred, err = queryBool(r, "starred"); err != nil {
		handleError(w, r, err)
		return
	}
	if q.MarkedForLater, err = queryBool(r, "marked"); err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, newCardList(s.FlashcardService.ListCards(r.Context(), q)))
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req createCardRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.FlashcardService.CreateCard(r.Context(), models.CardInput{
		Question: req.Question,
		Answer:   req.Answer,
		Category: req.Category,
		Color:    req.Color,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("created card %s", card.ID())
	writeJSON(w, r, http.StatusCreated, card)
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	card, err := s.FlashcardService.GetCard(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	var req updateCardRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	patch := models.CardPatch{
		Question:       req.Question,
		Answer:         req.Answer,
		Category:       req.Category,
		Color:          req.Color,
		Starred:        req.Starred,
		MarkedForLater: req.MarkedForLater,
	}
	if patch.IsEmpty() {
		handleError(w, r, errors.NewBadRequestError("no fields to update"))
		return
	}

	card, err := s.FlashcardService.EditCard(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.FlashcardService.DeleteCard(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("deleted card %s", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDueCards(w http.ResponseWriter, r *http.Request) {
	limit, _, err := queryInt(r, "limit")
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newCardList(s.FlashcardService.DueCards(r.Context(), limit)))
}

func (s *Server) handleRecentCards(w http.ResponseWriter, r *http.Request) {
	limit, ok, err := queryInt(r, "limit")
	if err != nil {
		handleError(w, r, err)
		return
	}
	if !ok {
		limit = 10
	}
	writeJSON(w, r, http.StatusOK, newCardList(s.FlashcardService.RecentlyAdded(r.Context(), limit)))
}
