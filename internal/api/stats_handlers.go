package api

import (
	"net/http"

	"github.com/vytor/recallcards/internal/models"
)

type categoriesResponse struct {
	Categories []models.CategoryCount `json:"categories"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, categoriesResponse{
		Categories: s.FlashcardService.Categories(r.Context()),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.FlashcardService.Statistics(r.Context()))
}
