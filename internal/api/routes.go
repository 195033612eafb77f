package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/cards", func(r chi.Router) {
		r.Get("/", s.handleListCards)
		r.Post("/", s.handleCreateCard)
		r.Get("/due", s.handleDueCards)
		r.Get("/recent", s.handleRecentCards)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetCard)
			r.Patch("/", s.handleUpdateCard)
			r.Delete("/", s.handleDeleteCard)
			r.Post("/review", s.handleReviewCard)
			r.Post("/confidence", s.handleSetConfidence)
			r.Get("/preview", s.handlePreviewCard)
			r.Get("/history", s.handleCardHistory)
		})
	})

	r.Get("/categories", s.handleCategories)
	r.Get("/stats", s.handleStats)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, errNotFoundRoute(r))
	})
	return r
}
