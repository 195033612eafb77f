package api

import (
	"context"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vytor/recallcards/internal/services"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	FlashcardService services.FlashcardService
	DB               Pinger

	validate *validator.Validate
}

func NewServer(svc services.FlashcardService, db Pinger) *Server {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names in validation errors.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Server{FlashcardService: svc, DB: db, validate: v}
}
