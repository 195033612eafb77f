package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/recallcards/internal/flashcard"
	"github.com/vytor/recallcards/internal/repository"
)

// MockCardRepository is a mock implementation of repository.CardRepository
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) Save(ctx context.Context, card flashcard.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockCardRepository) Get(ctx context.Context, id string) (*flashcard.Card, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flashcard.Card), args.Error(1)
}

func (m *MockCardRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCardRepository) List(ctx context.Context, filter repository.CardFilter) ([]flashcard.Card, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]flashcard.Card), args.Error(1)
}

func (m *MockCardRepository) ReviewHistory(ctx context.Context, id string) ([]flashcard.ReviewEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]flashcard.ReviewEntry), args.Error(1)
}
