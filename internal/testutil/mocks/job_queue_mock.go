package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/recallcards/internal/flashcard"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueSave(card flashcard.Card) error {
	args := m.Called(card)
	return args.Error(0)
}

func (m *MockJobQueue) EnqueueDelete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}
