package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/cosmosquiz/internal/models"
)

// MockAttemptRepository is a mock implementation of repository.AttemptRepository
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) LoadOrCreate(ctx context.Context, userID string, quizID int64, mode models.Mode) (*models.Attempt, error) {
	args := m.Called(ctx, userID, quizID, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) Update(ctx context.Context, attempt models.Attempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) Get(ctx context.Context, userID string, quizID int64, mode models.Mode) (*models.Attempt, error) {
	args := m.Called(ctx, userID, quizID, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) ListForUser(ctx context.Context, userID string) ([]models.Attempt, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
