package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/cosmosquiz/internal/models"
)

// MockQuizRepository is a mock implementation of repository.QuizRepository
type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) Insert(ctx context.Context, quiz models.Quiz) (*models.Quiz, error) {
	args := m.Called(ctx, quiz)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) Update(ctx context.Context, quiz models.Quiz) (*models.Quiz, error) {
	args := m.Called(ctx, quiz)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuizRepository) Get(ctx context.Context, id int64) (*models.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetByShareCode(ctx context.Context, code string) (*models.Quiz, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) List(ctx context.Context, filter models.QuizFilter) ([]models.Quiz, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) Count(ctx context.Context, filter models.QuizFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockQuizRepository) UpdateCard(ctx context.Context, card models.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}
