package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/cosmosquiz/internal/models"
)

// MockFavoriteRepository is a mock implementation of repository.FavoriteRepository
type MockFavoriteRepository struct {
	mock.Mock
}

func (m *MockFavoriteRepository) IsFavorite(ctx context.Context, cardID int64, userID string) (bool, error) {
	args := m.Called(ctx, cardID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoriteRepository) Add(ctx context.Context, favorite models.Favorite) error {
	args := m.Called(ctx, favorite)
	return args.Error(0)
}

func (m *MockFavoriteRepository) Remove(ctx context.Context, cardID int64, userID string) error {
	args := m.Called(ctx, cardID, userID)
	return args.Error(0)
}

func (m *MockFavoriteRepository) List(ctx context.Context, userID string) ([]models.FavoriteCard, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FavoriteCard), args.Error(1)
}
