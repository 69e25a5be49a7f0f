package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/cosmosquiz/internal/models"
)

// MockProgressRepository is a mock implementation of repository.ProgressRepository
type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) Get(ctx context.Context, userID string) (*models.UserProgress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProgress), args.Error(1)
}

func (m *MockProgressRepository) Upsert(ctx context.Context, progress models.UserProgress) error {
	args := m.Called(ctx, progress)
	return args.Error(0)
}

// Update applies fn to the progress given to Return, or to a fresh record
// when that is nil.
func (m *MockProgressRepository) Update(ctx context.Context, userID string, fn func(*models.UserProgress)) (*models.UserProgress, error) {
	args := m.Called(ctx, userID)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	p, _ := args.Get(0).(*models.UserProgress)
	if p == nil {
		fresh := models.NewUserProgress(userID)
		p = &fresh
	}
	fn(p)
	return p, nil
}

// MockSettingsRepository is a mock implementation of repository.SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockSettingsRepository) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}
