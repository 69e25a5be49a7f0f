package services

import (
	"context"

	"github.com/vytor/cosmosquiz/internal/errors"
	"github.com/vytor/cosmosquiz/internal/logger"
	"github.com/vytor/cosmosquiz/internal/models"
	"github.com/vytor/cosmosquiz/internal/repository"
)

// AttemptService reads a user's attempts across quizzes and modes
type AttemptService interface {
	List(ctx context.Context, userID string) ([]models.Attempt, error)
	Get(ctx context.Context, userID string, quizID int64, mode models.Mode) (*models.Attempt, error)
}

type attemptService struct {
	attemptRepo repository.AttemptRepository
}

// NewAttemptService creates a new AttemptService
func NewAttemptService(attemptRepo repository.AttemptRepository) AttemptService {
	return &attemptService{attemptRepo: attemptRepo}
}

func (s *attemptService) List(ctx context.Context, userID string) ([]models.Attempt, error) {
	attempts, err := s.attemptRepo.ListForUser(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list attempts: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return attempts, nil
}

func (s *attemptService) Get(ctx context.Context, userID string, quizID int64, mode models.Mode) (*models.Attempt, error) {
	attempt, err := s.attemptRepo.Get(ctx, userID, quizID, mode)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get attempt: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if attempt == nil {
		return nil, errors.NewNotFoundError("attempt", mode)
	}
	return attempt, nil
}
