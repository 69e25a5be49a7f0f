package services

import (
	"context"
	"strings"
	"time"

	"github.com/vytor/cosmosquiz/internal/errors"
	"github.com/vytor/cosmosquiz/internal/logger"
	"github.com/vytor/cosmosquiz/internal/models"
	"github.com/vytor/cosmosquiz/internal/repository"
)

// ProgressService tracks daily engagement. MarkCompletion satisfies
// worker.ProgressRecorder.
type ProgressService interface {
	Get(ctx context.Context, userID string) (*models.UserProgress, error)
	MarkCompletion(ctx context.Context, userID string, at time.Time) error
}

type progressService struct {
	progressRepo repository.ProgressRepository
}

// NewProgressService creates a new ProgressService
func NewProgressService(progressRepo repository.ProgressRepository) ProgressService {
	return &progressService{progressRepo: progressRepo}
}

// Get returns the user's progress, zeroed when nothing was completed yet.
func (s *progressService) Get(ctx context.Context, userID string) (*models.UserProgress, error) {
	p, err := s.progressRepo.Get(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get progress: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if p == nil {
		fresh := models.NewUserProgress(userID)
		return &fresh, nil
	}
	return p, nil
}

func (s *progressService) MarkCompletion(ctx context.Context, userID string, at time.Time) error {
	log := logger.FromContext(ctx)
	if strings.TrimSpace(userID) == "" {
		return errors.NewValidationError("user_id", "cannot be empty")
	}

	p, err := s.progressRepo.Update(ctx, userID, func(p *models.UserProgress) {
		p.MarkCompletion(at)
	})
	if err != nil {
		log.Error("failed to save progress: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("completion recorded: user=%s, streak=%d, this_week=%d", userID, p.StreakDays, p.CompletedThisWeek())
	return nil
}
