package services

import (
	"context"

	"github.com/vytor/cosmosquiz/internal/errors"
	"github.com/vytor/cosmosquiz/internal/logger"
	"github.com/vytor/cosmosquiz/internal/models"
	"github.com/vytor/cosmosquiz/internal/repository"
)

// FavoriteService handles favorite cards
type FavoriteService interface {
	IsFavorite(ctx context.Context, userID string, cardID int64) (bool, error)
	Add(ctx context.Context, userID string, quizID, cardID int64) error
	Remove(ctx context.Context, userID string, cardID int64) error
	List(ctx context.Context, userID string) ([]models.FavoriteCard, error)
}

type favoriteService struct {
	favoriteRepo repository.FavoriteRepository
	quizRepo     repository.QuizRepository
}

// NewFavoriteService creates a new FavoriteService
func NewFavoriteService(favoriteRepo repository.FavoriteRepository, quizRepo repository.QuizRepository) FavoriteService {
	return &favoriteService{favoriteRepo: favoriteRepo, quizRepo: quizRepo}
}

func (s *favoriteService) IsFavorite(ctx context.Context, userID string, cardID int64) (bool, error) {
	ok, err := s.favoriteRepo.IsFavorite(ctx, cardID, userID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to check favorite: %v", err)
		return false, errors.NewInternalError(err)
	}
	return ok, nil
}

// Add marks a card of a readable quiz as favorite.
func (s *favoriteService) Add(ctx context.Context, userID string, quizID, cardID int64) error {
	log := logger.FromContext(ctx)
	log.Debug("adding favorite: user=%s, quiz_id=%d, card_id=%d", userID, quizID, cardID)

	quiz, err := s.quizRepo.Get(ctx, quizID)
	if err != nil {
		log.Error("failed to get quiz: %v", err)
		return errors.NewInternalError(err)
	}
	if quiz == nil || !quiz.VisibleTo(userID) {
		return errors.NewNotFoundError("quiz", quizID)
	}
	if quiz.CardByID(cardID) == nil {
		return errors.NewNotFoundError("card", cardID)
	}

	if err := s.favoriteRepo.Add(ctx, models.Favorite{UserID: userID, CardID: cardID, QuizID: quizID}); err != nil {
		log.Error("failed to add favorite: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *favoriteService) Remove(ctx context.Context, userID string, cardID int64) error {
	if err := s.favoriteRepo.Remove(ctx, cardID, userID); err != nil {
		logger.FromContext(ctx).Error("failed to remove favorite: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *favoriteService) List(ctx context.Context, userID string) ([]models.FavoriteCard, error) {
	favorites, err := s.favoriteRepo.List(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list favorites: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return favorites, nil
}
