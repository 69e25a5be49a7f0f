package repository

import (
	"context"
	"errors"

	"github.com/vytor/cosmosquiz/internal/models"
)

// ErrDuplicate is returned when a write collides with a unique key, such as
// an already used share code.
var ErrDuplicate = errors.New("duplicate key")

// QuizRepository handles quiz and card data access. A quiz and its cards
// are written together.
type QuizRepository interface {
	Insert(ctx context.Context, quiz models.Quiz) (*models.Quiz, error)
	Update(ctx context.Context, quiz models.Quiz) (*models.Quiz, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.Quiz, error)
	GetByShareCode(ctx context.Context, code string) (*models.Quiz, error)
	List(ctx context.Context, filter models.QuizFilter) ([]models.Quiz, error)
	Count(ctx context.Context, filter models.QuizFilter) (int, error)
	UpdateCard(ctx context.Context, card models.Card) error
}

// AttemptRepository handles attempt data access. Attempts are identified by
// (userID, quizID, mode).
type AttemptRepository interface {
	LoadOrCreate(ctx context.Context, userID string, quizID int64, mode models.Mode) (*models.Attempt, error)
	Update(ctx context.Context, attempt models.Attempt) error
	Get(ctx context.Context, userID string, quizID int64, mode models.Mode) (*models.Attempt, error)
	ListForUser(ctx context.Context, userID string) ([]models.Attempt, error)
	DeleteAll(ctx context.Context) error
}

// FavoriteRepository handles favorite card data access
type FavoriteRepository interface {
	IsFavorite(ctx context.Context, cardID int64, userID string) (bool, error)
	Add(ctx context.Context, favorite models.Favorite) error
	Remove(ctx context.Context, cardID int64, userID string) error
	List(ctx context.Context, userID string) ([]models.FavoriteCard, error)
}

// ProgressRepository handles daily engagement data access
type ProgressRepository interface {
	Get(ctx context.Context, userID string) (*models.UserProgress, error)
	Upsert(ctx context.Context, progress models.UserProgress) error
	// Update applies fn to the stored progress atomically and returns the
	// saved value.
	Update(ctx context.Context, userID string, fn func(*models.UserProgress)) (*models.UserProgress, error)
}

// SettingsRepository stores application flags such as the seeding marker
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Gateway bundles every store the quiz core persists through.
type Gateway struct {
	Quizzes   QuizRepository
	Attempts  AttemptRepository
	Favorites FavoriteRepository
	Progress  ProgressRepository
	Settings  SettingsRepository
}
